package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/campus-market/internal/domain"
)

func newUserFixture(t *testing.T) (*fakeUserRepo, *fakeServiceRepo, *fakeTransactionRepo, *UserService, *domain.User) {
	t.Helper()
	users := newFakeUserRepo()
	services := newFakeServiceRepo()
	transactions := newFakeTransactionRepo()

	user := &domain.User{
		Name:       "Bilal",
		Email:      "bilal@ucp.edu.pk",
		Department: domain.DepartmentFineArts,
		Year:       3,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return users, services, transactions, NewUserService(users, services, transactions), user
}

func TestUpdateProfileWhitelist(t *testing.T) {
	_, _, _, svc, user := newUserFixture(t)
	ctx := context.Background()

	name := "Bilal Ahmed"
	bio := "design student"
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdateInput{Name: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Bilal Ahmed", updated.Name)
	assert.Equal(t, "design student", updated.Bio)
	assert.Equal(t, "bilal@ucp.edu.pk", updated.Email, "email never changes")
	assert.Equal(t, 3, updated.Year, "unset fields keep their value")
}

func TestUpdateProfileRejectsBadValues(t *testing.T) {
	_, _, _, svc, user := newUserFixture(t)
	ctx := context.Background()

	empty := "   "
	_, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdateInput{Name: &empty})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	dept := domain.Department("Alchemy")
	_, err = svc.UpdateProfile(ctx, user.ID, ProfileUpdateInput{Department: &dept})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestUpdateSkills(t *testing.T) {
	_, _, _, svc, user := newUserFixture(t)
	ctx := context.Background()

	updated, err := svc.UpdateSkills(ctx, user.ID, []string{" sketching ", "", "figma"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sketching", "figma"}, updated.Skills)

	tooMany := make([]string, domain.MaxSkills+4)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("skill-%d", i)
	}
	capped, err := svc.UpdateSkills(ctx, user.ID, tooMany)
	require.NoError(t, err)
	assert.Len(t, capped.Skills, domain.MaxSkills)
}

func TestGetPublicProfile(t *testing.T) {
	users, services, transactions, svc, user := newUserFixture(t)
	ctx := context.Background()

	buyer := &domain.User{Name: "Aisha", Email: "aisha@ucp.edu.pk"}
	require.NoError(t, users.Create(ctx, buyer))

	active := &domain.Service{SellerID: user.ID, Title: "Posters", Status: domain.ServiceStatusActive, Price: 300}
	paused := &domain.Service{SellerID: user.ID, Title: "Banners", Status: domain.ServiceStatusPaused, Price: 400}
	require.NoError(t, services.Create(ctx, active))
	require.NoError(t, services.Create(ctx, paused))

	done := domain.NewTransaction(buyer.ID, active, "poster for event")
	require.NoError(t, transactions.Create(ctx, done))
	_, err := transactions.Transition(ctx, transitionTo(done, domain.TransactionStatusCompleted, buyer.ID))
	require.NoError(t, err)

	profile, err := svc.GetPublicProfile(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, profile.Services, 1, "only active listings are public")
	assert.Equal(t, "Posters", profile.Services[0].Title)
	assert.Equal(t, 1, profile.Completed.Total)
	assert.Equal(t, 1, profile.Completed.AsSeller)
	assert.Equal(t, 0, profile.Completed.AsBuyer)

	_, err = svc.GetPublicProfile(ctx, "ghost")
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestEarningsSummary(t *testing.T) {
	users, services, transactions, svc, user := newUserFixture(t)
	ctx := context.Background()

	buyer := &domain.User{Name: "Aisha", Email: "aisha@ucp.edu.pk"}
	require.NoError(t, users.Create(ctx, buyer))
	require.NoError(t, users.AddEarnings(ctx, user.ID, 250, 1000))

	listing := &domain.Service{SellerID: user.ID, Title: "Posters", Status: domain.ServiceStatusActive, Price: 1000}
	require.NoError(t, services.Create(ctx, listing))

	sale := domain.NewTransaction(buyer.ID, listing, "poster")
	require.NoError(t, transactions.Create(ctx, sale))
	_, err := transactions.Transition(ctx, transitionTo(sale, domain.TransactionStatusCompleted, buyer.ID))
	require.NoError(t, err)

	summary, err := svc.Earnings(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), summary.Total)
	assert.Equal(t, int64(250), summary.Pending)
	require.Len(t, summary.RecentSales, 1)
	assert.Equal(t, int64(1000), summary.RecentSales[0].Amount)
}
