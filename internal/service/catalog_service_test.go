package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/campus-market/internal/domain"
)

func newCatalogFixture() (*fakeServiceRepo, *CatalogService) {
	services := newFakeServiceRepo()
	// no cache client in unit tests; every browse hits the repository
	return services, NewCatalogService(services, nil, 0, zap.NewNop())
}

func seedListing(t *testing.T, catalog *CatalogService, sellerID, title string, price int64) *domain.Service {
	t.Helper()
	svc, err := catalog.CreateService(context.Background(), sellerID, ServiceCreateInput{
		Title:        title,
		Description:  "description long enough to pass",
		Category:     domain.CategoryTechServices,
		Price:        price,
		DeliveryDays: 3,
	})
	require.NoError(t, err)
	return svc
}

func TestCreateServiceDefaultsToActive(t *testing.T) {
	_, catalog := newCatalogFixture()
	svc := seedListing(t, catalog, "seller-1", "Laptop repair", 500)
	assert.Equal(t, domain.ServiceStatusActive, svc.Status)
	assert.NotEmpty(t, svc.ID)
}

func TestCreateServiceRejectsUnknownCategory(t *testing.T) {
	_, catalog := newCatalogFixture()
	_, err := catalog.CreateService(context.Background(), "seller-1", ServiceCreateInput{
		Title:        "Mystery",
		Description:  "description long enough to pass",
		Category:     "Time Travel",
		Price:        500,
		DeliveryDays: 3,
	})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestUpdateServiceHidesForeignListings(t *testing.T) {
	_, catalog := newCatalogFixture()
	ctx := context.Background()
	svc := seedListing(t, catalog, "seller-1", "Laptop repair", 500)

	newTitle := "Phone repair"
	updated, err := catalog.UpdateService(ctx, "seller-1", svc.ID, ServiceUpdateInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Phone repair", updated.Title)

	// another seller gets a 404, not a 403
	_, err = catalog.UpdateService(ctx, "seller-2", svc.ID, ServiceUpdateInput{Title: &newTitle})
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))

	err = catalog.DeleteService(ctx, "seller-2", svc.ID)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestListPublicPagination(t *testing.T) {
	_, catalog := newCatalogFixture()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedListing(t, catalog, "seller-1", "Listing", 500)
	}

	page, err := catalog.ListPublic(ctx, CatalogQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.Pages)
	assert.Len(t, page.Services, 2)

	last, err := catalog.ListPublic(ctx, CatalogQuery{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, last.Services, 1)
}

func TestListPublicSkipsInactive(t *testing.T) {
	_, catalog := newCatalogFixture()
	ctx := context.Background()

	svc := seedListing(t, catalog, "seller-1", "Paused soon", 500)
	seedListing(t, catalog, "seller-1", "Stays active", 600)

	paused := domain.ServiceStatusPaused
	_, err := catalog.UpdateService(ctx, "seller-1", svc.ID, ServiceUpdateInput{Status: &paused})
	require.NoError(t, err)

	page, err := catalog.ListPublic(ctx, CatalogQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Services, 1)
	assert.Equal(t, "Stays active", page.Services[0].Title)

	// the owner still sees both
	mine, err := catalog.MyServices(ctx, "seller-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestListPublicPriceFilter(t *testing.T) {
	_, catalog := newCatalogFixture()
	ctx := context.Background()

	seedListing(t, catalog, "seller-1", "Cheap", 200)
	seedListing(t, catalog, "seller-1", "Mid", 1500)
	seedListing(t, catalog, "seller-1", "Expensive", 9000)

	minPrice, maxPrice := int64(1000), int64(2000)
	page, err := catalog.ListPublic(ctx, CatalogQuery{MinPrice: &minPrice, MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, page.Services, 1)
	assert.Equal(t, "Mid", page.Services[0].Title)
}
