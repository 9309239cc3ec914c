package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/campus-market/internal/config"
	"github.com/spec-kit/campus-market/internal/domain"
)

func newAuthFixture() (*fakeUserRepo, *AuthService) {
	users := newFakeUserRepo()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4, // keep hashing fast in tests
		},
		Campus: config.CampusConfig{EmailDomain: "ucp.edu.pk"},
	}
	return users, NewAuthService(cfg, users)
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Name:       "Aisha Khan",
		Email:      "aisha@ucp.edu.pk",
		Password:   "correct-horse",
		Department: domain.DepartmentComputerScience,
		Year:       2,
		Skills:     []string{"go", "sql"},
	}
}

func TestRegisterIssuesToken(t *testing.T) {
	_, svc := newAuthFixture()

	user, token, exp, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())
	assert.Equal(t, "aisha@ucp.edu.pk", user.Email)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	_, svc := newAuthFixture()

	input := validRegistration()
	input.Email = "  AISHA@UCP.EDU.PK "
	user, _, _, err := svc.Register(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "aisha@ucp.edu.pk", user.Email)
}

func TestRegisterRejectsForeignDomain(t *testing.T) {
	_, svc := newAuthFixture()

	input := validRegistration()
	input.Email = "aisha@gmail.com"
	_, _, _, err := svc.Register(context.Background(), input)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	_, svc := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, validRegistration())
	assert.Equal(t, "CONFLICT", domainCode(t, err))
}

func TestRegisterRejectsUnknownDepartment(t *testing.T) {
	_, svc := newAuthFixture()

	input := validRegistration()
	input.Department = "Alchemy"
	_, _, _, err := svc.Register(context.Background(), input)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestRegisterCapsSkills(t *testing.T) {
	_, svc := newAuthFixture()

	input := validRegistration()
	input.Skills = make([]string, domain.MaxSkills+3)
	for i := range input.Skills {
		input.Skills[i] = fmt.Sprintf("skill-%d", i)
	}
	user, _, _, err := svc.Register(context.Background(), input)
	require.NoError(t, err)
	assert.Len(t, user.Skills, domain.MaxSkills)
	assert.Equal(t, "skill-0", user.Skills[0])
}

func TestLogin(t *testing.T) {
	_, svc := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	user, token, _, err := svc.Login(ctx, "aisha@ucp.edu.pk", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Aisha Khan", user.Name)

	_, _, _, err = svc.Login(ctx, "aisha@ucp.edu.pk", "wrong")
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))

	// unknown accounts are indistinguishable from wrong passwords
	_, _, _, err = svc.Login(ctx, "nobody@ucp.edu.pk", "whatever")
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))
}
