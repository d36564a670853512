package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
)

func TestBcryptHasher(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, h.Verify(hash, "s3cret!"))
	assert.False(t, h.Verify(hash, "wrong"))
	assert.False(t, h.Verify("not-a-hash", "s3cret!"))
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 24*time.Hour)
	id := uuid.New()

	raw, err := issuer.Issue(id, models.RoleDoctor)
	require.NoError(t, err)

	got, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "doctor", claims["role"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp.Time, time.Minute)
}

func TestTokenIssuer_ExpiredAndInvalid(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, err := issuer.Issue(uuid.New(), models.RolePatient)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)

	other := NewTokenIssuer("other-secret", time.Hour)
	fresh, err := other.Issue(uuid.New(), models.RolePatient)
	require.NoError(t, err)
	_, err = issuer.Parse(fresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = issuer.Parse("garbage")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAuthorize(t *testing.T) {
	admin := &Identity{Role: models.RoleAdmin}
	doctor := &Identity{Role: models.RoleDoctor}
	patient := &Identity{Role: models.RolePatient}

	assert.NoError(t, Authorize(admin, ManageUsers))
	assert.NoError(t, Authorize(doctor, RespondTreatments))
	assert.NoError(t, Authorize(patient, RequestTreatment))

	assert.ErrorIs(t, Authorize(doctor, ManageUsers), ErrInsufficientPermissions)
	assert.ErrorIs(t, Authorize(patient, RespondTreatments), ErrInsufficientPermissions)
	assert.ErrorIs(t, Authorize(admin, RequestTreatment), ErrInsufficientPermissions)
	assert.ErrorIs(t, Authorize(nil, ViewAnalytics), ErrInsufficientPermissions)
	assert.ErrorIs(t, Authorize(&Identity{Role: "donor"}, ViewOwnDonations), ErrInsufficientPermissions)

	assert.NoError(t, AuthorizeAny(patient, ViewAllDonations, ViewOwnDonations))
	assert.ErrorIs(t, AuthorizeAny(doctor, ViewAllDonations, ViewOwnDonations), ErrInsufficientPermissions)
}

func TestResolver(t *testing.T) {
	repos := repository.NewMemory()
	ctx := context.Background()
	resolver := NewResolver(repos.Users)

	active := &models.User{Email: "a@x", Role: models.RoleDoctor, Status: models.UserApproved}
	suspended := &models.User{Email: "s@x", Role: models.RoleAdmin, Status: models.UserSuspended}
	require.NoError(t, repos.Users.Create(ctx, active))
	require.NoError(t, repos.Users.Create(ctx, suspended))

	id, err := resolver.Resolve(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, id.Role)
	assert.Equal(t, "a@x", id.Email)

	_, err = resolver.Resolve(ctx, suspended.ID)
	assert.ErrorIs(t, err, ErrAccountSuspended)

	_, err = resolver.Resolve(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
