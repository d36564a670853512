package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenwelfare/haven-backend/internal/models"
)

func strPtr(s string) *string { return &s }

func TestMemoryUsers_DuplicateEmail(t *testing.T) {
	repos := NewMemory()
	ctx := context.Background()

	require.NoError(t, repos.Users.Create(ctx, &models.User{Email: "a@example.com", Role: models.RolePatient}))
	err := repos.Users.Create(ctx, &models.User{Email: "a@example.com", Role: models.RoleDoctor})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryUsers_ReturnsCopies(t *testing.T) {
	repos := NewMemory()
	ctx := context.Background()

	user := &models.User{Email: "a@example.com", ProfileData: map[string]interface{}{"age": 30}}
	require.NoError(t, repos.Users.Create(ctx, user))

	got, err := repos.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	got.ProfileData["age"] = 99
	got.Name = "changed"

	again, err := repos.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, again.ProfileData["age"])
	assert.Empty(t, again.Name)
}

func TestMemoryUsers_UpdateProfileEmailConflict(t *testing.T) {
	repos := NewMemory()
	ctx := context.Background()

	a := &models.User{Email: "a@example.com"}
	b := &models.User{Email: "b@example.com"}
	require.NoError(t, repos.Users.Create(ctx, a))
	require.NoError(t, repos.Users.Create(ctx, b))

	err := repos.Users.UpdateProfile(ctx, b.ID, ProfilePatch{Email: strPtr("a@example.com")})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, repos.Users.UpdateProfile(ctx, b.ID, ProfilePatch{Name: strPtr("Bea"), Phone: strPtr("555")}))
	got, _ := repos.Users.GetByID(ctx, b.ID)
	assert.Equal(t, "Bea", got.Name)
	assert.Equal(t, "555", *got.Phone)
	assert.Equal(t, "b@example.com", got.Email)
}

func TestMemoryUsers_ListAndCount(t *testing.T) {
	repos := NewMemory()
	ctx := context.Background()

	require.NoError(t, repos.Users.Create(ctx, &models.User{Email: "d1@x", Role: models.RoleDoctor, Status: models.UserApproved}))
	require.NoError(t, repos.Users.Create(ctx, &models.User{Email: "d2@x", Role: models.RoleDoctor, Status: models.UserPending}))
	require.NoError(t, repos.Users.Create(ctx, &models.User{Email: "p1@x", Role: models.RolePatient, Status: models.UserApproved}))

	doctors, err := repos.Users.List(ctx, UserFilter{Role: models.RoleDoctor})
	require.NoError(t, err)
	assert.Len(t, doctors, 2)

	n, err := repos.Users.Count(ctx, UserFilter{Status: models.UserApproved})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestMemoryResetTokens_RedeemOnce(t *testing.T) {
	repos := NewMemory()
	ctx := context.Background()
	now := time.Now()

	user := &models.User{Email: "a@example.com", Password: "old"}
	require.NoError(t, repos.Users.Create(ctx, user))
	require.NoError(t, repos.ResetTokens.Create(ctx, &models.PasswordResetToken{
		UserID: user.ID, TokenHash: "h", ExpiresAt: now.Add(time.Hour),
	}))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repos.ResetTokens.Redeem(ctx, "h", "new", now); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
	got, _ := repos.Users.GetByID(ctx, user.ID)
	assert.Equal(t, "new", got.Password)
}

func TestMemoryResetTokens_Expired(t *testing.T) {
	repos := NewMemory()
	ctx := context.Background()
	now := time.Now()

	user := &models.User{Email: "a@example.com", Password: "old"}
	require.NoError(t, repos.Users.Create(ctx, user))
	require.NoError(t, repos.ResetTokens.Create(ctx, &models.PasswordResetToken{
		UserID: user.ID, TokenHash: "h", ExpiresAt: now.Add(-time.Minute),
	}))

	_, err := repos.ResetTokens.Redeem(ctx, "h", "new", now)
	assert.ErrorIs(t, err, ErrNotFound)

	got, _ := repos.Users.GetByID(ctx, user.ID)
	assert.Equal(t, "old", got.Password)
}

func TestMemoryDonations_ListNewestFirstWithLimit(t *testing.T) {
	repos := NewMemory()
	ctx := context.Background()
	patient := uuid.New()
	base := time.Now()

	for i := 0; i < 5; i++ {
		require.NoError(t, repos.Donations.Create(ctx, &models.Donation{
			PatientID: patient, Amount: float64(i + 1), Status: models.DonationSubmitted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := repos.Donations.List(ctx, DonationFilter{PatientID: &patient}, 3)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 5.0, list[0].Amount)
	assert.Equal(t, 3.0, list[2].Amount)
}

func TestMemoryDonations_Aggregates(t *testing.T) {
	repos := NewMemory()
	ctx := context.Background()

	donations := []models.Donation{
		{Amount: 100, Status: models.DonationApproved, DonorEmail: strPtr("x@d")},
		{Amount: 50, Status: models.DonationApproved, DonorEmail: strPtr("x@d")},
		{Amount: 70, Status: models.DonationRejected, DonorEmail: strPtr("y@d")},
		{Amount: 10, Status: models.DonationSubmitted},
		{Amount: 10, Status: models.DonationSubmitted, DonorEmail: strPtr("")},
	}
	for i := range donations {
		require.NoError(t, repos.Donations.Create(ctx, &donations[i]))
	}

	sum, err := repos.Donations.SumApproved(ctx)
	require.NoError(t, err)
	assert.Equal(t, 150.0, sum)

	donors, err := repos.Donations.CountDistinctDonors(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, donors)
}

func TestMemoryTreatments_RespondIfPending(t *testing.T) {
	repos := NewMemory()
	ctx := context.Background()
	doctor := uuid.New()

	req := &models.TreatmentRequest{DoctorID: doctor, Status: models.TreatmentPending}
	require.NoError(t, repos.Treatments.Create(ctx, req))

	assert.ErrorIs(t, repos.Treatments.RespondIfPending(ctx, req.ID, uuid.New(), models.TreatmentAccepted, time.Now()), ErrNotFound)
	require.NoError(t, repos.Treatments.RespondIfPending(ctx, req.ID, doctor, models.TreatmentAccepted, time.Now()))
	assert.ErrorIs(t, repos.Treatments.RespondIfPending(ctx, req.ID, doctor, models.TreatmentRejected, time.Now()), ErrNotFound)

	got, err := repos.Treatments.List(ctx, TreatmentFilter{DoctorID: &doctor})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.TreatmentAccepted, got[0].Status)
	assert.NotNil(t, got[0].UpdatedAt)
}

func TestMemoryRehabCenters_UpdateKeepsStatus(t *testing.T) {
	repos := NewMemory()
	ctx := context.Background()

	center := &models.RehabCenter{Name: "Hope", Status: models.CenterApproved}
	require.NoError(t, repos.RehabCenters.Create(ctx, center))

	require.NoError(t, repos.RehabCenters.Update(ctx, &models.RehabCenter{ID: center.ID, Name: "Hope House", Status: models.CenterPending}))
	got, err := repos.RehabCenters.GetByID(ctx, center.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hope House", got.Name)
	assert.Equal(t, models.CenterApproved, got.Status)

	require.NoError(t, repos.RehabCenters.Delete(ctx, center.ID))
	assert.ErrorIs(t, repos.RehabCenters.Delete(ctx, center.ID), ErrNotFound)
}

func TestMemoryAuditLogs_RecentNewestFirst(t *testing.T) {
	repos := NewMemory()
	ctx := context.Background()

	for _, action := range []string{"A", "B", "C"} {
		require.NoError(t, repos.AuditLogs.Append(ctx, &models.AuditLog{Action: action}))
	}

	logs, err := repos.AuditLogs.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "C", logs[0].Action)
	assert.Equal(t, "B", logs[1].Action)
}

func TestMemorySystemLogs_DeleteBefore(t *testing.T) {
	repos := NewMemory()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repos.SystemLogs.InsertBatch(ctx, []models.SystemLog{
		{Timestamp: now.Add(-48 * time.Hour), Message: "old"},
		{Timestamp: now, Message: "new"},
	}))

	n, err := repos.SystemLogs.DeleteBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
