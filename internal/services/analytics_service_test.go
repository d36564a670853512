package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenwelfare/haven-backend/internal/audit"
	"github.com/havenwelfare/haven-backend/internal/auth"
	"github.com/havenwelfare/haven-backend/internal/models"
)

func TestAnalyticsSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	p1 := f.addUser(t, "p1@example.com", models.RolePatient, models.UserApproved)
	f.addUser(t, "p2@example.com", models.RolePatient, models.UserPending)
	f.addUser(t, "d1@example.com", models.RoleDoctor, models.UserPending)
	f.addCenter(t, "A", models.CenterApproved)
	f.addCenter(t, "B", models.CenterPending)

	for i := 0; i < 6; i++ {
		f.addDonation(t, p1.ID, 10, models.DonationApproved)
	}
	f.addDonation(t, p1.ID, 99, models.DonationRejected)

	summary, err := f.stats.Summary(ctx, admin)
	require.NoError(t, err)

	assert.EqualValues(t, 4, summary.TotalUsers)
	assert.EqualValues(t, 1, summary.TotalDoctors)
	assert.EqualValues(t, 2, summary.TotalPatients)
	assert.InDelta(t, 60, summary.TotalDonations, 0.0001)
	assert.EqualValues(t, 3, summary.PendingApprovals)
	assert.EqualValues(t, 1, summary.TotalRehabCenters)
	assert.Len(t, summary.RecentDonations, 5)
}

func TestAnalyticsSummary_DistinctDonors(t *testing.T) {
	f := newFixture(t)
	admin := f.admin(t)
	patient := f.addUser(t, "p@example.com", models.RolePatient, models.UserApproved)

	submitDonation(t, f, patient.ID.String(), "TX1", 5)
	submitDonation(t, f, patient.ID.String(), "TX2", 5)
	f.addDonation(t, patient.ID, 5, models.DonationSubmitted)

	summary, err := f.stats.Summary(context.Background(), admin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.TotalDonors)
}

func TestAnalytics_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	patient := f.addUser(t, "p@example.com", models.RolePatient, models.UserApproved)

	_, err := f.stats.Summary(context.Background(), patient)
	assert.ErrorIs(t, err, auth.ErrInsufficientPermissions)
	_, err = f.stats.AuditLogs(context.Background(), patient, 10)
	assert.ErrorIs(t, err, auth.ErrInsufficientPermissions)
}

func TestAuditLogs_NewestFirstWithLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	for _, action := range []string{audit.UserLogin, audit.ProfileUpdated, audit.PasswordChanged} {
		require.NoError(t, f.repos.AuditLogs.Append(ctx, &models.AuditLog{UserEmail: admin.Email, Action: action}))
	}

	logs, err := f.stats.AuditLogs(ctx, admin, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, audit.PasswordChanged, logs[0].Action)
	assert.Equal(t, audit.ProfileUpdated, logs[1].Action)

	logs, err = f.stats.AuditLogs(ctx, admin, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}
