package services

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenwelfare/haven-backend/internal/audit"
	"github.com/havenwelfare/haven-backend/internal/auth"
	"github.com/havenwelfare/haven-backend/internal/dto"
	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
)

func TestListUsers_EnrichesPatientsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	rich := f.addUser(t, "rich@example.com", models.RolePatient, models.UserApproved)
	f.addUser(t, "fresh@example.com", models.RolePatient, models.UserApproved)
	f.addUser(t, "doc@example.com", models.RoleDoctor, models.UserApproved)

	f.addDonation(t, rich.ID, 100, models.DonationApproved)
	f.addDonation(t, rich.ID, 40.5, models.DonationApproved)
	f.addDonation(t, rich.ID, 999, models.DonationRejected)
	f.addDonation(t, rich.ID, 10, models.DonationSubmitted)

	users, err := f.users.ListUsers(ctx, admin, repository.UserFilter{})
	require.NoError(t, err)

	byEmail := map[string]dto.UserWithHistoryResponse{}
	for _, u := range users {
		byEmail[u.Email] = u
	}

	require.NotNil(t, byEmail["rich@example.com"].TotalDonations)
	assert.InDelta(t, 140.5, *byEmail["rich@example.com"].TotalDonations, 0.0001)
	assert.Len(t, byEmail["rich@example.com"].DonationHistory, 4)

	require.NotNil(t, byEmail["fresh@example.com"].TotalDonations)
	assert.Zero(t, *byEmail["fresh@example.com"].TotalDonations)
	assert.NotNil(t, byEmail["fresh@example.com"].DonationHistory)
	assert.Empty(t, byEmail["fresh@example.com"].DonationHistory)

	assert.Nil(t, byEmail["doc@example.com"].TotalDonations)
	assert.Nil(t, byEmail["doc@example.com"].DonationHistory)
}

func TestListUsers_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	doctor := f.addUser(t, "doc@example.com", models.RoleDoctor, models.UserApproved)

	_, err := f.users.ListUsers(context.Background(), doctor, repository.UserFilter{})
	assert.ErrorIs(t, err, auth.ErrInsufficientPermissions)
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	doctor := f.addUser(t, "doc@example.com", models.RoleDoctor, models.UserPending)

	require.NoError(t, f.users.SetStatus(ctx, admin, doctor.ID.String(), &dto.UserStatusRequest{Status: "approved"}))
	require.NoError(t, f.users.SetStatus(ctx, admin, doctor.ID.String(), &dto.UserStatusRequest{Status: "active"}))

	stored, err := f.repos.Users.GetByID(ctx, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserActive, stored.Status)
	assert.Equal(t, []models.UserStatus{models.UserApproved, models.UserActive}, f.notify.statuses)

	last := f.audit.last()
	assert.Equal(t, audit.UserStatusUpdated, last.Action)
	assert.Equal(t, "User doc@example.com status changed to active", last.Details)
}

func TestSetStatus_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	patient := f.addUser(t, "p@example.com", models.RolePatient, models.UserPending)

	err := f.users.SetStatus(ctx, admin, patient.ID.String(), &dto.UserStatusRequest{Status: "pending"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	err = f.users.SetStatus(ctx, admin, "5f0f4c4e-3b8e-4d38-9a47-8c0f5a3b9d11", &dto.UserStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = f.users.SetStatus(ctx, patient, patient.ID.String(), &dto.UserStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, auth.ErrInsufficientPermissions)
}

func TestListApprovedDoctors(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "ok@example.com", models.RoleDoctor, models.UserApproved)
	f.addUser(t, "wait@example.com", models.RoleDoctor, models.UserPending)
	f.addUser(t, "p@example.com", models.RolePatient, models.UserApproved)

	doctors, err := f.users.ListApprovedDoctors(context.Background())
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "ok@example.com", doctors[0].Email)
}

func TestUploadVerificationDocument_AppendsToProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doctor := f.addUser(t, "doc@example.com", models.RoleDoctor, models.UserApproved)

	first, err := f.users.UploadVerificationDocument(ctx, doctor, &multipart.FileHeader{Filename: "a.pdf"})
	require.NoError(t, err)
	second, err := f.users.UploadVerificationDocument(ctx, doctor, &multipart.FileHeader{Filename: "b.pdf"})
	require.NoError(t, err)

	stored, err := f.repos.Users.GetByID(ctx, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, []any{first.DocumentURL, second.DocumentURL}, stored.ProfileData["verification_documents"])
	assert.Equal(t, "doc_verify_"+doctor.ID.String(), f.uploads.prefixes[0])
	assert.Equal(t, audit.VerificationDocUploaded, f.audit.last().Action)
}

func TestUpdateDoctorProfileData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doctor := f.addUser(t, "doc@example.com", models.RoleDoctor, models.UserApproved)
	patient := f.addUser(t, "p@example.com", models.RolePatient, models.UserApproved)

	require.NoError(t, f.users.UpdateDoctorProfileData(ctx, doctor, map[string]any{"specialization": "psychiatry"}))
	require.NoError(t, f.users.UpdateDoctorProfileData(ctx, doctor, map[string]any{"experience": "10"}))

	stored, err := f.repos.Users.GetByID(ctx, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, "psychiatry", stored.ProfileData["specialization"])
	assert.Equal(t, "10", stored.ProfileData["experience"])

	err = f.users.UpdateDoctorProfileData(ctx, patient, map[string]any{"x": 1})
	assert.ErrorIs(t, err, auth.ErrInsufficientPermissions)
}
