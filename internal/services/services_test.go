package services

import (
	"context"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/havenwelfare/haven-backend/internal/audit"
	"github.com/havenwelfare/haven-backend/internal/auth"
	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
)

type recordingAuditor struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recordingAuditor) Record(e audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordingAuditor) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

func (r *recordingAuditor) last() audit.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[len(r.entries)-1]
}

type donationNotice struct {
	donation models.Donation
	status   models.DonationStatus
	remarks  *string
}

type fakeNotifications struct {
	mu          sync.Mutex
	resetTokens map[string]string
	statuses    []models.UserStatus
	donations   []donationNotice
}

func newFakeNotifications() *fakeNotifications {
	return &fakeNotifications{resetTokens: map[string]string{}}
}

func (f *fakeNotifications) PasswordReset(user *models.User, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetTokens[user.Email] = token
}

func (f *fakeNotifications) UserStatus(_ *models.User, status models.UserStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

func (f *fakeNotifications) DonationStatus(d *models.Donation, status models.DonationStatus, remarks *string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.donations = append(f.donations, donationNotice{donation: *d, status: status, remarks: remarks})
}

type fakeUploads struct {
	prefixes []string
}

func (f *fakeUploads) Save(file *multipart.FileHeader, prefix string) (string, error) {
	f.prefixes = append(f.prefixes, prefix)
	return "/uploads/" + prefix + "_" + file.Filename, nil
}

// fixture wires every service against the in-memory repositories.
type fixture struct {
	repos    *repository.Repositories
	hasher   *auth.BcryptHasher
	tokens   *auth.TokenIssuer
	audit    *recordingAuditor
	notify   *fakeNotifications
	uploads  *fakeUploads
	auth     *AuthService
	users    *UserService
	donation *DonationService
	treat    *TreatmentService
	registry *RegistryService
	stats    *AnalyticsService
	settings *SettingsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repos:   repository.NewMemory(),
		hasher:  &auth.BcryptHasher{Cost: bcrypt.MinCost},
		tokens:  auth.NewTokenIssuer("test-secret", 24*time.Hour),
		audit:   &recordingAuditor{},
		notify:  newFakeNotifications(),
		uploads: &fakeUploads{},
	}
	f.auth = NewAuthService(f.repos, f.hasher, f.tokens, f.audit, f.notify, time.Hour)
	f.users = NewUserService(f.repos, f.uploads, f.audit, f.notify)
	f.donation = NewDonationService(f.repos, f.uploads, f.audit, f.notify)
	f.treat = NewTreatmentService(f.repos, f.audit)
	f.registry = NewRegistryService(f.repos, f.audit)
	f.stats = NewAnalyticsService(f.repos)
	f.settings = NewSettingsService(f.repos, f.uploads, f.audit)
	return f
}

func (f *fixture) addUser(t *testing.T, email string, role models.Role, status models.UserStatus) *auth.Identity {
	t.Helper()
	hash, err := f.hasher.Hash("password1")
	require.NoError(t, err)
	u := &models.User{
		Email:    email,
		Name:     "User " + email,
		Password: hash,
		Role:     role,
		Status:   status,
	}
	require.NoError(t, f.repos.Users.Create(context.Background(), u))
	return auth.IdentityOf(u)
}

func (f *fixture) admin(t *testing.T) *auth.Identity {
	return f.addUser(t, "admin-"+uuid.NewString()[:8]+"@example.com", models.RoleAdmin, models.UserApproved)
}

func (f *fixture) addCenter(t *testing.T, name string, status models.RehabCenterStatus) *models.RehabCenter {
	t.Helper()
	c := &models.RehabCenter{Name: name, Status: status}
	require.NoError(t, f.repos.RehabCenters.Create(context.Background(), c))
	return c
}

func (f *fixture) addAddictionType(t *testing.T, name string) *models.AddictionType {
	t.Helper()
	at := &models.AddictionType{Name: name}
	require.NoError(t, f.repos.AddictionTypes.Create(context.Background(), at))
	return at
}

func (f *fixture) addDonation(t *testing.T, patientID uuid.UUID, amount float64, status models.DonationStatus) *models.Donation {
	t.Helper()
	d := &models.Donation{
		PatientID:     patientID,
		Amount:        amount,
		TransactionID: "TX-" + uuid.NewString()[:8],
		Status:        status,
	}
	require.NoError(t, f.repos.Donations.Create(context.Background(), d))
	return d
}

func strPtr(s string) *string { return &s }
