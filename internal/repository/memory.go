package repository

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/havenwelfare/haven-backend/internal/models"
)

// memoryDB is the shared state behind the in-memory repositories. One lock
// guards every table so multi-table writes (password reset) stay atomic.
type memoryDB struct {
	mu             sync.RWMutex
	users          map[uuid.UUID]models.User
	resetTokens    map[string]models.PasswordResetToken // token hash -> token
	donations      map[uuid.UUID]models.Donation
	treatments     map[uuid.UUID]models.TreatmentRequest
	rehabCenters   map[uuid.UUID]models.RehabCenter
	addictionTypes map[uuid.UUID]models.AddictionType
	auditLogs      []models.AuditLog
	settings       map[models.SettingType]models.AdminSetting
	systemLogs     []models.SystemLog
}

// NewMemory returns repositories backed by process memory. Data is lost on
// restart; it serves local development and tests.
func NewMemory() *Repositories {
	m := &memoryDB{
		users:          map[uuid.UUID]models.User{},
		resetTokens:    map[string]models.PasswordResetToken{},
		donations:      map[uuid.UUID]models.Donation{},
		treatments:     map[uuid.UUID]models.TreatmentRequest{},
		rehabCenters:   map[uuid.UUID]models.RehabCenter{},
		addictionTypes: map[uuid.UUID]models.AddictionType{},
		settings:       map[models.SettingType]models.AdminSetting{},
	}
	return &Repositories{
		Users:          &memoryUsers{m},
		ResetTokens:    &memoryResetTokens{m},
		Donations:      &memoryDonations{m},
		Treatments:     &memoryTreatments{m},
		RehabCenters:   &memoryRehabCenters{m},
		AddictionTypes: &memoryAddictionTypes{m},
		AuditLogs:      &memoryAuditLogs{m},
		Settings:       &memorySettings{m},
		SystemLogs:     &memorySystemLogs{m},
		Ping:           func(context.Context) error { return nil },
	}
}

func cloneUser(u models.User) models.User {
	u.ProfileData = maps.Clone(u.ProfileData)
	if u.ProfileData == nil {
		u.ProfileData = map[string]interface{}{}
	}
	return u
}

// ---- users ----

type memoryUsers struct{ *memoryDB }

func (r *memoryUsers) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.ProfileData == nil {
		user.ProfileData = map[string]interface{}{}
	}
	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *memoryUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUsers) matching(filter UserFilter) []models.User {
	var out []models.User
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		out = append(out, cloneUser(u))
	}
	return out
}

func (r *memoryUsers) List(_ context.Context, filter UserFilter) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := r.matching(filter)
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *memoryUsers) Count(_ context.Context, filter UserFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

func (r *memoryUsers) UpdateProfile(_ context.Context, id uuid.UUID, patch ProfilePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Email != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Email == *patch.Email {
				return ErrDuplicate
			}
		}
		u.Email = *patch.Email
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Phone != nil {
		phone := *patch.Phone
		u.Phone = &phone
	}
	if patch.ProfileData != nil {
		u.ProfileData = maps.Clone(patch.ProfileData)
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *memoryUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Password = hash
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *memoryUsers) UpdateStatus(_ context.Context, id uuid.UUID, status models.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

// ---- password reset tokens ----

type memoryResetTokens struct{ *memoryDB }

func (r *memoryResetTokens) Create(_ context.Context, token *models.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.resetTokens[token.TokenHash]; exists {
		return ErrDuplicate
	}
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	r.resetTokens[token.TokenHash] = *token
	return nil
}

func (r *memoryResetTokens) Redeem(_ context.Context, tokenHash, newPasswordHash string, now time.Time) (*models.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.resetTokens[tokenHash]
	if !ok || token.Used || !now.Before(token.ExpiresAt) {
		return nil, ErrNotFound
	}
	user, ok := r.users[token.UserID]
	if !ok {
		return nil, ErrNotFound
	}

	token.Used = true
	token.UsedAt = &now
	r.resetTokens[tokenHash] = token

	user.Password = newPasswordHash
	user.UpdatedAt = now
	r.users[user.ID] = user
	return &token, nil
}

// ---- donations ----

type memoryDonations struct{ *memoryDB }

func (r *memoryDonations) Create(_ context.Context, donation *models.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if donation.ID == uuid.Nil {
		donation.ID = uuid.New()
	}
	if donation.CreatedAt.IsZero() {
		donation.CreatedAt = time.Now().UTC()
	}
	r.donations[donation.ID] = *donation
	return nil
}

func (r *memoryDonations) GetByID(_ context.Context, id uuid.UUID) (*models.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.donations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (r *memoryDonations) GetByTransactionID(_ context.Context, transactionID string) (*models.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.donations {
		if d.TransactionID == transactionID {
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryDonations) List(_ context.Context, filter DonationFilter, limit int) ([]models.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Donation
	for _, d := range r.donations {
		if filter.PatientID != nil && d.PatientID != *filter.PatientID {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryDonations) UpdateStatus(_ context.Context, id uuid.UUID, status models.DonationStatus, remarks *string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.donations[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = status
	d.AdminRemarks = remarks
	d.UpdatedAt = &at
	r.donations[id] = d
	return nil
}

func (r *memoryDonations) SumApproved(_ context.Context) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	for _, d := range r.donations {
		if d.Status == models.DonationApproved {
			total += d.Amount
		}
	}
	return total, nil
}

func (r *memoryDonations) CountDistinctDonors(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]struct{}{}
	for _, d := range r.donations {
		if d.DonorEmail != nil && *d.DonorEmail != "" {
			seen[*d.DonorEmail] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

// ---- treatment requests ----

type memoryTreatments struct{ *memoryDB }

func (r *memoryTreatments) Create(_ context.Context, req *models.TreatmentRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	r.treatments[req.ID] = *req
	return nil
}

func (r *memoryTreatments) List(_ context.Context, filter TreatmentFilter) ([]models.TreatmentRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.TreatmentRequest
	for _, req := range r.treatments {
		if filter.PatientID != nil && req.PatientID != *filter.PatientID {
			continue
		}
		if filter.DoctorID != nil && req.DoctorID != *filter.DoctorID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryTreatments) RespondIfPending(_ context.Context, id, doctorID uuid.UUID, status models.TreatmentStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.treatments[id]
	if !ok || req.DoctorID != doctorID || req.Status != models.TreatmentPending {
		return ErrNotFound
	}
	req.Status = status
	req.UpdatedAt = &at
	r.treatments[id] = req
	return nil
}

func (r *memoryTreatments) UpdateNotes(_ context.Context, id, doctorID uuid.UUID, notes string, status *models.TreatmentStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.treatments[id]
	if !ok || req.DoctorID != doctorID {
		return ErrNotFound
	}
	req.TreatmentNotes = &notes
	if status != nil {
		req.Status = *status
	}
	req.UpdatedAt = &at
	r.treatments[id] = req
	return nil
}

// ---- rehab centers ----

type memoryRehabCenters struct{ *memoryDB }

func (r *memoryRehabCenters) Create(_ context.Context, center *models.RehabCenter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if center.ID == uuid.Nil {
		center.ID = uuid.New()
	}
	now := time.Now().UTC()
	center.CreatedAt = now
	center.UpdatedAt = now
	r.rehabCenters[center.ID] = *center
	return nil
}

func (r *memoryRehabCenters) GetByID(_ context.Context, id uuid.UUID) (*models.RehabCenter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.rehabCenters[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *memoryRehabCenters) List(_ context.Context, status models.RehabCenterStatus) ([]models.RehabCenter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.RehabCenter
	for _, c := range r.rehabCenters {
		if status == "" || c.Status == status {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (r *memoryRehabCenters) Count(ctx context.Context, status models.RehabCenterStatus) (int64, error) {
	centers, err := r.List(ctx, status)
	return int64(len(centers)), err
}

func (r *memoryRehabCenters) Update(_ context.Context, center *models.RehabCenter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rehabCenters[center.ID]
	if !ok {
		return ErrNotFound
	}
	center.Status = existing.Status
	center.CreatedAt = existing.CreatedAt
	r.rehabCenters[center.ID] = *center
	return nil
}

func (r *memoryRehabCenters) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rehabCenters[id]; !ok {
		return ErrNotFound
	}
	delete(r.rehabCenters, id)
	return nil
}

// ---- addiction types ----

type memoryAddictionTypes struct{ *memoryDB }

func (r *memoryAddictionTypes) Create(_ context.Context, at *models.AddictionType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if at.ID == uuid.Nil {
		at.ID = uuid.New()
	}
	at.CreatedAt = time.Now().UTC()
	r.addictionTypes[at.ID] = *at
	return nil
}

func (r *memoryAddictionTypes) GetByID(_ context.Context, id uuid.UUID) (*models.AddictionType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	at, ok := r.addictionTypes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &at, nil
}

func (r *memoryAddictionTypes) List(_ context.Context) ([]models.AddictionType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.AddictionType, 0, len(r.addictionTypes))
	for _, at := range r.addictionTypes {
		out = append(out, at)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (r *memoryAddictionTypes) Update(_ context.Context, at *models.AddictionType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.addictionTypes[at.ID]
	if !ok {
		return ErrNotFound
	}
	at.CreatedAt = existing.CreatedAt
	r.addictionTypes[at.ID] = *at
	return nil
}

func (r *memoryAddictionTypes) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.addictionTypes[id]; !ok {
		return ErrNotFound
	}
	delete(r.addictionTypes, id)
	return nil
}

// ---- audit logs ----

type memoryAuditLogs struct{ *memoryDB }

func (r *memoryAuditLogs) Append(_ context.Context, entry *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	r.auditLogs = append(r.auditLogs, *entry)
	return nil
}

func (r *memoryAuditLogs) Recent(_ context.Context, limit int) ([]models.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.AuditLog, 0, len(r.auditLogs))
	for i := len(r.auditLogs) - 1; i >= 0; i-- {
		out = append(out, r.auditLogs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ---- settings ----

type memorySettings struct{ *memoryDB }

func (r *memorySettings) Get(_ context.Context, kind models.SettingType) (*models.AdminSetting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settings[kind]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *memorySettings) Upsert(_ context.Context, setting *models.AdminSetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.settings[setting.Type]; ok {
		setting.ID = existing.ID
	} else if setting.ID == uuid.Nil {
		setting.ID = uuid.New()
	}
	r.settings[setting.Type] = *setting
	return nil
}

// ---- system logs ----

type memorySystemLogs struct{ *memoryDB }

func (r *memorySystemLogs) InsertBatch(_ context.Context, logs []models.SystemLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.systemLogs = append(r.systemLogs, logs...)
	return nil
}

func (r *memorySystemLogs) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.systemLogs[:0]
	var deleted int64
	for _, l := range r.systemLogs {
		if l.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, l)
	}
	r.systemLogs = kept
	return deleted, nil
}
