package auth

import (
	"github.com/google/uuid"

	"github.com/havenwelfare/haven-backend/internal/apperr"
	"github.com/havenwelfare/haven-backend/internal/models"
)

var ErrInsufficientPermissions = apperr.Forbidden("Insufficient permissions")

// Identity is the authenticated caller as resolved from storage on every
// request. Services receive it instead of a raw user record.
type Identity struct {
	ID     uuid.UUID
	Email  string
	Name   string
	Role   models.Role
	Status models.UserStatus
}

type Capability string

const (
	ManageUsers         Capability = "manage_users"
	ViewAnalytics       Capability = "view_analytics"
	ViewAuditLogs       Capability = "view_audit_logs"
	ManageSettings      Capability = "manage_settings"
	ManageRegistry      Capability = "manage_registry"
	ReviewDonations     Capability = "review_donations"
	ViewAllDonations    Capability = "view_all_donations"
	ViewAllTreatments   Capability = "view_all_treatments"
	ViewAllRehabCenters Capability = "view_all_rehab_centers"
	ExportDonations     Capability = "export_donations"

	ViewAssignedTreatments Capability = "view_assigned_treatments"
	RespondTreatments      Capability = "respond_treatments"
	ManageDoctorProfile    Capability = "manage_doctor_profile"

	ViewOwnDonations  Capability = "view_own_donations"
	RequestTreatment  Capability = "request_treatment"
	ViewOwnTreatments Capability = "view_own_treatments"
)

var grants = map[models.Role]map[Capability]struct{}{
	models.RoleAdmin: set(
		ManageUsers, ViewAnalytics, ViewAuditLogs, ManageSettings, ManageRegistry,
		ReviewDonations, ViewAllDonations, ViewAllTreatments, ViewAllRehabCenters, ExportDonations,
	),
	models.RoleDoctor: set(
		ViewAssignedTreatments, RespondTreatments, ManageDoctorProfile,
	),
	models.RolePatient: set(
		ViewOwnDonations, RequestTreatment, ViewOwnTreatments,
	),
}

func set(caps ...Capability) map[Capability]struct{} {
	m := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		m[c] = struct{}{}
	}
	return m
}

// Can reports whether role is granted capability.
func Can(role models.Role, capability Capability) bool {
	_, ok := grants[role][capability]
	return ok
}

// Authorize is the single role gate. It is independent of the account
// status check done when the identity is resolved.
func Authorize(id *Identity, capability Capability) error {
	if id == nil || !Can(id.Role, capability) {
		return ErrInsufficientPermissions
	}
	return nil
}

// AuthorizeAny passes when at least one capability is granted.
func AuthorizeAny(id *Identity, capabilities ...Capability) error {
	for _, c := range capabilities {
		if Authorize(id, c) == nil {
			return nil
		}
	}
	return ErrInsufficientPermissions
}
