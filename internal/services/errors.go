package services

import "github.com/havenwelfare/haven-backend/internal/apperr"

var (
	ErrEmailTaken            = apperr.Conflict("Email already registered")
	ErrEmailInUse            = apperr.Conflict("Email already in use")
	ErrInvalidCredentials    = apperr.Unauthorized("Invalid email or password")
	ErrAccountPending        = apperr.Forbidden("Account pending approval")
	ErrAccountRejected       = apperr.Forbidden("Account rejected")
	ErrTokenInvalidOrExpired = apperr.Validation("Invalid or expired token")
	ErrIncorrectPassword     = apperr.Validation("Current password is incorrect")
	ErrInvalidRole           = apperr.Validation("Invalid role. Must be 'doctor' or 'patient'")
	ErrInvalidStatus         = apperr.Validation("Invalid status")
	ErrUserNotFound          = apperr.NotFound("User not found")
	ErrAccessDenied          = apperr.Forbidden("Access denied")

	ErrPatientNotEligible  = apperr.NotFound("Patient not found or not approved")
	ErrDonationNotFound    = apperr.NotFound("Donation not found")
	ErrReceiptNotAvailable = apperr.Precondition("Receipt is only available for approved donations")
	ErrInvalidReview       = apperr.Validation("Status must be 'approved' or 'rejected'")
	ErrInvalidAmount       = apperr.Validation("Amount must be a positive number no greater than 1000000000000")

	ErrRequestNotFoundForDoctor = apperr.NotFound("Treatment request not found")
	ErrInvalidResponse          = apperr.Validation("Response must be 'accepted' or 'rejected'")
	ErrDoctorNotEligible        = apperr.NotFound("Doctor not found or not approved")
	ErrRehabCenterNotEligible   = apperr.NotFound("Rehab center not found or not approved")
	ErrRehabCenterNotFound      = apperr.NotFound("Rehab center not found")
	ErrAddictionTypeNotFound    = apperr.NotFound("Addiction type not found")
)
