package dto

import "github.com/havenwelfare/haven-backend/internal/models"

type CreateTreatmentRequest struct {
	DoctorID        string  `json:"doctor_id" validate:"required"`
	RehabCenterID   string  `json:"rehab_center_id" validate:"required"`
	AddictionTypeID string  `json:"addiction_type_id" validate:"required"`
	Description     *string `json:"description"`
}

// TreatmentResponse carries the patient's current profile data for doctor
// and admin viewers; it is null for patients.
type TreatmentResponse struct {
	models.TreatmentRequest
	PatientProfileData map[string]any `json:"patient_profile_data"`
}

type RespondTreatmentRequest struct {
	Response string `json:"response" query:"response"`
}

type TreatmentNotesRequest struct {
	TreatmentNotes string  `json:"treatment_notes" validate:"required"`
	Status         *string `json:"status"`
}
