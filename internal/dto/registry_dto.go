package dto

type RehabCenterRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Address     string   `json:"address" validate:"required,max=500"`
	City        string   `json:"city" validate:"required,max=100"`
	State       string   `json:"state" validate:"required,max=100"`
	Pincode     string   `json:"pincode" validate:"required,max=20"`
	Phone       string   `json:"phone" validate:"required,max=50"`
	Email       *string  `json:"email" validate:"omitempty,email"`
	Description *string  `json:"description"`
	Facilities  []string `json:"facilities"`
}

type AddictionTypeRequest struct {
	Name           string   `json:"name" validate:"required,max=255"`
	Description    *string  `json:"description"`
	SeverityLevels []string `json:"severity_levels"`
}
