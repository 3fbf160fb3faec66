package dto

import "github.com/noah-isme/batchplan-api/internal/models"

// ApplicationRequest is the registration payload. Role selects which of the
// role-specific fields are required.
type ApplicationRequest struct {
	Role         models.UserRole `json:"role" validate:"required,oneof=STUDENT FACULTY"`
	FullName     string          `json:"fullName"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	EnrollmentID string          `json:"enrollmentId,omitempty"`
	Course       string          `json:"course,omitempty"`
	Year         int             `json:"year,omitempty"`
	Designation  string          `json:"designation,omitempty"`
	Department   string          `json:"department,omitempty"`
}

// ReviewApplicationRequest carries optional reviewer remarks.
type ReviewApplicationRequest struct {
	Remarks string `json:"remarks" validate:"max=500"`
}
