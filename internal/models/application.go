package models

import (
	"fmt"
	"time"
)

// ApplicationStatus tracks the review state of a registration.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Application is a registration awaiting admin review. Role-specific columns are
// only populated for the matching role.
type Application struct {
	ID           string            `db:"id" json:"id"`
	FullName     string            `db:"full_name" json:"full_name"`
	Email        string            `db:"email" json:"email"`
	Phone        string            `db:"phone" json:"phone"`
	Role         UserRole          `db:"role" json:"role"`
	EnrollmentID *string           `db:"enrollment_id" json:"enrollment_id,omitempty"`
	Course       *string           `db:"course" json:"course,omitempty"`
	Year         *int              `db:"year" json:"year,omitempty"`
	Designation  *string           `db:"designation" json:"designation,omitempty"`
	Department   *string           `db:"department" json:"department,omitempty"`
	Status       ApplicationStatus `db:"status" json:"status"`
	AppliedAt    time.Time         `db:"applied_at" json:"applied_at"`
	ReviewedAt   *time.Time        `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy   *string           `db:"reviewed_by" json:"reviewed_by,omitempty"`
	Remarks      *string           `db:"remarks" json:"remarks,omitempty"`
}

// Applicant is either a StudentApplicant or a FacultyApplicant.
type Applicant interface {
	Role() UserRole
	Contact() ApplicantContact
	isApplicant()
}

// ApplicantContact holds fields shared by every applicant.
type ApplicantContact struct {
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=8,max=20"`
}

// StudentApplicant carries the fields a student registration requires.
type StudentApplicant struct {
	ApplicantContact
	EnrollmentID string `json:"enrollment_id" validate:"required,max=64"`
	Course       string `json:"course" validate:"required,oneof=B.Tech MCA MBA M.Tech BCA BBA"`
	Year         int    `json:"year" validate:"required,gte=2000,lte=2100"`
}

// FacultyApplicant carries the fields a faculty registration requires.
type FacultyApplicant struct {
	ApplicantContact
	Designation string `json:"designation" validate:"required,max=120"`
	Department  string `json:"department" validate:"required,max=120"`
}

func (StudentApplicant) Role() UserRole              { return RoleStudent }
func (a StudentApplicant) Contact() ApplicantContact { return a.ApplicantContact }
func (StudentApplicant) isApplicant()                {}

func (FacultyApplicant) Role() UserRole              { return RoleFaculty }
func (a FacultyApplicant) Contact() ApplicantContact { return a.ApplicantContact }
func (FacultyApplicant) isApplicant()                {}

// NewApplication turns a validated applicant into a pending application row.
func NewApplication(a Applicant) *Application {
	contact := a.Contact()
	app := &Application{
		FullName: contact.FullName,
		Email:    contact.Email,
		Phone:    contact.Phone,
		Role:     a.Role(),
		Status:   ApplicationPending,
	}
	switch v := a.(type) {
	case StudentApplicant:
		app.EnrollmentID = &v.EnrollmentID
		app.Course = &v.Course
		app.Year = &v.Year
	case FacultyApplicant:
		app.Designation = &v.Designation
		app.Department = &v.Department
	}
	return app
}

// Applicant rebuilds the typed variant from a stored application.
func (a Application) Applicant() (Applicant, error) {
	contact := ApplicantContact{FullName: a.FullName, Email: a.Email, Phone: a.Phone}
	switch a.Role {
	case RoleStudent:
		if a.EnrollmentID == nil || a.Course == nil || a.Year == nil {
			return nil, fmt.Errorf("application %s missing student fields", a.ID)
		}
		return StudentApplicant{ApplicantContact: contact, EnrollmentID: *a.EnrollmentID, Course: *a.Course, Year: *a.Year}, nil
	case RoleFaculty:
		if a.Designation == nil || a.Department == nil {
			return nil, fmt.Errorf("application %s missing faculty fields", a.ID)
		}
		return FacultyApplicant{ApplicantContact: contact, Designation: *a.Designation, Department: *a.Department}, nil
	default:
		return nil, fmt.Errorf("application %s has unsupported role %q", a.ID, a.Role)
	}
}
