package models

import "time"

// Student is the academic record created when a student application is approved.
// BatchID stays nil until the allocator places the student into a batch.
type Student struct {
	UserID       string    `db:"user_id" json:"user_id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Course       string    `db:"course" json:"course"`
	Year         int       `db:"year" json:"year"`
	BatchID      *string   `db:"batch_id" json:"batch_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Assigned reports whether the student already belongs to a batch.
func (s Student) Assigned() bool {
	return s.BatchID != nil && *s.BatchID != ""
}

// CourseCategory is the two-bucket split used for batch composition.
type CourseCategory string

const (
	CategoryPrimary CourseCategory = "PRIMARY"
	CategoryOther   CourseCategory = "OTHER"
)

// CategoryOf buckets a course code relative to the configured primary course.
func CategoryOf(course, primaryCourse string) CourseCategory {
	if course == primaryCourse {
		return CategoryPrimary
	}
	return CategoryOther
}
