package models

import "time"

// Batch groups a fixed composition of students for one cohort year.
type Batch struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Year      int       `db:"year" json:"year"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BatchSummary adds aggregate counts used by list views.
type BatchSummary struct {
	Batch
	StudentCount int `db:"student_count" json:"student_count"`
}

// BatchDetail is the full view of a batch with its members and supervisors.
type BatchDetail struct {
	Batch
	Students []Student                 `json:"students"`
	Faculty  []FacultyAssignmentDetail `json:"faculty"`
}

// BatchFilter narrows batch listings.
type BatchFilter struct {
	Year       *int
	ActiveOnly bool
}
