package models

import "time"

// AdminStats powers the admin overview.
type AdminStats struct {
	TotalStudents      int       `db:"total_students" json:"total_students"`
	PendingAssignments int       `db:"pending_assignments" json:"pending_assignments"`
	ActiveBatches      int       `db:"active_batches" json:"active_batches"`
	FacultyCount       int       `db:"faculty_count" json:"faculty_count"`
	PendingApplicants  int       `db:"pending_applicants" json:"pending_applicants"`
	GeneratedAt        time.Time `db:"-" json:"generated_at"`
}
