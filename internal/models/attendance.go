package models

import "time"

// AttendanceStatus marks a student's presence for a week.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// AttendanceSheet is one weekly attendance submission for a batch.
type AttendanceSheet struct {
	ID          string                      `db:"id" json:"id"`
	BatchID     string                      `db:"batch_id" json:"batch_id"`
	WeekNumber  int                         `db:"week_number" json:"week_number"`
	Year        int                         `db:"year" json:"year"`
	Records     map[string]AttendanceStatus `db:"-" json:"records"`
	SubmittedBy string                      `db:"submitted_by" json:"submitted_by"`
	SubmittedAt time.Time                   `db:"submitted_at" json:"submitted_at"`
}
