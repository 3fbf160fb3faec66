package models

import "time"

// Mark is a weekly score a supervisor records for one student and subject.
type Mark struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	BatchID     string    `db:"batch_id" json:"batch_id"`
	Subject     string    `db:"subject" json:"subject"`
	WeekNumber  int       `db:"week_number" json:"week_number"`
	Year        int       `db:"year" json:"year"`
	Score       int       `db:"score" json:"score"`
	SubmittedBy string    `db:"submitted_by" json:"submitted_by"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}
