package models

import "time"

// Faculty is the staff record created when a faculty application is approved.
type Faculty struct {
	UserID      string    `db:"user_id" json:"user_id"`
	FullName    string    `db:"full_name" json:"full_name"`
	Designation string    `db:"designation" json:"designation"`
	Department  string    `db:"department" json:"department"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FacultyLoad is the number of batch assignments a faculty member holds in a year.
type FacultyLoad struct {
	FacultyID string `db:"faculty_id" json:"faculty_id"`
	Count     int    `db:"assignment_count" json:"assignment_count"`
}

// FacultyAssignment links a faculty member to a batch for a year.
type FacultyAssignment struct {
	ID         string    `db:"id" json:"id"`
	FacultyID  string    `db:"faculty_id" json:"faculty_id"`
	BatchID    string    `db:"batch_id" json:"batch_id"`
	Year       int       `db:"year" json:"year"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}

// FacultyAssignmentDetail enriches an assignment with display fields.
type FacultyAssignmentDetail struct {
	FacultyAssignment
	FacultyName  string `db:"faculty_name" json:"faculty_name"`
	BatchName    string `db:"batch_name" json:"batch_name"`
	StudentCount int    `db:"student_count" json:"student_count"`
}
