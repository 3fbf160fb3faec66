package dto

import "github.com/noah-isme/batchplan-api/internal/models"

// SubmitMarksRequest records one student's weekly score in a subject.
type SubmitMarksRequest struct {
	BatchID    string `json:"batchId" validate:"required"`
	StudentID  string `json:"studentId" validate:"required"`
	Subject    string `json:"subject" validate:"required,max=100"`
	WeekNumber int    `json:"weekNumber" validate:"required,gte=1,lte=53"`
	Year       int    `json:"year" validate:"required,gte=2000,lte=2100"`
	Score      *int   `json:"marks" validate:"required,gte=0,lte=100"`
}

// CreateNotificationRequest publishes an announcement.
type CreateNotificationRequest struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Message      string   `json:"message" validate:"required"`
	Audience     string   `json:"toType" validate:"required,oneof=all faculty students specific"`
	RecipientIDs []string `json:"recipientIds" validate:"required_if=Audience specific,dive,required"`
}

// StudentDashboardResponse is the student's own view of their batch and progress.
type StudentDashboardResponse struct {
	Student       models.Student                   `json:"student"`
	Batch         *models.Batch                    `json:"batch"`
	Supervisors   []models.FacultyAssignmentDetail `json:"supervisors"`
	Marks         []models.Mark                    `json:"marks"`
	Notifications []models.Notification            `json:"notifications"`
}
