package dto

import "github.com/noah-isme/batchplan-api/internal/models"

// SubmitAttendanceRequest is a weekly attendance sheet for one batch.
type SubmitAttendanceRequest struct {
	BatchID    string                             `json:"batchId" validate:"required"`
	WeekNumber int                                `json:"weekNumber" validate:"required,gte=1,lte=53"`
	Year       int                                `json:"year" validate:"required,gte=2000,lte=2100"`
	Records    map[string]models.AttendanceStatus `json:"records" validate:"required,min=1,dive,keys,required,endkeys,oneof=present absent"`
}
