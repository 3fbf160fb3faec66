package dto

import "github.com/noah-isme/batchplan-api/internal/models"

// CreateBatchesRequest triggers allocation for a cohort year.
type CreateBatchesRequest struct {
	Year int `json:"year" validate:"required,gte=2000,lte=2100"`
}

// PendingPoolResponse describes the unassigned pool of a year in allocation order.
type PendingPoolResponse struct {
	Year            int              `json:"year"`
	PrimaryCourse   string           `json:"primaryCourse"`
	PrimaryCount    int              `json:"primaryCount"`
	OtherCount      int              `json:"otherCount"`
	PossibleBatches int              `json:"possibleBatches"`
	Students        []models.Student `json:"students"`
}

// FacultyAssignmentsResponse lists the batches a faculty member supervises.
type FacultyAssignmentsResponse struct {
	Year          int                              `json:"year"`
	TotalBatches  int                              `json:"totalBatches"`
	TotalStudents int                              `json:"totalStudents"`
	Assignments   []models.FacultyAssignmentDetail `json:"assignments"`
}
