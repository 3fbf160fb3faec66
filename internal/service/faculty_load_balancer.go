package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/batchplan-api/internal/models"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
)

// DefaultMaxAssignmentsPerFaculty is the yearly ceiling used when none is configured.
const DefaultMaxAssignmentsPerFaculty = 2

// FacultyLoadRepository reads and writes faculty assignment rows.
type FacultyLoadRepository interface {
	// CountFacultyAssignments returns every faculty member with their assignment count
	// for year, zero counts included, in stable roster order.
	CountFacultyAssignments(ctx context.Context, year int) ([]models.FacultyLoad, error)
	FacultyAssignmentExists(ctx context.Context, facultyID, batchID string) (bool, error)
	CreateFacultyAssignment(ctx context.Context, assignment *models.FacultyAssignment) error
}

type batchFinder interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
}

// AssignFacultyRequest is the payload for a manual faculty assignment. Year is
// optional; when present it must match the batch's cohort year.
type AssignFacultyRequest struct {
	FacultyID string `json:"facultyId" validate:"required"`
	BatchID   string `json:"batchId" validate:"required"`
	Year      int    `json:"year,omitempty" validate:"omitempty,gte=2000,lte=2100"`
}

// FacultyLoadBalancer picks supervisors for batches without exceeding the yearly ceiling.
type FacultyLoadBalancer struct {
	repo      FacultyLoadRepository
	batches   batchFinder
	ceiling   int
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFacultyLoadBalancer constructs the balancer.
func NewFacultyLoadBalancer(repo FacultyLoadRepository, batches batchFinder, ceiling int, validate *validator.Validate, logger *zap.Logger) *FacultyLoadBalancer {
	if ceiling <= 0 {
		ceiling = DefaultMaxAssignmentsPerFaculty
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyLoadBalancer{repo: repo, batches: batches, ceiling: ceiling, validator: validate, logger: logger}
}

// Ceiling returns the configured yearly assignment limit.
func (b *FacultyLoadBalancer) Ceiling() int {
	return b.ceiling
}

// SelectFacultyFor returns the least-loaded faculty member below the ceiling for year.
// Ties go to the earliest entry in roster order. ok is false when nobody is eligible.
func (b *FacultyLoadBalancer) SelectFacultyFor(ctx context.Context, year int) (facultyID string, ok bool, err error) {
	loads, err := b.repo.CountFacultyAssignments(ctx, year)
	if err != nil {
		return "", false, appErrors.Repository(err, "failed to count faculty assignments")
	}
	return pickLeastLoaded(loads, b.ceiling)
}

func pickLeastLoaded(loads []models.FacultyLoad, ceiling int) (string, bool, error) {
	best := -1
	for i, load := range loads {
		if load.Count >= ceiling {
			continue
		}
		if best < 0 || load.Count < loads[best].Count {
			best = i
		}
	}
	if best < 0 {
		return "", false, nil
	}
	return loads[best].FacultyID, true, nil
}

// Record persists an auto-selected assignment. The selection already satisfies the
// ceiling and the batch is new, so no further checks are made here.
func (b *FacultyLoadBalancer) Record(ctx context.Context, facultyID, batchID string, year int) (*models.FacultyAssignment, error) {
	assignment := &models.FacultyAssignment{FacultyID: facultyID, BatchID: batchID, Year: year}
	if err := b.repo.CreateFacultyAssignment(ctx, assignment); err != nil {
		if errors.Is(err, appErrors.ErrDuplicateAssignment) {
			return nil, err
		}
		return nil, appErrors.Repository(err, "failed to create faculty assignment")
	}
	return assignment, nil
}

// AssignmentYear resolves the cohort year a manual assignment counts against.
// The year always comes from the stored batch.
func (b *FacultyLoadBalancer) AssignmentYear(ctx context.Context, req AssignFacultyRequest) (int, error) {
	batch, err := b.targetBatch(ctx, req)
	if err != nil {
		return 0, err
	}
	return batch.Year, nil
}

func (b *FacultyLoadBalancer) targetBatch(ctx context.Context, req AssignFacultyRequest) (*models.Batch, error) {
	if err := b.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty assignment payload")
	}
	batch, err := b.batches.FindByID(ctx, req.BatchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Repository(err, "failed to load batch")
	}
	if req.Year != 0 && req.Year != batch.Year {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year does not match batch")
	}
	return batch, nil
}

// AssignFacultyToBatch is the manual assignment path. It enforces the yearly ceiling
// of the batch's year and the uniqueness of the (faculty, batch) pair.
func (b *FacultyLoadBalancer) AssignFacultyToBatch(ctx context.Context, req AssignFacultyRequest) (*models.FacultyAssignment, error) {
	batch, err := b.targetBatch(ctx, req)
	if err != nil {
		return nil, err
	}
	year := batch.Year

	loads, err := b.repo.CountFacultyAssignments(ctx, year)
	if err != nil {
		return nil, appErrors.Repository(err, "failed to count faculty assignments")
	}
	current := -1
	for _, load := range loads {
		if load.FacultyID == req.FacultyID {
			current = load.Count
			break
		}
	}
	if current < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
	}
	if current >= b.ceiling {
		return nil, appErrors.ErrCapacityExceeded
	}

	exists, err := b.repo.FacultyAssignmentExists(ctx, req.FacultyID, req.BatchID)
	if err != nil {
		return nil, appErrors.Repository(err, "failed to check faculty assignment")
	}
	if exists {
		return nil, appErrors.ErrDuplicateAssignment
	}

	assignment, err := b.Record(ctx, req.FacultyID, batch.ID, year)
	if err != nil {
		return nil, err
	}
	b.logger.Info("faculty assigned manually",
		zap.String("faculty_id", req.FacultyID),
		zap.String("batch_id", req.BatchID),
		zap.Int("year", year),
	)
	return assignment, nil
}
