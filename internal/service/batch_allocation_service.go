package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/batchplan-api/internal/models"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
	"github.com/noah-isme/batchplan-api/pkg/lock"
)

// Naming strategies for batch sequence numbers.
const (
	// NamingPerRun restarts the sequence at 1 on every run.
	NamingPerRun = "per_run"
	// NamingContinue starts after the batches already stored for the year.
	NamingContinue = "continue"
)

// AllocationRepository is the persistence boundary of the allocator.
type AllocationRepository interface {
	FetchUnassignedStudents(ctx context.Context, year int) ([]models.Student, error)
	CountBatchesByYear(ctx context.Context, year int) (int, error)
	WithinTx(ctx context.Context, fn func(tx AllocationTx) error) error
}

// AllocationTx groups the writes that must commit together for one batch.
type AllocationTx interface {
	CreateBatch(ctx context.Context, batch *models.Batch) error
	SetStudentBatch(ctx context.Context, studentID, batchID string) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

type allocationObserver interface {
	ObserveAllocation(outcome string, batches, students, unsupervised int, duration time.Duration)
	ObserveManualAssignment(outcome string)
}

// AllocationOptions configures a BatchAllocationService.
type AllocationOptions struct {
	Composition    BatchComposition
	NamingStrategy string
}

// CreatedBatchSummary reports one batch produced by a run.
type CreatedBatchSummary struct {
	Batch             models.Batch     `json:"batch"`
	Students          []models.Student `json:"students"`
	StudentCount      int              `json:"studentCount"`
	AssignedFacultyID *string          `json:"assignedFacultyId"`
	FacultyError      string           `json:"facultyError,omitempty"`
}

// AllocationResult is the outcome of CreateBatchesForYear.
type AllocationResult struct {
	Year            int                   `json:"year"`
	BatchesCreated  int                   `json:"batchesCreated"`
	Batches         []CreatedBatchSummary `json:"batches"`
	LeftoverPrimary int                   `json:"leftoverPrimary"`
	LeftoverOther   int                   `json:"leftoverOther"`
}

// BatchAllocationService turns the unassigned pool of a year into batches and
// assigns a supervisor to each of them.
type BatchAllocationService struct {
	repo     AllocationRepository
	balancer *FacultyLoadBalancer
	locker   lock.Locker
	cache    cacheInvalidator
	metrics  allocationObserver
	opts     AllocationOptions
	logger   *zap.Logger
}

// NewBatchAllocationService constructs the orchestrator.
func NewBatchAllocationService(
	repo AllocationRepository,
	balancer *FacultyLoadBalancer,
	locker lock.Locker,
	cache cacheInvalidator,
	metrics allocationObserver,
	opts AllocationOptions,
	logger *zap.Logger,
) (*BatchAllocationService, error) {
	if err := opts.Composition.Validate(); err != nil {
		return nil, err
	}
	switch opts.NamingStrategy {
	case "":
		opts.NamingStrategy = NamingPerRun
	case NamingPerRun, NamingContinue:
	default:
		return nil, fmt.Errorf("unknown batch naming strategy %q", opts.NamingStrategy)
	}
	if locker == nil {
		locker = lock.NewMemoryLocker(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchAllocationService{
		repo:     repo,
		balancer: balancer,
		locker:   locker,
		cache:    cache,
		metrics:  metrics,
		opts:     opts,
		logger:   logger,
	}, nil
}

// Composition exposes the configured batch rule.
func (s *BatchAllocationService) Composition() BatchComposition {
	return s.opts.Composition
}

// CreateBatchesForYear creates every complete batch the unassigned pool of year allows.
// Batches are processed one after another so faculty counts observe earlier writes.
// A failed batch stops the run; batches committed before it stay committed and are
// returned alongside the error.
func (s *BatchAllocationService) CreateBatchesForYear(ctx context.Context, year int) (*AllocationResult, error) {
	if year <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year must be positive")
	}

	unlock, err := s.acquire(ctx, year)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(context.Background()); err != nil {
			s.logger.Warn("release allocation lock failed", zap.Int("year", year), zap.Error(err))
		}
	}()

	start := time.Now()
	result, runErr := s.run(ctx, year)
	s.finish(ctx, result, runErr, time.Since(start))
	return result, runErr
}

// AssignFaculty runs the manual assignment path under the same per-year lock as
// allocation. The lock is keyed by the batch's stored year.
func (s *BatchAllocationService) AssignFaculty(ctx context.Context, req AssignFacultyRequest) (*models.FacultyAssignment, error) {
	assignment, err := s.assignFaculty(ctx, req)
	if s.metrics != nil {
		s.metrics.ObserveManualAssignment(assignmentOutcome(err))
	}
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)
	return assignment, nil
}

func (s *BatchAllocationService) assignFaculty(ctx context.Context, req AssignFacultyRequest) (*models.FacultyAssignment, error) {
	year, err := s.balancer.AssignmentYear(ctx, req)
	if err != nil {
		return nil, err
	}
	unlock, err := s.acquire(ctx, year)
	if err != nil {
		return nil, err
	}
	defer unlock(context.Background()) //nolint:errcheck

	return s.balancer.AssignFacultyToBatch(ctx, req)
}

func assignmentOutcome(err error) string {
	if err == nil {
		return "assigned"
	}
	return strings.ToLower(appErrors.FromError(err).Code)
}

func (s *BatchAllocationService) acquire(ctx context.Context, year int) (lock.Unlock, error) {
	unlock, err := s.locker.Acquire(ctx, fmt.Sprintf("allocation:%d", year))
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, appErrors.ErrAllocationInProgress
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire allocation lock")
	}
	return unlock, nil
}

func (s *BatchAllocationService) run(ctx context.Context, year int) (*AllocationResult, error) {
	result := &AllocationResult{Year: year, Batches: []CreatedBatchSummary{}}

	pool, err := s.repo.FetchUnassignedStudents(ctx, year)
	if err != nil {
		return result, appErrors.Repository(err, "failed to load unassigned students")
	}

	startSeq := 1
	if s.opts.NamingStrategy == NamingContinue {
		existing, err := s.repo.CountBatchesByYear(ctx, year)
		if err != nil {
			return result, appErrors.Repository(err, "failed to count existing batches")
		}
		startSeq = existing + 1
	}

	partition := PartitionBatches(pool, s.opts.Composition, year, startSeq)
	defer func() {
		s.countLeftovers(result, partition.Leftover)
		for _, proposed := range partition.Batches[result.BatchesCreated:] {
			s.countLeftovers(result, proposed.Students)
		}
	}()

	for _, proposed := range partition.Batches {
		batch, err := s.persistBatch(ctx, proposed)
		if err != nil {
			return result, err
		}

		summary := CreatedBatchSummary{
			Batch:        *batch,
			Students:     proposed.Students,
			StudentCount: len(proposed.Students),
		}
		s.assignSupervisor(ctx, &summary)

		result.Batches = append(result.Batches, summary)
		result.BatchesCreated++
	}

	return result, nil
}

// countLeftovers adds students that remain in the pending pool after the run.
func (s *BatchAllocationService) countLeftovers(result *AllocationResult, students []models.Student) {
	for _, student := range students {
		if models.CategoryOf(student.Course, s.opts.Composition.PrimaryCourse) == models.CategoryPrimary {
			result.LeftoverPrimary++
		} else {
			result.LeftoverOther++
		}
	}
}

// persistBatch stores the batch row and its student links atomically.
func (s *BatchAllocationService) persistBatch(ctx context.Context, proposed ProposedBatch) (*models.Batch, error) {
	batch := &models.Batch{Name: proposed.Name, Year: proposed.Year, IsActive: true}
	err := s.repo.WithinTx(ctx, func(tx AllocationTx) error {
		if err := tx.CreateBatch(ctx, batch); err != nil {
			return fmt.Errorf("create batch %s: %w", proposed.Name, err)
		}
		for _, student := range proposed.Students {
			if err := tx.SetStudentBatch(ctx, student.UserID, batch.ID); err != nil {
				return fmt.Errorf("assign student %s to %s: %w", student.UserID, proposed.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, appErrors.ErrStudentAlreadyAssigned) {
			return nil, appErrors.Wrap(err, appErrors.ErrStudentAlreadyAssigned.Code, appErrors.ErrStudentAlreadyAssigned.Status, "student pool changed during allocation")
		}
		return nil, appErrors.Repository(err, "failed to persist batch")
	}

	s.logger.Info("batch created",
		zap.String("batch_id", batch.ID),
		zap.String("name", batch.Name),
		zap.Int("year", batch.Year),
		zap.Int("students", len(proposed.Students)),
	)
	return batch, nil
}

// assignSupervisor never fails the run: problems are reported on the summary.
func (s *BatchAllocationService) assignSupervisor(ctx context.Context, summary *CreatedBatchSummary) {
	if s.balancer == nil {
		return
	}
	batch := summary.Batch

	facultyID, ok, err := s.balancer.SelectFacultyFor(ctx, batch.Year)
	if err != nil {
		summary.FacultyError = err.Error()
		s.logger.Warn("faculty selection failed", zap.String("batch_id", batch.ID), zap.Error(err))
		return
	}
	if !ok {
		s.logger.Info("batch left unsupervised", zap.String("batch_id", batch.ID), zap.Int("year", batch.Year))
		return
	}

	if _, err := s.balancer.Record(ctx, facultyID, batch.ID, batch.Year); err != nil {
		summary.FacultyError = err.Error()
		s.logger.Warn("faculty assignment failed",
			zap.String("batch_id", batch.ID),
			zap.String("faculty_id", facultyID),
			zap.Error(err),
		)
		return
	}

	summary.AssignedFacultyID = &facultyID
	s.logger.Info("faculty assigned", zap.String("batch_id", batch.ID), zap.String("faculty_id", facultyID))
}

func (s *BatchAllocationService) finish(ctx context.Context, result *AllocationResult, runErr error, duration time.Duration) {
	var batches, students, unsupervised int
	if result != nil {
		batches = result.BatchesCreated
		for _, b := range result.Batches {
			students += b.StudentCount
			if b.AssignedFacultyID == nil {
				unsupervised++
			}
		}
	}

	outcome := "success"
	switch {
	case runErr != nil:
		outcome = "error"
	case batches == 0:
		outcome = "empty"
	}

	if s.metrics != nil {
		s.metrics.ObserveAllocation(outcome, batches, students, unsupervised, duration)
	}
	if batches > 0 {
		s.invalidateStats(ctx)
	}

	fields := []zap.Field{
		zap.Int("batches", batches),
		zap.Int("students", students),
		zap.Int("unsupervised", unsupervised),
		zap.Duration("duration", duration),
	}
	if result != nil {
		fields = append(fields, zap.Int("year", result.Year), zap.Int("leftover_primary", result.LeftoverPrimary), zap.Int("leftover_other", result.LeftoverOther))
	}
	if runErr != nil {
		s.logger.Error("allocation aborted", append(fields, zap.Error(runErr))...)
		return
	}
	s.logger.Info("allocation finished", fields...)
}

func (s *BatchAllocationService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, statsCachePattern); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}
