package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/batchplan-api/internal/models"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
)

// memoryAllocationStore keeps students, batches and faculty assignments in memory.
// Writes inside WithinTx are staged and only applied when fn succeeds.
type memoryAllocationStore struct {
	mu          sync.Mutex
	students    []models.Student
	batches     []models.Batch
	faculty     []string
	assignments []models.FacultyAssignment

	failCreateBatchAt int
	createBatchCalls  int
	failAssignments   error
	fetchErr          error
}

func newMemoryAllocationStore(students []models.Student, faculty ...string) *memoryAllocationStore {
	return &memoryAllocationStore{students: students, faculty: faculty}
}

func (m *memoryAllocationStore) FetchUnassignedStudents(_ context.Context, year int) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var out []models.Student
	for _, s := range m.students {
		if s.Year == year && !s.Assigned() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryAllocationStore) CountBatchesByYear(_ context.Context, year int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, b := range m.batches {
		if b.Year == year {
			count++
		}
	}
	return count, nil
}

func (m *memoryAllocationStore) WithinTx(ctx context.Context, fn func(tx AllocationTx) error) error {
	tx := &memoryAllocationTx{store: m, claims: map[string]string{}}
	if err := fn(tx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, tx.batches...)
	for i := range m.students {
		if batchID, ok := tx.claims[m.students[i].UserID]; ok {
			id := batchID
			m.students[i].BatchID = &id
		}
	}
	return nil
}

type memoryAllocationTx struct {
	store   *memoryAllocationStore
	batches []models.Batch
	claims  map[string]string
}

func (t *memoryAllocationTx) CreateBatch(_ context.Context, batch *models.Batch) error {
	t.store.mu.Lock()
	t.store.createBatchCalls++
	call := t.store.createBatchCalls
	t.store.mu.Unlock()
	if t.store.failCreateBatchAt > 0 && call == t.store.failCreateBatchAt {
		return errors.New("insert batch: connection reset")
	}
	batch.ID = fmt.Sprintf("batch-%d", call)
	batch.CreatedAt = time.Date(2025, 7, 1, 0, 0, call, 0, time.UTC)
	t.batches = append(t.batches, *batch)
	return nil
}

func (t *memoryAllocationTx) SetStudentBatch(_ context.Context, studentID, batchID string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, s := range t.store.students {
		if s.UserID == studentID {
			if s.Assigned() {
				return appErrors.ErrStudentAlreadyAssigned
			}
			t.claims[studentID] = batchID
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memoryAllocationStore) CountFacultyAssignments(_ context.Context, year int) ([]models.FacultyLoad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, a := range m.assignments {
		if a.Year == year {
			counts[a.FacultyID]++
		}
	}
	loads := make([]models.FacultyLoad, 0, len(m.faculty))
	for _, id := range m.faculty {
		loads = append(loads, models.FacultyLoad{FacultyID: id, Count: counts[id]})
	}
	return loads, nil
}

func (m *memoryAllocationStore) FacultyAssignmentExists(_ context.Context, facultyID, batchID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assignments {
		if a.FacultyID == facultyID && a.BatchID == batchID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryAllocationStore) CreateFacultyAssignment(_ context.Context, assignment *models.FacultyAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAssignments != nil {
		return m.failAssignments
	}
	for _, a := range m.assignments {
		if a.FacultyID == assignment.FacultyID && a.BatchID == assignment.BatchID {
			return appErrors.ErrDuplicateAssignment
		}
	}
	assignment.ID = fmt.Sprintf("fa-%d", len(m.assignments)+1)
	m.assignments = append(m.assignments, *assignment)
	return nil
}

func (m *memoryAllocationStore) FindByID(_ context.Context, id string) (*models.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.batches {
		if b.ID == id {
			batch := b
			return &batch, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryAllocationStore) assignmentsFor(batchID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, a := range m.assignments {
		if a.BatchID == batchID {
			out = append(out, a.FacultyID)
		}
	}
	sort.Strings(out)
	return out
}

type recordingInvalidator struct {
	mu       sync.Mutex
	patterns []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, pattern)
	return nil
}

type allocationRun struct {
	outcome      string
	batches      int
	students     int
	unsupervised int
}

type recordingObserver struct {
	mu     sync.Mutex
	runs   []allocationRun
	manual []string
}

func (r *recordingObserver) ObserveAllocation(outcome string, batches, students, unsupervised int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, allocationRun{outcome: outcome, batches: batches, students: students, unsupervised: unsupervised})
}

func (r *recordingObserver) ObserveManualAssignment(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manual = append(r.manual, outcome)
}
