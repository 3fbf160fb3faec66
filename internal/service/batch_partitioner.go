package service

import (
	"fmt"

	"github.com/noah-isme/batchplan-api/internal/models"
)

// BatchComposition fixes how many students of each category make up one batch.
type BatchComposition struct {
	PrimaryCourse   string
	PrimaryPerBatch int
	OtherPerBatch   int
}

// DefaultBatchComposition mirrors the production rule of 2 B.Tech + 3 other students.
func DefaultBatchComposition() BatchComposition {
	return BatchComposition{PrimaryCourse: "B.Tech", PrimaryPerBatch: 2, OtherPerBatch: 3}
}

// Size is the total number of students per batch.
func (c BatchComposition) Size() int {
	return c.PrimaryPerBatch + c.OtherPerBatch
}

// Validate rejects compositions that could never terminate or never fill.
func (c BatchComposition) Validate() error {
	if c.PrimaryCourse == "" {
		return fmt.Errorf("primary course is required")
	}
	if c.PrimaryPerBatch < 1 || c.OtherPerBatch < 1 {
		return fmt.Errorf("batch composition requires at least one student per category (got %d/%d)", c.PrimaryPerBatch, c.OtherPerBatch)
	}
	return nil
}

// ProposedBatch is a batch carved from the pool that has not been persisted yet.
type ProposedBatch struct {
	Name     string
	Year     int
	Sequence int
	Students []models.Student
}

// PartitionResult holds the proposed batches and the students left in the pool.
type PartitionResult struct {
	Batches  []ProposedBatch
	Leftover []models.Student
}

// BatchName formats the deterministic batch label, e.g. BT-2025-01.
func BatchName(year, sequence int) string {
	return fmt.Sprintf("BT-%d-%02d", year, sequence)
}

// PartitionBatches greedily carves complete batches out of pool. Students are taken
// in pool order within each category so earlier arrivals are placed first. Sequence
// numbers start at startSeq. Leftover keeps the original pool order and the input
// slice is not modified.
func PartitionBatches(pool []models.Student, comp BatchComposition, year, startSeq int) PartitionResult {
	var result PartitionResult
	if comp.PrimaryPerBatch < 1 || comp.OtherPerBatch < 1 {
		result.Leftover = append(result.Leftover, pool...)
		return result
	}
	if startSeq < 1 {
		startSeq = 1
	}

	var primary, other []int
	for i, student := range pool {
		if models.CategoryOf(student.Course, comp.PrimaryCourse) == models.CategoryPrimary {
			primary = append(primary, i)
		} else {
			other = append(other, i)
		}
	}

	selected := make([]bool, len(pool))
	seq := startSeq
	for len(primary) >= comp.PrimaryPerBatch && len(other) >= comp.OtherPerBatch {
		picks := make([]int, 0, comp.Size())
		picks = append(picks, primary[:comp.PrimaryPerBatch]...)
		picks = append(picks, other[:comp.OtherPerBatch]...)
		primary = primary[comp.PrimaryPerBatch:]
		other = other[comp.OtherPerBatch:]

		members := make([]models.Student, 0, len(picks))
		for _, idx := range picks {
			selected[idx] = true
			members = append(members, pool[idx])
		}

		result.Batches = append(result.Batches, ProposedBatch{
			Name:     BatchName(year, seq),
			Year:     year,
			Sequence: seq,
			Students: members,
		})
		seq++
	}

	result.Leftover = make([]models.Student, 0, len(pool)-len(result.Batches)*comp.Size())
	for i, student := range pool {
		if !selected[i] {
			result.Leftover = append(result.Leftover, student)
		}
	}
	return result
}
