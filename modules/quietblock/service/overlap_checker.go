package service

import (
	"sort"

	"quietblock-api/modules/quietblock/entity"

	"github.com/google/uuid"
)

// ConflictResult lists every block a candidate interval collides with.
type ConflictResult struct {
	HasConflict bool
	Conflicts   []entity.QuietBlock
}

// CheckOverlap decides whether a candidate interval may be accepted
// against the owner's existing blocks. Pure function: the caller fetches
// the relevant window, the checker only filters and tests.
//
// Soft-deleted blocks, the block identified by excludeID (self, on edit)
// and blocks whose status is not scheduled or active are ignored. The
// result is re-sorted by start time so the conflict list is the same
// regardless of input order.
func CheckOverlap(candidate entity.TimeRange, excludeID uuid.UUID, existing []entity.QuietBlock) ConflictResult {
	conflicts := make([]entity.QuietBlock, 0)
	for _, b := range existing {
		if b.IsDeleted {
			continue
		}
		if excludeID != uuid.Nil && b.ID == excludeID {
			continue
		}
		if !b.Status.ConflictRelevant() {
			continue
		}
		if Overlaps(candidate, b.Range()) {
			conflicts = append(conflicts, b)
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].StartTime.Before(conflicts[j].StartTime)
	})

	return ConflictResult{
		HasConflict: len(conflicts) > 0,
		Conflicts:   conflicts,
	}
}
