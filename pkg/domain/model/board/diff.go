package board

import (
	"github.com/easel-labs/easel/pkg/domain/types"
)

// Change holds the before/after snapshots of one updated record
type Change struct {
	Before *Record `json:"before"`
	After  *Record `json:"after"`
}

// Diff is a reversible change-set describing exactly the records one
// execution added, updated or removed. Applying the inverse of a diff to the
// post-execution state restores the pre-execution state for the touched
// records, as long as no later mutation touched the same records.
type Diff struct {
	Added   map[types.RecordID]*Record `json:"added,omitempty"`
	Updated map[types.RecordID]Change  `json:"updated,omitempty"`
	Removed map[types.RecordID]*Record `json:"removed,omitempty"`
}

// NewDiff creates an empty diff
func NewDiff() *Diff {
	return &Diff{
		Added:   map[types.RecordID]*Record{},
		Updated: map[types.RecordID]Change{},
		Removed: map[types.RecordID]*Record{},
	}
}

// IsEmpty reports whether the diff touches no records
func (d *Diff) IsEmpty() bool {
	return d == nil || (len(d.Added) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0)
}

// Touched returns the IDs of all records the diff touches
func (d *Diff) Touched() []types.RecordID {
	if d == nil {
		return nil
	}
	ids := make([]types.RecordID, 0, len(d.Added)+len(d.Updated)+len(d.Removed))
	for id := range d.Added {
		ids = append(ids, id)
	}
	for id := range d.Updated {
		ids = append(ids, id)
	}
	for id := range d.Removed {
		ids = append(ids, id)
	}
	return ids
}

// Invert returns the reverse change-set: additions become removals, removals
// become additions, and updates swap before/after.
func (d *Diff) Invert() *Diff {
	inv := NewDiff()
	for id, rec := range d.Added {
		inv.Removed[id] = rec.Clone()
	}
	for id, rec := range d.Removed {
		inv.Added[id] = rec.Clone()
	}
	for id, ch := range d.Updated {
		inv.Updated[id] = Change{
			Before: ch.After.Clone(),
			After:  ch.Before.Clone(),
		}
	}
	return inv
}

// Clone creates a deep copy of the diff
func (d *Diff) Clone() *Diff {
	if d == nil {
		return nil
	}
	cloned := NewDiff()
	for id, rec := range d.Added {
		cloned.Added[id] = rec.Clone()
	}
	for id, ch := range d.Updated {
		cloned.Updated[id] = Change{Before: ch.Before.Clone(), After: ch.After.Clone()}
	}
	for id, rec := range d.Removed {
		cloned.Removed[id] = rec.Clone()
	}
	return cloned
}
