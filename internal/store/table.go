// Package store holds the snapshot table, its persistence gateway and the
// retention sweep.
package store

import (
	"github.com/rcliao/evidence-locker/internal/model"
)

// Table is the in-memory snapshot store over a SchemaRoot. It is not safe for
// concurrent use; the owner serialises access.
type Table struct {
	root *model.SchemaRoot
}

// NewTable wraps root. A nil root starts empty.
func NewTable(root *model.SchemaRoot) *Table {
	t := &Table{}
	t.Replace(root)
	return t
}

// Root returns the live schema root.
func (t *Table) Root() *model.SchemaRoot {
	return t.root
}

// Replace swaps in a new root, normalising missing collections.
func (t *Table) Replace(root *model.SchemaRoot) {
	t.root = normalize(root)
}

func normalize(root *model.SchemaRoot) *model.SchemaRoot {
	if root == nil {
		return model.NewSchemaRoot()
	}
	if root.Snapshots == nil {
		root.Snapshots = []model.Snapshot{}
	}
	if root.ExitPositions == nil {
		root.ExitPositions = map[string]model.Vec3{}
	}
	if root.Version == 0 {
		root.Version = model.SchemaVersion
	}
	return root
}

// Append deactivates every active snapshot of the same player and appends
// snap as the new active one. It returns how many were deactivated.
func (t *Table) Append(snap model.Snapshot) int {
	n := t.deactivate(snap.PlayerID)
	snap.IsActive = true
	t.root.Snapshots = append(t.root.Snapshots, snap)
	return n
}

// Active returns the player's active snapshot, or nil. The pointer is into
// the table and is invalidated by the next Append.
func (t *Table) Active(playerID string) *model.Snapshot {
	for i := range t.root.Snapshots {
		s := &t.root.Snapshots[i]
		if s.PlayerID == playerID && s.IsActive {
			return s
		}
	}
	return nil
}

// Deactivate soft-deletes the player's active snapshot. It reports whether
// anything changed.
func (t *Table) Deactivate(playerID string) bool {
	return t.deactivate(playerID) > 0
}

func (t *Table) deactivate(playerID string) int {
	n := 0
	for i := range t.root.Snapshots {
		s := &t.root.Snapshots[i]
		if s.PlayerID == playerID && s.IsActive {
			s.IsActive = false
			n++
		}
	}
	return n
}

// LegalItems returns the active snapshot's non-contraband items.
func (t *Table) LegalItems(playerID string) []model.StoredItem {
	return t.filterItems(playerID, false)
}

// ContrabandItems returns the active snapshot's contraband items.
func (t *Table) ContrabandItems(playerID string) []model.StoredItem {
	return t.filterItems(playerID, true)
}

func (t *Table) filterItems(playerID string, contraband bool) []model.StoredItem {
	out := []model.StoredItem{}
	s := t.Active(playerID)
	if s == nil {
		return out
	}
	for _, it := range s.Items {
		if it.IsContraband == contraband {
			out = append(out, it)
		}
	}
	return out
}

// SetExitPosition records the last exit position for a player name.
func (t *Table) SetExitPosition(name string, pos model.Vec3) {
	t.root.ExitPositions[name] = pos
}

// ExitPosition returns the stored exit position for a player name.
func (t *Table) ExitPosition(name string) (model.Vec3, bool) {
	pos, ok := t.root.ExitPositions[name]
	return pos, ok
}

// Reset drops all snapshots and positions.
func (t *Table) Reset() {
	t.Replace(nil)
}

// Counts returns the total and active snapshot counts.
func (t *Table) Counts() (total, active int) {
	for _, s := range t.root.Snapshots {
		if s.IsActive {
			active++
		}
	}
	return len(t.root.Snapshots), active
}
