package store

import (
	"time"

	"github.com/rcliao/evidence-locker/internal/model"
)

// DefaultRetention is how long snapshots are kept, active or not.
const DefaultRetention = 7 * 24 * time.Hour

// Sweep removes every snapshot whose arrest time is before now-window and
// returns how many were removed. Order of the survivors is preserved.
func Sweep(root *model.SchemaRoot, window time.Duration, now time.Time) int {
	if root == nil || len(root.Snapshots) == 0 {
		return 0
	}
	cutoff := now.Add(-window)
	kept := root.Snapshots[:0]
	for _, s := range root.Snapshots {
		if s.ArrestTime.Before(cutoff) {
			continue
		}
		kept = append(kept, s)
	}
	removed := len(root.Snapshots) - len(kept)
	clear(root.Snapshots[len(kept):])
	root.Snapshots = kept
	return removed
}
