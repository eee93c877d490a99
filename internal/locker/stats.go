package locker

import (
	"fmt"
	"time"
)

// DataStats summarises the stored state.
type DataStats struct {
	TotalSnapshots  int        `json:"total_snapshots"`
	ActiveSnapshots int        `json:"active_snapshots"`
	StoredItems     int        `json:"stored_items"`
	ExitPositions   int        `json:"exit_positions"`
	LastSaveTime    *time.Time `json:"last_save_time,omitempty"`
	Version         int        `json:"version"`
}

// Stats returns counts over the stored state.
func (s *Service) Stats() DataStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	root := s.table.Root()
	st := DataStats{
		ExitPositions: len(root.ExitPositions),
		Version:       root.Version,
	}
	st.TotalSnapshots, st.ActiveSnapshots = s.table.Counts()
	for _, snap := range root.Snapshots {
		st.StoredItems += len(snap.Items)
	}
	if !root.LastSaveTime.IsZero() {
		t := root.LastSaveTime
		st.LastSaveTime = &t
	}
	return st
}

// GetDataStats returns a one-line human summary of the stored state.
func (s *Service) GetDataStats() string {
	st := s.Stats()
	last := "never"
	if st.LastSaveTime != nil {
		last = st.LastSaveTime.Format(time.RFC3339)
	}
	return fmt.Sprintf("Snapshots: %d total, %d active | Items: %d | Exit positions: %d | Last save: %s | Version: %d",
		st.TotalSnapshots, st.ActiveSnapshots, st.StoredItems, st.ExitPositions, last, st.Version)
}
