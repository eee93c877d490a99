// Package locker is the arrest inventory service: it snapshots a person's
// belongings and clothing on arrest and hands the legal part back on release.
package locker

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rcliao/evidence-locker/internal/inventory"
	"github.com/rcliao/evidence-locker/internal/kv"
	"github.com/rcliao/evidence-locker/internal/metrics"
	"github.com/rcliao/evidence-locker/internal/model"
	"github.com/rcliao/evidence-locker/internal/store"
	"github.com/rcliao/evidence-locker/internal/wardrobe"
)

// DefaultVehicleWindow is how long after leaving a vehicle its storage is
// still searched on arrest.
const DefaultVehicleWindow = 30 * time.Second

// ErrNoIdentity is logged when an operation is called without a usable identity.
var ErrNoIdentity = errors.New("no identity")

// ErrBadPosition is logged when a position has a NaN or infinite component.
var ErrBadPosition = errors.New("position is not finite")

// Options configures a Service. Store is required; zero fields take defaults.
type Options struct {
	Store            kv.Store
	Key              string
	Retention        time.Duration
	AutosaveInterval time.Duration
	VehicleWindow    time.Duration
	Timeout          time.Duration
	Log              *slog.Logger
	Metrics          *metrics.Metrics
	Now              func() time.Time
}

// Service owns the schema root. All methods are safe for concurrent use and
// run one at a time, so deactivate-then-append is atomic for every identity.
// No method panics or returns storage errors to the caller except ForceSave,
// which reports the outcome.
type Service struct {
	mu sync.Mutex

	table     *store.Table
	gateway   *store.Gateway
	collector *inventory.Collector
	vault     *wardrobe.Vault
	log       *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	vehicle   time.Duration
}

// New builds a service and loads persisted state from opts.Store. Loading
// never fails; unreadable state starts empty.
func New(opts Options) *Service {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.VehicleWindow <= 0 {
		opts.VehicleWindow = DefaultVehicleWindow
	}

	gw := store.NewGateway(opts.Store, store.GatewayOptions{
		Key:              opts.Key,
		AutosaveInterval: opts.AutosaveInterval,
		Retention:        opts.Retention,
		Timeout:          opts.Timeout,
		Now:              opts.Now,
		Log:              opts.Log,
		Metrics:          opts.Metrics,
	})

	s := &Service{
		table:     store.NewTable(gw.Load()),
		gateway:   gw,
		collector: inventory.NewCollector(opts.Log, opts.Now),
		vault:     wardrobe.NewVault(opts.Log),
		log:       opts.Log,
		metrics:   opts.Metrics,
		now:       opts.Now,
		vehicle:   opts.VehicleWindow,
	}
	total, active := s.table.Counts()
	s.log.Info("locker loaded", "snapshots", total, "active", active)
	return s
}

func validIdentity(id Identity) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return id != nil && id.ID() != ""
}

// CreateInventorySnapshot confiscates the identity's belongings and clothing
// into a new active snapshot, replacing any earlier active one, and saves.
// It returns the new arrest id, or "" when the identity is unusable.
func (s *Service) CreateInventorySnapshot(id Identity) string {
	if !validIdentity(id) {
		s.log.Error("create snapshot", "error", ErrNoIdentity)
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	snap, err := s.buildSnapshot(id, now)
	if err != nil {
		s.log.Error("create snapshot", "player", id.ID(), "error", err)
		return ""
	}

	if replaced := s.table.Append(snap); replaced > 0 {
		s.log.Info("replaced active snapshot", "player", snap.PlayerID, "replaced", replaced)
	}
	s.metrics.SnapshotsCreated.Inc()
	s.gateway.Save(s.table.Root(), metrics.TriggerWrite)

	s.log.Info("snapshot created",
		"player", snap.PlayerID,
		"arrest_id", snap.ArrestID,
		"items", len(snap.Items),
		"clothing_layers", len(snap.OriginalClothing))
	return snap.ArrestID
}

func (s *Service) buildSnapshot(id Identity, now time.Time) (snap model.Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("build snapshot: %v", r)
		}
	}()

	var aux inventory.InventorySource
	if storage, exitedAt, ok := id.Vehicle(); ok && storage != nil && now.Sub(exitedAt) <= s.vehicle {
		aux = storage
	}

	items, rep := s.collector.Collect(id.Inventory(), aux)
	s.metrics.RecordDiscards(rep.Discarded)
	for _, it := range items {
		s.metrics.ItemsCollected.WithLabelValues(disposition(it)).Inc()
	}

	pos := id.Position()
	if !pos.Finite() {
		s.log.Warn("dropping arrest position", "player", id.ID(), "position", fmt.Sprint(pos), "error", ErrBadPosition)
		pos = model.Vec3{}
	}

	var crime []byte
	if c := id.CrimeData(); c != nil {
		crime = append([]byte(nil), c...)
	}

	return model.Snapshot{
		PlayerID:         id.ID(),
		PlayerName:       id.Name(),
		Items:            items,
		OriginalClothing: s.vault.Capture(id.Appearance()),
		LastPosition:     pos,
		ArrestTime:       now,
		ArrestID:         uuid.NewString(),
		IsActive:         true,
		CrimeData:        crime,
	}, nil
}

func disposition(it model.StoredItem) string {
	switch {
	case it.SpecialHandling == model.HandlingEmptyWeapon:
		return string(model.HandlingEmptyWeapon)
	case it.IsContraband:
		return "contraband"
	}
	return "legal"
}

// ActiveSnapshot returns a copy of the player's active snapshot.
func (s *Service) ActiveSnapshot(playerID string) (model.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.table.Active(playerID)
	if snap == nil {
		return model.Snapshot{}, false
	}
	return snap.Clone(), true
}

// GetLegalItemsForPlayer returns the items to hand back. Empty when the
// player has no active snapshot.
func (s *Service) GetLegalItemsForPlayer(playerID string) []model.StoredItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.LegalItems(playerID)
}

// GetContrabandItemsForPlayer returns the items kept as record.
func (s *Service) GetContrabandItemsForPlayer(playerID string) []model.StoredItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.ContrabandItems(playerID)
}

// ClearPlayerSnapshot marks the player's active snapshot released and saves.
// It is a no-op when nothing is active.
func (s *Service) ClearPlayerSnapshot(playerID string) {
	if playerID == "" {
		s.log.Error("clear snapshot", "error", ErrNoIdentity)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.table.Deactivate(playerID) {
		s.log.Debug("no active snapshot to clear", "player", playerID)
		return
	}
	s.gateway.Save(s.table.Root(), metrics.TriggerWrite)
	s.log.Info("snapshot cleared", "player", playerID)
}

// RestorePlayerClothing puts the captured clothing back on the identity.
// It reports whether anything was restored.
func (s *Service) RestorePlayerClothing(id Identity) bool {
	if !validIdentity(id) {
		s.log.Error("restore clothing", "error", ErrNoIdentity)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.restoreClothing(id)
}

func (s *Service) restoreClothing(id Identity) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("restore clothing", "player", id.ID(), "error", fmt.Errorf("%v", r))
			ok = false
		}
	}()

	err := s.vault.Restore(s.table.Active(id.ID()), id.Appearance())
	switch {
	case errors.Is(err, wardrobe.ErrNothingToRestore):
		return false
	case err != nil:
		s.log.Error("restore clothing", "player", id.ID(), "error", err)
		return false
	}
	return true
}

// Release is the outcome of releasing a person.
type Release struct {
	ArrestID         string             `json:"arrestId"`
	Legal            []model.StoredItem `json:"legal"`
	Contraband       []model.StoredItem `json:"contraband"`
	ClothingRestored bool               `json:"clothingRestored"`
}

// Release hands back legal items, restores clothing and clears the active
// snapshot in one step. ok is false when the identity has nothing active.
func (s *Service) Release(id Identity) (Release, bool) {
	if !validIdentity(id) {
		s.log.Error("release", "error", ErrNoIdentity)
		return Release{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	playerID := id.ID()
	snap := s.table.Active(playerID)
	if snap == nil {
		s.log.Info("release without active snapshot", "player", playerID)
		return Release{}, false
	}

	r := Release{
		ArrestID:   snap.ArrestID,
		Legal:      s.table.LegalItems(playerID),
		Contraband: s.table.ContrabandItems(playerID),
	}
	r.ClothingRestored = s.restoreClothing(id)
	s.table.Deactivate(playerID)
	s.gateway.Save(s.table.Root(), metrics.TriggerWrite)

	s.log.Info("released", "player", playerID, "arrest_id", r.ArrestID,
		"returned", len(r.Legal), "retained", len(r.Contraband))
	return r, true
}

// StorePlayerExitPosition records where a player left, last write wins.
func (s *Service) StorePlayerExitPosition(name string, pos model.Vec3) {
	if name == "" {
		s.log.Error("store exit position", "error", ErrNoIdentity)
		return
	}
	if !pos.Finite() {
		s.log.Error("store exit position", "player", name, "position", fmt.Sprint(pos), "error", ErrBadPosition)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.table.SetExitPosition(name, pos)
	s.gateway.Save(s.table.Root(), metrics.TriggerWrite)
}

// GetPlayerExitPosition returns the stored exit position for name.
func (s *Service) GetPlayerExitPosition(name string) (model.Vec3, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.ExitPosition(name)
}

// AutoSave is the host-driven tick; elapsed is process time since start.
// It reports whether a save was attempted.
func (s *Service) AutoSave(elapsed time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gateway.Tick(elapsed, s.table.Root())
}

// ForceSave saves immediately and reports the outcome.
func (s *Service) ForceSave() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gateway.Save(s.table.Root(), metrics.TriggerForce)
}

// ClearAllData drops every snapshot and exit position and saves the empty state.
func (s *Service) ClearAllData() {
	s.mu.Lock()
	defer s.mu.Unlock()

	total, _ := s.table.Counts()
	s.table.Reset()
	s.gateway.Save(s.table.Root(), metrics.TriggerForce)
	s.log.Warn("all locker data cleared", "snapshots", total)
}

// Snapshots returns copies of every stored snapshot, oldest first.
func (s *Service) Snapshots() []model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Snapshot, 0, len(s.table.Root().Snapshots))
	for _, snap := range s.table.Root().Snapshots {
		out = append(out, snap.Clone())
	}
	return out
}
