package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rcliao/evidence-locker/internal/kv"
	"github.com/rcliao/evidence-locker/internal/metrics"
	"github.com/rcliao/evidence-locker/internal/model"
)

const (
	// DefaultKey is the durable slot the schema root is saved under.
	DefaultKey = "inventory_storage_data"
	// DefaultAutosaveInterval is the minimum elapsed time between autosaves.
	DefaultAutosaveInterval = 30 * time.Second
	// DefaultTimeout bounds a single backend operation.
	DefaultTimeout = 5 * time.Second
)

// GatewayOptions configures a Gateway. Zero fields take defaults.
type GatewayOptions struct {
	Key              string
	AutosaveInterval time.Duration
	Retention        time.Duration
	Timeout          time.Duration
	Now              func() time.Time
	Log              *slog.Logger
	Metrics          *metrics.Metrics
}

// Gateway saves and loads the schema root to one key of a kv.Store.
// Failures are logged and never surface as panics or lost in-memory state.
type Gateway struct {
	kv        kv.Store
	key       string
	interval  time.Duration
	retention time.Duration
	timeout   time.Duration
	now       func() time.Time
	log       *slog.Logger
	metrics   *metrics.Metrics

	lastAutosave time.Duration
}

// NewGateway creates a gateway over store.
func NewGateway(store kv.Store, opts GatewayOptions) *Gateway {
	g := &Gateway{
		kv:        store,
		key:       opts.Key,
		interval:  opts.AutosaveInterval,
		retention: opts.Retention,
		timeout:   opts.Timeout,
		now:       opts.Now,
		log:       opts.Log,
		metrics:   opts.Metrics,
	}
	if g.key == "" {
		g.key = DefaultKey
	}
	if g.interval <= 0 {
		g.interval = DefaultAutosaveInterval
	}
	if g.retention <= 0 {
		g.retention = DefaultRetention
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.log == nil {
		g.log = slog.Default()
	}
	if g.metrics == nil {
		g.metrics = metrics.New(nil)
	}
	return g
}

// Save stamps root.LastSaveTime, encodes root as JSON and writes it to the
// slot. On failure the stamp is rolled back and the error is logged and
// returned. An encode or write failure leaves the slot at its previous value;
// a flush failure may leave the new document unpersisted in the backend.
func (g *Gateway) Save(root *model.SchemaRoot, trigger string) error {
	start := time.Now()
	err := g.save(root)
	g.metrics.ObserveSave(trigger, start, err)
	if err != nil {
		g.log.Error("save failed", "trigger", trigger, "error", err)
		return err
	}
	g.log.Debug("saved", "trigger", trigger, "snapshots", len(root.Snapshots))
	return nil
}

func (g *Gateway) save(root *model.SchemaRoot) error {
	if root == nil {
		return fmt.Errorf("nil schema root")
	}
	prev := root.LastSaveTime
	root.LastSaveTime = g.now().UTC()

	b, err := json.Marshal(root)
	if err != nil {
		root.LastSaveTime = prev
		return fmt.Errorf("encode: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	if err := g.kv.SetString(ctx, g.key, string(b)); err != nil {
		root.LastSaveTime = prev
		return fmt.Errorf("write slot: %w", err)
	}
	if err := g.kv.Flush(ctx); err != nil {
		root.LastSaveTime = prev
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Load reads the slot. A missing, unreadable or invalid payload yields an
// empty root. Snapshots past the retention window are swept, and the root is
// saved again if any were removed. Load never fails.
func (g *Gateway) Load() *model.SchemaRoot {
	root := g.read()
	if removed := Sweep(root, g.retention, g.now().UTC()); removed > 0 {
		g.metrics.SnapshotsPurged.Add(float64(removed))
		g.log.Info("purged expired snapshots", "removed", removed, "retention", g.retention)
		g.Save(root, metrics.TriggerSweep)
	}
	return root
}

func (g *Gateway) read() *model.SchemaRoot {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	raw, ok, err := g.kv.GetString(ctx, g.key)
	if err != nil {
		g.log.Error("read slot failed, starting empty", "key", g.key, "error", err)
		return model.NewSchemaRoot()
	}
	if !ok || raw == "" {
		g.log.Info("no saved data, starting empty", "key", g.key)
		return model.NewSchemaRoot()
	}

	var root *model.SchemaRoot
	if err := json.Unmarshal([]byte(raw), &root); err != nil || root == nil {
		g.log.Warn("saved data unreadable, starting empty", "key", g.key, "error", err)
		return model.NewSchemaRoot()
	}
	if root.Version != 0 && root.Version != model.SchemaVersion {
		g.log.Warn("unexpected schema version", "version", root.Version, "want", model.SchemaVersion)
	}
	return normalize(root)
}

// Tick is the host-driven autosave check. elapsed is process time since
// start; a save happens only once the interval has passed since the last
// autosave. It reports whether a save was attempted.
func (g *Gateway) Tick(elapsed time.Duration, root *model.SchemaRoot) bool {
	if elapsed-g.lastAutosave < g.interval {
		return false
	}
	g.lastAutosave = elapsed
	g.Save(root, metrics.TriggerAutosave)
	return true
}
