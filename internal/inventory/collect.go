package inventory

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rcliao/evidence-locker/internal/model"
)

const (
	unknownID   = "unknown"
	unknownName = "Unknown Item"
)

// Discard reasons reported by Collect.
const (
	DiscardCash  = "cash"
	DiscardAmmo  = "ammo"
	DiscardError = "error"
)

// Report counts what happened to the slots of one collection.
type Report struct {
	Kept      int
	Discarded map[string]int
}

func (r *Report) discard(reason string) {
	if r.Discarded == nil {
		r.Discarded = map[string]int{}
	}
	r.Discarded[reason]++
}

// Collector turns inventory slots into stored item records.
type Collector struct {
	log *slog.Logger
	now func() time.Time
}

// NewCollector creates a collector. A nil logger falls back to slog.Default.
func NewCollector(log *slog.Logger, now func() time.Time) *Collector {
	if log == nil {
		log = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Collector{log: log, now: now}
}

// Collect walks inv and, when non-nil, the auxiliary source (vehicle storage),
// returning the items to store. Cash and ammunition are dropped, weapons are
// flagged for empty hand-back. The returned slice is never nil.
func (c *Collector) Collect(inv, aux InventorySource) ([]model.StoredItem, Report) {
	var rep Report
	items := make([]model.StoredItem, 0)
	at := c.now().UTC()

	items = c.collectSource(items, "inventory", inv, at, &rep)
	if aux != nil {
		items = c.collectSource(items, "vehicle", aux, at, &rep)
	}
	rep.Kept = len(items)
	return items, rep
}

func (c *Collector) collectSource(dst []model.StoredItem, label string, src InventorySource, at time.Time, rep *Report) []model.StoredItem {
	if src == nil {
		return dst
	}
	slots, err := c.enumerate(src)
	if err != nil {
		c.log.Warn("enumerate slots failed", "source", label, "error", err)
		return dst
	}
	for i, slot := range slots {
		item, keep, reason, err := c.inspect(slot, at)
		if err != nil {
			c.log.Debug("skip slot", "source", label, "slot", i, "error", err)
			rep.discard(DiscardError)
			continue
		}
		if !keep {
			if reason != "" {
				rep.discard(reason)
			}
			continue
		}
		dst = append(dst, item)
	}
	return dst
}

func (c *Collector) enumerate(src InventorySource) (slots []Slot, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("enumerate: %v", r)
		}
	}()
	return src.Slots()
}

// inspect converts one slot. keep is false for empty slots (reason "") and
// for dropped items (reason set).
func (c *Collector) inspect(slot Slot, at time.Time) (st model.StoredItem, keep bool, reason string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("inspect slot: %v", r)
		}
	}()
	if slot == nil {
		return st, false, "", nil
	}
	item, err := slot.Item()
	if err != nil {
		return st, false, "", fmt.Errorf("read item: %w", err)
	}
	if item == nil {
		return st, false, "", nil
	}

	id := itemID(item)
	name := itemName(item, id)
	kind := item.Kind()

	if IsCash(name, kind) {
		return st, false, DiscardCash, nil
	}
	if IsAmmo(name, kind) {
		return st, false, DiscardAmmo, nil
	}

	st = model.StoredItem{
		ItemID:           id,
		ItemName:         name,
		StackCount:       stackCount(item),
		IsContraband:     Classify(item),
		ItemType:         kind,
		ConfiscationTime: at,
	}
	if IsWeapon(name, kind) {
		st.SpecialHandling = model.HandlingEmptyWeapon
	}
	return st, true, "", nil
}

func itemID(item Item) string {
	if v, ok := item.ID(); ok && v != "" {
		return v
	}
	if v, ok := item.IDProperty(); ok && v != "" {
		return v
	}
	if def := item.Definition(); def != nil {
		if v, ok := def.ID(); ok && v != "" {
			return v
		}
	}
	return unknownID
}

func itemName(item Item, id string) string {
	if v, ok := item.Name(); ok && v != "" {
		return v
	}
	if def := item.Definition(); def != nil {
		if v, ok := def.Name(); ok && v != "" {
			return v
		}
	}
	if id != unknownID {
		return id
	}
	return unknownName
}

func stackCount(item Item) int {
	n, ok := item.StackCount()
	if !ok {
		n, ok = item.Amount()
	}
	if !ok || n < 1 {
		return 1
	}
	return n
}
