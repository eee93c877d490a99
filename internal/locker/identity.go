package locker

import (
	"time"

	"github.com/rcliao/evidence-locker/internal/inventory"
	"github.com/rcliao/evidence-locker/internal/model"
	"github.com/rcliao/evidence-locker/internal/wardrobe"
)

// Identity is the person being arrested or released, as the host sees them.
type Identity interface {
	// ID is the stable identity key snapshots are stored under.
	ID() string
	// Name is the display name; exit positions are keyed by it.
	Name() string
	Position() model.Vec3
	// Inventory may return nil when the person carries nothing inspectable.
	Inventory() inventory.InventorySource
	// Appearance may return nil when clothing cannot be read.
	Appearance() wardrobe.AppearanceProvider
	// Vehicle returns the storage of the vehicle the person last exited and
	// when they exited it; ok is false when there is none.
	Vehicle() (storage inventory.InventorySource, exitedAt time.Time, ok bool)
	// CrimeData is an opaque record attached to the snapshot, or nil.
	CrimeData() []byte
}
