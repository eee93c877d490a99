// Package inventory classifies carried items and collects them into stored records.
package inventory

// InventorySource exposes the slots of a container (a person's pockets, a vehicle trunk).
type InventorySource interface {
	// Slots enumerates every slot, empty ones included.
	Slots() ([]Slot, error)
}

// Slot is one container position. Item returns nil for an empty slot.
type Slot interface {
	Item() (Item, error)
}

// Item is an item instance. Every accessor reports whether the
// underlying data actually carries the field.
type Item interface {
	ID() (string, bool)
	IDProperty() (string, bool)
	Name() (string, bool)
	StackCount() (int, bool)
	Amount() (int, bool)
	Kind() string
	// Definition returns the linked item definition, or nil.
	Definition() Definition
}

// Definition is the static description an item instance links to.
type Definition interface {
	ID() (string, bool)
	Name() (string, bool)
	// LegalStatus is 0 for legal items; ok is false when the metadata is absent.
	LegalStatus() (code int, ok bool)
	// IsProduct reports whether the definition describes a packaged product.
	IsProduct() bool
}
