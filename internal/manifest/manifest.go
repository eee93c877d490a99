// Package manifest describes a person as a JSON document and exposes it
// through the locker's capability interfaces. It is the host used by the CLI
// and HTTP API.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rcliao/evidence-locker/internal/inventory"
	"github.com/rcliao/evidence-locker/internal/model"
	"github.com/rcliao/evidence-locker/internal/wardrobe"
)

// ErrBrokenSlot is returned by a slot marked broken.
var ErrBrokenSlot = errors.New("slot cannot be inspected")

// Person is a person document.
type Person struct {
	PlayerID   string          `json:"id"`
	PlayerName string          `json:"name"`
	Pos        model.Vec3      `json:"position"`
	Crime      json.RawMessage `json:"crime,omitempty"`
	Pockets    Slots           `json:"inventory"`
	Outfit     []LayerSpec     `json:"clothing"`
	Car        *Vehicle        `json:"vehicle,omitempty"`

	pending []LayerSpec
}

// LayerSpec is one clothing layer.
type LayerSpec struct {
	Path string     `json:"path"`
	Tint model.RGBA `json:"tint"`
}

// Vehicle is the storage of the vehicle the person last left.
type Vehicle struct {
	ExitedAt time.Time `json:"exitedAt"`
	Storage  Slots     `json:"storage"`
}

// Decode reads a person document.
func Decode(r io.Reader) (*Person, error) {
	var p Person
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode person: %w", err)
	}
	return &p, nil
}

// ReadFile reads a person document from path.
func ReadFile(path string) (*Person, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile writes the document back to path.
func (p *Person) WriteFile(path string) error {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode person: %w", err)
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func (p *Person) ID() string           { return p.PlayerID }
func (p *Person) Name() string         { return p.PlayerName }
func (p *Person) Position() model.Vec3 { return p.Pos }

func (p *Person) CrimeData() []byte {
	if len(p.Crime) == 0 || bytes.Equal(bytes.TrimSpace(p.Crime), []byte("null")) {
		return nil
	}
	return []byte(p.Crime)
}

func (p *Person) Inventory() inventory.InventorySource {
	if p.Pockets == nil {
		return nil
	}
	return p.Pockets
}

func (p *Person) Vehicle() (inventory.InventorySource, time.Time, bool) {
	if p.Car == nil {
		return nil, time.Time{}, false
	}
	return p.Car.Storage, p.Car.ExitedAt, true
}

func (p *Person) Appearance() wardrobe.AppearanceProvider {
	return appearance{p}
}

type appearance struct{ p *Person }

func (a appearance) Layers() ([]wardrobe.Layer, error) {
	out := make([]wardrobe.Layer, 0, len(a.p.Outfit))
	for _, l := range a.p.Outfit {
		out = append(out, wardrobe.Layer{Path: l.Path, Tint: l.Tint})
	}
	return out, nil
}

func (a appearance) SetLayers(layers []wardrobe.Layer) error {
	a.p.pending = make([]LayerSpec, 0, len(layers))
	for _, l := range layers {
		a.p.pending = append(a.p.pending, LayerSpec{Path: l.Path, Tint: l.Tint})
	}
	return nil
}

func (a appearance) Apply() error {
	if a.p.pending == nil {
		return fmt.Errorf("no layers set")
	}
	a.p.Outfit, a.p.pending = a.p.pending, nil
	return nil
}

// Slots is a container; a null entry is an empty slot.
type Slots []*ItemSpec

// Slots implements inventory.InventorySource.
func (s Slots) Slots() ([]inventory.Slot, error) {
	out := make([]inventory.Slot, 0, len(s))
	for _, it := range s {
		out = append(out, slot{it})
	}
	return out, nil
}

type slot struct{ spec *ItemSpec }

func (s slot) Item() (inventory.Item, error) {
	if s.spec == nil {
		return nil, nil
	}
	if s.spec.Broken {
		return nil, ErrBrokenSlot
	}
	return s.spec, nil
}

// ItemSpec is an item instance. Absent fields fall through the collector's
// extraction chains.
type ItemSpec struct {
	ItemID   string          `json:"id,omitempty"`
	IDProp   string          `json:"idProperty,omitempty"`
	ItemName string          `json:"name,omitempty"`
	Stack    *int            `json:"stackCount,omitempty"`
	Qty      *int            `json:"amount,omitempty"`
	ItemKind string          `json:"kind,omitempty"`
	Def      *DefinitionSpec `json:"definition,omitempty"`
	Broken   bool            `json:"broken,omitempty"`
}

func (i *ItemSpec) ID() (string, bool)         { return i.ItemID, i.ItemID != "" }
func (i *ItemSpec) IDProperty() (string, bool) { return i.IDProp, i.IDProp != "" }
func (i *ItemSpec) Name() (string, bool)       { return i.ItemName, i.ItemName != "" }
func (i *ItemSpec) StackCount() (int, bool)    { return optional(i.Stack) }
func (i *ItemSpec) Amount() (int, bool)        { return optional(i.Qty) }
func (i *ItemSpec) Kind() string               { return i.ItemKind }

func (i *ItemSpec) Definition() inventory.Definition {
	if i.Def == nil {
		return nil
	}
	return i.Def
}

// DefinitionSpec is the static item definition.
type DefinitionSpec struct {
	DefID     string `json:"id,omitempty"`
	DefName   string `json:"name,omitempty"`
	Status    *int   `json:"legalStatus,omitempty"`
	Product   bool   `json:"product,omitempty"`
	Packaging string `json:"packaging,omitempty"`
}

func (d *DefinitionSpec) ID() (string, bool)       { return d.DefID, d.DefID != "" }
func (d *DefinitionSpec) Name() (string, bool)     { return d.DefName, d.DefName != "" }
func (d *DefinitionSpec) LegalStatus() (int, bool) { return optional(d.Status) }

// IsProduct is true for products and anything carrying packaging.
func (d *DefinitionSpec) IsProduct() bool {
	return d.Product || d.Packaging != ""
}

func optional(n *int) (int, bool) {
	if n == nil {
		return 0, false
	}
	return *n, true
}
