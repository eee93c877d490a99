// Package model defines the core custody data types.
package model

import (
	"math"
	"time"
)

// SchemaVersion is the current persisted schema version.
const SchemaVersion = 1

// SpecialHandling marks items that need extra care when handed back.
type SpecialHandling string

const (
	HandlingNone        SpecialHandling = ""
	HandlingEmptyWeapon SpecialHandling = "empty_weapon"
)

// Vec3 is a world position encoded as [x, y, z].
type Vec3 [3]float64

// Finite reports whether every component is a real number. JSON cannot
// carry NaN or infinities.
func (v Vec3) Finite() bool {
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// RGBA is a tint encoded as [r, g, b, a], each component in [0,1].
type RGBA [4]float64

// StoredItem is one confiscated inventory entry. Immutable once created.
type StoredItem struct {
	ItemID           string          `json:"itemId"`
	ItemName         string          `json:"itemName"`
	StackCount       int             `json:"stackCount"`
	IsContraband     bool            `json:"isContraband"`
	ItemType         string          `json:"itemType"`
	ConfiscationTime time.Time       `json:"confiscationTime"`
	SpecialHandling  SpecialHandling `json:"specialHandling"`
	CashBalance      float64         `json:"cashBalance"` // reserved; cash is never stored
}

// ClothingLayer is one captured body layer.
type ClothingLayer struct {
	LayerPath string `json:"layerPath"`
	Color     RGBA   `json:"color"`
}

// Snapshot is the record of one arrest for one identity.
type Snapshot struct {
	PlayerID         string          `json:"playerId"`
	PlayerName       string          `json:"playerName"`
	Items            []StoredItem    `json:"items"`
	OriginalClothing []ClothingLayer `json:"originalClothing"`
	LastPosition     Vec3            `json:"lastPosition"`
	ArrestTime       time.Time       `json:"arrestTime"`
	ArrestID         string          `json:"arrestId"`
	IsActive         bool            `json:"isActive"`
	CrimeData        []byte          `json:"crimeData"`
}

// SchemaRoot holds all durable state.
type SchemaRoot struct {
	Snapshots     []Snapshot      `json:"playerSnapshots"`
	ExitPositions map[string]Vec3 `json:"storedExitPositions"`
	LastSaveTime  time.Time       `json:"lastSaveTime"`
	Version       int             `json:"version"`
}

// NewSchemaRoot returns an empty root at the current schema version.
func NewSchemaRoot() *SchemaRoot {
	return &SchemaRoot{
		Snapshots:     []Snapshot{},
		ExitPositions: map[string]Vec3{},
		Version:       SchemaVersion,
	}
}

// Clone returns a deep copy of the snapshot so callers cannot mutate stored state.
func (s Snapshot) Clone() Snapshot {
	c := s
	if s.Items != nil {
		c.Items = make([]StoredItem, len(s.Items))
		copy(c.Items, s.Items)
	}
	if s.OriginalClothing != nil {
		c.OriginalClothing = make([]ClothingLayer, len(s.OriginalClothing))
		copy(c.OriginalClothing, s.OriginalClothing)
	}
	if s.CrimeData != nil {
		c.CrimeData = append([]byte(nil), s.CrimeData...)
	}
	return c
}
