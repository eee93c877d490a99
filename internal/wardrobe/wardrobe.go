// Package wardrobe captures and restores a person's clothing layers.
package wardrobe

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/rcliao/evidence-locker/internal/model"
)

// Layer is one body layer as the appearance provider reports it.
type Layer struct {
	Path string
	Tint model.RGBA
}

// AppearanceProvider reads and rewrites a person's body layers.
type AppearanceProvider interface {
	Layers() ([]Layer, error)
	SetLayers(layers []Layer) error
	// Apply commits the layers set by SetLayers.
	Apply() error
}

// ErrNothingToRestore is returned by Restore when there is no captured clothing.
var ErrNothingToRestore = errors.New("no captured clothing")

// Vault copies clothing in and out of snapshots.
type Vault struct {
	log *slog.Logger
}

// NewVault creates a vault. A nil logger falls back to slog.Default.
func NewVault(log *slog.Logger) *Vault {
	if log == nil {
		log = slog.Default()
	}
	return &Vault{log: log}
}

// Capture copies the provider's current layers. An unavailable provider
// yields an empty list so the arrest can proceed without clothing.
func (v *Vault) Capture(p AppearanceProvider) []model.ClothingLayer {
	out := make([]model.ClothingLayer, 0)
	if p == nil {
		v.log.Warn("appearance provider unavailable, clothing not captured")
		return out
	}
	layers, err := p.Layers()
	if err != nil {
		v.log.Warn("read clothing layers failed", "error", err)
		return out
	}
	for _, l := range layers {
		out = append(out, model.ClothingLayer{LayerPath: l.Path, Color: clamp(l.Tint)})
	}
	return out
}

// Restore puts the snapshot's captured clothing back on the provider in its
// original order. A snapshot without layers is a logged no-op and returns
// ErrNothingToRestore.
func (v *Vault) Restore(snap *model.Snapshot, p AppearanceProvider) error {
	if snap == nil || len(snap.OriginalClothing) == 0 {
		v.log.Info("no clothing to restore")
		return ErrNothingToRestore
	}
	if p == nil {
		return fmt.Errorf("appearance provider unavailable")
	}
	layers := make([]Layer, 0, len(snap.OriginalClothing))
	for _, c := range snap.OriginalClothing {
		layers = append(layers, Layer{Path: c.LayerPath, Tint: c.Color})
	}
	if err := p.SetLayers(layers); err != nil {
		return fmt.Errorf("set layers: %w", err)
	}
	if err := p.Apply(); err != nil {
		return fmt.Errorf("apply layers: %w", err)
	}
	v.log.Debug("clothing restored", "player", snap.PlayerID, "layers", len(layers))
	return nil
}

func clamp(c model.RGBA) model.RGBA {
	for i, f := range c {
		switch {
		case math.IsNaN(f), f < 0:
			c[i] = 0
		case f > 1:
			c[i] = 1
		}
	}
	return c
}
