package wardrobe

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/evidence-locker/internal/model"
)

type fakeAppearance struct {
	layers   []Layer
	readErr  error
	applyErr error
	set      []Layer
	applied  int
}

func (f *fakeAppearance) Layers() ([]Layer, error) { return f.layers, f.readErr }

func (f *fakeAppearance) SetLayers(l []Layer) error {
	f.set = l
	return nil
}

func (f *fakeAppearance) Apply() error {
	f.applied++
	return f.applyErr
}

func TestCaptureCopiesLayers(t *testing.T) {
	v := NewVault(nil)
	p := &fakeAppearance{layers: []Layer{
		{Path: "Avatar/Layers/Top/Tshirt", Tint: model.RGBA{1, 0, 0, 1}},
		{Path: "Avatar/Layers/Bottom/Jeans", Tint: model.RGBA{0.2, 1.4, -0.1, 1}},
	}}

	got := v.Capture(p)
	require.Len(t, got, 2)
	assert.Equal(t, "Avatar/Layers/Top/Tshirt", got[0].LayerPath)
	assert.Equal(t, model.RGBA{1, 0, 0, 1}, got[0].Color)
	assert.Equal(t, model.RGBA{0.2, 1, 0, 1}, got[1].Color)
}

func TestCaptureClampsNonFiniteTint(t *testing.T) {
	v := NewVault(nil)
	p := &fakeAppearance{layers: []Layer{
		{Path: "Avatar/Layers/Top/Tshirt", Tint: model.RGBA{math.NaN(), math.Inf(1), math.Inf(-1), 0.5}},
	}}

	got := v.Capture(p)
	require.Len(t, got, 1)
	assert.Equal(t, model.RGBA{0, 1, 0, 0.5}, got[0].Color)
}

func TestCaptureUnavailableProvider(t *testing.T) {
	v := NewVault(nil)
	assert.Empty(t, v.Capture(nil))
	assert.Empty(t, v.Capture(&fakeAppearance{readErr: errors.New("no avatar")}))
}

func TestRestoreInOrder(t *testing.T) {
	v := NewVault(nil)
	snap := &model.Snapshot{PlayerID: "P1", OriginalClothing: []model.ClothingLayer{
		{LayerPath: "a", Color: model.RGBA{1, 1, 1, 1}},
		{LayerPath: "b", Color: model.RGBA{0, 0, 0, 1}},
	}}
	p := &fakeAppearance{}

	require.NoError(t, v.Restore(snap, p))
	require.Len(t, p.set, 2)
	assert.Equal(t, "a", p.set[0].Path)
	assert.Equal(t, "b", p.set[1].Path)
	assert.Equal(t, 1, p.applied)
}

func TestRestoreNothingCaptured(t *testing.T) {
	v := NewVault(nil)
	p := &fakeAppearance{}

	assert.ErrorIs(t, v.Restore(nil, p), ErrNothingToRestore)
	assert.ErrorIs(t, v.Restore(&model.Snapshot{PlayerID: "P1"}, p), ErrNothingToRestore)
	assert.Nil(t, p.set)
	assert.Zero(t, p.applied)
}

func TestRestoreApplyError(t *testing.T) {
	v := NewVault(nil)
	snap := &model.Snapshot{OriginalClothing: []model.ClothingLayer{{LayerPath: "a"}}}
	err := v.Restore(snap, &fakeAppearance{applyErr: errors.New("boom")})
	assert.Error(t, err)
}
