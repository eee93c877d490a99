package manifest

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/evidence-locker/internal/inventory"
	"github.com/rcliao/evidence-locker/internal/model"
	"github.com/rcliao/evidence-locker/internal/wardrobe"
)

func TestReadFile(t *testing.T) {
	p, err := ReadFile("testdata/arrest.json")
	require.NoError(t, err)

	assert.Equal(t, "76561198000000001", p.ID())
	assert.Equal(t, "Dale Cooper", p.Name())
	assert.Equal(t, model.Vec3{120.5, 3, -48.25}, p.Position())
	assert.Contains(t, string(p.CrimeData()), "possession")

	storage, exitedAt, ok := p.Vehicle()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 5, 10, 9, 29, 50, 0, time.UTC), exitedAt)
	slots, err := storage.Slots()
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile("testdata/nope.json")
	assert.Error(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestEmptyPerson(t *testing.T) {
	p, err := Decode(strings.NewReader(`{"id":"P1"}`))
	require.NoError(t, err)

	assert.Nil(t, p.Inventory())
	assert.Nil(t, p.CrimeData())
	_, _, ok := p.Vehicle()
	assert.False(t, ok)
}

func TestNullCrimeData(t *testing.T) {
	p, err := Decode(strings.NewReader(`{"id":"P1","crime":null}`))
	require.NoError(t, err)
	assert.Nil(t, p.CrimeData())
}

func TestSlots(t *testing.T) {
	p, err := ReadFile("testdata/arrest.json")
	require.NoError(t, err)

	slots, err := p.Inventory().Slots()
	require.NoError(t, err)
	require.Len(t, slots, 8)

	item, err := slots[4].Item()
	assert.NoError(t, err)
	assert.Nil(t, item)

	_, err = slots[5].Item()
	assert.ErrorIs(t, err, ErrBrokenSlot)

	item, err = slots[6].Item()
	require.NoError(t, err)
	_, ok := item.ID()
	assert.False(t, ok)
	id, _ := item.IDProperty()
	assert.Equal(t, "baggie_og", id)
	n, ok := item.StackCount()
	assert.True(t, ok)
	assert.Equal(t, 4, n)
	assert.True(t, item.Definition().IsProduct())

	item, err = slots[7].Item()
	require.NoError(t, err)
	assert.Nil(t, item.Definition())
	_, ok = item.Amount()
	assert.False(t, ok)
}

func TestCollectFromManifest(t *testing.T) {
	p, err := ReadFile("testdata/arrest.json")
	require.NoError(t, err)

	c := inventory.NewCollector(nil, func() time.Time { return time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC) })
	items, rep := c.Collect(p.Inventory(), nil)

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.ItemName)
	}
	assert.Equal(t, []string{"9mm Pistol", "Switchblade", "OG Kush", "Phone"}, names)
	assert.Equal(t, map[string]int{"cash": 1, "ammo": 1, "error": 1}, rep.Discarded)

	assert.False(t, items[0].IsContraband)
	assert.Equal(t, model.HandlingEmptyWeapon, items[0].SpecialHandling)
	assert.True(t, items[1].IsContraband)
	assert.True(t, items[2].IsContraband)
	assert.Equal(t, 4, items[2].StackCount)
	assert.False(t, items[3].IsContraband)
}

func TestAppearanceSetAndApply(t *testing.T) {
	p, err := ReadFile("testdata/arrest.json")
	require.NoError(t, err)
	a := p.Appearance()

	layers, err := a.Layers()
	require.NoError(t, err)
	require.Len(t, layers, 2)
	assert.Equal(t, "Avatar/Layers/Top/T-Shirt", layers[0].Path)

	assert.Error(t, a.Apply(), "apply without set")

	require.NoError(t, a.SetLayers([]wardrobe.Layer{{Path: "Avatar/Layers/Top/Jumpsuit", Tint: model.RGBA{1, 0.5, 0, 1}}}))
	assert.Len(t, p.Outfit, 2, "set does not take effect before apply")
	require.NoError(t, a.Apply())
	require.Len(t, p.Outfit, 1)
	assert.Equal(t, "Avatar/Layers/Top/Jumpsuit", p.Outfit[0].Path)
}

func TestWriteFileRoundTrip(t *testing.T) {
	p, err := ReadFile("testdata/arrest.json")
	require.NoError(t, err)
	p.Outfit = p.Outfit[:1]

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, p.WriteFile(path))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, p.PlayerID, got.PlayerID)
	assert.Equal(t, p.Outfit, got.Outfit)
	assert.Len(t, got.Pockets, 8)
	assert.Nil(t, got.Pockets[4])
	assert.JSONEq(t, string(p.Crime), string(got.Crime))
}
