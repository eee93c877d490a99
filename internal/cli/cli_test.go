package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/evidence-locker/internal/config"
	"github.com/rcliao/evidence-locker/internal/manifest"
	"github.com/rcliao/evidence-locker/internal/model"
)

func setup(t *testing.T) (db, person string) {
	t.Helper()
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("storage:\n  backend: sqlite\n  keep_revisions: 3\n"), 0o644))
	t.Setenv(config.EnvConfig, cfgPath)

	b, err := os.ReadFile("../manifest/testdata/arrest.json")
	require.NoError(t, err)
	person = filepath.Join(dir, "person.json")
	require.NoError(t, os.WriteFile(person, b, 0o644))

	return filepath.Join(dir, "locker.db"), person
}

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetIn(strings.NewReader(stdin))
	RootCmd.SetArgs(args)
	require.NoError(t, RootCmd.Execute())
	return out.String()
}

func TestArrestReleaseCycle(t *testing.T) {
	db, person := setup(t)

	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(run(t, "", "--db", db, "arrest", person)), &created))
	assert.Equal(t, "76561198000000001", created["playerId"])
	assert.EqualValues(t, 3, created["legal"])
	assert.EqualValues(t, 2, created["contraband"])

	var legal []model.StoredItem
	require.NoError(t, json.Unmarshal([]byte(run(t, "", "--db", db, "legal", "76561198000000001")), &legal))
	assert.Len(t, legal, 3)

	var contraband []model.StoredItem
	require.NoError(t, json.Unmarshal([]byte(run(t, "", "--db", db, "contraband", "76561198000000001")), &contraband))
	assert.Len(t, contraband, 2)

	summary := run(t, "", "--db", db, "stats", "--text")
	assert.Contains(t, summary, "Snapshots: 1 total, 1 active | Items: 5")

	p, err := manifest.ReadFile(person)
	require.NoError(t, err)
	p.Outfit = nil
	require.NoError(t, p.WriteFile(person))

	out := run(t, "", "--db", db, "release", "--write", person)
	assert.Contains(t, out, `"clothingRestored": true`)
	p, err = manifest.ReadFile(person)
	require.NoError(t, err)
	assert.Len(t, p.Outfit, 2)

	assert.JSONEq(t, `[]`, run(t, "", "--db", db, "legal", "76561198000000001"))

	var all []model.Snapshot
	require.NoError(t, json.Unmarshal([]byte(run(t, "", "--db", db, "export", "--active=false")), &all))
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)
}

func TestArrestFromStdin(t *testing.T) {
	db, _ := setup(t)

	out := run(t, `{"id":"P9","name":"Stdin","inventory":[{"id":"phone","name":"Phone"}]}`, "--db", db, "arrest")
	assert.Contains(t, out, `"playerId": "P9"`)
	assert.Contains(t, run(t, "", "--db", db, "snapshot", "P9"), `"itemName": "Phone"`)
}

func TestPositionAndWipe(t *testing.T) {
	db, person := setup(t)

	run(t, "", "--db", db, "position", "set", "Dale Cooper", "10", "0", "5.5")
	assert.JSONEq(t, `[10, 0, 5.5]`, run(t, "", "--db", db, "position", "get", "Dale Cooper"))

	run(t, "", "--db", db, "arrest", person)
	assert.JSONEq(t, `{"ok":true,"removed":1}`, run(t, "", "--db", db, "wipe", "--yes"))

	var stats struct {
		Backend string `json:"backend"`
		Locker  struct {
			TotalSnapshots int `json:"total_snapshots"`
			ExitPositions  int `json:"exit_positions"`
		} `json:"locker"`
		Database struct {
			Revisions int `json:"revisions"`
		} `json:"database"`
	}
	require.NoError(t, json.Unmarshal([]byte(run(t, "", "--db", db, "stats", "--text=false")), &stats))
	assert.Equal(t, "sqlite", stats.Backend)
	assert.Equal(t, 0, stats.Locker.TotalSnapshots)
	assert.Equal(t, 0, stats.Locker.ExitPositions)
	assert.LessOrEqual(t, stats.Database.Revisions, 3)
	assert.Positive(t, stats.Database.Revisions)
}

func TestSaveAndRevisions(t *testing.T) {
	db, person := setup(t)

	run(t, "", "--db", db, "arrest", person)
	assert.JSONEq(t, `{"ok":true}`, run(t, "", "--db", db, "save"))

	var revs []struct {
		Key      string `json:"key"`
		Revision int    `json:"revision"`
	}
	require.NoError(t, json.Unmarshal([]byte(run(t, "", "--db", db, "revisions")), &revs))
	require.NotEmpty(t, revs)
	assert.Equal(t, "inventory_storage_data", revs[0].Key)
}

func TestParseVec3(t *testing.T) {
	v, err := parseVec3([]string{"1", "-2.5", "3e2"})
	require.NoError(t, err)
	assert.Equal(t, model.Vec3{1, -2.5, 300}, v)

	_, err = parseVec3([]string{"1", "x", "3"})
	assert.Error(t, err)

	for _, bad := range []string{"NaN", "Inf", "-Inf", "1e999"} {
		_, err = parseVec3([]string{"1", bad, "3"})
		assert.Error(t, err, bad)
	}
}

func TestFilterSnapshots(t *testing.T) {
	all := []model.Snapshot{
		{PlayerID: "P1", IsActive: false},
		{PlayerID: "P1", IsActive: true},
		{PlayerID: "P2", IsActive: true},
	}
	assert.Len(t, filterSnapshots(all, "", false), 3)
	assert.Len(t, filterSnapshots(all, "P1", false), 2)
	assert.Len(t, filterSnapshots(all, "P1", true), 1)
	assert.Len(t, filterSnapshots(all, "", true), 2)
}
