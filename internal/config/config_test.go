package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "rota_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromPath_Valid(t *testing.T) {
	path := writeConfig(t, `
defaultShiftSize: 4
maxAllocationFrequency: 0.34
rotaOverrides:
  - rrule: "FREQ=WEEKLY;COUNT=1;BYDAY=SU"
    shiftSize: 6
    customPreallocations: ["external_caterer"]
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.DefaultShiftSize)
	assert.InDelta(t, 0.34, cfg.MaxAllocationFrequency, 1e-9)
	require.Len(t, cfg.RotaOverrides, 1)
	assert.Equal(t, 6, *cfg.RotaOverrides[0].ShiftSize)
}

func TestLoadFromPath_InvalidFrequency(t *testing.T) {
	path := writeConfig(t, `
defaultShiftSize: 4
maxAllocationFrequency: 1.5
`)

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestLoadFromPath_InvalidRRule(t *testing.T) {
	path := writeConfig(t, `
defaultShiftSize: 4
maxAllocationFrequency: 0.5
rotaOverrides:
  - rrule: "NOT_AN_RRULE"
`)

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
