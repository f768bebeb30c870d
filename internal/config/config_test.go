package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_MissingFileGivesDefaults(t *testing.T) {
	s := LoadSettings(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Equal(t, "auto", s.Theme)
	assert.Equal(t, ".tex", s.Pin.SourceExt)
	assert.Equal(t, ".pdf", s.Pin.OutputExt)
}

func TestLoadSettings_InvalidThemeNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = \"neon\"\n"), 0o644))
	s := LoadSettings(path)
	assert.Equal(t, "auto", s.Theme)
}

func TestMergeWorkspace_OverridesOnlyNonEmpty(t *testing.T) {
	dir := t.TempDir()
	override := "[pin]\noutput_ext = \".html\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, WorkspaceFile), []byte(override), 0o644))

	s := LoadSettings(filepath.Join(dir, "absent.toml"))
	s.MergeWorkspace(dir)
	assert.Equal(t, ".html", s.Pin.OutputExt)
	assert.Equal(t, ".tex", s.Pin.SourceExt, "unset override keeps the global value")
}

func TestStore_SetGetRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "config.toml"))

	require.NoError(t, store.Set("workbench", "layout", "three-way"))
	val, ok, err := store.Get("workbench", "layout")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "three-way", val)

	_, ok, err = store.Get("workbench", "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.Get("nosection", "layout")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SetPreservesForeignSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	seed := "theme = \"dark\"\n\n[other]\nkeep = \"me\"\n"
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	store := NewStore(path)
	require.NoError(t, store.Set("workbench", "layout", "three-way"))

	val, ok, err := store.Get("other", "keep")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "me", val)

	s := LoadSettings(path)
	assert.Equal(t, "dark", s.Theme, "top-level keys survive writes too")
}

func TestStore_SetCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "config.toml")
	store := NewStore(path)
	require.NoError(t, store.Set("workbench", "layout", "three-way"))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
