package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestFindSourceFilePrefersMain(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "chapter1.tex"))
	touch(t, filepath.Join(dir, "main.tex"))

	src, ok := findSourceFile(dir, ".tex")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "main.tex"), src)
}

func TestFindSourceFileFallsBackLexically(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "zeta.tex"))
	touch(t, filepath.Join(dir, "alpha.tex"))
	touch(t, filepath.Join(dir, "notes.txt"))

	src, ok := findSourceFile(dir, ".tex")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "alpha.tex"), src)
}

func TestFindSourceFileNoneFound(t *testing.T) {
	_, ok := findSourceFile(t.TempDir(), ".tex")
	assert.False(t, ok)
}

func TestSanitizeSessionName(t *testing.T) {
	assert.Equal(t, "my-thesis-v2", sanitizeSessionName("my thesis.v2"))
	assert.Equal(t, "a-b", sanitizeSessionName("a:b"))
}
