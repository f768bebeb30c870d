package workbench

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindSourcePane_FirstUnlocked(t *testing.T) {
	panes := []Pane{
		{ID: "a", Locked: true},
		{ID: "b"},
		{ID: "c"},
	}
	p, ok := FindSourcePane(panes)
	assert.True(t, ok)
	assert.Equal(t, "b", p.ID)
}

func TestFindSourcePane_AllLocked(t *testing.T) {
	panes := []Pane{
		{ID: "a", Locked: true},
		{ID: "b", Locked: true},
	}
	p, ok := FindSourcePane(panes)
	assert.True(t, ok)
	assert.Equal(t, "a", p.ID, "falls back to the first pane when all are locked")
}

func TestFindSourcePane_Empty(t *testing.T) {
	_, ok := FindSourcePane(nil)
	assert.False(t, ok)
}

func TestFindOutputPane_BySuffix(t *testing.T) {
	panes := []Pane{
		{ID: "a", Items: []Item{{Resource: "notes.src", Kind: ItemFile}}},
		{ID: "b", Items: []Item{{Resource: "main.out", Kind: ItemFile}}},
	}
	p, ok := FindOutputPane(panes, ".out")
	assert.True(t, ok)
	assert.Equal(t, "b", p.ID)
}

func TestFindOutputPane_ByKind(t *testing.T) {
	// An output-kind item counts even when its resource has no suffix match.
	panes := []Pane{
		{ID: "a", Items: []Item{{Resource: "preview", Kind: ItemOutput}}},
	}
	p, ok := FindOutputPane(panes, ".pdf")
	assert.True(t, ok)
	assert.Equal(t, "a", p.ID)
}

func TestFindOutputPane_None(t *testing.T) {
	panes := []Pane{
		{ID: "a", Items: []Item{{Resource: "notes.src", Kind: ItemFile}}},
	}
	_, ok := FindOutputPane(panes, ".out")
	assert.False(t, ok)
}

func TestFindTerminalPane(t *testing.T) {
	panes := []Pane{
		{ID: "a", Items: []Item{{Resource: "notes.src", Kind: ItemFile}}},
		{ID: "b", Items: []Item{{Kind: ItemTerminal}}},
		{ID: "c", Items: []Item{{Kind: ItemTerminal}}},
	}
	p, ok := FindTerminalPane(panes)
	assert.True(t, ok)
	assert.Equal(t, "b", p.ID, "first match in enumeration order wins")
}

func TestClassification_SelfHealsAfterMutation(t *testing.T) {
	h := NewMemHost()
	base := h.Panes()[0].ID

	termPane, err := h.SplitPane(base, SplitDown, 0.3)
	assert.NoError(t, err)
	_, err = h.CreateTerminal(termPane)
	assert.NoError(t, err)

	p, ok := FindTerminalPane(h.Panes())
	assert.True(t, ok)
	assert.Equal(t, termPane, p.ID)

	// Move the terminal elsewhere; the next query must follow the content.
	outPane, err := h.SplitPane(base, SplitRight, 0.5)
	assert.NoError(t, err)
	err = h.MoveItem(termPane, Item{Kind: ItemTerminal}, outPane)
	assert.NoError(t, err)

	p, ok = FindTerminalPane(h.Panes())
	assert.True(t, ok)
	assert.Equal(t, outPane, p.ID)
}
