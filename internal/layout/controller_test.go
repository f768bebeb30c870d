package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simoncoessens/deskpin/internal/workbench"
)

func TestThreeWayTree_Shape(t *testing.T) {
	tree := ThreeWayTree()
	assert.Equal(t, workbench.OrientRow, tree.Orientation)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, 3, tree.Leaves())

	left := tree.Children[0]
	require.NotNil(t, left.Node)
	assert.Equal(t, workbench.OrientColumn, left.Node.Orientation)
	assert.InDelta(t, 0.7, left.Node.Children[0].Size, 1e-9)
	assert.InDelta(t, 0.3, left.Node.Children[1].Size, 1e-9)
	assert.InDelta(t, left.Size, tree.Children[1].Size, 1e-9)
}

// threePaneHost builds the settled pinned arrangement: source, terminal
// (locked), output (locked).
func threePaneHost(t *testing.T) (*workbench.MemHost, string) {
	t.Helper()
	h := workbench.NewMemHost()
	source := h.Panes()[0].ID

	term, err := h.SplitPane(source, workbench.SplitDown, 0.3)
	require.NoError(t, err)
	_, err = h.CreateTerminal(term)
	require.NoError(t, err)
	require.NoError(t, h.LockPane(term, true))

	out, err := h.SplitPane(term, workbench.SplitRight, 0.5)
	require.NoError(t, err)
	_, err = h.OpenResource(out, "main.out", workbench.ItemOutput)
	require.NoError(t, err)
	require.NoError(t, h.LockPane(out, true))

	return h, source
}

func TestApplyThreeWay_Idempotent(t *testing.T) {
	h, _ := threePaneHost(t)
	c := NewController(h)

	require.NoError(t, c.ApplyThreeWay())
	first := h.LastLayout()
	require.NoError(t, c.ApplyThreeWay())
	assert.Equal(t, first.Leaves(), h.LastLayout().Leaves())
}

func TestCollapseExcess_BoundsPaneCount(t *testing.T) {
	h, source := threePaneHost(t)
	c := NewController(h)

	// The user tears open three extra panes.
	for i := 0; i < 3; i++ {
		extra, err := h.SplitPane(source, workbench.SplitRight, 0.5)
		require.NoError(t, err)
		_, err = h.OpenResource(extra, "stray.src", workbench.ItemFile)
		require.NoError(t, err)
	}
	require.Len(t, h.Panes(), 6)

	require.NoError(t, c.CollapseExcess())

	panes := h.Panes()
	assert.Len(t, panes, 3)
	// The stray items all ended up in the source pane.
	src, ok := workbench.FindSourcePane(panes)
	require.True(t, ok)
	assert.Equal(t, source, src.ID)
	assert.Len(t, src.Items, 3)
}

func TestCollapseExcess_NeverMergesLockedPanes(t *testing.T) {
	h, source := threePaneHost(t)
	c := NewController(h)

	extra, err := h.SplitPane(source, workbench.SplitRight, 0.5)
	require.NoError(t, err)
	require.NoError(t, c.CollapseExcess())

	for _, p := range h.Panes() {
		assert.NotEqual(t, extra, p.ID, "unlocked extra pane should be gone")
	}
	_, ok := workbench.FindTerminalPane(h.Panes())
	assert.True(t, ok, "terminal pane survives collapse")
	_, ok = workbench.FindOutputPane(h.Panes(), ".out")
	assert.True(t, ok, "output pane survives collapse")
}

func TestCollapseExcess_AllLockedBeyondSource(t *testing.T) {
	h, source := threePaneHost(t)
	c := NewController(h)

	extra, err := h.SplitPane(source, workbench.SplitRight, 0.5)
	require.NoError(t, err)
	require.NoError(t, h.LockPane(extra, true))

	// Nothing mergeable: collapse gives up instead of fighting the lock.
	require.NoError(t, c.CollapseExcess())
	assert.Len(t, h.Panes(), 4)
}

func TestCollapseExcess_NoOpAtOrBelowThree(t *testing.T) {
	h, _ := threePaneHost(t)
	c := NewController(h)
	require.NoError(t, c.CollapseExcess())
	assert.Len(t, h.Panes(), 3)
}
