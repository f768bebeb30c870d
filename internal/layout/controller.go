// Package layout applies and restores the pinned three-way split and folds
// surplus panes back into the source pane.
package layout

import (
	"fmt"

	"github.com/simoncoessens/deskpin/internal/logging"
	"github.com/simoncoessens/deskpin/internal/workbench"
)

var log = logging.ForComponent(logging.CompLayout)

// Fractions of the pinned arrangement: two equal columns, the left column
// split into a source row and a terminal row.
const (
	ColumnSplit  = 0.5
	SourceRow    = 0.7
	TerminalRow  = 0.3
	maxPaneCount = 3
)

// ThreeWayTree returns the declarative split tree for the pinned layout.
// Leaf order is source, terminal, output, matching host enumeration order
// after provisioning.
func ThreeWayTree() workbench.LayoutNode {
	return workbench.LayoutNode{
		Orientation: workbench.OrientRow,
		Children: []workbench.LayoutChild{
			{
				Size: ColumnSplit,
				Node: &workbench.LayoutNode{
					Orientation: workbench.OrientColumn,
					Children: []workbench.LayoutChild{
						{Size: SourceRow},
						{Size: TerminalRow},
					},
				},
			},
			{Size: ColumnSplit},
		},
	}
}

// Controller issues layout mutations against the host. It keeps no state of
// its own: every decision re-reads the live pane list.
type Controller struct {
	host workbench.Host
}

// NewController creates a Controller for the given host.
func NewController(host workbench.Host) *Controller {
	return &Controller{host: host}
}

// ApplyThreeWay sends the pinned split tree to the host. The call is
// declarative: re-applying an already-matching layout changes nothing.
func (c *Controller) ApplyThreeWay() error {
	if err := c.host.ApplyLayout(ThreeWayTree()); err != nil {
		return fmt.Errorf("apply three-way layout: %w", err)
	}
	return nil
}

// CollapseExcess merges surplus panes into the current source pane until at
// most three remain. The newest surplus pane goes first; locked panes
// (output, terminal) are never merged away and the source pane is never a
// merge victim, so the policy survives arbitrary user rearrangement.
func (c *Controller) CollapseExcess() error {
	for {
		panes := c.host.Panes()
		if len(panes) <= maxPaneCount {
			return nil
		}
		source, ok := workbench.FindSourcePane(panes)
		if !ok {
			return nil
		}
		victim := ""
		for i := len(panes) - 1; i >= 0; i-- {
			if panes[i].Locked || panes[i].ID == source.ID {
				continue
			}
			victim = panes[i].ID
			break
		}
		if victim == "" {
			// Everything beyond the source is locked; leave it alone
			// rather than fight the locks.
			log.Debug("collapse skipped, no mergeable pane", "panes", len(panes))
			return nil
		}
		if err := c.host.MergePane(victim, source.ID); err != nil {
			return fmt.Errorf("collapse %s into %s: %w", victim, source.ID, err)
		}
		log.Debug("collapsed pane", "victim", victim, "into", source.ID)
	}
}
