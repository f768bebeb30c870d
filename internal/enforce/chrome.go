package enforce

import (
	"fmt"
	"sync"

	"github.com/simoncoessens/deskpin/internal/logging"
	"github.com/simoncoessens/deskpin/internal/workbench"
)

var chromeLog = logging.ForComponent(logging.CompChrome)

// ChromeSuppressor keeps marked panes rendering edge-to-edge. The host may
// wipe the chromeless marker on any relayout, so suppression is a
// watch-and-reassert loop: whenever a change notification shows a marked
// pane with its marker missing, the marker is reapplied immediately.
type ChromeSuppressor struct {
	host workbench.Host

	mu     sync.Mutex
	marked map[string]bool
}

// NewChromeSuppressor creates a suppressor for the given host.
func NewChromeSuppressor(host workbench.Host) *ChromeSuppressor {
	return &ChromeSuppressor{
		host:   host,
		marked: make(map[string]bool),
	}
}

// Suppress marks the pane for edge-to-edge rendering and remembers it so
// the reassertion loop covers it from now on.
func (c *ChromeSuppressor) Suppress(paneID string) error {
	if err := c.host.SuppressChrome(paneID); err != nil {
		return fmt.Errorf("suppress chrome on %s: %w", paneID, err)
	}
	c.mu.Lock()
	c.marked[paneID] = true
	c.mu.Unlock()
	return nil
}

// Forget drops a pane from the reassertion set, for panes merged away.
func (c *ChromeSuppressor) Forget(paneID string) {
	c.mu.Lock()
	delete(c.marked, paneID)
	c.mu.Unlock()
}

// Arm subscribes to host change notifications and reasserts missing markers.
// Returns the subscription teardown.
func (c *ChromeSuppressor) Arm() func() {
	return c.host.Subscribe(func(ev workbench.Event) {
		if ev.Kind != workbench.EventPaneChanged {
			return
		}
		c.mu.Lock()
		watched := c.marked[ev.PaneID]
		c.mu.Unlock()
		if !watched {
			return
		}
		for _, p := range c.host.Panes() {
			if p.ID != ev.PaneID {
				continue
			}
			if !p.Chromeless {
				chromeLog.Debug("chrome marker lost, reasserting", "pane", p.ID)
				if err := c.host.SuppressChrome(p.ID); err != nil {
					chromeLog.Warn("reassert chrome failed", "pane", p.ID, "err", err)
				}
			}
			return
		}
		// Pane is gone; stop tracking it.
		c.Forget(ev.PaneID)
	})
}
