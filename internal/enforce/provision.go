package enforce

import (
	"fmt"

	"github.com/simoncoessens/deskpin/internal/layout"
	"github.com/simoncoessens/deskpin/internal/workbench"
)

// EnsureTerminal makes exactly one terminal pane exist. An already-present
// terminal anywhere counts as provisioned and is simply adopted. Guarded by
// the terminalOpened latch so the restore path and the cold-start path can
// both call it; on failure the latch resets rather than leaving a
// half-provisioned state behind.
func (e *Engine) EnsureTerminal() error {
	e.mu.Lock()
	if e.terminalOpened {
		e.mu.Unlock()
		return nil
	}
	e.terminalOpened = true
	e.mu.Unlock()

	err := e.provisionTerminal()
	if err != nil {
		e.mu.Lock()
		e.terminalOpened = false
		e.mu.Unlock()
	}
	return err
}

func (e *Engine) provisionTerminal() error {
	panes := e.host.Panes()
	if term, ok := workbench.FindTerminalPane(panes); ok {
		e.adoptPane(term.ID, workbench.ItemTerminal)
		log.Debug("terminal already present, adopted", "pane", term.ID)
		return nil
	}

	source, ok := workbench.FindSourcePane(panes)
	if !ok {
		return fmt.Errorf("provision terminal: no source pane")
	}

	paneID, err := e.host.SplitPane(source.ID, workbench.SplitDown, layout.TerminalRow)
	if err != nil {
		return fmt.Errorf("provision terminal: split: %w", err)
	}

	it, err := e.host.CreateTerminal(paneID)
	if err != nil {
		// Fold the empty pane back in so retries start clean.
		if mergeErr := e.host.MergePane(paneID, source.ID); mergeErr != nil {
			log.Debug("cleanup of empty terminal pane failed", "pane", paneID, "err", mergeErr)
		}
		return fmt.Errorf("provision terminal: create: %w", err)
	}

	if err := e.host.SetSticky(paneID, it, true); err != nil {
		log.Debug("terminal sticky failed", "pane", paneID, "err", err)
	}
	if err := e.host.LockPane(paneID, true); err != nil {
		log.Debug("terminal lock failed", "pane", paneID, "err", err)
	}
	if err := e.chrome.Suppress(paneID); err != nil {
		log.Debug("terminal chrome suppress failed", "err", err)
	}
	log.Info("terminal provisioned", "pane", paneID)
	return nil
}
