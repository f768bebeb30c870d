// Package enforce contains the enforcement engine: the one stateful
// component that pins the three-pane arrangement and re-asserts it whenever
// the host reports a structural change.
package enforce

import (
	"context"
	"fmt"
	"sync"

	"github.com/simoncoessens/deskpin/internal/discovery"
	"github.com/simoncoessens/deskpin/internal/layout"
	"github.com/simoncoessens/deskpin/internal/logging"
	"github.com/simoncoessens/deskpin/internal/workbench"
)

var log = logging.ForComponent(logging.CompEngine)

// ConfigWriter persists namespaced configuration keys. Writes are
// best-effort: a failing config store must never block enforcement.
type ConfigWriter interface {
	Set(section, key, value string) error
}

// Options configure one activation.
type Options struct {
	// WorkspaceDir is the directory holding sources and build artifacts.
	WorkspaceDir string
	// OutputExt is the rendered artifact suffix, including the dot.
	OutputExt string
	// SourceExt is the source file suffix, including the dot.
	SourceExt string
	// Config receives the workbench settings the pin applies. May be nil.
	Config ConfigWriter
}

// Engine wires classifier, layout controller, chrome suppressor, discovery
// and terminal provisioning into a one-shot bootstrap plus always-on event
// handlers. All handlers are idempotent and state-driven: they inspect the
// live pane list and fix only what is actually violated, so the events
// their own actions raise find nothing left to do.
type Engine struct {
	host   workbench.Host
	opts   Options
	layout *layout.Controller
	chrome *ChromeSuppressor

	mu             sync.Mutex
	outputOpened   bool
	terminalOpened bool
	armed          bool

	watcher *discovery.Watcher

	disposeMu   sync.Mutex
	disposables []func()
	disposed    bool
}

// New creates an engine for one workspace. Latches start cleared; they are
// reset only by a fresh activation, never mid-session.
func New(host workbench.Host, opts Options) *Engine {
	if opts.OutputExt == "" {
		opts.OutputExt = ".pdf"
	}
	if opts.SourceExt == "" {
		opts.SourceExt = ".tex"
	}
	return &Engine{
		host:   host,
		opts:   opts,
		layout: layout.NewController(host),
		chrome: NewChromeSuppressor(host),
	}
}

// Activate runs the bootstrap once the host reports restore completion and
// arms the event handlers. It returns a dispose function that tears down
// every listener, watcher and injected marker in one sweep; no handler
// fires after dispose returns.
func (e *Engine) Activate(ctx context.Context) (func(), error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.host.Ready():
	}

	panes := e.host.Panes()
	if out, ok := workbench.FindOutputPane(panes, e.opts.OutputExt); ok {
		// Restore case: the output pane survived the session reload.
		// Trust the restored layout; just re-adopt the panes and arm.
		log.Info("restore detected, adopting existing output pane", "pane", out.ID)
		e.mu.Lock()
		e.outputOpened = true
		e.mu.Unlock()
		e.adoptPane(out.ID, workbench.ItemOutput)
		if err := e.EnsureTerminal(); err != nil {
			log.Warn("terminal provisioning failed, will retry on next event", "err", err)
		}
		e.arm()
		return e.dispose, nil
	}

	// Cold start.
	e.writePinConfig()
	if src, ok := workbench.FindSourcePane(panes); ok {
		if err := e.chrome.Suppress(src.ID); err != nil {
			log.Debug("source chrome suppress failed", "err", err)
		}
	}

	e.watcher = discovery.New(e.opts.WorkspaceDir, e.opts.OutputExt, e.opts.SourceExt, e.openOutput)
	if err := e.watcher.Start(); err != nil {
		// A watch that cannot start is not fatal; manual rebuilds still
		// land via pane events. Log and carry on.
		log.Warn("output discovery unavailable", "err", err)
	}
	e.addDisposable(func() { _ = e.watcher.Close() })

	if err := e.EnsureTerminal(); err != nil {
		log.Warn("terminal provisioning failed, will retry on next event", "err", err)
	}
	e.applyLayoutIfSettled()
	e.arm()
	return e.dispose, nil
}

// writePinConfig records the workspace settings the pin relies on. Failures
// are ignored: the config surface is an optional collaborator.
func (e *Engine) writePinConfig() {
	if e.opts.Config == nil {
		return
	}
	set := func(key, value string) {
		if err := e.opts.Config.Set("workbench", key, value); err != nil {
			log.Debug("config write ignored", "key", key, "err", err)
		}
	}
	set("layout", "three-way")
	set("output_ext", e.opts.OutputExt)
	set("source_ext", e.opts.SourceExt)
}

// openOutput is the discovery callback: open the artifact in the output
// pane, creating that pane if needed. The outputOpened latch makes the
// restore-time check and the file watch race-safe; exactly one open wins.
func (e *Engine) openOutput(path string) error {
	e.mu.Lock()
	if e.outputOpened {
		e.mu.Unlock()
		return nil
	}
	e.outputOpened = true
	e.mu.Unlock()

	err := e.doOpenOutput(path)
	if err != nil {
		// Reset so a later file event can retry; a transient host failure
		// must never permanently wedge discovery.
		e.mu.Lock()
		e.outputOpened = false
		e.mu.Unlock()
	}
	return err
}

func (e *Engine) doOpenOutput(path string) error {
	panes := e.host.Panes()
	pane, ok := workbench.FindOutputPane(panes, e.opts.OutputExt)
	if !ok {
		// Split off the terminal pane when one exists so the new pane
		// lands after it, keeping slot order source, terminal, output.
		base, baseOK := workbench.FindTerminalPane(panes)
		if !baseOK {
			base, baseOK = workbench.FindSourcePane(panes)
		}
		if !baseOK {
			return fmt.Errorf("open output: no pane to split from")
		}
		id, err := e.host.SplitPane(base.ID, workbench.SplitRight, layout.ColumnSplit)
		if err != nil {
			return fmt.Errorf("open output: split: %w", err)
		}
		pane = workbench.Pane{ID: id}
	}

	it, err := e.host.OpenResource(pane.ID, path, workbench.ItemOutput)
	if err != nil {
		return fmt.Errorf("open output %s: %w", path, err)
	}
	if err := e.host.SetSticky(pane.ID, it, true); err != nil {
		log.Debug("sticky mark failed", "pane", pane.ID, "err", err)
	}
	if err := e.host.LockPane(pane.ID, true); err != nil {
		log.Debug("lock failed", "pane", pane.ID, "err", err)
	}
	if err := e.chrome.Suppress(pane.ID); err != nil {
		log.Debug("output chrome suppress failed", "err", err)
	}
	e.applyLayoutIfSettled()
	log.Info("output artifact pinned", "pane", pane.ID, "path", path)
	return nil
}

// adoptPane re-locks and re-sticks a pane whose role survived a restore.
func (e *Engine) adoptPane(paneID string, kind workbench.ItemKind) {
	for _, p := range e.host.Panes() {
		if p.ID != paneID {
			continue
		}
		if !p.Locked {
			if err := e.host.LockPane(p.ID, true); err != nil {
				log.Debug("adopt lock failed", "pane", p.ID, "err", err)
			}
		}
		for _, it := range p.Items {
			if it.Kind == kind && !it.Sticky {
				if err := e.host.SetSticky(p.ID, it, true); err != nil {
					log.Debug("adopt sticky failed", "pane", p.ID, "err", err)
				}
			}
		}
		if err := e.chrome.Suppress(p.ID); err != nil {
			log.Debug("adopt chrome suppress failed", "err", err)
		}
		return
	}
}

// applyLayoutIfSettled re-applies the three-way split once all three panes
// exist. With fewer panes the declarative tree would not match and the host
// would reject it, so the call waits for provisioning to finish.
func (e *Engine) applyLayoutIfSettled() {
	if len(e.host.Panes()) != layout.ThreeWayTree().Leaves() {
		return
	}
	if err := e.layout.ApplyThreeWay(); err != nil {
		log.Debug("layout apply skipped", "err", err)
	}
}

// arm installs the always-on invariant handlers. Idempotent.
func (e *Engine) arm() {
	e.mu.Lock()
	if e.armed {
		e.mu.Unlock()
		return
	}
	e.armed = true
	e.mu.Unlock()

	e.addDisposable(e.host.Subscribe(e.handleEvent))
	e.addDisposable(e.chrome.Arm())
	log.Info("enforcement armed")
}

// handleEvent is the single entry point for host notifications. The host
// delivers one invocation at a time, so no locking is needed around the
// pane inspection itself; every decision re-reads live state.
func (e *Engine) handleEvent(ev workbench.Event) {
	if e.isDisposed() {
		return
	}
	switch ev.Kind {
	case workbench.EventPaneAdded:
		if err := e.layout.CollapseExcess(); err != nil {
			log.Warn("collapse failed", "err", err)
		}
	case workbench.EventPaneChanged:
		e.reconcilePane(ev.PaneID)
	case workbench.EventActiveItemChanged:
		e.closeUnwanted()
		e.reconcilePane(ev.PaneID)
	}
}

// reconcilePane fixes whatever the change broke in one pane, classifying
// roles from current content. Actions taken here raise further change
// events; those re-enter with nothing left to fix, which is what keeps the
// handlers from feeding back forever.
func (e *Engine) reconcilePane(paneID string) {
	panes := e.host.Panes()
	var pane *workbench.Pane
	for i := range panes {
		if panes[i].ID == paneID {
			pane = &panes[i]
			break
		}
	}
	if pane == nil {
		return
	}

	source, _ := workbench.FindSourcePane(panes)
	output, hasOutput := workbench.FindOutputPane(panes, e.opts.OutputExt)
	terminal, hasTerminal := workbench.FindTerminalPane(panes)

	// Close furniture wherever it shows up.
	for _, it := range pane.Items {
		if it.Kind == workbench.ItemUnwanted {
			if err := e.host.CloseItem(pane.ID, it); err != nil {
				log.Debug("close unwanted failed", "pane", pane.ID, "err", err)
			}
		}
	}

	isOutput := hasOutput && output.ID == pane.ID && pane.ID != source.ID
	isTerminal := hasTerminal && terminal.ID == pane.ID && pane.ID != source.ID

	switch {
	case isOutput:
		e.relockPane(pane, workbench.ItemOutput, source.ID)
	case isTerminal:
		e.relockPane(pane, workbench.ItemTerminal, source.ID)
	case pane.ID == source.ID:
		e.enforceSingleSourceItem(pane)
	}
}

// relockPane holds a locked pane to its role: re-lock after a forced
// unlock, re-stick its role items, and move foreign items to the source
// pane instead of letting them take the slot over.
func (e *Engine) relockPane(pane *workbench.Pane, kind workbench.ItemKind, sourceID string) {
	if !pane.Locked {
		log.Debug("re-locking pane", "pane", pane.ID, "role", kind.String())
		if err := e.host.LockPane(pane.ID, true); err != nil {
			log.Warn("re-lock failed", "pane", pane.ID, "err", err)
		}
	}
	for _, it := range pane.Items {
		switch {
		case it.Kind == kind:
			if !it.Sticky {
				if err := e.host.SetSticky(pane.ID, it, true); err != nil {
					log.Debug("re-stick failed", "pane", pane.ID, "err", err)
				}
			}
		case it.Kind == workbench.ItemUnwanted:
			// Already closed above.
		default:
			if sourceID != "" && sourceID != pane.ID {
				if err := e.host.MoveItem(pane.ID, it, sourceID); err != nil {
					log.Debug("evict foreign item failed", "pane", pane.ID, "err", err)
				}
			}
		}
	}
}

// enforceSingleSourceItem keeps at most one plain file item in the source
// pane: the most recently opened one survives, earlier ones close.
func (e *Engine) enforceSingleSourceItem(pane *workbench.Pane) {
	var files []workbench.Item
	for _, it := range pane.Items {
		if it.Kind == workbench.ItemFile {
			files = append(files, it)
		}
	}
	if len(files) <= 1 {
		return
	}
	for _, it := range files[:len(files)-1] {
		if err := e.host.CloseItem(pane.ID, it); err != nil {
			log.Debug("close superseded item failed", "pane", pane.ID, "err", err)
		}
	}
}

// closeUnwanted sweeps every pane for furniture items.
func (e *Engine) closeUnwanted() {
	for _, p := range e.host.Panes() {
		for _, it := range p.Items {
			if it.Kind == workbench.ItemUnwanted {
				if err := e.host.CloseItem(p.ID, it); err != nil {
					log.Debug("close unwanted failed", "pane", p.ID, "err", err)
				}
			}
		}
	}
}

// OutputOpened reports the output latch, for status displays.
func (e *Engine) OutputOpened() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outputOpened
}

// TerminalOpened reports the terminal latch, for status displays.
func (e *Engine) TerminalOpened() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.terminalOpened
}

// DiscoveryState reports the discovery lifecycle, Idle when no watcher ran.
func (e *Engine) DiscoveryState() discovery.State {
	if e.watcher == nil {
		return discovery.Idle
	}
	return e.watcher.State()
}

func (e *Engine) addDisposable(fn func()) {
	e.disposeMu.Lock()
	defer e.disposeMu.Unlock()
	if e.disposed {
		// Teardown already happened; release immediately.
		fn()
		return
	}
	e.disposables = append(e.disposables, fn)
}

func (e *Engine) isDisposed() bool {
	e.disposeMu.Lock()
	defer e.disposeMu.Unlock()
	return e.disposed
}

// dispose releases every listener and watcher exactly once.
func (e *Engine) dispose() {
	e.disposeMu.Lock()
	if e.disposed {
		e.disposeMu.Unlock()
		return
	}
	e.disposed = true
	fns := e.disposables
	e.disposables = nil
	e.disposeMu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
	log.Info("enforcement disposed")
}
