// Package tmux adapts a tmux session to the workbench.Host surface. Pane
// roles, locks and sticky flags live in adapter state mirrored into tmux
// pane user options (@deskpin_*), so a restarted deskpin can rebuild its
// view of a session it pinned earlier.
package tmux

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"al.essio.dev/pkg/shellescape"
	"github.com/charmbracelet/x/ansi"

	"github.com/simoncoessens/deskpin/internal/logging"
	"github.com/simoncoessens/deskpin/internal/workbench"
)

var log = logging.ForComponent(logging.CompTmux)

// paneFormat is the list-panes format the adapter parses. Fields are
// tab-separated; the @deskpin_* options come back empty on panes deskpin
// has never touched.
const paneFormat = "#{pane_id}\t#{pane_current_command}\t#{@deskpin_kind}\t#{@deskpin_resource}\t#{@deskpin_locked}\t#{@deskpin_sticky}\t#{@deskpin_chromeless}"

// Options configures a Session.
type Options struct {
	// Session is the tmux session name. Defaults to "deskpin".
	Session string
	// Editor is the command that opens a source file in a pane.
	Editor string
	// Viewer is the command that renders the output artifact in a pane.
	Viewer string
	// Shell overrides $SHELL for terminal panes.
	Shell string
	// OutputExt helps classify panes whose command is unrecognized.
	OutputExt string
	// Runner overrides the tmux binary invocation, for tests.
	Runner CmdRunner
}

// paneState is the adapter's record of one tmux pane. A tmux pane shows one
// foreground program; items[0] is that program, later entries are records
// carried through merges until something relaunches them.
type paneState struct {
	items      []workbench.Item
	locked     bool
	chromeless bool
	lastCmd    string
}

// Session implements workbench.Host on top of one tmux session.
type Session struct {
	name      string
	editor    string
	viewer    string
	shell     string
	outputExt string
	runner    CmdRunner

	mu    sync.Mutex
	panes map[string]*paneState
	order []string

	subMu   sync.Mutex
	subs    map[int]func(workbench.Event)
	nextSub int

	evMu        sync.Mutex
	queue       []workbench.Event
	dispatching bool

	ready      chan struct{}
	lastLayout *workbench.LayoutNode
}

// NewSession attaches to the named tmux session, creating it detached if it
// does not exist, and rebuilds adapter state from the panes found there.
func NewSession(opts Options) (*Session, error) {
	if opts.Session == "" {
		opts.Session = "deskpin"
	}
	if opts.Shell == "" {
		opts.Shell = os.Getenv("SHELL")
	}
	if opts.Shell == "" {
		opts.Shell = "sh"
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}

	s := &Session{
		name:      opts.Session,
		editor:    opts.Editor,
		viewer:    opts.Viewer,
		shell:     opts.Shell,
		outputExt: opts.OutputExt,
		runner:    opts.Runner,
		panes:     make(map[string]*paneState),
		subs:      make(map[int]func(workbench.Event)),
		ready:     make(chan struct{}),
	}

	if _, err := s.runner.Run("has-session", "-t", s.name); err != nil {
		if _, err := s.runner.Run("new-session", "-d", "-s", s.name); err != nil {
			return nil, fmt.Errorf("tmux new-session: %w", err)
		}
		log.Info("created session", "name", s.name)
	} else {
		log.Info("adopted existing session", "name", s.name)
	}

	if err := s.Sync(); err != nil {
		return nil, fmt.Errorf("initial pane sync: %w", err)
	}
	close(s.ready)
	return s, nil
}

// Name returns the tmux session name.
func (s *Session) Name() string { return s.name }

// Ready reports restore completion.
func (s *Session) Ready() <-chan struct{} { return s.ready }

// Subscribe registers an event handler.
func (s *Session) Subscribe(fn func(workbench.Event)) func() {
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// emit queues events and drains the queue unless a drain is already running,
// so handlers never observe another handler mid-flight.
func (s *Session) emit(events ...workbench.Event) {
	s.evMu.Lock()
	s.queue = append(s.queue, events...)
	if s.dispatching {
		s.evMu.Unlock()
		return
	}
	s.dispatching = true
	for len(s.queue) > 0 {
		ev := s.queue[0]
		s.queue = s.queue[1:]
		s.evMu.Unlock()

		s.subMu.Lock()
		fns := make([]func(workbench.Event), 0, len(s.subs))
		for _, fn := range s.subs {
			fns = append(fns, fn)
		}
		s.subMu.Unlock()
		for _, fn := range fns {
			fn(ev)
		}

		s.evMu.Lock()
	}
	s.dispatching = false
	s.evMu.Unlock()
}

// Panes returns a snapshot of the current panes in tmux enumeration order.
func (s *Session) Panes() []workbench.Pane {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]workbench.Pane, 0, len(s.order))
	for _, id := range s.order {
		st := s.panes[id]
		out = append(out, workbench.Pane{
			ID:         id,
			Locked:     st.locked,
			Chromeless: st.chromeless,
			Items:      append([]workbench.Item(nil), st.items...),
		})
	}
	return out
}

// SplitPane creates an empty shell pane next to base.
func (s *Session) SplitPane(baseID string, dir workbench.SplitDirection, fraction float64) (string, error) {
	s.mu.Lock()
	if _, ok := s.panes[baseID]; !ok {
		s.mu.Unlock()
		return "", fmt.Errorf("split %s: %w", baseID, workbench.ErrPaneNotFound)
	}
	s.mu.Unlock()

	flag := "-h"
	if dir == workbench.SplitDown {
		flag = "-v"
	}
	pct := int(fraction*100 + 0.5)
	out, err := s.runner.Run("split-window", "-d", flag, "-t", baseID,
		"-p", fmt.Sprintf("%d", pct), "-P", "-F", "#{pane_id}")
	if err != nil {
		return "", fmt.Errorf("tmux split-window: %w", err)
	}
	newID := strings.TrimSpace(out)
	if newID == "" {
		return "", fmt.Errorf("tmux split-window: no pane id returned")
	}

	s.mu.Lock()
	s.panes[newID] = &paneState{}
	s.insertAfterLocked(baseID, newID)
	s.mu.Unlock()

	s.emit(workbench.Event{Kind: workbench.EventPaneAdded, PaneID: newID})
	return newID, nil
}

func (s *Session) insertAfterLocked(baseID, newID string) {
	for i, id := range s.order {
		if id == baseID {
			s.order = append(s.order[:i+1], append([]string{newID}, s.order[i+1:]...)...)
			return
		}
	}
	s.order = append(s.order, newID)
}

// MergePane kills the src pane and carries its item records into dst. tmux
// panes run one program, so only the records move; nothing is relaunched.
func (s *Session) MergePane(srcID, dstID string) error {
	s.mu.Lock()
	src, okSrc := s.panes[srcID]
	dst, okDst := s.panes[dstID]
	if !okSrc || !okDst {
		s.mu.Unlock()
		return fmt.Errorf("merge %s into %s: %w", srcID, dstID, workbench.ErrPaneNotFound)
	}
	if src.locked {
		s.mu.Unlock()
		return fmt.Errorf("merge %s: %w", srcID, workbench.ErrPaneLocked)
	}
	dst.items = append(dst.items, src.items...)
	delete(s.panes, srcID)
	s.removeFromOrderLocked(srcID)
	s.mu.Unlock()

	if _, err := s.runner.Run("kill-pane", "-t", srcID); err != nil {
		return fmt.Errorf("tmux kill-pane: %w", err)
	}
	s.persistPane(dstID)
	s.emit(workbench.Event{Kind: workbench.EventPaneChanged, PaneID: dstID})
	return nil
}

func (s *Session) removeFromOrderLocked(id string) {
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// LockPane sets or clears the pane's locked flag.
func (s *Session) LockPane(paneID string, locked bool) error {
	s.mu.Lock()
	st, ok := s.panes[paneID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("lock %s: %w", paneID, workbench.ErrPaneNotFound)
	}
	changed := st.locked != locked
	st.locked = locked
	s.mu.Unlock()

	s.persistPane(paneID)
	if changed {
		s.emit(workbench.Event{Kind: workbench.EventPaneChanged, PaneID: paneID})
	}
	return nil
}

// SetSticky flags the first matching item record.
func (s *Session) SetSticky(paneID string, item workbench.Item, sticky bool) error {
	s.mu.Lock()
	st, ok := s.panes[paneID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("sticky %s: %w", paneID, workbench.ErrPaneNotFound)
	}
	found := false
	for i := range st.items {
		if st.items[i].Equal(item) {
			st.items[i].Sticky = sticky
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("sticky %s: %w", paneID, workbench.ErrItemNotFound)
	}
	s.persistPane(paneID)
	s.emit(workbench.Event{Kind: workbench.EventPaneChanged, PaneID: paneID})
	return nil
}

// CloseItem removes the first matching item. Closing the foreground program
// respawns the pane onto the next record, or a bare shell if none remain.
func (s *Session) CloseItem(paneID string, item workbench.Item) error {
	s.mu.Lock()
	st, ok := s.panes[paneID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("close in %s: %w", paneID, workbench.ErrPaneNotFound)
	}
	idx := -1
	for i := range st.items {
		if st.items[i].Equal(item) {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("close in %s: %w", paneID, workbench.ErrItemNotFound)
	}
	st.items = append(st.items[:idx], st.items[idx+1:]...)
	var next *workbench.Item
	if idx == 0 {
		if len(st.items) > 0 {
			next = &st.items[0]
		} else {
			next = &workbench.Item{Kind: workbench.ItemTerminal}
		}
	}
	s.mu.Unlock()

	if next != nil {
		if err := s.respawn(paneID, *next); err != nil {
			return err
		}
	}
	s.persistPane(paneID)
	s.emit(workbench.Event{Kind: workbench.EventPaneChanged, PaneID: paneID})
	return nil
}

// MoveItem transfers the first matching item record from src to dst. A moved
// foreground program is relaunched in dst only when dst has nothing of its
// own; src falls back to its next record or a bare shell.
func (s *Session) MoveItem(srcID string, item workbench.Item, dstID string) error {
	s.mu.Lock()
	src, okSrc := s.panes[srcID]
	dst, okDst := s.panes[dstID]
	if !okSrc || !okDst {
		s.mu.Unlock()
		return fmt.Errorf("move %s to %s: %w", srcID, dstID, workbench.ErrPaneNotFound)
	}
	idx := -1
	for i := range src.items {
		if src.items[i].Equal(item) {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("move from %s: %w", srcID, workbench.ErrItemNotFound)
	}
	it := src.items[idx]
	src.items = append(src.items[:idx], src.items[idx+1:]...)
	dstWasEmpty := len(dst.items) == 0
	dst.items = append(dst.items, it)

	var srcNext *workbench.Item
	if idx == 0 {
		if len(src.items) > 0 {
			srcNext = &src.items[0]
		} else {
			srcNext = &workbench.Item{Kind: workbench.ItemTerminal}
		}
	}
	s.mu.Unlock()

	if srcNext != nil {
		if err := s.respawn(srcID, *srcNext); err != nil {
			return err
		}
	}
	if dstWasEmpty {
		if err := s.respawn(dstID, it); err != nil {
			return err
		}
	}
	s.persistPane(srcID)
	s.persistPane(dstID)
	s.emit(
		workbench.Event{Kind: workbench.EventPaneChanged, PaneID: srcID},
		workbench.Event{Kind: workbench.EventPaneChanged, PaneID: dstID},
	)
	return nil
}

// ApplyLayout resizes current panes so each leaf occupies its slot's share
// of the window. Leaves map to panes in enumeration order. A tree matching
// the last applied one is a no-op.
func (s *Session) ApplyLayout(root workbench.LayoutNode) error {
	s.mu.Lock()
	if got := root.Leaves(); got != len(s.order) {
		s.mu.Unlock()
		return fmt.Errorf("apply layout: %d leaves for %d panes", got, len(s.order))
	}
	if s.lastLayout != nil && layoutEqual(*s.lastLayout, root) {
		s.mu.Unlock()
		return nil
	}
	order := append([]string(nil), s.order...)
	s.mu.Unlock()

	var fracs []leafExtent
	collectExtents(root, 1.0, 1.0, &fracs)
	for i, f := range fracs {
		paneID := order[i]
		args := []string{"resize-pane", "-t", paneID,
			"-x", fmt.Sprintf("%d%%", int(f.width*100+0.5)),
			"-y", fmt.Sprintf("%d%%", int(f.height*100+0.5))}
		if _, err := s.runner.Run(args...); err != nil {
			return fmt.Errorf("tmux resize-pane %s: %w", paneID, err)
		}
	}

	s.mu.Lock()
	s.lastLayout = &root
	s.mu.Unlock()
	return nil
}

type leafExtent struct {
	width, height float64
}

func collectExtents(n workbench.LayoutNode, w, h float64, out *[]leafExtent) {
	if len(n.Children) == 0 {
		*out = append(*out, leafExtent{width: w, height: h})
		return
	}
	for _, c := range n.Children {
		cw, ch := w, h
		if n.Orientation == workbench.OrientRow {
			cw = w * c.Size
		} else {
			ch = h * c.Size
		}
		if c.Node == nil {
			*out = append(*out, leafExtent{width: cw, height: ch})
		} else {
			collectExtents(*c.Node, cw, ch, out)
		}
	}
}

func layoutEqual(a, b workbench.LayoutNode) bool {
	if a.Orientation != b.Orientation || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		ca, cb := a.Children[i], b.Children[i]
		if ca.Size != cb.Size {
			return false
		}
		if (ca.Node == nil) != (cb.Node == nil) {
			return false
		}
		if ca.Node != nil && !layoutEqual(*ca.Node, *cb.Node) {
			return false
		}
	}
	return true
}

// OpenResource launches the resource's program in the pane and makes it the
// foreground item.
func (s *Session) OpenResource(paneID, resource string, kind workbench.ItemKind) (workbench.Item, error) {
	s.mu.Lock()
	st, ok := s.panes[paneID]
	s.mu.Unlock()
	if !ok {
		return workbench.Item{}, fmt.Errorf("open %s in %s: %w", resource, paneID, workbench.ErrPaneNotFound)
	}

	it := workbench.Item{Resource: resource, Kind: kind}
	if err := s.respawn(paneID, it); err != nil {
		return workbench.Item{}, err
	}

	s.mu.Lock()
	st.items = append([]workbench.Item{it}, st.items...)
	s.mu.Unlock()

	s.persistPane(paneID)
	s.emit(
		workbench.Event{Kind: workbench.EventPaneChanged, PaneID: paneID},
		workbench.Event{Kind: workbench.EventActiveItemChanged, PaneID: paneID},
	)
	return it, nil
}

// CreateTerminal respawns the pane onto a bare shell.
func (s *Session) CreateTerminal(paneID string) (workbench.Item, error) {
	s.mu.Lock()
	st, ok := s.panes[paneID]
	s.mu.Unlock()
	if !ok {
		return workbench.Item{}, fmt.Errorf("terminal in %s: %w", paneID, workbench.ErrPaneNotFound)
	}

	it := workbench.Item{Kind: workbench.ItemTerminal}
	if err := s.respawn(paneID, it); err != nil {
		return workbench.Item{}, err
	}

	s.mu.Lock()
	st.items = append([]workbench.Item{it}, st.items...)
	s.mu.Unlock()

	s.persistPane(paneID)
	s.emit(
		workbench.Event{Kind: workbench.EventPaneChanged, PaneID: paneID},
		workbench.Event{Kind: workbench.EventActiveItemChanged, PaneID: paneID},
	)
	return it, nil
}

// SuppressChrome turns the pane's border status off. tmux resets the option
// on some layout changes; the chrome suppressor reasserts it.
func (s *Session) SuppressChrome(paneID string) error {
	s.mu.Lock()
	st, ok := s.panes[paneID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("suppress chrome %s: %w", paneID, workbench.ErrPaneNotFound)
	}
	st.chromeless = true
	s.mu.Unlock()

	if _, err := s.runner.Run("set-option", "-p", "-t", paneID, "pane-border-status", "off"); err != nil {
		return fmt.Errorf("tmux set-option pane-border-status: %w", err)
	}
	s.persistPane(paneID)
	s.emit(workbench.Event{Kind: workbench.EventPaneChanged, PaneID: paneID})
	return nil
}

// respawn replaces the pane's foreground program with the item's command.
func (s *Session) respawn(paneID string, it workbench.Item) error {
	args := []string{"respawn-pane", "-k", "-t", paneID}
	if cmd, ok := s.launchCommand(it); ok {
		args = append(args, cmd)
	}
	if _, err := s.runner.Run(args...); err != nil {
		return fmt.Errorf("tmux respawn-pane: %w", err)
	}
	s.mu.Lock()
	if st, ok := s.panes[paneID]; ok {
		st.lastCmd = ""
	}
	s.mu.Unlock()
	return nil
}

// launchCommand builds the shell command for an item. Terminals use the
// pane's default shell, signalled by ok=false.
func (s *Session) launchCommand(it workbench.Item) (string, bool) {
	switch it.Kind {
	case workbench.ItemFile:
		return fmt.Sprintf("%s %s", s.editor, shellescape.Quote(it.Resource)), true
	case workbench.ItemOutput:
		return fmt.Sprintf("%s %s", s.viewer, shellescape.Quote(it.Resource)), true
	default:
		return "", false
	}
}

// persistPane mirrors the pane's adapter state into tmux user options.
// Best-effort; a pane killed between the state change and the write just
// logs.
func (s *Session) persistPane(paneID string) {
	s.mu.Lock()
	st, ok := s.panes[paneID]
	if !ok {
		s.mu.Unlock()
		return
	}
	kind, resource, sticky := "", "", "off"
	if len(st.items) > 0 {
		kind = st.items[0].Kind.String()
		resource = st.items[0].Resource
		if st.items[0].Sticky {
			sticky = "on"
		}
	}
	opts := map[string]string{
		"@deskpin_kind":       kind,
		"@deskpin_resource":   resource,
		"@deskpin_locked":     onOff(st.locked),
		"@deskpin_sticky":     sticky,
		"@deskpin_chromeless": onOff(st.chromeless),
	}
	s.mu.Unlock()

	for k, v := range opts {
		if _, err := s.runner.Run("set-option", "-p", "-t", paneID, k, v); err != nil {
			log.Debug("persist pane option failed", "pane", paneID, "option", k, "error", err)
			return
		}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Sync reconciles adapter state with tmux's actual pane list, adopting panes
// created outside deskpin and forgetting killed ones. The watcher calls this
// on a timer; NewSession calls it once for restore.
func (s *Session) Sync() error {
	out, err := s.runner.Run("list-panes", "-s", "-t", s.name, "-F", paneFormat)
	if err != nil {
		return fmt.Errorf("tmux list-panes: %w", err)
	}

	type parsed struct {
		id, cmd string
		state   *paneState
	}
	var seen []parsed
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		for len(fields) < 7 {
			fields = append(fields, "")
		}
		p := parsed{id: fields[0], cmd: fields[1]}
		if kind, ok := parseKind(fields[2]); ok {
			it := workbench.Item{Resource: fields[3], Kind: kind, Sticky: fields[5] == "on"}
			p.state = &paneState{
				items:      []workbench.Item{it},
				locked:     fields[4] == "on",
				chromeless: fields[6] == "on",
			}
		}
		seen = append(seen, p)
	}

	var events []workbench.Event

	s.mu.Lock()
	current := make(map[string]bool, len(seen))
	for _, p := range seen {
		current[p.id] = true
	}
	for _, id := range s.order {
		if !current[id] {
			delete(s.panes, id)
			events = append(events, workbench.Event{Kind: workbench.EventPaneChanged, PaneID: id})
		}
	}

	var order []string
	for _, p := range seen {
		order = append(order, p.id)
		st, known := s.panes[p.id]
		if !known {
			if p.state != nil {
				st = p.state
			} else {
				st = &paneState{items: []workbench.Item{s.classify(p.cmd, p.id)}}
			}
			st.lastCmd = p.cmd
			s.panes[p.id] = st
			events = append(events, workbench.Event{Kind: workbench.EventPaneAdded, PaneID: p.id})
			continue
		}
		if st.lastCmd != "" && st.lastCmd != p.cmd {
			it := s.classify(p.cmd, p.id)
			if len(st.items) == 0 || st.items[0].Kind != it.Kind {
				if len(st.items) == 0 {
					st.items = []workbench.Item{it}
				} else {
					st.items[0] = it
				}
				events = append(events,
					workbench.Event{Kind: workbench.EventPaneChanged, PaneID: p.id},
					workbench.Event{Kind: workbench.EventActiveItemChanged, PaneID: p.id},
				)
			}
		}
		st.lastCmd = p.cmd
	}
	s.order = order
	s.mu.Unlock()

	if len(events) > 0 {
		s.emit(events...)
	}
	return nil
}

// shellNames are commands treated as a plain terminal.
var shellNames = map[string]bool{
	"sh": true, "bash": true, "zsh": true, "fish": true, "dash": true, "ksh": true,
}

// classify guesses an item for a pane deskpin did not launch. The command
// name decides the common cases; otherwise the pane content is captured and
// checked for the output artifact extension.
func (s *Session) classify(cmd, paneID string) workbench.Item {
	base := filepath.Base(cmd)
	switch {
	case shellNames[base]:
		return workbench.Item{Kind: workbench.ItemTerminal}
	case s.viewer != "" && base == filepath.Base(strings.Fields(s.viewer)[0]):
		return workbench.Item{Kind: workbench.ItemOutput}
	case s.editor != "" && base == filepath.Base(strings.Fields(s.editor)[0]):
		return workbench.Item{Kind: workbench.ItemFile}
	}
	if s.outputExt != "" {
		if text, err := s.CaptureText(paneID); err == nil && strings.Contains(text, s.outputExt) {
			return workbench.Item{Kind: workbench.ItemOutput}
		}
	}
	return workbench.Item{Kind: workbench.ItemUnwanted}
}

// CaptureText returns the pane's visible content with escape sequences
// stripped.
func (s *Session) CaptureText(paneID string) (string, error) {
	out, err := s.runner.Run("capture-pane", "-p", "-t", paneID)
	if err != nil {
		return "", fmt.Errorf("tmux capture-pane: %w", err)
	}
	return ansi.Strip(out), nil
}

// ApplyStyles runs a batch of tmux style commands, logging failures instead
// of propagating them. An older tmux without an option should not break the
// pin.
func (s *Session) ApplyStyles(argSets [][]string) {
	for _, args := range argSets {
		if _, err := s.runner.Run(args...); err != nil {
			log.Debug("style command failed", "args", args, "error", err)
		}
	}
}

// Attach replaces the current terminal with the tmux client. It blocks until
// the user detaches.
func (s *Session) Attach() error {
	cmd := exec.Command("tmux", "attach-session", "-t", s.name)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tmux attach-session: %w", err)
	}
	return nil
}

// Kill destroys the tmux session.
func (s *Session) Kill() error {
	if _, err := s.runner.Run("kill-session", "-t", s.name); err != nil {
		return fmt.Errorf("tmux kill-session: %w", err)
	}
	return nil
}

func parseKind(v string) (workbench.ItemKind, bool) {
	switch v {
	case "file":
		return workbench.ItemFile, true
	case "terminal":
		return workbench.ItemTerminal, true
	case "output":
		return workbench.ItemOutput, true
	case "unwanted":
		return workbench.ItemUnwanted, true
	default:
		return 0, false
	}
}
