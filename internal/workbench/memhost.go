package workbench

import (
	"fmt"
	"sync"
)

// MemHost is an in-memory Host used by package tests and by dry runs. It
// models the host-enforced parts of the contract (locked panes reject
// merges, events are delivered one handler invocation at a time) without
// any real UI behind it.
type MemHost struct {
	mu     sync.Mutex
	panes  []*Pane
	nextID int

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int

	evMu        sync.Mutex
	queue       []Event
	dispatching bool

	ready      chan struct{}
	lastLayout *LayoutNode
}

// NewMemHost creates a MemHost with a single empty pane, the state a fresh
// workbench starts in. The host reports ready immediately.
func NewMemHost() *MemHost {
	h := &MemHost{
		subs:  make(map[int]func(Event)),
		ready: make(chan struct{}),
	}
	close(h.ready)
	h.addPaneLocked()
	return h
}

func (h *MemHost) addPaneLocked() *Pane {
	h.nextID++
	p := &Pane{ID: fmt.Sprintf("pane-%d", h.nextID)}
	h.panes = append(h.panes, p)
	return p
}

// Panes returns a snapshot of the current panes.
func (h *MemHost) Panes() []Pane {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Pane, 0, len(h.panes))
	for _, p := range h.panes {
		cp := *p
		cp.Items = append([]Item(nil), p.Items...)
		out = append(out, cp)
	}
	return out
}

// Subscribe registers an event handler.
func (h *MemHost) Subscribe(fn func(Event)) func() {
	h.subMu.Lock()
	h.nextSub++
	id := h.nextSub
	h.subs[id] = fn
	h.subMu.Unlock()
	return func() {
		h.subMu.Lock()
		delete(h.subs, id)
		h.subMu.Unlock()
	}
}

// Ready reports restore completion; MemHost is ready from birth.
func (h *MemHost) Ready() <-chan struct{} { return h.ready }

// emit queues events and drains the queue unless another goroutine already
// is. Handlers therefore never run reentrantly: an event raised from inside
// a handler is delivered after the current invocation returns.
func (h *MemHost) emit(events ...Event) {
	h.evMu.Lock()
	h.queue = append(h.queue, events...)
	if h.dispatching {
		h.evMu.Unlock()
		return
	}
	h.dispatching = true
	for len(h.queue) > 0 {
		ev := h.queue[0]
		h.queue = h.queue[1:]
		h.evMu.Unlock()

		h.subMu.Lock()
		fns := make([]func(Event), 0, len(h.subs))
		for _, fn := range h.subs {
			fns = append(fns, fn)
		}
		h.subMu.Unlock()
		for _, fn := range fns {
			fn(ev)
		}

		h.evMu.Lock()
	}
	h.dispatching = false
	h.evMu.Unlock()
}

func (h *MemHost) pane(id string) (*Pane, int) {
	for i, p := range h.panes {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

// SplitPane creates an empty pane after base.
func (h *MemHost) SplitPane(baseID string, dir SplitDirection, fraction float64) (string, error) {
	h.mu.Lock()
	base, idx := h.pane(baseID)
	if base == nil {
		h.mu.Unlock()
		return "", fmt.Errorf("split %s: %w", baseID, ErrPaneNotFound)
	}
	_ = dir
	_ = fraction
	h.nextID++
	p := &Pane{ID: fmt.Sprintf("pane-%d", h.nextID)}
	h.panes = append(h.panes[:idx+1], append([]*Pane{p}, h.panes[idx+1:]...)...)
	h.mu.Unlock()

	h.emit(Event{Kind: EventPaneAdded, PaneID: p.ID})
	return p.ID, nil
}

// MergePane moves all items of src into dst and removes src.
func (h *MemHost) MergePane(srcID, dstID string) error {
	h.mu.Lock()
	src, srcIdx := h.pane(srcID)
	dst, _ := h.pane(dstID)
	if src == nil || dst == nil {
		h.mu.Unlock()
		return fmt.Errorf("merge %s into %s: %w", srcID, dstID, ErrPaneNotFound)
	}
	if src.Locked {
		h.mu.Unlock()
		return fmt.Errorf("merge %s: %w", srcID, ErrPaneLocked)
	}
	dst.Items = append(dst.Items, src.Items...)
	h.panes = append(h.panes[:srcIdx], h.panes[srcIdx+1:]...)
	h.mu.Unlock()

	h.emit(Event{Kind: EventPaneChanged, PaneID: dstID})
	return nil
}

// LockPane sets the locked flag. Unlocking is always permitted: the host
// cannot tell a user override from a programmatic one.
func (h *MemHost) LockPane(paneID string, locked bool) error {
	h.mu.Lock()
	p, _ := h.pane(paneID)
	if p == nil {
		h.mu.Unlock()
		return fmt.Errorf("lock %s: %w", paneID, ErrPaneNotFound)
	}
	changed := p.Locked != locked
	p.Locked = locked
	h.mu.Unlock()

	if changed {
		h.emit(Event{Kind: EventPaneChanged, PaneID: paneID})
	}
	return nil
}

// SetSticky flags the first matching item.
func (h *MemHost) SetSticky(paneID string, item Item, sticky bool) error {
	h.mu.Lock()
	p, _ := h.pane(paneID)
	if p == nil {
		h.mu.Unlock()
		return fmt.Errorf("sticky %s: %w", paneID, ErrPaneNotFound)
	}
	found := false
	for i := range p.Items {
		if p.Items[i].Equal(item) {
			p.Items[i].Sticky = sticky
			found = true
			break
		}
	}
	h.mu.Unlock()

	if !found {
		return fmt.Errorf("sticky %s: %w", paneID, ErrItemNotFound)
	}
	h.emit(Event{Kind: EventPaneChanged, PaneID: paneID})
	return nil
}

// CloseItem removes the first matching item.
func (h *MemHost) CloseItem(paneID string, item Item) error {
	h.mu.Lock()
	p, _ := h.pane(paneID)
	if p == nil {
		h.mu.Unlock()
		return fmt.Errorf("close in %s: %w", paneID, ErrPaneNotFound)
	}
	found := false
	for i := range p.Items {
		if p.Items[i].Equal(item) {
			p.Items = append(p.Items[:i], p.Items[i+1:]...)
			found = true
			break
		}
	}
	h.mu.Unlock()

	if !found {
		return fmt.Errorf("close in %s: %w", paneID, ErrItemNotFound)
	}
	h.emit(Event{Kind: EventPaneChanged, PaneID: paneID})
	return nil
}

// MoveItem transfers the first matching item from src to dst.
func (h *MemHost) MoveItem(srcID string, item Item, dstID string) error {
	h.mu.Lock()
	src, _ := h.pane(srcID)
	dst, _ := h.pane(dstID)
	if src == nil || dst == nil {
		h.mu.Unlock()
		return fmt.Errorf("move %s to %s: %w", srcID, dstID, ErrPaneNotFound)
	}
	moved := false
	for i := range src.Items {
		if src.Items[i].Equal(item) {
			it := src.Items[i]
			src.Items = append(src.Items[:i], src.Items[i+1:]...)
			dst.Items = append(dst.Items, it)
			moved = true
			break
		}
	}
	h.mu.Unlock()

	if !moved {
		return fmt.Errorf("move from %s: %w", srcID, ErrItemNotFound)
	}
	h.emit(
		Event{Kind: EventPaneChanged, PaneID: srcID},
		Event{Kind: EventPaneChanged, PaneID: dstID},
	)
	return nil
}

// ApplyLayout records the requested tree. The leaf count must match the
// current pane count; MemHost keeps panes in slot order already.
func (h *MemHost) ApplyLayout(root LayoutNode) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if got := root.Leaves(); got != len(h.panes) {
		return fmt.Errorf("apply layout: %d leaves for %d panes", got, len(h.panes))
	}
	h.lastLayout = &root
	return nil
}

// LastLayout returns the most recently applied layout tree, or nil.
func (h *MemHost) LastLayout() *LayoutNode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastLayout
}

// OpenResource opens the resource as a new item in the pane.
func (h *MemHost) OpenResource(paneID, resource string, kind ItemKind) (Item, error) {
	h.mu.Lock()
	p, _ := h.pane(paneID)
	if p == nil {
		h.mu.Unlock()
		return Item{}, fmt.Errorf("open %s in %s: %w", resource, paneID, ErrPaneNotFound)
	}
	it := Item{Resource: resource, Kind: kind}
	p.Items = append(p.Items, it)
	h.mu.Unlock()

	h.emit(
		Event{Kind: EventPaneChanged, PaneID: paneID},
		Event{Kind: EventActiveItemChanged, PaneID: paneID},
	)
	return it, nil
}

// CreateTerminal starts a terminal item in the pane.
func (h *MemHost) CreateTerminal(paneID string) (Item, error) {
	h.mu.Lock()
	p, _ := h.pane(paneID)
	if p == nil {
		h.mu.Unlock()
		return Item{}, fmt.Errorf("terminal in %s: %w", paneID, ErrPaneNotFound)
	}
	it := Item{Kind: ItemTerminal}
	p.Items = append(p.Items, it)
	h.mu.Unlock()

	h.emit(
		Event{Kind: EventPaneChanged, PaneID: paneID},
		Event{Kind: EventActiveItemChanged, PaneID: paneID},
	)
	return it, nil
}

// SuppressChrome sets the chromeless marker.
func (h *MemHost) SuppressChrome(paneID string) error {
	h.mu.Lock()
	p, _ := h.pane(paneID)
	if p == nil {
		h.mu.Unlock()
		return fmt.Errorf("suppress chrome %s: %w", paneID, ErrPaneNotFound)
	}
	p.Chromeless = true
	h.mu.Unlock()

	h.emit(Event{Kind: EventPaneChanged, PaneID: paneID})
	return nil
}

// ResetChrome clears the chromeless marker, simulating a host relayout that
// wipes visual state.
func (h *MemHost) ResetChrome(paneID string) error {
	h.mu.Lock()
	p, _ := h.pane(paneID)
	if p == nil {
		h.mu.Unlock()
		return fmt.Errorf("reset chrome %s: %w", paneID, ErrPaneNotFound)
	}
	p.Chromeless = false
	h.mu.Unlock()

	h.emit(Event{Kind: EventPaneChanged, PaneID: paneID})
	return nil
}
