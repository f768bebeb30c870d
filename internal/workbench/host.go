package workbench

import "errors"

// Errors returned by host implementations for conditions the enforcement
// layer treats as expected (retry on the next event, never fatal).
var (
	ErrPaneNotFound = errors.New("pane not found")
	ErrItemNotFound = errors.New("item not found")
	ErrPaneLocked   = errors.New("pane is locked")
)

// Host is the capability surface the enforcement core requires from the
// surrounding workbench. Implementations: the tmux adapter in internal/tmux
// and MemHost for tests and dry runs.
//
// All mutating calls are synchronous from the caller's point of view; event
// delivery happens outside the mutating call, one handler invocation at a
// time, so a handler never observes another handler running concurrently.
type Host interface {
	// Panes returns the current panes in stable host enumeration order.
	// The returned slice and its items are snapshots; mutating them has no
	// effect on the host.
	Panes() []Pane

	// Subscribe registers a notification handler and returns its teardown
	// function. Teardown is idempotent.
	Subscribe(fn func(Event)) (cancel func())

	// Ready returns a channel closed once the workbench has finished
	// restoring any previous session state.
	Ready() <-chan struct{}

	// SplitPane creates a new empty pane next to base and returns its ID.
	SplitPane(baseID string, dir SplitDirection, fraction float64) (string, error)

	// MergePane moves every item of pane src into dst and removes src.
	// Fails with ErrPaneLocked if src is locked.
	MergePane(srcID, dstID string) error

	// LockPane sets or clears the pane's locked flag.
	LockPane(paneID string, locked bool) error

	// SetSticky sets or clears the sticky flag on the first item of the
	// pane equal to item.
	SetSticky(paneID string, item Item, sticky bool) error

	// CloseItem removes the first item of the pane equal to item.
	CloseItem(paneID string, item Item) error

	// MoveItem transfers the first item of src equal to item into dst.
	// The item is never duplicated.
	MoveItem(srcID string, item Item, dstID string) error

	// ApplyLayout arranges current panes into the given split tree. Leaves
	// map to panes in enumeration order. Re-applying a matching layout is a
	// no-op.
	ApplyLayout(root LayoutNode) error

	// OpenResource opens a resource as a new item in the given pane and
	// returns the resulting item.
	OpenResource(paneID, resource string, kind ItemKind) (Item, error)

	// CreateTerminal starts a terminal item in the given pane.
	CreateTerminal(paneID string) (Item, error)

	// SuppressChrome marks the pane for edge-to-edge rendering. The host
	// may silently reset the marker on relayout; callers that need it to
	// persist must watch and reassert.
	SuppressChrome(paneID string) error
}
