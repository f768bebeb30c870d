package workbench

// ItemKind distinguishes what an open item in a pane actually is.
// A pane's role (source/terminal/output) is always derived from the kinds
// and resources of its items, never stored.
type ItemKind int

const (
	// ItemFile is an ordinary source document.
	ItemFile ItemKind = iota
	// ItemTerminal is an interactive shell.
	ItemTerminal
	// ItemOutput is a rendered output artifact (the built document).
	ItemOutput
	// ItemUnwanted covers welcome screens, dashboards and other furniture
	// that should never survive inside the pinned layout.
	ItemUnwanted
)

func (k ItemKind) String() string {
	switch k {
	case ItemFile:
		return "file"
	case ItemTerminal:
		return "terminal"
	case ItemOutput:
		return "output"
	case ItemUnwanted:
		return "unwanted"
	default:
		return "unknown"
	}
}

// Item is an open document, terminal or tool instance inside a pane.
// Resource is a path-like locator and may be empty (terminals usually are).
type Item struct {
	Resource string
	Kind     ItemKind
	Sticky   bool
}

// Equal reports whether two items refer to the same open instance.
// Sticky is metadata, not identity.
func (it Item) Equal(other Item) bool {
	return it.Resource == other.Resource && it.Kind == other.Kind
}

// Pane is a leaf layout container. The ID is host-assigned and opaque.
// A locked pane rejects removal and merge requests.
type Pane struct {
	ID         string
	Locked     bool
	Chromeless bool
	Items      []Item
}

// HasKind reports whether the pane holds at least one item of the given kind.
func (p Pane) HasKind(kind ItemKind) bool {
	for _, it := range p.Items {
		if it.Kind == kind {
			return true
		}
	}
	return false
}

// SplitDirection selects where a new pane appears relative to its base.
type SplitDirection int

const (
	SplitRight SplitDirection = iota
	SplitDown
)

// Orientation describes how a layout node arranges its children.
type Orientation int

const (
	// OrientRow places children side by side (columns).
	OrientRow Orientation = iota
	// OrientColumn stacks children top to bottom (rows).
	OrientColumn
)

// LayoutNode is a declarative split description sent to the host. Leaves
// (nodes with no children) map onto panes in host enumeration order. The
// tree is write-only: the host never reports one back.
type LayoutNode struct {
	Orientation Orientation
	Children    []LayoutChild
}

// LayoutChild is one slot of a layout node. Size is a fraction of the
// parent's extent; sizes of siblings sum to 1.0. Node is nil for a leaf.
type LayoutChild struct {
	Size float64
	Node *LayoutNode
}

// Leaves returns the number of leaf slots in the tree.
func (n LayoutNode) Leaves() int {
	if len(n.Children) == 0 {
		return 1
	}
	total := 0
	for _, c := range n.Children {
		if c.Node == nil {
			total++
		} else {
			total += c.Node.Leaves()
		}
	}
	return total
}

// EventKind labels a host notification.
type EventKind int

const (
	// EventPaneAdded fires when a new pane appears, for any reason.
	EventPaneAdded EventKind = iota
	// EventPaneChanged fires when a pane's items, lock, sticky or chrome
	// state change.
	EventPaneChanged
	// EventActiveItemChanged fires when the focused item changes anywhere.
	EventActiveItemChanged
)

func (k EventKind) String() string {
	switch k {
	case EventPaneAdded:
		return "pane-added"
	case EventPaneChanged:
		return "pane-changed"
	case EventActiveItemChanged:
		return "active-item-changed"
	default:
		return "unknown"
	}
}

// Event is a host notification. PaneID identifies the pane concerned; it may
// name a pane that no longer exists by the time a handler looks, so handlers
// must re-inspect current state rather than trust the event payload.
type Event struct {
	Kind   EventKind
	PaneID string
}
