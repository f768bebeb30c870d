package workbench

import "strings"

// Role classification is content based and uncached: every query re-scans
// the pane list it is given, so classification self-heals after external
// layout mutation. Ties break on first match in host enumeration order.

// FindSourcePane returns the first unlocked pane, or the first pane overall
// if every pane is locked. The source role is defined by exclusion (not
// claimed for another purpose), not by content, because the source pane may
// be transiently empty.
func FindSourcePane(panes []Pane) (Pane, bool) {
	for _, p := range panes {
		if !p.Locked {
			return p, true
		}
	}
	if len(panes) > 0 {
		return panes[0], true
	}
	return Pane{}, false
}

// FindOutputPane returns the first pane holding an item whose resource ends
// in the output artifact suffix.
func FindOutputPane(panes []Pane, outputSuffix string) (Pane, bool) {
	for _, p := range panes {
		for _, it := range p.Items {
			if it.Kind == ItemOutput {
				return p, true
			}
			if outputSuffix != "" && strings.HasSuffix(it.Resource, outputSuffix) {
				return p, true
			}
		}
	}
	return Pane{}, false
}

// FindTerminalPane returns the first pane holding a terminal item.
func FindTerminalPane(panes []Pane) (Pane, bool) {
	for _, p := range panes {
		if p.HasKind(ItemTerminal) {
			return p, true
		}
	}
	return Pane{}, false
}
