// Package ui is the deskpin dashboard: a picker over recent workspaces with
// an inline create dialog. It runs before any tmux session exists, so the
// model never touches the host; the chosen workspace is read back by the
// caller after the program exits.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/simoncoessens/deskpin/internal/logging"
	"github.com/simoncoessens/deskpin/internal/project"
	"github.com/simoncoessens/deskpin/internal/theme"
)

var log = logging.ForComponent(logging.CompUI)

// Minimum terminal size the dashboard renders in.
const (
	minTerminalWidth  = 40
	minTerminalHeight = 10
)

// listChromeRows is the vertical space taken by everything around the list.
const listChromeRows = 6 // title, filter, footer, borders

// Dashboard is the workspace picker model.
type Dashboard struct {
	width  int
	height int

	store     *project.Store
	scaffold  *project.Scaffolder
	templates []project.Template
	pal       theme.Palette

	workspaces []*project.Workspace
	filtered   []int // indices into workspaces, filter applied

	cursor     int
	viewOffset int

	filter    textinput.Model
	filtering bool

	creating     bool
	createName   textinput.Model
	createDir    string
	templateIdx  int
	confirmingID string // workspace pending delete confirmation

	chosen *project.Workspace
	err    error
	loaded bool
}

// Messages flowing through Update.
type (
	workspacesLoadedMsg []*project.Workspace
	workspaceCreatedMsg struct{ ws *project.Workspace }
	workspaceDeletedMsg struct{}
	errMsg              struct{ err error }
)

// NewDashboard builds the picker. createDir is where new workspaces are
// scaffolded.
func NewDashboard(store *project.Store, scaffold *project.Scaffolder, templates []project.Template, createDir string, pal theme.Palette) *Dashboard {
	filter := textinput.New()
	filter.Placeholder = "filter"
	filter.Prompt = "/"
	filter.CharLimit = 64

	name := textinput.New()
	name.Placeholder = "workspace name"
	name.CharLimit = 64

	return &Dashboard{
		store:      store,
		scaffold:   scaffold,
		templates:  templates,
		pal:        pal,
		createDir:  createDir,
		filter:     filter,
		createName: name,
	}
}

// Chosen returns the workspace picked by the user, or nil if they quit.
func (d *Dashboard) Chosen() *project.Workspace { return d.chosen }

// Init loads the workspace list.
func (d *Dashboard) Init() tea.Cmd {
	return d.loadWorkspaces
}

func (d *Dashboard) loadWorkspaces() tea.Msg {
	ws, err := d.store.List()
	if err != nil {
		return errMsg{err: err}
	}
	return workspacesLoadedMsg(ws)
}

// Update handles messages.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		return d, nil

	case workspacesLoadedMsg:
		d.workspaces = msg
		d.loaded = true
		d.applyFilter()
		return d, nil

	case workspaceCreatedMsg:
		d.creating = false
		d.createName.Reset()
		d.chosen = msg.ws
		return d, tea.Quit

	case workspaceDeletedMsg:
		d.confirmingID = ""
		return d, d.loadWorkspaces

	case errMsg:
		d.err = msg.err
		log.Error("dashboard action failed", "error", msg.err)
		return d, nil

	case tea.KeyMsg:
		return d.handleKey(msg)
	}
	return d, nil
}

func (d *Dashboard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d.err = nil

	if d.creating {
		return d.handleCreateKey(msg)
	}

	if d.confirmingID != "" {
		switch msg.String() {
		case "y", "Y":
			id := d.confirmingID
			return d, func() tea.Msg {
				if err := d.store.Delete(id); err != nil {
					return errMsg{err: err}
				}
				return workspaceDeletedMsg{}
			}
		default:
			d.confirmingID = ""
			return d, nil
		}
	}

	if d.filtering {
		switch msg.String() {
		case "esc":
			d.filtering = false
			d.filter.Reset()
			d.applyFilter()
			return d, nil
		case "enter":
			d.filtering = false
			return d, nil
		default:
			var cmd tea.Cmd
			d.filter, cmd = d.filter.Update(msg)
			d.applyFilter()
			return d, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return d, tea.Quit
	case "up", "k":
		d.moveCursor(-1)
	case "down", "j":
		d.moveCursor(1)
	case "/":
		d.filtering = true
		d.filter.Focus()
		return d, textinput.Blink
	case "n":
		d.creating = true
		d.templateIdx = 0
		d.createName.Focus()
		return d, textinput.Blink
	case "d":
		if ws, ok := d.selected(); ok {
			d.confirmingID = ws.ID
		}
	case "enter":
		if ws, ok := d.selected(); ok {
			d.chosen = ws
			return d, tea.Quit
		}
	}
	return d, nil
}

func (d *Dashboard) handleCreateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		d.creating = false
		d.createName.Reset()
		return d, nil
	case "tab":
		if len(d.templates) > 0 {
			d.templateIdx = (d.templateIdx + 1) % len(d.templates)
		}
		return d, nil
	case "enter":
		name := strings.TrimSpace(d.createName.Value())
		if name == "" {
			return d, nil
		}
		tmpl := ""
		if len(d.templates) > 0 {
			tmpl = d.templates[d.templateIdx].Name
		}
		return d, func() tea.Msg {
			ws, err := d.scaffold.Create(name, d.createDir, tmpl)
			if err != nil {
				return errMsg{err: err}
			}
			return workspaceCreatedMsg{ws: ws}
		}
	default:
		var cmd tea.Cmd
		d.createName, cmd = d.createName.Update(msg)
		return d, cmd
	}
}

func (d *Dashboard) moveCursor(delta int) {
	d.cursor += delta
	if d.cursor < 0 {
		d.cursor = 0
	}
	if d.cursor > len(d.filtered)-1 {
		d.cursor = len(d.filtered) - 1
	}
	if d.cursor < 0 {
		d.cursor = 0
	}
	d.clampScroll()
}

func (d *Dashboard) clampScroll() {
	visible := d.visibleRows()
	if d.cursor < d.viewOffset {
		d.viewOffset = d.cursor
	}
	if d.cursor >= d.viewOffset+visible {
		d.viewOffset = d.cursor - visible + 1
	}
	if d.viewOffset < 0 {
		d.viewOffset = 0
	}
}

func (d *Dashboard) visibleRows() int {
	rows := d.height - listChromeRows
	if rows < 1 {
		rows = 1
	}
	return rows
}

// applyFilter rebuilds the filtered index list with a fuzzy match over
// workspace names and paths.
func (d *Dashboard) applyFilter() {
	pattern := strings.TrimSpace(d.filter.Value())
	if pattern == "" {
		d.filtered = d.filtered[:0]
		for i := range d.workspaces {
			d.filtered = append(d.filtered, i)
		}
	} else {
		haystack := make([]string, len(d.workspaces))
		for i, ws := range d.workspaces {
			haystack[i] = ws.Name + " " + ws.Path
		}
		matches := fuzzy.Find(pattern, haystack)
		d.filtered = d.filtered[:0]
		for _, m := range matches {
			d.filtered = append(d.filtered, m.Index)
		}
	}
	if d.cursor > len(d.filtered)-1 {
		d.cursor = len(d.filtered) - 1
	}
	if d.cursor < 0 {
		d.cursor = 0
	}
	d.viewOffset = 0
	d.clampScroll()
}

func (d *Dashboard) selected() (*project.Workspace, bool) {
	if d.cursor < 0 || d.cursor >= len(d.filtered) {
		return nil, false
	}
	return d.workspaces[d.filtered[d.cursor]], true
}

// View renders the dashboard.
func (d *Dashboard) View() string {
	if d.width == 0 || d.height == 0 {
		return ""
	}
	if d.width < minTerminalWidth || d.height < minTerminalHeight {
		return lipgloss.NewStyle().
			Foreground(d.pal.Dim).
			Render(fmt.Sprintf("Terminal too small (%dx%d, need %dx%d)",
				d.width, d.height, minTerminalWidth, minTerminalHeight))
	}

	var b strings.Builder
	b.WriteString(d.renderTitle())
	b.WriteString("\n")

	if d.creating {
		b.WriteString(d.renderCreateDialog())
	} else {
		b.WriteString(d.renderList())
	}

	b.WriteString("\n")
	b.WriteString(d.renderFooter())
	return b.String()
}

func (d *Dashboard) renderTitle() string {
	title := lipgloss.NewStyle().
		Foreground(d.pal.Accent).
		Bold(true).
		Render("deskpin")
	sub := lipgloss.NewStyle().
		Foreground(d.pal.Dim).
		Render("  pinned writing workbench")
	return title + sub
}

func (d *Dashboard) renderList() string {
	var b strings.Builder

	if d.filtering || d.filter.Value() != "" {
		b.WriteString(d.filter.View())
		b.WriteString("\n")
	}

	if !d.loaded {
		b.WriteString(lipgloss.NewStyle().Foreground(d.pal.Dim).Render("  loading…"))
		return b.String()
	}
	if len(d.filtered) == 0 {
		empty := "  No workspaces yet. Press n to create one."
		if d.filter.Value() != "" {
			empty = "  No match."
		}
		b.WriteString(lipgloss.NewStyle().Foreground(d.pal.Dim).Render(empty))
		return b.String()
	}

	visible := d.visibleRows()
	dim := lipgloss.NewStyle().Foreground(d.pal.Dim)

	if d.viewOffset > 0 {
		b.WriteString(dim.Render(fmt.Sprintf("  ⋮ +%d above", d.viewOffset)))
		b.WriteString("\n")
	}

	shown := 0
	for i := d.viewOffset; i < len(d.filtered) && shown < visible; i++ {
		ws := d.workspaces[d.filtered[i]]
		d.renderRow(&b, ws, i == d.cursor)
		shown++
	}

	if remaining := len(d.filtered) - (d.viewOffset + shown); remaining > 0 {
		b.WriteString(dim.Render(fmt.Sprintf("  ⋮ +%d below", remaining)))
		b.WriteString("\n")
	}

	if d.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(d.pal.Highlight).Render("  " + d.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func (d *Dashboard) renderRow(b *strings.Builder, ws *project.Workspace, selected bool) {
	marker := "  "
	nameStyle := lipgloss.NewStyle().Foreground(d.pal.Text)
	if selected {
		marker = "> "
		nameStyle = nameStyle.Foreground(d.pal.Accent).Bold(true)
	}
	if d.confirmingID == ws.ID {
		b.WriteString(lipgloss.NewStyle().Foreground(d.pal.Highlight).
			Render(fmt.Sprintf("%sdelete %q from the list? (y/N)", marker, ws.Name)))
		b.WriteString("\n")
		return
	}

	name := runewidth.Truncate(ws.Name, 24, "…")
	pad := 26 - runewidth.StringWidth(name)
	if pad < 1 {
		pad = 1
	}
	pathWidth := d.width - 26 - 8
	if pathWidth < 10 {
		pathWidth = 10
	}
	path := runewidth.Truncate(ws.Path, pathWidth, "…")

	b.WriteString(marker)
	b.WriteString(nameStyle.Render(name))
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(lipgloss.NewStyle().Foreground(d.pal.Dim).Render(path))
	b.WriteString("\n")
}

func (d *Dashboard) renderCreateDialog() string {
	var b strings.Builder
	label := lipgloss.NewStyle().Foreground(d.pal.Text)

	b.WriteString(label.Render("  New workspace"))
	b.WriteString("\n\n  ")
	b.WriteString(d.createName.View())
	b.WriteString("\n\n")

	if len(d.templates) > 0 {
		b.WriteString(label.Render("  Template: "))
		for i, t := range d.templates {
			style := lipgloss.NewStyle().Foreground(d.pal.Dim)
			if i == d.templateIdx {
				style = lipgloss.NewStyle().Foreground(d.pal.Accent).Bold(true)
			}
			b.WriteString(style.Render(t.Name))
			if i < len(d.templates)-1 {
				b.WriteString(lipgloss.NewStyle().Foreground(d.pal.Dim).Render(" · "))
			}
		}
		b.WriteString("\n")
	}
	if d.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(d.pal.Highlight).Render("  " + d.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func (d *Dashboard) renderFooter() string {
	hints := []string{
		menuKey(d.pal, "↑↓", "Nav"),
		menuKey(d.pal, "Enter", "Pin"),
		menuKey(d.pal, "n", "New"),
		menuKey(d.pal, "d", "Delete"),
		menuKey(d.pal, "/", "Filter"),
		menuKey(d.pal, "q", "Quit"),
	}
	if d.creating {
		hints = []string{
			menuKey(d.pal, "Tab", "Template"),
			menuKey(d.pal, "Enter", "Create"),
			menuKey(d.pal, "Esc", "Cancel"),
		}
	}
	return lipgloss.NewStyle().
		Width(d.width).
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(d.pal.Border).
		Padding(0, 1).
		Render(strings.Join(hints, "  "))
}

func menuKey(pal theme.Palette, key, label string) string {
	k := lipgloss.NewStyle().Foreground(pal.Accent).Render(key)
	l := lipgloss.NewStyle().Foreground(pal.Dim).Render(label)
	return k + " " + l
}
