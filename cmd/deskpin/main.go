package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/simoncoessens/deskpin/internal/config"
	"github.com/simoncoessens/deskpin/internal/logging"
	"github.com/simoncoessens/deskpin/internal/project"
	"github.com/simoncoessens/deskpin/internal/theme"
	"github.com/simoncoessens/deskpin/internal/ui"
)

// Version is stamped by the release build.
var Version = "dev"

func main() {
	debug := os.Getenv("DESKPIN_DEBUG") != ""
	if dir, err := config.LogDir(); err == nil {
		if err := logging.Init(dir, debug); err != nil {
			logging.InitStderr(debug)
		}
	} else {
		logging.InitStderr(debug)
	}
	defer func() { _ = logging.Close() }()

	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "pin":
		handlePin(args[1:])
	case "new":
		handleNew(args[1:])
	case "version", "--version", "-v":
		fmt.Printf("deskpin %s\n", Version)
	case "help", "--help", "-h":
		usage()
	case "":
		handleDashboard()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: deskpin [command]")
	fmt.Println()
	fmt.Println("Pin a three-pane writing workbench onto tmux.")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  (none)         open the workspace dashboard")
	fmt.Println("  pin [dir]      pin the given workspace directory (default: cwd)")
	fmt.Println("  new <name>     scaffold a new workspace")
	fmt.Println("  version        print the version")
}

// handleDashboard runs the picker and pins whatever the user chooses.
func handleDashboard() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: the dashboard needs an interactive terminal; use `deskpin pin <dir>` in scripts")
		os.Exit(1)
	}

	cfgDir, err := config.Dir()
	if err != nil {
		fatal("resolve config dir", err)
	}
	settings := config.LoadSettings(filepath.Join(cfgDir, "config.toml"))
	pal := theme.Resolve(settings.Theme)

	store, err := project.NewStore(filepath.Join(cfgDir, "deskpin.db"))
	if err != nil {
		fatal("open workspace store", err)
	}
	defer store.Close()

	// Drop list entries whose directory is gone.
	if n, err := store.Prune(); err == nil && n > 0 {
		fmt.Fprintf(os.Stderr, "Pruned %d stale workspace entries\n", n)
	}

	reg := project.LoadRegistry(filepath.Join(cfgDir, "templates.yaml"))
	scaffold := project.NewScaffolder(store, reg)

	createDir, err := os.UserHomeDir()
	if err != nil {
		createDir = "."
	}

	dash := ui.NewDashboard(store, scaffold, reg.Templates(), createDir, pal)
	prog := tea.NewProgram(dash, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		fatal("dashboard", err)
	}

	chosen := dash.Chosen()
	if chosen == nil {
		return
	}
	_ = store.Touch(chosen.ID)
	store.Close()

	runPin(chosen.Path, settings)
}

// handleNew scaffolds a workspace without entering the dashboard.
func handleNew(args []string) {
	fs := newFlagSet("new", "Usage: deskpin new <name> [options]")
	parentDir := fs.String("dir", "", "Parent directory for the workspace (default: home)")
	template := fs.String("template", "article", "Starter template name")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	name := fs.Arg(0)

	if *parentDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fatal("resolve home dir", err)
		}
		*parentDir = home
	}

	cfgDir, err := config.Dir()
	if err != nil {
		fatal("resolve config dir", err)
	}
	store, err := project.NewStore(filepath.Join(cfgDir, "deskpin.db"))
	if err != nil {
		fatal("open workspace store", err)
	}
	defer store.Close()

	reg := project.LoadRegistry(filepath.Join(cfgDir, "templates.yaml"))
	ws, err := project.NewScaffolder(store, reg).Create(name, *parentDir, *template)
	if err != nil {
		fatal("create workspace", err)
	}
	fmt.Printf("Created %s\n", ws.Path)
	fmt.Printf("Pin it with: deskpin pin %s\n", ws.Path)
}

func fatal(what string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", what, err)
	os.Exit(1)
}
