package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/simoncoessens/deskpin/internal/config"
	"github.com/simoncoessens/deskpin/internal/enforce"
	"github.com/simoncoessens/deskpin/internal/project"
	"github.com/simoncoessens/deskpin/internal/theme"
	"github.com/simoncoessens/deskpin/internal/tmux"
	"github.com/simoncoessens/deskpin/internal/workbench"
)

func newFlagSet(name, usageLine string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Println(usageLine)
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}
	return fs
}

// handlePin pins the given directory (default cwd) into a tmux session.
func handlePin(args []string) {
	fs := newFlagSet("pin", "Usage: deskpin pin [dir] [options]")
	sessionName := fs.String("session", "", "tmux session name (default: derived from the directory)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() > 1 {
		fs.Usage()
		os.Exit(1)
	}

	dir := "."
	if fs.NArg() == 1 {
		dir = fs.Arg(0)
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		fatal("resolve workspace dir", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		fatal("workspace dir", fmt.Errorf("%s is not a directory", dir))
	}

	cfgDir, err := config.Dir()
	if err != nil {
		fatal("resolve config dir", err)
	}
	settings := config.LoadSettings(filepath.Join(cfgDir, "config.toml"))
	settings.MergeWorkspace(dir)

	rememberWorkspace(cfgDir, dir)

	if *sessionName != "" {
		runPinNamed(dir, settings, *sessionName)
	} else {
		runPin(dir, settings)
	}
}

// rememberWorkspace upserts the pinned directory into the dashboard's recent
// list. Best-effort: a broken store must not stop the pin.
func rememberWorkspace(cfgDir, dir string) {
	store, err := project.NewStore(filepath.Join(cfgDir, "deskpin.db"))
	if err != nil {
		return
	}
	defer store.Close()

	if ws, err := store.FindByPath(dir); err == nil {
		_ = store.Touch(ws.ID)
		return
	}
	_ = store.Save(&project.Workspace{Name: filepath.Base(dir), Path: dir})
}

func runPin(dir string, settings *config.Settings) {
	runPinNamed(dir, settings, "deskpin-"+sanitizeSessionName(filepath.Base(dir)))
}

// runPinNamed builds the host session, activates enforcement and attaches.
// It returns when the user detaches from tmux.
func runPinNamed(dir string, settings *config.Settings, sessionName string) {
	editor := settings.Pin.Editor
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	viewer := settings.Pin.Viewer
	if viewer == "" {
		viewer = "zathura"
	}

	sess, err := tmux.NewSession(tmux.Options{
		Session:   sessionName,
		Editor:    editor,
		Viewer:    viewer,
		OutputExt: settings.Pin.OutputExt,
	})
	if err != nil {
		fatal("tmux session", err)
	}

	pal := theme.Resolve(settings.Theme)
	sess.ApplyStyles(pal.TmuxStyleArgs(sess.Name()))

	// A fresh session starts on a bare shell; put the main source document
	// in the first pane so classification has a source to anchor on.
	if src, ok := findSourceFile(dir, settings.Pin.SourceExt); ok {
		panes := sess.Panes()
		if len(panes) > 0 && !panes[0].HasKind(workbench.ItemFile) {
			if _, err := sess.OpenResource(panes[0].ID, src, workbench.ItemFile); err != nil {
				fatal("open source file", err)
			}
		}
	}

	cfgStore, err := config.DefaultStore()
	if err != nil {
		fatal("config store", err)
	}

	engine := enforce.New(sess, enforce.Options{
		WorkspaceDir: dir,
		OutputExt:    settings.Pin.OutputExt,
		SourceExt:    settings.Pin.SourceExt,
		Config:       cfgStore,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispose, err := engine.Activate(ctx)
	if err != nil {
		fatal("activate enforcement", err)
	}
	defer dispose()

	watcher := tmux.NewWatcher(sess, 0, 0)
	watcher.Start()
	defer watcher.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	attachDone := make(chan error, 1)
	go func() { attachDone <- sess.Attach() }()

	select {
	case err := <-attachDone:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: attach ended with: %v\n", err)
		}
	case <-sigCh:
	}
}

// findSourceFile picks the document to open first: main.<ext> wins, then the
// lexically first source file in the workspace root.
func findSourceFile(dir, ext string) (string, bool) {
	main := filepath.Join(dir, "main"+ext)
	if _, err := os.Stat(main); err == nil {
		return main, true
	}

	var candidates []string
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.Type()&fs.ModeType != 0 {
			continue
		}
		if strings.HasSuffix(e.Name(), ext) {
			candidates = append(candidates, filepath.Join(dir, e.Name()))
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Strings(candidates)
	return candidates[0], true
}

// sanitizeSessionName strips characters tmux treats specially in targets.
func sanitizeSessionName(name string) string {
	return strings.NewReplacer(".", "-", ":", "-", " ", "-").Replace(name)
}
