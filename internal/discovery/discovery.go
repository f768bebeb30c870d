// Package discovery locates the rendered output artifact for a workspace,
// falling back to a file-system watch when none exists yet.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/singleflight"

	"github.com/simoncoessens/deskpin/internal/logging"
)

var log = logging.ForComponent(logging.CompDiscovery)

// State tracks the discovery lifecycle. Modeling this as an explicit state
// machine (rather than a lone boolean) keeps the open latch and the watch
// subscription from disagreeing mid-failure.
type State int

const (
	Idle State = iota
	Watching
	Opening
	Opened
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Watching:
		return "watching"
	case Opening:
		return "opening"
	case Opened:
		return "opened"
	default:
		return "unknown"
	}
}

// OpenFunc opens a discovered artifact in the output pane. It must be
// idempotent: the restore-time check and the file watch may race, and the
// caller-side latch decides which open wins.
type OpenFunc func(path string) error

// PickArtifact applies the discovery priority policy to a directory listing.
// artifacts and sources are basenames in listing order; ext is the artifact
// suffix including the dot.
//
// Priority: the artifact named exactly "main"+ext, then the first artifact
// whose basename matches any source basename, then the first artifact of
// the target kind at all.
func PickArtifact(artifacts, sources []string, ext string) (string, bool) {
	for _, a := range artifacts {
		if a == "main"+ext {
			return a, true
		}
	}
	stems := make(map[string]bool, len(sources))
	for _, s := range sources {
		stems[strings.TrimSuffix(s, filepath.Ext(s))] = true
	}
	for _, a := range artifacts {
		if stems[strings.TrimSuffix(a, ext)] {
			return a, true
		}
	}
	if len(artifacts) > 0 {
		return artifacts[0], true
	}
	return "", false
}

// Watcher drives discovery for one workspace directory.
type Watcher struct {
	dir       string
	outputExt string
	sourceExt string
	open      OpenFunc

	mu    sync.Mutex
	state State

	fsw       *fsnotify.Watcher
	group     singleflight.Group
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a Watcher rooted at dir. outputExt and sourceExt include the
// leading dot (".pdf", ".tex").
func New(dir, outputExt, sourceExt string, open OpenFunc) *Watcher {
	return &Watcher{
		dir:       dir,
		outputExt: outputExt,
		sourceExt: sourceExt,
		open:      open,
		state:     Idle,
		done:      make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Start runs discovery once. If no artifact exists yet it arms a directory
// watch and keeps trying on every file-added/updated notification until one
// appears or the watcher is closed. A missing artifact is a legitimate
// steady state, not an error.
func (w *Watcher) Start() error {
	if w.tryOpen() {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.mu.Lock()
	w.fsw = fsw
	w.state = Watching
	w.mu.Unlock()
	log.Info("no artifact yet, watching", "dir", w.dir, "ext", w.outputExt)

	w.wg.Add(1)
	go w.loop(fsw)
	return nil
}

func (w *Watcher) loop(fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if w.State() == Opened {
				continue
			}
			// A build touching many files triggers a burst of events.
			// Each one dispatches asynchronously; singleflight folds the
			// ones that arrive mid-pass into the pass already running.
			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				w.rescan()
			}()
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.Warn("fs watch error", "err", err)
		}
	}
}

// rescan runs a coalesced discovery pass: callers that arrive while a pass
// is in flight share its result instead of listing the directory again.
func (w *Watcher) rescan() {
	_, _, _ = w.group.Do("rescan", func() (any, error) {
		w.tryOpen()
		return nil, nil
	})
}

// tryOpen runs one discovery pass and, on a hit, hands the artifact to the
// open callback. Returns true once the artifact is open. An open failure
// drops back to the previous state so the next event can retry; it never
// wedges discovery permanently.
func (w *Watcher) tryOpen() bool {
	path, ok := w.discover()
	if !ok {
		return false
	}

	w.mu.Lock()
	if w.state == Opened || w.state == Opening {
		opened := w.state == Opened
		w.mu.Unlock()
		return opened
	}
	prev := w.state
	w.state = Opening
	w.mu.Unlock()

	if err := w.open(path); err != nil {
		log.Warn("open artifact failed, will retry", "path", path, "err", err)
		w.mu.Lock()
		w.state = prev
		w.mu.Unlock()
		return false
	}

	w.mu.Lock()
	w.state = Opened
	w.mu.Unlock()
	log.Info("artifact opened", "path", path)
	return true
}

// discover applies the priority policy to the current directory listing.
func (w *Watcher) discover() (string, bool) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		log.Debug("list workspace failed", "dir", w.dir, "err", err)
		return "", false
	}

	var artifacts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), w.outputExt) {
			artifacts = append(artifacts, e.Name())
		}
	}

	name, ok := PickArtifact(artifacts, w.scanSources(), w.outputExt)
	if !ok {
		return "", false
	}
	return filepath.Join(w.dir, name), true
}

// scanSources lists source-file basenames under the workspace, honoring a
// workspace .gitignore so generated or vendored sources do not steer the
// basename-match rule.
func (w *Watcher) scanSources() []string {
	var ign *ignore.GitIgnore
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(w.dir, ".gitignore")); err == nil {
		ign = gi
	}

	var sources []string
	_ = filepath.WalkDir(w.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(w.dir, path)
		if relErr != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if ign != nil && rel != "." && ign.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), w.sourceExt) {
			return nil
		}
		if ign != nil && ign.MatchesPath(rel) {
			return nil
		}
		sources = append(sources, d.Name())
		return nil
	})
	return sources
}

// Close tears the watch down. Safe to call more than once; no callback
// fires after Close returns.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		fsw := w.fsw
		w.fsw = nil
		w.mu.Unlock()
		if fsw != nil {
			err = fsw.Close()
		}
		w.wg.Wait()
	})
	return err
}
