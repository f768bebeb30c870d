package tmux

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/simoncoessens/deskpin/internal/workbench"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeRunner records tmux invocations and serves canned output. seqOut
// serves successive values per key, last value repeating. Guarded by a
// mutex so watcher goroutines and test assertions can share it.
type fakeRunner struct {
	mu     sync.Mutex
	calls  [][]string
	output map[string]string
	errs   map[string]error
	seqOut map[string][]string
	seqIdx map[string]int
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		output: make(map[string]string),
		errs:   make(map[string]error),
		seqOut: make(map[string][]string),
		seqIdx: make(map[string]int),
	}
}

func key(args ...string) string { return strings.Join(args, " ") }

func (f *fakeRunner) Run(args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, args)
	k := key(args...)
	if seq, ok := f.seqOut[k]; ok {
		idx := f.seqIdx[k]
		if idx < len(seq) {
			f.seqIdx[k] = idx + 1
			return seq[idx], f.errs[k]
		}
		return seq[len(seq)-1], f.errs[k]
	}
	return f.output[k], f.errs[k]
}

func (f *fakeRunner) findCall(subcmd string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, call := range f.calls {
		if len(call) > 0 && call[0] == subcmd {
			return call
		}
	}
	return nil
}

func (f *fakeRunner) countCalls(subcmd string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, call := range f.calls {
		if len(call) > 0 && call[0] == subcmd {
			n++
		}
	}
	return n
}

var listKey = key("list-panes", "-s", "-t", "writing", "-F", paneFormat)

func testOptions(r CmdRunner) Options {
	return Options{
		Session:   "writing",
		Editor:    "nvim",
		Viewer:    "zathura",
		Shell:     "bash",
		OutputExt: ".pdf",
		Runner:    r,
	}
}

// newTestSession builds a Session against a fake tmux holding the given
// list-panes output.
func newTestSession(t *testing.T, fake *fakeRunner, listOutput string) *Session {
	t.Helper()
	fake.output[listKey] = listOutput
	s, err := NewSession(testOptions(fake))
	require.NoError(t, err)
	return s
}

func TestNewSessionCreatesMissingSession(t *testing.T) {
	fake := newFakeRunner()
	fake.errs[key("has-session", "-t", "writing")] = errors.New("no session")
	fake.output[listKey] = "%1\tbash\t\t\t\t\t"

	s, err := NewSession(testOptions(fake))
	require.NoError(t, err)

	assert.NotNil(t, fake.findCall("new-session"))
	panes := s.Panes()
	require.Len(t, panes, 1)
	assert.True(t, panes[0].HasKind(workbench.ItemTerminal), "bare shell adopts as a terminal")

	select {
	case <-s.Ready():
	default:
		t.Fatal("session not ready after construction")
	}
}

func TestNewSessionRestoresMarkedPanes(t *testing.T) {
	fake := newFakeRunner()
	lines := []string{
		"%1\tnvim\tfile\t/w/report.tex\t\t\t",
		"%2\tbash\tterminal\t\ton\ton\ton",
		"%3\tzathura\toutput\t/w/report.pdf\ton\ton\ton",
	}
	s := newTestSession(t, fake, strings.Join(lines, "\n"))

	panes := s.Panes()
	require.Len(t, panes, 3)
	assert.Equal(t, "/w/report.tex", panes[0].Items[0].Resource)
	assert.Equal(t, workbench.ItemFile, panes[0].Items[0].Kind)
	assert.True(t, panes[1].Locked)
	assert.True(t, panes[1].Chromeless)
	assert.True(t, panes[2].Items[0].Sticky)
	assert.Equal(t, workbench.ItemOutput, panes[2].Items[0].Kind)
}

func TestSplitPaneInsertsAfterBase(t *testing.T) {
	fake := newFakeRunner()
	fake.output[key("split-window", "-d", "-v", "-t", "%1", "-p", "30", "-P", "-F", "#{pane_id}")] = "%9"
	s := newTestSession(t, fake, "%1\tbash\t\t\t\t\t\n%2\tbash\t\t\t\t\t")

	var added []string
	cancel := s.Subscribe(func(ev workbench.Event) {
		if ev.Kind == workbench.EventPaneAdded {
			added = append(added, ev.PaneID)
		}
	})
	defer cancel()

	id, err := s.SplitPane("%1", workbench.SplitDown, 0.3)
	require.NoError(t, err)
	assert.Equal(t, "%9", id)

	panes := s.Panes()
	require.Len(t, panes, 3)
	assert.Equal(t, []string{"%1", "%9", "%2"}, []string{panes[0].ID, panes[1].ID, panes[2].ID})
	assert.Equal(t, []string{"%9"}, added)
}

func TestOpenResourceRespawnsWithQuotedPath(t *testing.T) {
	fake := newFakeRunner()
	s := newTestSession(t, fake, "%1\tbash\t\t\t\t\t")

	it, err := s.OpenResource("%1", "/w/my thesis.pdf", workbench.ItemOutput)
	require.NoError(t, err)
	assert.Equal(t, workbench.ItemOutput, it.Kind)

	call := fake.findCall("respawn-pane")
	require.NotNil(t, call)
	assert.Equal(t, "zathura '/w/my thesis.pdf'", call[len(call)-1])

	panes := s.Panes()
	assert.Equal(t, workbench.ItemOutput, panes[0].Items[0].Kind, "opened item is foreground")
}

func TestCreateTerminalUsesDefaultShell(t *testing.T) {
	fake := newFakeRunner()
	s := newTestSession(t, fake, "%1\tbash\t\t\t\t\t")

	_, err := s.CreateTerminal("%1")
	require.NoError(t, err)

	call := fake.findCall("respawn-pane")
	require.NotNil(t, call)
	assert.Equal(t, []string{"respawn-pane", "-k", "-t", "%1"}, call, "no command means tmux default shell")
}

func TestMergePaneLockedRejected(t *testing.T) {
	fake := newFakeRunner()
	s := newTestSession(t, fake, "%1\tnvim\tfile\t/w/a.tex\t\t\t\n%2\tzathura\toutput\t/w/a.pdf\ton\t\t")

	err := s.MergePane("%2", "%1")
	require.ErrorIs(t, err, workbench.ErrPaneLocked)
	assert.Nil(t, fake.findCall("kill-pane"))
}

func TestMergePaneKillsAndCarriesItems(t *testing.T) {
	fake := newFakeRunner()
	s := newTestSession(t, fake, "%1\tnvim\tfile\t/w/a.tex\t\t\t\n%2\tnvim\tfile\t/w/b.tex\t\t\t")

	require.NoError(t, s.MergePane("%2", "%1"))
	assert.NotNil(t, fake.findCall("kill-pane"))

	panes := s.Panes()
	require.Len(t, panes, 1)
	require.Len(t, panes[0].Items, 2)
	assert.Equal(t, "/w/b.tex", panes[0].Items[1].Resource)
}

func TestSyncAdoptsAndForgetsPanes(t *testing.T) {
	fake := newFakeRunner()
	fake.seqOut[listKey] = []string{
		"%1\tnvim\tfile\t/w/a.tex\t\t\t\n%2\tbash\tterminal\t\t\t\t",
		"%1\tnvim\tfile\t/w/a.tex\t\t\t\n%3\thtop\t\t\t\t\t",
	}
	s, err := NewSession(testOptions(fake))
	require.NoError(t, err)

	var events []workbench.Event
	cancel := s.Subscribe(func(ev workbench.Event) { events = append(events, ev) })
	defer cancel()

	require.NoError(t, s.Sync())

	panes := s.Panes()
	require.Len(t, panes, 2)
	assert.Equal(t, "%3", panes[1].ID)
	assert.Equal(t, workbench.ItemUnwanted, panes[1].Items[0].Kind, "unknown command adopts as unwanted")

	kinds := make([]workbench.EventKind, 0, len(events))
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
		ids = append(ids, ev.PaneID)
	}
	assert.Contains(t, ids, "%2", "vanished pane still announced")
	assert.Contains(t, kinds, workbench.EventPaneAdded)
}

func TestSyncClassifiesByCaptureFallback(t *testing.T) {
	fake := newFakeRunner()
	fake.seqOut[listKey] = []string{
		"%1\tbash\tterminal\t\t\t\t",
		"%1\tbash\tterminal\t\t\t\t\n%4\tfancyview\t\t\t\t\t",
	}
	fake.output[key("capture-pane", "-p", "-t", "%4")] = "\x1b[1mshowing /w/a.pdf page 1\x1b[0m"
	s, err := NewSession(testOptions(fake))
	require.NoError(t, err)

	require.NoError(t, s.Sync())
	panes := s.Panes()
	require.Len(t, panes, 2)
	assert.Equal(t, workbench.ItemOutput, panes[1].Items[0].Kind)
}

func TestApplyLayoutResizesOnceAndSkipsRepeat(t *testing.T) {
	fake := newFakeRunner()
	s := newTestSession(t, fake,
		"%1\tnvim\tfile\t/w/a.tex\t\t\t\n%2\tbash\tterminal\t\t\t\t\n%3\tzathura\toutput\t/w/a.pdf\t\t\t")

	left := workbench.LayoutNode{
		Orientation: workbench.OrientColumn,
		Children:    []workbench.LayoutChild{{Size: 0.7}, {Size: 0.3}},
	}
	tree := workbench.LayoutNode{
		Orientation: workbench.OrientRow,
		Children:    []workbench.LayoutChild{{Size: 0.5, Node: &left}, {Size: 0.5}},
	}

	require.NoError(t, s.ApplyLayout(tree))
	assert.Equal(t, 3, fake.countCalls("resize-pane"))

	var sized [][]string
	for _, call := range fake.calls {
		if call[0] == "resize-pane" {
			sized = append(sized, call)
		}
	}
	assert.Equal(t, []string{"resize-pane", "-t", "%1", "-x", "50%", "-y", "70%"}, sized[0])
	assert.Equal(t, []string{"resize-pane", "-t", "%2", "-x", "50%", "-y", "30%"}, sized[1])
	assert.Equal(t, []string{"resize-pane", "-t", "%3", "-x", "50%", "-y", "100%"}, sized[2])

	require.NoError(t, s.ApplyLayout(tree))
	assert.Equal(t, 3, fake.countCalls("resize-pane"), "matching layout reapply is a no-op")
}

func TestApplyLayoutLeafCountMismatch(t *testing.T) {
	fake := newFakeRunner()
	s := newTestSession(t, fake, "%1\tbash\t\t\t\t\t")

	tree := workbench.LayoutNode{
		Orientation: workbench.OrientRow,
		Children:    []workbench.LayoutChild{{Size: 0.5}, {Size: 0.5}},
	}
	assert.Error(t, s.ApplyLayout(tree))
}

func TestSuppressChromeSetsBorderOff(t *testing.T) {
	fake := newFakeRunner()
	s := newTestSession(t, fake, "%1\tbash\t\t\t\t\t")

	require.NoError(t, s.SuppressChrome("%1"))

	found := false
	for _, call := range fake.calls {
		if call[0] == "set-option" && call[len(call)-2] == "pane-border-status" && call[len(call)-1] == "off" {
			found = true
		}
	}
	assert.True(t, found)
	assert.True(t, s.Panes()[0].Chromeless)
}

func TestWatcherSyncsAndStops(t *testing.T) {
	fake := newFakeRunner()
	s := newTestSession(t, fake, "%1\tbash\tterminal\t\t\t\t")

	before := fake.countCalls("list-panes")
	w := NewWatcher(s, 10*time.Millisecond, 100)
	w.Start()
	time.Sleep(60 * time.Millisecond)
	w.Close()

	after := fake.countCalls("list-panes")
	assert.Greater(t, after, before, "watcher polls list-panes")

	settled := fake.countCalls("list-panes")
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, fake.countCalls("list-panes"), "no sync after Close")
}
