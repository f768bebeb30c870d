package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPickArtifact_Priority(t *testing.T) {
	sources := []string{"report.src"}

	// main.out always wins.
	got, ok := PickArtifact([]string{"main.out", "report.out", "other.out"}, sources, ".out")
	require.True(t, ok)
	assert.Equal(t, "main.out", got)

	// Without main.out, the source-basename match wins.
	got, ok = PickArtifact([]string{"report.out", "other.out"}, sources, ".out")
	require.True(t, ok)
	assert.Equal(t, "report.out", got)

	// Without that, the first artifact in listing order wins.
	got, ok = PickArtifact([]string{"other.out"}, sources, ".out")
	require.True(t, ok)
	assert.Equal(t, "other.out", got)

	// No artifacts at all.
	_, ok = PickArtifact(nil, sources, ".out")
	assert.False(t, ok)
}

func TestPickArtifact_FirstBasenameMatchInListingOrder(t *testing.T) {
	sources := []string{"b.src", "a.src"}
	got, ok := PickArtifact([]string{"zzz.out", "a.out", "b.out"}, sources, ".out")
	require.True(t, ok)
	assert.Equal(t, "a.out", got, "listing order of artifacts decides, not source order")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatcher_ImmediateFind(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.out"), "artifact")

	var opened atomic.Int32
	w := New(dir, ".out", ".src", func(path string) error {
		opened.Add(1)
		assert.Equal(t, filepath.Join(dir, "main.out"), path)
		return nil
	})
	defer w.Close()

	require.NoError(t, w.Start())
	assert.Equal(t, Opened, w.State())
	assert.Equal(t, int32(1), opened.Load())
}

func TestWatcher_WatchesUntilArtifactAppears(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "report.src"), "source")

	openedPath := make(chan string, 1)
	w := New(dir, ".out", ".src", func(path string) error {
		openedPath <- path
		return nil
	})
	defer w.Close()

	require.NoError(t, w.Start())
	assert.Equal(t, Watching, w.State())

	writeFile(t, filepath.Join(dir, "report.out"), "built")

	select {
	case path := <-openedPath:
		assert.Equal(t, filepath.Join(dir, "report.out"), path)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for artifact discovery")
	}
}

func TestWatcher_OpenFailureAllowsRetry(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	w := New(dir, ".out", ".src", func(path string) error {
		if calls.Add(1) == 1 {
			return errors.New("host rejected open")
		}
		return nil
	})
	defer w.Close()

	require.NoError(t, w.Start())
	require.Equal(t, Watching, w.State())

	// First appearance fails to open; a later event must retry.
	writeFile(t, filepath.Join(dir, "main.out"), "v1")
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
	require.NotEqual(t, Opened, w.State())

	writeFile(t, filepath.Join(dir, "main.out"), "v2")
	require.Eventually(t, func() bool { return w.State() == Opened }, 3*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestWatcher_IgnoresEventsOnceOpened(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "other.src"), "source")

	var calls atomic.Int32
	w := New(dir, ".out", ".src", func(path string) error {
		calls.Add(1)
		return nil
	})
	defer w.Close()

	require.NoError(t, w.Start())
	writeFile(t, filepath.Join(dir, "main.out"), "built")
	require.Eventually(t, func() bool { return w.State() == Opened }, 3*time.Second, 10*time.Millisecond)

	// Further churn must not reopen.
	writeFile(t, filepath.Join(dir, "main.out"), "rebuilt")
	writeFile(t, filepath.Join(dir, "extra.out"), "more")
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_BurstSharesOneRescan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.out"), "artifact")

	entered := make(chan struct{})
	release := make(chan struct{})
	var opens atomic.Int32
	w := New(dir, ".out", ".src", func(path string) error {
		if opens.Add(1) == 1 {
			close(entered)
			<-release
		}
		return errors.New("host rejected open")
	})
	defer w.Close()

	// First rescan enters the open callback and parks there.
	first := make(chan struct{})
	go func() {
		w.rescan()
		close(first)
	}()
	<-entered

	// A burst arriving mid-pass must fold into the pass in flight rather
	// than list the directory again.
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.rescan()
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()
	<-first

	assert.Equal(t, int32(1), opens.Load(), "burst rescans share one open attempt")
}

func TestScanSources_HonorsGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".gitignore"), "build/\nscratch.src\n")
	writeFile(t, filepath.Join(dir, "report.src"), "keep")
	writeFile(t, filepath.Join(dir, "scratch.src"), "ignored")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "build"), 0o755))
	writeFile(t, filepath.Join(dir, "build", "gen.src"), "ignored")

	w := New(dir, ".out", ".src", func(string) error { return nil })
	defer w.Close()

	sources := w.scanSources()
	assert.Equal(t, []string{"report.src"}, sources)
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, ".out", ".src", func(string) error { return nil })
	require.NoError(t, w.Start())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
