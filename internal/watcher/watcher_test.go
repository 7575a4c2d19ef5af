package watcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/runmanager/internal/testutil"
	"github.com/zjrosen/runmanager/internal/watcher"
)

func startWatcher(t *testing.T, root string) <-chan watcher.Change {
	t.Helper()
	w, err := watcher.New(watcher.Config{
		Root:        root,
		InfoFile:    testutil.InfoFile,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err)
	return onChange
}

func expectChange(t *testing.T, onChange <-chan watcher.Change) watcher.Change {
	t.Helper()
	select {
	case change := <-onChange:
		return change
	case <-time.After(2 * time.Second):
		t.Fatal("expected notification but got timeout")
		return watcher.Change{}
	}
}

func expectQuiet(t *testing.T, onChange <-chan watcher.Change) {
	t.Helper()
	select {
	case change := <-onChange:
		t.Fatalf("unexpected notification: %v", change.Datasets)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	root := testutil.TrialCollection(t, 10, 20)
	onChange := startWatcher(t, root)

	for i := 0; i < 10; i++ {
		testutil.UpdateDataset(t, root, "d0", testutil.WithTrials(i))
		time.Sleep(10 * time.Millisecond)
	}

	change := expectChange(t, onChange)
	require.Equal(t, []string{"d0"}, change.Datasets)
	expectQuiet(t, onChange)
}

func TestWatcher_CoalescesDatasets(t *testing.T) {
	root := testutil.TrialCollection(t, 10, 20, 30)
	onChange := startWatcher(t, root)

	testutil.UpdateDataset(t, root, "d2", testutil.WithTrials(1))
	testutil.UpdateDataset(t, root, "d0", testutil.WithTrials(1))

	change := expectChange(t, onChange)
	require.Equal(t, []string{"d0", "d2"}, change.Datasets)
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	root := testutil.TrialCollection(t, 10)
	onChange := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "d0", "spikes.bin"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0600))

	expectQuiet(t, onChange)
}

func TestWatcher_DetectsRemoval(t *testing.T) {
	root := testutil.TrialCollection(t, 10)
	onChange := startWatcher(t, root)

	require.NoError(t, os.Remove(filepath.Join(root, "d0", testutil.InfoFile)))

	change := expectChange(t, onChange)
	require.Equal(t, []string{"d0"}, change.Datasets)
}

func TestWatcher_PicksUpNewDatasetDirectories(t *testing.T) {
	root := testutil.TrialCollection(t, 10)
	onChange := startWatcher(t, root)

	require.NoError(t, os.Mkdir(filepath.Join(root, "fresh"), 0750))
	// Give the watcher time to register the new directory.
	time.Sleep(100 * time.Millisecond)
	testutil.UpdateDataset(t, root, "fresh", testutil.WithTrials(5))

	change := expectChange(t, onChange)
	require.Equal(t, []string{"fresh"}, change.Datasets)
}

func TestWatcher_StopIsClean(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(t.TempDir(), testutil.InfoFile))
	require.NoError(t, err)
	_, err = w.Start()
	require.NoError(t, err)

	require.NoError(t, w.Stop())
}

func TestWatcher_InvalidRoot(t *testing.T) {
	_, err := watcher.New(watcher.Config{})
	require.Error(t, err)

	w, err := watcher.New(watcher.Config{Root: filepath.Join(t.TempDir(), "missing"), InfoFile: testutil.InfoFile})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	_, err = w.Start()
	require.Error(t, err)
	require.ErrorContains(t, err, "watching directory")
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(t.TempDir(), testutil.InfoFile))
	require.NoError(t, err)
	_, err = w.Start()
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NotPanics(t, func() {
		require.NoError(t, w.Stop())
	})
}
