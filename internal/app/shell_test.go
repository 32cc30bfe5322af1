package app

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/panes/internal/appctx"
	"github.com/justyntemme/panes/internal/fs"
	"github.com/justyntemme/panes/internal/layout"
	"github.com/justyntemme/panes/internal/pane"
	"github.com/justyntemme/panes/internal/profile"
	"github.com/justyntemme/panes/internal/store"
	"github.com/justyntemme/panes/internal/thumbs"
)

type recordedError struct {
	title, message string
}

type fakeReporter struct {
	mu     sync.Mutex
	errors []recordedError
}

func (r *fakeReporter) ShowError(title, message string) {
	r.mu.Lock()
	r.errors = append(r.errors, recordedError{title, message})
	r.mu.Unlock()
}

type shellEnv struct {
	root     string
	dbPath   string
	db       *store.DB
	reporter *fakeReporter
}

func newShellEnv(t *testing.T) *shellEnv {
	t.Helper()
	env := &shellEnv{
		root:     t.TempDir(),
		dbPath:   filepath.Join(t.TempDir(), "settings.db"),
		reporter: &fakeReporter{},
	}
	env.reopen(t)
	return env
}

func (env *shellEnv) reopen(t *testing.T) {
	t.Helper()
	if env.db != nil {
		require.NoError(t, env.db.Close())
	}
	db, err := store.Open(env.dbPath)
	require.NoError(t, err)
	env.db = db
	t.Cleanup(func() { db.Close() })
}

func (env *shellEnv) shell(t *testing.T, chooser pane.DropChooser) *Shell {
	t.Helper()
	ctx := &appctx.Context{
		FS:          fs.NewSystem(),
		Scanner:     thumbs.NewScanner(16, nil),
		Profiles:    profile.NewStore(env.db),
		DefaultRoot: env.root,
	}
	return NewShell(ctx, env.db, ShellOptions{
		Reporter: env.reporter,
		Chooser:  chooser,
		ViewMode: pane.Detailed,
	})
}

func highlighted(s *Shell) []*pane.Pane {
	var out []*pane.Pane
	for _, p := range s.Engine().Panes() {
		if p.Highlighted() {
			out = append(out, p)
		}
	}
	return out
}

func TestShell_StartWithDefaults(t *testing.T) {
	env := newShellEnv(t)
	s := env.shell(t, nil)
	require.NoError(t, s.Start(StartOptions{}))
	defer s.Shutdown()

	panes := s.Engine().Panes()
	require.Len(t, panes, 1)
	assert.Equal(t, layout.Single, s.LayoutID())
	assert.Equal(t, env.root, panes[0].Path())
	assert.Same(t, panes[0], s.ActivePane())
	assert.Equal(t, DefaultGeometry(), s.Geometry())
}

func TestShell_StartOptionsOverride(t *testing.T) {
	env := newShellEnv(t)
	s := env.shell(t, nil)
	dir := t.TempDir()
	require.NoError(t, s.Start(StartOptions{Path: dir, LayoutID: layout.Two}))
	defer s.Shutdown()

	panes := s.Engine().Panes()
	require.Len(t, panes, 2)
	assert.Equal(t, dir, panes[0].Path())
	assert.Equal(t, env.root, panes[1].Path())
}

func TestShell_StateRoundTrip(t *testing.T) {
	env := newShellEnv(t)
	a, b, c := t.TempDir(), t.TempDir(), t.TempDir()

	s := env.shell(t, nil)
	require.NoError(t, s.Start(StartOptions{}))
	require.NoError(t, s.ChangeLayout(layout.OneLeftTwoRight))

	panes := s.Engine().Panes()
	require.Len(t, panes, 3)
	for i, dir := range []string{a, b, c} {
		require.NoError(t, s.Navigate(panes[i], dir))
	}
	panes[2].ApplyViewMode(pane.Images)
	s.SetGeometry(Geometry{X: 10, Y: 20, Width: 900, Height: 600})
	require.NoError(t, s.Shutdown())

	require.NoError(t, os.RemoveAll(b))
	env.reopen(t)

	restored := env.shell(t, nil)
	require.NoError(t, restored.Start(StartOptions{}))
	defer restored.Shutdown()

	assert.Equal(t, layout.OneLeftTwoRight, restored.LayoutID())
	got := restored.Engine().Panes()
	require.Len(t, got, 3)
	assert.Equal(t, a, got[0].Path())
	assert.Equal(t, env.root, got[1].Path())
	assert.Equal(t, c, got[2].Path())
	assert.Equal(t, pane.Images, got[2].ViewMode())
	assert.Equal(t, Geometry{X: 10, Y: 20, Width: 900, Height: 600}, restored.Geometry())
}

func TestShell_ActivePaneTracking(t *testing.T) {
	env := newShellEnv(t)
	s := env.shell(t, nil)
	require.NoError(t, s.Start(StartOptions{LayoutID: layout.Four}))
	defer s.Shutdown()

	panes := s.Engine().Panes()
	require.Len(t, panes, 4)
	assert.Equal(t, []*pane.Pane{panes[0]}, highlighted(s))

	panes[2].Focus()
	assert.Same(t, panes[2], s.ActivePane())
	assert.Equal(t, []*pane.Pane{panes[2]}, highlighted(s))

	s.CycleActive(1)
	assert.Same(t, panes[3], s.ActivePane())
	s.CycleActive(1)
	assert.Same(t, panes[0], s.ActivePane())
	s.CycleActive(-1)
	assert.Same(t, panes[3], s.ActivePane())
	assert.Len(t, highlighted(s), 1)

	// Panes of a replaced layout cannot become active
	require.NoError(t, s.ChangeLayout(layout.Two))
	panes[3].Focus()
	current := s.Engine().Panes()
	assert.Same(t, current[0], s.ActivePane())
	assert.Equal(t, []*pane.Pane{current[0]}, highlighted(s))
}

func TestShell_ViewModeGoesToActivePaneOnly(t *testing.T) {
	env := newShellEnv(t)
	s := env.shell(t, nil)
	require.NoError(t, s.Start(StartOptions{LayoutID: layout.Two}))
	defer s.Shutdown()

	panes := s.Engine().Panes()
	panes[1].Focus()
	s.SetViewMode(pane.Narrow)

	assert.Equal(t, pane.Detailed, panes[0].ViewMode())
	assert.Equal(t, pane.Narrow, panes[1].ViewMode())
	assert.Equal(t, pane.Narrow, s.ViewMode())
}

func TestShell_ChangeLayoutPreservesPathsByPosition(t *testing.T) {
	env := newShellEnv(t)
	s := env.shell(t, nil)
	require.NoError(t, s.Start(StartOptions{LayoutID: layout.Three}))
	defer s.Shutdown()

	dirs := []string{t.TempDir(), t.TempDir(), t.TempDir()}
	panes := s.Engine().Panes()
	for i, d := range dirs {
		require.NoError(t, s.Navigate(panes[i], d))
	}
	panes[2].Focus()

	require.NoError(t, s.ChangeLayout(layout.Grid2x2))
	next := s.Engine().Panes()
	require.Len(t, next, 4)
	for i, d := range dirs {
		assert.Equal(t, d, next[i].Path())
	}
	assert.Equal(t, env.root, next[3].Path())
	assert.Same(t, next[0], s.ActivePane())

	require.NoError(t, s.ChangeLayout(layout.Single))
	assert.Equal(t, dirs[0], s.Engine().Panes()[0].Path())
}

func TestShell_ChangeLayoutInvalid(t *testing.T) {
	env := newShellEnv(t)
	s := env.shell(t, nil)
	require.NoError(t, s.Start(StartOptions{LayoutID: layout.Two}))
	defer s.Shutdown()

	before := s.Engine().Panes()
	err := s.ChangeLayout(layout.ID(5))
	assert.ErrorIs(t, err, layout.ErrInvalidLayoutID)
	assert.Equal(t, before, s.Engine().Panes())
	assert.Same(t, before[0], s.ActivePane())
}

func TestShell_HandleDropReportsEachFailure(t *testing.T) {
	env := newShellEnv(t)
	s := env.shell(t, pane.DropChooserFunc(func(*pane.Pane, []string) pane.DropOp { return pane.DropMove }))
	require.NoError(t, s.Start(StartOptions{LayoutID: layout.Two}))
	defer s.Shutdown()

	src, dest := t.TempDir(), t.TempDir()
	var sources []string
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		path := filepath.Join(src, name)
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
		sources = append(sources, path)
	}
	// b.txt already exists at the destination, so its move fails
	require.NoError(t, os.WriteFile(filepath.Join(dest, "b.txt"), []byte("old"), 0o644))

	panes := s.Engine().Panes()
	require.NoError(t, s.Navigate(panes[0], src))
	require.NoError(t, s.Navigate(panes[1], dest))

	out := s.HandleDrop(panes[1], sources)
	assert.Equal(t, pane.DropMove, out.Op)
	assert.Len(t, out.Attempted, 3)
	require.Len(t, out.Failures, 1)

	require.Len(t, env.reporter.errors, 1)
	assert.Equal(t, "Move Error", env.reporter.errors[0].title)
	assert.Contains(t, env.reporter.errors[0].message, "Could not move item:")

	assert.FileExists(t, filepath.Join(dest, "a.txt"))
	assert.FileExists(t, filepath.Join(dest, "c.txt"))
	assert.FileExists(t, sources[1])

	// The source pane was refreshed after the move
	assert.Len(t, panes[0].Entries(), 1)
}

func TestShell_Profiles(t *testing.T) {
	env := newShellEnv(t)
	s := env.shell(t, nil)
	require.NoError(t, s.Start(StartOptions{LayoutID: layout.Two}))
	defer s.Shutdown()

	_, err := s.CreateProfile("Music")
	require.NoError(t, err)

	_, err = s.CreateProfile("Music")
	assert.ErrorIs(t, err, profile.ErrDuplicateName)
	require.Len(t, env.reporter.errors, 1)
	assert.Equal(t, "Profile Exists", env.reporter.errors[0].title)

	require.NoError(t, s.ApplyProfileEdits(map[string]profile.Fields{
		"Music":  {Display: []string{"Name", "Size"}},
		"Photos": {Display: []string{"Type"}},
	}))

	panes := s.Engine().Panes()
	s.SetPaneProfile(panes[0], "Music")
	s.SetPaneProfile(panes[1], "Photos")
	assert.Len(t, panes[0].Columns(), 2)

	require.NoError(t, s.RenameProfile("Music", "Audio"))
	assert.Equal(t, "Audio", panes[0].ActiveProfile())
	assert.Len(t, panes[0].Columns(), 2)

	require.NoError(t, s.DeleteProfile("Photos"))
	assert.Equal(t, profile.DefaultName, panes[1].ActiveProfile())
	assert.Len(t, panes[1].Columns(), 4)

	// Accepting edits without a profile repoints its panes
	require.NoError(t, s.ApplyProfileEdits(map[string]profile.Fields{}))
	assert.Equal(t, profile.DefaultName, panes[0].ActiveProfile())

	persisted, err := env.db.LoadProfiles()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestShell_ProfilesPersistAcrossRestart(t *testing.T) {
	env := newShellEnv(t)
	s := env.shell(t, nil)
	require.NoError(t, s.Start(StartOptions{}))
	s.Context().Profiles.SaveEditState("Video", []string{"Name", "Director"}, nil)
	s.SetPaneProfile(s.Engine().Panes()[0], "Video")
	require.NoError(t, s.Shutdown())

	env.reopen(t)
	restored := env.shell(t, nil)
	require.NoError(t, restored.Start(StartOptions{}))
	defer restored.Shutdown()

	assert.Equal(t, []string{"Video"}, restored.Context().Profiles.Names())
	assert.Equal(t, "Video", restored.Engine().Panes()[0].ActiveProfile())
}

func TestShell_StartDropsMissingSavedProfile(t *testing.T) {
	env := newShellEnv(t)
	require.NoError(t, env.db.SetJSON(store.KeyLayoutID, int(layout.Two)))
	require.NoError(t, env.db.SetJSON(store.KeyPanePaths, []string{env.root, env.root}))
	require.NoError(t, env.db.SetJSON(store.KeyPaneProfiles, []string{"Music", "Video"}))
	require.NoError(t, env.db.SaveProfiles(map[string]profile.Fields{
		"Video": {Display: []string{"Name"}},
	}))

	s := env.shell(t, nil)
	require.NoError(t, s.Start(StartOptions{}))
	defer s.Shutdown()

	panes := s.Engine().Panes()
	require.Len(t, panes, 2)
	assert.Equal(t, profile.DefaultName, panes[0].ActiveProfile())
	assert.Equal(t, "Video", panes[1].ActiveProfile())

	// A later profile with the old name is not picked up
	_, err := s.CreateProfile("Music")
	require.NoError(t, err)
	assert.Equal(t, profile.DefaultName, panes[0].ActiveProfile())
	assert.Equal(t, profile.DefaultName, s.State().PaneProfiles[0])
}

func TestShell_EditProfile(t *testing.T) {
	env := newShellEnv(t)
	s := env.shell(t, nil)
	require.NoError(t, s.Start(StartOptions{LayoutID: layout.Two}))
	defer s.Shutdown()

	_, err := s.CreateProfile("Music")
	require.NoError(t, err)
	_, err = s.CreateProfile("Video")
	require.NoError(t, err)
	panes := s.Engine().Panes()
	s.SetPaneProfile(panes[0], "Music")

	require.NoError(t, s.EditProfile("Music", " Audio ", profile.Fields{
		Display:    []string{"Name", "Size"},
		Properties: []string{"Artist"},
	}))
	assert.Equal(t, "Audio", panes[0].ActiveProfile())
	assert.Len(t, panes[0].Columns(), 2)

	persisted, err := env.db.LoadProfiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"Artist"}, persisted["Audio"].Properties)
	assert.NotContains(t, persisted, "Music")

	// Renaming onto a taken name changes nothing
	err = s.EditProfile("Audio", "Video", profile.Fields{Display: []string{"Type"}})
	assert.ErrorIs(t, err, profile.ErrDuplicateName)
	require.Len(t, env.reporter.errors, 1)
	assert.Equal(t, "Profile Exists", env.reporter.errors[0].title)
	assert.Len(t, panes[0].Columns(), 2)

	assert.ErrorIs(t, s.EditProfile(profile.DefaultName, "Mine", profile.Fields{}), profile.ErrReservedName)
	assert.ErrorIs(t, s.EditProfile("Audio", "  ", profile.Fields{}), profile.ErrEmptyName)
}

func TestShell_ShutdownWhileNavigating(t *testing.T) {
	env := newShellEnv(t)
	w, err := NewDirectoryWatcher(20)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	s := NewShell(&appctx.Context{
		FS:          fs.NewSystem(),
		Scanner:     thumbs.NewScanner(16, nil),
		Profiles:    profile.NewStore(env.db),
		DefaultRoot: env.root,
	}, env.db, ShellOptions{Reporter: env.reporter, Watcher: w})
	require.NoError(t, s.Start(StartOptions{}))

	p := s.Engine().Panes()[0]
	other := t.TempDir()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			s.Navigate(p, other)
		}
	}()
	require.NoError(t, s.Shutdown())
	<-done
}

func TestShell_WatcherRefreshesPanes(t *testing.T) {
	env := newShellEnv(t)
	w, err := NewDirectoryWatcher(20)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}

	ctx := &appctx.Context{
		FS:          fs.NewSystem(),
		Scanner:     thumbs.NewScanner(16, nil),
		Profiles:    profile.NewStore(env.db),
		DefaultRoot: env.root,
	}
	s := NewShell(ctx, env.db, ShellOptions{Reporter: env.reporter, Watcher: w})
	require.NoError(t, s.Start(StartOptions{}))
	defer s.Shutdown()

	p := s.Engine().Panes()[0]
	assert.True(t, w.Watching(env.root))
	require.NoError(t, os.WriteFile(filepath.Join(env.root, "new.txt"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool { return len(p.Entries()) == 1 }, 3*time.Second, 20*time.Millisecond)
}
