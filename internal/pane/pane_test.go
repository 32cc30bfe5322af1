package pane

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/panes/internal/appctx"
	"github.com/justyntemme/panes/internal/fs"
	"github.com/justyntemme/panes/internal/profile"
	"github.com/justyntemme/panes/internal/thumbs"
)

func newTestContext(t *testing.T) *appctx.Context {
	t.Helper()
	return &appctx.Context{
		FS:          fs.NewSystem(),
		Scanner:     thumbs.NewScanner(16, nil),
		Profiles:    profile.NewStore(nil),
		DefaultRoot: t.TempDir(),
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	require.NoError(t, png.Encode(f, img))
}

func imageDir(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < n; i++ {
		writePNG(t, filepath.Join(dir, fmt.Sprintf("img%03d.png", i)))
	}
	return dir
}

type focusRecorder struct {
	mu    sync.Mutex
	panes []*Pane
}

func (f *focusRecorder) PaneFocused(p *Pane) {
	f.mu.Lock()
	f.panes = append(f.panes, p)
	f.mu.Unlock()
}

type opCall struct {
	op, src, dest string
}

type fakeFileOps struct {
	mu    sync.Mutex
	calls []opCall
	fail  map[string]error
}

func (f *fakeFileOps) record(op, src, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, opCall{op, src, dest})
	return f.fail[src]
}

func (f *fakeFileOps) Copy(src, destDir string) error { return f.record("copy", src, destDir) }
func (f *fakeFileOps) Move(src, destDir string) error { return f.record("move", src, destDir) }

func TestViewMode_ParseAndString(t *testing.T) {
	tests := []struct {
		in   string
		want ViewMode
	}{
		{"narrow", Narrow},
		{"Detailed", Detailed},
		{" IMAGES ", Images},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseViewMode(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, strings.ToLower(strings.TrimSpace(tc.in)), got.String())
		})
	}

	_, err := ParseViewMode("thumbnails")
	assert.Error(t, err)
}

func TestResolveColumns(t *testing.T) {
	withDisplay := func(display ...string) profile.Profile {
		return profile.Profile{Name: "p", Fields: profile.Fields{Display: display}}
	}
	titles := func(cols []Column) []string {
		var out []string
		for _, c := range cols {
			out = append(out, c.Title)
		}
		return out
	}

	tests := []struct {
		name    string
		mode    ViewMode
		profile profile.Profile
		want    []string
	}{
		{"narrow ignores profile", Narrow, profile.Default(), []string{"Name"}},
		{"default profile", Detailed, profile.Default(), []string{"Name", "Size", "Type", "Date Modified"}},
		{"empty display falls back to name", Detailed, withDisplay(), []string{"Name"}},
		{"unmapped fields are inert", Detailed, withDisplay("Artist", "Size"), []string{"Size"}},
		{"only unmapped fields", Detailed, withDisplay("Artist", "Album"), []string{"Name"}},
		{"column order is positional", Detailed, withDisplay("Date Modified", "Name"), []string{"Name", "Date Modified"}},
		{"case-insensitive", Detailed, withDisplay("type", "DATE MODIFIED"), []string{"Type", "Date Modified"}},
		{"images shows name", Images, profile.Default(), []string{"Name"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, titles(ResolveColumns(tc.mode, tc.profile)))
		})
	}
}

func TestNavigateTo_InvalidPathKeepsPrior(t *testing.T) {
	ctx := newTestContext(t)
	p := New(ctx, Options{ViewMode: Detailed})

	dir := t.TempDir()
	require.NoError(t, p.NavigateTo(dir))

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	for _, bad := range []string{"", filepath.Join(dir, "missing"), file} {
		err := p.NavigateTo(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
		assert.Equal(t, dir, p.Path())
	}
	p.Close()
}

func TestNavigateTo_ListsAndScans(t *testing.T) {
	ctx := newTestContext(t)
	p := New(ctx, Options{ViewMode: Detailed})
	dir := imageDir(t, 3)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	require.NoError(t, p.NavigateTo(dir))
	res := p.WaitScan()

	assert.Equal(t, thumbs.Completed, res.State)
	assert.Len(t, p.Entries(), 4)
	assert.Len(t, p.Thumbnails(), 3)
	assert.Equal(t, thumbs.Completed, p.ScanState())
	assert.Equal(t, filepath.Base(dir), p.Title())

	rows := p.Rows()
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"sub", "", "File folder"}, rows[0].Cells[:3])
	assert.Equal(t, "PNG File", rows[1].Cells[ColType])
	p.Close()
}

func TestNavigateTo_OnlyLatestScanDelivers(t *testing.T) {
	ctx := newTestContext(t)
	p := New(ctx, Options{ViewMode: Images})

	dirs := []string{imageDir(t, 30), imageDir(t, 30), imageDir(t, 2)}
	for _, d := range dirs {
		require.NoError(t, p.NavigateTo(d))
	}
	p.WaitScan()

	latest := dirs[len(dirs)-1]
	items := p.Thumbnails()
	assert.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, latest, filepath.Dir(it.Path))
	}
	p.Close()
}

func TestApplyViewMode_ImagesReusesCompletedScan(t *testing.T) {
	ctx := newTestContext(t)
	p := New(ctx, Options{ViewMode: Detailed})
	require.NoError(t, p.NavigateTo(imageDir(t, 2)))
	p.WaitScan()

	p.scanMu.Lock()
	first := p.task
	p.scanMu.Unlock()

	p.ApplyViewMode(Images)
	p.scanMu.Lock()
	assert.Same(t, first, p.task)
	p.scanMu.Unlock()
	assert.Len(t, p.Thumbnails(), 2)

	// A refresh outside Images marks the scan stale
	p.ApplyViewMode(Narrow)
	p.Refresh()
	p.ApplyViewMode(Images)
	p.scanMu.Lock()
	assert.NotSame(t, first, p.task)
	p.scanMu.Unlock()
	p.WaitScan()
	assert.Len(t, p.Thumbnails(), 2)
	p.Close()
}

func TestApplyViewMode_NarrowThenDetailedRestoresProfileColumns(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Profiles.SaveEditState("Sizes", []string{"Name", "Size"}, nil)

	p := New(ctx, Options{ViewMode: Detailed, Profile: "Sizes"})
	assert.Len(t, p.Columns(), 2)

	p.ApplyViewMode(Narrow)
	assert.Len(t, p.Columns(), 1)

	p.ApplyViewMode(Detailed)
	assert.Equal(t, []Column{{ColName, "Name"}, {ColSize, "Size"}}, p.Columns())
}

func TestSetActiveProfile(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Profiles.SaveEditState("Types", []string{"Type"}, nil)

	p := New(ctx, Options{ViewMode: Narrow})
	p.SetActiveProfile("Types")
	assert.Equal(t, "Types", p.ActiveProfile())
	assert.Len(t, p.Columns(), 1, "narrow keeps the name column")

	p.ApplyViewMode(Detailed)
	assert.Equal(t, []Column{{ColType, "Type"}}, p.Columns())

	p.SetActiveProfile(profile.DefaultName)
	assert.Len(t, p.Columns(), 4, "detailed re-resolves at once")

	p.SetActiveProfile(profile.CreateNewName)
	p.SetActiveProfile("")
	assert.Equal(t, profile.DefaultName, p.ActiveProfile())

	// A profile missing from the store selects Default
	p.SetActiveProfile("Types")
	p.SetActiveProfile("Gone")
	assert.Equal(t, profile.DefaultName, p.ActiveProfile())
	assert.Len(t, p.Columns(), 4)
}

func TestNew_MissingProfileFallsBackToDefault(t *testing.T) {
	ctx := newTestContext(t)
	p := New(ctx, Options{ViewMode: Detailed, Profile: "Music"})
	assert.Equal(t, profile.DefaultName, p.ActiveProfile())
	assert.Len(t, p.Columns(), 4)

	// Creating the name later does not capture the pane
	ctx.Profiles.SaveEditState("Music", []string{"Name"}, nil)
	p.ReloadProfile()
	assert.Equal(t, profile.DefaultName, p.ActiveProfile())
	assert.Len(t, p.Columns(), 4)

	kept := New(ctx, Options{ViewMode: Detailed, Profile: "Music"})
	assert.Equal(t, "Music", kept.ActiveProfile())
	assert.Len(t, kept.Columns(), 1)
}

func TestFocus(t *testing.T) {
	rec := &focusRecorder{}
	p := New(newTestContext(t), Options{Focus: rec})
	other := New(newTestContext(t), Options{Focus: rec})

	p.Focus()
	other.Focus()
	require.Len(t, rec.panes, 2)
	assert.Same(t, p, rec.panes[0])
	assert.Same(t, other, rec.panes[1])
	assert.NotEqual(t, p.ID(), other.ID())
}

func TestDrop_MoveContinuesAfterFailure(t *testing.T) {
	src := t.TempDir()
	var sources []string
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		path := filepath.Join(src, name)
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
		sources = append(sources, path)
	}
	missing := filepath.Join(src, "missing.txt")

	ops := &fakeFileOps{fail: map[string]error{sources[1]: errors.New("permission denied")}}
	p := New(newTestContext(t), Options{FileOps: ops})
	dest := t.TempDir()
	require.NoError(t, p.NavigateTo(dest))

	var asked []string
	chooser := DropChooserFunc(func(target *Pane, s []string) DropOp {
		assert.Same(t, p, target)
		asked = s
		return DropMove
	})

	out := p.Drop(append(sources, missing), chooser)

	assert.Equal(t, DropMove, out.Op)
	assert.Len(t, asked, 4)
	require.Len(t, ops.calls, 3)
	for i, c := range ops.calls {
		assert.Equal(t, opCall{"move", sources[i], dest}, c)
	}
	require.Len(t, out.Failures, 1)
	assert.Equal(t, sources[1], out.Failures[0].Source)
	assert.Equal(t, []string{missing}, out.Skipped)
	p.Close()
}

func TestDrop_CopyAndCancel(t *testing.T) {
	src := t.TempDir()
	file := filepath.Join(src, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0o644))

	ops := &fakeFileOps{}
	p := New(newTestContext(t), Options{FileOps: ops})
	dest := t.TempDir()
	require.NoError(t, p.NavigateTo(dest))

	out := p.Drop([]string{file}, DropChooserFunc(func(*Pane, []string) DropOp { return DropCancel }))
	assert.Equal(t, DropCancel, out.Op)
	assert.Empty(t, ops.calls)

	out = p.Drop([]string{"file://" + filepath.ToSlash(file)}, DropChooserFunc(func(*Pane, []string) DropOp { return DropCopy }))
	assert.Equal(t, DropCopy, out.Op)
	require.Len(t, ops.calls, 1)
	assert.Equal(t, opCall{"copy", file, dest}, ops.calls[0])
	p.Close()
}

func TestDrop_RealFileSystem(t *testing.T) {
	ctx := newTestContext(t)
	src := t.TempDir()
	file := filepath.Join(src, "moved.txt")
	require.NoError(t, os.WriteFile(file, []byte("m"), 0o644))

	p := New(ctx, Options{FileOps: ctx.FS})
	dest := t.TempDir()
	require.NoError(t, p.NavigateTo(dest))

	out := p.Drop([]string{file}, DropChooserFunc(func(*Pane, []string) DropOp { return DropMove }))
	assert.Empty(t, out.Failures)
	assert.NoFileExists(t, file)

	// The listing is refreshed after a successful drop
	require.Eventually(t, func() bool { return len(p.Entries()) == 1 }, time.Second, 10*time.Millisecond)
	p.Close()
}

func TestParseDropList(t *testing.T) {
	got := ParseDropList("file:///tmp/a.txt\n/tmp/b.txt\n\nhttps://example.com/c\n")
	assert.Equal(t, []string{"/tmp/a.txt", "/tmp/b.txt"}, got)
}

func TestClose_StopsFurtherScans(t *testing.T) {
	p := New(newTestContext(t), Options{ViewMode: Images})
	dir := imageDir(t, 1)
	p.Close()

	require.NoError(t, p.NavigateTo(dir))
	assert.Equal(t, "", p.Path())
	assert.Equal(t, thumbs.Idle, p.WaitScan().State)
}
