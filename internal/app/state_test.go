package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/panes/internal/layout"
	"github.com/justyntemme/panes/internal/pane"
	"github.com/justyntemme/panes/internal/store"
)

func openStore(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadState_EmptyStore(t *testing.T) {
	assert.Equal(t, DefaultState(), LoadState(openStore(t)))
	assert.Equal(t, DefaultState(), LoadState(nil))
}

func TestLoadState_BadValuesFallBack(t *testing.T) {
	db := openStore(t)
	require.NoError(t, db.Set(store.KeyLayoutID, []byte("7")))
	require.NoError(t, db.Set(store.KeyGeometry, []byte("{broken")))
	require.NoError(t, db.Set(store.KeyPanePaths, []byte(`"not a list"`)))

	st := LoadState(db)
	assert.Equal(t, layout.Single, st.LayoutID)
	assert.Equal(t, DefaultGeometry(), st.Geometry)
	assert.Empty(t, st.PanePaths)
}

func TestSaveState_RoundTrip(t *testing.T) {
	db := openStore(t)
	in := ApplicationState{
		LayoutID:      layout.TwoWithProperties,
		PanePaths:     []string{"/a", "/b"},
		PaneProfiles:  []string{"Default Files", "Music"},
		PaneViewModes: []string{"narrow", "images"},
		Geometry:      Geometry{Width: 1000, Height: 700, Maximized: true},
	}
	require.NoError(t, SaveState(db, in))
	assert.Equal(t, in, LoadState(db))

	keys, err := db.Keys()
	require.NoError(t, err)
	assert.NotContains(t, keys, store.KeyBookmarks)
}

func TestSaveState_Validates(t *testing.T) {
	db := openStore(t)

	err := SaveState(db, ApplicationState{LayoutID: layout.Two, PanePaths: []string{"/a"}})
	assert.Error(t, err)

	err = SaveState(db, ApplicationState{LayoutID: layout.ID(9)})
	assert.ErrorIs(t, err, layout.ErrInvalidLayoutID)
}

func TestApplicationState_Seeds(t *testing.T) {
	st := ApplicationState{
		PanePaths:     []string{"/a", "/b"},
		PaneProfiles:  []string{"Music"},
		PaneViewModes: []string{"images", "bogus", "narrow"},
	}
	seeds := st.Seeds()
	require.Len(t, seeds, 3)

	assert.Equal(t, layout.Seed{Path: "/a", Profile: "Music", ViewMode: pane.Images, HasMode: true}, seeds[0])
	assert.Equal(t, layout.Seed{Path: "/b"}, seeds[1])
	assert.Equal(t, layout.Seed{ViewMode: pane.Narrow, HasMode: true}, seeds[2])
}
