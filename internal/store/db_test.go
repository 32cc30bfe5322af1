package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/panes/internal/profile"
)

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vendor", "app", "settings.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, path
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath("Mark Stout", "File Manager Vibe")
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	assert.Equal(t, "settings.db", filepath.Base(path))
	assert.Equal(t, "File Manager Vibe", filepath.Base(filepath.Dir(path)))
	assert.Equal(t, "Mark Stout", filepath.Base(filepath.Dir(filepath.Dir(path))))
}

func TestSettings_GetSet(t *testing.T) {
	db, _ := openTestDB(t)

	_, ok, err := db.Get(KeyLayoutID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Set(KeyLayoutID, []byte("21")))
	require.NoError(t, db.Set(KeyLayoutID, []byte("42")))

	v, ok, err := db.Get(KeyLayoutID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42", string(v))

	keys, err := db.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{KeyLayoutID}, keys)

	require.NoError(t, db.Delete(KeyLayoutID, "missing"))
	_, ok, err = db.Get(KeyLayoutID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettings_JSON(t *testing.T) {
	db, _ := openTestDB(t)

	paths := []string{"/a", "/b c"}
	require.NoError(t, db.SetJSON(KeyPanePaths, paths))

	var got []string
	ok, err := db.GetJSON(KeyPanePaths, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, paths, got)

	require.NoError(t, db.Set(KeyPaneProfiles, []byte("{not json")))
	var bad []string
	ok, err = db.GetJSON(KeyPaneProfiles, &bad)
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestSettings_BookmarksReserved(t *testing.T) {
	db, _ := openTestDB(t)
	err := db.Set(KeyBookmarks, []byte("{}"))
	assert.ErrorIs(t, err, ErrReservedKey)

	keys, err := db.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestProfiles_RoundTrip(t *testing.T) {
	db, path := openTestDB(t)

	in := map[string]profile.Fields{
		"Music": {Display: []string{"Name", "Artist"}, Properties: []string{"Album"}},
		"Empty": {},
	}
	require.NoError(t, db.SaveProfiles(in))

	got, err := db.LoadProfiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Artist"}, got["Music"].Display)
	assert.Equal(t, []string{"Album"}, got["Music"].Properties)
	assert.Equal(t, []string{}, got["Empty"].Display)

	// Saving replaces the whole set
	require.NoError(t, db.SaveProfiles(map[string]profile.Fields{"Only": {Display: []string{"Size"}}}))
	require.NoError(t, db.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err = reopened.LoadProfiles()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Size"}, got["Only"].Display)
}

func TestProfiles_StoreIntegration(t *testing.T) {
	db, _ := openTestDB(t)

	s := profile.NewStore(db)
	s.SaveEditState("Photos", []string{"Name", "Dimensions"}, []string{"Camera model"})
	require.NoError(t, s.Persist())

	restored := profile.NewStore(db)
	require.NoError(t, restored.ReadPersisted())
	assert.Equal(t, s.Snapshot(), restored.Snapshot())
}
