package profile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPersister struct {
	saved   map[string]Fields
	loadErr error
}

func (m *memPersister) LoadProfiles() (map[string]Fields, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.saved, nil
}

func (m *memPersister) SaveProfiles(p map[string]Fields) error {
	m.saved = p
	return nil
}

func TestDefault(t *testing.T) {
	d := Default()
	assert.Equal(t, DefaultName, d.Name)
	assert.Equal(t, []string{"Name", "Size", "Type", "Date modified"}, d.Display)
	assert.Equal(t, []string{"Name", "Size", "Type", "Date modified", "Date created"}, d.Properties)

	// Callers get their own copy
	d.Display[0] = "changed"
	assert.Equal(t, "Name", Default().Display[0])
}

func TestStore_List(t *testing.T) {
	s := NewStore(nil)
	assert.Equal(t, []string{DefaultName, CreateNewName}, s.List())

	for _, name := range []string{"Photos", "Music", "archive"} {
		_, err := s.Create(name)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{DefaultName, "Music", "Photos", "archive", CreateNewName}, s.List())
	assert.Equal(t, []string{"Music", "Photos", "archive"}, s.Names())
}

func TestStore_CreateRejectsTakenNames(t *testing.T) {
	s := NewStore(nil)
	_, err := s.Create("Photos")
	require.NoError(t, err)
	before := s.Snapshot()

	for _, name := range []string{"Photos", DefaultName, CreateNewName} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Create(name)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDuplicateName)

			var dup *DuplicateNameError
			require.True(t, errors.As(err, &dup))
			assert.Equal(t, name, dup.Name)
			assert.Equal(t, before, s.Snapshot())
		})
	}

	_, err = s.Create("  ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestStore_SaveEditState(t *testing.T) {
	s := NewStore(nil)
	_, err := s.Create("Photos")
	require.NoError(t, err)

	display := []string{"Name", "Dimensions"}
	s.SaveEditState("Photos", display, []string{"Camera model"})
	display[0] = "mutated"

	p, ok := s.Get("Photos")
	require.True(t, ok)
	assert.Equal(t, []string{"Name", "Dimensions"}, p.Display)
	assert.Equal(t, []string{"Camera model"}, p.Properties)

	// Reserved names are immutable
	s.SaveEditState(DefaultName, []string{"Size"}, nil)
	s.SaveEditState(CreateNewName, []string{"Size"}, nil)
	assert.Equal(t, Default(), s.Resolve(DefaultName))
	assert.NotContains(t, s.Snapshot(), DefaultName)
	assert.NotContains(t, s.Snapshot(), CreateNewName)
}

func TestStore_Resolve(t *testing.T) {
	s := NewStore(nil)
	s.SaveEditState("Music", []string{"Artist"}, nil)

	assert.Equal(t, "Music", s.Resolve("Music").Name)
	assert.Equal(t, DefaultName, s.Resolve("missing").Name)
	assert.Equal(t, DefaultName, s.Resolve(CreateNewName).Name)
	assert.False(t, s.Exists("missing"))
	assert.True(t, s.Exists(DefaultName))
}

func TestStore_Rename(t *testing.T) {
	s := NewStore(nil)
	s.SaveEditState("Music", []string{"Artist"}, nil)
	s.SaveEditState("Video", []string{"Director"}, nil)

	require.NoError(t, s.Rename("Music", "Audio"))
	assert.Equal(t, []string{"Audio", "Video"}, s.Names())
	p, ok := s.Get("Audio")
	require.True(t, ok)
	assert.Equal(t, []string{"Artist"}, p.Display)

	assert.ErrorIs(t, s.Rename("Audio", "Video"), ErrDuplicateName)
	assert.ErrorIs(t, s.Rename("Audio", DefaultName), ErrDuplicateName)
	assert.ErrorIs(t, s.Rename(DefaultName, "x"), ErrReservedName)
	assert.ErrorIs(t, s.Rename("nope", "x"), ErrNotFound)
	assert.ErrorIs(t, s.Rename("Audio", ""), ErrEmptyName)
	assert.NoError(t, s.Rename("Audio", "Audio"))
}

func TestStore_Delete(t *testing.T) {
	s := NewStore(nil)
	s.SaveEditState("Music", nil, nil)

	require.NoError(t, s.Delete("Music"))
	assert.Empty(t, s.Names())
	assert.ErrorIs(t, s.Delete("Music"), ErrNotFound)
	assert.ErrorIs(t, s.Delete(DefaultName), ErrReservedName)
}

func TestStore_PersistRoundTrip(t *testing.T) {
	p := &memPersister{}
	s := NewStore(p)
	s.SaveEditState("Music", []string{"Name", "Artist"}, []string{"Album"})
	s.SaveEditState("Empty", []string{}, []string{})
	require.NoError(t, s.Persist())

	restored := NewStore(p)
	require.NoError(t, restored.ReadPersisted())
	assert.Equal(t, s.Snapshot(), restored.Snapshot())
}

func TestStore_LoadDropsReservedNames(t *testing.T) {
	s := NewStore(&memPersister{saved: map[string]Fields{
		DefaultName:   {Display: []string{"Size"}},
		CreateNewName: {},
		"":            {},
		"Keep":        {Display: []string{"Type"}},
	}})
	require.NoError(t, s.ReadPersisted())
	assert.Equal(t, []string{"Keep"}, s.Names())
	assert.Equal(t, Default(), s.Resolve(DefaultName))
}

func TestStore_ReadPersistedError(t *testing.T) {
	s := NewStore(&memPersister{loadErr: errors.New("disk gone")})
	s.SaveEditState("Keep", nil, nil)

	err := s.ReadPersisted()
	require.Error(t, err)
	assert.Equal(t, []string{"Keep"}, s.Names())
}

func TestCatalog(t *testing.T) {
	cats := Catalog()
	require.Len(t, cats, 4)
	assert.Equal(t, "General", cats[0].Name)
	for _, f := range DefaultDisplay {
		assert.True(t, InCatalog(f), f)
	}
	assert.True(t, InCatalog("Artist"))
	assert.False(t, InCatalog("Favorite color"))
}
