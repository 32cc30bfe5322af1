// Package profile holds named field profiles: the metadata columns a pane's
// Detailed view shows and the properties a details view would list.
package profile

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/justyntemme/panes/internal/debug"
)

// Reserved names. Neither is ever a storable key.
const (
	// DefaultName is the synthetic, immutable profile every pane starts with.
	DefaultName = "Default Files"
	// CreateNewName is the list entry offering to create a profile.
	CreateNewName = "Create New..."
)

// IsReserved reports whether name is one of the reserved names.
func IsReserved(name string) bool {
	return name == DefaultName || name == CreateNewName
}

var (
	ErrDuplicateName = errors.New("profile already exists")
	ErrReservedName  = errors.New("profile name is reserved")
	ErrEmptyName     = errors.New("profile name is empty")
	ErrNotFound      = errors.New("profile not found")
)

// DuplicateNameError reports a create or rename onto a taken name.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("a profile named %q already exists", e.Name)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

// Fields is the stored shape of one profile.
type Fields struct {
	Display    []string `json:"display"`
	Properties []string `json:"properties"`
}

func (f Fields) clone() Fields {
	return Fields{
		Display:    append([]string{}, f.Display...),
		Properties: append([]string{}, f.Properties...),
	}
}

// Profile is a resolved, named field profile.
type Profile struct {
	Name string
	Fields
}

// DefaultDisplay is the display list of the Default profile.
var DefaultDisplay = []string{FieldName, FieldSize, FieldType, FieldDateModified}

// Default synthesizes the Default profile.
func Default() Profile {
	display := slices.Clone(DefaultDisplay)
	properties := append(slices.Clone(DefaultDisplay), FieldDateCreated)
	return Profile{Name: DefaultName, Fields: Fields{Display: display, Properties: properties}}
}

// Persister reads and writes the whole profile mapping at once.
type Persister interface {
	LoadProfiles() (map[string]Fields, error)
	SaveProfiles(map[string]Fields) error
}

// Store is the set of user profiles. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	profiles  map[string]Fields
	persister Persister
}

// NewStore creates an empty store. persister may be nil, in which case
// ReadPersisted and Persist do nothing.
func NewStore(persister Persister) *Store {
	return &Store{
		profiles:  make(map[string]Fields),
		persister: persister,
	}
}

// List returns the names for a profile picker: Default first, stored names
// sorted, then the create sentinel.
func (s *Store) List() []string {
	names := []string{DefaultName}
	names = append(names, s.Names()...)
	return append(names, CreateNewName)
}

// Names returns the stored profile names, sorted.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create adds an empty profile.
func (s *Store) Create(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[name]; exists || IsReserved(name) {
		debug.Log(debug.PROFILE, "Create: %q rejected, name taken", name)
		return "", &DuplicateNameError{Name: name}
	}
	s.profiles[name] = Fields{Display: []string{}, Properties: []string{}}
	debug.Log(debug.PROFILE, "Create: %q", name)
	return name, nil
}

// SaveEditState stores the edited field lists for name. Reserved names are
// ignored.
func (s *Store) SaveEditState(name string, display, properties []string) {
	if name == "" || IsReserved(name) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[name] = Fields{Display: display, Properties: properties}.clone()
	debug.Log(debug.PROFILE, "SaveEditState: %q display=%v", name, display)
}

// Get returns the named profile. The Default profile is synthesized.
func (s *Store) Get(name string) (Profile, bool) {
	if name == DefaultName {
		return Default(), true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.profiles[name]
	if !ok {
		return Profile{}, false
	}
	return Profile{Name: name, Fields: f.clone()}, true
}

// Resolve returns the named profile, or Default if it no longer exists.
func (s *Store) Resolve(name string) Profile {
	if p, ok := s.Get(name); ok {
		return p
	}
	return Default()
}

// Exists reports whether name resolves to itself.
func (s *Store) Exists(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Rename moves a stored profile to a new name.
func (s *Store) Rename(oldName, newName string) error {
	if IsReserved(oldName) {
		return fmt.Errorf("rename %q: %w", oldName, ErrReservedName)
	}
	if strings.TrimSpace(newName) == "" {
		return ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.profiles[oldName]
	if !ok {
		return fmt.Errorf("rename %q: %w", oldName, ErrNotFound)
	}
	if oldName == newName {
		return nil
	}
	if _, exists := s.profiles[newName]; exists || IsReserved(newName) {
		return &DuplicateNameError{Name: newName}
	}
	delete(s.profiles, oldName)
	s.profiles[newName] = f
	debug.Log(debug.PROFILE, "Rename: %q -> %q", oldName, newName)
	return nil
}

// Delete removes a stored profile.
func (s *Store) Delete(name string) error {
	if IsReserved(name) {
		return fmt.Errorf("delete %q: %w", name, ErrReservedName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[name]; !ok {
		return fmt.Errorf("delete %q: %w", name, ErrNotFound)
	}
	delete(s.profiles, name)
	debug.Log(debug.PROFILE, "Delete: %q", name)
	return nil
}

// Snapshot returns a deep copy of the stored profiles.
func (s *Store) Snapshot() map[string]Fields {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Fields, len(s.profiles))
	for name, f := range s.profiles {
		out[name] = f.clone()
	}
	return out
}

// Load replaces the stored profiles with m. Reserved and empty names are
// dropped.
func (s *Store) Load(m map[string]Fields) {
	profiles := make(map[string]Fields, len(m))
	for name, f := range m {
		if strings.TrimSpace(name) == "" || IsReserved(name) {
			debug.Log(debug.PROFILE, "Load: dropping reserved or empty name %q", name)
			continue
		}
		profiles[name] = f.clone()
	}

	s.mu.Lock()
	s.profiles = profiles
	s.mu.Unlock()
}

// ReadPersisted loads the store from its persister.
func (s *Store) ReadPersisted() error {
	if s.persister == nil {
		return nil
	}
	m, err := s.persister.LoadProfiles()
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	s.Load(m)
	return nil
}

// Persist writes the whole store through its persister.
func (s *Store) Persist() error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.SaveProfiles(s.Snapshot()); err != nil {
		return fmt.Errorf("save profiles: %w", err)
	}
	return nil
}
