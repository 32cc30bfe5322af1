package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/justyntemme/panes/internal/layout"
	"github.com/justyntemme/panes/internal/pane"
	"github.com/justyntemme/panes/internal/store"
)

// Default window size in dp.
const (
	DefaultWidth  = 1400
	DefaultHeight = 800
)

// Geometry is the saved window placement. Centered windows have no position.
type Geometry struct {
	X         int  `json:"x"`
	Y         int  `json:"y"`
	Width     int  `json:"width"`
	Height    int  `json:"height"`
	Centered  bool `json:"centered"`
	Maximized bool `json:"maximized"`
}

func DefaultGeometry() Geometry {
	return Geometry{Width: DefaultWidth, Height: DefaultHeight, Centered: true}
}

func (g Geometry) valid() bool {
	return g.Width > 0 && g.Height > 0
}

// ApplicationState is everything restored at startup. The pane slices are in
// pane creation order.
type ApplicationState struct {
	LayoutID      layout.ID
	PanePaths     []string
	PaneProfiles  []string
	PaneViewModes []string
	Geometry      Geometry
}

// DefaultState is used for anything missing or unreadable.
func DefaultState() ApplicationState {
	return ApplicationState{LayoutID: layout.Single, Geometry: DefaultGeometry()}
}

// Seeds turns the per-pane lists into layout seeds. Paths are not checked
// here; the layout engine substitutes the default root for missing ones.
func (s ApplicationState) Seeds() []layout.Seed {
	n := max(len(s.PanePaths), len(s.PaneProfiles), len(s.PaneViewModes))
	seeds := make([]layout.Seed, n)
	for i := range seeds {
		if i < len(s.PanePaths) {
			seeds[i].Path = s.PanePaths[i]
		}
		if i < len(s.PaneProfiles) {
			seeds[i].Profile = s.PaneProfiles[i]
		}
		if i < len(s.PaneViewModes) {
			if mode, err := pane.ParseViewMode(s.PaneViewModes[i]); err == nil {
				seeds[i].ViewMode = mode
				seeds[i].HasMode = true
			}
		}
	}
	return seeds
}

// SettingsStore is the key-value store holding ApplicationState.
type SettingsStore interface {
	GetJSON(key string, v any) (bool, error)
	SetJSON(key string, v any) error
}

// LoadState reads the saved state. It never fails: unreadable values are
// logged and replaced by defaults.
func LoadState(s SettingsStore) ApplicationState {
	st := DefaultState()
	if s == nil {
		return st
	}

	read := func(key string, v any) bool {
		ok, err := s.GetJSON(key, v)
		if err != nil {
			logrus.WithField("key", key).Warnf("settings: %v, using default", err)
			return false
		}
		return ok
	}

	var geometry Geometry
	if read(store.KeyGeometry, &geometry) && geometry.valid() {
		st.Geometry = geometry
	}

	var id int
	if read(store.KeyLayoutID, &id) {
		if layout.ID(id).Valid() {
			st.LayoutID = layout.ID(id)
		} else {
			logrus.WithField("key", store.KeyLayoutID).Warnf("settings: unknown layout %d, using default", id)
		}
	}

	var paths, profiles, modes []string
	if read(store.KeyPanePaths, &paths) {
		st.PanePaths = paths
	}
	if read(store.KeyPaneProfiles, &profiles) {
		st.PaneProfiles = profiles
	}
	if read(store.KeyPaneViewModes, &modes) {
		st.PaneViewModes = modes
	}
	return st
}

// SaveState writes st. The pane path count must match the layout.
func SaveState(s SettingsStore, st ApplicationState) error {
	want, err := layout.PaneCount(st.LayoutID)
	if err != nil {
		return err
	}
	if len(st.PanePaths) != want {
		return fmt.Errorf("layout %d has %d panes, got %d paths", int(st.LayoutID), want, len(st.PanePaths))
	}

	writes := []struct {
		key   string
		value any
	}{
		{store.KeyGeometry, st.Geometry},
		{store.KeyLayoutID, int(st.LayoutID)},
		{store.KeyPanePaths, st.PanePaths},
		{store.KeyPaneProfiles, st.PaneProfiles},
		{store.KeyPaneViewModes, st.PaneViewModes},
	}
	for _, w := range writes {
		if err := s.SetJSON(w.key, w.value); err != nil {
			return err
		}
	}
	return nil
}
