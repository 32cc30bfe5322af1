package config

import (
	"strconv"
	"strings"

	"gioui.org/io/event"
	"gioui.org/io/key"
)

// HotkeysConfig holds the user-facing shortcut strings, e.g. "Ctrl+Alt+2".
type HotkeysConfig struct {
	// View modes, applied to the active pane
	Narrow   string `json:"narrow"`
	Detailed string `json:"detailed"`
	Images   string `json:"images"`

	// Pane focus and navigation
	NextPane string `json:"nextPane"`
	PrevPane string `json:"prevPane"`
	Up       string `json:"up"`
	Refresh  string `json:"refresh"`

	// Layouts, keyed by layout id ("1", "21", ...)
	Layouts map[string]string `json:"layouts"`
}

// DefaultHotkeys returns the default keyboard shortcuts
func DefaultHotkeys() HotkeysConfig {
	return HotkeysConfig{
		Narrow:   "Ctrl+1",
		Detailed: "Ctrl+2",
		Images:   "Ctrl+3",
		NextPane: "Ctrl+Tab",
		PrevPane: "Ctrl+Shift+Tab",
		Up:       "Alt+Up",
		Refresh:  "F5",
		Layouts: map[string]string{
			"1":  "Ctrl+Alt+1",
			"2":  "Ctrl+Alt+2",
			"3":  "Ctrl+Alt+3",
			"21": "Ctrl+Alt+4",
			"31": "Ctrl+Alt+5",
			"32": "Ctrl+Alt+6",
			"41": "Ctrl+Alt+7",
			"42": "Ctrl+Alt+8",
		},
	}
}

// Hotkey represents a parsed keyboard shortcut
type Hotkey struct {
	Key       key.Name
	Modifiers key.Modifiers
}

// ParseHotkey parses a hotkey string like "Ctrl+Shift+N" into a Hotkey struct
func ParseHotkey(s string) Hotkey {
	if s == "" {
		return Hotkey{}
	}

	var mods key.Modifiers
	var rawKeyPart string

	for _, part := range strings.Split(s, "+") {
		part = strings.TrimSpace(part)
		switch strings.ToLower(part) {
		case "ctrl", "control":
			mods |= key.ModCtrl
		case "shift":
			mods |= key.ModShift
		case "alt", "option":
			mods |= key.ModAlt
		case "cmd", "command":
			mods |= key.ModCommand
		case "super", "meta", "win", "windows":
			mods |= key.ModSuper
		default:
			rawKeyPart = part
		}
	}

	keyName := parseKeyName(rawKeyPart)

	// Gio reports the shifted character (Shift+1 = "!")
	if mods.Contain(key.ModShift) {
		if shifted, ok := shiftedNumbers[string(keyName)]; ok {
			keyName = key.Name(shifted)
		}
	}

	return Hotkey{Key: keyName, Modifiers: mods}
}

// shiftedNumbers maps number keys to their shifted equivalents (US keyboard layout)
var shiftedNumbers = map[string]string{
	"1": "!", "2": "@", "3": "#", "4": "$", "5": "%",
	"6": "^", "7": "&", "8": "*", "9": "(", "0": ")",
}

// unshiftedNumbers is the reverse mapping for display purposes
var unshiftedNumbers = map[string]string{
	"!": "1", "@": "2", "#": "3", "$": "4", "%": "5",
	"^": "6", "&": "7", "*": "8", "(": "9", ")": "0",
}

var namedKeys = map[string]key.Name{
	"f1": key.NameF1, "f2": key.NameF2, "f3": key.NameF3, "f4": key.NameF4,
	"f5": key.NameF5, "f6": key.NameF6, "f7": key.NameF7, "f8": key.NameF8,
	"f9": key.NameF9, "f10": key.NameF10, "f11": key.NameF11, "f12": key.NameF12,

	"up": key.NameUpArrow, "uparrow": key.NameUpArrow,
	"down": key.NameDownArrow, "downarrow": key.NameDownArrow,
	"left": key.NameLeftArrow, "leftarrow": key.NameLeftArrow,
	"right": key.NameRightArrow, "rightarrow": key.NameRightArrow,
	"home": key.NameHome, "end": key.NameEnd,
	"pageup": key.NamePageUp, "pgup": key.NamePageUp,
	"pagedown": key.NamePageDown, "pgdn": key.NamePageDown,

	"enter": key.NameReturn, "return": key.NameReturn,
	"tab": key.NameTab, "space": key.NameSpace,
	"backspace": key.NameDeleteBackward,
	"delete": key.NameDeleteForward, "del": key.NameDeleteForward,
	"escape": key.NameEscape, "esc": key.NameEscape,
}

// parseKeyName converts a key string to Gio's key.Name
func parseKeyName(s string) key.Name {
	if len(s) == 1 {
		return key.Name(strings.ToUpper(s))
	}
	if name, ok := namedKeys[strings.ToLower(s)]; ok {
		return name
	}
	// Unknown names pass through (supports custom key names)
	return key.Name(s)
}

// Matches checks if a key event matches this hotkey.
// Modifiers must match exactly (Ctrl+H vs Ctrl+Shift+H).
func (h Hotkey) Matches(k key.Event) bool {
	if h.Key == "" {
		return false
	}
	return k.Name == h.Key && k.Modifiers == h.Modifiers
}

// IsEmpty returns true if the hotkey is not configured
func (h Hotkey) IsEmpty() bool {
	return h.Key == ""
}

// String returns a human-readable representation of the hotkey
func (h Hotkey) String() string {
	if h.Key == "" {
		return ""
	}

	var parts []string
	if h.Modifiers.Contain(key.ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if h.Modifiers.Contain(key.ModCommand) {
		parts = append(parts, "Cmd")
	}
	if h.Modifiers.Contain(key.ModShift) {
		parts = append(parts, "Shift")
	}
	if h.Modifiers.Contain(key.ModAlt) {
		parts = append(parts, "Alt")
	}
	if h.Modifiers.Contain(key.ModSuper) {
		parts = append(parts, "Super")
	}

	keyStr := string(h.Key)
	if h.Modifiers.Contain(key.ModShift) {
		if original, ok := unshiftedNumbers[keyStr]; ok {
			keyStr = original
		}
	}
	parts = append(parts, keyStr)
	return strings.Join(parts, "+")
}

// Filter returns a key.Filter that matches this hotkey
func (h Hotkey) Filter(focus event.Tag) key.Filter {
	return key.Filter{
		Focus:    focus,
		Name:     h.Key,
		Required: h.Modifiers,
	}
}

// HotkeyMatcher provides efficient hotkey matching from config
type HotkeyMatcher struct {
	Narrow   Hotkey
	Detailed Hotkey
	Images   Hotkey

	NextPane Hotkey
	PrevPane Hotkey
	Up       Hotkey
	Refresh  Hotkey

	// Layouts maps a layout id to its shortcut
	Layouts map[int]Hotkey
}

// NewHotkeyMatcher creates a matcher from config.
// Layout keys that are not integers are ignored.
func NewHotkeyMatcher(cfg HotkeysConfig) *HotkeyMatcher {
	m := &HotkeyMatcher{
		Narrow:   ParseHotkey(cfg.Narrow),
		Detailed: ParseHotkey(cfg.Detailed),
		Images:   ParseHotkey(cfg.Images),
		NextPane: ParseHotkey(cfg.NextPane),
		PrevPane: ParseHotkey(cfg.PrevPane),
		Up:       ParseHotkey(cfg.Up),
		Refresh:  ParseHotkey(cfg.Refresh),
		Layouts:  make(map[int]Hotkey, len(cfg.Layouts)),
	}
	for id, s := range cfg.Layouts {
		n, err := strconv.Atoi(id)
		if err != nil {
			continue
		}
		m.Layouts[n] = ParseHotkey(s)
	}
	return m
}

// All returns every configured hotkey, used to build key filters.
func (m *HotkeyMatcher) All() []Hotkey {
	hks := []Hotkey{m.Narrow, m.Detailed, m.Images, m.NextPane, m.PrevPane, m.Up, m.Refresh}
	for _, hk := range m.Layouts {
		hks = append(hks, hk)
	}
	var out []Hotkey
	for _, hk := range hks {
		if !hk.IsEmpty() {
			out = append(out, hk)
		}
	}
	return out
}
