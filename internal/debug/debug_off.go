//go:build !debug

// Package debug provides a centralized, categorized debug logging system.
// This is the no-op version for release builds.
package debug

// Enabled indicates whether debug logging is active
const Enabled = false

// Category represents a debug logging category
type Category string

const (
	APP       Category = "APP"
	LAYOUT    Category = "LAYOUT"
	PANE      Category = "PANE"
	PROFILE   Category = "PROFILE"
	STORE     Category = "STORE"
	FS        Category = "FS"
	UI        Category = "UI"
	SCAN      Category = "SCAN"
	UI_LAYOUT Category = "UI_LAYOUT"
)

// Log is a no-op in release builds
func Log(cat Category, format string, args ...interface{}) {}

// Enable is a no-op in release builds
func Enable(cat Category) {}

// EnableAll is a no-op in release builds
func EnableAll() {}
