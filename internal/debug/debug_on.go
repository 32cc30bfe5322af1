//go:build debug

// Package debug provides a centralized, categorized debug logging system.
// Build with -tags debug to enable logging.
package debug

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Enabled indicates whether debug logging is active
const Enabled = true

// Category represents a debug logging category
type Category string

const (
	// Core categories
	APP     Category = "APP"     // Shell orchestration, active pane, persistence
	LAYOUT  Category = "LAYOUT"  // Layout specs, engine rebuilds
	PANE    Category = "PANE"    // Pane navigation, view modes, drops
	PROFILE Category = "PROFILE" // Field profile store
	STORE   Category = "STORE"   // Database operations, settings
	FS      Category = "FS"      // Filesystem listing, copy, move
	UI      Category = "UI"      // UI events, layout, rendering

	// Detailed subcategories (use sparingly - can be verbose)
	SCAN      Category = "SCAN"      // Thumbnail scans, per entry
	UI_LAYOUT Category = "UI_LAYOUT" // Frame layout (extremely verbose)
)

var (
	// enabledCategories controls which categories are active
	enabledCategories = map[Category]bool{
		APP:     true,
		LAYOUT:  true,
		PANE:    true,
		PROFILE: true,
		STORE:   true,
		FS:      true,
		UI:      true,
		// Verbose categories disabled by default
		SCAN:      false,
		UI_LAYOUT: false,
	}
	categoryMu sync.RWMutex

	logger = newLogger()
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000000"})
	return l
}

func init() {
	// Format: PANES_DEBUG=APP,LAYOUT or PANES_DEBUG=all or PANES_DEBUG=none
	if env := os.Getenv("PANES_DEBUG"); env != "" {
		categoryMu.Lock()
		defer categoryMu.Unlock()

		env = strings.ToUpper(env)
		switch env {
		case "ALL":
			for cat := range enabledCategories {
				enabledCategories[cat] = true
			}
		case "NONE":
			for cat := range enabledCategories {
				enabledCategories[cat] = false
			}
		default:
			for cat := range enabledCategories {
				enabledCategories[cat] = false
			}
			for _, cat := range strings.Split(env, ",") {
				enabledCategories[Category(strings.TrimSpace(cat))] = true
			}
		}
	}
}

// Log logs a debug message for the specified category
func Log(cat Category, format string, args ...interface{}) {
	categoryMu.RLock()
	enabled := enabledCategories[cat]
	categoryMu.RUnlock()

	if !enabled {
		return
	}
	logger.WithField("cat", string(cat)).Debugf(format, args...)
}

// Enable enables a debug category
func Enable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = true
	categoryMu.Unlock()
}

// EnableAll enables all debug categories including verbose ones
func EnableAll() {
	categoryMu.Lock()
	for cat := range enabledCategories {
		enabledCategories[cat] = true
	}
	categoryMu.Unlock()
}
