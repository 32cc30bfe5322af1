package pane

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/justyntemme/panes/internal/fs"
	"github.com/justyntemme/panes/internal/profile"
)

// ViewMode selects how a pane presents its directory.
type ViewMode int

const (
	Narrow   ViewMode = iota // name column only
	Detailed                 // columns from the active profile
	Images                   // thumbnail grid
)

func (m ViewMode) String() string {
	switch m {
	case Narrow:
		return "narrow"
	case Detailed:
		return "detailed"
	case Images:
		return "images"
	}
	return "unknown"
}

// ParseViewMode parses a mode name case-insensitively.
func ParseViewMode(s string) (ViewMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "narrow":
		return Narrow, nil
	case "detailed":
		return Detailed, nil
	case "images":
		return Images, nil
	}
	return Detailed, fmt.Errorf("unknown view mode %q", s)
}

// Fixed column positions of the list views.
const (
	ColName = iota
	ColSize
	ColType
	ColDateModified
	numColumns
)

var columnTitles = [numColumns]string{"Name", "Size", "Type", "Date Modified"}

// Column is one visible list column.
type Column struct {
	Index int
	Title string
}

// ColumnIndex maps a profile field to its column. Only four fields have a
// column; the match ignores case so "Date modified" and "Date Modified" agree.
func ColumnIndex(field string) (int, bool) {
	for i, title := range columnTitles {
		if strings.EqualFold(strings.TrimSpace(field), title) {
			return i, true
		}
	}
	return 0, false
}

// ResolveColumns returns the visible columns, in column order, for a mode and
// profile. Narrow and Images show the name only. Detailed shows every mapped
// display field, or the name when none map.
func ResolveColumns(mode ViewMode, p profile.Profile) []Column {
	nameOnly := []Column{{Index: ColName, Title: columnTitles[ColName]}}
	if mode != Detailed {
		return nameOnly
	}

	var visible [numColumns]bool
	found := false
	for _, field := range p.Display {
		if idx, ok := ColumnIndex(field); ok {
			visible[idx] = true
			found = true
		}
	}
	if !found {
		return nameOnly
	}

	cols := make([]Column, 0, numColumns)
	for i, on := range visible {
		if on {
			cols = append(cols, Column{Index: i, Title: columnTitles[i]})
		}
	}
	return cols
}

// Row is one directory entry with its cell text for the visible columns.
type Row struct {
	Entry fs.Entry
	Cells []string
}

func buildRows(entries []fs.Entry, cols []Column) []Row {
	rows := make([]Row, len(entries))
	for i, e := range entries {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = cellText(e, c.Index)
		}
		rows[i] = Row{Entry: e, Cells: cells}
	}
	return rows
}

func cellText(e fs.Entry, col int) string {
	switch col {
	case ColName:
		return e.Name
	case ColSize:
		if e.IsDir {
			return ""
		}
		return humanize.Bytes(uint64(e.Size))
	case ColType:
		return typeName(e)
	case ColDateModified:
		if e.ModTime.IsZero() {
			return ""
		}
		return e.ModTime.Format("2006-01-02 15:04")
	}
	return ""
}

func typeName(e fs.Entry) string {
	if e.IsDir {
		return "File folder"
	}
	ext := strings.TrimPrefix(filepath.Ext(e.Name), ".")
	if ext == "" {
		return "File"
	}
	return strings.ToUpper(ext) + " File"
}
