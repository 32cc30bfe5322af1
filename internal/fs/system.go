// Package fs is the filesystem collaborator: single-level directory listing,
// existence checks, and the copy/move operations behind pane drops.
package fs

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/justyntemme/panes/internal/debug"
)

// Common file permission modes
const (
	DirPermission  = 0o755
	FilePermission = 0o644
)

var (
	// ErrNotDir is returned when a path exists but is not a directory.
	ErrNotDir = errors.New("not a directory")
	// ErrExists is returned when a move would overwrite its destination.
	ErrExists = errors.New("destination already exists")
	// ErrSameFile is returned when source and destination are the same path.
	ErrSameFile = errors.New("source and destination are the same file")
)

// Op names a file operation.
type Op string

const (
	OpCopy Op = "copy"
	OpMove Op = "move"
)

// OpError reports a failed copy or move with the offending path.
type OpError struct {
	Op   Op
	Path string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("could not %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Entry is one item of a directory listing.
type Entry struct {
	Name    string
	Path    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// System lists directories and performs file operations. All methods are
// synchronous and safe for concurrent use.
type System struct {
	ShowDotfiles bool
}

func NewSystem() *System {
	return &System{}
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListDir returns the direct children of path, directories first, then by
// case-insensitive name.
func (s *System) ListDir(path string) ([]Entry, error) {
	debug.Log(debug.FS, "ListDir: reading %q", path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotDir)
	}

	var result []Entry
	var mu sync.Mutex

	// Follow symlinks so links to directories list as directories
	conf := &fastwalk.Config{Follow: true}
	pathLen := len(path)

	err = fastwalk.Walk(conf, path, func(fullPath string, d iofs.DirEntry, err error) error {
		if err != nil {
			debug.Log(debug.FS, "ListDir: walk error at %q: %v", fullPath, err)
			return nil
		}
		if fullPath == path {
			return nil
		}

		// Only direct children; string slicing instead of filepath.Rel
		relStart := pathLen
		if relStart < len(fullPath) && (fullPath[relStart] == '/' || fullPath[relStart] == '\\') {
			relStart++
		}
		if strings.ContainsAny(fullPath[relStart:], "/\\") {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if !s.ShowDotfiles && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			// Broken symlink: fall back to the link itself
			info, err = os.Lstat(fullPath)
			if err != nil {
				return nil
			}
		}

		mu.Lock()
		result = append(result, Entry{
			Name:    d.Name(),
			Path:    fullPath,
			IsDir:   info.IsDir(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		mu.Unlock()

		if d.IsDir() {
			return fastwalk.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].IsDir != result[j].IsDir {
			return result[i].IsDir
		}
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})

	debug.Log(debug.FS, "ListDir: %d entries in %q", len(result), path)
	return result, nil
}

// Copy copies src into destDir, keeping its base name. An existing file of
// the same name is overwritten. Directories are copied recursively.
func (s *System) Copy(src, destDir string) error {
	dst, err := destination(OpCopy, src, destDir)
	if err != nil {
		return err
	}

	info, err := os.Stat(src)
	if err != nil {
		return &OpError{Op: OpCopy, Path: src, Err: err}
	}

	debug.Log(debug.FS, "Copy: %s -> %s", src, dst)
	if info.IsDir() {
		err = copyDir(src, dst)
	} else {
		err = copyFile(src, dst)
	}
	if err != nil {
		return &OpError{Op: OpCopy, Path: src, Err: err}
	}
	return nil
}

// Move moves src into destDir, keeping its base name. It refuses to
// overwrite an existing destination and falls back to copy+remove when a
// rename crosses devices.
func (s *System) Move(src, destDir string) error {
	dst, err := destination(OpMove, src, destDir)
	if err != nil {
		return err
	}
	if Exists(dst) {
		return &OpError{Op: OpMove, Path: src, Err: ErrExists}
	}

	debug.Log(debug.FS, "Move: %s -> %s", src, dst)
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return &OpError{Op: OpMove, Path: src, Err: err}
	}
	if info.IsDir() {
		err = copyDir(src, dst)
	} else {
		err = copyFile(src, dst)
	}
	if err == nil {
		err = os.RemoveAll(src)
	}
	if err != nil {
		return &OpError{Op: OpMove, Path: src, Err: err}
	}
	return nil
}

func destination(op Op, src, destDir string) (string, error) {
	if !Exists(src) {
		return "", &OpError{Op: op, Path: src, Err: os.ErrNotExist}
	}
	if !IsDir(destDir) {
		return "", &OpError{Op: op, Path: src, Err: fmt.Errorf("%s: %w", destDir, ErrNotDir)}
	}
	dst := filepath.Join(destDir, filepath.Base(src))
	if filepath.Clean(src) == filepath.Clean(dst) {
		return "", &OpError{Op: op, Path: src, Err: ErrSameFile}
	}
	rel, err := filepath.Rel(src, destDir)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		// destDir is src or lies inside it
		return "", &OpError{Op: op, Path: src, Err: fmt.Errorf("cannot place %s inside itself", src)}
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		os.Remove(dst)
		return err
	}
	if err := dstFile.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Chmod(dst, info.Mode())
}

// copyDir copies a directory tree. The walk collects items first, then
// creates directories parent-first before copying files.
func copyDir(src, dst string) error {
	type copyItem struct {
		srcPath string
		dstPath string
		isDir   bool
		mode    iofs.FileMode
	}
	var items []copyItem
	var itemsMu sync.Mutex

	conf := &fastwalk.Config{Follow: false}
	srcLen := len(src)

	err := fastwalk.Walk(conf, src, func(fullPath string, d iofs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		relPath := fullPath[srcLen:]
		if len(relPath) > 0 && (relPath[0] == '/' || relPath[0] == '\\') {
			relPath = relPath[1:]
		}
		if relPath == "" {
			return nil
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			return err
		}

		itemsMu.Lock()
		items = append(items, copyItem{
			srcPath: fullPath,
			dstPath: filepath.Join(dst, relPath),
			isDir:   info.IsDir(),
			mode:    info.Mode(),
		})
		itemsMu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, DirPermission); err != nil {
		return err
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].isDir != items[j].isDir {
			return items[i].isDir
		}
		return len(items[i].dstPath) < len(items[j].dstPath)
	})

	for _, item := range items {
		if item.isDir {
			if err := os.MkdirAll(item.dstPath, item.mode.Perm()|0o700); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(item.srcPath, item.dstPath); err != nil {
			return err
		}
	}
	return nil
}
