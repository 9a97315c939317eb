// Package cachepolicy names and prunes the on-disk cache of rendered
// icons and downloaded files: deterministic filenames derived from a
// content hash plus render parameters, and age-based pruning so the
// cache directory doesn't grow without bound across long sessions.
package cachepolicy

import (
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// IconMaxAge is how long a rendered avatar/attachment icon may sit
	// in the cache before Prune removes it.
	IconMaxAge = 30 * 24 * time.Hour
	// FileMaxAge is how long a downloaded (non-icon) file may sit in
	// the cache before Prune removes it.
	FileMaxAge = 2 * 24 * time.Hour
)

// Policy names and prunes entries under Dir.
type Policy struct {
	Dir string
}

// New returns a Policy rooted at dir.
func New(dir string) Policy {
	return Policy{Dir: dir}
}

func fnv1a32(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// IconFilename names a cached, already-reduced-and-encoded icon:
// icon-<colorname>-<fontheight>-<handle>-<fnv1a(url):08x>. Every
// render parameter that changes the bytes on disk (palette choice,
// cell height, the rendering terminal's handle/profile) is folded
// into the name, so a stale cache entry can never be served for a
// render that would look different.
func (p Policy) IconFilename(colorName string, fontHeight int, handle, url string) string {
	return fmt.Sprintf("icon-%s-%d-%s-%08x", colorName, fontHeight, handle, fnv1a32(url))
}

// FileFilename names a cached downloaded file: file-<fnv1a(url):08x>.
func (p Policy) FileFilename(url string) string {
	return fmt.Sprintf("file-%08x", fnv1a32(url))
}

// IconPath and FilePath join the cache directory onto the above names.
func (p Policy) IconPath(colorName string, fontHeight int, handle, url string) string {
	return filepath.Join(p.Dir, p.IconFilename(colorName, fontHeight, handle, url))
}

func (p Policy) FilePath(url string) string {
	return filepath.Join(p.Dir, p.FileFilename(url))
}

// Prune removes icon-* entries older than IconMaxAge and file-*
// entries older than FileMaxAge, relative to now.
func (p Policy) Prune(now time.Time) error {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cachepolicy: read dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		maxAge, tracked := classify(e.Name())
		if !tracked {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > maxAge {
			_ = os.Remove(filepath.Join(p.Dir, e.Name()))
		}
	}
	return nil
}

// classify reports the max age rule (if any) that governs name, via
// doublestar glob patterns rather than a hand-rolled prefix check, so
// the same matching engine used elsewhere in cache lookups governs
// pruning too.
func classify(name string) (maxAge time.Duration, tracked bool) {
	if ok, _ := doublestar.Match("icon-*", name); ok {
		return IconMaxAge, true
	}
	if ok, _ := doublestar.Match("file-*", name); ok {
		return FileMaxAge, true
	}
	return 0, false
}

// Walk reports every cache entry matching pattern (a doublestar glob,
// e.g. "icon-*"), for cache-inspection commands.
func (p Policy) Walk(pattern string, fn func(path string, info fs.FileInfo) error) error {
	return filepath.Walk(p.Dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(p.Dir, path)
		if err != nil {
			return err
		}
		ok, err := doublestar.Match(pattern, rel)
		if err != nil || !ok {
			return err
		}
		return fn(path, info)
	})
}
