// Package asset discovers buildable Trainz assets in a directory tree. An
// asset root is a directory whose config.txt marker file carries a kuid
// identity tag; once matched, the directory is a leaf and its subtree is never
// searched for further assets.
package asset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// MarkerFile is the fixed-named file inspected for identity/name tags
const MarkerFile = "config.txt"

// DefaultSkipPatterns are directory names never descended into during
// discovery. Config may extend the list with additional glob patterns.
var DefaultSkipPatterns = []string{".git", ".hg"}

// Asset identifies one buildable unit
type Asset struct {
	KUID     string
	Username string
	Root     string
}

// DisplayName returns the human label for the asset, falling back to the
// bracket-wrapped kuid when the marker file carries no username tag.
func (a Asset) DisplayName() string {
	if a.Username != "" {
		return a.Username
	}
	return "<" + a.KUID + ">"
}

// Options configures discovery
type Options struct {
	// Recursive enables descending into subdirectories when the marker file
	// is absent. When false, a root lacking a marker yields no assets.
	Recursive bool

	// SkipPatterns are doublestar globs matched against directory base names;
	// matching directories are not entered. Nil means DefaultSkipPatterns.
	SkipPatterns []string
}

// Locate walks the tree at root and returns every asset found, in the order
// of the underlying directory enumeration. Unreadable directories and
// unreadable present marker files are fatal: discovery has no per-directory
// recovery.
func Locate(root string, opts Options) ([]Asset, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	patterns := opts.SkipPatterns
	if patterns == nil {
		patterns = DefaultSkipPatterns
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid skip pattern %q", p)
		}
	}

	var assets []Asset
	if err := locate(abs, opts.Recursive, patterns, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func locate(dir string, recursive bool, skip []string, assets *[]Asset) error {
	markerPath := filepath.Join(dir, MarkerFile)
	data, err := os.ReadFile(markerPath)
	switch {
	case err == nil:
		// Marker present: the directory is a leaf whether or not it carries
		// an identity tag.
		if a, ok := parseMarker(data, dir); ok {
			*assets = append(*assets, a)
		}
		return nil
	case errors.Is(err, fs.ErrNotExist):
		if !recursive {
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("failed to enumerate %s: %w", dir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() || skipped(entry.Name(), skip) {
				continue
			}
			if err := locate(filepath.Join(dir, entry.Name()), recursive, skip, assets); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("failed to read %s: %w", markerPath, err)
	}
}

func skipped(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
