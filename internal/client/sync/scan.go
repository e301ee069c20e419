package sync

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/stopperw/modsync/internal/utils"
)

// Scanner walks a target directory and digests every file that matches
// at least one include glob and survives the ignore rules. Paths are
// relative to the root with forward slashes, matching the wire format.
type Scanner struct {
	root     string
	includes []string
	ignore   *IgnoreList
}

func NewScanner(root string, includes []string, ignore *IgnoreList) (*Scanner, error) {
	for _, pattern := range includes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include glob %q", pattern)
		}
	}
	return &Scanner{root: root, includes: includes, ignore: ignore}, nil
}

// Scan returns path -> sha256 digest for every matching file. Files are
// streamed through the hasher, never buffered whole. A name that is not
// valid UTF-8 is reported and skipped; the scan continues.
func (s *Scanner) Scan() (map[string]string, error) {
	found := make(map[string]string)

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !utf8.ValidString(rel) {
			slog.Error("invalid filename, skipping", "path", fmt.Sprintf("%q", rel))
			return nil
		}
		if !s.matchesInclude(rel) || s.ignore.ShouldIgnore(rel) {
			return nil
		}

		digest, err := utils.FileDigest(path)
		if err != nil {
			return fmt.Errorf("hash %s: %w", rel, err)
		}
		found[rel] = digest
		return nil
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

func (s *Scanner) matchesInclude(relPath string) bool {
	for _, pattern := range s.includes {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}
