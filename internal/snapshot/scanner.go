// Package snapshot captures a source directory as a tree of directory and
// file entries, ready to be recorded as implementation nodes. The same
// directory always yields the same tree.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMaxDepth is the default number of directory levels below the root
// that are captured.
const DefaultMaxDepth = 3

// DefaultMaxEntries is the default number of entries a directory may hold
// before it is captured without its contents.
const DefaultMaxEntries = 50

// Scanner captures the layout of a directory.
type Scanner struct {
	WorkDir    string // directory to capture (default ".")
	MaxDepth   int    // directories this deep are captured without contents (default 3)
	MaxEntries int    // entries per directory before it collapses (default 50)
}

// Scan lists the files under WorkDir and returns them as a tree rooted at an
// entry named after WorkDir. Inside a git work tree only tracked files are
// listed; elsewhere hidden files and directories are skipped.
func (s *Scanner) Scan(ctx context.Context) (*Entry, error) {
	s.applyDefaults()

	info, err := os.Stat(s.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("snapshot: %s is not a directory", s.WorkDir)
	}

	files, err := s.listFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: listing files: %w", err)
	}
	root := buildTree(rootName(s.WorkDir), files)
	root.limit(0, s.MaxDepth, s.MaxEntries)
	return root, nil
}

func (s *Scanner) applyDefaults() {
	if s.MaxDepth <= 0 {
		s.MaxDepth = DefaultMaxDepth
	}
	if s.MaxEntries <= 0 {
		s.MaxEntries = DefaultMaxEntries
	}
	if s.WorkDir == "" {
		s.WorkDir = "."
	}
}

// rootName names the root entry after the scanned directory itself.
func rootName(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	name := filepath.Base(dir)
	if name == string(filepath.Separator) || name == "." {
		return "root"
	}
	return name
}

// listFiles returns a sorted list of files relative to WorkDir. It uses git
// ls-files when available and falls back to walking the directory.
func (s *Scanner) listFiles(ctx context.Context) ([]string, error) {
	files, err := s.gitListFiles(ctx)
	if err == nil {
		return files, nil
	}
	return s.walkFiles(ctx)
}

func (s *Scanner) gitListFiles(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "ls-files")
	cmd.Dir = s.WorkDir
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}
	return parseFileList(string(out)), nil
}

// walkFiles walks the directory tree, skipping hidden entries. It checks ctx
// for cancellation on every entry.
func (s *Scanner) walkFiles(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.WorkDir, func(path string, d os.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return nil // skip unreadable entries
		}
		hidden := strings.HasPrefix(d.Name(), ".") && path != s.WorkDir
		if d.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}
		rel, err := filepath.Rel(s.WorkDir, path)
		if err != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// parseFileList splits git ls-files output into sorted file paths.
func parseFileList(output string) []string {
	var files []string
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	sort.Strings(files)
	return files
}
