package snapshot

import (
	"sort"
	"strings"
)

// Entry is a directory or file in a captured tree. Children of a directory
// are sorted with subdirectories first, each group by name.
type Entry struct {
	Name     string
	Dir      bool
	Children []*Entry
	// Omitted counts the entries of a directory that were not captured,
	// either because it sits at the depth limit or because it is too large.
	Omitted  int
}

// Count returns the number of entries in the tree, e included.
func (e *Entry) Count() int {
	n := 1
	for _, c := range e.Children {
		n += c.Count()
	}
	return n
}

// buildTree converts a flat list of forward-slash separated file paths into
// a sorted tree.
func buildTree(name string, files []string) *Entry {
	root := &Entry{Name: name, Dir: true}
	for _, f := range files {
		insertPath(root, strings.Split(f, "/"))
	}
	root.sort()
	return root
}

func insertPath(dir *Entry, parts []string) {
	if len(parts) == 1 {
		dir.Children = append(dir.Children, &Entry{Name: parts[0]})
		return
	}
	for _, child := range dir.Children {
		if child.Dir && child.Name == parts[0] {
			insertPath(child, parts[1:])
			return
		}
	}
	child := &Entry{Name: parts[0], Dir: true}
	dir.Children = append(dir.Children, child)
	insertPath(child, parts[1:])
}

func (e *Entry) sort() {
	sort.SliceStable(e.Children, func(i, j int) bool {
		a, b := e.Children[i], e.Children[j]
		if a.Dir != b.Dir {
			return a.Dir
		}
		return a.Name < b.Name
	})
	for _, c := range e.Children {
		c.sort()
	}
}

// limit drops the contents of directories deeper than maxDepth or holding
// more than maxEntries entries, recording how many entries were dropped.
func (e *Entry) limit(depth, maxDepth, maxEntries int) {
	if !e.Dir {
		return
	}
	if depth > 0 && (depth >= maxDepth || len(e.Children) > maxEntries) {
		for _, c := range e.Children {
			e.Omitted += c.Count()
		}
		e.Children = nil
		return
	}
	for _, c := range e.Children {
		c.limit(depth+1, maxDepth, maxEntries)
	}
}
