package filesystem

import (
	"os"
	"path/filepath"
	"time"
)

// Entry is a transient listing record for one directory member.
type Entry struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Kind     string    `json:"kind"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// TreeNode is one node of a recursive directory tree.
type TreeNode struct {
	Name     string      `json:"name"`
	Kind     string      `json:"kind"`
	Size     int64       `json:"size,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// ListDir returns the single-level contents of a directory in name order.
func ListDir(resolved string) ([]Entry, error) {
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, wrapOS(err, resolved)
	}
	if !info.IsDir() {
		return nil, notADirectory("not a directory: %s", resolved)
	}

	dirents, err := os.ReadDir(resolved)
	if err != nil {
		return nil, wrapOS(err, resolved)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		entry := Entry{
			Name: d.Name(),
			Path: filepath.Join(resolved, d.Name()),
			Kind: entryKind(d.Type()),
		}
		if fi, err := d.Info(); err == nil {
			entry.Size = fi.Size()
			entry.Modified = fi.ModTime()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Tree builds a nested structure rooted at a validated directory.
//
// Subtrees that fail guard validation (symlinks escaping the allowed
// roots) are omitted rather than failing the walk. maxDepth bounds
// recursion; symlinked directories are reported as leaves, never entered,
// so traversal always terminates.
func (g *Guard) Tree(resolved string, maxDepth int) (*TreeNode, error) {
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, wrapOS(err, resolved)
	}
	if !info.IsDir() {
		return nil, notADirectory("not a directory: %s", resolved)
	}

	root := &TreeNode{Name: filepath.Base(resolved), Kind: "directory"}
	if err := g.fillTree(root, resolved, maxDepth, 1); err != nil {
		return nil, err
	}
	return root, nil
}

func (g *Guard) fillTree(node *TreeNode, dir string, maxDepth, depth int) error {
	if maxDepth > 0 && depth > maxDepth {
		return nil
	}

	dirents, err := os.ReadDir(dir)
	if err != nil {
		return wrapOS(err, dir)
	}

	for _, d := range dirents {
		childPath := filepath.Join(dir, d.Name())
		if _, err := g.Validate(childPath); err != nil {
			continue
		}

		child := &TreeNode{Name: d.Name(), Kind: entryKind(d.Type())}
		switch {
		case d.Type().IsDir():
			if err := g.fillTree(child, childPath, maxDepth, depth+1); err != nil {
				continue
			}
		case d.Type().IsRegular():
			if fi, err := d.Info(); err == nil {
				child.Size = fi.Size()
			}
		}
		node.Children = append(node.Children, child)
	}
	return nil
}

// CreateDir creates a directory, succeeding when it already exists as one.
func CreateDir(resolved string) error {
	if err := os.MkdirAll(resolved, 0o755); err != nil {
		return wrapOS(err, resolved)
	}
	return nil
}
