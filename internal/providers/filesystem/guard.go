package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Guard confines every operation to an immutable set of allowed roots.
//
// Validation is stateless and recomputed per request: the filesystem can
// change between validation and use, so results are never cached.
type Guard struct {
	roots []string
}

// NewGuard canonicalizes the configured roots (absolute, symlink-resolved)
// and verifies each one is an existing directory. Order is preserved.
func NewGuard(roots []string) (*Guard, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("at least one allowed root is required")
	}

	canonical := make([]string, 0, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(expandHome(root))
		if err != nil {
			return nil, fmt.Errorf("invalid root %s: %w", root, err)
		}
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve root %s: %w", root, err)
		}
		info, err := os.Stat(resolved)
		if err != nil {
			return nil, fmt.Errorf("cannot stat root %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("root is not a directory: %s", root)
		}
		canonical = append(canonical, resolved)
	}
	return &Guard{roots: canonical}, nil
}

// Roots returns the canonical allowed roots in configured order.
func (g *Guard) Roots() []string {
	out := make([]string, len(g.roots))
	copy(out, g.roots)
	return out
}

// Validate resolves a caller-supplied path to its canonical absolute form
// and rejects it unless it lies within an allowed root.
//
// Symlinks are fully resolved before the containment check, so a link
// inside a root pointing outside is denied. When the final segment does
// not exist yet (a file about to be created), the resolved parent is
// validated instead and the segment re-appended.
func (g *Guard) Validate(raw string) (string, error) {
	if raw == "" {
		return "", invalidArguments("path must not be empty")
	}

	expanded := expandHome(raw)
	if !filepath.IsAbs(expanded) {
		return "", invalidArguments("path must be absolute: %s", raw)
	}
	clean := filepath.Clean(expanded)

	resolved, err := filepath.EvalSymlinks(clean)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return "", wrapOS(err, raw)
		}
		// A nonexistent target must already sit inside a root before the
		// parent fallback may reveal anything about it.
		if !g.contains(clean) {
			return "", accessDenied("access denied: %s is outside the allowed roots", raw)
		}
		// Create-parent fallback: the target itself may not exist yet.
		parent, err := filepath.EvalSymlinks(filepath.Dir(clean))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", notFound("parent directory does not exist: %s", raw)
			}
			return "", wrapOS(err, raw)
		}
		resolved = filepath.Join(parent, filepath.Base(clean))
	}

	if !g.contains(resolved) {
		return "", accessDenied("access denied: %s is outside the allowed roots", raw)
	}
	return resolved, nil
}

func (g *Guard) contains(p string) bool {
	for _, root := range g.roots {
		if containsPath(root, p) {
			return true
		}
	}
	return false
}

// containsPath reports whether p equals root or lives underneath it,
// compared segment-wise so /a/b never matches /a/bc.
func containsPath(root, p string) bool {
	if p == root {
		return true
	}
	if root == string(os.PathSeparator) {
		return strings.HasPrefix(p, root)
	}
	return strings.HasPrefix(p, root+string(os.PathSeparator))
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
