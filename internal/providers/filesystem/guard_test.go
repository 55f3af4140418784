package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T) (*Guard, string) {
	t.Helper()
	root := t.TempDir()
	guard, err := NewGuard([]string{root})
	require.NoError(t, err)
	// The temp dir itself may sit behind a symlink (e.g. /tmp).
	return guard, guard.Roots()[0]
}

func TestNewGuard(t *testing.T) {
	t.Run("canonicalizes roots", func(t *testing.T) {
		root := t.TempDir()
		guard, err := NewGuard([]string{root})
		require.NoError(t, err)
		require.Len(t, guard.Roots(), 1)
		assert.True(t, filepath.IsAbs(guard.Roots()[0]))
	})

	t.Run("rejects empty set", func(t *testing.T) {
		_, err := NewGuard(nil)
		assert.Error(t, err)
	})

	t.Run("rejects missing root", func(t *testing.T) {
		_, err := NewGuard([]string{filepath.Join(t.TempDir(), "missing")})
		assert.Error(t, err)
	})

	t.Run("rejects file root", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "f.txt")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
		_, err := NewGuard([]string{file})
		assert.Error(t, err)
	})

	t.Run("preserves configured order", func(t *testing.T) {
		a, b := t.TempDir(), t.TempDir()
		guard, err := NewGuard([]string{b, a})
		require.NoError(t, err)
		roots := guard.Roots()
		require.Len(t, roots, 2)
		canonB, _ := filepath.EvalSymlinks(b)
		assert.Equal(t, canonB, roots[0])
	})
}

func TestValidate(t *testing.T) {
	guard, root := newTestGuard(t)

	existing := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(existing, []byte("data"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))

	t.Run("accepts path inside root", func(t *testing.T) {
		resolved, err := guard.Validate(existing)
		require.NoError(t, err)
		assert.Equal(t, existing, resolved)
	})

	t.Run("accepts the root itself", func(t *testing.T) {
		resolved, err := guard.Validate(root)
		require.NoError(t, err)
		assert.Equal(t, root, resolved)
	})

	t.Run("rejects empty path", func(t *testing.T) {
		_, err := guard.Validate("")
		assert.Equal(t, KindInvalidArguments, KindOf(err))
	})

	t.Run("rejects relative path", func(t *testing.T) {
		_, err := guard.Validate("file.txt")
		assert.Equal(t, KindInvalidArguments, KindOf(err))
	})

	t.Run("rejects dotdot escape", func(t *testing.T) {
		_, err := guard.Validate(filepath.Join(root, "..", "etc", "passwd"))
		assert.Equal(t, KindAccessDenied, KindOf(err))
	})

	t.Run("rejects path outside roots", func(t *testing.T) {
		_, err := guard.Validate("/etc/passwd")
		assert.Equal(t, KindAccessDenied, KindOf(err))
	})

	t.Run("allows nonexistent file with existing parent", func(t *testing.T) {
		resolved, err := guard.Validate(filepath.Join(root, "sub", "new.txt"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "sub", "new.txt"), resolved)
	})

	t.Run("not found when parent missing", func(t *testing.T) {
		_, err := guard.Validate(filepath.Join(root, "nope", "new.txt"))
		assert.Equal(t, KindNotFound, KindOf(err))
	})
}

func TestValidateSegmentContainment(t *testing.T) {
	// A root /a/b must never match /a/bc.
	base := t.TempDir()
	rootDir := filepath.Join(base, "ws")
	sibling := filepath.Join(base, "ws-extra")
	require.NoError(t, os.MkdirAll(rootDir, 0o755))
	require.NoError(t, os.MkdirAll(sibling, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sibling, "f.txt"), []byte("x"), 0o644))

	guard, err := NewGuard([]string{rootDir})
	require.NoError(t, err)

	_, err = guard.Validate(filepath.Join(sibling, "f.txt"))
	assert.Equal(t, KindAccessDenied, KindOf(err))
}

func TestValidateSymlinks(t *testing.T) {
	guard, root := newTestGuard(t)
	outside := t.TempDir()

	secret := filepath.Join(outside, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0o644))

	inside := filepath.Join(root, "inside.txt")
	require.NoError(t, os.WriteFile(inside, []byte("ok"), 0o644))

	t.Run("rejects symlink escaping roots", func(t *testing.T) {
		link := filepath.Join(root, "escape")
		require.NoError(t, os.Symlink(secret, link))

		_, err := guard.Validate(link)
		assert.Equal(t, KindAccessDenied, KindOf(err))
	})

	t.Run("rejects symlinked directory escaping roots", func(t *testing.T) {
		link := filepath.Join(root, "escape-dir")
		require.NoError(t, os.Symlink(outside, link))

		_, err := guard.Validate(filepath.Join(link, "secret.txt"))
		assert.Equal(t, KindAccessDenied, KindOf(err))
	})

	t.Run("resolves symlink staying inside", func(t *testing.T) {
		link := filepath.Join(root, "alias")
		require.NoError(t, os.Symlink(inside, link))

		resolved, err := guard.Validate(link)
		require.NoError(t, err)
		assert.Equal(t, inside, resolved)
	})
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, expandHome("~"))
	assert.Equal(t, filepath.Join(home, "docs"), expandHome("~/docs"))
	assert.Equal(t, "/tmp/~x", expandHome("/tmp/~x"))
}
