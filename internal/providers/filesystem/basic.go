package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
)

// ReadFile reads a validated file, enforcing the configured size cap.
func ReadFile(resolved string, maxBytes int64) (string, error) {
	info, err := os.Stat(resolved)
	if err != nil {
		return "", wrapOS(err, resolved)
	}
	if info.IsDir() {
		return "", invalidArguments("cannot read a directory: %s", resolved)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return "", ioError(nil, "file exceeds read limit (%d bytes): %s", maxBytes, resolved)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", wrapOS(err, resolved)
	}
	return string(data), nil
}

// WriteFileAtomic writes content through a temp file in the target's
// directory followed by a rename, so a crash mid-write leaves the
// original file intact. Existing permission bits are preserved.
func WriteFileAtomic(resolved string, content []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(resolved); err == nil {
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(resolved)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return wrapOS(err, resolved)
	}
	tmpPath := tmp.Name()

	cleanup := true
	defer func() {
		if cleanup {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return ioError(err, "write failed: %s", resolved)
	}
	if err := tmp.Sync(); err != nil {
		return ioError(err, "sync failed: %s", resolved)
	}
	if err := tmp.Close(); err != nil {
		return ioError(err, "close failed: %s", resolved)
	}
	if err := os.Rename(tmpPath, resolved); err != nil {
		return wrapOS(err, resolved)
	}
	cleanup = false

	if err := os.Chmod(resolved, perm); err != nil {
		return ioError(err, "chmod failed: %s", resolved)
	}
	return nil
}

// Move renames an entry. An existing destination always fails: implicit
// overwrite is never allowed.
func Move(source, destination string) error {
	if _, err := os.Lstat(destination); err == nil {
		return alreadyExists("destination already exists: %s", destination)
	} else if !os.IsNotExist(err) {
		return wrapOS(err, destination)
	}

	if err := os.Rename(source, destination); err != nil {
		return wrapOS(err, fmt.Sprintf("%s -> %s", source, destination))
	}
	return nil
}
