package filesystem

import (
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// Metadata is a best-effort snapshot of a single entry. The entry can
// change or vanish between stat and any subsequent access.
type Metadata struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Kind     string    `json:"kind"` // "file", "directory", "symlink", "other"
	Size     int64     `json:"size"`
	Mode     string    `json:"mode"` // octal permission bits
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	Accessed time.Time `json:"accessed"`
	MimeType string    `json:"mime_type,omitempty"`
}

// Stat returns metadata for a validated path.
func Stat(resolved string) (*Metadata, error) {
	info, err := os.Lstat(resolved)
	if err != nil {
		return nil, wrapOS(err, resolved)
	}

	meta := &Metadata{
		Name:     info.Name(),
		Path:     resolved,
		Kind:     entryKind(info.Mode()),
		Size:     info.Size(),
		Mode:     "0" + strconv.FormatUint(uint64(info.Mode().Perm()), 8),
		Modified: info.ModTime(),
	}

	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		meta.Created = time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
		meta.Accessed = time.Unix(st.Atim.Sec, st.Atim.Nsec)
	}

	if meta.Kind == "file" {
		if mt, err := mimetype.DetectFile(resolved); err == nil {
			meta.MimeType = mt.String()
		}
	}
	return meta, nil
}

func entryKind(mode os.FileMode) string {
	switch {
	case mode.IsRegular():
		return "file"
	case mode.IsDir():
		return "directory"
	case mode&os.ModeSymlink != 0:
		return "symlink"
	default:
		return "other"
	}
}
