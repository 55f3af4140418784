// Package filesystem provides sandboxed file and directory operations.
//
// Every caller-supplied path is canonicalized (home expansion, symlink
// resolution, segment-wise containment) against an immutable set of
// allowed roots before any I/O happens. The package is organized into
// focused modules:
//   - guard: path validation against the allowed roots
//   - diff: edit application and unified diff computation
//   - basic: file read/write/move primitives (atomic writes)
//   - directory: listing, tree building, directory creation
//   - search: name search, exclude globs, content search
//   - metadata: entry metadata snapshots
//   - provider: tool definitions and request dispatch
//
// All entities are request-scoped values; nothing is cached or shared
// across requests. Concurrent writers racing on the same path resolve to
// last-writer-wins, a documented limitation.
package filesystem
