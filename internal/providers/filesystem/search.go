package filesystem

import (
	"bufio"
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

const maxMatchesPerFile = 100

// ContentMatch is one file with matching lines from a content search.
type ContentMatch struct {
	Path  string      `json:"path"`
	Lines []MatchLine `json:"lines"`
}

// MatchLine is a single matching line within a file.
type MatchLine struct {
	Line    int    `json:"line"`
	Content string `json:"content"`
}

// Search walks a validated root in deterministic pre-order and collects
// entries whose name matches the pattern, case-insensitively. A pattern
// containing glob metacharacters is matched as a doublestar glob,
// otherwise as a substring. Exclude globs apply to the root-relative
// path. Subtrees failing guard validation are silently omitted. The walk
// stops once maxResults entries are collected.
func (g *Guard) Search(ctx context.Context, root, pattern string, excludes []string, maxResults int) ([]Entry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, wrapOS(err, root)
	}
	if !info.IsDir() {
		return nil, notADirectory("not a directory: %s", root)
	}

	results := []Entry{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil || path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if excluded(rel, excludes) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks escaping the allowed roots must not surface as
		// matches, and their targets must not be descended into.
		if _, err := g.Validate(path); err != nil {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if nameMatches(d.Name(), pattern) {
			entry := Entry{Name: d.Name(), Path: path, Kind: entryKind(d.Type())}
			if fi, err := d.Info(); err == nil {
				entry.Size = fi.Size()
				entry.Modified = fi.ModTime()
			}
			results = append(results, entry)
			if maxResults > 0 && len(results) >= maxResults {
				return fs.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return nil, ioError(err, "search failed under %s", root)
	}
	return results, nil
}

// SearchContent searches text inside regular files below a validated
// root using a parallel walk. Matches are capped per file and globally.
func (g *Guard) SearchContent(ctx context.Context, root, query string, extensions []string, maxResults int) ([]ContentMatch, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, wrapOS(err, root)
	}
	if !info.IsDir() {
		return nil, notADirectory("not a directory: %s", root)
	}

	extSet := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extSet[ext] = true
	}

	queryBytes := []byte(query)
	var mu sync.Mutex
	matches := []ContentMatch{}

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, root, func(path string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}
		if len(extSet) > 0 && !extSet[filepath.Ext(path)] {
			return nil
		}
		if _, err := g.Validate(path); err != nil {
			return nil
		}

		mu.Lock()
		full := maxResults > 0 && len(matches) >= maxResults
		mu.Unlock()
		if full {
			return filepath.SkipDir
		}

		file, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		lineNum := 1
		var lines []MatchLine
		for scanner.Scan() {
			if bytes.Contains(scanner.Bytes(), queryBytes) {
				lines = append(lines, MatchLine{Line: lineNum, Content: scanner.Text()})
				if len(lines) >= maxMatchesPerFile {
					break
				}
			}
			lineNum++
		}

		if len(lines) > 0 {
			mu.Lock()
			matches = append(matches, ContentMatch{Path: path, Lines: lines})
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, ioError(err, "content search failed under %s", root)
	}

	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches, nil
}

func excluded(rel string, excludes []string) bool {
	for _, glob := range excludes {
		if ok, err := doublestar.Match(glob, rel); err == nil && ok {
			return true
		}
		// Bare patterns like "*.log" also apply to the entry name.
		if !strings.Contains(glob, "/") {
			if ok, err := doublestar.Match(glob, filepath.Base(rel)); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func nameMatches(name, pattern string) bool {
	lowerName := strings.ToLower(name)
	lowerPattern := strings.ToLower(pattern)
	if strings.ContainsAny(pattern, "*?[{") {
		ok, err := doublestar.Match(lowerPattern, lowerName)
		return err == nil && ok
	}
	return strings.Contains(lowerName, lowerPattern)
}
