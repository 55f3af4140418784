package filesystem

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Edit is a single find/replace fragment applied against file content.
type Edit struct {
	OldText string `json:"old_text" mapstructure:"old_text"`
	NewText string `json:"new_text" mapstructure:"new_text"`
}

// DiffLine is one line-level change record.
type DiffLine struct {
	Kind string `json:"kind"` // "context", "added", "removed"
	Text string `json:"text"`
}

// DiffResult holds the line-level changes between original and final
// content plus the final content itself.
type DiffResult struct {
	Lines      []DiffLine `json:"lines"`
	NewContent string     `json:"new_content"`
	Added      int        `json:"added"`
	Removed    int        `json:"removed"`

	aLines []string
	bLines []string
}

// ApplyEdits applies edits in order against a working copy of original and
// returns the final content with a computed diff. It performs no I/O and
// never yields a partial result: the first inapplicable edit aborts the
// whole call.
//
// Matching happens on line-ending-normalized text. Each edit first tries an
// exact substring match; if none exists, a whitespace-collapsed per-line
// comparison is tried, preserving the indentation of the matched block.
func ApplyEdits(original string, edits []Edit) (string, *DiffResult, error) {
	normalized := normalizeLineEndings(original)
	content := normalized

	for i, edit := range edits {
		oldText := normalizeLineEndings(edit.OldText)
		newText := normalizeLineEndings(edit.NewText)

		if oldText == "" {
			return "", nil, invalidArguments("edit %d: old_text must not be empty", i)
		}

		if strings.Contains(content, oldText) {
			content = strings.Replace(content, oldText, newText, 1)
			continue
		}

		replaced, ok := replaceFlexible(content, oldText, newText)
		if !ok {
			return "", nil, editNotApplicable(i, "text fragment not found in content")
		}
		content = replaced
	}

	result := computeDiff(normalized, content)
	return content, result, nil
}

// replaceFlexible retries a failed exact match with whitespace-collapsed
// line comparison. The indentation of the matched block is carried over to
// the replacement, keeping relative indentation between replacement lines.
func replaceFlexible(content, oldText, newText string) (string, bool) {
	oldLines := strings.Split(oldText, "\n")
	contentLines := strings.Split(content, "\n")

	for start := 0; start+len(oldLines) <= len(contentLines); start++ {
		matched := true
		for j, oldLine := range oldLines {
			if collapseWhitespace(oldLine) != collapseWhitespace(contentLines[start+j]) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}

		baseIndent := leadingWhitespace(contentLines[start])
		newLines := strings.Split(newText, "\n")
		adjusted := make([]string, len(newLines))
		for j, line := range newLines {
			if j == 0 {
				adjusted[j] = baseIndent + strings.TrimLeft(line, " \t")
				continue
			}
			oldIndent := ""
			if j < len(oldLines) {
				oldIndent = leadingWhitespace(oldLines[j])
			}
			newIndent := leadingWhitespace(line)
			if oldIndent != "" && newIndent != "" {
				relative := len(newIndent) - len(oldIndent)
				if relative < 0 {
					relative = 0
				}
				adjusted[j] = baseIndent + strings.Repeat(" ", relative) + strings.TrimLeft(line, " \t")
				continue
			}
			adjusted[j] = line
		}

		out := make([]string, 0, len(contentLines)-len(oldLines)+len(adjusted))
		out = append(out, contentLines[:start]...)
		out = append(out, adjusted...)
		out = append(out, contentLines[start+len(oldLines):]...)
		return strings.Join(out, "\n"), true
	}
	return "", false
}

// computeDiff builds ordered change records from SequenceMatcher opcodes.
func computeDiff(original, final string) *DiffResult {
	a := difflib.SplitLines(original)
	b := difflib.SplitLines(final)

	result := &DiffResult{NewContent: final, aLines: a, bLines: b}
	matcher := difflib.NewMatcher(a, b)
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for _, line := range a[op.I1:op.I2] {
				result.Lines = append(result.Lines, DiffLine{Kind: "context", Text: chomp(line)})
			}
		case 'd':
			for _, line := range a[op.I1:op.I2] {
				result.Lines = append(result.Lines, DiffLine{Kind: "removed", Text: chomp(line)})
				result.Removed++
			}
		case 'i':
			for _, line := range b[op.J1:op.J2] {
				result.Lines = append(result.Lines, DiffLine{Kind: "added", Text: chomp(line)})
				result.Added++
			}
		case 'r':
			for _, line := range a[op.I1:op.I2] {
				result.Lines = append(result.Lines, DiffLine{Kind: "removed", Text: chomp(line)})
				result.Removed++
			}
			for _, line := range b[op.J1:op.J2] {
				result.Lines = append(result.Lines, DiffLine{Kind: "added", Text: chomp(line)})
				result.Added++
			}
		}
	}
	return result
}

// Render produces a unified diff wrapped in a fenced block. The fence
// length adapts so content containing backtick runs cannot break out.
func (r *DiffResult) Render(name string) string {
	unified, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        r.aLines,
		B:        r.bLines,
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})

	fenceLen := 3
	if run := longestBacktickRun(unified); run >= fenceLen {
		fenceLen = run + 1
	}
	fence := strings.Repeat("`", fenceLen)
	return fence + "diff\n" + unified + fence + "\n"
}

func normalizeLineEndings(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// dominantLineEnding picks the convention to restore on write-back.
func dominantLineEnding(s string) string {
	crlf := strings.Count(s, "\r\n")
	lfOnly := strings.Count(s, "\n") - crlf
	if crlf > lfOnly {
		return "\r\n"
	}
	return "\n"
}

func restoreLineEndings(s, eol string) string {
	if eol == "\n" {
		return s
	}
	return strings.ReplaceAll(s, "\n", eol)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

func longestBacktickRun(s string) int {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

func chomp(line string) string {
	return strings.TrimSuffix(line, "\n")
}
