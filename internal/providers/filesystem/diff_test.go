package filesystem

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEditsExactMatch(t *testing.T) {
	content, diff, err := ApplyEdits("hello\n", []Edit{{OldText: "hello", NewText: "world"}})
	require.NoError(t, err)

	assert.Equal(t, "world\n", content)
	assert.Equal(t, 1, diff.Added)
	assert.Equal(t, 1, diff.Removed)

	rendered := diff.Render("a.txt")
	assert.Contains(t, rendered, "-hello")
	assert.Contains(t, rendered, "+world")
	assert.Contains(t, rendered, "--- a/a.txt")
	assert.Contains(t, rendered, "+++ b/a.txt")
}

func TestApplyEditsSequential(t *testing.T) {
	original := "one\ntwo\nthree\n"
	content, _, err := ApplyEdits(original, []Edit{
		{OldText: "one", NewText: "1"},
		{OldText: "three", NewText: "3"},
	})
	require.NoError(t, err)
	assert.Equal(t, "1\ntwo\n3\n", content)
}

func TestApplyEditsSeesEarlierEdits(t *testing.T) {
	// Later edits apply against the working copy, not the original.
	content, _, err := ApplyEdits("alpha\n", []Edit{
		{OldText: "alpha", NewText: "beta"},
		{OldText: "beta", NewText: "gamma"},
	})
	require.NoError(t, err)
	assert.Equal(t, "gamma\n", content)
}

func TestApplyEditsWhitespaceFallback(t *testing.T) {
	original := "func main() {\n\tfmt.Println(\"hi\")\n}\n"

	// The fragment is indented with spaces, the file with a tab: no
	// exact match, so the whitespace-collapsed fallback applies.
	content, _, err := ApplyEdits(original, []Edit{
		{OldText: "    fmt.Println(\"hi\")", NewText: "    fmt.Println(\"bye\")"},
	})
	require.NoError(t, err)
	assert.Contains(t, content, "\tfmt.Println(\"bye\")", "indentation of the matched block is preserved")
}

func TestApplyEditsNotApplicable(t *testing.T) {
	_, _, err := ApplyEdits("hello\n", []Edit{
		{OldText: "hello", NewText: "world"},
		{OldText: "absent", NewText: "x"},
	})
	require.Error(t, err)
	assert.Equal(t, KindEditNotApplicable, KindOf(err))
	assert.Contains(t, err.Error(), "edit 1")
}

func TestApplyEditsEmptyFragment(t *testing.T) {
	_, _, err := ApplyEdits("hello\n", []Edit{{OldText: "", NewText: "x"}})
	assert.Equal(t, KindInvalidArguments, KindOf(err))
}

func TestApplyEditsCRLFNormalization(t *testing.T) {
	content, _, err := ApplyEdits("hello\r\nworld\r\n", []Edit{
		{OldText: "hello\nworld", NewText: "goodbye"},
	})
	require.NoError(t, err)
	assert.Equal(t, "goodbye\n", content)
}

func TestDominantLineEnding(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"pure lf", "a\nb\nc\n", "\n"},
		{"pure crlf", "a\r\nb\r\nc\r\n", "\r\n"},
		{"mostly crlf", "a\r\nb\r\nc\n", "\r\n"},
		{"mostly lf", "a\nb\nc\r\n", "\n"},
		{"empty", "", "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dominantLineEnding(tt.content))
		})
	}
}

func TestRestoreLineEndings(t *testing.T) {
	assert.Equal(t, "a\r\nb\r\n", restoreLineEndings("a\nb\n", "\r\n"))
	assert.Equal(t, "a\nb\n", restoreLineEndings("a\nb\n", "\n"))
}

func TestRenderFenceAdaptation(t *testing.T) {
	content, diff, err := ApplyEdits("plain\n", []Edit{
		{OldText: "plain", NewText: "```go\ncode\n```"},
	})
	require.NoError(t, err)
	require.Contains(t, content, "```")

	rendered := diff.Render("a.md")
	// The wrapping fence must be longer than any run inside the body.
	assert.True(t, strings.HasPrefix(rendered, "````diff\n"), "got: %q", rendered)
	assert.True(t, strings.HasSuffix(rendered, "````\n"), "got: %q", rendered)
}

func TestDiffRoundTrip(t *testing.T) {
	original := "one\ntwo\nthree\nfour\n"
	_, diff, err := ApplyEdits(original, []Edit{
		{OldText: "two", NewText: "2"},
		{OldText: "four", NewText: "4"},
	})
	require.NoError(t, err)

	// Replaying context plus added lines reconstructs the new content.
	var lines []string
	for _, line := range diff.Lines {
		if line.Kind == "context" || line.Kind == "added" {
			lines = append(lines, line.Text)
		}
	}
	reconstructed := strings.Join(lines, "\n")
	assert.Equal(t,
		strings.TrimSuffix(diff.NewContent, "\n"),
		strings.TrimSuffix(reconstructed, "\n"),
	)
}

func TestApplyEditsLeavesOriginalUntouched(t *testing.T) {
	original := "keep\nme\n"
	_, _, err := ApplyEdits(original, []Edit{
		{OldText: "keep", NewText: "changed"},
		{OldText: "missing", NewText: "x"},
	})
	require.Error(t, err)
	assert.Equal(t, "keep\nme\n", original)
}
