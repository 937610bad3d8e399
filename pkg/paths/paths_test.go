package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// abs builds a canonical path from a slash-separated absolute path so the
// tests read the same on every OS.
func abs(t *testing.T, p string) string {
	t.Helper()
	n := Normalize(filepath.FromSlash(p))
	require.NotEmpty(t, n, "normalize %q", p)
	return n
}

func TestNormalizeCollapsesDotSegments(t *testing.T) {
	assert.Equal(t, abs(t, "/etc/passwd"), Normalize(filepath.FromSlash("/ws/../etc/passwd")))
	assert.Equal(t, abs(t, "/ws/notes"), Normalize(filepath.FromSlash("/ws/./notes/")))
	assert.Equal(t, abs(t, "/ws/a.md"), Normalize(filepath.FromSlash("/ws//a.md")))
}

func TestNormalizeResolvesRelativeAgainstWorkingDir(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(wd, "notes", "a.md"), Normalize(filepath.FromSlash("notes/a.md")))
	assert.Equal(t, filepath.Clean(wd), Normalize("."))
}

func TestNormalizeUnresolvable(t *testing.T) {
	for _, in := range []string{"", "   ", "/ws/a\x00.md"} {
		assert.Equal(t, "", Normalize(in), "input %q", in)
	}
}

func TestSegments(t *testing.T) {
	root := abs(t, "/")
	rootSegs := Segments(root)
	if filepath.VolumeName(root) != "" {
		rootSegs = rootSegs[1:]
	}
	assert.Empty(t, rootSegs)

	segs := Segments(abs(t, "/ws/notes/a.md"))
	assert.Equal(t, []string{"ws", "notes", "a.md"}, segs[len(segs)-3:])
}

func TestIsInside(t *testing.T) {
	m := Matcher{}
	ws := abs(t, "/ws")

	tests := []struct {
		name   string
		target string
		want   bool
	}{
		{"same directory", "/ws", true},
		{"direct child", "/ws/a.md", true},
		{"nested child", "/ws/notes/deep/a.md", true},
		{"sibling with shared prefix", "/ws-other/a.md", false},
		{"longer name", "/wsx", false},
		{"parent", "/", false},
		{"unrelated", "/etc/passwd", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.IsInside(abs(t, tt.target), ws))
		})
	}
}

func TestIsInsideRootContainsEverything(t *testing.T) {
	m := Matcher{}
	assert.True(t, m.IsInside(abs(t, "/etc/passwd"), abs(t, "/")))
}

func TestIsInsideRejectsUnresolvable(t *testing.T) {
	m := Matcher{}
	assert.False(t, m.IsInside("", abs(t, "/ws")))
	assert.False(t, m.IsInside(abs(t, "/ws"), ""))
}

func TestIsInsideCaseHandling(t *testing.T) {
	target := abs(t, "/WS/Notes/a.md")
	base := abs(t, "/ws/notes")

	assert.False(t, Matcher{CaseInsensitive: false}.IsInside(target, base))
	assert.True(t, Matcher{CaseInsensitive: true}.IsInside(target, base))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "/Tmp/Doc.md", Matcher{}.Key("/Tmp/Doc.md"))
	assert.Equal(t, "/tmp/doc.md", Matcher{CaseInsensitive: true}.Key("/Tmp/Doc.md"))
}

func TestParseCase(t *testing.T) {
	m, err := ParseCase("sensitive")
	require.NoError(t, err)
	assert.False(t, m.CaseInsensitive)

	m, err = ParseCase("Insensitive")
	require.NoError(t, err)
	assert.True(t, m.CaseInsensitive)

	m, err = ParseCase("")
	require.NoError(t, err)
	assert.Equal(t, HostMatcher(), m)

	_, err = ParseCase("sometimes")
	assert.Error(t, err)
}
