// Package paths turns raw path strings from the UI into canonical absolute
// paths and answers containment questions about them.
package paths

import (
	"path/filepath"
	"strings"
)

// Normalize returns the canonical absolute form of input.
//
// Relative input is resolved against the process working directory, "." and
// ".." segments are collapsed and separators are rewritten for the host OS.
// The normalization is lexical; symlinks are left alone.
//
// When no absolute form can be determined (blank input, an embedded NUL, or an
// unreadable working directory) the empty string is returned. Callers must
// treat "" as unresolvable and deny it.
func Normalize(input string) string {
	if strings.TrimSpace(input) == "" || strings.ContainsRune(input, 0) {
		return ""
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return ""
	}
	if !filepath.IsAbs(abs) {
		return ""
	}
	return filepath.Clean(abs)
}

// Segments splits a canonical path into its volume (if any) followed by each
// non-empty path element. The filesystem root yields no segments.
func Segments(p string) []string {
	vol := filepath.VolumeName(p)
	rest := p[len(vol):]

	parts := strings.Split(rest, string(filepath.Separator))
	segs := make([]string, 0, len(parts)+1)
	if vol != "" {
		segs = append(segs, vol)
	}
	for _, part := range parts {
		if part != "" {
			segs = append(segs, part)
		}
	}
	return segs
}
