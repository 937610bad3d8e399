package paths

import (
	"fmt"
	"runtime"
	"strings"
)

// Case modes accepted by ParseCase.
const (
	CaseAuto        = "auto"
	CaseSensitive   = "sensitive"
	CaseInsensitive = "insensitive"
)

// Matcher compares canonical paths segment by segment.
type Matcher struct {
	// CaseInsensitive folds case before comparing segments. It should follow
	// the convention of the filesystem holding the notes.
	CaseInsensitive bool
}

// HostMatcher returns the matcher for the host's usual filesystem convention:
// case-insensitive on macOS and Windows, case-sensitive elsewhere.
func HostMatcher() Matcher {
	return Matcher{CaseInsensitive: runtime.GOOS == "darwin" || runtime.GOOS == "windows"}
}

// ParseCase builds a Matcher from a configuration value.
func ParseCase(mode string) (Matcher, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", CaseAuto:
		return HostMatcher(), nil
	case CaseSensitive:
		return Matcher{CaseInsensitive: false}, nil
	case CaseInsensitive:
		return Matcher{CaseInsensitive: true}, nil
	default:
		return Matcher{}, fmt.Errorf("unknown path case mode %q", mode)
	}
}

// IsInside reports whether target equals base or lies below it. Both
// arguments must be canonical; an empty path is never inside anything.
//
// The comparison walks path segments, so "/ws" does not contain "/ws-other".
func (m Matcher) IsInside(target, base string) bool {
	if target == "" || base == "" {
		return false
	}

	t := Segments(target)
	b := Segments(base)
	if len(t) < len(b) {
		return false
	}
	for i := range b {
		if m.fold(t[i]) != m.fold(b[i]) {
			return false
		}
	}
	return true
}

// Key returns the form of p used for exact set membership.
func (m Matcher) Key(p string) string {
	return m.fold(p)
}

func (m Matcher) fold(s string) string {
	if m.CaseInsensitive {
		return strings.ToLower(s)
	}
	return s
}
