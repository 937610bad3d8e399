package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxFileNameLength is the longest file name SanitizeFileName produces.
const MaxFileNameLength = 255

var (
	unsafeFileChars = regexp.MustCompile(`[/\\?%*:|"<>]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// SanitizeFileName turns a note title into a file name stem: characters that
// are not allowed in file names become dashes, whitespace runs become a single
// dash and the result is capped at MaxFileNameLength bytes. A blank title
// yields "".
func SanitizeFileName(title string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}

	name := unsafeFileChars.ReplaceAllString(title, "-")
	name = whitespaceRun.ReplaceAllString(name, "-")
	name = strings.TrimSpace(name)

	if len(name) > MaxFileNameLength {
		name = name[:MaxFileNameLength]
		for !utf8.ValidString(name) {
			name = name[:len(name)-1]
		}
	}
	return name
}

// GenerateFileName returns a markdown file name for title that is not in
// existing, appending -1, -2, ... when needed.
func GenerateFileName(title string, existing []string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		taken[name] = struct{}{}
	}
	return UniqueFileName(title, func(name string) bool {
		_, exists := taken[name]
		return exists
	})
}

// UniqueFileName is GenerateFileName with the collision test supplied by the
// caller, for directories where names compare case-insensitively.
func UniqueFileName(title string, taken func(name string) bool) string {
	base := SanitizeFileName(title)
	if base == "" {
		base = "Untitled"
	}

	fileName := base + ".md"
	for counter := 1; taken(fileName); counter++ {
		fileName = fmt.Sprintf("%s-%d.md", base, counter)
	}
	return fileName
}

// AutosaveFileName names the autosave copy of a note. Notes without a usable
// title fall back to Untitled plus the first eight characters of the note ID.
func AutosaveFileName(noteID, title string) string {
	name := SanitizeFileName(title)
	if name == "" {
		short := noteID
		if len(short) > 8 {
			short = short[:8]
		}
		name = "Untitled-" + SanitizeFileName(short)
	}
	return name + ".md"
}

// NoteID derives a stable identifier for the note stored at path, so the same
// file keeps its ID across listings.
func NoteID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(path))).String()
}
