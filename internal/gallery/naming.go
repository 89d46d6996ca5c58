package gallery

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Date and entry folder names double as the sort key of the repository:
// for any two instants a and b on the same clock, a before b implies
// FormatDate(a) <= FormatDate(b), and within one date FormatTime(a) < FormatTime(b)
// at microsecond resolution. Both layouts are fixed width, so plain string
// comparison of the names is chronological comparison.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05.000000"
)

// entrySeparator splits an entry folder name into time and prompt. Only its
// first occurrence matters; prompts may contain more of them.
const entrySeparator = "_"

// FormatDate returns the date folder name for t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTime returns the time prefix of an entry folder name for t.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// EntryName returns the folder name for an entry created at entryTime with prompt.
func EntryName(entryTime, prompt string) string {
	return entryTime + entrySeparator + escapePrompt(prompt)
}

// ParseEntryName splits an entry folder name on the first separator.
// ok is false when the name has no separator or an empty time part.
func ParseEntryName(name string) (entryTime, prompt string, ok bool) {
	entryTime, raw, found := strings.Cut(name, entrySeparator)
	if !found || entryTime == "" {
		return "", "", false
	}
	return entryTime, unescapePrompt(raw), true
}

// ParseEntryPath parses "<date>/<entry name>", the repo-relative path of an
// entry folder, into a reference. Repo is left empty.
func ParseEntryPath(s string) (PromptDirectoryRef, error) {
	date, name, found := strings.Cut(s, "/")
	if !found {
		return PromptDirectoryRef{}, fmt.Errorf("%w: entry path %q is not <date>/<entry>", ErrInvalidArgument, s)
	}
	entryTime, prompt, ok := ParseEntryName(name)
	if !ok {
		return PromptDirectoryRef{}, fmt.Errorf("%w: malformed entry name %q", ErrInvalidArgument, name)
	}
	ref := PromptDirectoryRef{Date: date, Time: entryTime, Prompt: prompt, Name: name}
	if err := ValidateRef(ref); err != nil {
		return PromptDirectoryRef{}, err
	}
	return ref, nil
}

func needsEscape(c byte) bool {
	return c == '%' || c == '/' || c == '\\' || c < 0x20 || c == 0x7f
}

// escapePrompt percent-escapes the characters that cannot appear in a single
// path segment, plus '%' itself so the encoding can be reversed.
func escapePrompt(prompt string) string {
	var b strings.Builder
	for i := 0; i < len(prompt); i++ {
		c := prompt[i]
		if needsEscape(c) {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// unescapePrompt reverses escapePrompt. Only the sequences escapePrompt
// writes are decoded; anything else, such as "%20" or a bare '%' in a name
// written by another tool, is kept literally.
func unescapePrompt(raw string) string {
	if !strings.Contains(raw, "%") {
		return raw
	}
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		if c, ok := escapedByte(raw[i:]); ok {
			b.WriteByte(c)
			i += 2
			continue
		}
		b.WriteByte(raw[i])
	}
	return b.String()
}

// escapedByte decodes a leading "%XX" exactly as escapePrompt writes it.
func escapedByte(s string) (byte, bool) {
	if len(s) < 3 || s[0] != '%' {
		return 0, false
	}
	hex := s[1:3]
	if hex != strings.ToUpper(hex) {
		return 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 8)
	if err != nil || !needsEscape(byte(v)) {
		return 0, false
	}
	return byte(v), true
}

// ValidatePrompt rejects prompts that cannot name an entry folder.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("%w: prompt is empty", ErrInvalidArgument)
	}
	return nil
}

// ValidateRepoName requires name to be a single, non-dot path segment.
func ValidateRepoName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: repo name is empty", ErrInvalidArgument)
	}
	return validateSegment("repo name", name)
}

// ValidateRef checks that ref can address a folder below a repo root.
// Tokens come back from callers, so they are checked before use.
func ValidateRef(ref PromptDirectoryRef) error {
	if err := validateSegment("date", ref.Date); err != nil {
		return err
	}
	if err := validateSegment("time", ref.Time); err != nil {
		return err
	}
	if strings.Contains(ref.Time, entrySeparator) {
		return fmt.Errorf("%w: time %q contains %q", ErrInvalidArgument, ref.Time, entrySeparator)
	}
	if ref.Name != "" {
		return validateEntryName(ref)
	}
	return nil
}

// validateEntryName checks a raw folder name carried by ref. Any byte other
// than the OS path separator is allowed, but the name must start with the
// ref's time so bookmarks sort where the entry does.
func validateEntryName(ref PromptDirectoryRef) error {
	switch {
	case ref.Name == "." || ref.Name == "..":
		return fmt.Errorf("%w: entry name %q is reserved", ErrInvalidArgument, ref.Name)
	case strings.ContainsRune(ref.Name, '/') || strings.ContainsRune(ref.Name, filepath.Separator):
		return fmt.Errorf("%w: entry name %q contains a path separator", ErrInvalidArgument, ref.Name)
	}
	if entryTime, _, ok := ParseEntryName(ref.Name); !ok || entryTime != ref.Time {
		return fmt.Errorf("%w: entry name %q does not match time %q", ErrInvalidArgument, ref.Name, ref.Time)
	}
	return nil
}

func validateSegment(field, value string) error {
	switch {
	case value == "":
		return fmt.Errorf("%w: %s is empty", ErrInvalidArgument, field)
	case value == "." || value == "..":
		return fmt.Errorf("%w: %s %q is reserved", ErrInvalidArgument, field, value)
	case strings.ContainsAny(value, `/\`):
		return fmt.Errorf("%w: %s %q contains a path separator", ErrInvalidArgument, field, value)
	}
	return nil
}
