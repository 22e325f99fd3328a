package core

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	unsafeChars = regexp.MustCompile(`[\/\\:*?"<>|]+`)
	whitespace  = regexp.MustCompile(`\s+`)
	rangeStrip  = regexp.MustCompile(`[-:\s]`)
)

// SafeName sanitizes s for use inside a filename, capped at 80 runes.
func SafeName(s string) string {
	out := strings.TrimSpace(s)
	out = unsafeChars.ReplaceAllString(out, "_")
	out = whitespace.ReplaceAllString(out, "_")
	r := []rune(out)
	if len(r) > 80 {
		r = r[:80]
	}
	return string(r)
}

// FormatRange compresses two wire timestamps into a filename token
// like 20250101T0000_20250102T0000 without separators.
func FormatRange(from, to string) string {
	return rangeStrip.ReplaceAllString(from, "") + "_" + rangeStrip.ReplaceAllString(to, "")
}

// ExportFilename synthesizes the CSV download name from the export
// scope, selection and range.
func ExportFilename(prefix, name, from, to string, channels []string) string {
	ch := "all"
	if len(channels) > 0 {
		ch = strings.Join(channels, "-")
	}
	return fmt.Sprintf("%s_%s_%s_%s.csv", SafeName(prefix), SafeName(name), FormatRange(from, to), SafeName(ch))
}
