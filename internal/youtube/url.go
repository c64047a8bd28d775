// Package youtube recognizes YouTube URLs and extracts video identifiers
package youtube

import (
	"regexp"
)

// urlPattern accepts canonical watch URLs, youtu.be short links and the
// /shorts/, /embed/, /live/ path forms, case-insensitively. It only
// checks that the string plausibly points at YouTube; the video id may
// still be absent.
var urlPattern = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.|m\.|music\.)?(?:youtube\.com|youtu\.be)/\S+$`)

// idPattern captures the 11-character video id terminated by a query
// delimiter, path delimiter or end of string.
var idPattern = regexp.MustCompile(`(?i)(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?|shorts|live)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)

// Validate reports whether input looks like a YouTube or Shorts URL.
// No network access; malformed input simply returns false.
func Validate(input string) bool {
	if input == "" {
		return false
	}
	return urlPattern.MatchString(input)
}

// ExtractID returns the 11-character video id embedded in input. The
// second return value is false when no well-formed id is present.
func ExtractID(input string) (string, bool) {
	if input == "" {
		return "", false
	}
	m := idPattern.FindStringSubmatch(input)
	if m == nil {
		return "", false
	}
	return m[1], true
}
