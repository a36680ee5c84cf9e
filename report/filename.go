package report

import (
	"regexp"
	"strings"
	"time"
)

var (
	invalidNameChars = regexp.MustCompile(`[^\w\s-]`)
	dashRuns         = regexp.MustCompile(`[-\s]+`)
)

// SanitizeTitle converts a report title into a safe lowercase file stem:
// strip invalid characters, collapse whitespace and dash runs into single
// dashes, trim leading/trailing dashes.
func SanitizeTitle(title string) string {
	name := invalidNameChars.ReplaceAllString(title, "")
	name = dashRuns.ReplaceAllString(name, "-")
	return strings.ToLower(strings.Trim(name, "-"))
}

// FileName derives the report file name for a title at a point in time.
func FileName(title string, now time.Time, ext string) string {
	stem := SanitizeTitle(title)
	if stem == "" {
		stem = "load-test"
	}
	return stem + "-" + now.Format("20060102-150405") + ext
}
