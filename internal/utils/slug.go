package utils

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// maxSlugAttempts caps the numeric suffixes tried before falling back to a time token
const maxSlugAttempts = 100

// Slugify lower-cases name and collapses every run of non-alphanumerics into a single dash
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// GenerateSlug derives a slug from name that is not in existing.
// "Ravi Kumar" becomes "ravi-kumar", then "ravi-kumar-1", "ravi-kumar-2", ...
func GenerateSlug(name string, existing []string) string {
	base := Slugify(name)
	if base == "" {
		base = "user"
	}
	taken := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		taken[s] = struct{}{}
	}
	if _, ok := taken[base]; !ok {
		return base
	}
	for i := 1; i <= maxSlugAttempts; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
	return TimeSlug(base)
}

// TimeSlug suffixes base with a base-36 nanosecond token
func TimeSlug(base string) string {
	return base + "-" + strconv.FormatInt(time.Now().UnixNano(), 36)
}
