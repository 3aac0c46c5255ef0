package metadata

import (
	"fmt"
	"regexp"
	"strconv"
)

// ISO-8601 duration as reported by the upstream API, e.g. PT1H2M5S.
var iso8601Duration = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISO8601Duration converts an upstream duration string into integer
// seconds.
func ParseISO8601Duration(s string) (int, error) {
	m := iso8601Duration.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid duration notation: %q", s)
	}
	hours, _ := strconv.Atoi(zeroIfEmpty(m[1]))
	minutes, _ := strconv.Atoi(zeroIfEmpty(m[2]))
	seconds, _ := strconv.Atoi(zeroIfEmpty(m[3]))
	return hours*3600 + minutes*60 + seconds, nil
}

// FormatDuration renders seconds as H:MM:SS when at least an hour long,
// otherwise M:SS.
func FormatDuration(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
