package usecase

import (
	"net/url"
	"regexp"
	"strings"
)

// ValidationResult is the outcome of a pure reference check.
type ValidationResult struct {
	Valid bool
	Error string
}

// Canonical video URL shapes: watch links, shortened links, embed links,
// mobile links and short-form links.
var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(https?://)?(www\.)?youtube\.com/watch\?.*v=[A-Za-z0-9_-]{6,}`),
	regexp.MustCompile(`^(https?://)?youtu\.be/[A-Za-z0-9_-]{6,}`),
	regexp.MustCompile(`^(https?://)?(www\.)?youtube\.com/embed/[A-Za-z0-9_-]{6,}`),
	regexp.MustCompile(`^(https?://)?m\.youtube\.com/watch\?.*v=[A-Za-z0-9_-]{6,}`),
	regexp.MustCompile(`^(https?://)?(www\.)?youtube\.com/shorts/[A-Za-z0-9_-]{6,}`),
}

// ValidateVideoReference reports whether s is a well-formed video reference.
// Pure; no network access.
func ValidateVideoReference(s string) ValidationResult {
	s = strings.TrimSpace(s)
	if s == "" {
		return ValidationResult{Valid: false, Error: "empty reference"}
	}
	for _, p := range videoURLPatterns {
		if p.MatchString(s) {
			return ValidationResult{Valid: true}
		}
	}
	return ValidationResult{Valid: false, Error: "not a recognized video link"}
}

// ValidateArticleReference accepts any non-empty string that parses as a URL
// with a scheme and host.
func ValidateArticleReference(s string) ValidationResult {
	s = strings.TrimSpace(s)
	if s == "" {
		return ValidationResult{Valid: false, Error: "empty reference"}
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ValidationResult{Valid: false, Error: "malformed URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ValidationResult{Valid: false, Error: "unsupported scheme"}
	}
	return ValidationResult{Valid: true}
}
