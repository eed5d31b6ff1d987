package models

import (
	"strings"
	"time"
)

// Policy caps requests per key within a sliding window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Result represents the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the whole number of seconds until the oldest hit leaves the window.
func (r *Result) RetryAfter(now time.Time) int {
	secs := int(r.ResetAt.Sub(now).Round(time.Second) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// SanitizeKeySegment escapes the key delimiter so a client-controlled value
// cannot spill into an adjacent bucket.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// IPKey is the bucket key for a route class and client IP.
func IPKey(class, ip string) string {
	return "rl:" + SanitizeKeySegment(class) + ":ip:" + SanitizeKeySegment(ip)
}
