// Package util holds small stateless helpers shared by the commands and
// the local web UI: email validation, timestamp formatting for chat
// bubbles, and human-readable file sizes.
package util

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// emailPattern mirrors the validation used on the login and register
// forms: one non-space local part, an @, and a dotted domain.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// FormatTime renders a chat-bubble timestamp as a two-digit
// hour:minute pair (vi-VN locale convention, 24-hour clock).
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// sizeUnits are the upload-panel file size units, smallest first.
var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count the way the upload panel does:
// base-1024 units, at most two decimal places, trailing zeros trimmed.
func FormatFileSize(bytes int64) string {
	if bytes == 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	v := math.Round(float64(bytes)/math.Pow(1024, float64(i))*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}
