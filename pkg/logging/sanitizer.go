// Package logging scrubs credentials from values before they reach log
// output or run records.
package logging

import (
	"regexp"
)

// RedactedText replaces sensitive data in sanitized output.
const RedactedText = "[REDACTED]"

var (
	// password=xxx, pwd=xxx, pass=xxx in key-value style DSNs
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// api keys passed as query or key-value parameters
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|token)=[A-Za-z0-9-_]{16,}`)

	// user:pass@host in URL-style DSNs
	credentialsPattern = regexp.MustCompile(`://[^:/@\s]+:[^@\s]+@`)
)

// SanitizeDSN removes credentials from a connection string. Run records
// and log fields carry the sanitized form, never the raw DSN.
func SanitizeDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(dsn, "${1}="+RedactedText)
	sanitized = credentialsPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@")
	return sanitized
}

// SanitizeError scrubs an error message that may embed a DSN or key.
// Driver errors frequently echo the full connection string back.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = credentialsPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@")
	return sanitized
}

// TruncateString shortens s to maxLen with an ellipsis marker.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
