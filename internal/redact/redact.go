// Package redact scrubs sensitive information from strings before they
// are logged. Error messages can carry connection strings, tokens, or
// file paths picked up from the driver or OS layers; everything routed
// into a log line goes through here first.
package redact

import "regexp"

// Redaction placeholders.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
)

var (
	// Database connection strings with embedded credentials.
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|postgresql|sqlite|db|database)://[^@\s]+@`)

	// Secrets and tokens.
	secretRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|password|passwd)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)

	// JWTs: three base64url segments starting with eyJ.
	jwtRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// Absolute file paths.
	pathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)

	placeholders = map[*regexp.Regexp]string{
		dbConnRegex: RedactedCredentialPlaceholder,
		secretRegex: RedactedKeyPlaceholder,
		jwtRegex:    "[REDACTED_JWT]",
		pathRegex:   RedactedPathPlaceholder,
	}

	// Applied in a fixed order so overlapping matches resolve the same
	// way every time.
	order = []*regexp.Regexp{dbConnRegex, secretRegex, jwtRegex, pathRegex}
)

// String redacts sensitive patterns from s.
func String(s string) string {
	for _, re := range order {
		s = re.ReplaceAllString(s, placeholders[re])
	}
	return s
}

// Error redacts sensitive patterns from an error's message. Returns an
// empty string for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
