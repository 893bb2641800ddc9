package logger

import "regexp"

// Redacted replaces every masked credential.
const Redacted = "***REDACTED***"

var (
	bearerPattern = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9._\-~+/=]+`)
	// key=value / "key": "value" pairs whose key names a credential.
	credentialPattern = regexp.MustCompile(`(?i)(["']?(?:api[_-]?key|access[_-]?token|token|password|passwd|pwd|secret|jwt)["']?\s*[:=]\s*["']?)([^\s"',&]+)`)
)

// Mask removes bearer tokens and credential-looking values from s.
func Mask(s string) string {
	if s == "" {
		return s
	}
	s = bearerPattern.ReplaceAllString(s, "${1}"+Redacted)
	return credentialPattern.ReplaceAllString(s, "${1}"+Redacted)
}
