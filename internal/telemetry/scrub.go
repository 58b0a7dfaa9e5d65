package telemetry

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Patterns for values that must never leave the host.
var (
	homeDirRegex = regexp.MustCompile(`(/home/|/Users/|C:\\Users\\)[^/\\\s]+`)
	ipv4Regex    = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	dsnRegex     = regexp.MustCompile(`\b\w+:[^@\s]+@(tcp|unix)\([^)]*\)`)
	urlCredRegex = regexp.MustCompile(`(https?://)[^:/\s]+:[^@/\s]+@`)
)

// ScrubMessage removes filesystem paths, addresses and credentials from a
// message before it is attached to a telemetry event. Uploaded image names
// are user data and are reduced to their extension.
func ScrubMessage(message string) string {
	if message == "" {
		return message
	}

	scrubbed := homeDirRegex.ReplaceAllString(message, "$1[USER]")
	scrubbed = dsnRegex.ReplaceAllString(scrubbed, "[DSN_REDACTED]")
	scrubbed = urlCredRegex.ReplaceAllString(scrubbed, "$1[CREDENTIALS_REDACTED]@")
	scrubbed = ipv4Regex.ReplaceAllString(scrubbed, "[IP_REDACTED]")

	return scrubbed
}

// AnonymizeFilename reduces an uploaded file name to its extension so error
// context never carries user-chosen names.
func AnonymizeFilename(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "[FILE]"
	}
	return "[FILE]" + ext
}
