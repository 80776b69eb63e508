// Package redact provides utilities for redacting sensitive information from
// strings before they are logged or returned in error responses. Decode and
// conversion errors can quote the offending input, so messages derived from
// user-supplied model files may embed filesystem paths, external resource
// URLs, or raw chunks of embedded payload data. This package scrubs those
// fragments before a message is stored on a job record or written to a log.
package redact

import (
	"regexp"
	"sync"
)

// Constants for redaction placeholders
const (
	RedactionPlaceholder    = "[REDACTED]"
	RedactedPathPlaceholder = "[REDACTED_PATH]"
)

// Precompiled regex patterns
var (
	// Embedded buffers and images arrive as data URIs; decode errors can
	// quote them wholesale.
	dataURIRegex = regexp.MustCompile(`data:[\w.+/-]+;base64,[A-Za-z0-9+/=_-]{8,}`)

	// Long base64 runs, typically fragments of embedded payload data
	base64BlobRegex = regexp.MustCompile(`\b[A-Za-z0-9+/]{48,}={0,2}\b`)

	// External resource references (model files may point at remote buffers)
	uriRegex = regexp.MustCompile(`https?://[^\s"']+`)

	// File paths
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)
	winPathRegex  = regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`)

	// Stack trace fragments
	stackTraceRegex = regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`)

	// OS-level file errors
	fileErrorRegex = regexp.MustCompile(
		`(?i)(?:no such file|file not found|can't open|cannot open|permission denied)`,
	)

	// All patterns and their placeholders. Order matters: the most
	// specific patterns run first so broader ones see their leftovers.
	patterns = []*regexp.Regexp{
		dataURIRegex, base64BlobRegex, uriRegex,
		unixPathRegex, winPathRegex, stackTraceRegex, fileErrorRegex,
	}

	patternPlaceholders = map[*regexp.Regexp]string{
		dataURIRegex:    "[REDACTED_DATA_URI]",
		base64BlobRegex: "[REDACTED_BLOB]",
		uriRegex:        "[REDACTED_URL]",
		unixPathRegex:   RedactedPathPlaceholder,
		winPathRegex:    RedactedPathPlaceholder,
		stackTraceRegex: "[STACK_TRACE_REDACTED]",
		fileErrorRegex:  "[REDACTED_FILE_ERROR]",
	}

	mu sync.RWMutex
)

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	mu.RLock()
	defer mu.RUnlock()

	result := input
	for _, pattern := range patterns {
		placeholder := RedactionPlaceholder
		if ph, ok := patternPlaceholders[pattern]; ok {
			placeholder = ph
		}
		result = pattern.ReplaceAllString(result, placeholder)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
