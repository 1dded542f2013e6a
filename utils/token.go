package utils

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// IngestTokenHeader carries the shared secret for event ingest.
const IngestTokenHeader = "X-Ingest-Token"

// RequestToken extracts the ingest token from the X-Ingest-Token header or
// a bearer Authorization header.
func RequestToken(r *http.Request) string {
	if tok := strings.TrimSpace(r.Header.Get(IngestTokenHeader)); tok != "" {
		return tok
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// ValidToken compares a presented token against the configured one in
// constant time. An empty expected token accepts everything.
func ValidToken(expected, presented string) bool {
	if expected == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) == 1
}
