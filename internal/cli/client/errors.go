package client

import (
	"fmt"
	"sort"
	"strings"
)

// The API mixes two failure signals: a response the backend produced on
// purpose (an {"error": ...} payload) and a request that never got a
// usable answer. Call sites branch on the two with errors.As instead of
// sniffing response shapes.

// DomainError means the backend processed the request and rejected it
// (wrong password, duplicate username, unknown category). Recoverable
// by re-submitting with different input.
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// TransportError means the request failed before a domain-level answer
// existed: network failure, or a non-2xx response with no decodable
// error payload. StatusCode is 0 when no response was received.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError reports client-side pre-flight validation failures,
// keyed by field name. It short-circuits a request that the server
// would reject anyway; the server remains authoritative.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}
