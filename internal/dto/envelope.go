package dto

import "time"

// ErrorEnvelope is the stable failure shape for every operation: a list of
// human-readable messages plus a timestamp. Never a partial success.
type ErrorEnvelope struct {
	Errors    []string  `json:"errors"`
	Timestamp time.Time `json:"timestamp"`
}

// NewErrorEnvelope builds an error envelope from accumulated messages.
func NewErrorEnvelope(messages []string) ErrorEnvelope {
	return ErrorEnvelope{
		Errors:    messages,
		Timestamp: time.Now().UTC(),
	}
}
