// Package model defines the result envelope every command emits. Agent
// callers parse this shape; its field names are a compatibility surface.
package model

import "time"

const EnvelopeVersion = "v1"

// Envelope wraps one operation result. Success reflects the operation
// outcome, not transport health: a partial workflow is Success=false with
// Data still populated.
type Envelope struct {
	Version  string       `json:"version"`
	Success  bool         `json:"success"`
	Data     any          `json:"data,omitempty"`
	Error    *ErrorBody   `json:"error"`
	Warnings []string     `json:"warnings,omitempty"`
	Meta     EnvelopeMeta `json:"meta"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type EnvelopeMeta struct {
	Operation string    `json:"operation"`
	ChainID   int64     `json:"chain_id"`
	Manager   string    `json:"manager,omitempty"`
	Owner     string    `json:"owner,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Partial   bool      `json:"partial,omitempty"`
}
