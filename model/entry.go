package model

import "time"

// Entry is a single archive entry as it appears in the mbox file: the envelope
// fields from its separator line plus the optional message payload.
type Entry struct {
	Index           int
	EnvelopeAddress string
	EnvelopeDate    string
	Message         []byte
}

// HasMessage reports whether a message payload followed the separator line.
func (e Entry) HasMessage() bool {
	return e.Message != nil
}

// Record is one row of the emails table.
type Record struct {
	ID        int32
	Address   string
	Domain    string
	Timestamp time.Time
}
