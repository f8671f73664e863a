package model

import (
	"errors"
	"fmt"
)

// ErrorKind identifies which path of the pipeline produced an error.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota

	// Fatal kinds abort the run before or outside of per-record processing.
	KindConnect
	KindSchema
	KindPrepare
	KindArchiveOpen
	KindArchiveRead

	// Record kinds are counted as failures and the run continues.
	KindRecordID
	KindAddress
	KindTimestamp
	KindInsert

	// KindIncomplete is the terminal summary of a run with failed records.
	KindIncomplete
)

var kindNames = map[ErrorKind]string{
	KindUnknown:     "unknown",
	KindConnect:     "connect",
	KindSchema:      "schema",
	KindPrepare:     "prepare",
	KindArchiveOpen: "archive_open",
	KindArchiveRead: "archive_read",
	KindRecordID:    "record_id",
	KindAddress:     "address",
	KindTimestamp:   "timestamp",
	KindInsert:      "insert",
	KindIncomplete:  "incomplete",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Fatal reports whether errors of this kind abort the whole run.
func (k ErrorKind) Fatal() bool {
	switch k {
	case KindConnect, KindSchema, KindPrepare, KindArchiveOpen, KindArchiveRead:
		return true
	}
	return false
}

// PerRecord reports whether errors of this kind are tallied as a failed entry.
func (k ErrorKind) PerRecord() bool {
	switch k {
	case KindRecordID, KindAddress, KindTimestamp, KindInsert:
		return true
	}
	return false
}

// Error is the single error type returned by the pipeline.
type Error struct {
	Kind ErrorKind
	// Index is the archive ordinal of the entry for per-record kinds.
	Index int
	// Failed is the failure count carried by KindIncomplete.
	Failed int
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindIncomplete:
		return fmt.Sprintf("failed to parse inbox completely: %d failed emails", e.Failed)
	case e.Kind.PerRecord() && e.Err != nil:
		return fmt.Sprintf("entry %d: %s: %v", e.Index, e.Kind, e.Err)
	case e.Kind.PerRecord():
		return fmt.Sprintf("entry %d: %s", e.Index, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fatalf wraps err as a fatal pipeline error of the given kind.
func Fatalf(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// RecordError wraps err as a failure of the entry at index.
func RecordError(kind ErrorKind, index int, err error) *Error {
	return &Error{Kind: kind, Index: index, Err: err}
}

// Incomplete returns the terminal error for a run with failed entries.
func Incomplete(failed int) *Error {
	return &Error{Kind: KindIncomplete, Failed: failed}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
