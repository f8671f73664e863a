package model

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "incomplete",
			err:  Incomplete(3),
			want: "failed to parse inbox completely: 3 failed emails",
		},
		{
			name: "record with cause",
			err:  RecordError(KindTimestamp, 7, errors.New("bad layout")),
			want: "entry 7: timestamp: bad layout",
		},
		{
			name: "fatal with cause",
			err:  Fatalf(KindArchiveOpen, errors.New("no such file")),
			want: "archive_open: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", RecordError(KindInsert, 1, io.ErrUnexpectedEOF))
	if got := KindOf(wrapped); got != KindInsert {
		t.Fatalf("KindOf() = %v, want %v", got, KindInsert)
	}
	if !errors.Is(wrapped, io.ErrUnexpectedEOF) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("KindOf(plain) = %v, want %v", got, KindUnknown)
	}
}

func TestKindClassification(t *testing.T) {
	for _, k := range []ErrorKind{KindConnect, KindSchema, KindPrepare, KindArchiveOpen, KindArchiveRead} {
		if !k.Fatal() || k.PerRecord() {
			t.Errorf("%v: expected fatal, not per-record", k)
		}
	}
	for _, k := range []ErrorKind{KindRecordID, KindAddress, KindTimestamp, KindInsert} {
		if k.Fatal() || !k.PerRecord() {
			t.Errorf("%v: expected per-record, not fatal", k)
		}
	}
	if KindIncomplete.Fatal() || KindIncomplete.PerRecord() {
		t.Error("incomplete is neither fatal nor per-record")
	}
}
