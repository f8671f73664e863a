package extract

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/dhcgn/mbox-to-postgres/model"
)

func TestDomain(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"user@example.com", "example.com"},
		{"Alice <alice@example.com>", "example.com"},
		{"\"Bob\" <bob@mail.example.org> (work)", "mail.example.org"},
		{"not-an-address", ""},
		{"@example.com", ""},
		{"user@", ""},
		{"", ""},
		{"a@b@c", "b"},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			if got := Domain(tt.address); got != tt.want {
				t.Errorf("Domain(%q) = %q, want %q", tt.address, got, tt.want)
			}
		})
	}
}

func TestTimestamp(t *testing.T) {
	ts, err := Timestamp("Wed Jan 2 15:04:05 +0000 2013")
	if err != nil {
		t.Fatalf("Timestamp() error = %v", err)
	}
	want := time.Date(2013, time.January, 2, 15, 4, 5, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("Timestamp() = %v, want %v", ts, want)
	}
	if _, offset := ts.Zone(); offset != 0 {
		t.Errorf("offset = %d, want 0", offset)
	}

	ts, err = Timestamp("Sat Jan 5 10:00:00 -0500 2013")
	if err != nil {
		t.Fatalf("Timestamp() error = %v", err)
	}
	if _, offset := ts.Zone(); offset != -5*3600 {
		t.Errorf("offset = %d, want %d", offset, -5*3600)
	}

	valid := []string{
		"Thu Jan 03 08:00:00 +0100 2013",
		"Wed Jan  2 15:04:05 +0000 2013",
	}
	for _, raw := range valid {
		if _, err := Timestamp(raw); err != nil {
			t.Errorf("Timestamp(%q) error = %v", raw, err)
		}
	}

	invalid := []string{
		"2013-01-02T15:04:05Z",
		"Wed Jan 2 15:04:05 2013",
		"Wed Jan 2 15:04:05 UTC 2013",
		"Wed Jan 2 15:04:05 +0000 13",
		"Wed Jan 2 15:04:05 +0000 2013 extra",
		"Thu Jan 2 15:04:05 +0000 2013",
		"Wed Jan 2 15:04:05.123 +0000 2013",
		"Wed Jan 2 15:04:05,5 +0000 2013",
		"",
	}
	for _, raw := range invalid {
		if _, err := Timestamp(raw); err == nil {
			t.Errorf("Timestamp(%q) expected error", raw)
		}
	}
}

func TestAddress(t *testing.T) {
	tests := []struct {
		name    string
		entry   model.Entry
		want    string
		wantErr bool
	}{
		{
			name:  "envelope only",
			entry: model.Entry{EnvelopeAddress: "alice@envelope.invalid"},
			want:  "alice@envelope.invalid",
		},
		{
			name: "from header wins",
			entry: model.Entry{
				EnvelopeAddress: "alice@envelope.invalid",
				Message:         []byte("From: Alice <alice@example.com>\nSubject: hi\n\nbody\n"),
			},
			want: "Alice <alice@example.com>",
		},
		{
			name: "first from header",
			entry: model.Entry{
				EnvelopeAddress: "x@y.z",
				Message:         []byte("From: first@example.com\nFrom: second@example.com\n\n"),
			},
			want: "first@example.com",
		},
		{
			name: "encoded word is decoded",
			entry: model.Entry{
				EnvelopeAddress: "alice@envelope.invalid",
				Message:         []byte("From: =?UTF-8?B?QWxpY2U=?= <alice@example.com>\n\n"),
			},
			want: "Alice <alice@example.com>",
		},
		{
			name: "latin1 encoded word is decoded",
			entry: model.Entry{
				EnvelopeAddress: "andre@envelope.invalid",
				Message:         []byte("From: =?ISO-8859-1?Q?Andr=E9?= <andre@example.com>\n\n"),
			},
			want: "Andr\u00e9 <andre@example.com>",
		},
		{
			name: "unknown charset keeps raw value",
			entry: model.Entry{
				EnvelopeAddress: "x@envelope.invalid",
				Message:         []byte("From: =?x-no-such-charset?Q?abc?= <x@example.com>\n\n"),
			},
			want: "=?x-no-such-charset?Q?abc?= <x@example.com>",
		},
		{
			name: "missing from header falls back",
			entry: model.Entry{
				EnvelopeAddress: "bob@example.org",
				Message:         []byte("Subject: hi\n\nbody\n"),
			},
			want: "bob@example.org",
		},
		{
			name: "malformed message fails",
			entry: model.Entry{
				EnvelopeAddress: "dave@example.com",
				Message:         []byte("this line is not a header\n\nbody\n"),
			},
			wantErr: true,
		},
		{
			name:    "empty envelope fails",
			entry:   model.Entry{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Address(tt.entry)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Address() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Address() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordID(t *testing.T) {
	if id, err := RecordID(42); err != nil || id != 42 {
		t.Errorf("RecordID(42) = %d, %v", id, err)
	}
	if _, err := RecordID(-1); err == nil {
		t.Error("expected error for negative index")
	}
	if math.MaxInt > math.MaxInt32 {
		index := math.MaxInt32
		index++
		if _, err := RecordID(index); err == nil {
			t.Error("expected error for index beyond int32")
		}
	}
	if id, err := RecordID(math.MaxInt32); err != nil || id != math.MaxInt32 {
		t.Errorf("RecordID(MaxInt32) = %d, %v", id, err)
	}
}

func TestBuild(t *testing.T) {
	rec, err := Build(model.Entry{
		Index:           3,
		EnvelopeAddress: "alice@envelope.invalid",
		EnvelopeDate:    "Wed Jan 2 15:04:05 +0000 2013",
		Message:         []byte("From: Alice <alice@example.com>\n\n"),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if rec.ID != 3 || rec.Address != "Alice <alice@example.com>" || rec.Domain != "example.com" {
		t.Errorf("unexpected record: %+v", rec)
	}

	rec, err = Build(model.Entry{
		EnvelopeAddress: "not-an-address",
		EnvelopeDate:    "Wed Jan 2 15:04:05 +0000 2013",
	})
	if err != nil {
		t.Fatalf("domain-less address must not fail: %v", err)
	}
	if rec.Domain != "" {
		t.Errorf("Domain = %q, want empty", rec.Domain)
	}

	failures := []struct {
		name  string
		entry model.Entry
		kind  model.ErrorKind
	}{
		{
			name:  "timestamp",
			entry: model.Entry{Index: 1, EnvelopeAddress: "a@b.c", EnvelopeDate: "2013-01-02T15:04:05Z"},
			kind:  model.KindTimestamp,
		},
		{
			name: "address",
			entry: model.Entry{
				Index:           2,
				EnvelopeAddress: "a@b.c",
				EnvelopeDate:    "Wed Jan 2 15:04:05 +0000 2013",
				Message:         []byte("garbage\n\n"),
			},
			kind: model.KindAddress,
		},
		{
			name:  "record id",
			entry: model.Entry{Index: -1, EnvelopeAddress: "a@b.c", EnvelopeDate: "Wed Jan 2 15:04:05 +0000 2013"},
			kind:  model.KindRecordID,
		},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.entry)
			var pe *model.Error
			if !errors.As(err, &pe) {
				t.Fatalf("expected *model.Error, got %v", err)
			}
			if pe.Kind != tt.kind || pe.Index != tt.entry.Index {
				t.Errorf("got kind %v index %d, want kind %v index %d", pe.Kind, pe.Index, tt.kind, tt.entry.Index)
			}
		})
	}
}
