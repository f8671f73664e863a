package extract

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/textproto"

	"github.com/dhcgn/mbox-to-postgres/model"
)

var ErrEmptyAddress = errors.New("sender address is empty")

// Address returns the sender of entry. Without a message payload the envelope
// address is used. With a payload the message header must parse; its first
// From field wins, and the envelope address is the fallback when the field is
// missing. RFC 2047 encoded words are decoded; a field in an unknown charset
// is kept as written.
func Address(entry model.Entry) (string, error) {
	address := entry.EnvelopeAddress
	if entry.HasMessage() {
		th, err := textproto.ReadHeader(bufio.NewReader(bytes.NewReader(entry.Message)))
		if err != nil {
			return "", fmt.Errorf("parse message: %w", err)
		}
		header := message.Header{Header: th}
		if header.Has("From") {
			// Text returns the undecoded value alongside any decoding error.
			address, _ = header.Text("From")
		}
	}

	if address == "" {
		return "", ErrEmptyAddress
	}
	return address, nil
}
