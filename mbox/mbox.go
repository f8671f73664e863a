package mbox

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	mboxlib "github.com/emersion/go-mbox"

	"github.com/dhcgn/mbox-to-postgres/model"
)

const separatorPrefix = "From "

var ErrInvalidFormat = errors.New("mbox: content before first separator line")

// Reader yields archive entries in file order. It keeps the envelope line of
// every entry, which go-mbox discards.
type Reader struct {
	br      *bufio.Reader
	closer  io.Closer
	started bool
	pending string
	index   int
}

// Open opens the archive at path for a single pass.
func Open(path string) (*Reader, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("mbox path is empty")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mbox: %w", err)
	}
	r := NewReader(file)
	r.closer = file
	return r, nil
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 64*1024)}
}

// Close releases the underlying file when the reader was created by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Next returns the next entry, or io.EOF once the archive is exhausted.
func (r *Reader) Next() (model.Entry, error) {
	if !r.started {
		if err := r.seekFirstSeparator(); err != nil {
			return model.Entry{}, err
		}
		r.started = true
	}
	if r.pending == "" {
		return model.Entry{}, io.EOF
	}

	separator := r.pending
	r.pending = ""

	var body bytes.Buffer
	held := false
	for {
		line, err := r.readLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Entry{}, fmt.Errorf("message %d read: %w", r.index, err)
		}
		if held && isSeparator(line) {
			r.pending = line
			break
		}
		if held {
			body.WriteByte('\n')
			held = false
		}
		if line == "" {
			held = true
			continue
		}
		body.WriteString(unescapeFrom(line))
		body.WriteByte('\n')
	}

	address, date := ParseSeparator(separator)
	entry := model.Entry{
		Index:           r.index,
		EnvelopeAddress: address,
		EnvelopeDate:    date,
	}
	if body.Len() > 0 {
		entry.Message = body.Bytes()
	}
	r.index++
	return entry, nil
}

func (r *Reader) seekFirstSeparator() error {
	for {
		line, err := r.readLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("message 0 read: %w", err)
		}
		if line == "" {
			continue
		}
		if !isSeparator(line) {
			return ErrInvalidFormat
		}
		r.pending = line
		return nil
	}
}

// readLine returns one line without its terminator. io.EOF is only returned
// when no further bytes are available.
func (r *Reader) readLine() (string, error) {
	line, err := r.br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

// ParseSeparator splits a "From address date" line into its envelope fields.
func ParseSeparator(line string) (address, date string) {
	rest := strings.TrimLeft(strings.TrimPrefix(line, separatorPrefix), " \t")
	address, date, _ = strings.Cut(rest, " ")
	return address, strings.TrimSpace(date)
}

func isSeparator(line string) bool {
	return strings.HasPrefix(line, separatorPrefix)
}

// unescapeFrom reverses mboxrd quoting of ">From " lines.
func unescapeFrom(line string) string {
	trimmed := strings.TrimLeft(line, ">")
	if len(trimmed) < len(line) && strings.HasPrefix(trimmed, separatorPrefix) {
		return line[1:]
	}
	return line
}

// Count counts the messages in the archive at path using go-mbox.
func Count(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()
	return CountReader(file)
}

func CountReader(r io.Reader) (int, error) {
	reader := mboxlib.NewReader(r)

	count := 0
	for {
		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return count, err
		}

		if _, err := io.Copy(io.Discard, msgReader); err != nil {
			return count, fmt.Errorf("message %d read: %w", count, err)
		}
		count++
	}
}
