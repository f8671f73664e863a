package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/dhcgn/mbox-to-postgres/model"
)

type Stage string

const (
	StageMbox    Stage = "mbox"
	StageExtract Stage = "extract"
	StageLoad    Stage = "load"
)

type EventType string

const (
	EventTypeScanned   EventType = "scanned"
	EventTypePersisted EventType = "persisted"
	EventTypeFailed    EventType = "failed"
)

// Event is one state transition of a single archive entry.
type Event struct {
	Stage  Stage
	Type   EventType
	Index  int
	Kind   model.ErrorKind
	Domain string
	Err    error
}

// Summary is the outcome of a run.
type Summary struct {
	Scanned      int
	Succeeded    int
	Failed       int
	FailedByKind map[model.ErrorKind]int
	LastError    error
}

func (s Summary) LogAttrs() []any {
	attrs := []any{
		"scanned", s.Scanned,
		"succeeded", s.Succeeded,
		"failed", s.Failed,
	}
	for _, kind := range s.FailedKinds() {
		attrs = append(attrs, "failed_"+kind.String(), s.FailedByKind[kind])
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}

// Report writes the operator lines: successes to stdout, failures to stderr.
func (s Summary) Report(stdout, stderr io.Writer) error {
	if _, err := fmt.Fprintf(stdout, "%d emails processed successfully\n", s.Succeeded); err != nil {
		return err
	}
	_, err := fmt.Fprintf(stderr, "%d emails failed to process\n", s.Failed)
	return err
}

// Err is nil for a clean run and the terminal KindIncomplete error otherwise.
func (s Summary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	return model.Incomplete(s.Failed)
}

// FailedKinds returns the kinds present in FailedByKind in declaration order.
func (s Summary) FailedKinds() []model.ErrorKind {
	kinds := make([]model.ErrorKind, 0, len(s.FailedByKind))
	for kind := range s.FailedByKind {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Collector tallies events into a Summary. It is driven synchronously by the
// runner and is not safe for concurrent use.
type Collector struct {
	summary Summary
}

func NewCollector() *Collector {
	return &Collector{summary: Summary{FailedByKind: make(map[model.ErrorKind]int)}}
}

func (c *Collector) Observe(evt Event) {
	switch evt.Type {
	case EventTypeScanned:
		c.summary.Scanned++
	case EventTypePersisted:
		c.summary.Succeeded++
	case EventTypeFailed:
		c.summary.Failed++
		c.summary.FailedByKind[evt.Kind]++
		if evt.Err != nil {
			c.summary.LastError = evt.Err
		}
	}
}

func (c *Collector) Snapshot() Summary {
	summary := c.summary
	summary.FailedByKind = make(map[model.ErrorKind]int, len(c.summary.FailedByKind))
	for k, v := range c.summary.FailedByKind {
		summary.FailedByKind[k] = v
	}
	return summary
}

// PrettyPrintTop prints the top N most frequent items in a map.
func PrettyPrintTop(w io.Writer, m map[string]int, limit int) {
	for i, p := range SortedCounts(m) {
		if i >= limit {
			break
		}
		fmt.Fprintf(w, "%d. %s (%d)\n", i+1, p.Key, p.Value)
	}
}

type Pair struct {
	Key   string
	Value int
}

// SortedCounts orders m by count descending, then key ascending.
func SortedCounts(m map[string]int) []Pair {
	pairs := make([]Pair, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, Pair{k, v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Value != pairs[j].Value {
			return pairs[i].Value > pairs[j].Value
		}
		return pairs[i].Key < pairs[j].Key
	})
	return pairs
}
