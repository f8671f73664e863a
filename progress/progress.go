package progress

import (
	"github.com/pterm/pterm"

	"github.com/dhcgn/mbox-to-postgres/stats"
)

// Bar shows import progress in the terminal. A disabled bar ignores all calls.
type Bar struct {
	pb      *pterm.ProgressbarPrinter
	total   int
	failed  int
	enabled bool
}

// New creates a progress bar over total entries. The bar is only shown when
// enabled, total is known and the log level is "info".
func New(total int, enabled bool, logLevel string) *Bar {
	bar := &Bar{
		total:   total,
		enabled: enabled && total > 0 && logLevel == "info",
	}

	if bar.enabled {
		pterm.Info.Printf("Entries in mbox: %d\n", total)
		pb, err := pterm.DefaultProgressbar.
			WithTotal(total).
			WithTitle("Loading entries").
			Start()
		if err != nil {
			bar.enabled = false
			return bar
		}
		bar.pb = pb
	}

	return bar
}

func (b *Bar) Enabled() bool {
	return b.enabled
}

// Observe advances the bar once per scanned entry.
func (b *Bar) Observe(evt stats.Event) {
	if !b.enabled || b.pb == nil {
		return
	}

	switch evt.Type {
	case stats.EventTypeScanned:
		if b.pb.Current < b.total {
			b.pb.Increment()
		}
	case stats.EventTypeFailed:
		b.failed++
		b.pb.UpdateTitle(pterm.Sprintf("Loading entries (%d failed)", b.failed))
	}
}

// Stop finalizes the progress bar.
func (b *Bar) Stop() {
	if !b.enabled || b.pb == nil {
		return
	}

	if b.pb.Current < b.total {
		b.pb.Current = b.total
	}
	_, _ = b.pb.Stop()
}
