package progress

import (
	"fmt"
	"io"
)

// Sink receives progress updates from downloads and extractions.
// Implementations must tolerate a zero or unknown total.
type Sink interface {
	// Start begins a new operation with a descriptive label and the total
	// amount of work in bytes, or 0 when unknown.
	Start(label string, total int64)
	// Advance reports n additional bytes of completed work.
	Advance(n int64)
	// Finish marks the operation complete.
	Finish()
}

// Discard is a Sink that drops all updates. Used by non-interactive runs.
type Discard struct{}

// Start implements Sink.
func (Discard) Start(string, int64) {}

// Advance implements Sink.
func (Discard) Advance(int64) {}

// Finish implements Sink.
func (Discard) Finish() {}

// Console renders a single-line percentage indicator to a terminal writer.
// It only rewrites the line when the displayed percentage changes, so it is
// cheap enough to call per chunk.
type Console struct {
	w       io.Writer
	label   string
	total   int64
	current int64
	lastPct int
	active  bool
}

// NewConsole returns a console sink writing to w, normally stderr.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, lastPct: -1}
}

// Start implements Sink.
func (c *Console) Start(label string, total int64) {
	c.label = label
	c.total = total
	c.current = 0
	c.lastPct = -1
	c.active = true

	c.render()
}

// Advance implements Sink.
func (c *Console) Advance(n int64) {
	if !c.active {
		return
	}

	c.current += n
	c.render()
}

// Finish implements Sink.
func (c *Console) Finish() {
	if !c.active {
		return
	}

	c.active = false

	_, _ = fmt.Fprintln(c.w)
}

func (c *Console) render() {
	if c.total <= 0 {
		_, _ = fmt.Fprintf(c.w, "\r%s: %s", c.label, formatBytes(c.current))
		return
	}

	pct := int(c.current * 100 / c.total)
	if pct > 100 {
		pct = 100
	}

	if pct == c.lastPct {
		return
	}

	c.lastPct = pct

	_, _ = fmt.Fprintf(c.w, "\r%s: %3d%% (%s / %s)",
		c.label, pct, formatBytes(c.current), formatBytes(c.total))
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024

	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
