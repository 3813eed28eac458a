// Package report renders cycle measurements on a console.
package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

const (
	// clearLine erases the whole current line and returns the cursor to column 0.
	clearLine  = "\x1b[2K\r"
	timeLayout = "15:04:05"
)

// Console writes one status line per reported cycle. Routine lines
// overwrite each other in place; exceeded lines are highlighted and kept.
type Console struct {
	out     io.Writer
	now     func() time.Time
	anomaly *color.Color
}

// Option configures a Console.
type Option func(*Console)

// WithClock overrides the wall clock used for the line timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Console) {
		c.now = now
	}
}

// WithColor forces highlighting on or off instead of detecting a terminal.
func WithColor(enabled bool) Option {
	return func(c *Console) {
		if enabled {
			c.anomaly.EnableColor()
		} else {
			c.anomaly.DisableColor()
		}
	}
}

// NewConsole creates a reporter writing to out, or stdout when out is nil.
func NewConsole(out io.Writer, opts ...Option) *Console {
	if out == nil {
		out = os.Stdout
	}
	c := &Console{
		out:     out,
		now:     time.Now,
		anomaly: color.New(color.FgRed, color.Bold),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Report implements executor.Reporter. Write errors are dropped: the
// console is best effort and must not disturb the periodic loop.
func (c *Console) Report(delay, task time.Duration, exceeded bool) {
	stamp := c.now().Format(timeLayout)
	body := fmt.Sprintf("delay: %.4fms task: %.4fms", millis(delay), millis(task))
	if exceeded {
		_, _ = fmt.Fprintf(c.out, "%s[%s] %s\n", clearLine, stamp, c.anomaly.Sprint(body))
		return
	}
	_, _ = fmt.Fprintf(c.out, "%s[%s] %s", clearLine, stamp, body)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
