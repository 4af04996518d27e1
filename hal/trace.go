package hal

import (
	"fmt"
	"io"
	"sync"
)

// TraceMaxLength bounds one trace line, terminator included.
const TraceMaxLength = 256

const traceOverflowMark = "~\n"

// Tracer writes formatted trace lines to a debug channel.
type Tracer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTracer returns a Tracer writing to w. A nil w discards output.
func NewTracer(w io.Writer) *Tracer {
	if w == nil {
		w = io.Discard
	}
	return &Tracer{w: w}
}

// Printf formats and writes one trace line. Output longer than
// TraceMaxLength-1 bytes is cut and ends with "~\n".
func (t *Tracer) Printf(format string, args ...any) {
	if format == "" {
		return
	}

	s := fmt.Sprintf(format, args...)
	if len(s) == 0 {
		return
	}
	if len(s) > TraceMaxLength-1 {
		s = s[:TraceMaxLength-1-len(traceOverflowMark)] + traceOverflowMark
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.w, s)
}
