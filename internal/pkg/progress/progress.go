package progress

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/ibm-mas/image-set-configs/internal/pkg/emoji"
	"github.com/ibm-mas/image-set-configs/internal/pkg/spinners"
)

// State is the terminal status rendered next to a package's bar title.
type State int32

const (
	StateRunning State = iota
	StateSuccess
	StatePartial
	StateFailed
	StateSkipped
)

const (
	titleWidth = 50
	barWidth   = 20
)

// Reporter is a live per-package progress indicator. Advance is called
// once per observed image completion; Finalize seals the bar with a
// status glyph. Both are safe to call from the drain goroutines, and
// Advance tolerates more calls than the expected total.
type Reporter interface {
	Advance()
	Finalize(state State)
}

// BarReporter renders through an mpb progress container.
type BarReporter struct {
	p       *mpb.Progress
	bar     *mpb.Bar
	total   int64
	mu      sync.Mutex
	current int64
	state   atomic.Int32
}

// NewBar - total is the pre-flight image count from the configuration
// file (not the count the tool later reports; the two are independent).
// Pass io.Discard as out when not attached to a terminal.
func NewBar(total int, label string, out io.Writer) *BarReporter {
	o := &BarReporter{
		p:     mpb.New(mpb.WithOutput(out), mpb.WithWidth(barWidth)),
		total: int64(total),
	}
	o.state.Store(int32(StateRunning))

	title := fmt.Sprintf("%-*s", titleWidth, label)
	o.bar = o.p.AddBar(int64(total),
		spinners.BarFillerClearOnAbort(),
		mpb.PrependDecorators(
			decor.Name(title),
			decor.Any(func(s decor.Statistics) string {
				return o.glyph() + " "
			}),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("%d / %d"),
		),
	)
	return o
}

// Advance - one image done. Calls beyond the expected total are ignored
// rather than overflowing the bar; the tool's own final report is the
// authoritative count.
func (o *BarReporter) Advance() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current >= o.total {
		return
	}
	o.current++
	o.bar.Increment()
}

// Finalize seals the bar with the given state's glyph and waits for the
// container to flush its last frame. A failed bar drops its filler so the
// status line reads cleanly next to the cross mark.
func (o *BarReporter) Finalize(state State) {
	o.state.Store(int32(state))
	if state == StateFailed {
		o.bar.Abort(false)
	} else {
		o.bar.SetTotal(o.total, true)
	}
	o.p.Wait()
}

func (o *BarReporter) glyph() string {
	switch State(o.state.Load()) {
	case StateSuccess:
		return emoji.CheckMarkButton
	case StatePartial:
		return emoji.Warning
	case StateFailed:
		return emoji.CrossMark
	case StateSkipped:
		return emoji.NextTrackButton
	default:
		return emoji.HourglassNotDone
	}
}

// NoopReporter satisfies Reporter when no indicator is wanted.
type NoopReporter struct{}

func (NoopReporter) Advance()       {}
func (NoopReporter) Finalize(State) {}

// Spinner is an indeterminate indicator for operations without a known
// total, such as a CASE manifest download.
type Spinner struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

func NewSpinner(label string, out io.Writer) *Spinner {
	o := &Spinner{
		p: mpb.New(mpb.WithOutput(out), mpb.WithWidth(barWidth)),
	}
	o.bar = o.p.New(1,
		spinners.SpinnerFiller(),
		spinners.BarFillerClearOnAbort(),
		mpb.PrependDecorators(decor.Name(fmt.Sprintf("%-*s", titleWidth, label))),
		mpb.AppendDecorators(spinners.EmptyDecorator()),
	)
	return o
}

// Done completes the spinner; ok=false aborts it instead.
func (o *Spinner) Done(ok bool) {
	if ok {
		o.bar.Increment()
	} else {
		o.bar.Abort(false)
	}
	o.p.Wait()
}
