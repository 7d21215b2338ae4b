package stream

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ibm-mas/image-set-configs/internal/pkg/classifier"
	clog "github.com/ibm-mas/image-set-configs/internal/pkg/log"
)

// maxLineSize bounds the scanner buffer. oc-mirror can emit very long
// image reference lines but nothing near this.
const maxLineSize = 1024 * 1024

// TickFunc is invoked once per observed per-image completion signal.
type TickFunc func()

// Coordinator drains a child process's stdout and stderr concurrently,
// classifying every line, recording progress signals into the shared
// Accumulator and forwarding non-noise lines to the transcript sink.
// One goroutine per stream: each blocks on its own pipe so neither OS
// buffer can fill while the other is being read.
type Coordinator struct {
	Log  clog.PluggableLoggerInterface
	Sink clog.PluggableLoggerInterface
	Acc  *Accumulator
	Tick TickFunc
}

// NewCoordinator - log receives coordination diagnostics, sink receives the
// classified transcript (stdout lines at debug, stderr lines at error).
func NewCoordinator(log, sink clog.PluggableLoggerInterface, acc *Accumulator, tick TickFunc) *Coordinator {
	return &Coordinator{Log: log, Sink: sink, Acc: acc, Tick: tick}
}

// Drain consumes both streams until end-of-stream. It returns only after
// both are exhausted. Lines within one stream keep their order; the two
// streams interleave freely. A read failure on one stream is logged and
// abandons that stream only.
func (o *Coordinator) Drain(stdout, stderr io.Reader) {
	g := errgroup.Group{}
	g.Go(func() error {
		o.drainOne(stdout, classifier.OriginStdout)
		return nil
	})
	g.Go(func() error {
		o.drainOne(stderr, classifier.OriginStderr)
		return nil
	})
	// Drain errors are handled per stream, never propagated.
	_ = g.Wait()
}

func (o *Coordinator) drainOne(r io.Reader, origin classifier.StreamOrigin) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		o.handleLine(strings.TrimRight(scanner.Text(), "\r"), origin)
	}
	if err := scanner.Err(); err != nil && !ignorableReadError(err) {
		o.Log.Error("reading %s: %v", originName(origin), err)
	}
}

func (o *Coordinator) handleLine(line string, origin classifier.StreamOrigin) {
	c := classifier.Classify(line, origin)

	if c.Progress != nil {
		o.Acc.Record(*c.Progress)
		o.Log.Debug("captured result: %d/%d", c.Progress.Completed, c.Progress.Total)
	}
	if c.ItemDone && o.Tick != nil {
		o.Tick()
	}
	if c.IsNoise {
		return
	}
	if origin == classifier.OriginStdout {
		o.Sink.Debug("%s", c.DisplayText)
	} else {
		o.Sink.Error("%s", c.DisplayText)
	}
}

// ignorableReadError reports whether a scan error is just the pipe going
// away as the child exits, rather than a real I/O failure.
func ignorableReadError(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe)
}

func originName(origin classifier.StreamOrigin) string {
	if origin == classifier.OriginStdout {
		return "stdout"
	}
	return "stderr"
}
