package stream

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clog "github.com/ibm-mas/image-set-configs/internal/pkg/log"
)

// recordingSink captures classified lines per level. Both drain goroutines
// write into it, so it locks.
type recordingSink struct {
	mu         sync.Mutex
	debugLines []string
	errLines   []string
}

func (s *recordingSink) Debug(msg string, val ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debugLines = append(s.debugLines, fmt.Sprintf(msg, val...))
}

func (s *recordingSink) Error(msg string, val ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errLines = append(s.errLines, fmt.Sprintf(msg, val...))
}

func (s *recordingSink) Info(msg string, val ...interface{})  {}
func (s *recordingSink) Trace(msg string, val ...interface{}) {}
func (s *recordingSink) Warn(msg string, val ...interface{})  {}
func (s *recordingSink) Level(level string)                   {}

func (s *recordingSink) debug() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.debugLines...)
}

func (s *recordingSink) errs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.errLines...)
}

func TestCoordinatorDrain(t *testing.T) {
	t.Run("Testing Coordinator - ten thousand interleaved lines: should keep per-stream order and drop nothing", func(t *testing.T) {
		const perStream = 5000
		var outBuf, errBuf strings.Builder
		for i := 0; i < perStream; i++ {
			fmt.Fprintf(&outBuf, "out line %06d\n", i)
			fmt.Fprintf(&errBuf, "err line %06d\n", i)
		}

		sink := &recordingSink{}
		acc := &Accumulator{}
		c := NewCoordinator(clog.New("error"), sink, acc, nil)
		c.Drain(strings.NewReader(outBuf.String()), strings.NewReader(errBuf.String()))

		debug := sink.debug()
		errs := sink.errs()
		require.Len(t, debug, perStream)
		require.Len(t, errs, perStream)
		for i := 0; i < perStream; i++ {
			assert.Equal(t, fmt.Sprintf("out line %06d", i), debug[i])
			assert.Equal(t, fmt.Sprintf("err line %06d", i), errs[i])
		}
	})

	t.Run("Testing Coordinator - progress signals: should record last write from either stream", func(t *testing.T) {
		stdout := "10 / 48 additional images mirrored successfully\n"
		stderr := "48 / 48 additional images mirrored successfully\n"

		sink := &recordingSink{}
		acc := &Accumulator{}
		c := NewCoordinator(clog.New("error"), sink, acc, nil)
		c.Drain(strings.NewReader(stdout), strings.NewReader(stderr))

		mirrored, images, seen := acc.Snapshot()
		assert.True(t, seen)
		assert.Equal(t, 48, images)
		// Either stream may land last; both candidate values are valid
		// final states, but the count must come from a real signal.
		assert.Contains(t, []int{10, 48}, mirrored)
	})

	t.Run("Testing Coordinator - per-item ticks: should advance once per success line on either stream", func(t *testing.T) {
		var outBuf, errBuf strings.Builder
		for i := 0; i < 30; i++ {
			fmt.Fprintf(&outBuf, "Success copying docker://cp.icr.io/img%d ➡️  cache\n", i)
		}
		for i := 0; i < 12; i++ {
			fmt.Fprintf(&errBuf, "Success copying docker://cp.icr.io/err%d ➡️  cache\n", i)
		}

		var ticks atomic.Int64
		sink := &recordingSink{}
		c := NewCoordinator(clog.New("error"), sink, &Accumulator{}, func() { ticks.Add(1) })
		c.Drain(strings.NewReader(outBuf.String()), strings.NewReader(errBuf.String()))

		assert.Equal(t, int64(42), ticks.Load())
	})

	t.Run("Testing Coordinator - noise filtering: should suppress banners but still scan them", func(t *testing.T) {
		stdout := "👋 Hello, welcome to oc-mirror\n" +
			"Hello, welcome to oc-mirror 5 / 5 additional images mirrored successfully\n" +
			"real work line\n"

		sink := &recordingSink{}
		acc := &Accumulator{}
		c := NewCoordinator(clog.New("error"), sink, acc, nil)
		c.Drain(strings.NewReader(stdout), strings.NewReader(""))

		assert.Equal(t, []string{"real work line"}, sink.debug())
		mirrored, images, seen := acc.Snapshot()
		assert.True(t, seen)
		assert.Equal(t, 5, mirrored)
		assert.Equal(t, 5, images)
	})

	t.Run("Testing Coordinator - stream read failure: should abandon that stream and finish the other", func(t *testing.T) {
		failing := io.MultiReader(
			strings.NewReader("before the failure\n"),
			&failingReader{err: errors.New("input/output error")},
		)
		var errBuf strings.Builder
		for i := 0; i < 100; i++ {
			fmt.Fprintf(&errBuf, "healthy line %d\n", i)
		}

		sink := &recordingSink{}
		c := NewCoordinator(clog.New("error"), sink, &Accumulator{}, nil)
		c.Drain(failing, strings.NewReader(errBuf.String()))

		assert.Equal(t, []string{"before the failure"}, sink.debug())
		assert.Len(t, sink.errs(), 100)
	})
}

type failingReader struct {
	err error
}

func (r *failingReader) Read(p []byte) (int, error) {
	return 0, r.err
}
