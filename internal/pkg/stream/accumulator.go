package stream

import (
	"sync"

	"github.com/ibm-mas/image-set-configs/internal/pkg/classifier"
)

// Accumulator collects the last progress-total signal seen across both
// output streams. Both drain goroutines may record into it, so all access
// is mutex-guarded. Last write wins: oc-mirror may print intermediate
// totals before the final one.
type Accumulator struct {
	mu       sync.Mutex
	mirrored int
	images   int
	seen     bool
}

// Record stores a progress-total signal, replacing any earlier one.
func (a *Accumulator) Record(sig classifier.ProgressSignal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mirrored = sig.Completed
	a.images = sig.Total
	a.seen = true
}

// Snapshot returns the captured counts and whether any signal was seen at
// all. A zero count with seen=false means the output was unparseable,
// which callers must distinguish from a reported zero.
func (a *Accumulator) Snapshot() (mirrored, images int, seen bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mirrored, a.images, a.seen
}
