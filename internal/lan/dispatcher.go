package lan

import "sync"

// dispatcher hands out row indices to whichever worker goroutine asks for
// one next, strictly ascending, but never further ahead than the current
// band's row range - the Array Context buffer those rows render into is
// reused across bands, so a row from band N+1 cannot be assigned until
// band N's rows have all been returned and flushed. Workers are not aware
// of band boundaries; a goroutine that asks for a row while the current
// band is exhausted simply blocks until the coordinator advances the
// window (or the whole render finishes).
type dispatcher struct {
	mu        sync.Mutex
	cond      *sync.Cond
	height    int
	nextRow   int
	bandLimit int
	done      bool
}

func newDispatcher(height int) *dispatcher {
	d := &dispatcher{height: height}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// openBand advances the dispatch window to allow rows up to limit
// (exclusive) to be handed out.
func (d *dispatcher) openBand(limit int) {
	d.mu.Lock()
	d.bandLimit = limit
	d.mu.Unlock()
	d.cond.Broadcast()
}

// next blocks until a row is available under the current band window, or
// returns ok=false once finish has been called and no more rows remain.
func (d *dispatcher) next() (row int, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for {
		if d.nextRow < d.bandLimit {
			row = d.nextRow
			d.nextRow++
			return row, true
		}
		if d.done {
			return 0, false
		}
		d.cond.Wait()
	}
}

// finish marks the whole render done: every worker goroutine currently
// blocked in next (or that calls it subsequently) is released with
// ok=false.
func (d *dispatcher) finish() {
	d.mu.Lock()
	d.done = true
	d.mu.Unlock()
	d.cond.Broadcast()
}
