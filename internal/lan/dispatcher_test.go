package lan

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherIssuesRowsAscendingWithinBand(t *testing.T) {
	d := newDispatcher(10)
	d.openBand(4)

	var got []int
	for {
		row, ok := d.next()
		if !ok {
			break
		}
		got = append(got, row)
		if len(got) == 4 {
			d.finish()
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3}, got)
}

func TestDispatcherBlocksUntilBandOpens(t *testing.T) {
	d := newDispatcher(10)

	done := make(chan int, 1)
	go func() {
		row, ok := d.next()
		if ok {
			done <- row
		} else {
			done <- -1
		}
	}()

	d.openBand(1)
	assert.Equal(t, 0, <-done)
}

func TestDispatcherConcurrentNextNeverDuplicates(t *testing.T) {
	const height = 500
	d := newDispatcher(height)
	d.openBand(height)

	var mu sync.Mutex
	seen := make(map[int]bool, height)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				row, ok := d.next()
				if !ok {
					return
				}
				mu.Lock()
				assert.False(t, seen[row], "row %d assigned twice", row)
				seen[row] = true
				mu.Unlock()
			}
		}()
	}

	go func() {
		for {
			mu.Lock()
			n := len(seen)
			mu.Unlock()
			if n == height {
				d.finish()
				return
			}
		}
	}()

	wg.Wait()
	assert.Len(t, seen, height)
}
