package lan

import (
	"context"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fractalrender/internal/block"
	"fractalrender/internal/colour"
	"fractalrender/internal/errs"
	"fractalrender/internal/logx"
	"fractalrender/internal/plotctx"
	"fractalrender/internal/sink"
)

var log = logx.For("lan.master")

// Master is the LAN Dispatcher (C8): it holds one persistent connection
// per worker for the whole render, issues rows in ascending order to
// whichever worker next asks, and assembles returned rows into bands it
// hands to the Image Sink - the same sink a local render would use.
type Master struct {
	conns []net.Conn
}

// DialWorkers connects to every address in order, in the order workers
// will be addressed for the life of the render. A connection failure tears
// down any connections already made.
func DialWorkers(addrs []string, timeout time.Duration) (*Master, error) {
	conns := make([]net.Conn, 0, len(addrs))
	for _, addr := range addrs {
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			for _, c := range conns {
				c.Close()
			}
			return nil, errs.Wrap(errs.SocketWrite, "could not connect to worker "+addr, err)
		}
		conns = append(conns, conn)
	}
	return &Master{conns: conns}, nil
}

// Close releases every worker connection.
func (m *Master) Close() error {
	var first error
	for _, c := range m.conns {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// handshake sends the plot context descriptor to every worker and waits
// for its one-byte acknowledgement before any row is dispatched.
func (m *Master) handshake(pctx *plotctx.PlotContext) error {
	desc := encodeDescriptor(pctx)
	for _, conn := range m.conns {
		if err := writeFrame(conn, desc); err != nil {
			return err
		}
		_, eof, err := readFrame(conn, 1)
		if eof {
			return errs.New(errs.PeerClosed, "worker closed connection during handshake")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// RenderDistributed renders pctx across this Master's workers and writes
// the result to sk, banding rows under the same memory budget a local
// render would use. pctx must already be finalized.
func (m *Master) RenderDistributed(ctx context.Context, pctx *plotctx.PlotContext, sk *sink.Sink, budget uint64) error {
	if err := m.handshake(pctx); err != nil {
		return err
	}

	mapper := colour.New(pctx.Scheme, pctx.SmoothFactor)
	mgr, err := block.New(pctx.Width, pctx.Height, mapper.Depth(), budget)
	if err != nil {
		return err
	}
	arr := mgr.NewArray()

	d := newDispatcher(pctx.Height)
	c := newBandCollector()

	var g errgroup.Group
	for _, conn := range m.conns {
		conn := conn
		g.Go(func() error {
			if err := m.serve(conn, mgr.RowBytes(), d, c); err != nil {
				d.finish()
				c.fail(err)
				return err
			}
			return nil
		})
	}

	log.Info("starting distributed render", "workers", len(m.conns), "bands", len(mgr.Bands()))

	rowOffset := 0
	var bandErr error
	for id, rows := range mgr.Bands() {
		band := arr.Band(rows)
		c.startBand(rowOffset, rows, func(local int, data []byte) {
			copy(arr.Row(band, local), data)
		})
		d.openBand(rowOffset + rows)

		if err := c.wait(); err != nil {
			bandErr = err
			break
		}
		if err := sk.WriteBand(band, rows); err != nil {
			bandErr = err
			break
		}
		log.Debug("wrote band", "band", id, "rows", rows)
		rowOffset += rows
	}

	d.finish()
	joinErr := g.Wait()

	if bandErr != nil {
		return bandErr
	}
	if joinErr != nil {
		return errs.Wrap(errs.ThreadJoin, "worker connection failed", joinErr)
	}

	log.Info("distributed render complete", "rows", rowOffset)
	return nil
}

// serve runs the row-dispatch loop (§6) for a single worker connection for
// the whole render: wait for a ready ping, hand out the next row the
// dispatcher will give up, read the computed row back, deliver it to the
// band collector, and acknowledge. Returns nil on a clean end-of-work
// (dispatcher exhausted, or the worker closed its connection between
// rows); any other outcome is an error that aborts the render.
func (m *Master) serve(conn net.Conn, rowSize int, d *dispatcher, c *bandCollector) error {
	defer conn.Close()
	for {
		_, eof, err := readFrame(conn, readyPingSize)
		if eof {
			return nil
		}
		if err != nil {
			return err
		}

		row, ok := d.next()
		if !ok {
			return nil
		}

		if err := writeFrame(conn, encodeRowNumber(row, rowRequestSize)); err != nil {
			return err
		}

		frame, eof, err := readFrame(conn, rowPrefixSize+rowSize)
		if eof {
			return errs.New(errs.PeerClosed, "worker closed connection mid-row")
		}
		if err != nil {
			return err
		}

		gotRow, err := decodeRowNumber(frame[:rowPrefixSize])
		if err != nil {
			return err
		}
		c.deliver(gotRow, frame[rowPrefixSize:])

		if err := writeFrame(conn, []byte{1}); err != nil {
			return err
		}
	}
}

// bandCollector gathers returned rows into the coordinator's currently
// resident band and reports when that band is complete.
type bandCollector struct {
	mu        sync.Mutex
	cond      *sync.Cond
	onRow     func(local int, data []byte)
	remaining int
	rowOffset int
	rowEnd    int
	err       error
}

func newBandCollector() *bandCollector {
	c := &bandCollector{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// startBand resets the collector for a new band spanning global rows
// [offset, offset+rows).
func (c *bandCollector) startBand(offset, rows int, onRow func(local int, data []byte)) {
	c.mu.Lock()
	c.rowOffset = offset
	c.rowEnd = offset + rows
	c.remaining = rows
	c.onRow = onRow
	c.mu.Unlock()
}

// deliver places one returned row's bytes via the band's onRow callback.
// A row outside the current band's range is ignored - it cannot happen
// given the dispatcher's band-gated window, but deliver stays defensive
// rather than panicking on a malformed peer.
func (c *bandCollector) deliver(globalRow int, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if globalRow < c.rowOffset || globalRow >= c.rowEnd {
		return
	}
	c.onRow(globalRow-c.rowOffset, data)
	c.remaining--
	if c.remaining == 0 {
		c.cond.Broadcast()
	}
}

// fail records the first worker error and releases any coordinator
// currently blocked in wait.
func (c *bandCollector) fail(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.remaining = 0
	c.mu.Unlock()
	c.cond.Broadcast()
}

// wait blocks until the current band's rows have all been delivered, or a
// worker has failed.
func (c *bandCollector) wait() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.remaining > 0 && c.err == nil {
		c.cond.Wait()
	}
	return c.err
}
