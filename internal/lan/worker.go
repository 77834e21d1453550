package lan

import (
	"context"
	"net"

	"fractalrender/internal/block"
	"fractalrender/internal/colour"
	"fractalrender/internal/errs"
	"fractalrender/internal/kernel"
	"fractalrender/internal/logx"
	"fractalrender/internal/plotctx"
	"fractalrender/internal/pool"
	"fractalrender/internal/precision"
)

var workerLog = logx.For("lan.worker")

// Worker is the Worker Agent (C9): it listens for a master's connection,
// accepts the plot context the master declares during handshake - rather
// than assuming its own default precision, the defect the original
// single-precision-only worker had - and renders whichever rows the
// master asks for, one at a time, splitting that row's columns across
// workerThreads goroutines with the same Thread Pool (C6) a local render
// uses for whole bands.
type Worker struct {
	workerThreads int
}

// NewWorker builds a Worker Agent that fans a single row's columns across
// workerThreads goroutines.
func NewWorker(workerThreads int) *Worker {
	if workerThreads < 1 {
		workerThreads = 1
	}
	return &Worker{workerThreads: workerThreads}
}

// ListenAndServe accepts master connections on addr, serving one render
// session per connection, until ctx is canceled.
func (w *Worker) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errs.Wrap(errs.SocketRead, "could not listen for master connections", err)
	}
	defer ln.Close()

	workerLog.Info("listening for master connections", "addr", ln.Addr())
	return w.Serve(ctx, ln)
}

// Serve accepts master connections on an already-open listener, serving
// one render session per connection, until ctx is canceled or the
// listener is closed. Split out from ListenAndServe so tests (and callers
// that want an ephemeral port) can control the listener directly.
func (w *Worker) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return errs.Wrap(errs.SocketRead, "accept failed", err)
			}
		}
		workerLog.Info("accepted master connection", "remote", conn.RemoteAddr())
		if err := w.serveMaster(ctx, conn); err != nil {
			workerLog.Error("render session ended", "error", err)
		}
		conn.Close()
	}
}

// serveMaster runs one render session on conn: the handshake, then the
// row-request loop (§6) until the master signals end-of-work by closing
// the connection between rows.
func (w *Worker) serveMaster(ctx context.Context, conn net.Conn) error {
	frame, eof, err := readFrame(conn, descriptorWireSize)
	if eof {
		return errs.New(errs.PeerClosed, "master closed connection before handshake")
	}
	if err != nil {
		return err
	}
	pctx, err := decodeDescriptor(frame)
	if err != nil {
		return err
	}
	if err := writeFrame(conn, []byte{1}); err != nil {
		return err
	}

	realization, err := precision.New(pctx.Precision, pctx.MPBits)
	if err != nil {
		return err
	}
	mapper := colour.New(pctx.Scheme, pctx.SmoothFactor)
	coords := plotctx.NewCoordinateMap(pctx)
	rowSize := block.RowBytesFor(pctx.Width, mapper.Depth())

	workerLog.Info("handshake complete", "width", pctx.Width, "height", pctx.Height,
		"precision", pctx.Precision.String())

	for {
		if err := writeFrame(conn, []byte{1}); err != nil {
			return err
		}

		reqFrame, eof, err := readFrame(conn, rowRequestSize)
		if eof {
			return nil
		}
		if err != nil {
			return err
		}
		row, err := decodeRowNumber(reqFrame)
		if err != nil {
			return err
		}

		pixels := make([]byte, rowSize)
		rowImag := coords.RowImag(row)
		// A 1-bit row packs 8 pixels per byte, so each goroutine takes whole
		// 8-column groups and no two goroutines write the same byte.
		group := 1
		if mapper.Depth() == plotctx.Depth1 {
			group = 8
		}
		units := (pctx.Width + group - 1) / group
		err = pool.RunRow(ctx, w.workerThreads, units, func(g int) error {
			for x := g * group; x < (g+1)*group && x < pctx.Width; x++ {
				z := complex(coords.PixelReal(x), rowImag)
				res := kernel.Iterate(realization, pctx.Family, z, pctx.C, pctx.IterationCap)
				mapper.WritePixel(pixels, x, res)
			}
			return nil
		})
		if err != nil {
			return err
		}

		reply := append(encodeRowNumber(row, rowPrefixSize), pixels...)
		if err := writeFrame(conn, reply); err != nil {
			return err
		}

		_, eof, err = readFrame(conn, ackSize)
		if eof {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
