// Package lan is the distributed render path: the LAN Dispatcher (C8, the
// master) and the Worker Agent (C9). The wire protocol is a fixed-width,
// unframed byte format over a raw net.Conn - deliberately not gRPC or any
// other RPC framework, since the row-dispatch loop's byte layout (a 1-byte
// ready ping, a 10-byte ASCII row number, a 6-byte ASCII row-number prefix)
// is itself part of what this package implements, not an implementation
// detail a codec could hide.
package lan

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"net"
	"strconv"
	"strings"

	"fractalrender/internal/errs"
	"fractalrender/internal/plotctx"
)

const (
	// readyPingSize is the worker's "I am ready for a row" signal.
	readyPingSize = 1
	// rowRequestSize is the master's reply: an ASCII decimal row number,
	// left-aligned and NUL-padded, or a connection close for end-of-work.
	rowRequestSize = 10
	// rowPrefixSize is the worker's row-number prefix on its reply.
	rowPrefixSize = 6
	// ackSize is the master's trailing acknowledgement of a received row.
	ackSize = 1
)

// descriptorWire is the fixed-width, big-endian encoding of the fields of a
// plotctx.PlotContext a worker needs to render rows on the master's behalf.
// Sent once, immediately after the worker's TCP connection is accepted.
type descriptorWire struct {
	Family       int32
	Precision    int32
	Scheme       int32
	MPBits       uint32
	Width        int32
	Height       int32
	IterationCap uint64
	MinReal      float64
	MinImag      float64
	MaxReal      float64
	MaxImag      float64
	CReal        float64
	CImag        float64
	SmoothFactor float64
}

const descriptorWireSize = 4*6 + 8 + 8*7

func encodeDescriptor(p *plotctx.PlotContext) []byte {
	d := descriptorWire{
		Family:       int32(p.Family),
		Precision:    int32(p.Precision),
		Scheme:       int32(p.Scheme),
		MPBits:       uint32(p.MPBits),
		Width:        int32(p.Width),
		Height:       int32(p.Height),
		IterationCap: p.IterationCap,
		MinReal:      real(p.Min),
		MinImag:      imag(p.Min),
		MaxReal:      real(p.Max),
		MaxImag:      imag(p.Max),
		CReal:        real(p.C),
		CImag:        imag(p.C),
		SmoothFactor: p.SmoothFactor,
	}
	buf := make([]byte, 0, descriptorWireSize)
	w := &byteAppender{buf: buf}
	w.i32(d.Family)
	w.i32(d.Precision)
	w.i32(d.Scheme)
	w.u32(d.MPBits)
	w.i32(d.Width)
	w.i32(d.Height)
	w.u64(d.IterationCap)
	w.f64(d.MinReal)
	w.f64(d.MinImag)
	w.f64(d.MaxReal)
	w.f64(d.MaxImag)
	w.f64(d.CReal)
	w.f64(d.CImag)
	w.f64(d.SmoothFactor)
	return w.buf
}

func decodeDescriptor(buf []byte) (*plotctx.PlotContext, error) {
	if len(buf) != descriptorWireSize {
		return nil, errs.New(errs.ShortIO, "handshake descriptor has the wrong length")
	}
	r := &byteReader{buf: buf}
	p := &plotctx.PlotContext{
		Family:       plotctx.Family(r.i32()),
		Precision:    plotctx.Precision(r.i32()),
		Scheme:       plotctx.SchemeKind(r.i32()),
		MPBits:       uint(r.u32()),
		Width:        int(r.i32()),
		Height:       int(r.i32()),
		IterationCap: r.u64(),
	}
	minReal, minImag := r.f64(), r.f64()
	maxReal, maxImag := r.f64(), r.f64()
	cReal, cImag := r.f64(), r.f64()
	p.Min = complex(minReal, minImag)
	p.Max = complex(maxReal, maxImag)
	p.C = complex(cReal, cImag)
	p.SmoothFactor = r.f64()
	p.Depth = plotctxDepth(p.Scheme)
	return p, nil
}

func plotctxDepth(s plotctx.SchemeKind) plotctx.BitDepth {
	switch s {
	case plotctx.SchemeBlackWhite, plotctx.SchemeWhiteBlack:
		return plotctx.Depth1
	case plotctx.SchemeGreyscale:
		return plotctx.Depth8
	case plotctx.SchemeASCII:
		return plotctx.DepthASCII
	default:
		return plotctx.Depth24
	}
}

type byteAppender struct{ buf []byte }

func (w *byteAppender) i32(v int32) { w.u32(uint32(v)) }
func (w *byteAppender) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *byteAppender) u64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *byteAppender) f64(v float64) { w.u64(math.Float64bits(v)) }

type byteReader struct {
	buf []byte
	off int
}

func (r *byteReader) i32() int32 { return int32(r.u32()) }
func (r *byteReader) u32() uint32 {
	v := binary.BigEndian.Uint32(r.buf[r.off : r.off+4])
	r.off += 4
	return v
}
func (r *byteReader) u64() uint64 {
	v := binary.BigEndian.Uint64(r.buf[r.off : r.off+8])
	r.off += 8
	return v
}
func (r *byteReader) f64() float64 { return math.Float64frombits(r.u64()) }

// encodeRowNumber renders row as ASCII decimal, left-aligned and
// NUL-padded to width bytes, per the row-dispatch wire format.
func encodeRowNumber(row, width int) []byte {
	s := strconv.Itoa(row)
	if len(s) > width {
		panic(fmt.Sprintf("row number %d does not fit in %d bytes", row, width))
	}
	buf := make([]byte, width)
	copy(buf, s)
	return buf
}

// decodeRowNumber parses a NUL-padded ASCII decimal row number.
func decodeRowNumber(buf []byte) (int, error) {
	s := strings.TrimRight(string(buf), "\x00")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.Wrap(errs.ShortIO, "malformed row number on the wire", err)
	}
	return n, nil
}

// readFrame reads exactly n bytes from conn. A read that returns zero bytes
// because the peer closed the connection before sending anything is
// reported as (nil, true, nil): end-of-work, not an error. Any other short
// read is SHORT_IO; an error-free read shorter than n bytes cannot happen
// over io.ReadFull, which only returns short with a non-nil error.
func readFrame(conn net.Conn, n int) (frame []byte, eof bool, err error) {
	buf := make([]byte, n)
	read, rerr := io.ReadFull(conn, buf)
	if read == 0 && rerr == io.EOF {
		return nil, true, nil
	}
	if rerr != nil {
		return nil, false, errs.Wrap(errs.ShortIO, "short read on LAN connection", rerr)
	}
	return buf, false, nil
}

func writeFrame(conn net.Conn, buf []byte) error {
	if _, err := conn.Write(buf); err != nil {
		return errs.Wrap(errs.SocketWrite, "write failed on LAN connection", err)
	}
	return nil
}
