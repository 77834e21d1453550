// Package sink is the Image Sink (C7): it writes the one-time PNM header,
// appends bands in order as they complete, and closes the destination.
package sink

import (
	"fmt"
	"io"
	"os"

	"fractalrender/internal/errs"
	"fractalrender/internal/plotctx"
)

// Sink writes a render's output, one band at a time, to a file or any
// other io.Writer (a terminal, for ASCII output).
type Sink struct {
	w             io.Writer
	closer        io.Closer
	width, height int
	depth         plotctx.BitDepth
	headerWritten bool
}

// Open creates (truncating) path in binary mode and returns a Sink writing
// to it.
func Open(path string, width, height int, depth plotctx.BitDepth) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errs.Wrap(errs.FileOpen, "could not open image file", err)
	}
	return &Sink{w: f, closer: f, width: width, height: height, depth: depth}, nil
}

// NewWriter builds a Sink over an already-open destination (e.g. stdout),
// which the caller remains responsible for closing.
func NewWriter(w io.Writer, width, height int, depth plotctx.BitDepth) *Sink {
	return &Sink{w: w, width: width, height: height, depth: depth}
}

// header returns this sink's PNM header. ASCII output has no header.
func (s *Sink) header() string {
	switch s.depth {
	case plotctx.Depth1:
		return pnmHeader("P4", s.width, s.height, false)
	case plotctx.Depth8:
		return pnmHeader("P5", s.width, s.height, true)
	case plotctx.Depth24:
		return pnmHeader("P6", s.width, s.height, true)
	default:
		return ""
	}
}

func pnmHeader(magic string, width, height int, maxval bool) string {
	if maxval {
		return fmt.Sprintf("%s %d %d 255 ", magic, width, height)
	}
	return fmt.Sprintf("%s %d %d ", magic, width, height)
}

// WriteHeader writes the one-time PNM header. Called automatically by the
// first WriteBand if not called explicitly.
func (s *Sink) WriteHeader() error {
	if s.headerWritten {
		return nil
	}
	if h := s.header(); h != "" {
		if _, err := io.WriteString(s.w, h); err != nil {
			return errs.Wrap(errs.FileWrite, "could not write image header", err)
		}
	}
	s.headerWritten = true
	return nil
}

// WriteBand appends one band's raw bytes, in order. rows is the number of
// image rows the band contains (it may be the final, shorter, remainder
// band). For ASCII output each row is written followed by a line-feed
// instead of as a single raw blob.
func (s *Sink) WriteBand(band []byte, rows int) error {
	if err := s.WriteHeader(); err != nil {
		return err
	}

	if s.depth != plotctx.DepthASCII {
		if _, err := s.w.Write(band); err != nil {
			return errs.Wrap(errs.FileWrite, "could not write image band", err)
		}
		return nil
	}

	for i := 0; i < rows; i++ {
		row := band[i*s.width : (i+1)*s.width]
		if _, err := s.w.Write(row); err != nil {
			return errs.Wrap(errs.FileWrite, "could not write image row", err)
		}
		if _, err := s.w.Write([]byte{'\n'}); err != nil {
			return errs.Wrap(errs.FileWrite, "could not write line terminator", err)
		}
	}
	return nil
}

// Close flushes and releases the underlying handle, if this Sink owns one.
func (s *Sink) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return errs.Wrap(errs.FileClose, "could not close image file", err)
	}
	return nil
}
