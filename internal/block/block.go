// Package block is the Block Memory Manager (C5): it splits an image into
// row-bands sized to fit a memory budget, and owns the single reusable
// pixel buffer ("array context") those bands are rendered into.
package block

import (
	"math"

	"fractalrender/internal/errs"
	"fractalrender/internal/plotctx"
)

// Manager describes the band decomposition for one render.
type Manager struct {
	Width      int
	Height     int
	Depth      plotctx.BitDepth
	BandHeight int // R: rows per full band
	BandCount  int // floor(height / R)
	Remainder  int // height mod R; if nonzero, one final short band
}

// New computes the band decomposition for (width, height, depth) under a
// memory budget of budget bytes. It fails with errs.OutOfBudget if the
// budget cannot hold even a single row.
func New(width, height int, depth plotctx.BitDepth, budget uint64) (*Manager, error) {
	m := &Manager{Width: width, Height: height, Depth: depth}

	rowBytes := m.rowBytes(1)
	if rowBytes == 0 {
		rowBytes = 1
	}

	maxRows := int(budget / uint64(rowBytes))
	if maxRows < 1 {
		return nil, errs.New(errs.OutOfBudget, "memory budget cannot hold one image row")
	}
	if maxRows > height {
		maxRows = height
	}

	m.BandHeight = maxRows
	m.BandCount = height / maxRows
	m.Remainder = height % maxRows
	return m, nil
}

// rowBytes returns the byte count needed for `rows` rows, rounding each
// 1-bit row up to a whole byte as PBM requires.
func (m *Manager) rowBytes(rows int) int {
	return RowBytesFor(m.Width, m.Depth) * rows
}

// RowBytesFor returns the byte count of a single row of the given width at
// the given bit depth, rounding a 1-bit row up to a whole byte as PBM
// requires. Shared by the Block Memory Manager and the Worker Agent, which
// must size its row buffer the same way without constructing a Manager.
func RowBytesFor(width int, depth plotctx.BitDepth) int {
	if depth == plotctx.Depth1 {
		return (width + 7) / 8
	}
	return int(math.Ceil(float64(width) * depth.BytesPerPixel()))
}

// RowBytes is the byte count of a single row.
func (m *Manager) RowBytes() int { return m.rowBytes(1) }

// Bands returns the row-count of each band the image decomposes into, in
// band-id order: BandCount bands of BandHeight rows, then (if Remainder is
// nonzero) one final band of Remainder rows.
func (m *Manager) Bands() []int {
	bands := make([]int, 0, m.BandCount+1)
	for i := 0; i < m.BandCount; i++ {
		bands = append(bands, m.BandHeight)
	}
	if m.Remainder > 0 {
		bands = append(bands, m.Remainder)
	}
	return bands
}

// Array is the Array Context: the single reusable buffer holding the
// currently resident band. It is owned exclusively by the rendering
// coordinator; the thread pool only ever receives a non-owning view of it
// while a band is being computed.
type Array struct {
	manager *Manager
	buf     []byte
}

// NewArray allocates the buffer, sized for the largest band (BandHeight
// rows); every band, including a shorter remainder band, reuses a prefix
// of it.
func (m *Manager) NewArray() *Array {
	return &Array{manager: m, buf: make([]byte, m.rowBytes(m.BandHeight))}
}

// Band returns the prefix of the buffer holding `rows` rows, zeroing it
// first so 1-bit schemes can rely on a zero-initialized byte at each
// 8-pixel boundary.
func (a *Array) Band(rows int) []byte {
	n := a.manager.rowBytes(rows)
	view := a.buf[:n]
	for i := range view {
		view[i] = 0
	}
	return view
}

// Row returns the byte slice within band (as returned by Band) for local
// row index local.
func (a *Array) Row(band []byte, local int) []byte {
	rb := a.manager.RowBytes()
	return band[local*rb : (local+1)*rb]
}
