// Package render is the single-host rendering coordinator: it wires the
// Coordinate Map (C4), Block Memory Manager (C5), Thread Pool (C6),
// Iteration Kernel (C2), Colour Mapper (C3), and Image Sink (C7) into one
// render. The coordinator is the only goroutine that touches the Array
// Context and the Image Sink; the pool's goroutines only ever see a
// disjoint row slice of the currently resident band.
package render

import (
	"context"

	"fractalrender/internal/block"
	"fractalrender/internal/colour"
	"fractalrender/internal/kernel"
	"fractalrender/internal/logx"
	"fractalrender/internal/plotctx"
	"fractalrender/internal/pool"
	"fractalrender/internal/precision"
	"fractalrender/internal/sink"
)

var log = logx.For("render")

// Local renders pctx to sk on this host using `workers` goroutines per
// band, under a memory budget of `budget` bytes. pctx must already be
// finalized (see plotctx.PlotContext.Finalize).
func Local(ctx context.Context, pctx *plotctx.PlotContext, sk *sink.Sink, budget uint64, workers int) error {
	realization, err := precision.New(pctx.Precision, pctx.MPBits)
	if err != nil {
		return err
	}

	mapper := colour.New(pctx.Scheme, pctx.SmoothFactor)
	coords := plotctx.NewCoordinateMap(pctx)

	mgr, err := block.New(pctx.Width, pctx.Height, mapper.Depth(), budget)
	if err != nil {
		return err
	}
	arr := mgr.NewArray()

	log.Info("starting local render", "width", pctx.Width, "height", pctx.Height,
		"precision", pctx.Precision.String(), "bands", len(mgr.Bands()), "band_height", mgr.BandHeight)

	rowOffset := 0
	for id, rows := range mgr.Bands() {
		band := arr.Band(rows)

		err := pool.Run(ctx, workers, rows, func(local int) error {
			y := rowOffset + local
			rowImag := coords.RowImag(y)
			row := arr.Row(band, local)
			for x := 0; x < pctx.Width; x++ {
				z := complex(coords.PixelReal(x), rowImag)
				res := kernel.Iterate(realization, pctx.Family, z, pctx.C, pctx.IterationCap)
				mapper.WritePixel(row, x, res)
			}
			return nil
		})
		if err != nil {
			log.Error("band failed", "band", id, "error", err)
			return err
		}

		if err := sk.WriteBand(band, rows); err != nil {
			return err
		}
		log.Debug("wrote band", "band", id, "rows", rows)

		rowOffset += rows
	}

	log.Info("render complete", "rows", rowOffset)
	return nil
}
