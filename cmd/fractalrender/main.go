// Command fractalrender draws an escape-time fractal (Mandelbrot or
// Julia) to a PNM/ASCII image, locally or distributed across a LAN of
// Worker Agents dispatched by this process as the master.
package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	charmlog "github.com/charmbracelet/log"

	"fractalrender/internal/config"
	"fractalrender/internal/lan"
	"fractalrender/internal/logx"
	"fractalrender/internal/plotctx"
	"fractalrender/internal/render"
	"fractalrender/internal/sink"
)

var log = logx.For("main")

func main() {
	args, err := config.Parse(nil)
	if err != nil {
		log.Fatal("argument error", "error", err)
	}
	if args.Verbose {
		logx.SetLevel(charmlog.DebugLevel)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if args.IsWorker() {
		runWorker(ctx, args)
		return
	}

	pctx, err := args.PlotContext()
	if err != nil {
		log.Fatal("invalid plot context", "error", err)
	}

	sk, closeSink, err := openSink(args, pctx)
	if err != nil {
		log.Fatal("could not open image destination", "error", err)
	}
	defer closeSink()

	if args.IsMaster() {
		runMaster(ctx, args, pctx, sk)
		return
	}

	if err := render.Local(ctx, pctx, sk, args.Budget, args.Workers); err != nil {
		log.Fatal("render failed", "error", err)
	}
}

// openSink opens args.Out, or wraps stdout when no path was given -
// stdout is the natural destination for the ASCII scheme, same as the
// terminal destination spec.md §3's Plot Context names alongside a file
// handle.
func openSink(args *config.Args, pctx *plotctx.PlotContext) (sk *sink.Sink, closeFn func(), err error) {
	if args.Out == "" {
		return sink.NewWriter(os.Stdout, pctx.Width, pctx.Height, pctx.Depth), func() {}, nil
	}
	sk, err = sink.Open(args.Out, pctx.Width, pctx.Height, pctx.Depth)
	if err != nil {
		return nil, nil, err
	}
	return sk, func() {
		if err := sk.Close(); err != nil {
			log.Error("could not close image file", "error", err)
		}
	}, nil
}

func runWorker(ctx context.Context, args *config.Args) {
	w := lan.NewWorker(args.Workers)
	if err := w.ListenAndServe(ctx, args.Worker); err != nil {
		log.Fatal("worker agent failed", "error", err)
	}
}

func runMaster(ctx context.Context, args *config.Args, pctx *plotctx.PlotContext, sk *sink.Sink) {
	master, err := lan.DialWorkers(args.Master, 10*time.Second)
	if err != nil {
		log.Fatal("could not connect to workers", "error", err)
	}
	defer master.Close()

	if err := master.RenderDistributed(ctx, pctx, sk, args.Budget); err != nil {
		log.Fatal("distributed render failed", "error", err)
	}
}
