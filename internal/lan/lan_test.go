package lan

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fractalrender/internal/plotctx"
	"fractalrender/internal/render"
	"fractalrender/internal/sink"
)

// startWorker brings up a Worker Agent on an ephemeral loopback port and
// returns its address. The worker is torn down when the test's context is
// canceled.
func startWorker(t *testing.T, ctx context.Context, threads int) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	w := NewWorker(threads)
	go func() {
		_ = w.Serve(ctx, ln)
	}()
	return ln.Addr().String()
}

func TestDistributedRenderMatchesLocalRender(t *testing.T) {
	pctx := &plotctx.PlotContext{
		Family:       plotctx.Mandelbrot,
		Min:          complex(-2, -1.25),
		Max:          complex(0.5, 1.25),
		Width:        64,
		Height:       48,
		IterationCap: 128,
		Scheme:       plotctx.SchemeAll,
		Precision:    plotctx.Standard,
	}
	require.NoError(t, pctx.Finalize())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr1 := startWorker(t, ctx, 2)
	addr2 := startWorker(t, ctx, 2)
	// Give the listeners a moment to start accepting before the master
	// dials out.
	time.Sleep(20 * time.Millisecond)

	master, err := DialWorkers([]string{addr1, addr2}, 2*time.Second)
	require.NoError(t, err)
	defer master.Close()

	var distBuf bytes.Buffer
	distSink := sink.NewWriter(&distBuf, pctx.Width, pctx.Height, pctx.Depth)
	require.NoError(t, master.RenderDistributed(ctx, pctx, distSink, 1<<20))

	var localBuf bytes.Buffer
	localSink := sink.NewWriter(&localBuf, pctx.Width, pctx.Height, pctx.Depth)
	require.NoError(t, render.Local(ctx, pctx, localSink, 1<<20, 4))

	assert.Equal(t, localBuf.Bytes(), distBuf.Bytes())
}

func TestDistributedRenderWithUnevenWorkerCount(t *testing.T) {
	pctx := &plotctx.PlotContext{
		Family:       plotctx.Julia,
		C:            complex(-0.4, 0.6),
		Min:          complex(-1.5, -1.5),
		Max:          complex(1.5, 1.5),
		Width:        40,
		Height:       31,
		IterationCap: 64,
		Scheme:       plotctx.SchemeGreyscale,
		Precision:    plotctx.Standard,
	}
	require.NoError(t, pctx.Finalize())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := startWorker(t, ctx, 3)
	time.Sleep(20 * time.Millisecond)

	master, err := DialWorkers([]string{addr}, 2*time.Second)
	require.NoError(t, err)
	defer master.Close()

	var distBuf bytes.Buffer
	distSink := sink.NewWriter(&distBuf, pctx.Width, pctx.Height, pctx.Depth)
	// A tight budget forces several bands, exercising the dispatcher's
	// band-gated window with a single worker.
	require.NoError(t, master.RenderDistributed(ctx, pctx, distSink, uint64(pctx.Width*3)))

	var localBuf bytes.Buffer
	localSink := sink.NewWriter(&localBuf, pctx.Width, pctx.Height, pctx.Depth)
	require.NoError(t, render.Local(ctx, pctx, localSink, 1<<20, 1))

	assert.Equal(t, localBuf.Bytes(), distBuf.Bytes())
}
