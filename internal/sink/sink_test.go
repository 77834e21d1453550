package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fractalrender/internal/plotctx"
)

func TestPPMHeaderAndByteCount(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriter(&buf, 640, 480, plotctx.Depth24)

	band := make([]byte, 640*480*3)
	require.NoError(t, s.WriteBand(band, 480))
	require.NoError(t, s.Close())

	out := buf.Bytes()
	assert.True(t, strings.HasPrefix(string(out), "P6 640 480 255 "))
	header := "P6 640 480 255 "
	assert.Len(t, out, len(header)+640*480*3)
}

func TestPBMHeaderByteCount(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriter(&buf, 100, 100, plotctx.Depth1)
	band := make([]byte, 13*100) // ceil(100/8) = 13 bytes per row
	require.NoError(t, s.WriteBand(band, 100))

	out := buf.Bytes()
	assert.True(t, strings.HasPrefix(string(out), "P4 100 100 "))
	assert.Len(t, out, len("P4 100 100 ")+13*100)
}

func TestASCIIHasNoHeaderAndNewlinePerRow(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriter(&buf, 80, 24, plotctx.DepthASCII)

	band := bytes.Repeat([]byte("@"), 80*24)
	require.NoError(t, s.WriteBand(band, 24))

	out := buf.String()
	assert.Equal(t, 24, strings.Count(out, "\n"))
	assert.Len(t, out, 80*24+24)
}

func TestHeaderWrittenExactlyOnceAcrossBands(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriter(&buf, 4, 4, plotctx.Depth8)

	require.NoError(t, s.WriteBand(make([]byte, 4*2), 2))
	require.NoError(t, s.WriteBand(make([]byte, 4*2), 2))

	assert.Equal(t, 1, strings.Count(buf.String(), "P5"))
}
