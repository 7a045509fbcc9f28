package frame

import (
	"bytes"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loopbackPair(t *testing.T) (a, b *net.UDPConn) {
	t.Helper()

	a, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	b, err = net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	t.Cleanup(func() {
		a.Close()
		b.Close()
	})

	return a, b
}

func TestFramingRoundTripSmall(t *testing.T) {
	a, b := loopbackPair(t)

	msg := []byte(`{"kind":"ok"}`)
	require.NoError(t, Send(a, b.LocalAddr(), msg))

	got, _, err := Recv(b)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestFramingRoundTripSplit(t *testing.T) {
	a, b := loopbackPair(t)

	// Force a split: >= 2*ChunkSize bytes, no trailing zero byte.
	msg := bytes.Repeat([]byte("x"), 2*ChunkSize+137)
	msg[len(msg)-1] = 'y'

	require.NoError(t, Send(a, b.LocalAddr(), msg))

	got, _, err := Recv(b)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestFramingWholeUpToThreshold(t *testing.T) {
	a, b := loopbackPair(t)

	// Up to 2*ChunkSize-1 bytes must be sent as a single datagram.
	msg := bytes.Repeat([]byte("z"), 2*ChunkSize-1)

	require.NoError(t, Send(a, b.LocalAddr(), msg))

	buf := make([]byte, RecvBufSize)
	n, _, err := b.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, msg, buf[:n])
}

func TestCompressionRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("shfs shfs shfs shfs shfs "), 200)

	compressed, worthwhile, err := Compress(data)
	require.NoError(t, err)
	assert.True(t, worthwhile)

	out, err := Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}
