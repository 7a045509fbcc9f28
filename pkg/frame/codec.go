// Package frame implements the shfs datagram framing: splitting an
// arbitrarily large logical message into bounded-size datagrams and
// reassembling them, over any net.PacketConn-shaped transport.
package frame

import (
	"bytes"
	"fmt"
	"net"
	"strconv"

	"github.com/JMARyA/shfs/pkg/errors"
)

const (
	// ChunkSize (P) is the size of one payload chunk when a message must
	// be split across multiple datagrams.
	ChunkSize = 8024

	// RecvBufSize (B) is the capacity of the receive buffer for a single
	// datagram read. Only the bytes actually read are used, after
	// stripTrailingZeros has removed any trailing 0x00 bytes from them.
	RecvBufSize = 524288

	packHeader = "PACK"
)

// Send frames message msg and writes it to conn addressed at addr. A
// message shorter than 2*ChunkSize bytes is sent as a single datagram; otherwise a "PACK<N>" header datagram precedes N chunk
// datagrams, chunk i covering bytes [i*ChunkSize, i*ChunkSize+ChunkSize)
// except the final chunk, which runs to the end of msg.
func Send(conn net.PacketConn, addr net.Addr, msg []byte) error {
	n := len(msg) / ChunkSize
	if n <= 1 {
		_, err := conn.WriteTo(msg, addr)
		return errors.Wrap(err, "sending unframed datagram")
	}

	header := []byte(fmt.Sprintf("%s%d", packHeader, n))
	if _, err := conn.WriteTo(header, addr); err != nil {
		return errors.Wrap(err, "sending split header")
	}

	for i := 0; i < n; i++ {
		start := i * ChunkSize
		end := start + ChunkSize
		if i == n-1 {
			end = len(msg)
		}
		if _, err := conn.WriteTo(msg[start:end], addr); err != nil {
			return errors.Wrapf(err, "sending chunk %d/%d", i, n)
		}
	}

	return nil
}

// Recv reads one logical message from conn, transparently reassembling a
// "PACK<N>"-prefixed multi-datagram message. It returns the address the
// first datagram arrived from.
func Recv(conn net.PacketConn) (msg []byte, addr net.Addr, err error) {
	buf := recvBufPool.Get(RecvBufSize)
	defer recvBufPool.Return(buf)

	nRead, addr, err := conn.ReadFrom(buf)
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading datagram")
	}
	first := stripTrailingZeros(buf[:nRead])

	if !bytes.HasPrefix(first, []byte(packHeader)) {
		msg = make([]byte, len(first))
		copy(msg, first)
		return msg, addr, nil
	}

	n, err := strconv.Atoi(string(first[len(packHeader):]))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parsing split header %q", first)
	}

	var whole bytes.Buffer
	cbuf := recvBufPool.Get(RecvBufSize)
	defer recvBufPool.Return(cbuf)
	for i := 0; i < n; i++ {
		nRead, _, err := conn.ReadFrom(cbuf)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "reading chunk %d/%d", i, n)
		}
		whole.Write(stripTrailingZeros(cbuf[:nRead]))
	}

	return whole.Bytes(), addr, nil
}

// stripTrailingZeros trims the longest suffix of 0x00 bytes from b, the
// bytes of one received datagram. Senders are expected to use encodings
// (textual JSON) that never legitimately end in 0x00.
func stripTrailingZeros(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return b[:end]
}
