// Package client implements the shfs client side: a stateless server
// session plus a per-volume session with typed call wrappers and an
// optimistic metadata cache.
package client

import (
	"net"

	"github.com/JMARyA/shfs/pkg/errors"
	"github.com/JMARyA/shfs/pkg/frame"
	"github.com/JMARyA/shfs/pkg/wire"
)

// conn wraps a connected UDP socket with the call/response round trip:
// encode, frame, send, receive, transparently unwrap one layer of
// Compressed. Mirrors original_source's UDPConnection.send_call.
type conn struct {
	sock *net.UDPConn
	addr net.Addr
}

func dial(addr string) (*conn, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving server address [%s]", addr)
	}
	sock, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing server [%s]", addr)
	}
	return &conn{sock: sock, addr: raddr}, nil
}

func (c *conn) Close() error {
	return c.sock.Close()
}

func (c *conn) sendCall(call wire.Call) (wire.Response, error) {
	req, err := wire.EncodeCall(call)
	if err != nil {
		return nil, errors.Wrap(err, "encoding call")
	}
	if err := frame.Send(c.sock, c.addr, req); err != nil {
		return nil, errors.Wrap(err, "sending call")
	}

	raw, _, err := frame.Recv(c.sock)
	if err != nil {
		return nil, errors.Wrap(err, "receiving response")
	}

	resp, err := wire.DecodeResponse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "decoding response")
	}

	if cr, ok := resp.(wire.CompressedResponse); ok {
		plain, err := frame.Decompress(cr.Data)
		if err != nil {
			return nil, errors.Wrap(err, "decompressing response")
		}
		resp, err = wire.DecodeResponse(plain)
		if err != nil {
			return nil, errors.Wrap(err, "decoding decompressed response")
		}
	}

	return resp, nil
}
