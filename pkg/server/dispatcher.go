// Package server implements the shfs server dispatcher: a single-threaded
// receive-decode-route-encode-reply loop over a framed UDP socket.
package server

import (
	"net"

	"github.com/golang/glog"

	"github.com/JMARyA/shfs/pkg/errors"
	"github.com/JMARyA/shfs/pkg/frame"
	"github.com/JMARyA/shfs/pkg/volume"
	"github.com/JMARyA/shfs/pkg/wire"
)

// Version is the server build version string reported by server_info.
const Version = "0.1.0"

// Volume holds one configured volume's bound engine (whose Config carries
// the volume's name), in the position that is its stable volume_id.
type Volume struct {
	Engine *volume.Engine
}

// Dispatcher is the server's single-threaded request loop. It owns an
// ordered list of volumes addressed by position (their volume_id) and a
// server-wide name reported by server_info.
type Dispatcher struct {
	Name    string
	Volumes []Volume

	conn       net.PacketConn
	compress   bool
	compressAt int
}

// NewDispatcher constructs a dispatcher bound to conn. compress enables
// wrapping outgoing responses in Compressed when doing so is smaller.
func NewDispatcher(conn net.PacketConn, name string, volumes []Volume, compress bool) *Dispatcher {
	return &Dispatcher{
		Name:     name,
		Volumes:  volumes,
		conn:     conn,
		compress: compress,
	}
}

// Serve runs the receive → handle → reply loop until Recv returns an
// error (e.g. the socket is closed).
func (d *Dispatcher) Serve() error {
	for {
		msg, addr, err := frame.Recv(d.conn)
		if err != nil {
			return errors.Wrap(err, "receiving request")
		}

		resp := d.handle(msg)

		out, err := wire.EncodeResponse(resp)
		if err != nil {
			glog.Errorf("encoding response: %+v", errors.RichError(err))
			continue
		}

		if d.compress {
			if wrapped, ok := d.maybeCompress(out); ok {
				out = wrapped
			}
		}

		if err := frame.Send(d.conn, addr, out); err != nil {
			glog.Errorf("sending response to %s: %+v", addr, errors.RichError(err))
		}
	}
}

func (d *Dispatcher) maybeCompress(encoded []byte) ([]byte, bool) {
	compressed, worthwhile, err := frame.Compress(encoded)
	if err != nil {
		glog.Warningf("compressing response: %+v", errors.RichError(err))
		return nil, false
	}
	if !worthwhile {
		return nil, false
	}
	out, err := wire.EncodeResponse(wire.CompressedResponse{Data: compressed})
	if err != nil {
		glog.Warningf("encoding compressed envelope: %+v", errors.RichError(err))
		return nil, false
	}
	return out, true
}

// handle decodes one request and dispatches it, translating volume
// engine errors into the matching wire response. It never panics on a
// malformed request: decode failures become ErrorResponse.
func (d *Dispatcher) handle(msg []byte) wire.Response {
	call, err := wire.DecodeCall(msg)
	if err != nil {
		return wire.ErrorResponse{Error: err.Error()}
	}

	switch c := call.(type) {
	case wire.ListVolumesCall:
		return d.listVolumes()
	case wire.VolumeLookupCall:
		return d.volumeLookup(c)
	case wire.ServerInfoCall:
		return wire.ServerInfoResponse{Name: d.Name, Version: Version}
	}

	return d.dispatchVolumeCall(call)
}

func (d *Dispatcher) listVolumes() wire.Response {
	names := make([]string, 0, len(d.Volumes))
	for _, v := range d.Volumes {
		cfg := v.Engine.Config()
		if cfg.Discoverable {
			names = append(names, cfg.Name)
		}
	}
	return wire.ListVolumesResponse{Data: names}
}

func (d *Dispatcher) volumeLookup(c wire.VolumeLookupCall) wire.Response {
	for id, v := range d.Volumes {
		if v.Engine.Config().Name == c.Name {
			return wire.VolumeLookupResponse{ID: uint64(id)}
		}
	}
	return wire.ErrorResponse{Error: "Volume not found"}
}
