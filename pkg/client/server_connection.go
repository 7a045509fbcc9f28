package client

import (
	"github.com/JMARyA/shfs/pkg/errors"
	"github.com/JMARyA/shfs/pkg/wire"
)

// ServerConnection is a stateless session against a shfs server: it
// carries no RequestInfo and is used for discovery before a volume is
// opened. Mirrors original_source's ServerConnection.
type ServerConnection struct {
	c *conn
}

// DialServer opens a ServerConnection to addr ("host:port").
func DialServer(addr string) (*ServerConnection, error) {
	c, err := dial(addr)
	if err != nil {
		return nil, err
	}
	return &ServerConnection{c: c}, nil
}

func (s *ServerConnection) Close() error {
	return s.c.Close()
}

// ListVolumes returns the names of every discoverable volume.
func (s *ServerConnection) ListVolumes() ([]string, error) {
	resp, err := s.c.sendCall(wire.ListVolumesCall{})
	if err != nil {
		return nil, err
	}
	switch r := resp.(type) {
	case wire.ListVolumesResponse:
		return r.Data, nil
	case wire.ErrorResponse:
		return nil, errors.New(r.Error)
	default:
		return nil, errors.Errorf("unexpected response %T to list_volumes", resp)
	}
}

// LookupVolume resolves a volume name to its server-assigned stable ID.
func (s *ServerConnection) LookupVolume(name string) (uint64, error) {
	resp, err := s.c.sendCall(wire.VolumeLookupCall{Name: name})
	if err != nil {
		return 0, err
	}
	switch r := resp.(type) {
	case wire.VolumeLookupResponse:
		return r.ID, nil
	case wire.ErrorResponse:
		return 0, errors.New(r.Error)
	default:
		return 0, errors.Errorf("unexpected response %T to volume_lookup", resp)
	}
}

// ServerInfo returns the server's advertised name and build version.
func (s *ServerConnection) ServerInfo() (wire.ServerInfoResponse, error) {
	resp, err := s.c.sendCall(wire.ServerInfoCall{})
	if err != nil {
		return wire.ServerInfoResponse{}, err
	}
	switch r := resp.(type) {
	case wire.ServerInfoResponse:
		return r, nil
	case wire.ErrorResponse:
		return wire.ServerInfoResponse{}, errors.New(r.Error)
	default:
		return wire.ServerInfoResponse{}, errors.Errorf("unexpected response %T to server_info", resp)
	}
}
