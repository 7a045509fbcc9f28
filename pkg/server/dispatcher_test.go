package server

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JMARyA/shfs/pkg/frame"
	"github.com/JMARyA/shfs/pkg/volume"
	"github.com/JMARyA/shfs/pkg/wire"
)

func startTestServer(t *testing.T, volumes []Volume) (client *net.UDPConn, serverAddr net.Addr) {
	t.Helper()

	serverConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { serverConn.Close() })

	clientConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	d := NewDispatcher(serverConn, "test-server", volumes, false)
	go d.Serve()

	return clientConn, serverConn.LocalAddr()
}

func roundTrip(t *testing.T, conn *net.UDPConn, addr net.Addr, call wire.Call) wire.Response {
	t.Helper()

	req, err := wire.EncodeCall(call)
	require.NoError(t, err)
	require.NoError(t, frame.Send(conn, addr, req))

	raw, _, err := frame.Recv(conn)
	require.NoError(t, err)

	resp, err := wire.DecodeResponse(raw)
	require.NoError(t, err)
	return resp
}

func newVolume(t *testing.T, readOnly bool) Volume {
	t.Helper()
	root := t.TempDir()
	eng, err := volume.New(volume.Config{Name: "v", Root: root, ReadOnly: readOnly})
	require.NoError(t, err)
	return Volume{Engine: eng}
}

// S1: mkdir then read_dir observes the new child.
func TestScenarioMkdirThenReadDir(t *testing.T) {
	v := newVolume(t, false)
	conn, addr := startTestServer(t, []Volume{v})

	resp := roundTrip(t, conn, addr, wire.MkdirCall{Parent: volume.RootInode, Name: "a"})
	entResp, ok := resp.(wire.GetEntryResponse)
	require.True(t, ok)
	assert.Equal(t, "Directory", string(entResp.Data.Kind))
	assert.Equal(t, "/a", entResp.Data.Path)

	resp = roundTrip(t, conn, addr, wire.ReadDirCall{Path: "/"})
	rdResp, ok := resp.(wire.ReadDirResponse)
	require.True(t, ok)
	assert.Equal(t, []string{"/a"}, rdResp.Data)
}

// S2: create, write, then read back the written bytes.
func TestScenarioCreateWriteRead(t *testing.T) {
	v := newVolume(t, false)
	conn, addr := startTestServer(t, []Volume{v})

	resp := roundTrip(t, conn, addr, wire.CreateCall{Parent: volume.RootInode, Name: "f"})
	entResp := resp.(wire.GetEntryResponse)
	ino := entResp.Data.Ino

	resp = roundTrip(t, conn, addr, wire.WriteCall{Ino: ino, Offset: 0, Data: []byte{0x68, 0x69}})
	wResp, ok := resp.(wire.WriteResponse)
	require.True(t, ok)
	assert.Equal(t, uint32(2), wResp.Data)

	resp = roundTrip(t, conn, addr, wire.ReadCall{Ino: ino, Offset: 0, Size: 2})
	rResp, ok := resp.(wire.ReadResponse)
	require.True(t, ok)
	assert.Equal(t, []byte{0x68, 0x69}, rResp.Data)
}

// S3: any mutating call against a readonly volume yields io_error{30}.
func TestScenarioReadOnlyRejectsMutation(t *testing.T) {
	v := newVolume(t, true)
	conn, addr := startTestServer(t, []Volume{v})

	calls := []wire.Call{
		wire.MkdirCall{Parent: volume.RootInode, Name: "a"},
		wire.CreateCall{Parent: volume.RootInode, Name: "f"},
		wire.UnlinkCall{Parent: volume.RootInode, Name: "f"},
		wire.RmdirCall{Parent: volume.RootInode, Name: "a"},
		wire.RenameCall{Parent: volume.RootInode, Name: "a", NParent: volume.RootInode, NName: "b"},
		wire.WriteCall{Ino: volume.RootInode, Offset: 0, Data: []byte{0}},
	}
	for _, c := range calls {
		resp := roundTrip(t, conn, addr, c)
		ioResp, ok := resp.(wire.IOErrorResponse)
		require.True(t, ok, "expected io_error for %T", c)
		assert.Equal(t, int32(30), ioResp.Error)
	}
}

// S4: jail escape yields io_error with the permission-denied errno.
func TestScenarioJailEscape(t *testing.T) {
	v := newVolume(t, false)
	conn, addr := startTestServer(t, []Volume{v})

	resp := roundTrip(t, conn, addr, wire.GetEntryCall{Path: "/../../etc"})
	ioResp, ok := resp.(wire.IOErrorResponse)
	require.True(t, ok)
	assert.Equal(t, volume.EPERM.Int32(), ioResp.Error)
}

// S5: list_volumes returns only discoverable volumes.
func TestScenarioDiscoveryFilter(t *testing.T) {
	eng1, err := volume.New(volume.Config{Name: "V1", Root: t.TempDir(), Discoverable: true})
	require.NoError(t, err)
	eng2, err := volume.New(volume.Config{Name: "V2", Root: t.TempDir(), Discoverable: false})
	require.NoError(t, err)
	eng3, err := volume.New(volume.Config{Name: "V3", Root: t.TempDir()})
	require.NoError(t, err)

	conn, addr := startTestServer(t, []Volume{{Engine: eng1}, {Engine: eng2}, {Engine: eng3}})

	resp := roundTrip(t, conn, addr, wire.ListVolumesCall{})
	lvResp, ok := resp.(wire.ListVolumesResponse)
	require.True(t, ok)
	assert.Equal(t, []string{"V1"}, lvResp.Data)
}

// S6: a message of size >= 2P bytes round-trips through PACK framing.
func TestScenarioLargeWriteRoundTrip(t *testing.T) {
	v := newVolume(t, false)
	conn, addr := startTestServer(t, []Volume{v})

	resp := roundTrip(t, conn, addr, wire.CreateCall{Parent: volume.RootInode, Name: "big"})
	ino := resp.(wire.GetEntryResponse).Data.Ino

	big := make([]byte, 2*frame.ChunkSize+500)
	for i := range big {
		big[i] = byte(1 + i%250)
	}

	resp = roundTrip(t, conn, addr, wire.WriteCall{Ino: ino, Offset: 0, Data: big})
	wResp := resp.(wire.WriteResponse)
	assert.Equal(t, uint32(len(big)), wResp.Data)

	resp = roundTrip(t, conn, addr, wire.ReadCall{Ino: ino, Offset: 0, Size: uint32(len(big))})
	rResp := resp.(wire.ReadResponse)
	assert.Equal(t, big, rResp.Data)
}

func TestServerInfo(t *testing.T) {
	v := newVolume(t, false)
	conn, addr := startTestServer(t, []Volume{v})

	resp := roundTrip(t, conn, addr, wire.ServerInfoCall{})
	siResp, ok := resp.(wire.ServerInfoResponse)
	require.True(t, ok)
	assert.Equal(t, "test-server", siResp.Name)
	assert.Equal(t, Version, siResp.Version)
}

