package client

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JMARyA/shfs/pkg/server"
	"github.com/JMARyA/shfs/pkg/volume"
)

func startServer(t *testing.T, volumes []server.Volume) string {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	d := server.NewDispatcher(conn, "client-test-server", volumes, false)
	go d.Serve()

	return conn.LocalAddr().String()
}

func newVolume(t *testing.T, readOnly bool) server.Volume {
	t.Helper()
	eng, err := volume.New(volume.Config{Name: "v", Root: t.TempDir(), ReadOnly: readOnly, Discoverable: true})
	require.NoError(t, err)
	return server.Volume{Engine: eng}
}

func TestServerConnectionDiscovery(t *testing.T) {
	addr := startServer(t, []server.Volume{newVolume(t, false)})

	sc, err := DialServer(addr)
	require.NoError(t, err)
	defer sc.Close()

	names, err := sc.ListVolumes()
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, names)

	id, err := sc.LookupVolume("v")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	info, err := sc.ServerInfo()
	require.NoError(t, err)
	assert.Equal(t, "client-test-server", info.Name)
}

func TestVolumeConnectionMkdirAndCache(t *testing.T) {
	addr := startServer(t, []server.Volume{newVolume(t, false)})

	vc, err := DialVolume(addr, 0)
	require.NoError(t, err)
	defer vc.Close()

	ent, err := vc.Mkdir(volume.RootInode, "a")
	require.NoError(t, err)
	assert.Equal(t, "/a", ent.Path)

	names := vc.ReadDir("/")
	assert.Equal(t, []string{"/a"}, names)

	cached, err := vc.GetEntry("/a")
	require.NoError(t, err)
	assert.Equal(t, ent.Ino, cached.Ino)
}

func TestVolumeConnectionWriteRead(t *testing.T) {
	addr := startServer(t, []server.Volume{newVolume(t, false)})

	vc, err := DialVolume(addr, 0)
	require.NoError(t, err)
	defer vc.Close()

	ent, err := vc.Create(volume.RootInode, "f")
	require.NoError(t, err)

	n, err := vc.Write(ent.Ino, 0, []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), n)

	data, err := vc.Read(ent.Ino, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), data)
}

func TestVolumeConnectionReadOnlyRejectsMutation(t *testing.T) {
	addr := startServer(t, []server.Volume{newVolume(t, true)})

	vc, err := DialVolume(addr, 0)
	require.NoError(t, err)
	defer vc.Close()

	_, err = vc.Mkdir(volume.RootInode, "a")
	require.Error(t, err)
}
