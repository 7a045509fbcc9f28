package volume

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, readOnly bool) (*Engine, string) {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.txt"), []byte("hello world"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "nested.txt"), []byte("nested"), 0o644))

	eng, err := New(Config{Name: "test", Root: root, ReadOnly: readOnly})
	require.NoError(t, err)
	return eng, root
}

func TestInodeRootIdentity(t *testing.T) {
	eng, _ := newTestEngine(t, false)

	ent, err := eng.GetEntryFromInode(RootInode)
	require.NoError(t, err)
	assert.Equal(t, uint64(RootInode), ent.Ino)
	assert.Equal(t, "/", ent.Path)
	assert.Equal(t, "Directory", string(ent.Kind))
}

func TestInodeRoundTrip(t *testing.T) {
	eng, _ := newTestEngine(t, false)

	ent, err := eng.GetEntry("hello.txt")
	require.NoError(t, err)

	path, err := eng.GetPathFromInode(ent.Ino)
	require.NoError(t, err)
	assert.Equal(t, "/hello.txt", path)
}

func TestJoinRootRejectsEscape(t *testing.T) {
	eng, _ := newTestEngine(t, false)

	_, err := eng.GetEntry("../../etc/passwd")
	require.Error(t, err)
	assert.Equal(t, EPERM, err)
}

func TestJoinRootAllowsDotDotWithinRoot(t *testing.T) {
	eng, _ := newTestEngine(t, false)

	ent, err := eng.GetEntry("sub/../hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "/hello.txt", ent.Path)
}

func TestReadDirListsChildren(t *testing.T) {
	eng, _ := newTestEngine(t, false)

	names := eng.ReadDir("/")
	assert.ElementsMatch(t, []string{"/hello.txt", "/sub"}, names)
}

func TestReadDirOnEscapeReturnsEmpty(t *testing.T) {
	eng, _ := newTestEngine(t, false)

	assert.Empty(t, eng.ReadDir("../../etc"))
}

func TestReadReturnsContent(t *testing.T) {
	eng, _ := newTestEngine(t, false)

	ent, err := eng.GetEntry("hello.txt")
	require.NoError(t, err)

	data, err := eng.Read(ent.Ino, 0, 64)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestWritePartialAtOffset(t *testing.T) {
	eng, _ := newTestEngine(t, false)

	ent, err := eng.GetEntry("hello.txt")
	require.NoError(t, err)

	n, err := eng.Write(ent.Ino, 6, []byte("WORLD"))
	require.NoError(t, err)
	assert.Equal(t, uint32(5), n)

	data, err := eng.Read(ent.Ino, 0, 64)
	require.NoError(t, err)
	assert.Equal(t, "hello WORLD", string(data))
}

func TestReadOnlyVolumeRejectsMutation(t *testing.T) {
	eng, _ := newTestEngine(t, true)

	ent, err := eng.GetEntry("hello.txt")
	require.NoError(t, err)

	_, err = eng.Write(ent.Ino, 0, []byte("x"))
	assert.Equal(t, EROFS, err)

	_, err = eng.Create(RootInode, "new.txt")
	assert.Equal(t, EROFS, err)

	_, err = eng.Mkdir(RootInode, "newdir")
	assert.Equal(t, EROFS, err)

	err = eng.Unlink(RootInode, "hello.txt")
	assert.Equal(t, EROFS, err)
}

func TestCreateAndUnlink(t *testing.T) {
	eng, _ := newTestEngine(t, false)

	ent, err := eng.Create(RootInode, "created.txt")
	require.NoError(t, err)
	assert.Equal(t, "/created.txt", ent.Path)

	err = eng.Unlink(RootInode, "created.txt")
	require.NoError(t, err)

	_, err = eng.GetEntry("created.txt")
	assert.Equal(t, ENOENT, err)
}

func TestRenameFailsIfDestinationExists(t *testing.T) {
	eng, _ := newTestEngine(t, false)

	subEnt, err := eng.GetEntry("sub")
	require.NoError(t, err)
	_ = subEnt

	err = eng.Rename(RootInode, "hello.txt", RootInode, "sub")
	assert.Equal(t, EEXIST, err)
}

func TestSymlinkRoundTrip(t *testing.T) {
	eng, _ := newTestEngine(t, false)

	ent, err := eng.CreateSymlink(RootInode, "link.txt", "hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "Symlink", string(ent.Kind))

	target, err := eng.ReadSymlink(ent.Ino)
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", target)
}

func TestStatFSReportsCounts(t *testing.T) {
	eng, _ := newTestEngine(t, false)

	st, err := eng.StatFS()
	require.NoError(t, err)
	assert.Greater(t, st.Blocks, uint64(0))
}
