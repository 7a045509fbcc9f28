// Package fsbridge adapts a shfs client.VolumeConnection to the kernel
// via github.com/jacobsa/fuse/fuseutil.FileSystem: every method receives
// a *fuseops.XxxOp, does the corresponding volume call, fills in the
// op's output fields and calls op.Respond.
package fsbridge

import (
	"sync"
	"time"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/JMARyA/shfs/pkg/client"
)

const attrsCacheTime = 1 * time.Second

// FileSystem bridges one mounted volume session into the kernel. Ops
// the underlying protocol has no notion of (MkNode, the flock family)
// fall through to the embedded NotImplementedFileSystem; SyncFile and
// FlushFile succeed without doing anything.
type FileSystem struct {
	fuseutil.NotImplementedFileSystem

	vc *client.VolumeConnection

	mu    sync.Mutex
	paths map[fuseops.InodeID]string
}

// New builds a FileSystem bridging vc. The root inode is pre-registered
// at path "/" to match the volume engine's own RootInode convention.
func New(vc *client.VolumeConnection) *FileSystem {
	fs := &FileSystem{
		vc:    vc,
		paths: map[fuseops.InodeID]string{fuseops.RootInodeID: "/"},
	}
	return fs
}

func (fs *FileSystem) pathOf(ino fuseops.InodeID) (string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p, ok := fs.paths[ino]
	return p, ok
}

func (fs *FileSystem) rememberPath(ino fuseops.InodeID, path string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.paths[ino] = path
}

func childPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

func (fs *FileSystem) Init(op *fuseops.InitOp) {
	op.Respond(nil)
}

func (fs *FileSystem) LookUpInode(op *fuseops.LookUpInodeOp) {
	parentPath, ok := fs.pathOf(op.Parent)
	if !ok {
		op.Respond(fuse.EIO)
		return
	}

	ent, err := fs.vc.GetEntry(childPath(parentPath, op.Name))
	if err != nil {
		op.Respond(toFuseErr(err))
		return
	}

	fs.rememberPath(fuseops.InodeID(ent.Ino), ent.Path)
	op.Entry = entryToChild(ent)
	op.Respond(nil)
}

func (fs *FileSystem) GetInodeAttributes(op *fuseops.GetInodeAttributesOp) {
	ent, err := fs.vc.GetEntryFromInode(uint64(op.Inode))
	if err != nil {
		op.Respond(toFuseErr(err))
		return
	}

	op.Attributes = entryToAttrs(ent)
	op.AttributesExpiration = time.Now().Add(attrsCacheTime)
	op.Respond(nil)
}

// SetInodeAttributes is not backed by the wire protocol (no set_attr
// call); we report the entry's current attributes unchanged, the same
// shape a read-only passthrough filesystem reports for unsupported
// setattr requests.
func (fs *FileSystem) SetInodeAttributes(op *fuseops.SetInodeAttributesOp) {
	ent, err := fs.vc.GetEntryFromInode(uint64(op.Inode))
	if err != nil {
		op.Respond(toFuseErr(err))
		return
	}

	op.Attributes = entryToAttrs(ent)
	op.AttributesExpiration = time.Now().Add(attrsCacheTime)
	op.Respond(nil)
}

func (fs *FileSystem) ForgetInode(op *fuseops.ForgetInodeOp) {
	fs.mu.Lock()
	delete(fs.paths, op.Inode)
	fs.mu.Unlock()
	op.Respond(nil)
}

func (fs *FileSystem) StatFS(op *fuseops.StatFSOp) {
	st, err := fs.vc.StatFS()
	if err != nil {
		op.Respond(toFuseErr(err))
		return
	}
	op.BlockSize = st.BlockSize
	op.Blocks = st.Blocks
	op.BlocksFree = st.BlocksFree
	op.BlocksAvailable = st.BlocksAvailable
	op.IoSize = st.IOSize
	op.Inodes = st.Inodes
	op.InodesFree = st.InodesFree
	op.Respond(nil)
}
