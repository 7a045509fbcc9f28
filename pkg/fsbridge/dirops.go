package fsbridge

import (
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
)

func (fs *FileSystem) MkDir(op *fuseops.MkDirOp) {
	if _, ok := fs.pathOf(op.Parent); !ok {
		op.Respond(fuse.EIO)
		return
	}

	ent, err := fs.vc.Mkdir(uint64(op.Parent), op.Name)
	if err != nil {
		op.Respond(toFuseErr(err))
		return
	}

	fs.rememberPath(fuseops.InodeID(ent.Ino), ent.Path)
	op.Entry = entryToChild(ent)
	op.Respond(nil)
}

func (fs *FileSystem) RmDir(op *fuseops.RmDirOp) {
	op.Respond(toFuseErr(fs.vc.Rmdir(uint64(op.Parent), op.Name)))
}

func (fs *FileSystem) Rename(op *fuseops.RenameOp) {
	err := fs.vc.Rename(uint64(op.OldParent), op.OldName, uint64(op.NewParent), op.NewName)
	op.Respond(toFuseErr(err))
}

func (fs *FileSystem) OpenDir(op *fuseops.OpenDirOp) {
	if _, ok := fs.pathOf(op.Inode); !ok {
		op.Respond(fuse.EIO)
		return
	}
	op.Respond(nil)
}

// ReadDir lists op.Inode's children starting at op.Offset, marshaling
// each into op.Dst via fuseutil.WriteDirent until it no longer fits.
func (fs *FileSystem) ReadDir(op *fuseops.ReadDirOp) {
	path, ok := fs.pathOf(op.Inode)
	if !ok {
		op.Respond(fuse.EIO)
		return
	}

	children := fs.vc.ReadDir(path)

	var n int
	for i := int(op.Offset); i < len(children); i++ {
		childPath := children[i]
		ent, err := fs.vc.GetEntry(childPath)
		if err != nil {
			continue
		}

		dirent := fuseutil.Dirent{
			Offset: fuseops.DirOffset(i + 1),
			Inode:  fuseops.InodeID(ent.Ino),
			Name:   baseName(childPath),
			Type:   direntTypeOf(ent.Kind),
		}

		written := fuseutil.WriteDirent(op.Dst[n:], dirent)
		if written == 0 {
			break
		}
		n += written
	}

	op.BytesRead = n
	op.Respond(nil)
}

func (fs *FileSystem) ReleaseDirHandle(op *fuseops.ReleaseDirHandleOp) {
	op.Respond(nil)
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
