package fsbridge

import (
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
)

func (fs *FileSystem) CreateFile(op *fuseops.CreateFileOp) {
	if _, ok := fs.pathOf(op.Parent); !ok {
		op.Respond(fuse.EIO)
		return
	}

	ent, err := fs.vc.Create(uint64(op.Parent), op.Name)
	if err != nil {
		op.Respond(toFuseErr(err))
		return
	}

	fs.rememberPath(fuseops.InodeID(ent.Ino), ent.Path)
	op.Entry = entryToChild(ent)
	op.Respond(nil)
}

func (fs *FileSystem) Unlink(op *fuseops.UnlinkOp) {
	op.Respond(toFuseErr(fs.vc.Unlink(uint64(op.Parent), op.Name)))
}

func (fs *FileSystem) CreateSymlink(op *fuseops.CreateSymlinkOp) {
	ent, err := fs.vc.CreateSymlink(uint64(op.Parent), op.Name, op.Target)
	if err != nil {
		op.Respond(toFuseErr(err))
		return
	}
	fs.rememberPath(fuseops.InodeID(ent.Ino), ent.Path)
	op.Entry = entryToChild(ent)
	op.Respond(nil)
}

func (fs *FileSystem) CreateLink(op *fuseops.CreateLinkOp) {
	ent, err := fs.vc.CreateLink(uint64(op.Parent), op.Name, uint64(op.Target))
	if err != nil {
		op.Respond(toFuseErr(err))
		return
	}
	fs.rememberPath(fuseops.InodeID(ent.Ino), ent.Path)
	op.Entry = entryToChild(ent)
	op.Respond(nil)
}

func (fs *FileSystem) ReadSymlink(op *fuseops.ReadSymlinkOp) {
	target, err := fs.vc.ReadSymlink(uint64(op.Inode))
	if err != nil {
		op.Respond(toFuseErr(err))
		return
	}
	op.Target = target
	op.Respond(nil)
}

func (fs *FileSystem) OpenFile(op *fuseops.OpenFileOp) {
	if _, ok := fs.pathOf(op.Inode); !ok {
		op.Respond(fuse.EIO)
		return
	}
	op.Respond(nil)
}

func (fs *FileSystem) ReadFile(op *fuseops.ReadFileOp) {
	data, err := fs.vc.Read(uint64(op.Inode), op.Offset, uint32(len(op.Dst)))
	if err != nil {
		op.Respond(toFuseErr(err))
		return
	}
	op.BytesRead = copy(op.Dst, data)
	op.Respond(nil)
}

func (fs *FileSystem) WriteFile(op *fuseops.WriteFileOp) {
	_, err := fs.vc.Write(uint64(op.Inode), op.Offset, op.Data)
	op.Respond(toFuseErr(err))
}

func (fs *FileSystem) SyncFile(op *fuseops.SyncFileOp) {
	op.Respond(nil)
}

func (fs *FileSystem) FlushFile(op *fuseops.FlushFileOp) {
	op.Respond(nil)
}

func (fs *FileSystem) ReleaseFileHandle(op *fuseops.ReleaseFileHandleOp) {
	op.Respond(nil)
}

func (fs *FileSystem) RemoveXattr(op *fuseops.RemoveXattrOp) {
	op.Respond(toFuseErr(fs.vc.RemoveXattr(uint64(op.Inode), op.Name)))
}

func (fs *FileSystem) GetXattr(op *fuseops.GetXattrOp) {
	data, err := fs.vc.GetXattr(uint64(op.Inode), op.Name, uint32(len(op.Dst)))
	if err != nil {
		op.Respond(toFuseErr(err))
		return
	}
	op.BytesRead = copy(op.Dst, data)
	op.Respond(nil)
}

func (fs *FileSystem) ListXattr(op *fuseops.ListXattrOp) {
	names, err := fs.vc.ListXattr(uint64(op.Inode), uint32(len(op.Dst)))
	if err != nil {
		op.Respond(toFuseErr(err))
		return
	}
	n := 0
	for _, name := range names {
		n += copy(op.Dst[n:], name+"\x00")
	}
	op.BytesRead = n
	op.Respond(nil)
}

func (fs *FileSystem) SetXattr(op *fuseops.SetXattrOp) {
	err := fs.vc.SetXattr(uint64(op.Inode), op.Name, op.Value, op.Flags)
	op.Respond(toFuseErr(err))
}
