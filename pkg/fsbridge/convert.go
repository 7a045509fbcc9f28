package fsbridge

import (
	"errors"
	"os"
	"syscall"
	"time"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/JMARyA/shfs/pkg/wire"
)

func direntTypeOf(k wire.Kind) fuseutil.DirentType {
	switch k {
	case wire.KindDirectory:
		return fuseutil.DT_Directory
	case wire.KindSymlink:
		return fuseutil.DT_Link
	case wire.KindNamedPipe:
		return fuseutil.DT_FIFO
	case wire.KindSocket:
		return fuseutil.DT_Socket
	case wire.KindBlockDevice:
		return fuseutil.DT_Block
	case wire.KindCharDevice:
		return fuseutil.DT_Char
	default:
		return fuseutil.DT_File
	}
}

func tsToTime(ts wire.Timespec) time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec))
}

func kindToFileMode(k wire.Kind) os.FileMode {
	switch k {
	case wire.KindDirectory:
		return os.ModeDir
	case wire.KindSymlink:
		return os.ModeSymlink
	case wire.KindNamedPipe:
		return os.ModeNamedPipe
	case wire.KindSocket:
		return os.ModeSocket
	case wire.KindCharDevice:
		return os.ModeCharDevice
	case wire.KindBlockDevice:
		return os.ModeDevice
	default:
		return 0
	}
}

func entryToAttrs(ent wire.Entry) fuseops.InodeAttributes {
	mode := kindToFileMode(ent.Kind) | os.FileMode(ent.Perm)&os.ModePerm
	nlink := uint32(1)
	if ent.Kind == wire.KindDirectory {
		nlink = 2
	}
	return fuseops.InodeAttributes{
		Size:   ent.Size,
		Nlink:  nlink,
		Mode:   mode,
		Atime:  tsToTime(ent.Atime),
		Mtime:  tsToTime(ent.Mtime),
		Ctime:  tsToTime(ent.Ctime),
		Crtime: tsToTime(ent.Crtime),
		Uid:    ent.UID,
		Gid:    ent.GID,
	}
}

func entryToChild(ent wire.Entry) fuseops.ChildInodeEntry {
	now := time.Now()
	return fuseops.ChildInodeEntry{
		Child:                fuseops.InodeID(ent.Ino),
		Attributes:           entryToAttrs(ent),
		AttributesExpiration: now.Add(attrsCacheTime),
		EntryExpiration:      now.Add(attrsCacheTime),
	}
}

// toFuseErr maps a client-side error to one the kernel understands. A
// syscall.Errno (as produced by client.ioErr from an io_error response)
// passes through unchanged; anything else degrades to EIO.
func toFuseErr(err error) error {
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return fuse.EIO
}
