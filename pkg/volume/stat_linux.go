//go:build linux

package volume

import (
	"os"
	"syscall"

	"github.com/JMARyA/shfs/pkg/errors"
	"github.com/JMARyA/shfs/pkg/wire"
)

func entryFromLstat(hostPath, relPath string, fi os.FileInfo) (wire.Entry, error) {
	sd, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return wire.Entry{}, errors.Errorf("incompatible local file: [%s]", hostPath)
	}

	return wire.Entry{
		Path:   relPath,
		Ino:    sd.Ino,
		Size:   uint64(sd.Size),
		Blocks: uint64(sd.Blocks),
		Atime:  ts2wire(sd.Atim),
		Mtime:  ts2wire(sd.Mtim),
		Ctime:  ts2wire(sd.Ctim),
		Crtime: ts2wire(sd.Ctim),
		Perm:   uint16(fi.Mode().Perm()),
		UID:    sd.Uid,
		GID:    sd.Gid,
		Kind:   kindOf(fi.Mode()),
	}, nil
}

func ts2wire(ts syscall.Timespec) wire.Timespec {
	return wire.Timespec{Sec: int64(ts.Sec), Nsec: int32(ts.Nsec)}
}

func hostStatFS(root string) (StatFS, error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(root, &st); err != nil {
		return StatFS{}, errnoOf(err)
	}
	return StatFS{
		BlockSize:       uint32(st.Bsize),
		Blocks:          st.Blocks,
		BlocksFree:      st.Bfree,
		BlocksAvailable: st.Bavail,
		IOSize:          uint32(st.Bsize),
		Inodes:          st.Files,
		InodesFree:      st.Ffree,
	}, nil
}
