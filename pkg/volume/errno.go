package volume

import (
	"errors"
	"syscall"
)

// Errno is the cross-platform error type for errors a volume operation can
// report. Its numeric value is the raw OS error number carried over the
// wire in an io_error response.
type Errno syscall.Errno

const (
	EPERM     = Errno(syscall.EPERM)
	ENOENT    = Errno(syscall.ENOENT)
	EEXIST    = Errno(syscall.EEXIST)
	ENOTDIR   = Errno(syscall.ENOTDIR)
	EISDIR    = Errno(syscall.EISDIR)
	EINVAL    = Errno(syscall.EINVAL)
	ENOTEMPTY = Errno(syscall.ENOTEMPTY)
	EROFS     = Errno(syscall.EROFS)
	EIO       = Errno(syscall.EIO)
	ERANGE    = Errno(syscall.ERANGE)

	// ENOATTR diverges across OSes; ENODATA works on Linux.
	ENOATTR = Errno(syscall.ENODATA)
)

func (e Errno) Error() string {
	return syscall.Errno(e).Error()
}

// Int32 is the wire representation of e.
func (e Errno) Int32() int32 {
	return int32(e)
}

// errnoOf maps an arbitrary error from a host filesystem call (an
// os.PathError, a wrapped syscall.Errno, or one of our own sentinels) to
// the portable Errno type, defaulting to EIO when the cause carries no
// errno at all.
func errnoOf(err error) Errno {
	if err == nil {
		return 0
	}

	var e Errno
	if errors.As(err, &e) {
		return e
	}

	var sysErrno syscall.Errno
	if errors.As(err, &sysErrno) {
		return Errno(sysErrno)
	}

	return EIO
}
