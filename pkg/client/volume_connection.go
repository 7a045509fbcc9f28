package client

import (
	"syscall"

	"github.com/patrickmn/go-cache"

	"github.com/JMARyA/shfs/pkg/errors"
	"github.com/JMARyA/shfs/pkg/wire"
)

// VolumeConnection is a session bound to one volume_id on one server. Its
// typed methods mirror the volume engine's operations one for one.
// get_entry results are cached by path, advisory and never invalidated
// on mutation — mirrors original_source's VolumeConnection.
type VolumeConnection struct {
	c     *conn
	info  wire.RequestInfo
	cache *cache.Cache
}

// DialVolume opens a VolumeConnection to addr for the given volume ID.
func DialVolume(addr string, volumeID uint64) (*VolumeConnection, error) {
	c, err := dial(addr)
	if err != nil {
		return nil, err
	}
	return &VolumeConnection{
		c:     c,
		info:  wire.RequestInfo{VolumeID: volumeID},
		cache: cache.New(cache.NoExpiration, cache.NoExpiration),
	}, nil
}

func (v *VolumeConnection) Close() error {
	return v.c.Close()
}

func ioErr(code int32) error {
	return syscall.Errno(code)
}

func (v *VolumeConnection) call(c wire.Call) (wire.Response, error) {
	return v.c.sendCall(c)
}

// ReadDir lists the volume-relative paths of dirPath's children. Per
// spec, any failure surfaces as an empty list rather than an error.
func (v *VolumeConnection) ReadDir(dirPath string) []string {
	resp, err := v.call(wire.ReadDirCall{Info: v.info, Path: dirPath})
	if err != nil {
		return []string{}
	}
	rd, ok := resp.(wire.ReadDirResponse)
	if !ok {
		return []string{}
	}
	return rd.Data
}

// GetEntry resolves path to its entry, serving from cache when present.
func (v *VolumeConnection) GetEntry(path string) (wire.Entry, error) {
	if cached, ok := v.cache.Get(path); ok {
		return cached.(wire.Entry), nil
	}

	resp, err := v.call(wire.GetEntryCall{Info: v.info, Path: path})
	if err != nil {
		return wire.Entry{}, err
	}
	ent, err := entryOrErr(resp)
	if err != nil {
		return wire.Entry{}, err
	}
	v.cache.Set(path, ent, cache.NoExpiration)
	return ent, nil
}

func (v *VolumeConnection) GetEntryFromInode(ino uint64) (wire.Entry, error) {
	resp, err := v.call(wire.GetEntryFromInodeCall{Info: v.info, Ino: ino})
	if err != nil {
		return wire.Entry{}, err
	}
	return entryOrErr(resp)
}

func (v *VolumeConnection) GetPathFromInode(ino uint64) (string, error) {
	resp, err := v.call(wire.GetPathFromInodeCall{Info: v.info, Ino: ino})
	if err != nil {
		return "", err
	}
	switch r := resp.(type) {
	case wire.GetPathResponse:
		return r.Data, nil
	case wire.IOErrorResponse:
		return "", ioErr(r.Error)
	default:
		return "", errors.Errorf("unexpected response %T to get_path_from_inode", resp)
	}
}

func (v *VolumeConnection) Read(ino uint64, offset int64, size uint32) ([]byte, error) {
	resp, err := v.call(wire.ReadCall{Info: v.info, Ino: ino, Offset: offset, Size: size})
	if err != nil {
		return nil, err
	}
	switch r := resp.(type) {
	case wire.ReadResponse:
		return r.Data, nil
	case wire.IOErrorResponse:
		return nil, ioErr(r.Error)
	default:
		return nil, errors.Errorf("unexpected response %T to read", resp)
	}
}

func (v *VolumeConnection) Write(ino uint64, offset int64, data []byte) (uint32, error) {
	resp, err := v.call(wire.WriteCall{Info: v.info, Ino: ino, Offset: offset, Data: data})
	if err != nil {
		return 0, err
	}
	switch r := resp.(type) {
	case wire.WriteResponse:
		return r.Data, nil
	case wire.IOErrorResponse:
		return 0, ioErr(r.Error)
	default:
		return 0, errors.Errorf("unexpected response %T to write", resp)
	}
}

func (v *VolumeConnection) Rename(parent uint64, name string, nparent uint64, nname string) error {
	resp, err := v.call(wire.RenameCall{Info: v.info, Parent: parent, Name: name, NParent: nparent, NName: nname})
	if err != nil {
		return err
	}
	return okOrErr(resp)
}

func (v *VolumeConnection) Mkdir(parent uint64, name string) (wire.Entry, error) {
	resp, err := v.call(wire.MkdirCall{Info: v.info, Parent: parent, Name: name})
	if err != nil {
		return wire.Entry{}, err
	}
	return entryOrErr(resp)
}

func (v *VolumeConnection) Rmdir(parent uint64, name string) error {
	resp, err := v.call(wire.RmdirCall{Info: v.info, Parent: parent, Name: name})
	if err != nil {
		return err
	}
	return okOrErr(resp)
}

func (v *VolumeConnection) Create(parent uint64, name string) (wire.Entry, error) {
	resp, err := v.call(wire.CreateCall{Info: v.info, Parent: parent, Name: name})
	if err != nil {
		return wire.Entry{}, err
	}
	return entryOrErr(resp)
}

func (v *VolumeConnection) Unlink(parent uint64, name string) error {
	resp, err := v.call(wire.UnlinkCall{Info: v.info, Parent: parent, Name: name})
	if err != nil {
		return err
	}
	return okOrErr(resp)
}

func (v *VolumeConnection) CreateSymlink(parent uint64, name, target string) (wire.Entry, error) {
	resp, err := v.call(wire.CreateSymlinkCall{Info: v.info, Parent: parent, Name: name, Target: target})
	if err != nil {
		return wire.Entry{}, err
	}
	return entryOrErr(resp)
}

func (v *VolumeConnection) CreateLink(parent uint64, name string, target uint64) (wire.Entry, error) {
	resp, err := v.call(wire.CreateLinkCall{Info: v.info, Parent: parent, Name: name, Target: target})
	if err != nil {
		return wire.Entry{}, err
	}
	return entryOrErr(resp)
}

func (v *VolumeConnection) ReadSymlink(ino uint64) (string, error) {
	resp, err := v.call(wire.ReadSymlinkCall{Info: v.info, Ino: ino})
	if err != nil {
		return "", err
	}
	switch r := resp.(type) {
	case wire.ReadSymlinkResponse:
		return r.Data, nil
	case wire.IOErrorResponse:
		return "", ioErr(r.Error)
	default:
		return "", errors.Errorf("unexpected response %T to read_symlink", resp)
	}
}

func (v *VolumeConnection) RemoveXattr(ino uint64, name string) error {
	resp, err := v.call(wire.RemoveXattrCall{Info: v.info, Ino: ino, Name: name})
	if err != nil {
		return err
	}
	return okOrErr(resp)
}

func (v *VolumeConnection) GetXattr(ino uint64, name string, size uint32) ([]byte, error) {
	resp, err := v.call(wire.GetXattrCall{Info: v.info, Ino: ino, Name: name, Size: size})
	if err != nil {
		return nil, err
	}
	switch r := resp.(type) {
	case wire.XattrDataResponse:
		return r.Data, nil
	case wire.IOErrorResponse:
		return nil, ioErr(r.Error)
	default:
		return nil, errors.Errorf("unexpected response %T to get_xattr", resp)
	}
}

func (v *VolumeConnection) ListXattr(ino uint64, size uint32) ([]string, error) {
	resp, err := v.call(wire.ListXattrCall{Info: v.info, Ino: ino, Size: size})
	if err != nil {
		return nil, err
	}
	switch r := resp.(type) {
	case wire.XattrListResponse:
		return r.Data, nil
	case wire.IOErrorResponse:
		return nil, ioErr(r.Error)
	default:
		return nil, errors.Errorf("unexpected response %T to list_xattr", resp)
	}
}

func (v *VolumeConnection) SetXattr(ino uint64, name string, data []byte, flags uint32) error {
	resp, err := v.call(wire.SetXattrCall{Info: v.info, Ino: ino, Name: name, Data: data, Flags: flags})
	if err != nil {
		return err
	}
	return okOrErr(resp)
}

func (v *VolumeConnection) StatFS() (wire.StatFSResponse, error) {
	resp, err := v.call(wire.StatFSCall{Info: v.info})
	if err != nil {
		return wire.StatFSResponse{}, err
	}
	switch r := resp.(type) {
	case wire.StatFSResponse:
		return r, nil
	case wire.IOErrorResponse:
		return wire.StatFSResponse{}, ioErr(r.Error)
	default:
		return wire.StatFSResponse{}, errors.Errorf("unexpected response %T to statfs", resp)
	}
}

func entryOrErr(resp wire.Response) (wire.Entry, error) {
	switch r := resp.(type) {
	case wire.GetEntryResponse:
		return r.Data, nil
	case wire.IOErrorResponse:
		return wire.Entry{}, ioErr(r.Error)
	default:
		return wire.Entry{}, errors.Errorf("unexpected response %T", resp)
	}
}

func okOrErr(resp wire.Response) error {
	switch r := resp.(type) {
	case wire.OKResponse:
		return nil
	case wire.IOErrorResponse:
		return ioErr(r.Error)
	default:
		return errors.Errorf("unexpected response %T", resp)
	}
}
