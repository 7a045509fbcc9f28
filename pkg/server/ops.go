package server

import (
	"github.com/JMARyA/shfs/pkg/volume"
	"github.com/JMARyA/shfs/pkg/wire"
)

// mutatingOps is the set of call tags that touch the backing tree and so
// fall under the read-only policy.
var mutatingOps = map[string]bool{
	wire.TagRename:        true,
	wire.TagMkdir:         true,
	wire.TagRmdir:         true,
	wire.TagCreate:        true,
	wire.TagUnlink:        true,
	wire.TagWrite:         true,
	wire.TagCreateSymlink: true,
	wire.TagCreateLink:    true,
	wire.TagSetXattr:      true,
	wire.TagRemoveXattr:   true,
}

// dispatchVolumeCall routes a volume-scoped call to its engine, applying
// the read-only policy ahead of any mutating op.
func (d *Dispatcher) dispatchVolumeCall(call wire.Call) wire.Response {
	volID, tag, ok := volumeIDAndTag(call)
	if !ok {
		return wire.ErrorResponse{Error: "unsupported call"}
	}
	if volID >= uint64(len(d.Volumes)) {
		return wire.ErrorResponse{Error: "unknown volume"}
	}
	eng := d.Volumes[volID].Engine

	if mutatingOps[tag] && eng.Config().ReadOnly {
		return wire.IOErrorResponse{Error: volume.EROFS.Int32()}
	}

	switch c := call.(type) {
	case wire.ReadDirCall:
		return wire.ReadDirResponse{Data: eng.ReadDir(c.Path)}

	case wire.GetEntryCall:
		ent, err := eng.GetEntry(c.Path)
		if err != nil {
			return errResp(err)
		}
		return wire.GetEntryResponse{Data: ent}

	case wire.GetEntryFromInodeCall:
		ent, err := eng.GetEntryFromInode(c.Ino)
		if err != nil {
			return errResp(err)
		}
		return wire.GetEntryResponse{Data: ent}

	case wire.GetPathFromInodeCall:
		path, err := eng.GetPathFromInode(c.Ino)
		if err != nil {
			return errResp(err)
		}
		return wire.GetPathResponse{Data: path}

	case wire.ReadCall:
		data, err := eng.Read(c.Ino, c.Offset, c.Size)
		if err != nil {
			return errResp(err)
		}
		return wire.ReadResponse{Data: data}

	case wire.WriteCall:
		n, err := eng.Write(c.Ino, c.Offset, c.Data)
		if err != nil {
			return errResp(err)
		}
		return wire.WriteResponse{Data: n}

	case wire.RenameCall:
		if err := eng.Rename(c.Parent, c.Name, c.NParent, c.NName); err != nil {
			return errResp(err)
		}
		return wire.OKResponse{}

	case wire.MkdirCall:
		ent, err := eng.Mkdir(c.Parent, c.Name)
		if err != nil {
			return errResp(err)
		}
		return wire.GetEntryResponse{Data: ent}

	case wire.RmdirCall:
		if err := eng.Rmdir(c.Parent, c.Name); err != nil {
			return errResp(err)
		}
		return wire.OKResponse{}

	case wire.CreateCall:
		ent, err := eng.Create(c.Parent, c.Name)
		if err != nil {
			return errResp(err)
		}
		return wire.GetEntryResponse{Data: ent}

	case wire.UnlinkCall:
		if err := eng.Unlink(c.Parent, c.Name); err != nil {
			return errResp(err)
		}
		return wire.OKResponse{}

	case wire.CreateSymlinkCall:
		ent, err := eng.CreateSymlink(c.Parent, c.Name, c.Target)
		if err != nil {
			return errResp(err)
		}
		return wire.GetEntryResponse{Data: ent}

	case wire.CreateLinkCall:
		ent, err := eng.CreateLink(c.Parent, c.Name, c.Target)
		if err != nil {
			return errResp(err)
		}
		return wire.GetEntryResponse{Data: ent}

	case wire.ReadSymlinkCall:
		target, err := eng.ReadSymlink(c.Ino)
		if err != nil {
			return errResp(err)
		}
		return wire.ReadSymlinkResponse{Data: target}

	case wire.RemoveXattrCall:
		if err := eng.RemoveXattr(c.Ino, c.Name); err != nil {
			return errResp(err)
		}
		return wire.OKResponse{}

	case wire.GetXattrCall:
		data, err := eng.GetXattr(c.Ino, c.Name, c.Size)
		if err != nil {
			return errResp(err)
		}
		return wire.XattrDataResponse{Data: data}

	case wire.ListXattrCall:
		names, err := eng.ListXattr(c.Ino, c.Size)
		if err != nil {
			return errResp(err)
		}
		return wire.XattrListResponse{Data: names}

	case wire.SetXattrCall:
		if err := eng.SetXattr(c.Ino, c.Name, c.Data, c.Flags); err != nil {
			return errResp(err)
		}
		return wire.OKResponse{}

	case wire.StatFSCall:
		st, err := eng.StatFS()
		if err != nil {
			return errResp(err)
		}
		return wire.StatFSResponse{
			BlockSize:       st.BlockSize,
			Blocks:          st.Blocks,
			BlocksFree:      st.BlocksFree,
			BlocksAvailable: st.BlocksAvailable,
			IOSize:          st.IOSize,
			Inodes:          st.Inodes,
			InodesFree:      st.InodesFree,
		}
	}

	return wire.ErrorResponse{Error: "unsupported call"}
}

func errResp(err error) wire.Response {
	if eno, ok := err.(volume.Errno); ok {
		return wire.IOErrorResponse{Error: eno.Int32()}
	}
	return wire.ErrorResponse{Error: err.Error()}
}

// volumeIDAndTag extracts the RequestInfo.VolumeID and call tag carried
// by every volume-scoped call.
func volumeIDAndTag(call wire.Call) (volID uint64, tag string, ok bool) {
	switch c := call.(type) {
	case wire.ReadDirCall:
		return c.Info.VolumeID, wire.TagReadDir, true
	case wire.GetEntryCall:
		return c.Info.VolumeID, wire.TagGetEntry, true
	case wire.GetEntryFromInodeCall:
		return c.Info.VolumeID, wire.TagGetEntryFromInode, true
	case wire.GetPathFromInodeCall:
		return c.Info.VolumeID, wire.TagGetPathFromInode, true
	case wire.ReadCall:
		return c.Info.VolumeID, wire.TagRead, true
	case wire.WriteCall:
		return c.Info.VolumeID, wire.TagWrite, true
	case wire.RenameCall:
		return c.Info.VolumeID, wire.TagRename, true
	case wire.MkdirCall:
		return c.Info.VolumeID, wire.TagMkdir, true
	case wire.RmdirCall:
		return c.Info.VolumeID, wire.TagRmdir, true
	case wire.CreateCall:
		return c.Info.VolumeID, wire.TagCreate, true
	case wire.UnlinkCall:
		return c.Info.VolumeID, wire.TagUnlink, true
	case wire.CreateSymlinkCall:
		return c.Info.VolumeID, wire.TagCreateSymlink, true
	case wire.CreateLinkCall:
		return c.Info.VolumeID, wire.TagCreateLink, true
	case wire.ReadSymlinkCall:
		return c.Info.VolumeID, wire.TagReadSymlink, true
	case wire.RemoveXattrCall:
		return c.Info.VolumeID, wire.TagRemoveXattr, true
	case wire.GetXattrCall:
		return c.Info.VolumeID, wire.TagGetXattr, true
	case wire.ListXattrCall:
		return c.Info.VolumeID, wire.TagListXattr, true
	case wire.SetXattrCall:
		return c.Info.VolumeID, wire.TagSetXattr, true
	case wire.StatFSCall:
		return c.Info.VolumeID, wire.TagStatFS, true
	}
	return 0, "", false
}
