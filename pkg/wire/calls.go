package wire

import (
	"encoding/json"

	"github.com/JMARyA/shfs/pkg/errors"
)

// Call is a request sent by a client to a server. Every volume-scoped
// variant carries a RequestInfo; the three server-level variants
// (ListVolumesCall, VolumeLookupCall, ServerInfoCall) do not.
type Call interface {
	callKind() string
}

// Call tag constants, matching the "kind" discriminant on the wire.
const (
	TagReadDir            = "read_dir"
	TagGetEntry           = "get_entry"
	TagGetEntryFromInode  = "get_entry_from_inode"
	TagGetPathFromInode   = "get_path_from_inode"
	TagRead               = "read"
	TagRename             = "rename"
	TagMkdir              = "mkdir"
	TagRmdir              = "rmdir"
	TagCreate             = "create"
	TagUnlink             = "unlink"
	TagWrite              = "write"
	TagCreateSymlink      = "create_symlink"
	TagCreateLink         = "create_link"
	TagReadSymlink        = "read_symlink"
	TagRemoveXattr        = "remove_xattr"
	TagGetXattr           = "get_xattr"
	TagListXattr          = "list_xattr"
	TagSetXattr           = "set_xattr"
	TagStatFS             = "statfs"
	TagListVolumes        = "list_volumes"
	TagVolumeLookup       = "volume_lookup"
	TagServerInfo         = "server_info"
)

type ReadDirCall struct {
	Info RequestInfo `json:"info"`
	Path string      `json:"path"`
}

type GetEntryCall struct {
	Info RequestInfo `json:"info"`
	Path string      `json:"path"`
}

type GetEntryFromInodeCall struct {
	Info RequestInfo `json:"info"`
	Ino  uint64      `json:"ino"`
}

type GetPathFromInodeCall struct {
	Info RequestInfo `json:"info"`
	Ino  uint64      `json:"ino"`
}

type ReadCall struct {
	Info   RequestInfo `json:"info"`
	Ino    uint64      `json:"ino"`
	Offset int64       `json:"offset"`
	Size   uint32      `json:"size"`
}

type RenameCall struct {
	Info    RequestInfo `json:"info"`
	Parent  uint64      `json:"parent"`
	Name    string      `json:"name"`
	NParent uint64      `json:"nparent"`
	NName   string      `json:"nname"`
}

type MkdirCall struct {
	Info   RequestInfo `json:"info"`
	Parent uint64      `json:"parent"`
	Name   string      `json:"name"`
}

type RmdirCall struct {
	Info   RequestInfo `json:"info"`
	Parent uint64      `json:"parent"`
	Name   string      `json:"name"`
}

type CreateCall struct {
	Info   RequestInfo `json:"info"`
	Parent uint64      `json:"parent"`
	Name   string      `json:"name"`
}

type UnlinkCall struct {
	Info   RequestInfo `json:"info"`
	Parent uint64      `json:"parent"`
	Name   string      `json:"name"`
}

type WriteCall struct {
	Info   RequestInfo `json:"info"`
	Ino    uint64      `json:"ino"`
	Offset int64       `json:"offset"`
	Data   []byte      `json:"data"`
}

type CreateSymlinkCall struct {
	Info   RequestInfo `json:"info"`
	Parent uint64      `json:"parent"`
	Name   string      `json:"name"`
	Target string      `json:"target"`
}

type CreateLinkCall struct {
	Info   RequestInfo `json:"info"`
	Parent uint64      `json:"parent"`
	Name   string      `json:"name"`
	Target uint64      `json:"target"`
}

type ReadSymlinkCall struct {
	Info RequestInfo `json:"info"`
	Ino  uint64      `json:"ino"`
}

type RemoveXattrCall struct {
	Info RequestInfo `json:"info"`
	Ino  uint64      `json:"ino"`
	Name string      `json:"name"`
}

type GetXattrCall struct {
	Info RequestInfo `json:"info"`
	Ino  uint64      `json:"ino"`
	Name string      `json:"name"`
	Size uint32      `json:"size"`
}

type ListXattrCall struct {
	Info RequestInfo `json:"info"`
	Ino  uint64      `json:"ino"`
	Size uint32      `json:"size"`
}

type SetXattrCall struct {
	Info  RequestInfo `json:"info"`
	Ino   uint64      `json:"ino"`
	Name  string      `json:"name"`
	Data  []byte      `json:"data"`
	Flags uint32      `json:"flags"`
}

type StatFSCall struct {
	Info RequestInfo `json:"info"`
}

type ListVolumesCall struct{}

type VolumeLookupCall struct {
	Name string `json:"name"`
}

type ServerInfoCall struct{}

func (ReadDirCall) callKind() string            { return TagReadDir }
func (GetEntryCall) callKind() string           { return TagGetEntry }
func (GetEntryFromInodeCall) callKind() string  { return TagGetEntryFromInode }
func (GetPathFromInodeCall) callKind() string   { return TagGetPathFromInode }
func (ReadCall) callKind() string               { return TagRead }
func (RenameCall) callKind() string             { return TagRename }
func (MkdirCall) callKind() string              { return TagMkdir }
func (RmdirCall) callKind() string              { return TagRmdir }
func (CreateCall) callKind() string             { return TagCreate }
func (UnlinkCall) callKind() string             { return TagUnlink }
func (WriteCall) callKind() string              { return TagWrite }
func (CreateSymlinkCall) callKind() string      { return TagCreateSymlink }
func (CreateLinkCall) callKind() string         { return TagCreateLink }
func (ReadSymlinkCall) callKind() string        { return TagReadSymlink }
func (RemoveXattrCall) callKind() string        { return TagRemoveXattr }
func (GetXattrCall) callKind() string           { return TagGetXattr }
func (ListXattrCall) callKind() string          { return TagListXattr }
func (SetXattrCall) callKind() string           { return TagSetXattr }
func (StatFSCall) callKind() string             { return TagStatFS }
func (ListVolumesCall) callKind() string        { return TagListVolumes }
func (VolumeLookupCall) callKind() string       { return TagVolumeLookup }
func (ServerInfoCall) callKind() string         { return TagServerInfo }

// EncodeCall marshals a Call to its tagged JSON form.
func EncodeCall(c Call) ([]byte, error) {
	return marshalTagged(c.callKind(), c)
}

// DecodeCall parses a tagged JSON object into the matching Call variant.
func DecodeCall(data []byte) (Call, error) {
	tag, err := peekKind(data)
	if err != nil {
		return nil, err
	}

	switch tag {
	case TagReadDir:
		return decodeInto(data, &ReadDirCall{})
	case TagGetEntry:
		return decodeInto(data, &GetEntryCall{})
	case TagGetEntryFromInode:
		return decodeInto(data, &GetEntryFromInodeCall{})
	case TagGetPathFromInode:
		return decodeInto(data, &GetPathFromInodeCall{})
	case TagRead:
		return decodeInto(data, &ReadCall{})
	case TagRename:
		return decodeInto(data, &RenameCall{})
	case TagMkdir:
		return decodeInto(data, &MkdirCall{})
	case TagRmdir:
		return decodeInto(data, &RmdirCall{})
	case TagCreate:
		return decodeInto(data, &CreateCall{})
	case TagUnlink:
		return decodeInto(data, &UnlinkCall{})
	case TagWrite:
		return decodeInto(data, &WriteCall{})
	case TagCreateSymlink:
		return decodeInto(data, &CreateSymlinkCall{})
	case TagCreateLink:
		return decodeInto(data, &CreateLinkCall{})
	case TagReadSymlink:
		return decodeInto(data, &ReadSymlinkCall{})
	case TagRemoveXattr:
		return decodeInto(data, &RemoveXattrCall{})
	case TagGetXattr:
		return decodeInto(data, &GetXattrCall{})
	case TagListXattr:
		return decodeInto(data, &ListXattrCall{})
	case TagSetXattr:
		return decodeInto(data, &SetXattrCall{})
	case TagStatFS:
		return decodeInto(data, &StatFSCall{})
	case TagListVolumes:
		return decodeInto(data, &ListVolumesCall{})
	case TagVolumeLookup:
		return decodeInto(data, &VolumeLookupCall{})
	case TagServerInfo:
		return decodeInto(data, &ServerInfoCall{})
	default:
		return nil, errors.Errorf("unknown call kind %q", tag)
	}
}

type taggedEnvelope struct {
	Kind string `json:"kind"`
}

func peekKind(data []byte) (string, error) {
	var env taggedEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", errors.Wrap(err, "decoding tagged envelope")
	}
	if env.Kind == "" {
		return "", errors.New("missing \"kind\" field")
	}
	return env.Kind, nil
}

// decodeInto unmarshals data into dst (a pointer to a concrete Call
// struct) and returns the dereferenced value as a Call.
func decodeInto[T any](data []byte, dst *T) (Call, error) {
	if err := json.Unmarshal(data, dst); err != nil {
		return nil, errors.Wrapf(err, "decoding call body")
	}
	return any(*dst).(Call), nil
}

// marshalTagged marshals v with an injected leading "kind" field.
func marshalTagged(kind string, v interface{}) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling body")
	}

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(body, &asMap); err != nil {
		return nil, errors.Wrap(err, "re-decoding body as map")
	}
	asMap["kind"] = mustMarshalString(kind)

	return json.Marshal(asMap)
}

func mustMarshalString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
