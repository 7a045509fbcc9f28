package wire

import (
	"encoding/json"

	"github.com/JMARyA/shfs/pkg/errors"
)

// Response is what a server sends back for a Call. Exactly one of the
// concrete types below is ever produced for a given request, except that
// any response may additionally be wrapped once in Compressed.
type Response interface {
	responseKind() string
}

const (
	TagInvalid      = "invalid"
	TagError        = "error"
	TagIOError      = "io_error"
	TagOK           = "ok"
	TagReadDirResp  = "read_dir"
	TagGetEntryResp = "get_entry"
	TagGetPathResp  = "get_path"
	TagReadResp     = "read"
	TagWriteResp    = "write"
	TagListVolsResp = "list_volumes"
	TagVolLookResp  = "volume_lookup"
	TagServInfoResp = "server_info"
	TagCompressed   = "compressed"
	TagReadSymResp  = "read_symlink"
	TagXattrData    = "xattr_data"
	TagXattrList    = "xattr_list"
	TagStatFSResp   = "statfs"
)

type InvalidResponse struct{}

type ErrorResponse struct {
	Error string `json:"error"`
}

// IOErrorResponse carries a raw OS error number, e.g. 30 (EROFS) for a
// read-only policy violation, or the errno from a failed host syscall.
type IOErrorResponse struct {
	Error int32 `json:"error"`
}

type OKResponse struct{}

type ReadDirResponse struct {
	Data []string `json:"data"`
}

type GetEntryResponse struct {
	Data Entry `json:"data"`
}

type GetPathResponse struct {
	Data string `json:"data"`
}

type ReadResponse struct {
	Data []byte `json:"data"`
}

type WriteResponse struct {
	Data uint32 `json:"data"`
}

type ListVolumesResponse struct {
	Data []string `json:"data"`
}

type VolumeLookupResponse struct {
	ID uint64 `json:"id"`
}

type ServerInfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// CompressedResponse wraps the bytes of another fully-formed, already
// JSON-encoded Response. It is never itself found nested inside another
// CompressedResponse.
type CompressedResponse struct {
	Data []byte `json:"data"`
}

type ReadSymlinkResponse struct {
	Data string `json:"data"`
}

type XattrDataResponse struct {
	Data []byte `json:"data"`
}

type XattrListResponse struct {
	Data []string `json:"data"`
}

type StatFSResponse struct {
	BlockSize       uint32 `json:"block_size"`
	Blocks          uint64 `json:"blocks"`
	BlocksFree      uint64 `json:"blocks_free"`
	BlocksAvailable uint64 `json:"blocks_available"`
	IOSize          uint32 `json:"io_size"`
	Inodes          uint64 `json:"inodes"`
	InodesFree      uint64 `json:"inodes_free"`
}

func (InvalidResponse) responseKind() string      { return TagInvalid }
func (ErrorResponse) responseKind() string        { return TagError }
func (IOErrorResponse) responseKind() string      { return TagIOError }
func (OKResponse) responseKind() string           { return TagOK }
func (ReadDirResponse) responseKind() string      { return TagReadDirResp }
func (GetEntryResponse) responseKind() string     { return TagGetEntryResp }
func (GetPathResponse) responseKind() string      { return TagGetPathResp }
func (ReadResponse) responseKind() string         { return TagReadResp }
func (WriteResponse) responseKind() string        { return TagWriteResp }
func (ListVolumesResponse) responseKind() string  { return TagListVolsResp }
func (VolumeLookupResponse) responseKind() string { return TagVolLookResp }
func (ServerInfoResponse) responseKind() string   { return TagServInfoResp }
func (CompressedResponse) responseKind() string   { return TagCompressed }
func (ReadSymlinkResponse) responseKind() string  { return TagReadSymResp }
func (XattrDataResponse) responseKind() string    { return TagXattrData }
func (XattrListResponse) responseKind() string    { return TagXattrList }
func (StatFSResponse) responseKind() string       { return TagStatFSResp }

// EncodeResponse marshals a Response to its tagged JSON form.
func EncodeResponse(r Response) ([]byte, error) {
	return marshalTagged(r.responseKind(), r)
}

// DecodeResponse parses a tagged JSON object into the matching Response
// variant. An unrecognized kind is reported as an error rather than
// silently mapped to InvalidResponse, so callers can distinguish "server
// said invalid" from "we don't understand this wire form".
func DecodeResponse(data []byte) (Response, error) {
	tag, err := peekKind(data)
	if err != nil {
		return nil, err
	}

	switch tag {
	case TagInvalid:
		return decodeRespInto(data, &InvalidResponse{})
	case TagError:
		return decodeRespInto(data, &ErrorResponse{})
	case TagIOError:
		return decodeRespInto(data, &IOErrorResponse{})
	case TagOK:
		return decodeRespInto(data, &OKResponse{})
	case TagReadDirResp:
		return decodeRespInto(data, &ReadDirResponse{})
	case TagGetEntryResp:
		return decodeRespInto(data, &GetEntryResponse{})
	case TagGetPathResp:
		return decodeRespInto(data, &GetPathResponse{})
	case TagReadResp:
		return decodeRespInto(data, &ReadResponse{})
	case TagWriteResp:
		return decodeRespInto(data, &WriteResponse{})
	case TagListVolsResp:
		return decodeRespInto(data, &ListVolumesResponse{})
	case TagVolLookResp:
		return decodeRespInto(data, &VolumeLookupResponse{})
	case TagServInfoResp:
		return decodeRespInto(data, &ServerInfoResponse{})
	case TagCompressed:
		return decodeRespInto(data, &CompressedResponse{})
	case TagReadSymResp:
		return decodeRespInto(data, &ReadSymlinkResponse{})
	case TagXattrData:
		return decodeRespInto(data, &XattrDataResponse{})
	case TagXattrList:
		return decodeRespInto(data, &XattrListResponse{})
	case TagStatFSResp:
		return decodeRespInto(data, &StatFSResponse{})
	default:
		return nil, errors.Errorf("unknown response kind %q", tag)
	}
}

func decodeRespInto[T any](data []byte, dst *T) (Response, error) {
	if err := json.Unmarshal(data, dst); err != nil {
		return nil, errors.Wrapf(err, "decoding response body")
	}
	return any(*dst).(Response), nil
}
