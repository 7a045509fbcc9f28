// Package shfs implements SHFS, a stateless request/response network
// filesystem: a server exposes one or more directory trees ("volumes")
// over UDP, and a client either talks to the wire protocol directly or
// mounts a volume locally via FUSE.
//
// Unlike a caching network filesystem, a shfs server keeps no
// client session state between requests beyond its inode directory. A
// client sends each call once and waits for its response; a call or
// response lost in transit is not resent. All request routing is by a volume's stable position in
// the server's configured volume list, carried on every call as
// RequestInfo.VolumeID.
//
// See pkg/wire for the wire schema, pkg/volume for the server-side
// volume engine, pkg/server for the dispatcher, pkg/client for the
// client session, and pkg/fsbridge for the FUSE kernel bridge.
package shfs
