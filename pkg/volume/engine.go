// Package volume implements the server-side volume engine: path jailing
// against a host directory tree, an inode directory bridging client
// inodes to host paths, and the POSIX-like operations a volume exposes.
package volume

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	richErrors "github.com/JMARyA/shfs/pkg/errors"
	"github.com/JMARyA/shfs/pkg/wire"
)

// Config is a volume's configuration as loaded from the server's config
// file, fully defaulted and immutable thereafter.
type Config struct {
	Name         string
	Description  string
	Root         string
	Discoverable bool
	Public       bool
	ReadOnly     bool
	TrashEnabled bool
}

// Engine is the server-side volume engine bound to one Config's root.
// It owns the volume's inode directory and performs every host
// filesystem operation jailed beneath Root.
type Engine struct {
	cfg   Config
	inode *inodeDirectory
}

// New opens root and constructs the engine, installing the root entry at
// inode 1 (invariant I1).
func New(cfg Config) (*Engine, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, richErrors.Wrapf(err, "resolving volume root [%s]", cfg.Root)
	}
	cfg.Root = filepath.Clean(root)

	fi, err := os.Lstat(cfg.Root)
	if err != nil {
		return nil, richErrors.Wrapf(err, "statting volume root [%s]", cfg.Root)
	}
	if !fi.IsDir() {
		return nil, richErrors.Errorf("volume root [%s] is not a directory", cfg.Root)
	}

	rootEntry, err := entryFromLstat(cfg.Root, "/", fi)
	if err != nil {
		return nil, err
	}

	return &Engine{cfg: cfg, inode: newInodeDirectory(rootEntry)}, nil
}

// Config returns the engine's bound configuration.
func (e *Engine) Config() Config { return e.cfg }

// joinRoot is the central jailing rule: it maps a volume-relative path to
// a host-absolute path beneath e.cfg.Root, failing with EPERM if the
// canonical result would escape the root.
func (e *Engine) joinRoot(relPath string) (string, error) {
	combined := e.cfg.Root + "/" + relPath
	for strings.Contains(combined, "//") {
		combined = strings.ReplaceAll(combined, "//", "/")
	}
	combined = strings.TrimSuffix(combined, "/")
	if combined == "" {
		combined = "/"
	}

	clean := filepath.Clean(combined)

	root := filepath.Clean(e.cfg.Root)
	if clean != root && !strings.HasPrefix(clean, root+string(filepath.Separator)) {
		return "", EPERM
	}
	return clean, nil
}

// relPath is the inverse of joinRoot: it maps a host-absolute path
// beneath the volume root back to the volume-relative path carried in
// entries and readdir results. The volume root itself is "/"; every
// other entry's path is "/"-prefixed.
func (e *Engine) relPath(hostPath string) string {
	root := filepath.Clean(e.cfg.Root)
	if hostPath == root {
		return "/"
	}
	return "/" + strings.TrimPrefix(hostPath, root+string(filepath.Separator))
}

func (e *Engine) pathOfInode(ino uint64) (string, error) {
	if ino == RootInode {
		return "/", nil
	}
	ent, ok := e.inode.get(ino)
	if !ok {
		return "", ENOENT
	}
	return ent.Path, nil
}

func (e *Engine) hostPathOfInode(ino uint64) (string, error) {
	rel, err := e.pathOfInode(ino)
	if err != nil {
		return "", err
	}
	return e.joinRoot(rel)
}

func joinChild(parentRel, name string) string {
	if parentRel == "/" {
		return "/" + name
	}
	return parentRel + "/" + name
}

func (e *Engine) hostChildPath(parent uint64, name string) (relChild, hostChild string, err error) {
	parentRel, err := e.pathOfInode(parent)
	if err != nil {
		return "", "", err
	}
	relChild = joinChild(parentRel, name)
	hostChild, err = e.joinRoot(relChild)
	return relChild, hostChild, err
}

// ReadDir returns the volume-relative paths of dirPath's direct
// children. Any failure (jail escape, missing directory, not a
// directory) yields an empty list rather than an error, matching this
// op's forgiving contract. ReadDir does not itself populate the inode
// directory; callers that need inodes for the children must follow up
// with GetEntry per child.
func (e *Engine) ReadDir(dirPath string) []string {
	hostDir, err := e.joinRoot(dirPath)
	if err != nil {
		return []string{}
	}

	f, err := os.Open(hostDir)
	if err != nil {
		return []string{}
	}
	defer f.Close()

	names, err := f.Readdirnames(0)
	if err != nil {
		return []string{}
	}

	parentRel := e.relPath(hostDir)
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = joinChild(parentRel, name)
	}
	return paths
}

// GetEntry stats the volume-relative path and records the result in the
// inode directory, keyed by the host-reported inode (or 1, if path
// resolves to the volume root).
func (e *Engine) GetEntry(relPathArg string) (wire.Entry, error) {
	hostPath, err := e.joinRoot(relPathArg)
	if err != nil {
		return wire.Entry{}, err
	}

	fi, err := os.Lstat(hostPath)
	if err != nil {
		return wire.Entry{}, errnoOf(err)
	}

	rel := e.relPath(hostPath)
	ent, err := entryFromLstat(hostPath, rel, fi)
	if err != nil {
		return wire.Entry{}, err
	}
	if hostPath == filepath.Clean(e.cfg.Root) {
		ent.Ino = RootInode
	}
	e.inode.put(ent)
	return ent, nil
}

// GetEntryFromInode returns the entry last recorded for ino.
func (e *Engine) GetEntryFromInode(ino uint64) (wire.Entry, error) {
	ent, ok := e.inode.get(ino)
	if !ok {
		return wire.Entry{}, ENOENT
	}
	return ent, nil
}

// GetPathFromInode returns the volume-relative path last recorded for
// ino.
func (e *Engine) GetPathFromInode(ino uint64) (string, error) {
	ent, err := e.GetEntryFromInode(ino)
	if err != nil {
		return "", err
	}
	return ent.Path, nil
}

// Read returns up to size bytes of ino's content starting at offset.
func (e *Engine) Read(ino uint64, offset int64, size uint32) ([]byte, error) {
	hostPath, err := e.hostPathOfInode(ino)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(hostPath)
	if err != nil {
		return nil, errnoOf(err)
	}
	defer f.Close()

	buf := make([]byte, size)
	n, err := f.ReadAt(buf, offset)
	if err != nil && n == 0 {
		if isEOF(err) {
			return []byte{}, nil
		}
		return nil, errnoOf(err)
	}
	return buf[:n], nil
}

// Write writes data at offset into ino's content, extending the file as
// needed, and returns the number of bytes actually written.
func (e *Engine) Write(ino uint64, offset int64, data []byte) (uint32, error) {
	if e.cfg.ReadOnly {
		return 0, EROFS
	}

	hostPath, err := e.hostPathOfInode(ino)
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(hostPath, os.O_WRONLY, 0)
	if err != nil {
		return 0, errnoOf(err)
	}
	defer f.Close()

	n, err := f.WriteAt(data, offset)
	if err != nil {
		return uint32(n), errnoOf(err)
	}
	return uint32(n), nil
}

// Rename moves the child (parent, name) to (nparent, nname).
func (e *Engine) Rename(parent uint64, name string, nparent uint64, nname string) error {
	if e.cfg.ReadOnly {
		return EROFS
	}

	_, hostSrc, err := e.hostChildPath(parent, name)
	if err != nil {
		return err
	}
	_, hostDst, err := e.hostChildPath(nparent, nname)
	if err != nil {
		return err
	}

	if _, err := os.Lstat(hostDst); err == nil {
		return EEXIST
	}

	if err := os.Rename(hostSrc, hostDst); err != nil {
		return errnoOf(err)
	}
	return nil
}

// Mkdir creates a new directory (parent, name) and returns its entry.
func (e *Engine) Mkdir(parent uint64, name string) (wire.Entry, error) {
	if e.cfg.ReadOnly {
		return wire.Entry{}, EROFS
	}

	relChild, hostChild, err := e.hostChildPath(parent, name)
	if err != nil {
		return wire.Entry{}, err
	}

	if err := os.Mkdir(hostChild, 0o755); err != nil {
		return wire.Entry{}, errnoOf(err)
	}
	return e.GetEntry(relChild)
}

// Rmdir removes the empty directory (parent, name).
func (e *Engine) Rmdir(parent uint64, name string) error {
	if e.cfg.ReadOnly {
		return EROFS
	}

	_, hostChild, err := e.hostChildPath(parent, name)
	if err != nil {
		return err
	}
	if err := os.Remove(hostChild); err != nil {
		return errnoOf(err)
	}
	return nil
}

// Create creates a new empty regular file (parent, name) and returns its
// entry.
func (e *Engine) Create(parent uint64, name string) (wire.Entry, error) {
	if e.cfg.ReadOnly {
		return wire.Entry{}, EROFS
	}

	relChild, hostChild, err := e.hostChildPath(parent, name)
	if err != nil {
		return wire.Entry{}, err
	}

	f, err := os.OpenFile(hostChild, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return wire.Entry{}, errnoOf(err)
	}
	f.Close()
	return e.GetEntry(relChild)
}

// Unlink removes the regular file (parent, name).
func (e *Engine) Unlink(parent uint64, name string) error {
	if e.cfg.ReadOnly {
		return EROFS
	}

	_, hostChild, err := e.hostChildPath(parent, name)
	if err != nil {
		return err
	}
	if err := os.Remove(hostChild); err != nil {
		return errnoOf(err)
	}
	return nil
}

// CreateSymlink creates a symlink (parent, name) pointing at target.
func (e *Engine) CreateSymlink(parent uint64, name, target string) (wire.Entry, error) {
	if e.cfg.ReadOnly {
		return wire.Entry{}, EROFS
	}

	relChild, hostChild, err := e.hostChildPath(parent, name)
	if err != nil {
		return wire.Entry{}, err
	}
	if err := os.Symlink(target, hostChild); err != nil {
		return wire.Entry{}, errnoOf(err)
	}
	return e.GetEntry(relChild)
}

// CreateLink creates a hard link (parent, name) pointing at targetIno.
func (e *Engine) CreateLink(parent uint64, name string, targetIno uint64) (wire.Entry, error) {
	if e.cfg.ReadOnly {
		return wire.Entry{}, EROFS
	}

	hostTarget, err := e.hostPathOfInode(targetIno)
	if err != nil {
		return wire.Entry{}, err
	}
	relChild, hostChild, err := e.hostChildPath(parent, name)
	if err != nil {
		return wire.Entry{}, err
	}
	if err := os.Link(hostTarget, hostChild); err != nil {
		return wire.Entry{}, errnoOf(err)
	}
	return e.GetEntry(relChild)
}

// ReadSymlink returns ino's link target.
func (e *Engine) ReadSymlink(ino uint64) (string, error) {
	hostPath, err := e.hostPathOfInode(ino)
	if err != nil {
		return "", err
	}
	target, err := os.Readlink(hostPath)
	if err != nil {
		return "", errnoOf(err)
	}
	return target, nil
}

// RemoveXattr, GetXattr, ListXattr and SetXattr are stubs: the volume
// engine does not implement real extended-attribute storage. They succeed
// (with empty data) for any inode in the inode directory, fail with
// ENOENT for an unknown inode, and SetXattr fails with EROFS on a
// read-only volume.
func (e *Engine) RemoveXattr(ino uint64, name string) error {
	if _, err := e.hostPathOfInode(ino); err != nil {
		return err
	}
	return nil
}

func (e *Engine) GetXattr(ino uint64, name string, size uint32) ([]byte, error) {
	if _, err := e.hostPathOfInode(ino); err != nil {
		return nil, err
	}
	return []byte{}, nil
}

func (e *Engine) ListXattr(ino uint64, size uint32) ([]string, error) {
	if _, err := e.hostPathOfInode(ino); err != nil {
		return nil, err
	}
	return []string{}, nil
}

func (e *Engine) SetXattr(ino uint64, name string, data []byte, flags uint32) error {
	if e.cfg.ReadOnly {
		return EROFS
	}
	if _, err := e.hostPathOfInode(ino); err != nil {
		return err
	}
	return nil
}

// StatFS reports block/inode counts for the volume's backing filesystem.
type StatFS struct {
	BlockSize       uint32
	Blocks          uint64
	BlocksFree      uint64
	BlocksAvailable uint64
	IOSize          uint32
	Inodes          uint64
	InodesFree      uint64
}

func (e *Engine) StatFS() (StatFS, error) {
	return hostStatFS(e.cfg.Root)
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
