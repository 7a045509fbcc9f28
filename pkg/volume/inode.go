package volume

import (
	"sync"

	"github.com/JMARyA/shfs/pkg/wire"
)

// RootInode is the inode number always assigned to a volume's root,
// regardless of what the host filesystem itself reports for that path.
const RootInode uint64 = 1

// inodeDirectory is a per-volume mapping from inode number to the entry
// most recently observed at that inode. get_entry populates it; it is
// never evicted within a run, and a restarted server starts it empty
// again (so inodes from a prior run may legitimately come back NotFound).
type inodeDirectory struct {
	mu      sync.Mutex
	entries map[uint64]wire.Entry
}

func newInodeDirectory(root wire.Entry) *inodeDirectory {
	root.Ino = RootInode
	d := &inodeDirectory{entries: make(map[uint64]wire.Entry)}
	d.entries[RootInode] = root
	return d
}

// put records e, keyed by e.Ino, overwriting whatever was previously
// recorded for that inode.
func (d *inodeDirectory) put(e wire.Entry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[e.Ino] = e
}

// get returns the entry last recorded for ino, if any.
func (d *inodeDirectory) get(ino uint64) (wire.Entry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.entries[ino]
	return e, ok
}
