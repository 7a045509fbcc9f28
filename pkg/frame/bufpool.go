package frame

import "sync"

// recvBufPool hands out scratch buffers for Recv's datagram reads so the
// 512KiB read buffer isn't reallocated on every call. Only one capacity
// (RecvBufSize) is ever requested in this package, so a plain sync.Pool
// keyed by that one size is enough; Get always returns a buffer of
// exactly the requested length, freshly allocated the first few times
// and recycled afterwards.
var recvBufPool bufPool

type bufPool struct {
	pool sync.Pool
}

func (bp *bufPool) Get(length int) []byte {
	if length <= 0 {
		return nil
	}
	if b, ok := bp.pool.Get().([]byte); ok && cap(b) >= length {
		return b[:length]
	}
	return make([]byte, length)
}

func (bp *bufPool) Return(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	bp.pool.Put(buf[:0])
}
