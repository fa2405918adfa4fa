package list

import (
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/skl-go/skiplist/lib/infra"
)

// flagBits packs a node's marked/fullyLinked state into a single word
// so both can be read together without a lock.
type flagBits struct {
	bits uint32
}

const (
	nodeFullyLinked uint32 = 1 << iota
	nodeMarked
)

func (f *flagBits) atomicSet(bit uint32) {
	for {
		old := atomic.LoadUint32(&f.bits)
		if old&bit == bit {
			return
		}
		if atomic.CompareAndSwapUint32(&f.bits, old, old|bit) {
			return
		}
	}
}

func (f *flagBits) atomicIsSet(bit uint32) bool {
	return atomic.LoadUint32(&f.bits)&bit != 0
}

func (f *flagBits) atomicLoad() uint32 {
	return atomic.LoadUint32(&f.bits)
}

const cacheLinePadSize = unsafe.Sizeof(cpu.CacheLinePad{})

// monotonicNonZeroID hands out ever-increasing lock-version tags, used
// by spinMutex to distinguish a fresh lock acquisition from a stale
// unlock token. Padded to its own cache line to keep the hot counter
// from bouncing against whatever happens to be allocated next to it.
type monotonicNonZeroID struct {
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte
	val uint64
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte
}

func (c *monotonicNonZeroID) next() uint64 {
	v := atomic.AddUint64(&c.val, 1)
	if v == 0 {
		v = atomic.AddUint64(&c.val, 1)
	}
	return v
}

// segmentedMutex is a per-node lock tagged with a caller-chosen version
// so lock coupling code can tell its own acquisition apart from a
// concurrent one when retrying.
type segmentedMutex interface {
	lock(version uint64)
	tryLock(version uint64) bool
	unlock(version uint64) bool
}

type mutexEnum uint8

const (
	spinLockMutex mutexEnum = iota
	nativeMutex
)

func mutexFactory(e mutexEnum) segmentedMutex {
	if e == nativeMutex {
		return new(goSyncMutex)
	}
	return new(spinMutex)
}

const unlocked = 0

// spinMutex is a CAS spinlock. The version argument doubles as the
// locked sentinel value, so unlock only succeeds for the goroutine
// that set it.
type spinMutex uint64

func (lock *spinMutex) lock(version uint64) {
	backoff := uint8(1)
	for !atomic.CompareAndSwapUint64((*uint64)(lock), unlocked, version) {
		if backoff <= 32 {
			for i := uint8(0); i < backoff; i++ {
				infra.ProcYield(20)
			}
		} else {
			runtime.Gosched()
		}
		backoff <<= 1
	}
}

func (lock *spinMutex) tryLock(version uint64) bool {
	return atomic.CompareAndSwapUint64((*uint64)(lock), unlocked, version)
}

func (lock *spinMutex) unlock(version uint64) bool {
	return atomic.CompareAndSwapUint64((*uint64)(lock), version, unlocked)
}

type goSyncMutex struct {
	mu sync.Mutex
}

func (m *goSyncMutex) lock(uint64) {
	m.mu.Lock()
}

func (m *goSyncMutex) tryLock(uint64) bool {
	return m.mu.TryLock()
}

func (m *goSyncMutex) unlock(uint64) bool {
	m.mu.Unlock()
	return true
}
