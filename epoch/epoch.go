// Package epoch provides epoch-based deferred reclamation for data
// structures, like list.Locked, that unlink nodes under a lock while
// lock-free readers may still hold pointers to them.
//
// Every reader or writer pins itself to the current epoch for the
// duration of its operation via Enter/Exit. A retired node is not
// reclaimed until every guard that was pinned at or before its
// retirement epoch has exited, which guarantees no pinned goroutine
// can still be dereferencing it. Enter and Exit never take a mutex —
// they claim and release a slot with a compare-and-swap, a free-list
// reuse pattern generalized (from the teacher's sync.Pool-backed
// auxiliary-vector pool) into a scannable list of live pins, since
// reclamation needs to read every outstanding pin's epoch, not just
// hand one back to a pool. Only Retire, called from a mutator that
// already holds node locks, takes a lock of its own.
package epoch

import (
	"sync"
	"sync/atomic"
)

// inactive marks a slot that is not currently pinned to any epoch.
const inactive = ^uint64(0)

type slot struct {
	epoch atomic.Uint64
	next  atomic.Pointer[slot]
}

// Manager tracks live guards and drains retired callbacks once it is
// safe to run them.
type Manager struct {
	epoch atomic.Uint64
	head  atomic.Pointer[slot]

	retireMu sync.Mutex
	retired  []retirement
}

type retirement struct {
	epoch uint64
	free  func()
}

// NewManager returns an empty epoch manager.
func NewManager() *Manager {
	return &Manager{}
}

// Guard represents one pinned operation. Callers must call Exit
// exactly once, typically via defer right after Enter.
type Guard struct {
	s *slot
}

// Enter pins the calling goroutine to the current epoch without ever
// blocking: it scans the existing slot list for one left inactive by
// a goroutine that has since exited and claims it with a CAS, falling
// back to pushing a freshly allocated slot onto the list (also via
// CAS) if none is free. The returned Guard must be released with
// Exit.
func (m *Manager) Enter() *Guard {
	e := m.epoch.Load()
	for s := m.head.Load(); s != nil; s = s.next.Load() {
		if s.epoch.Load() == inactive && s.epoch.CompareAndSwap(inactive, e) {
			return &Guard{s: s}
		}
	}

	s := &slot{}
	s.epoch.Store(e)
	for {
		head := m.head.Load()
		s.next.Store(head)
		if m.head.CompareAndSwap(head, s) {
			return &Guard{s: s}
		}
	}
}

// Exit releases the guard, allowing reclamation to proceed past the
// epoch it was pinned to. Lock-free: a single atomic store.
func (g *Guard) Exit() {
	g.s.epoch.Store(inactive)
}

// Retire schedules free to run once no guard can still observe the
// node it cleans up. Call it right after physically unlinking the
// node, while still holding whatever locks made the unlink safe.
func (m *Manager) Retire(free func()) {
	e := m.epoch.Add(1) - 1

	m.retireMu.Lock()
	defer m.retireMu.Unlock()
	m.retired = append(m.retired, retirement{epoch: e, free: free})
	m.drainLocked()
}

// drainLocked runs every retired callback whose epoch predates all
// currently pinned guards. Must be called with retireMu held; reads
// the slot list without a lock, the same way Enter/Exit do.
func (m *Manager) drainLocked() {
	minPinned := m.epoch.Load()
	for s := m.head.Load(); s != nil; s = s.next.Load() {
		if se := s.epoch.Load(); se != inactive && se < minPinned {
			minPinned = se
		}
	}

	kept := m.retired[:0]
	for _, r := range m.retired {
		if r.epoch < minPinned {
			r.free()
		} else {
			kept = append(kept, r)
		}
	}
	m.retired = kept
}
