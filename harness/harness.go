// Package harness drives multithreaded workloads against a
// list.Map[K,V], generalizing the disjoint-range and mixed-op
// concurrency tests the core package exercises in-process into a
// runnable component suitable for a soak binary.
package harness

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/skl-go/skiplist/lib/infra"
	"github.com/skl-go/skiplist/lib/list"
)

// Runner spawns a bounded pool of workers against one Map[K,V] and
// reports every worker failure, not just the first.
type Runner struct {
	target  list.Map[int, int]
	workers int
	pool    *ants.Pool
}

// NewRunner builds a Runner over target with a pool of the given
// worker capacity. The pool is reused across workload calls.
func NewRunner(target list.Map[int, int], workers int) (*Runner, error) {
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("harness: building worker pool: %w", err)
	}
	return &Runner{target: target, workers: workers, pool: pool}, nil
}

// Release shuts down the underlying worker pool. Call once the Runner
// is no longer needed.
func (r *Runner) Release() {
	r.pool.Release()
}

// runDisjoint partitions [lo,hi) into r.workers contiguous chunks via
// lo.Chunk and dispatches one chunk per pool worker, applying fn to
// every key in a chunk. Errors from every worker are aggregated with
// multierr instead of the first one winning.
func (r *Runner) runDisjoint(lo_, hi int, fn func(key int) error) error {
	keys := make([]int, 0, hi-lo_)
	for k := lo_; k < hi; k++ {
		keys = append(keys, k)
	}
	chunkSize := (len(keys) + r.workers - 1) / r.workers
	if chunkSize == 0 {
		chunkSize = 1
	}
	chunks := lo.Chunk(keys, chunkSize)

	var wg sync.WaitGroup
	errs := make([]error, len(chunks))
	for i, chunk := range chunks {
		i, chunk := i, chunk
		wg.Add(1)
		submitErr := r.pool.Submit(func() {
			defer wg.Done()
			for _, k := range chunk {
				if err := fn(k); err != nil {
					errs[i] = multierr.Append(errs[i], err)
				}
			}
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = multierr.Append(errs[i], submitErr)
		}
	}
	wg.Wait()
	return multierr.Combine(errs...)
}

// DisjointInsert partitions [lo,hi) across workers, each inserting
// its own slice (spec property 6).
func (r *Runner) DisjointInsert(lo_, hi int) error {
	return r.runDisjoint(lo_, hi, func(k int) error {
		r.target.Insert(k, k)
		return nil
	})
}

// DisjointRemove mirrors DisjointInsert for property 7.
func (r *Runner) DisjointRemove(lo_, hi int) error {
	return r.runDisjoint(lo_, hi, func(k int) error {
		r.target.Remove(k)
		return nil
	})
}

// MixedWorkload gives each worker a randomly chosen sub-range of
// [lo,hi) and a mix of insert/remove/search calls in proportions
// insertFrac/removeFrac/searchFrac (property 8). Fractions need not
// sum to 1; they are normalized relative weights.
func (r *Runner) MixedWorkload(lo_, hi int, insertFrac, removeFrac, searchFrac float64, opsPerWorker int) error {
	total := insertFrac + removeFrac + searchFrac
	if total <= 0 {
		insertFrac, removeFrac, searchFrac, total = 1, 1, 1, 3
	}

	var wg sync.WaitGroup
	errs := make([]error, r.workers)
	span := hi - lo_
	if span <= 0 {
		return nil
	}

	for w := 0; w < r.workers; w++ {
		w := w
		wg.Add(1)
		submitErr := r.pool.Submit(func() {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(int64(w) + 1))
			subLo := lo_ + rnd.Intn(span)
			subSpan := 1 + rnd.Intn(hi-subLo)
			for i := 0; i < opsPerWorker; i++ {
				k := subLo + rnd.Intn(subSpan)
				switch pickWeighted(rnd, insertFrac/total, removeFrac/total) {
				case 0:
					r.target.Insert(k, k)
				case 1:
					r.target.Remove(k)
				default:
					r.target.Search(k)
				}
			}
		})
		if submitErr != nil {
			wg.Done()
			errs[w] = submitErr
		}
	}
	wg.Wait()
	return multierr.Combine(errs...)
}

func pickWeighted(rnd *rand.Rand, insertW, removeW float64) int {
	roll := rnd.Float64()
	if roll < insertW {
		return 0
	}
	if roll < insertW+removeW {
		return 1
	}
	return 2
}

// Oracle runs every mutating call against both primary and other
// under the Oracle's own mutex, returning an error from the first call
// whose results diverge. It is the reference-oracle cross-check spec.md §1
// calls for, promoted from an in-test helper to a reusable component.
type Oracle struct {
	primary list.Map[int, int]
	other   list.Map[int, int]
	mu      sync.Mutex
}

// NewOracle pairs primary (typically a list.Locked) with other
// (typically a list.Fat) for divergence checking.
func NewOracle(primary, other list.Map[int, int]) *Oracle {
	return &Oracle{primary: primary, other: other}
}

// DivergedError names the offending key and operation when primary
// and other disagree on an Insert/Remove outcome; Oracle returns it
// wrapped in an infra.ErrorStack.
type DivergedError struct {
	Op       string
	Key      int
	Expected bool
	Got      bool
}

func (e *DivergedError) Error() string {
	return fmt.Sprintf("harness: %s(%d) diverged: oracle=%v primary=%v", e.Op, e.Key, e.Expected, e.Got)
}

func (o *Oracle) Insert(ctx context.Context, key, val int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	want := o.other.Insert(key, val)
	got := o.primary.Insert(key, val)
	if want != got {
		return infra.WrapErrorStack(&DivergedError{Op: "insert", Key: key, Expected: want, Got: got}, "harness: oracle divergence")
	}
	return nil
}

func (o *Oracle) Remove(ctx context.Context, key int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	want := o.other.Remove(key)
	got := o.primary.Remove(key)
	if want != got {
		return infra.WrapErrorStack(&DivergedError{Op: "remove", Key: key, Expected: want, Got: got}, "harness: oracle divergence")
	}
	return nil
}
