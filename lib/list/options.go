package list

import (
	"github.com/skl-go/skiplist/lib/infra"
	"github.com/skl-go/skiplist/metrics"
)

const (
	defaultMaxLevel    int32   = 16
	defaultProbability float64 = 0.5
)

type listOptions[K infra.OrderedKey, V any] struct {
	maxLevel    int32
	probability float64
	mutex       mutexEnum
	recorder    *metrics.Recorder
}

func (o *listOptions[K, V]) loadOrDefault() {
	if o.maxLevel <= 0 {
		o.maxLevel = defaultMaxLevel
	}
	if o.probability <= 0 || o.probability >= 1 {
		o.probability = defaultProbability
	}
}

// Option configures a Fat or Locked list at construction time.
type Option[K infra.OrderedKey, V any] interface {
	apply(*listOptions[K, V])
}

type optionFunc[K infra.OrderedKey, V any] func(*listOptions[K, V])

func (f optionFunc[K, V]) apply(o *listOptions[K, V]) { f(o) }

// WithMaxLevel overrides the default maximum tower height (16).
func WithMaxLevel[K infra.OrderedKey, V any](maxLevel int32) Option[K, V] {
	return optionFunc[K, V](func(o *listOptions[K, V]) {
		o.maxLevel = maxLevel
	})
}

// WithProbability overrides the default level-sampling probability (0.5).
func WithProbability[K infra.OrderedKey, V any](p float64) Option[K, V] {
	return optionFunc[K, V](func(o *listOptions[K, V]) {
		o.probability = p
	})
}

// WithNativeMutex selects sync.Mutex for Locked's per-node locks
// instead of the default spin lock.
func WithNativeMutex[K infra.OrderedKey, V any]() Option[K, V] {
	return optionFunc[K, V](func(o *listOptions[K, V]) {
		o.mutex = nativeMutex
	})
}

// WithRecorder attaches a metrics.Recorder that observes the latency
// and outcome of every Locked public operation. Has no effect on Fat.
func WithRecorder[K infra.OrderedKey, V any](r *metrics.Recorder) Option[K, V] {
	return optionFunc[K, V](func(o *listOptions[K, V]) {
		o.recorder = r
	})
}
