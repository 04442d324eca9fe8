// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about collection mutations, compression changes, cache
// operations, and outgoing HTTP calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Store().OnMutation(ctx, "add", len(avatars))
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// StoreHooks receives events from the avatar collection store.
type StoreHooks interface {
	// OnMutation records a history-producing mutation (add, remove, update,
	// reorder, clear) and the collection size afterwards.
	OnMutation(ctx context.Context, op string, size int)

	// OnRejected records a mutation that was refused (invalid input or a
	// non-permutation reorder).
	OnRejected(ctx context.Context, op string, err error)

	// OnHistory records an undo or redo cursor move.
	OnHistory(ctx context.Context, op string, cursor, depth int)
}

// BoardHooks receives events from board layout and compression.
type BoardHooks interface {
	// OnCompression records a compression change and the mode that produced it.
	OnCompression(ctx context.Context, mode string, from, to float64)

	// OnLayout records a computed layout.
	OnLayout(ctx context.Context, avatars int, duration time.Duration)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnMutation(context.Context, string, int)     {}
func (NoopStoreHooks) OnRejected(context.Context, string, error)   {}
func (NoopStoreHooks) OnHistory(context.Context, string, int, int) {}

// NoopBoardHooks is a no-op implementation of BoardHooks.
type NoopBoardHooks struct{}

func (NoopBoardHooks) OnCompression(context.Context, string, float64, float64) {}
func (NoopBoardHooks) OnLayout(context.Context, int, time.Duration)            {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// registry is an immutable set of hooks. Setters swap in a modified copy so
// emitters read the current set without locking.
type registry struct {
	store StoreHooks
	board BoardHooks
	cache CacheHooks
	http  HTTPHooks
}

func defaults() *registry {
	return &registry{
		store: NoopStoreHooks{},
		board: NoopBoardHooks{},
		cache: NoopCacheHooks{},
		http:  NoopHTTPHooks{},
	}
}

var (
	current atomic.Pointer[registry]
	writeMu sync.Mutex
)

func init() { current.Store(defaults()) }

// swap applies edit to a copy of the current registry and publishes it.
func swap(edit func(r *registry)) {
	writeMu.Lock()
	defer writeMu.Unlock()
	next := *current.Load()
	edit(&next)
	current.Store(&next)
}

// SetStoreHooks registers custom store hooks. A nil h is ignored.
func SetStoreHooks(h StoreHooks) {
	if h != nil {
		swap(func(r *registry) { r.store = h })
	}
}

// SetBoardHooks registers custom board hooks. A nil h is ignored.
func SetBoardHooks(h BoardHooks) {
	if h != nil {
		swap(func(r *registry) { r.board = h })
	}
}

// SetCacheHooks registers custom cache hooks, typically once at startup.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		swap(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks registers hooks for outgoing asset and share requests.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		swap(func(r *registry) { r.http = h })
	}
}

// Store returns the registered store hooks.
func Store() StoreHooks { return current.Load().store }

// Board returns the registered board hooks.
func Board() BoardHooks { return current.Load().board }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }

// Reset restores all hooks to their no-op defaults.
func Reset() {
	writeMu.Lock()
	defer writeMu.Unlock()
	current.Store(defaults())
}
