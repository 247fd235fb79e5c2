// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about frame cache activity and wallpaper display.
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
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    observability.SetDisplayHooks(&myDisplayHooks{})
//	    // ... run daemon
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Cache().OnCacheHit(ctx, "frame")
//	observability.Display().OnDisplay(ctx, "swww", "DP-1", elapsed, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from frame cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, kind string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, kind string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, kind string, size int64)
}

// =============================================================================
// Display Hooks
// =============================================================================

// DisplayHooks receives events from the backend dispatcher.
type DisplayHooks interface {
	// OnDisplay records one backend invocation and its outcome.
	OnDisplay(ctx context.Context, backend, target string, duration time.Duration, err error)

	// OnFallback records the dispatcher moving past a failed backend.
	OnFallback(ctx context.Context, from, target string, err error)

	// OnTransition records a finished transition on one target.
	OnTransition(ctx context.Context, target string, displayed, skipped int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)        {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)       {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int64) {}

// NoopDisplayHooks is a no-op implementation of DisplayHooks.
type NoopDisplayHooks struct{}

func (NoopDisplayHooks) OnDisplay(context.Context, string, string, time.Duration, error) {}
func (NoopDisplayHooks) OnFallback(context.Context, string, string, error)              {}
func (NoopDisplayHooks) OnTransition(context.Context, string, int, int, time.Duration)  {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	displayHooks DisplayHooks = NoopDisplayHooks{}
	hooksMu      sync.RWMutex
)

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetDisplayHooks registers custom display hooks.
// This should be called once at application startup before the rotation starts.
func SetDisplayHooks(h DisplayHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		displayHooks = h
	}
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Display returns the registered display hooks.
func Display() DisplayHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return displayHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	cacheHooks = NoopCacheHooks{}
	displayHooks = NoopDisplayHooks{}
}
