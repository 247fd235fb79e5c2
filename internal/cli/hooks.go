package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glitchpaper/pkg/observability"
)

// debugHooks logs cache and display events at debug level.
type debugHooks struct {
	logger *log.Logger
}

// registerDebugHooks installs debugHooks as the global observability hooks.
func registerDebugHooks(logger *log.Logger) {
	h := &debugHooks{logger: logger}
	observability.SetCacheHooks(h)
	observability.SetDisplayHooks(h)
}

func (h *debugHooks) OnCacheHit(_ context.Context, kind string) {
	h.logger.Debug("cache hit", "kind", kind)
}

func (h *debugHooks) OnCacheMiss(_ context.Context, kind string) {
	h.logger.Debug("cache miss", "kind", kind)
}

func (h *debugHooks) OnCacheSet(_ context.Context, kind string, size int64) {
	h.logger.Debug("cache set", "kind", kind, "bytes", size)
}

func (h *debugHooks) OnDisplay(_ context.Context, backend, target string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("display failed", "backend", backend, "target", target, "took", d, "err", err)
		return
	}
	h.logger.Debug("displayed", "backend", backend, "target", target, "took", d)
}

func (h *debugHooks) OnFallback(_ context.Context, from, target string, err error) {
	h.logger.Debug("fallback", "from", from, "target", target, "err", err)
}

func (h *debugHooks) OnTransition(_ context.Context, target string, displayed, skipped int, d time.Duration) {
	h.logger.Debug("transition done", "target", target, "displayed", displayed, "skipped", skipped, "took", d)
}
