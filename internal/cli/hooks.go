package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks implements the observability hook interfaces by logging at
// debug level, except for fetch results which are user-visible progress.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l}
}

func (h *logHooks) OnTransition(_ context.Context, from, to string) {
	h.logger.Debug("Sync state", "from", from, "to", to)
}

func (h *logHooks) OnArchive(_ context.Context, name, version string, present bool) {
	h.logger.Debug("Archive check", "mod", name, "version", version, "present", present)
}

func (h *logHooks) OnFetchComplete(_ context.Context, name, version string, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("Download failed", "mod", name, "version", version, "err", err)
		return
	}
	h.logger.Info("Downloaded", "mod", name, "version", version, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnCacheHit(_ context.Context, kind string) {
	h.logger.Debug("Cache hit", "kind", kind)
}

func (h *logHooks) OnCacheMiss(_ context.Context, kind string) {
	h.logger.Debug("Cache miss", "kind", kind)
}

func (h *logHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.logger.Debug("Cache set", "kind", kind, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("HTTP request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("HTTP response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("HTTP error", "method", method, "host", host, "path", path, "err", err)
}
