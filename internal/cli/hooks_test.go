package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/famtools/pkg/observability"
)

var (
	_ observability.SyncHooks  = (*logHooks)(nil)
	_ observability.CacheHooks = (*logHooks)(nil)
	_ observability.HTTPHooks  = (*logHooks)(nil)
)

func TestLogHooksLevels(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(h *logHooks)
		want string // empty: nothing at info level
	}{
		{"transition", func(h *logHooks) { h.OnTransition(ctx, "Parsing", "Reconciled") }, ""},
		{"archive", func(h *logHooks) { h.OnArchive(ctx, "flib", "0.15.0", true) }, ""},
		{"cache hit", func(h *logHooks) { h.OnCacheHit(ctx, "modportal") }, ""},
		{"http request", func(h *logHooks) { h.OnRequest(ctx, "GET", "mods.factorio.com", "/api/mods/flib/full") }, ""},
		{"fetch ok", func(h *logHooks) { h.OnFetchComplete(ctx, "flib", "0.15.0", time.Second, nil) }, "Downloaded"},
		{"fetch failed", func(h *logHooks) {
			h.OnFetchComplete(ctx, "flib", "0.15.0", time.Second, stderrors.New("checksum"))
		}, "Download failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.call(newLogHooks(newLogger(&buf, log.InfoLevel)))

			got := buf.String()
			if tt.want == "" && got != "" {
				t.Errorf("unexpected info output: %q", got)
			}
			if tt.want != "" && !strings.Contains(got, tt.want) {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogHooksDebug(t *testing.T) {
	var buf bytes.Buffer
	h := newLogHooks(newLogger(&buf, log.DebugLevel))
	ctx := context.Background()

	h.OnTransition(ctx, "Idle", "Parsing")
	h.OnCacheMiss(ctx, "modportal")
	h.OnCacheSet(ctx, "modportal", 512)
	h.OnResponse(ctx, "GET", "mods.factorio.com", "/api/mods/flib/full", 200, 30*time.Millisecond)
	h.OnError(ctx, "GET", "mods.factorio.com", "/download/flib/1", stderrors.New("reset"))

	out := buf.String()
	for _, s := range []string{"Sync state", "Cache miss", "Cache set", "HTTP response", "HTTP error"} {
		if !strings.Contains(out, s) {
			t.Errorf("debug output missing %q", s)
		}
	}
}
