package cli

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/famtools/internal/config"
	"github.com/matzehuels/famtools/pkg/cache"
	"github.com/matzehuels/famtools/pkg/errors"
	"github.com/matzehuels/famtools/pkg/integrations"
	"github.com/matzehuels/famtools/pkg/integrations/modportal"
	"github.com/matzehuels/famtools/pkg/moddir"
)

type fakePortal struct {
	mods  map[string][]string
	calls atomic.Int32
}

func (f *fakePortal) FetchMod(_ context.Context, name string, _ bool) (*modportal.ModInfo, error) {
	f.calls.Add(1)
	versions, ok := f.mods[name]
	if !ok {
		return nil, errors.Wrap(errors.ErrCodeRegistry, integrations.ErrNotFound, "mod %s", name)
	}
	info := &modportal.ModInfo{Name: name}
	for _, v := range versions {
		info.Releases = append(info.Releases, modportal.Release{Version: v})
	}
	return info, nil
}

func TestFindOutdated(t *testing.T) {
	portal := &fakePortal{mods: map[string][]string{
		"flib":       {"0.14.0", "0.15.0"},
		"Krastorio2": {"1.3.24"},
	}}
	installed := []moddir.Installed{
		{Name: "base", Version: "2.0.28"},
		{Name: "flib", Version: "0.9.0"},
		{Name: "flib", Version: "0.14.0"},
		{Name: "Krastorio2", Version: "1.3.24"},
		{Name: "my_dev_mod", Version: "0.0.1"},
	}

	rows, err := findOutdated(context.Background(), portal, installed, false)
	if err != nil {
		t.Fatalf("findOutdated() error: %v", err)
	}

	want := []outdatedRow{
		{Name: "flib", Installed: "0.14.0", Latest: "0.15.0", Status: statusOutdated},
		{Name: "Krastorio2", Installed: "1.3.24", Latest: "1.3.24", Status: statusCurrent},
		{Name: "my_dev_mod", Installed: "0.0.1", Status: statusUnlisted},
	}
	if len(rows) != len(want) {
		t.Fatalf("findOutdated() = %+v, want %+v", rows, want)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
	if n := portal.calls.Load(); n != 3 {
		t.Errorf("portal called %d times, want 3 (official mods skipped, names deduplicated)", n)
	}

	out := renderOutdated(rows)
	for _, s := range []string{"flib", "update available", "not on portal"} {
		if !strings.Contains(out, s) {
			t.Errorf("renderOutdated() missing %q", s)
		}
	}
}

type failingPortal struct{}

func (failingPortal) FetchMod(context.Context, string, bool) (*modportal.ModInfo, error) {
	return nil, errors.Wrap(errors.ErrCodeNetwork, integrations.ErrNetwork, "fetch mod")
}

func TestFindOutdatedNetworkError(t *testing.T) {
	installed := []moddir.Installed{{Name: "flib", Version: "0.15.0"}}
	_, err := findOutdated(context.Background(), failingPortal{}, installed, false)
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("findOutdated() error = %v, want NETWORK_ERROR", err)
	}
}

func TestModStatusString(t *testing.T) {
	tests := map[modStatus]string{
		statusCurrent:  "up to date",
		statusOutdated: "update available",
		statusUnlisted: "not on portal",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("modStatus(%d).String() = %q, want %q", s, got, want)
		}
	}
}

func TestRenderVersions(t *testing.T) {
	info := &modportal.ModInfo{
		Name: "flib",
		Releases: []modportal.Release{
			{Version: "0.9.0", FactorioVersion: "1.1"},
			{Version: "0.15.0", FactorioVersion: "2.0", SHA1: "0123456789abcdef", ReleasedAt: time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)},
			{Version: "0.14.2", FactorioVersion: "2.0"},
		},
	}

	out := renderVersions(info)

	newest := strings.Index(out, "0.15.0")
	middle := strings.Index(out, "0.14.2")
	oldest := strings.Index(out, "0.9.0")
	if newest < 0 || middle < 0 || oldest < 0 {
		t.Fatalf("renderVersions() missing a version:\n%s", out)
	}
	if !(newest < middle && middle < oldest) {
		t.Errorf("renderVersions() should list newest first:\n%s", out)
	}
	if !strings.Contains(out, "2024-11-02") || !strings.Contains(out, "0123456789") {
		t.Errorf("renderVersions() missing release details:\n%s", out)
	}
	if strings.Contains(out, "0123456789abcdef") {
		t.Error("renderVersions() should shorten checksums")
	}
}

func TestShortSHA(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"abc", "abc"},
		{"0123456789", "0123456789"},
		{"0123456789abcdef", "0123456789"},
	}
	for _, tt := range tests {
		if got := shortSHA(tt.in); got != tt.want {
			t.Errorf("shortSHA(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCacheLocation(t *testing.T) {
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	dir, err := config.CacheDir()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		cache config.CacheConfig
		want  string
	}{
		{"file", config.CacheConfig{Backend: cache.BackendFile}, dir},
		{"default", config.CacheConfig{}, dir},
		{"none", config.CacheConfig{Backend: cache.BackendNone}, "(caching disabled)"},
		{"redis", config.CacheConfig{Backend: cache.BackendRedis, RedisAddr: "localhost:6379"},
			"redis://localhost:6379/" + cache.DefaultRedisPrefix + "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache = tt.cache
			if got := cacheLocation(cfg); got != tt.want {
				t.Errorf("cacheLocation() = %q, want %q", got, tt.want)
			}
		})
	}
}
