package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

// captureStdout redirects status output to a buffer for the rest of the
// test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestStatusLines(t *testing.T) {
	tests := []struct {
		name  string
		print func()
		want  []string
	}{
		{"success", func() { printSuccess("Enabled %d mods", 3) }, []string{iconSuccess, "Enabled 3 mods"}},
		{"warning", func() { printWarning("%d of %d mods have updates", 1, 4) }, []string{iconWarning, "1 of 4 mods have updates"}},
		{"info", func() { printInfo("Watching %s", "factorio-current.log") }, []string{iconInfo, "Watching factorio-current.log"}},
		{"detail", func() { printDetail("downloaded %s", "flib 0.15.0") }, []string{"  ", "downloaded flib 0.15.0"}},
		{"file", func() { printFile("/mods/mod-list.json") }, []string{iconArrow, "/mods/mod-list.json"}},
		{"key value", func() { printKeyValue("Latest", "0.15.0") }, []string{"Latest", "0.15.0"}},
		{"next step", func() { printNextStep("Make sure the game runs version", "2.0.28") }, []string{"Make sure the game runs version:", "2.0.28"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureStdout(t)
			tt.print()

			got := out.String()
			if !strings.HasSuffix(got, "\n") || strings.Count(got, "\n") != 1 {
				t.Errorf("output should be a single line: %q", got)
			}
			for _, s := range tt.want {
				if !strings.Contains(got, s) {
					t.Errorf("output = %q, missing %q", got, s)
				}
			}
		})
	}
}

func TestCompletionScripts(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	for _, shell := range completionShells() {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			root := New(io.Discard, LogInfo).RootCommand()
			root.SetArgs([]string{"completion", shell})
			root.SetOut(&buf)
			root.SetErr(io.Discard)

			if err := root.ExecuteContext(context.Background()); err != nil {
				t.Fatalf("completion %s error: %v", shell, err)
			}
			if !strings.Contains(buf.String(), "famtools") {
				t.Errorf("completion %s script does not mention famtools", shell)
			}
		})
	}
}

func TestCachePathOutput(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	out := captureStdout(t)

	if err := execute("cache", "path"); err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if !strings.Contains(out.String(), appName) {
		t.Errorf("cache path output = %q", out.String())
	}
}
