package factorio

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/famtools/pkg/errors"
)

func TestConfigDir(t *testing.T) {
	home := func() (string, error) { return "/home/engineer", nil }
	env := func(k string) string {
		if k == "APPDATA" {
			return `C:\Users\engineer\AppData\Roaming`
		}
		return ""
	}

	tests := []struct {
		goos string
		want string
	}{
		{"linux", filepath.Join("/home/engineer", ".factorio")},
		{"freebsd", filepath.Join("/home/engineer", ".factorio")},
		{"darwin", filepath.Join("/home/engineer", "Library", "Application Support", "factorio")},
		{"windows", filepath.Join(`C:\Users\engineer\AppData\Roaming`, "Factorio")},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			got, err := configDir(tt.goos, home, env)
			if err != nil {
				t.Fatalf("configDir() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("configDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigDirErrors(t *testing.T) {
	noHome := func() (string, error) { return "", stderrors.New("no home") }
	noEnv := func(string) string { return "" }

	if _, err := configDir("linux", noHome, noEnv); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("linux without home: %v", err)
	}
	if _, err := configDir("windows", noHome, noEnv); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("windows without APPDATA: %v", err)
	}
}

func TestPaths(t *testing.T) {
	if got := ModsDir("/cfg"); got != filepath.Join("/cfg", "mods") {
		t.Errorf("ModsDir() = %q", got)
	}
	if got := CurrentLog("/cfg"); got != filepath.Join("/cfg", "factorio-current.log") {
		t.Errorf("CurrentLog() = %q", got)
	}
}

func writePlayerData(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, PlayerDataFile), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadCredentials(t *testing.T) {
	dir := writePlayerData(t, `{
		"available-campaign-levels": {},
		"service-username": "engineer",
		"service-token": "abc123",
		"last-played-version": {"game_version": "2.0.28"}
	}`)

	creds, err := LoadCredentials(dir)
	if err != nil {
		t.Fatalf("LoadCredentials() error: %v", err)
	}
	if creds.Username != "engineer" || creds.Token != "abc123" {
		t.Errorf("LoadCredentials() = %+v", creds)
	}
}

func TestLoadCredentialsErrors(t *testing.T) {
	tests := []struct {
		name string
		dir  string
	}{
		{"missing file", t.TempDir()},
		{"malformed", writePlayerData(t, `{"service-username": `)},
		{"no token", writePlayerData(t, `{"service-username": "engineer"}`)},
		{"no username", writePlayerData(t, `{"service-token": "abc123"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCredentials(tt.dir)
			if !errors.Is(err, errors.ErrCodeCredentials) {
				t.Errorf("LoadCredentials() error = %v, want CREDENTIALS_ERROR", err)
			}
		})
	}
}
