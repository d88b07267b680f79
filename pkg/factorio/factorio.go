// Package factorio locates the game's user data and reads the portal
// credentials stored there.
//
// The user data directory ("config dir") holds player-data.json, the mods
// directory with mod-list.json, and the game logs. Its location depends on
// the platform:
//
//   - Linux:   ~/.factorio
//   - macOS:   ~/Library/Application Support/factorio
//   - Windows: %APPDATA%\Factorio
package factorio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/matzehuels/famtools/pkg/errors"
)

// File and directory names inside the config dir.
const (
	PlayerDataFile = "player-data.json"
	ModsDirName    = "mods"
	CurrentLogFile = "factorio-current.log"
)

// DefaultConfigDir returns the platform's default config dir.
func DefaultConfigDir() (string, error) {
	return configDir(runtime.GOOS, os.UserHomeDir, os.Getenv)
}

func configDir(goos string, home func() (string, error), getenv func(string) string) (string, error) {
	if goos == "windows" {
		appData := getenv("APPDATA")
		if appData == "" {
			return "", errors.New(errors.ErrCodeInvalidConfig, "APPDATA is not set")
		}
		return filepath.Join(appData, "Factorio"), nil
	}

	h, err := home()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate home directory")
	}
	if goos == "darwin" {
		return filepath.Join(h, "Library", "Application Support", "factorio"), nil
	}
	return filepath.Join(h, ".factorio"), nil
}

// ModsDir returns the mods directory inside configDir.
func ModsDir(configDir string) string {
	return filepath.Join(configDir, ModsDirName)
}

// CurrentLog returns the path of the log written by the running or most
// recent game session.
func CurrentLog(configDir string) string {
	return filepath.Join(configDir, CurrentLogFile)
}

// Credentials authenticate archive downloads from the mod portal.
type Credentials struct {
	Username string
	Token    string
}

// LoadCredentials reads the portal username and service token from
// player-data.json in configDir.
//
// Returns an *errors.Error with code CREDENTIALS_ERROR if the file is
// missing or unreadable, or if either value is absent. The game only writes
// them after the player logs in to the portal once.
func LoadCredentials(configDir string) (Credentials, error) {
	path := filepath.Join(configDir, PlayerDataFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, errors.Wrap(errors.ErrCodeCredentials, err, "read %s", path)
	}

	var pd struct {
		Username string `json:"service-username"`
		Token    string `json:"service-token"`
	}
	if err := json.Unmarshal(data, &pd); err != nil {
		return Credentials{}, errors.Wrap(errors.ErrCodeCredentials, err, "parse %s", path)
	}
	if pd.Username == "" || pd.Token == "" {
		return Credentials{}, errors.New(errors.ErrCodeCredentials,
			"%s has no service-username/service-token; log in to the mod portal from the game first", path)
	}
	return Credentials{Username: pd.Username, Token: pd.Token}, nil
}
