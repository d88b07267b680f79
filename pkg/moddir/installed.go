package moddir

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/famtools/pkg/errors"
	"github.com/matzehuels/famtools/pkg/mods"
)

// Installed is one mod found in the directory.
type Installed struct {
	Name    string
	Version string
	Path    string
}

// Installed lists the mods present in the directory, in load order. When a
// mod is present in several versions, every version is listed, lowest first.
// Entries that match none of the recognized forms are skipped.
func (d *Dir) Installed() ([]Installed, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, err
	}

	var out []Installed
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(d.path, name)

		switch {
		case !e.IsDir() && strings.HasSuffix(name, ".zip"):
			if n, v, ok := splitArchiveName(strings.TrimSuffix(name, ".zip")); ok {
				out = append(out, Installed{Name: n, Version: v, Path: path})
			}
		case e.IsDir():
			if n, v, ok := splitArchiveName(name); ok {
				out = append(out, Installed{Name: n, Version: v, Path: path})
			} else if v, ok := infoVersion(filepath.Join(path, "info.json")); ok {
				out = append(out, Installed{Name: name, Version: v, Path: path})
			}
		}
	}

	slices.SortStableFunc(out, func(a, b Installed) int { return mods.CompareVersions(a.Version, b.Version) })
	mods.Sort(out, func(i Installed) string { return i.Name })
	return out, nil
}

// splitArchiveName splits "<name>_<version>" at the last underscore.
func splitArchiveName(s string) (name, version string, ok bool) {
	i := strings.LastIndexByte(s, '_')
	if i <= 0 {
		return "", "", false
	}
	name, version = s[:i], s[i+1:]
	if errors.ValidateVersion(version) != nil || errors.ValidateModName(name) != nil {
		return "", "", false
	}
	return name, version, true
}

func infoVersion(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var info struct {
		Version string `json:"version"`
	}
	if json.Unmarshal(data, &info) != nil || info.Version == "" {
		return "", false
	}
	return info.Version, true
}
