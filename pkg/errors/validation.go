package errors

import (
	"regexp"
	"unicode"
)

// modNameRegex matches names accepted by the mod portal and the game log.
var modNameRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// versionRegex matches dotted numeric mod versions (e.g. "1.1.0").
var versionRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

// ValidateModName validates a mod name for safety and correctness.
// Mod names end up in file paths and portal URLs, so the rules reject
// anything that could escape the mods directory:
//   - No empty names
//   - No control characters
//   - Not "." or ".." (separators are already excluded below)
//   - Maximum length of 256 characters
//   - Only letters, digits, '.', '_' and '-'
func ValidateModName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidModName, "mod name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidModName, "mod name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidModName, "mod name contains invalid control characters")
		}
	}

	if name == "." || name == ".." {
		return New(ErrCodeInvalidModName, "mod name cannot be %q", name)
	}

	if !modNameRegex.MatchString(name) {
		return New(ErrCodeInvalidModName, "invalid mod name: %q", name)
	}

	return nil
}

// ValidateVersion validates a dotted numeric mod version.
// An empty version is rejected; callers that accept "latest" must check
// for the empty string before calling.
func ValidateVersion(version string) error {
	if version == "" {
		return New(ErrCodeInvalidVersion, "version cannot be empty")
	}
	if !versionRegex.MatchString(version) {
		return New(ErrCodeInvalidVersion, "invalid mod version: %q", version)
	}
	return nil
}
