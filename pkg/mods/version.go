package mods

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// CompareVersions compares two dotted numeric versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
//
// Versions that are valid semver once prefixed with "v" are compared with
// golang.org/x/mod/semver. Anything else (more than three components,
// leading zeros) falls back to a component-wise numeric comparison where
// missing components count as zero.
func CompareVersions(a, b string) int {
	va, vb := "v"+a, "v"+b
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb)
	}
	return compareNumeric(a, b)
}

func compareNumeric(a, b string) int {
	pa, pb := strings.Split(a, "."), strings.Split(b, ".")
	for i := range max(len(pa), len(pb)) {
		if c := cmp.Compare(component(pa, i), component(pb, i)); c != 0 {
			return c
		}
	}
	return 0
}

func component(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(parts[i])
	if err != nil {
		return 0
	}
	return n
}

// SortVersions sorts versions in ascending numeric order.
func SortVersions(versions []string) {
	slices.SortStableFunc(versions, CompareVersions)
}

// LatestVersion returns the highest version, or "" if versions is empty.
func LatestVersion(versions []string) string {
	if len(versions) == 0 {
		return ""
	}
	return slices.MaxFunc(versions, CompareVersions)
}
