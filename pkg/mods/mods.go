// Package mods defines the vocabulary shared by the reconciliation engine:
// the set of official mods bundled with the game, the load order the game
// expects, and numeric ordering of mod versions.
//
// # Load Order
//
// Factorio lists official mods first and everything else after, each group
// sorted case-insensitively by name. [Sort] applies that order to any slice
// given a name accessor; [SortNames] is the string shorthand. Both compute
// the case-folded key once per element per pass.
//
// # Versions
//
// Mod versions are dotted numbers ("1.1.110"). [CompareVersions] orders them
// numerically per component, so "1.1.10" sorts after "1.1.9".
package mods

import (
	"slices"
	"strings"
)

// Engine is the pseudo-mod the game logs for its own core data. It is
// never part of an inventory or a mod list.
const Engine = "core"

var officialNames = []string{"base", "elevated-rails", "quality", "space-age"}

var official = func() map[string]struct{} {
	m := make(map[string]struct{}, len(officialNames))
	for _, n := range officialNames {
		m[n] = struct{}{}
	}
	return m
}()

// OfficialNames returns the mods bundled with the game, in load order.
// The returned slice is a copy.
func OfficialNames() []string {
	return slices.Clone(officialNames)
}

// IsOfficial reports whether name is one of the bundled mods.
// Membership is case-sensitive.
func IsOfficial(name string) bool {
	_, ok := official[name]
	return ok
}

type sortKey[T any] struct {
	item     T
	name     string
	fold     string
	official bool
}

// Sort reorders items into the game's load order: official mods first, then
// third-party mods, each group sorted case-insensitively by name. Names that
// fold to the same key are ordered by their exact bytes so the result does
// not depend on input order.
func Sort[T any](items []T, name func(T) string) {
	keys := make([]sortKey[T], len(items))
	for i, it := range items {
		n := name(it)
		keys[i] = sortKey[T]{item: it, name: n, fold: strings.ToLower(n), official: IsOfficial(n)}
	}
	slices.SortStableFunc(keys, func(a, b sortKey[T]) int {
		if a.official != b.official {
			if a.official {
				return -1
			}
			return 1
		}
		if c := strings.Compare(a.fold, b.fold); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})
	for i := range keys {
		items[i] = keys[i].item
	}
}

// SortNames sorts names in place into load order.
func SortNames(names []string) {
	Sort(names, func(s string) string { return s })
}
