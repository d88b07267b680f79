// Package inventory builds the canonical set of mods referenced by a log.
//
// An [Inventory] maps each mod name to the single version it was loaded
// with. Construction is two-phase: mentions are first deduplicated into an
// unordered map, rejecting any name seen with two distinct versions, and
// the load order is then derived from the final map by [Inventory.Names].
// The order therefore never depends on the order mentions arrived in.
//
// The engine pseudo-mod "core" is dropped unconditionally.
package inventory

import (
	"iter"
	"maps"
	"slices"

	"github.com/matzehuels/famtools/pkg/errors"
	"github.com/matzehuels/famtools/pkg/modlog"
	"github.com/matzehuels/famtools/pkg/mods"
)

// Inventory is a conflict-free mapping from mod name to version.
// The zero value is not usable; create one with [Build] or [FromMentions].
type Inventory struct {
	versions map[string]string
}

// Build consumes a mention sequence and returns the resulting inventory.
//
// Returns:
//   - the first error yielded by seq (e.g. an *errors.ParseError)
//   - *errors.VersionConflictError if a name appears with two versions
//
// On error no partial inventory is returned.
func Build(seq iter.Seq2[modlog.Mention, error]) (*Inventory, error) {
	inv := &Inventory{versions: make(map[string]string)}
	for m, err := range seq {
		if err != nil {
			return nil, err
		}
		if err := inv.add(m); err != nil {
			return nil, err
		}
	}
	delete(inv.versions, mods.Engine)
	return inv, nil
}

// FromMentions builds an inventory from an in-memory slice of mentions.
func FromMentions(mentions []modlog.Mention) (*Inventory, error) {
	return Build(func(yield func(modlog.Mention, error) bool) {
		for _, m := range mentions {
			if !yield(m, nil) {
				return
			}
		}
	})
}

func (inv *Inventory) add(m modlog.Mention) error {
	if existing, ok := inv.versions[m.Name]; ok {
		if existing != m.Version {
			return &errors.VersionConflictError{Mod: m.Name, Existing: existing, Found: m.Version}
		}
		return nil
	}
	inv.versions[m.Name] = m.Version
	return nil
}

// Len returns the number of mods in the inventory.
func (inv *Inventory) Len() int { return len(inv.versions) }

// Version returns the version recorded for name.
func (inv *Inventory) Version(name string) (string, bool) {
	v, ok := inv.versions[name]
	return v, ok
}

// Names returns all mod names in load order: official mods first, then
// third-party mods, each group sorted case-insensitively.
func (inv *Inventory) Names() []string {
	names := slices.Collect(maps.Keys(inv.versions))
	mods.SortNames(names)
	return names
}

// All iterates over (name, version) pairs in load order.
func (inv *Inventory) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, name := range inv.Names() {
			if !yield(name, inv.versions[name]) {
				return
			}
		}
	}
}

// Official returns the official mod names present, in load order.
func (inv *Inventory) Official() []string {
	return slices.DeleteFunc(inv.Names(), func(n string) bool { return !mods.IsOfficial(n) })
}

// ThirdParty returns the third-party mod names present, in load order.
func (inv *Inventory) ThirdParty() []string {
	return slices.DeleteFunc(inv.Names(), mods.IsOfficial)
}

// Map returns a copy of the name to version mapping.
func (inv *Inventory) Map() map[string]string {
	return maps.Clone(inv.versions)
}
