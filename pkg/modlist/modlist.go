// Package modlist models Factorio's mod-list.json, the document that tells
// the game which mods are enabled and, for third-party mods, which version
// to load.
//
// # Document
//
// A [Document] is an ordered list of [Entry] values with unique names. It is
// mutated in place:
//
//   - [Document.Reset] disables every entry and drops version pins
//   - [Document.Upsert] replaces an entry by name or appends a new one
//   - [Document.NormalizeOrder] moves entries into the game's load order
//
// None of these operations add or remove entries implicitly, and only
// NormalizeOrder changes positions.
//
// # Persistence
//
// [Decode], [Encode], [Load] and [Save] read and write the JSON form:
//
//	{"mods": [{"name": "base", "enabled": true}, ...]}
//
// Save writes to a temporary file in the target directory and renames it
// into place, so a reader never observes a partially written document.
package modlist

import (
	"slices"

	"github.com/matzehuels/famtools/pkg/mods"
)

// Entry is one mod in the list.
type Entry struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Version string `json:"version,omitempty"` // empty means "whatever is installed"
}

// Pinned reports whether the entry carries a version pin.
func (e Entry) Pinned() bool { return e.Version != "" }

// Document is the ordered mod list. Names are unique within Mods.
type Document struct {
	Mods []Entry `json:"mods"`
}

// New creates a document holding a copy of entries in the given order.
func New(entries ...Entry) *Document {
	return &Document{Mods: append(make([]Entry, 0, len(entries)), entries...)}
}

// Len returns the number of entries.
func (d *Document) Len() int { return len(d.Mods) }

// Entry returns the entry named name.
func (d *Document) Entry(name string) (Entry, bool) {
	if i := d.index(name); i >= 0 {
		return d.Mods[i], true
	}
	return Entry{}, false
}

// Names returns entry names in document order.
func (d *Document) Names() []string {
	names := make([]string, len(d.Mods))
	for i, e := range d.Mods {
		names[i] = e.Name
	}
	return names
}

func (d *Document) index(name string) int {
	return slices.IndexFunc(d.Mods, func(e Entry) bool { return e.Name == name })
}

// Reset disables every entry and removes all version pins.
// Entries are neither added nor removed and keep their positions.
func (d *Document) Reset() {
	for i := range d.Mods {
		d.Mods[i] = Entry{Name: d.Mods[i].Name}
	}
}

// Upsert replaces the entry with the same name in place, or appends e if
// no such entry exists. Upserting an identical entry again is a no-op.
func (d *Document) Upsert(e Entry) {
	if i := d.index(e.Name); i >= 0 {
		d.Mods[i] = e
		return
	}
	d.Mods = append(d.Mods, e)
}

// NormalizeOrder sorts entries into the game's load order: official mods
// first, then third-party mods, each group case-insensitive by name.
// Entry fields are never modified. Applying it twice equals applying it once.
func (d *Document) NormalizeOrder() {
	mods.Sort(d.Mods, func(e Entry) string { return e.Name })
}

// Equal reports whether both documents hold the same entries, field by
// field, in the same order.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	return slices.Equal(d.Mods, other.Mods)
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	return New(d.Mods...)
}
