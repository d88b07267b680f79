package modlist

import (
	"slices"
	"strings"
	"testing"
)

func mustDecode(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := Decode(strings.NewReader(s))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	return doc
}

func TestReset(t *testing.T) {
	doc := New(
		Entry{Name: "aai-vehicles-ironclad", Enabled: false},
		Entry{Name: "Advanced-Electric-Revamped-v16", Enabled: true},
		Entry{Name: "afraid-of-the-dark", Enabled: true, Version: "1.2.3"},
	)
	doc.Reset()

	for _, e := range doc.Mods {
		if e.Enabled || e.Pinned() {
			t.Errorf("entry %+v should be disabled and unpinned", e)
		}
	}
	want := []string{"aai-vehicles-ironclad", "Advanced-Electric-Revamped-v16", "afraid-of-the-dark"}
	if !slices.Equal(doc.Names(), want) {
		t.Errorf("Reset() changed order: %v", doc.Names())
	}
}

func TestResetThenNormalizeScenario(t *testing.T) {
	doc := mustDecode(t, `{"mods":[{"name":"afraid-of-the-dark","enabled":true,"version":"1.2.3"},{"name":"base","enabled":true}]}`)

	doc.Reset()
	doc.NormalizeOrder()

	want := New(
		Entry{Name: "base", Enabled: false},
		Entry{Name: "afraid-of-the-dark", Enabled: false},
	)
	if !doc.Equal(want) {
		t.Errorf("document = %+v, want %+v", doc.Mods, want.Mods)
	}

	var sb strings.Builder
	if err := Encode(&sb, doc); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if strings.Contains(sb.String(), "version") {
		t.Errorf("encoded document should not carry versions:\n%s", sb.String())
	}
}

func TestNormalizeOrder(t *testing.T) {
	doc := New(
		Entry{Name: "afraid-of-the-dark", Enabled: true, Version: "1.2.3"},
		Entry{Name: "elevated-rails", Enabled: true},
		Entry{Name: "aai-vehicles-ironclad", Enabled: false},
		Entry{Name: "base", Enabled: true},
		Entry{Name: "Advanced-Electric-Revamped-v16", Enabled: true},
		Entry{Name: "ConfigurableVehicles", Enabled: false},
	)
	doc.NormalizeOrder()

	want := New(
		Entry{Name: "base", Enabled: true},
		Entry{Name: "elevated-rails", Enabled: true},
		Entry{Name: "aai-vehicles-ironclad", Enabled: false},
		Entry{Name: "Advanced-Electric-Revamped-v16", Enabled: true},
		Entry{Name: "afraid-of-the-dark", Enabled: true, Version: "1.2.3"},
		Entry{Name: "ConfigurableVehicles", Enabled: false},
	)
	if !doc.Equal(want) {
		t.Errorf("NormalizeOrder() = %v, want %v", doc.Mods, want.Mods)
	}
}

func TestNormalizeOrderIdempotent(t *testing.T) {
	doc := New(
		Entry{Name: "zeta", Enabled: true, Version: "1.0.0"},
		Entry{Name: "space-age", Enabled: true},
		Entry{Name: "Beta"},
		Entry{Name: "base", Enabled: true},
		Entry{Name: "alpha", Version: "2.0.0"},
	)
	doc.NormalizeOrder()
	once := doc.Clone()
	doc.NormalizeOrder()

	if !doc.Equal(once) {
		t.Errorf("NormalizeOrder() not idempotent: %v vs %v", doc.Mods, once.Mods)
	}
}

func TestNormalizeOrderOfficialFirst(t *testing.T) {
	doc := New(Entry{Name: "Aardvark"}, Entry{Name: "quality"}, Entry{Name: "aaa"}, Entry{Name: "base"})
	doc.NormalizeOrder()

	want := []string{"base", "quality", "aaa", "Aardvark"}
	if !slices.Equal(doc.Names(), want) {
		t.Errorf("NormalizeOrder() = %v, want %v", doc.Names(), want)
	}
}

func TestUpsert(t *testing.T) {
	doc := New(Entry{Name: "base"}, Entry{Name: "flib", Version: "0.14.0"})

	doc.Upsert(Entry{Name: "flib", Enabled: true, Version: "0.15.0"})
	if doc.Len() != 2 {
		t.Fatalf("Upsert() of existing name changed length to %d", doc.Len())
	}
	if e, _ := doc.Entry("flib"); e.Version != "0.15.0" || !e.Enabled {
		t.Errorf("Upsert() did not replace entry: %+v", e)
	}
	if doc.Mods[1].Name != "flib" {
		t.Error("Upsert() should replace in place")
	}

	doc.Upsert(Entry{Name: "Krastorio2", Enabled: true, Version: "1.3.0"})
	if doc.Len() != 3 || doc.Mods[2].Name != "Krastorio2" {
		t.Errorf("Upsert() of new name should append: %v", doc.Names())
	}
}

func TestUpsertIdempotent(t *testing.T) {
	doc := New(Entry{Name: "base", Enabled: true})
	e := Entry{Name: "flib", Enabled: true, Version: "0.15.0"}

	doc.Upsert(e)
	after := doc.Clone()
	doc.Upsert(e)

	if !doc.Equal(after) {
		t.Errorf("second Upsert() changed document: %v vs %v", doc.Mods, after.Mods)
	}
}

func TestUpsertReplacesVersionPin(t *testing.T) {
	doc := New(Entry{Name: "flib", Enabled: true, Version: "0.15.0"})
	doc.Upsert(Entry{Name: "flib", Enabled: true})

	if e, _ := doc.Entry("flib"); e.Pinned() {
		t.Errorf("Upsert() should replace the whole entry, got %+v", e)
	}
}

func TestEqual(t *testing.T) {
	a := New(Entry{Name: "base", Enabled: true}, Entry{Name: "flib", Version: "1.0.0"})

	tests := []struct {
		name string
		b    *Document
		want bool
	}{
		{"same", New(Entry{Name: "base", Enabled: true}, Entry{Name: "flib", Version: "1.0.0"}), true},
		{"different order", New(Entry{Name: "flib", Version: "1.0.0"}, Entry{Name: "base", Enabled: true}), false},
		{"different enabled", New(Entry{Name: "base"}, Entry{Name: "flib", Version: "1.0.0"}), false},
		{"different version", New(Entry{Name: "base", Enabled: true}, Entry{Name: "flib", Version: "1.0.1"}), false},
		{"missing version", New(Entry{Name: "base", Enabled: true}, Entry{Name: "flib"}), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := New(Entry{Name: "base", Enabled: true})
	c := doc.Clone()
	c.Mods[0].Enabled = false

	if !doc.Mods[0].Enabled {
		t.Error("Clone() should not share entries")
	}
}
