package inventory

import (
	stderrors "errors"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/famtools/pkg/errors"
	"github.com/matzehuels/famtools/pkg/modlog"
)

func mention(name, version string) modlog.Mention {
	return modlog.Mention{Name: name, Version: version}
}

func TestFromMentionsScenario(t *testing.T) {
	inv, err := FromMentions([]modlog.Mention{
		mention("base", "1.1.0"),
		mention("elevated-rails", "1.1.0"),
		mention("ConfigurableVehicles", "1.2.0"),
	})
	if err != nil {
		t.Fatalf("FromMentions() error: %v", err)
	}

	want := map[string]string{
		"base":                 "1.1.0",
		"elevated-rails":       "1.1.0",
		"ConfigurableVehicles": "1.2.0",
	}
	if !maps.Equal(inv.Map(), want) {
		t.Errorf("Map() = %v, want %v", inv.Map(), want)
	}

	wantOrder := []string{"base", "elevated-rails", "ConfigurableVehicles"}
	if !slices.Equal(inv.Names(), wantOrder) {
		t.Errorf("Names() = %v, want %v", inv.Names(), wantOrder)
	}
}

func TestBuildDropsCoreAndDuplicates(t *testing.T) {
	inv, err := FromMentions([]modlog.Mention{
		mention("core", "0.0.0"),
		mention("flib", "0.15.0"),
		mention("base", "2.0.28"),
		mention("flib", "0.15.0"),
		mention("core", "0.0.0"),
	})
	if err != nil {
		t.Fatalf("FromMentions() error: %v", err)
	}

	if inv.Len() != 2 {
		t.Errorf("Len() = %d, want 2", inv.Len())
	}
	if _, ok := inv.Version("core"); ok {
		t.Error("inventory should never contain core")
	}
	if v, _ := inv.Version("flib"); v != "0.15.0" {
		t.Errorf("Version(flib) = %q, want %q", v, "0.15.0")
	}
}

func TestBuildConflictRegardlessOfOrder(t *testing.T) {
	orders := [][]modlog.Mention{
		{mention("base", "1.1.0"), mention("base", "1.1.1")},
		{mention("base", "1.1.1"), mention("base", "1.1.0")},
		{mention("base", "1.1.0"), mention("flib", "1.0.0"), mention("base", "1.1.1")},
	}

	for i, ms := range orders {
		_, err := FromMentions(ms)
		var conflict *errors.VersionConflictError
		if !stderrors.As(err, &conflict) {
			t.Fatalf("order %d: error = %v, want VersionConflictError", i, err)
		}
		if conflict.Mod != "base" {
			t.Errorf("order %d: conflict mod = %q, want base", i, conflict.Mod)
		}
		got := []string{conflict.Existing, conflict.Found}
		slices.Sort(got)
		if !slices.Equal(got, []string{"1.1.0", "1.1.1"}) {
			t.Errorf("order %d: conflict versions = %v", i, got)
		}
	}
}

func TestBuildConflictOnCoreStillFails(t *testing.T) {
	_, err := FromMentions([]modlog.Mention{mention("core", "0.0.0"), mention("core", "0.0.1")})
	if !errors.Is(err, errors.ErrCodeVersionConflict) {
		t.Errorf("error = %v, want version conflict", err)
	}
}

func TestBuildFromLog(t *testing.T) {
	log := strings.Join([]string{
		"0.1 Loading mod base 1.1.0 (base)",
		"0.2 Loading mod elevated-rails 1.1.0 (x)",
		"0.3 Loading mod ConfigurableVehicles 1.2.0 (x)",
		"0.4 Loading mod base 1.1.1 (base)",
	}, "\n")

	_, err := Build(modlog.Mentions(strings.NewReader(log)))
	var conflict *errors.VersionConflictError
	if !stderrors.As(err, &conflict) {
		t.Fatalf("Build() error = %v, want VersionConflictError", err)
	}
	if conflict.Mod != "base" || conflict.Existing != "1.1.0" || conflict.Found != "1.1.1" {
		t.Errorf("conflict = %+v, want base 1.1.0 1.1.1", conflict)
	}
}

func TestBuildPropagatesParseError(t *testing.T) {
	_, err := Build(modlog.Mentions(strings.NewReader("0.1 Loading mod base (base)\n")))
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("Build() error = %v, want parse error", err)
	}
}

func TestNamesIndependentOfInputOrder(t *testing.T) {
	a, _ := FromMentions([]modlog.Mention{
		mention("zeta", "1.0.0"), mention("space-age", "2.0.0"), mention("Alpha", "1.0.0"), mention("base", "2.0.0"),
	})
	b, _ := FromMentions([]modlog.Mention{
		mention("base", "2.0.0"), mention("Alpha", "1.0.0"), mention("zeta", "1.0.0"), mention("space-age", "2.0.0"),
	})

	want := []string{"base", "space-age", "Alpha", "zeta"}
	if !slices.Equal(a.Names(), want) || !slices.Equal(b.Names(), want) {
		t.Errorf("Names() = %v / %v, want %v", a.Names(), b.Names(), want)
	}
}

func TestOfficialAndThirdParty(t *testing.T) {
	inv, _ := FromMentions([]modlog.Mention{
		mention("quality", "2.0.0"), mention("flib", "0.15.0"), mention("base", "2.0.0"), mention("Krastorio2", "1.3.0"),
	})

	if got := inv.Official(); !slices.Equal(got, []string{"base", "quality"}) {
		t.Errorf("Official() = %v", got)
	}
	if got := inv.ThirdParty(); !slices.Equal(got, []string{"flib", "Krastorio2"}) {
		t.Errorf("ThirdParty() = %v", got)
	}
}

func TestAllYieldsInLoadOrder(t *testing.T) {
	inv, _ := FromMentions([]modlog.Mention{mention("flib", "0.15.0"), mention("base", "2.0.0")})

	var got []string
	for name, version := range inv.All() {
		got = append(got, name+"@"+version)
	}
	if !slices.Equal(got, []string{"base@2.0.0", "flib@0.15.0"}) {
		t.Errorf("All() = %v", got)
	}
}

func TestMapIsCopy(t *testing.T) {
	inv, _ := FromMentions([]modlog.Mention{mention("flib", "0.15.0")})
	m := inv.Map()
	m["flib"] = "9.9.9"
	if v, _ := inv.Version("flib"); v != "0.15.0" {
		t.Error("Map() should return a copy")
	}
}
