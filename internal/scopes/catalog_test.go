package scopes

import (
	"errors"
	"testing"
)

func TestCategory(t *testing.T) {
	cases := []struct {
		scope string
		cat   string
		ok    bool
	}{
		{"engine_start", "basic_operations", true},
		{"telemetry_basic", "data", true},
		{"climate_control", "climate", true},
		{"no_such_scope", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		cat, ok := Category(c.scope)
		if ok != c.ok || cat != c.cat {
			t.Errorf("Category(%q) = (%q, %v), want (%q, %v)", c.scope, cat, ok, c.cat, c.ok)
		}
	}
}

func TestSplit(t *testing.T) {
	got := Split("  engine_start   door_lock ")
	if len(got) != 2 || got[0] != "engine_start" || got[1] != "door_lock" {
		t.Fatalf("Split: %v", got)
	}
	if got := Split("   "); len(got) != 0 {
		t.Fatalf("Split whitespace: %v", got)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name      string
		requested string
		allowed   string
		wantErr   error
	}{
		{"subset ok", "engine_start", "engine_start door_lock", nil},
		{"exact ok", "engine_start door_lock", "engine_start door_lock", nil},
		{"not granted", "climate_control", "engine_start", ErrInvalidScope},
		{"unknown requested", "warp_drive", "engine_start warp_drive", ErrInvalidScope},
		{"unknown in allowed", "engine_start", "engine_start warp_drive", ErrInvalidScope},
		{"empty requested", "", "engine_start", ErrEmptyScope},
		{"empty allowed", "engine_start", "", ErrEmptyScope},
		{"cross category superset", "engine_start telemetry_basic", "engine_start", ErrInvalidScope},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Validate(c.requested, c.allowed)
			if !errors.Is(err, c.wantErr) {
				t.Fatalf("Validate(%q, %q) = %v, want %v", c.requested, c.allowed, err, c.wantErr)
			}
		})
	}
}

// Каждый scope каталога обязан валидироваться против самого себя.
func TestValidateCatalogSelf(t *testing.T) {
	for _, list := range categories {
		for _, s := range list {
			if err := Validate(s, s); err != nil {
				t.Errorf("Validate(%q, %q): %v", s, s, err)
			}
		}
	}
}
