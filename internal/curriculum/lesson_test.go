package curriculum

import (
	"testing"
)

func TestCatalogValid(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("catalog invalid: %v", err)
	}
	if got := len(All()); got != 7 {
		t.Fatalf("catalog size = %d, want 7", got)
	}
	if First().ID != "unit-1" {
		t.Errorf("first lesson = %q, want unit-1", First().ID)
	}
}

func TestNext(t *testing.T) {
	next, ok := Next("unit-1")
	if !ok || next.ID != "unit-2" {
		t.Fatalf("Next(unit-1) = %q, %v; want unit-2, true", next.ID, ok)
	}
	next, ok = Next("unit-4")
	if !ok || next.ID != "unit-a2-1" {
		t.Fatalf("Next(unit-4) = %q, %v; want unit-a2-1, true", next.ID, ok)
	}
	if _, ok := Next("unit-c1-1"); ok {
		t.Error("expected no lesson after the last one")
	}
	if _, ok := Next("missing"); ok {
		t.Error("expected no lesson after an unknown id")
	}
}

func TestGet(t *testing.T) {
	l, err := Get("unit-2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if l.Topic() != "Morning Routine" {
		t.Errorf("topic = %q, want Morning Routine", l.Topic())
	}
	if _, err := Get("nope"); err == nil {
		t.Error("expected error for unknown lesson")
	}
}

func TestAllReturnsCopies(t *testing.T) {
	lessons := All()
	lessons[0].Topics[0] = "mutated"
	if First().Topic() != "Introductions" {
		t.Fatal("All() must not expose the catalog's backing arrays")
	}
}

func TestValidateCatalog(t *testing.T) {
	tests := []struct {
		name    string
		lessons []Lesson
		wantErr bool
	}{
		{"empty", nil, true},
		{"duplicate", []Lesson{
			{ID: "a", Level: LevelA1, Topics: []string{"x"}},
			{ID: "a", Level: LevelA1, Topics: []string{"y"}},
		}, true},
		{"bad level", []Lesson{{ID: "a", Level: "Z9", Topics: []string{"x"}}}, true},
		{"no topics", []Lesson{{ID: "a", Level: LevelA2}}, true},
		{"ok", []Lesson{{ID: "a", Level: LevelB2, Topics: []string{"x"}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCatalog(tt.lessons)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateCatalog() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	for _, in := range []string{"b1", "B1"} {
		l, err := ParseLevel(in)
		if err != nil || l != LevelB1 {
			t.Errorf("ParseLevel(%q) = %q, %v", in, l, err)
		}
	}
	if _, err := ParseLevel("D4"); err == nil {
		t.Error("expected error for unknown level")
	}
}
