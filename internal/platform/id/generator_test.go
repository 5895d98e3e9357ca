package id

import (
	"strings"
	"testing"
	"time"
)

func TestRunIDGeneratorFormat(t *testing.T) {
	g := &RunIDGenerator{now: func() time.Time {
		return time.Date(2024, 3, 5, 10, 15, 0, 0, time.FixedZone("WIB", 7*3600))
	}}

	got, err := g.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if !strings.HasPrefix(got, "20240305T031500Z-") || len(got) != len("20240305T031500Z-")+8 {
		t.Fatalf("unexpected run id %q", got)
	}
}

func TestRunIDGeneratorIsUnique(t *testing.T) {
	g := NewRunIDGenerator()
	seen := make(map[string]struct{}, 64)
	for i := 0; i < 64; i++ {
		got, err := g.NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if _, dup := seen[got]; dup {
			t.Fatalf("duplicate run id %q", got)
		}
		seen[got] = struct{}{}
	}
}
