package random

import "testing"

func TestNewSeedVaries(t *testing.T) {
	first, err := NewSeed()
	if err != nil {
		t.Fatalf("new seed: %v", err)
	}
	second, err := NewSeed()
	if err != nil {
		t.Fatalf("new seed: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct seeds, got %d twice", first)
	}
}

func TestNewReplaysSequence(t *testing.T) {
	a, b := New(7), New(7)
	for i := 0; i < 20; i++ {
		if x, y := Die(a, 6), Die(b, 6); x != y {
			t.Fatalf("roll %d diverged: %d != %d", i, x, y)
		}
	}
}

func TestDieStaysInRange(t *testing.T) {
	rng := New(1)
	seen := map[int]bool{}
	for i := 0; i < 600; i++ {
		v := Die(rng, 6)
		if v < 1 || v > 6 {
			t.Fatalf("die out of range: %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 6 {
		t.Fatalf("expected every face, saw %v", seen)
	}
}

func TestPickReturnsMember(t *testing.T) {
	rng := New(3)
	items := []string{"red", "green", "blue"}
	for i := 0; i < 30; i++ {
		got := Pick(rng, items)
		if got != "red" && got != "green" && got != "blue" {
			t.Fatalf("unexpected pick %q", got)
		}
	}
}
