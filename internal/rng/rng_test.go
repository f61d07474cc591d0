package rng

import "testing"

func TestDeterministicSequence(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		va := a.Next()
		vb := b.Next()
		if va != vb {
			t.Fatalf("sequence diverged at step %d: %f != %f", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("value out of [0,1) range: %f", va)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	if a.Next() == b.Next() {
		t.Fatalf("expected different seeds to diverge on first draw")
	}
}

func TestBoolBoundary(t *testing.T) {
	g := New(7)
	for i := 0; i < 50; i++ {
		if g.Bool(0) {
			t.Fatalf("probability 0 must never fire")
		}
	}
	for i := 0; i < 50; i++ {
		if !g.Bool(1) {
			t.Fatalf("probability 1 must always fire")
		}
	}
}

func TestKnownTransition(t *testing.T) {
	g := New(0)
	g.Next()
	if g.state != 0*multiplier+increment {
		t.Fatalf("unexpected state after one step: %d", g.state)
	}
}
