package memory

import "testing"

type payload struct {
	a, b float64
	name string
}

func TestArenaAlloc(t *testing.T) {
	a := NewArena[payload](4)
	ptrs := make([]*payload, 10)
	for i := range ptrs {
		ptrs[i] = a.New(payload{a: float64(i), name: "p"})
	}
	if a.Len() != 10 {
		t.Errorf("Len: got %d, expected 10", a.Len())
	}

	// Values survive allocations that add chunks
	for i, p := range ptrs {
		if p.a != float64(i) {
			t.Errorf("value %d: got %v", i, p.a)
		}
	}
	seen := make(map[*payload]bool)
	for _, p := range ptrs {
		if seen[p] {
			t.Fatalf("pointer %p handed out twice", p)
		}
		seen[p] = true
	}
}

func TestArenaReset(t *testing.T) {
	a := NewArena[payload](2)
	first := a.New(payload{a: 1})
	a.New(payload{a: 2})
	a.New(payload{a: 3})
	chunks := len(a.chunks)

	a.Reset()
	if a.Len() != 0 {
		t.Errorf("Len after Reset: got %d, expected 0", a.Len())
	}

	// Memory is reused and zeroed
	p := a.Alloc()
	if p != first {
		t.Errorf("expected first allocation after Reset to reuse %p, got %p", first, p)
	}
	if p.a != 0 {
		t.Errorf("reused value not zeroed: %v", p.a)
	}
	a.Alloc()
	a.Alloc()
	if len(a.chunks) != chunks {
		t.Errorf("chunks: got %d, expected %d reused chunks", len(a.chunks), chunks)
	}
}

func TestArenaZeroValue(t *testing.T) {
	var a Arena[int]
	p := a.New(42)
	if *p != 42 {
		t.Errorf("got %d, expected 42", *p)
	}
}
