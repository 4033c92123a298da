package containers

import (
	"testing"

	"github.com/df07/go-scatter/pkg/hashing"
)

func hashInt(v int) uint64 { return hashing.Hash(int64(v)) }

func TestHashMapInsertGet(t *testing.T) {
	m := NewHashMap[int, string](hashInt)
	m.Insert(1, "one")
	m.Insert(2, "two")
	m.Insert(1, "uno")

	if m.Len() != 2 {
		t.Errorf("Len: got %d, expected 2", m.Len())
	}
	if v, ok := m.Get(1); !ok || v != "uno" {
		t.Errorf("Get(1): got %q %v, expected %q true", v, ok, "uno")
	}
	if _, ok := m.Get(3); ok {
		t.Errorf("Get(3): found missing key")
	}
	if !m.HasKey(2) || m.HasKey(4) {
		t.Errorf("HasKey returned wrong results")
	}
}

func TestHashMapGrowth(t *testing.T) {
	m := NewHashMap[int, int](hashInt)
	if m.Cap() != 8 {
		t.Fatalf("initial Cap: got %d, expected 8", m.Cap())
	}

	// Third insert pushes 3*n past 8
	m.Insert(0, 0)
	m.Insert(1, 1)
	if m.Cap() != 8 {
		t.Errorf("Cap after 2 inserts: got %d, expected 8", m.Cap())
	}
	m.Insert(2, 4)
	if m.Cap() != 64 {
		t.Errorf("Cap after 3 inserts: got %d, expected 64", m.Cap())
	}

	for i := 3; i < 1000; i++ {
		m.Insert(i, i*i)
	}
	if m.Len() != 1000 {
		t.Errorf("Len: got %d, expected 1000", m.Len())
	}
	if 3*m.Len() > m.Cap() {
		t.Errorf("load factor exceeded: %d entries in %d slots", m.Len(), m.Cap())
	}
	for i := 0; i < 1000; i++ {
		if v, ok := m.Get(i); !ok || v != i*i {
			t.Fatalf("Get(%d): got %d %v", i, v, ok)
		}
	}
}

func TestHashMapCollidingHash(t *testing.T) {
	// Every key lands on the same base slot; probing must still find them all
	m := NewHashMap[int, int](func(int) uint64 { return 5 })
	for i := 0; i < 100; i++ {
		m.Insert(i, -i)
	}
	for i := 0; i < 100; i++ {
		if v, ok := m.Get(i); !ok || v != -i {
			t.Fatalf("Get(%d): got %d %v", i, v, ok)
		}
	}
}

func TestHashMapRangeAndClear(t *testing.T) {
	m := NewHashMap[int, int](hashInt)
	for i := 0; i < 10; i++ {
		m.Insert(i, 1)
	}
	sum := 0
	m.Range(func(k, v int) bool {
		sum += v
		return true
	})
	if sum != 10 {
		t.Errorf("Range visited %d entries, expected 10", sum)
	}

	visited := 0
	m.Range(func(int, int) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("Range did not stop early: visited %d", visited)
	}

	m.Clear()
	if m.Len() != 0 || m.Cap() != 8 || m.HasKey(3) {
		t.Errorf("Clear: got len %d cap %d", m.Len(), m.Cap())
	}
}
