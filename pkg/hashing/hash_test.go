package hashing

import (
	"encoding/binary"
	"testing"

	"github.com/df07/go-scatter/pkg/core"
)

func TestHashBufferMatchesHash(t *testing.T) {
	for _, v := range []int32{0, 1, -7, 123456, 1 << 30} {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		if got, want := HashBuffer(b[:], 0), Hash(v); got != want {
			t.Errorf("HashBuffer(%d) = %x, Hash = %x", v, got, want)
		}
	}
}

func TestHashFloatsMatchesHash(t *testing.T) {
	if HashFloats(0.25, -3, 1e9) != Hash(0.25, -3.0, 1e9) {
		t.Error("HashFloats disagrees with Hash on the same values")
	}
	w := core.NewVec3(0.1, 0.2, 0.3)
	if HashFloats(w.X, w.Y, w.Z) != Hash(w) {
		t.Error("HashFloats of vector components disagrees with Hash of the vector")
	}
}

func TestHashCollisions(t *testing.T) {
	// Small consecutive integers should all hash to distinct values
	seen := make(map[uint64]int)
	for i := 0; i < 1<<16; i++ {
		h := Hash(int64(i))
		if j, ok := seen[h]; ok {
			t.Fatalf("hash collision between %d and %d", i, j)
		}
		seen[h] = i
	}
}

func TestHashBufferSeed(t *testing.T) {
	b := []byte("triangle mesh positions")
	if HashBuffer(b, 0) == HashBuffer(b, 1) {
		t.Error("different seeds should produce different hashes")
	}
	if HashBuffer(b, 7) != HashBuffer(b, 7) {
		t.Error("hash must be deterministic")
	}
}

func TestMixBits(t *testing.T) {
	if MixBits(0) != 0 {
		t.Errorf("MixBits(0) = %x, want 0", MixBits(0))
	}
	seen := make(map[uint64]bool)
	for i := uint64(1); i < 4096; i++ {
		m := MixBits(i)
		if seen[m] {
			t.Fatalf("MixBits is not injective at %d", i)
		}
		seen[m] = true
	}
}
