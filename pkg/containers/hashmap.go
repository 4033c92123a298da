package containers

// HashMap is an open-addressing hash table with quadratic probing and a
// caller-supplied hash function
type HashMap[K comparable, V any] struct {
	table   []hashEntry[K, V]
	nStored int
	hash    func(K) uint64
}

type hashEntry[K comparable, V any] struct {
	key   K
	value V
	used  bool
}

// NewHashMap creates an empty map with capacity 8
func NewHashMap[K comparable, V any](hash func(K) uint64) *HashMap[K, V] {
	return &HashMap[K, V]{
		table: make([]hashEntry[K, V], 8),
		hash:  hash,
	}
}

// Len returns the number of stored keys
func (m *HashMap[K, V]) Len() int { return m.nStored }

// Cap returns the number of slots in the table
func (m *HashMap[K, V]) Cap() int { return len(m.table) }

func (m *HashMap[K, V]) findOffset(key K) int {
	mask := uint64(len(m.table) - 1)
	base := m.hash(key) & mask
	for nProbes := uint64(0); ; nProbes++ {
		offset := (base + nProbes/2 + nProbes*nProbes/2) & mask
		if e := &m.table[offset]; !e.used || e.key == key {
			return int(offset)
		}
	}
}

// Insert stores value under key, replacing any previous value
func (m *HashMap[K, V]) Insert(key K, value V) {
	offset := m.findOffset(key)
	if !m.table[offset].used {
		m.nStored++
	}
	m.table[offset] = hashEntry[K, V]{key: key, value: value, used: true}
	if 3*m.nStored > len(m.table) {
		m.grow()
	}
}

// Get returns the value stored under key
func (m *HashMap[K, V]) Get(key K) (V, bool) {
	e := &m.table[m.findOffset(key)]
	if !e.used {
		var zero V
		return zero, false
	}
	return e.value, true
}

// HasKey reports whether key is present
func (m *HashMap[K, V]) HasKey(key K) bool {
	return m.table[m.findOffset(key)].used
}

// Range calls fn for every entry until fn returns false
func (m *HashMap[K, V]) Range(fn func(K, V) bool) {
	for i := range m.table {
		if e := &m.table[i]; e.used {
			if !fn(e.key, e.value) {
				return
			}
		}
	}
}

// Clear removes every entry and shrinks the table back to its initial size
func (m *HashMap[K, V]) Clear() {
	m.table = make([]hashEntry[K, V], 8)
	m.nStored = 0
}

func (m *HashMap[K, V]) grow() {
	old := m.table
	m.table = make([]hashEntry[K, V], max(64, 2*len(old)))
	for i := range old {
		if e := &old[i]; e.used {
			m.table[m.findOffset(e.key)] = *e
		}
	}
}
