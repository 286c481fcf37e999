package llm

import "sync/atomic"

// KeyPool is an ordered credential pool with a rotation cursor. The cursor is
// advanced with an atomic add; under concurrent callers a rotation may be
// duplicated or skipped, which only changes which key is tried next, not the
// correctness of the cascade.
type KeyPool struct {
	keys    []string
	counter uint64
}

// NewKeyPool creates a pool from an ordered key list. An empty list is valid
// and means the provider is disabled.
func NewKeyPool(keys []string) *KeyPool {
	return &KeyPool{keys: keys}
}

// Size returns the number of keys in the pool.
func (p *KeyPool) Size() int {
	return len(p.keys)
}

// Next returns the key at the current cursor and advances the rotation.
// Returns false when the pool is empty.
func (p *KeyPool) Next() (string, bool) {
	if len(p.keys) == 0 {
		return "", false
	}
	idx := atomic.AddUint64(&p.counter, 1) - 1
	return p.keys[idx%uint64(len(p.keys))], true
}

// Keys returns the underlying key list (read-only use).
func (p *KeyPool) Keys() []string {
	return p.keys
}
