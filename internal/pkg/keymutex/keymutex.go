// Package keymutex provides a sharded mutex keyed by int64. It serializes
// work on the same key while letting unrelated keys proceed concurrently.
package keymutex

import "sync"

const defaultShards = 64

// KeyMutex is a fixed set of mutex shards. Keys map onto shards, so two
// distinct keys may occasionally share a shard; that only costs throughput,
// never correctness.
type KeyMutex struct {
	shards []sync.Mutex
}

// New creates a KeyMutex with the given shard count (a sensible default is
// used when shards is not positive).
func New(shards int) *KeyMutex {
	if shards <= 0 {
		shards = defaultShards
	}
	return &KeyMutex{shards: make([]sync.Mutex, shards)}
}

// Lock acquires the shard owning key, blocking until it is free.
func (m *KeyMutex) Lock(key int64) {
	m.shards[m.shardFor(key)].Lock()
}

// Unlock releases the shard owning key.
func (m *KeyMutex) Unlock(key int64) {
	m.shards[m.shardFor(key)].Unlock()
}

func (m *KeyMutex) shardFor(key int64) int {
	if key < 0 {
		key = -key
	}
	return int(key % int64(len(m.shards)))
}
