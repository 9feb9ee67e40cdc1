package keymutex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_KeyMutex_SerializesSameKey(t *testing.T) {
	// Arrange
	m := New(8)
	const workers = 32
	counter := 0

	// Act
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock(42)
			defer m.Unlock(42)
			counter++
		}()
	}
	wg.Wait()

	// Assert
	assert.Equal(t, workers, counter)
}

func Test_KeyMutex_DistinctKeysDoNotBlockEachOther(t *testing.T) {
	// Arrange
	m := New(8)
	m.Lock(1)
	defer m.Unlock(1)

	// Act: a key on another shard must be acquirable while key 1 is held
	acquired := make(chan struct{})
	go func() {
		m.Lock(2)
		defer m.Unlock(2)
		close(acquired)
	}()

	// Assert
	<-acquired
}

func Test_KeyMutex_NegativeKeysMapToValidShards(t *testing.T) {
	m := New(4)

	m.Lock(-7)
	m.Unlock(-7)
}

func Test_New_DefaultsShardCount(t *testing.T) {
	m := New(0)

	assert.Len(t, m.shards, defaultShards)
}
