package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexTryLock(t *testing.T) {
	m := newKeyedMutex()

	assert.True(t, m.TryLock("a"))
	assert.False(t, m.TryLock("a"))
	assert.True(t, m.TryLock("b"), "keys are independent")

	m.Unlock("a")
	assert.True(t, m.TryLock("a"))
}

func TestKeyedMutexUnlockUnheldKey(t *testing.T) {
	m := newKeyedMutex()
	m.Unlock("never-held")
	assert.True(t, m.TryLock("never-held"))
}

func TestKeyedMutexConcurrentAcquire(t *testing.T) {
	m := newKeyedMutex()

	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.TryLock("shared") {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, acquired, "exactly one goroutine wins the key")
}
