package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	km := NewKeyedMutex()
	counters := [2]int{}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		for slot := range counters {
			wg.Add(1)
			go func(slot int) {
				defer wg.Done()
				key := uint(slot + 1)
				km.Lock(key)
				defer km.Unlock(key)
				counters[slot]++
			}(slot)
		}
	}
	wg.Wait()

	require.Equal(t, 100, counters[0])
	require.Equal(t, 100, counters[1])
}

func TestKeyedMutexDropsIdleEntries(t *testing.T) {
	km := NewKeyedMutex()
	km.Lock(7)
	km.Unlock(7)
	require.Empty(t, km.locks)
}

func TestKeyedMutexIndependentKeysDoNotBlock(t *testing.T) {
	km := NewKeyedMutex()
	km.Lock(1)
	defer km.Unlock(1)

	done := make(chan struct{})
	go func() {
		km.Lock(2)
		km.Unlock(2)
		close(done)
	}()
	<-done
}
