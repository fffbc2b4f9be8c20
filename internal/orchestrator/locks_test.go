package orchestrator

import (
	"sync"
	"testing"
)

func TestKeyedMutex(t *testing.T) {
	k := newKeyedMutex()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  = map[string]int{}
		maxSeen = map[string]int{}
	)
	for i := 0; i < 50; i++ {
		key := "a"
		if i%2 == 1 {
			key = "b"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(key)
			defer unlock()

			mu.Lock()
			inside[key]++
			if inside[key] > maxSeen[key] {
				maxSeen[key] = inside[key]
			}
			mu.Unlock()

			mu.Lock()
			inside[key]--
			mu.Unlock()
		}()
	}
	wg.Wait()

	for key, n := range maxSeen {
		if n != 1 {
			t.Errorf("key %s: %d holders at once", key, n)
		}
	}
	if n := k.size(); n != 0 {
		t.Errorf("expected no entries after unlock, got %d", n)
	}
}
