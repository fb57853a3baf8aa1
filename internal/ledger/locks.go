package ledger

import (
	"sort"
	"sync"

	"github.com/mmynk/settleup/internal/models"
)

// keyedMutex hands out one mutex per balance key. Entries are dropped once
// no goroutine holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[models.BalanceKey]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[models.BalanceKey]*refLock)}
}

// lock acquires every key in sorted order and returns the release func.
// Duplicate keys are locked once.
func (k *keyedMutex) lock(keys []models.BalanceKey) func() {
	sorted := uniqueSorted(keys)

	held := make([]*refLock, 0, len(sorted))
	for _, key := range sorted {
		k.mu.Lock()
		l, ok := k.locks[key]
		if !ok {
			l = &refLock{}
			k.locks[key] = l
		}
		l.refs++
		k.mu.Unlock()

		l.Lock()
		held = append(held, l)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()

			k.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(k.locks, sorted[i])
			}
			k.mu.Unlock()
		}
	}
}

func uniqueSorted(keys []models.BalanceKey) []models.BalanceKey {
	out := make([]models.BalanceKey, 0, len(keys))
	seen := make(map[models.BalanceKey]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
