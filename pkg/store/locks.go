package store

import "sync"

// lockTable hands out one mutex per key so read-modify-write cycles on a
// thread's log (or a participant pair) serialize without blocking other
// threads. Entries are never reclaimed; the working set is bounded by the
// number of live threads.
type lockTable struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (t *lockTable) lock(key string) func() {
	t.mu.Lock()
	if t.m == nil {
		t.m = make(map[string]*sync.Mutex)
	}
	l, ok := t.m[key]
	if !ok {
		l = &sync.Mutex{}
		t.m[key] = l
	}
	t.mu.Unlock()
	l.Lock()
	return l.Unlock
}

var (
	threadLocks lockTable
	pairLocks   lockTable
)
