package service

import "sync"

// LockRegistry hands out one mutex per key. Hierarchy mutations use it
// keyed by project (level/sequence recomputation spans multiple rows and
// must not interleave); baselining and report generation share a lock
// keyed by control account so one report never mixes two revisions.
type LockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLockRegistry() *LockRegistry {
	return &LockRegistry{locks: make(map[string]*sync.Mutex)}
}

func (r *LockRegistry) get(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	return l
}
