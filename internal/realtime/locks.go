package realtime

import (
	"sync"
)

// taskLocks serializes the persist-then-broadcast sequence per task, so the
// broadcast order seen by every session matches the apply order at the
// store. Entries are reference counted and removed when idle.
type taskLocks struct {
	mu      sync.Mutex
	entries map[uint64]*taskLockEntry
}

type taskLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newTaskLocks() *taskLocks {
	return &taskLocks{entries: make(map[uint64]*taskLockEntry)}
}

// lock acquires the mutex for a task id and returns its release function.
func (l *taskLocks) lock(taskID uint64) func() {
	l.mu.Lock()
	entry, ok := l.entries[taskID]
	if !ok {
		entry = &taskLockEntry{}
		l.entries[taskID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, taskID)
		}
		l.mu.Unlock()
	}
}
