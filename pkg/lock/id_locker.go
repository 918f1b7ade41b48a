package lock

import (
	"sync"

	"github.com/apex/log"
)

// IdLocker hands out one mutex per id. Entries are reference counted and
// dropped once nobody holds or waits on them.
type IdLocker struct {
	mapMutex sync.Mutex
	idMap    map[string]*idMutex
}

type idMutex struct {
	mu   sync.Mutex
	refs int
}

func NewIdLocker() *IdLocker {
	return &IdLocker{
		idMap: make(map[string]*idMutex),
	}
}

func (l *IdLocker) AcquireLock(id string) {
	l.mapMutex.Lock()
	m, ok := l.idMap[id]
	if !ok {
		m = &idMutex{}
		l.idMap[id] = m
	}
	m.refs++
	l.mapMutex.Unlock()

	// Block outside of mapMutex so other ids are not held up.
	m.mu.Lock()
}

func (l *IdLocker) ReleaseLock(id string) {
	l.mapMutex.Lock()
	defer l.mapMutex.Unlock()

	m, ok := l.idMap[id]
	if !ok {
		log.Errorf("ReleaseLock called on id (%s) with no mutex", id)
		return
	}

	m.refs--
	if m.refs == 0 {
		delete(l.idMap, id)
	}

	m.mu.Unlock()
}

func (l *IdLocker) WithLock(id string, f func() error) error {
	l.AcquireLock(id)
	defer l.ReleaseLock(id)
	return f()
}
