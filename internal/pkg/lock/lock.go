// Package lock serializes mutations of a single attendance record.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Locker hands out exclusive access to a key. The returned func releases it and is safe to call twice.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// RecordKey is the lock key of an employee's record for one day.
func RecordKey(employeeID string, day time.Time) string {
	return fmt.Sprintf("attendance:%s:%s", employeeID, day.Format("2006-01-02"))
}

type keyedEntry struct {
	sem      chan struct{}
	refs     int
	lastUsed time.Time
}

// KeyedMutex is an in-process Locker with one mutex per key.
// Entries stay in the table until Sweep drops the idle ones.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
	now   func() time.Time
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*keyedEntry),
		now:   time.Now,
	}
}

func (m *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &keyedEntry{sem: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		m.release(e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			m.release(e)
		})
	}, nil
}

func (m *KeyedMutex) release(e *keyedEntry) {
	m.mu.Lock()
	e.refs--
	e.lastUsed = m.now()
	m.mu.Unlock()
}

// Sweep removes keys nobody holds or waits on that were last used more than idle ago.
func (m *KeyedMutex) Sweep(idle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-idle)
	removed := 0
	for key, e := range m.locks {
		if e.refs == 0 && !e.lastUsed.After(cutoff) {
			delete(m.locks, key)
			removed++
		}
	}
	return removed
}

