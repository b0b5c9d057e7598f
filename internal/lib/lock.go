package lib

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrTimeout = errors.New("lock timeout")

// Mutex is a mutex that supports cancellation through context or timeout. Unlock of an unlocked mutex is a no-op
type Mutex struct {
	ch chan struct{}
}

func NewMutex() *Mutex {
	return &Mutex{ch: make(chan struct{}, 1)}
}

func (m *Mutex) Lock() {
	m.ch <- struct{}{}
}

func (m *Mutex) Unlock() {
	select {
	case <-m.ch:
	default:
	}
}

func (m *Mutex) LockCtx(ctx context.Context) error {
	if m.tryLock() {
		return nil
	}
	select {
	case m.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mutex) LockTimeout(timeout time.Duration) error {
	if m.tryLock() {
		return nil
	}
	if timeout <= 0 {
		return ErrTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case m.ch <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrTimeout
	}
}

func (m *Mutex) tryLock() bool {
	select {
	case m.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// KeyedMutex holds one Mutex per key, so operations on different keys do not block each other.
// An entry lives only while someone holds or waits for its key
type KeyedMutex struct {
	locks map[string]*keyedEntry
	mutex sync.Mutex
}

type keyedEntry struct {
	m    *Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedEntry)}
}

// LockCtx locks the key and returns the function that releases it
func (k *KeyedMutex) LockCtx(ctx context.Context, key string) (unlock func(), err error) {
	k.mutex.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{m: NewMutex()}
		k.locks[key] = e
	}
	e.refs++
	k.mutex.Unlock()

	if err := e.m.LockCtx(ctx); err != nil {
		k.release(key, e)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.m.Unlock()
			k.release(key, e)
		})
	}, nil
}

// Len is the number of keys currently held or waited for
func (k *KeyedMutex) Len() int {
	k.mutex.Lock()
	defer k.mutex.Unlock()
	return len(k.locks)
}

func (k *KeyedMutex) release(key string, e *keyedEntry) {
	k.mutex.Lock()
	defer k.mutex.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
}
