// Package locks provides keyed mutual exclusion for the allocation engine.
//
// The remaining-quantity check and the allocation commit form a classic
// check-then-act pair. Two concurrent attempts against the same donation, or
// against the same (camp, resource type) inventory row, must serialize.
// Unrelated donations and camps never contend — there is no global lock.
package locks

import (
	"fmt"
	"sync"
)

// Manager hands out one mutex per key, created on first use.
// Locks are never discarded; the key space is bounded by the number of
// donations and inventory rows.
type Manager struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates an empty lock manager.
func NewManager() *Manager {
	return &Manager{locks: make(map[string]*sync.Mutex)}
}

func (m *Manager) get(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

// Lock acquires the mutex for key and returns its release func.
func (m *Manager) Lock(key string) func() {
	l := m.get(key)
	l.Lock()
	return l.Unlock
}

// DonationKey is the lock key for one donation.
//
// Allocation attempts always take the donation lock before the resource
// lock. With that fixed order a holder of a resource lock never waits on a
// donation lock, so concurrent batch runs and manual calls cannot deadlock.
func DonationKey(donationID int64) string {
	return fmt.Sprintf("donation|%d", donationID)
}

// ResourceKey is the lock key for one (camp, resource type) inventory row.
func ResourceKey(campID, resourceTypeID int64) string {
	return fmt.Sprintf("resource|%d|%d", campID, resourceTypeID)
}
