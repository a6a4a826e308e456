package locks

import (
	"sync"
	"testing"
)

func TestLockSerializesSameKey(t *testing.T) {
	m := NewManager()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock(DonationKey(1))
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	m := NewManager()

	unlock1 := m.Lock(DonationKey(1))
	defer unlock1()

	// Acquiring a different donation's lock must not block.
	done := make(chan struct{})
	go func() {
		unlock2 := m.Lock(DonationKey(2))
		unlock2()
		close(done)
	}()
	<-done
}

func TestConcurrentRunsDoNotDeadlock(t *testing.T) {
	m := NewManager()

	// Batches interleaving over shared donations and resources must not
	// deadlock given the donation-before-resource acquisition order.
	var wg sync.WaitGroup
	for run := 0; run < 4; run++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := int64(1); d <= 5; d++ {
				for c := int64(1); c <= 3; c++ {
					unlockDonation := m.Lock(DonationKey(d))
					unlockResource := m.Lock(ResourceKey(c, 1))
					unlockResource()
					unlockDonation()
				}
			}
		}()
	}
	wg.Wait()
}

func TestKeyFormats(t *testing.T) {
	if got := DonationKey(42); got != "donation|42" {
		t.Errorf("DonationKey(42) = %q", got)
	}
	if got := ResourceKey(7, 3); got != "resource|7|3" {
		t.Errorf("ResourceKey(7, 3) = %q", got)
	}
}
