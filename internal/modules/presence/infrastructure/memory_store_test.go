package infrastructure

import (
	"sync"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

const testUserID = snowflake.ID(94490510688792576)

func testSnapshot(status domain.Status) domain.Snapshot {
	return domain.Snapshot{
		ID:            testUserID,
		Username:      "lanyard",
		Discriminator: "0",
		Status:        status,
		Activities:    []domain.Activity{},
		Badges:        []string{"nitro"},
	}
}

func TestMemoryStore_Get(t *testing.T) {
	store := NewMemoryStore()

	if _, ok := store.Get(); ok {
		t.Fatal("expected no snapshot before the first write")
	}

	store.Set(testSnapshot(domain.StatusOnline))

	s, ok := store.Get()
	if !ok {
		t.Fatal("expected snapshot after set")
	}
	if s.Status != domain.StatusOnline {
		t.Errorf("expected online status, got %q", s.Status)
	}

	// Mutating the returned value does not affect the store.
	s.Badges[0] = "mutated"
	again, _ := store.Get()
	if again.Badges[0] != "nitro" {
		t.Errorf("expected stored badges to be unchanged, got %v", again.Badges)
	}
}

func TestMemoryStore_Update(t *testing.T) {
	store := NewMemoryStore()

	store.Update(func(current domain.Snapshot, ok bool) (domain.Snapshot, bool) {
		if ok {
			t.Error("expected no current snapshot")
		}
		return current, false
	})
	if _, ok := store.Get(); ok {
		t.Fatal("expected declined update to leave store empty")
	}

	store.Set(testSnapshot(domain.StatusIdle))
	store.Update(func(current domain.Snapshot, ok bool) (domain.Snapshot, bool) {
		if !ok {
			t.Fatal("expected current snapshot")
		}
		current.Status = domain.StatusDND
		return current, true
	})

	s, _ := store.Get()
	if s.Status != domain.StatusDND {
		t.Errorf("expected dnd status, got %q", s.Status)
	}
}

func TestMemoryStore_KeepsUserID(t *testing.T) {
	store := NewMemoryStore()
	store.Set(testSnapshot(domain.StatusOnline))

	other := testSnapshot(domain.StatusIdle)
	other.ID = snowflake.ID(1234)
	store.Set(other)

	s, _ := store.Get()
	if s.ID != testUserID {
		t.Errorf("expected id %d, got %d", testUserID, s.ID)
	}
	if s.Status != domain.StatusIdle {
		t.Errorf("expected the rest of the write to apply, got %q", s.Status)
	}
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore()

	var got []domain.Status
	unsubscribe := store.Subscribe(func(s domain.Snapshot) {
		// Reading from a subscriber must not deadlock.
		current, _ := store.Get()
		if current.Status != s.Status {
			t.Errorf("expected subscriber to observe %q, got %q", s.Status, current.Status)
		}
		got = append(got, s.Status)
	})

	store.Set(testSnapshot(domain.StatusOnline))
	store.Update(func(current domain.Snapshot, _ bool) (domain.Snapshot, bool) {
		return current, false
	})
	store.Set(testSnapshot(domain.StatusDND))

	if len(got) != 2 || got[0] != domain.StatusOnline || got[1] != domain.StatusDND {
		t.Errorf("expected [online dnd], got %v", got)
	}

	unsubscribe()
	store.Set(testSnapshot(domain.StatusIdle))

	if len(got) != 2 {
		t.Errorf("expected no notification after unsubscribe, got %v", got)
	}
	if store.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", store.SubscriberCount())
	}
}

func TestMemoryStore_SubscribersRunInRegistrationOrder(t *testing.T) {
	store := NewMemoryStore()

	var order []int
	unsubscribes := make([]func(), 0, 8)
	for i := range 8 {
		unsubscribes = append(unsubscribes, store.Subscribe(func(domain.Snapshot) {
			order = append(order, i)
		}))
	}

	store.Set(testSnapshot(domain.StatusOnline))

	for i, got := range order {
		if got != i {
			t.Fatalf("expected registration order, got %v", order)
		}
	}
	if len(order) != 8 {
		t.Fatalf("expected 8 notifications, got %d", len(order))
	}

	// Removing one from the middle keeps the rest in order.
	unsubscribes[3]()
	order = nil
	store.Set(testSnapshot(domain.StatusIdle))

	want := []int{0, 1, 2, 4, 5, 6, 7}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore()
	store.Set(testSnapshot(domain.StatusOnline))

	store.Clear()

	if _, ok := store.Get(); ok {
		t.Error("expected no snapshot after clear")
	}

	// A cleared store accepts a snapshot for any id again.
	other := testSnapshot(domain.StatusIdle)
	other.ID = snowflake.ID(1234)
	store.Set(other)
	if s, _ := store.Get(); s.ID != other.ID {
		t.Errorf("expected id %d, got %d", other.ID, s.ID)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	store.Set(testSnapshot(domain.StatusOnline))

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Update(func(current domain.Snapshot, _ bool) (domain.Snapshot, bool) {
				current.Activities = append(current.Activities, domain.Activity{Name: "game"})
				return current, true
			})
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Get()
		}()
	}
	wg.Wait()

	s, _ := store.Get()
	if len(s.Activities) != 50 {
		t.Errorf("expected 50 serialized appends, got %d", len(s.Activities))
	}
}
