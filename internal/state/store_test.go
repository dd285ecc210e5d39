package state

import (
	"sync"
	"testing"
	"time"
)

type snap struct {
	Version int
	Items   []int
}

func TestStore_PublishAndSnapshot(t *testing.T) {
	s := NewStore(snap{Version: 0})

	if got := s.Snapshot(); got.Version != 0 {
		t.Fatalf("initial Version = %d, want 0", got.Version)
	}

	s.Publish(snap{Version: 1, Items: []int{1, 2}})

	got := s.Snapshot()
	if got.Version != 1 || len(got.Items) != 2 {
		t.Fatalf("Snapshot = %#v, want version 1 with 2 items", got)
	}
}

func TestStore_SubscribeReceivesInOrder(t *testing.T) {
	s := NewStore(snap{})
	ch, cancel := s.Subscribe(8)
	defer cancel()

	for i := 1; i <= 3; i++ {
		s.Publish(snap{Version: i})
	}

	for want := 1; want <= 3; want++ {
		got := <-ch
		if got.Version != want {
			t.Fatalf("received Version = %d, want %d", got.Version, want)
		}
	}
}

func TestStore_SlowReaderReceivesEveryValue(t *testing.T) {
	s := NewStore(snap{})
	ch, cancel := s.Subscribe(1)
	defer cancel()

	for i := 1; i <= 5; i++ {
		s.Publish(snap{Version: i})
	}

	for want := 1; want <= 5; want++ {
		time.Sleep(time.Millisecond)
		got := <-ch
		if got.Version != want {
			t.Fatalf("received Version = %d, want %d", got.Version, want)
		}
	}
}

func TestStore_CloseDeliversBacklogBeforeClosing(t *testing.T) {
	s := NewStore(snap{})
	ch, cancel := s.Subscribe(1)
	defer cancel()

	for i := 1; i <= 3; i++ {
		s.Publish(snap{Version: i})
	}
	s.Close()

	var got []int
	for v := range ch {
		got = append(got, v.Version)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("received versions %v, want [1 2 3]", got)
	}
}

func TestStore_UnsubscribeClosesChannel(t *testing.T) {
	s := NewStore(snap{})
	ch, cancel := s.Subscribe(1)

	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("channel still open after unsubscribe")
	}
	if n := len(s.subs); n != 0 {
		t.Fatalf("subscribers = %d, want 0", n)
	}

	// Publishing after unsubscribe must not panic on the closed channel.
	s.Publish(snap{Version: 1})
}

func TestStore_CloseEndsSubscriptions(t *testing.T) {
	s := NewStore(snap{})
	ch, cancel := s.Subscribe(1)
	defer cancel()

	s.Close()
	s.Close()

	if _, ok := <-ch; ok {
		t.Fatal("channel still open after Close")
	}

	late, lateCancel := s.Subscribe(1)
	defer lateCancel()
	if _, ok := <-late; ok {
		t.Fatal("subscription after Close should be closed")
	}

	s.Publish(snap{Version: 9})
	if got := s.Snapshot(); got.Version != 9 {
		t.Fatalf("Snapshot after Close = %d, want 9", got.Version)
	}
}

func TestStore_ConcurrentPublishAndRead(t *testing.T) {
	s := NewStore(snap{})
	ch, cancel := s.Subscribe(4)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Publish(snap{Version: i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = s.Snapshot()
		}
	}()
	wg.Wait()
	s.Close()

	n := 0
	var last snap
	for v := range ch {
		n++
		last = v
	}
	if n != 200 || last.Version != 199 {
		t.Fatalf("delivered %d values ending at %d, want 200 ending at 199", n, last.Version)
	}
}
