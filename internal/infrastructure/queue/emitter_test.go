package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/task-manager/internal/core/domain"
)

type recordingSink struct {
	mu     sync.Mutex
	events map[string][]string
	block  chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{events: make(map[string][]string)}
}

func (s *recordingSink) Broadcast(group string, event domain.RealtimeEvent) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[group] = append(s.events[group], event.Payload.(string))
}

func (s *recordingSink) get(group string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events[group]...)
}

func TestEmitter_PreservesPerGroupOrder(t *testing.T) {
	sink := newRecordingSink()
	e := NewEmitter(4, 64, sink, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	e.Start(ctx)
	defer func() {
		cancel()
		e.Wait()
	}()

	want := []string{"1", "2", "3", "4", "5"}
	for _, p := range want {
		e.Broadcast("user-a", domain.RealtimeEvent{Name: "notification", Payload: p})
		e.Broadcast("user-b", domain.RealtimeEvent{Name: "notification", Payload: p})
	}

	require.Eventually(t, func() bool {
		return len(sink.get("user-a")) == len(want) && len(sink.get("user-b")) == len(want)
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, want, sink.get("user-a"))
	assert.Equal(t, want, sink.get("user-b"))
}

func TestEmitter_BroadcastNeverBlocks(t *testing.T) {
	sink := newRecordingSink()
	sink.block = make(chan struct{})
	e := NewEmitter(1, 1, sink, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	e.Start(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			e.Broadcast("user-a", domain.RealtimeEvent{Name: "notification", Payload: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a saturated worker")
	}

	close(sink.block)
	cancel()
	e.Wait()
}

func TestEmitter_ShardIndexIsStable(t *testing.T) {
	e := NewEmitter(0, 0, newRecordingSink(), zerolog.Nop())
	assert.Len(t, e.workers, defaultWorkers)

	first := e.shardIndex("65f0c0ffee0000000000abcd")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.shardIndex("65f0c0ffee0000000000abcd"))
	}
}
