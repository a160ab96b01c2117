package internal

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollerStaleResponseDiscarded(t *testing.T) {
	p := NewPoller(nil, time.Hour)

	newer := &Results{TotalVotes: 20}
	older := &Results{TotalVotes: 10}

	// Generation 2 lands first; the slow generation-1 response arrives late.
	p.apply(2, newer)
	p.apply(1, older)

	snap := p.Latest()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(2), snap.Generation)
	assert.Equal(t, 20, snap.Results.TotalVotes)
}

func TestPollerSameGenerationNotRegressed(t *testing.T) {
	p := NewPoller(nil, time.Hour)
	p.apply(3, &Results{TotalVotes: 30})
	p.apply(3, &Results{TotalVotes: 31}) // equal generation may refresh, never regress
	assert.Equal(t, 31, p.Latest().Results.TotalVotes)
}

func TestPollerFetchLoop(t *testing.T) {
	var calls atomic.Int64
	fetch := func(ctx context.Context) (*Results, error) {
		n := calls.Add(1)
		return &Results{TotalVotes: int(n)}, nil
	}

	p := NewPoller(fetch, 5*time.Millisecond)
	p.Start(context.Background())

	assert.Eventually(t, func() bool {
		snap := p.Latest()
		return snap != nil && calls.Load() >= 2
	}, time.Second, 2*time.Millisecond)

	p.Stop()
	time.Sleep(10 * time.Millisecond) // let any in-flight fetch land
	after := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "no fetches after Stop")
}

func TestPollerSubscribe(t *testing.T) {
	p := NewPoller(nil, time.Hour)
	ch, cancel := p.Subscribe()
	defer cancel()

	p.apply(1, &Results{TotalVotes: 5})

	select {
	case snap := <-ch:
		assert.Equal(t, 5, snap.Results.TotalVotes)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	cancel()
	p.apply(2, &Results{TotalVotes: 6})
	select {
	case snap, ok := <-ch:
		if ok {
			t.Fatalf("unexpected snapshot after cancel: %+v", snap)
		}
	default:
	}
}

func TestPollerSlowSubscriberSkipsSnapshots(t *testing.T) {
	p := NewPoller(nil, time.Hour)
	ch, cancel := p.Subscribe()
	defer cancel()

	// Fill the buffer and keep going; apply must never block.
	done := make(chan struct{})
	go func() {
		for i := 1; i <= 20; i++ {
			p.apply(uint64(i), &Results{TotalVotes: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("apply blocked on a slow subscriber")
	}

	assert.Equal(t, 20, p.Latest().Results.TotalVotes)
	first := <-ch
	assert.Equal(t, 1, first.Results.TotalVotes)
}
