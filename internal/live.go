package internal

import (
	"context"
	"sync"
	"time"
)

// Snapshot is one observed results payload, stamped with the generation of
// the fetch that produced it.
type Snapshot struct {
	Results    *Results
	Generation uint64
	At         time.Time
}

// Poller periodically fetches live results and fans them out to
// subscribers. Fetches run concurrently with the ticker, so a slow response
// can be overtaken by a newer one; the generation counter guarantees a
// stale response never overwrites a newer snapshot.
type Poller struct {
	fetch    func(context.Context) (*Results, error)
	interval time.Duration

	mu        sync.Mutex
	gen       uint64 // last generation issued
	latestGen uint64 // generation of the applied snapshot
	latest    *Snapshot
	subs      map[chan Snapshot]struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(fetch func(context.Context) (*Results, error), interval time.Duration) *Poller {
	return &Poller{
		fetch:    fetch,
		interval: interval,
		subs:     make(map[chan Snapshot]struct{}),
	}
}

// Start launches the polling loop. Stop (or cancelling the parent context)
// ends it.
func (p *Poller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		p.launchFetch(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.launchFetch(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}

func (p *Poller) launchFetch(ctx context.Context) {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	go func() {
		results, err := p.fetch(ctx)
		if err != nil {
			// Next tick retries; failures are not surfaced anywhere.
			return
		}
		p.apply(gen, results)
	}()
}

// apply installs a snapshot unless a newer generation already landed.
func (p *Poller) apply(gen uint64, results *Results) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen < p.latestGen {
		return
	}
	p.latestGen = gen
	snap := Snapshot{Results: results, Generation: gen, At: time.Now()}
	p.latest = &snap

	for ch := range p.subs {
		select {
		case ch <- snap:
		default: // slow subscriber skips this snapshot
		}
	}
}

// Latest returns the newest applied snapshot, nil before the first fetch
// completes.
func (p *Poller) Latest() *Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest
}

// Subscribe registers a snapshot channel; the returned cancel detaches it.
func (p *Poller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 4)
	p.mu.Lock()
	p.subs[ch] = struct{}{}
	p.mu.Unlock()

	return ch, func() {
		p.mu.Lock()
		delete(p.subs, ch)
		p.mu.Unlock()
	}
}
