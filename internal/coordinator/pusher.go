package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/township/internal/apperror"
	"github.com/sakif/township/internal/model"
)

// pusher sends snapshots to the remote store from a single background
// goroutine.
//
// Only the newest unsent snapshot is kept: if several saves happen while a
// push is in flight, the intermediate ones are dropped and only the latest
// is sent next. Combined with the single goroutine this means an older
// snapshot can never reach the remote after a newer one from this process.
//
// Pushes are never retried.
type pusher struct {
	remote  RemoteStore
	logger  *slog.Logger
	timeout time.Duration
	done    func(seq uint64, err error)

	mu      sync.Mutex
	cond    *sync.Cond
	pending *model.Dataset
	seq     uint64 // sequence of pending (or of the last enqueued snapshot)
	busy    bool
	closed  bool

	wg sync.WaitGroup
}

func newPusher(remote RemoteStore, logger *slog.Logger, timeout time.Duration, done func(uint64, error)) *pusher {
	p := &pusher{
		remote:  remote,
		logger:  logger,
		timeout: timeout,
		done:    done,
	}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(1)
	go p.run()
	return p
}

// enqueue replaces any unsent snapshot with d and returns its sequence
// number. It never blocks on the network. After close it is a no-op and
// returns 0.
func (p *pusher) enqueue(d model.Dataset) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0
	}
	if p.pending != nil {
		p.logger.Debug("superseding unsent snapshot", slog.Uint64("seq", p.seq))
	}
	p.seq++
	p.pending = &d
	p.cond.Broadcast()
	return p.seq
}

// flush blocks until nothing is pending or in flight.
func (p *pusher) flush() {
	p.mu.Lock()
	for p.pending != nil || p.busy {
		p.cond.Wait()
	}
	p.mu.Unlock()
}

// close sends whatever is still pending, then stops the goroutine.
func (p *pusher) close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *pusher) run() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.pending == nil && !p.closed {
			p.cond.Wait()
		}
		if p.pending == nil {
			p.mu.Unlock()
			return
		}
		d, seq := *p.pending, p.seq
		p.pending = nil
		p.busy = true
		p.mu.Unlock()

		err := p.push(d, seq)
		if p.done != nil {
			p.done(seq, err)
		}

		p.mu.Lock()
		p.busy = false
		p.cond.Broadcast()
		p.mu.Unlock()
	}
}

// push performs one remote write. It is detached from any request context:
// the mutation that triggered it has already returned.
func (p *pusher) push(d model.Dataset, seq uint64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperror.RemoteWriteFailed(fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			p.logger.Warn("remote sync failed",
				slog.Uint64("seq", seq),
				slog.String("error", err.Error()),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	start := time.Now()
	if err := p.remote.ReplaceAll(ctx, d.All()); err != nil {
		return err
	}
	p.logger.Info("remote sync complete",
		slog.Uint64("seq", seq),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}
