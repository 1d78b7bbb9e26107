package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/gomarketplace/internal/codec"
	"github.com/fjod/gomarketplace/internal/domain"
	"github.com/fjod/gomarketplace/internal/storage"
)

// writer owns every storage write for one key. At most one write is in
// flight; a snapshot queued behind it is replaced by any newer one.
type writer struct {
	kv      storage.KeyValue
	key     string
	timeout time.Duration
	logger  *slog.Logger

	mu         sync.Mutex
	pending    domain.Snapshot
	hasPending bool
	inflight   bool
	closed     bool
	waiters    []chan struct{}

	wake      chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newWriter(kv storage.KeyValue, key string, timeout time.Duration, logger *slog.Logger) *writer {
	w := &writer{
		kv:      kv,
		key:     key,
		timeout: timeout,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *writer) enqueue(items domain.Snapshot) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn("cart writer closed, snapshot not persisted", "key", w.key, "items", len(items))
		return
	}
	w.pending = items
	w.hasPending = true
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	for {
		w.mu.Lock()
		if !w.hasPending {
			w.inflight = false
			for _, ch := range w.waiters {
				close(ch)
			}
			w.waiters = nil
			w.mu.Unlock()
			return
		}
		items := w.pending
		w.pending = nil
		w.hasPending = false
		w.inflight = true
		w.mu.Unlock()

		if err := w.write(items); err != nil {
			w.logger.Warn("cart persist failed", "key", w.key, "items", len(items), "error", err)
		}
	}
}

func (w *writer) write(items domain.Snapshot) error {
	value, err := codec.Encode(items)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.kv.Set(ctx, w.key, value); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	return nil
}

// flush blocks until everything enqueued so far has been written or dropped.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	if !w.hasPending && !w.inflight {
		w.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	w.waiters = append(w.waiters, ch)
	w.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *writer) close(ctx context.Context) error {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.quit)
	})
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
