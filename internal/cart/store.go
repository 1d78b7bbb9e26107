package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/gomarketplace/internal/codec"
	"github.com/fjod/gomarketplace/internal/domain"
	"github.com/fjod/gomarketplace/internal/storage"
	"golang.org/x/sync/singleflight"
)

// DefaultKey is the storage slot holding the whole cart.
const DefaultKey = "@GoMarketplace"

const defaultWriteTimeout = 5 * time.Second

// Observer receives every snapshot the store publishes. It runs on the
// dispatching goroutine and must not dispatch back into the store.
type Observer func(items domain.Snapshot)

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(s *Store) { s.writeTimeout = d }
}

func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observers[s.nextObserverID] = o
		s.nextObserverID++
	}
}

// Store is the single source of truth for the cart. Every mutation goes
// through Reduce under the store lock, is published to observers and is
// handed to a single background writer for persistence.
type Store struct {
	kv           storage.KeyValue
	key          string
	logger       *slog.Logger
	writeTimeout time.Duration
	writer       *writer
	sfg          singleflight.Group // coalesces concurrent loads

	// publishMu keeps observers seeing snapshots in dispatch order
	publishMu sync.Mutex

	mu             sync.RWMutex
	items          domain.Snapshot
	loaded         bool
	held           []Action // dispatched before the first load resolved
	observers      map[int]Observer
	nextObserverID int

	readyOnce sync.Once
	ready     chan struct{}
}

func New(kv storage.KeyValue, opts ...Option) *Store {
	s := &Store{
		kv:           kv,
		key:          DefaultKey,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		writeTimeout: defaultWriteTimeout,
		items:        domain.Snapshot{},
		observers:    make(map[int]Observer),
		ready:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.writer = newWriter(kv, s.key, s.writeTimeout, s.logger)
	return s
}

// Initialize starts loading the persisted cart and returns immediately.
// Failures leave the cart empty and are only logged.
func (s *Store) Initialize(ctx context.Context) {
	go func() {
		if err := s.Load(ctx); err != nil {
			s.logger.Warn("cart load failed, starting empty", "key", s.key, "error", err)
		}
	}()
}

// Ready is closed once the first load has resolved, successfully or not.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Load reads the persisted cart and hydrates the store with it. Actions
// dispatched before the first load resolves are held back from storage and
// replayed on top of the loaded cart, so an early mutation never overwrites
// the stored one. Only the first load reads; later calls return nil.
func (s *Store) Load(ctx context.Context) error {
	defer s.readyOnce.Do(func() { close(s.ready) })

	_, err, _ := s.sfg.Do(s.key, func() (interface{}, error) {
		s.mu.RLock()
		loaded := s.loaded
		s.mu.RUnlock()
		if loaded {
			return nil, nil
		}

		value, err := s.kv.Get(ctx, s.key)
		if errors.Is(err, storage.ErrNotFound) {
			s.resolve(nil, false)
			return nil, nil
		}
		if err != nil {
			s.resolve(nil, false)
			return nil, fmt.Errorf("%w: %w", ErrStorageRead, err)
		}

		items, err := codec.Decode(value)
		if err != nil {
			s.resolve(nil, false)
			return nil, fmt.Errorf("%w: %w", ErrStorageRead, err)
		}

		s.resolve(items, true)
		return nil, nil
	})
	return err
}

// resolve ends the pending load. When found, the loaded cart replaces the
// current one and the held actions are replayed on top of it.
func (s *Store) resolve(loaded domain.Snapshot, found bool) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	held := s.held
	s.held = nil
	s.loaded = true

	if !found {
		next := s.items
		s.mu.Unlock()
		if len(held) > 0 {
			s.writer.enqueue(next)
		}
		return
	}

	next := Reduce(s.items, Hydrate{Items: loaded})
	for _, action := range held {
		next = Reduce(next, action)
	}
	s.items = next
	observers := s.observerList()
	s.mu.Unlock()

	s.logger.Debug("cart loaded", "key", s.key, "items", len(next), "replayed", len(held))
	notify(observers, next)
	if len(held) > 0 {
		s.writer.enqueue(next)
	}
}

func (s *Store) AddToCart(p domain.Product) domain.Snapshot {
	return s.dispatch(AddToCart{Product: p})
}

func (s *Store) Increment(id string) domain.Snapshot {
	return s.dispatch(Increment{ID: id})
}

func (s *Store) Decrement(id string) domain.Snapshot {
	return s.dispatch(Decrement{ID: id})
}

// Items returns a copy of the current cart.
func (s *Store) Items() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items.Clone()
}

// Subscribe registers o and returns a func that removes it.
func (s *Store) Subscribe(o Observer) func() {
	s.mu.Lock()
	id := s.nextObserverID
	s.nextObserverID++
	s.observers[id] = o
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Flush waits until every write issued so far has resolved.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.flush(ctx)
}

// Close writes the last pending snapshot and stops the writer. A store
// that was never loaded is loaded first so held actions are not lost.
func (s *Store) Close(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		s.logger.Warn("cart load before close failed", "key", s.key, "error", err)
	}
	return s.writer.close(ctx)
}

func (s *Store) dispatch(action Action) domain.Snapshot {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	s.items = Reduce(s.items, action)
	pending := !s.loaded
	if pending {
		s.held = append(s.held, action)
	}
	next := s.items
	observers := s.observerList()
	s.mu.Unlock()

	notify(observers, next)
	if !pending {
		s.writer.enqueue(next)
	}
	return next.Clone()
}

// observerList must be called with s.mu held.
func (s *Store) observerList() []Observer {
	list := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		list = append(list, o)
	}
	return list
}

func notify(observers []Observer, items domain.Snapshot) {
	for _, o := range observers {
		o(items.Clone())
	}
}
