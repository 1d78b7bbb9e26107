package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

type BreakerSettings struct {
	Name string
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

func DefaultBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{
		Name:                name,
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
	}
}

// BreakerStorage wraps a KeyValue so that a failing backend is skipped
// quickly instead of stalling every write until its timeout.
type BreakerStorage struct {
	next    KeyValue
	readCB  *gobreaker.CircuitBreaker[string]
	writeCB *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerStorage(next KeyValue, st BreakerSettings, logger *slog.Logger) *BreakerStorage {
	settings := gobreaker.Settings{
		Name:        st.Name,
		MaxRequests: 1,
		Timeout:     st.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= st.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("storage breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		// a missing key is an answer, not a backend failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
	}

	return &BreakerStorage{
		next:    next,
		readCB:  gobreaker.NewCircuitBreaker[string](settings),
		writeCB: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (b *BreakerStorage) Get(ctx context.Context, key string) (string, error) {
	return b.readCB.Execute(func() (string, error) {
		return b.next.Get(ctx, key)
	})
}

func (b *BreakerStorage) Set(ctx context.Context, key, value string) error {
	_, err := b.writeCB.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Set(ctx, key, value)
	})
	return err
}

func (b *BreakerStorage) WriteState() gobreaker.State {
	return b.writeCB.State()
}
