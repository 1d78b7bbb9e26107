package cart

import (
	"context"

	"github.com/fjod/gomarketplace/internal/domain"
)

// Cart is the view of the store handed to UI consumers.
type Cart interface {
	Items() domain.Snapshot
	AddToCart(p domain.Product) domain.Snapshot
	Increment(id string) domain.Snapshot
	Decrement(id string) domain.Snapshot
}

type providerKey struct{}

// WithCart returns a context in which FromContext finds c.
func WithCart(ctx context.Context, c Cart) context.Context {
	return context.WithValue(ctx, providerKey{}, c)
}

func FromContext(ctx context.Context) (Cart, error) {
	c, ok := ctx.Value(providerKey{}).(Cart)
	if !ok || c == nil {
		return nil, ErrNoProvider
	}
	return c, nil
}

// MustFromContext panics with ErrNoProvider when ctx carries no cart.
func MustFromContext(ctx context.Context) Cart {
	c, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return c
}
