package cart

import "github.com/fjod/gomarketplace/internal/domain"

// Action is a cart mutation. Reduce is the only place actions are interpreted.
type Action interface {
	isAction()
}

type AddToCart struct {
	Product domain.Product
}

type Increment struct {
	ID string
}

type Decrement struct {
	ID string
}

// Hydrate replaces the whole cart with a snapshot loaded from storage.
type Hydrate struct {
	Items domain.Snapshot
}

func (AddToCart) isAction() {}
func (Increment) isAction() {}
func (Decrement) isAction() {}
func (Hydrate) isAction() {}

// Reduce computes the next snapshot from current and action.
// current is never modified; items keep their position when updated.
func Reduce(current domain.Snapshot, action Action) domain.Snapshot {
	switch a := action.(type) {
	case AddToCart:
		if _, ok := current.Find(a.Product.ID); ok {
			return increment(current, a.Product.ID)
		}
		next := make(domain.Snapshot, len(current), len(current)+1)
		copy(next, current)
		return append(next, domain.NewLineItem(a.Product))
	case Increment:
		return increment(current, a.ID)
	case Decrement:
		next := current.Clone()
		for i := range next {
			if next[i].ID == a.ID && next[i].Quantity > 1 {
				next[i].Quantity--
			}
		}
		return next
	case Hydrate:
		return a.Items.Clone()
	default:
		return current.Clone()
	}
}

func increment(current domain.Snapshot, id string) domain.Snapshot {
	next := current.Clone()
	for i := range next {
		if next[i].ID == id {
			next[i].Quantity++
		}
	}
	return next
}
