package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLineItem_StartsAtOne(t *testing.T) {
	item := NewLineItem(Product{ID: "x1", Title: "Shirt", ImageURL: "u", Price: 9.99})

	assert.Equal(t, LineItem{ID: "x1", Title: "Shirt", ImageURL: "u", Price: 9.99, Quantity: 1}, item)
}

func TestSnapshot_CloneIsIndependent(t *testing.T) {
	original := Snapshot{{ID: "a", Quantity: 1}}
	clone := original.Clone()
	clone[0].Quantity = 5

	assert.Equal(t, 1, original[0].Quantity)
}

func TestSnapshot_Find(t *testing.T) {
	s := Snapshot{{ID: "a", Quantity: 1}, {ID: "b", Quantity: 3}}

	item, ok := s.Find("b")
	assert.True(t, ok)
	assert.Equal(t, 3, item.Quantity)

	_, ok = s.Find("missing")
	assert.False(t, ok)
}

func TestSnapshot_Totals(t *testing.T) {
	s := Snapshot{
		{ID: "a", Price: 2.5, Quantity: 2},
		{ID: "b", Price: 10, Quantity: 1},
	}

	assert.Equal(t, 3, s.TotalQuantity())
	assert.InDelta(t, 15.0, s.Subtotal(), 1e-9)
	assert.Equal(t, 0, Snapshot{}.TotalQuantity())
}
