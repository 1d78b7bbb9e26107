package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/gomarketplace/internal/domain"
)

var ErrMalformed = errors.New("malformed cart data")

// Encode serializes a snapshot as a JSON array of line items.
func Encode(items domain.Snapshot) (string, error) {
	if items == nil {
		items = domain.Snapshot{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal cart failed: %w", err)
	}
	return string(data), nil
}

// Decode parses text produced by Encode. Records that break the cart
// invariants (empty id, quantity below 1, repeated id) are rejected.
func Decode(data string) (domain.Snapshot, error) {
	var items domain.Snapshot
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("%w: unmarshal cart failed: %v", ErrMalformed, err)
	}
	if items == nil {
		return domain.Snapshot{}, nil
	}

	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("%w: item %d has no id", ErrMalformed, i)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %q has quantity %d", ErrMalformed, item.ID, item.Quantity)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: item %q appears twice", ErrMalformed, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return items, nil
}
