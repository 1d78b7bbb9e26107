package domain

// Product is what the UI hands to AddToCart. It carries no quantity.
type Product struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
}

// LineItem is one product in the cart together with its quantity.
// Quantity is never below 1.
type LineItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// NewLineItem builds a line item for a product seen for the first time.
func NewLineItem(p Product) LineItem {
	return LineItem{
		ID:       p.ID,
		Title:    p.Title,
		ImageURL: p.ImageURL,
		Price:    p.Price,
		Quantity: 1,
	}
}

// Snapshot is the ordered set of line items at a point in time.
type Snapshot []LineItem

func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}

func (s Snapshot) Find(id string) (LineItem, bool) {
	for _, item := range s {
		if item.ID == id {
			return item, true
		}
	}
	return LineItem{}, false
}

func (s Snapshot) TotalQuantity() int {
	total := 0
	for _, item := range s {
		total += item.Quantity
	}
	return total
}

// Subtotal is price times quantity summed over all items. No tax or shipping.
func (s Snapshot) Subtotal() float64 {
	var total float64
	for _, item := range s {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
