package cart

import (
	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/money"
)

// Item is one line item: a product and how many units of it are in the cart.
// Quantity is always >= 1 while the item is present.
type Item struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// LineTotal returns price * quantity for this item.
func (it Item) LineTotal() money.Amount {
	return it.Price.MulInt(int64(it.Quantity))
}

// State is a cart snapshot. Items are kept in insertion order and Total is
// always the exact sum of the line totals.
type State struct {
	Items []Item       `json:"items"`
	Total money.Amount `json:"total"`
}

// Empty returns a cart with no items and a zero total.
func Empty() State {
	return State{Items: []Item{}, Total: money.Zero()}
}

// IsEmpty reports whether the cart has no items.
func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

// Count returns the total number of units across all items.
func (s State) Count() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// Find returns the item for productID, if present.
func (s State) Find(productID int64) (Item, bool) {
	if i := s.indexOf(productID); i >= 0 {
		return s.Items[i], true
	}
	return Item{}, false
}

func (s State) indexOf(productID int64) int {
	for i := range s.Items {
		if s.Items[i].ID == productID {
			return i
		}
	}
	return -1
}

// clone copies the item slice so transitions never alias their input.
func (s State) clone() []Item {
	items := make([]Item, len(s.Items))
	copy(items, s.Items)
	return items
}

// withItems builds the next state, recomputing the total from the items.
func withItems(items []Item) State {
	return State{Items: items, Total: Total(items)}
}

// Total computes the exact sum of price * quantity over items.
func Total(items []Item) money.Amount {
	total := money.Zero()
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// AddItem adds one unit of product. An existing line for the same product id
// is incremented; otherwise a new line with quantity 1 is appended.
func AddItem(s State, product catalog.Product) State {
	items := s.clone()
	if i := s.indexOf(product.ID); i >= 0 {
		items[i].Quantity++
		return withItems(items)
	}
	return withItems(append(items, Item{Product: product, Quantity: 1}))
}

// RemoveItem drops the line for productID. Removing an absent product is a no-op.
func RemoveItem(s State, productID int64) State {
	items := make([]Item, 0, len(s.Items))
	for _, it := range s.Items {
		if it.ID != productID {
			items = append(items, it)
		}
	}
	return withItems(items)
}

// UpdateQuantity sets the quantity for productID. A quantity <= 0 removes the
// line entirely. An absent product is a no-op.
func UpdateQuantity(s State, productID int64, quantity int) State {
	i := s.indexOf(productID)
	if i < 0 {
		return withItems(s.clone())
	}
	if quantity <= 0 {
		return RemoveItem(s, productID)
	}
	items := s.clone()
	items[i].Quantity = quantity
	return withItems(items)
}

// ClearCart empties the cart.
func ClearCart(State) State {
	return Empty()
}
