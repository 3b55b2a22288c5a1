package cart

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/money"
)

func product(id int64, price string) catalog.Product {
	return catalog.Product{ID: id, Name: "p", Price: money.MustParse(price)}
}

// requireInvariants checks the cart invariants on s.
func requireInvariants(t *testing.T, s State) {
	t.Helper()

	expected := money.Zero()
	seen := make(map[int64]bool, len(s.Items))
	for _, it := range s.Items {
		require.False(t, seen[it.ID], "duplicate product id %d", it.ID)
		seen[it.ID] = true
		require.Greater(t, it.Quantity, 0, "product %d has quantity %d", it.ID, it.Quantity)
		expected = expected.Add(it.Price.MulInt(int64(it.Quantity)))
	}
	require.True(t, s.Total.Equal(expected), "total %s != sum %s", s.Total, expected)
}

func TestAddItemTwiceMerges(t *testing.T) {
	s := Empty()
	s = AddItem(s, product(1, "10"))
	s = AddItem(s, product(1, "10"))

	require.Len(t, s.Items, 1)
	assert.Equal(t, 2, s.Items[0].Quantity)
	assert.True(t, s.Total.Equal(money.FromInt(20)))
	requireInvariants(t, s)
}

func TestAddItemAppendsInInsertionOrder(t *testing.T) {
	s := Empty()
	s = AddItem(s, product(3, "1"))
	s = AddItem(s, product(1, "1"))
	s = AddItem(s, product(2, "1"))
	s = AddItem(s, product(1, "1"))

	ids := []int64{}
	for _, it := range s.Items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestRemoveItem(t *testing.T) {
	s := Empty()
	s = AddItem(s, product(1, "10"))
	s = AddItem(s, product(1, "10"))
	s = AddItem(s, product(2, "5"))
	require.True(t, s.Total.Equal(money.FromInt(25)))

	s = RemoveItem(s, 1)
	require.Len(t, s.Items, 1)
	assert.Equal(t, int64(2), s.Items[0].ID)
	assert.True(t, s.Total.Equal(money.FromInt(5)))
	requireInvariants(t, s)
}

func TestRemoveMissingItemIsNoop(t *testing.T) {
	s := AddItem(Empty(), product(1, "10"))
	after := RemoveItem(s, 99)
	assert.Equal(t, s.Items, after.Items)
	assert.True(t, s.Total.Equal(after.Total))
}

func TestUpdateQuantity(t *testing.T) {
	base := AddItem(Empty(), product(1, "10"))

	tests := []struct {
		name      string
		productID int64
		quantity  int
		wantLen   int
		wantTotal string
	}{
		{name: "set to three", productID: 1, quantity: 3, wantLen: 1, wantTotal: "30"},
		{name: "zero removes", productID: 1, quantity: 0, wantLen: 0, wantTotal: "0"},
		{name: "negative removes", productID: 1, quantity: -5, wantLen: 0, wantTotal: "0"},
		{name: "missing id is noop", productID: 2, quantity: 3, wantLen: 1, wantTotal: "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := UpdateQuantity(base, tt.productID, tt.quantity)
			assert.Len(t, s.Items, tt.wantLen)
			assert.True(t, s.Total.Equal(money.MustParse(tt.wantTotal)), "total = %s", s.Total)
			requireInvariants(t, s)
		})
	}
}

func TestClearCart(t *testing.T) {
	s := AddItem(AddItem(Empty(), product(1, "10")), product(2, "5"))
	s = ClearCart(s)
	assert.True(t, s.IsEmpty())
	assert.True(t, s.Total.IsZero())
}

func TestTransitionsDoNotMutateInput(t *testing.T) {
	s := AddItem(Empty(), product(1, "10"))
	_ = AddItem(s, product(1, "10"))
	_ = UpdateQuantity(s, 1, 7)
	_ = RemoveItem(s, 1)
	_ = ClearCart(s)

	require.Len(t, s.Items, 1)
	assert.Equal(t, 1, s.Items[0].Quantity)
	assert.True(t, s.Total.Equal(money.FromInt(10)))
}

func TestCountAndFind(t *testing.T) {
	s := Empty()
	s = AddItem(s, product(1, "2.50"))
	s = UpdateQuantity(s, 1, 4)
	s = AddItem(s, product(2, "1"))

	assert.Equal(t, 5, s.Count())

	it, ok := s.Find(1)
	require.True(t, ok)
	assert.Equal(t, "10.00", it.LineTotal().String())

	_, ok = s.Find(3)
	assert.False(t, ok)
}

func TestInvariantsHoldOverRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	prices := []string{"999.99", "699.99", "199.99", "499.99", "0.01", "0"}

	for run := 0; run < 50; run++ {
		s := Empty()
		for step := 0; step < 200; step++ {
			id := int64(rng.Intn(len(prices)))
			switch rng.Intn(10) {
			case 0:
				s = ClearCart(s)
			case 1, 2:
				s = RemoveItem(s, id)
			case 3, 4, 5:
				s = UpdateQuantity(s, id, rng.Intn(9)-3)
			default:
				s = AddItem(s, product(id, prices[id]))
			}
			requireInvariants(t, s)
		}
	}
}
