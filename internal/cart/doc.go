// Package cart implements the shopping cart state engine.
//
// The package has two layers:
//
//   - Pure transitions (AddItem, RemoveItem, UpdateQuantity, ClearCart) that
//     map a State to a new State without touching their input.
//   - Engine, an owned state cell that applies those transitions and
//     notifies subscribers.
//
// INVARIANTS (hold after every transition):
//
//   - Total equals the exact sum of price*quantity over Items
//   - No two items share a product id
//   - No item has quantity <= 0
//
// These four transitions are the entire state machine; there is no other
// way to reach a State.
package cart
