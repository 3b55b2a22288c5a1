package cart

import (
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/observe"
)

// Engine owns a single cart state cell. The state changes only through the
// transition methods, and every transition notifies subscribers with a
// snapshot of the new state.
//
// Thread-safety: Engine is safe for concurrent use. Observers are invoked
// after the state lock is released, in registration order.
type Engine struct {
	mu        sync.Mutex
	state     State
	observers observe.Registry[State]
	logger    *slog.Logger
}

// NewEngine creates an engine holding an empty cart.
// A nil logger discards log output.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		state:  Empty(),
		logger: logger,
	}
}

// State returns a snapshot of the current cart.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(e.state)
}

// AddItem adds one unit of product.
func (e *Engine) AddItem(product catalog.Product) State {
	e.logger.Debug("cart add item", "product_id", product.ID)
	return e.apply(func(s State) State { return AddItem(s, product) })
}

// RemoveItem removes the line for productID, if present.
func (e *Engine) RemoveItem(productID int64) State {
	e.logger.Debug("cart remove item", "product_id", productID)
	return e.apply(func(s State) State { return RemoveItem(s, productID) })
}

// UpdateQuantity sets the quantity for productID; <= 0 removes the line.
func (e *Engine) UpdateQuantity(productID int64, quantity int) State {
	e.logger.Debug("cart update quantity", "product_id", productID, "quantity", quantity)
	return e.apply(func(s State) State { return UpdateQuantity(s, productID, quantity) })
}

// Clear empties the cart.
func (e *Engine) Clear() State {
	e.logger.Debug("cart clear")
	return e.apply(ClearCart)
}

// Subscribe registers fn to receive a snapshot after every transition.
// The returned function cancels the subscription; calling it twice is safe.
func (e *Engine) Subscribe(fn func(State)) (cancel func()) {
	return e.observers.Subscribe(func(s State) { fn(snapshot(s)) })
}

func (e *Engine) apply(transition func(State) State) State {
	e.mu.Lock()
	e.state = transition(e.state)
	next := snapshot(e.state)
	e.mu.Unlock()

	e.observers.Notify(next)
	return snapshot(next)
}

// snapshot copies the item slice so callers cannot reach the engine's cell.
func snapshot(s State) State {
	return State{Items: s.clone(), Total: s.Total}
}
