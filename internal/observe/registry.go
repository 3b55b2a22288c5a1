// Package observe provides the subscription mechanism shared by the state engines.
package observe

import "sync"

// Registry holds observers of snapshots of type T.
//
// Observers are notified in registration order. Notify copies the observer
// list under the lock and calls observers after releasing it, so an
// observer may read engine state or cancel its own subscription.
//
// Thread-safety: Registry is safe for concurrent use.
type Registry[T any] struct {
	mu        sync.Mutex
	nextID    int
	order     []int
	observers map[int]func(T)
}

// Subscribe registers fn and returns a function that cancels the
// subscription. Cancelling more than once is a no-op.
func (r *Registry[T]) Subscribe(fn func(T)) (cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.observers == nil {
		r.observers = make(map[int]func(T))
	}
	id := r.nextID
	r.nextID++
	r.observers[id] = fn
	r.order = append(r.order, id)

	return func() { r.remove(id) }
}

// Notify calls every current observer with v.
func (r *Registry[T]) Notify(v T) {
	r.mu.Lock()
	fns := make([]func(T), 0, len(r.order))
	for _, id := range r.order {
		fns = append(fns, r.observers[id])
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of active observers.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

func (r *Registry[T]) remove(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.observers[id]; !ok {
		return
	}
	delete(r.observers, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
