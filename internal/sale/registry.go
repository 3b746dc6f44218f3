package sale

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrCartNotFound is returned for unknown cart ids.
var ErrCartNotFound = errors.New("cart not found")

// Registry tracks in-progress carts by id. Carts are process-local and
// vanish on restart; only checked-out sales persist.
type Registry struct {
	mu    sync.RWMutex
	carts map[uuid.UUID]*Cart
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{carts: make(map[uuid.UUID]*Cart)}
}

// Create registers a fresh cart.
func (r *Registry) Create() *Cart {
	c := NewCart()
	r.mu.Lock()
	r.carts[c.ID()] = c
	r.mu.Unlock()
	return c
}

// Get resolves a cart by id.
func (r *Registry) Get(id uuid.UUID) (*Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carts[id]
	if !ok {
		return nil, ErrCartNotFound
	}
	return c, nil
}

// Remove drops the cart from the registry.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	delete(r.carts, id)
	r.mu.Unlock()
}
