package cart

import (
	"fmt"
	"sync"

	"github.com/Vanityerp/Vanity-hub-sub002/internal/domain"
	"github.com/Vanityerp/Vanity-hub-sub002/internal/xid"
)

// Cart is an ordered list of line items. At most one line exists per
// (ItemID, Kind) identity; adding an existing identity increments quantity.
// Carts are plain in-memory state, nothing persists before payment.
type Cart struct {
	lines []domain.CartLine
}

// AddItem merges by identity or appends a new line with quantity 1. Name and
// price are snapshotted from the catalog item at this instant and never
// re-synced. Returns a transient confirmation notice naming the item.
func (c *Cart) AddItem(item domain.CartLine) string {
	for i := range c.lines {
		if c.lines[i].ItemID == item.ItemID && c.lines[i].Kind == item.Kind {
			c.lines[i].Quantity++
			return fmt.Sprintf("%s added to cart", c.lines[i].Name)
		}
	}
	item.Quantity = 1
	c.lines = append(c.lines, item)
	return fmt.Sprintf("%s added to cart", item.Name)
}

// RemoveItem deletes the line at the given position. A stale index is a
// silent no-op; callers are responsible for using current indices.
func (c *Cart) RemoveItem(index int) {
	if index < 0 || index >= len(c.lines) {
		return
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
}

// UpdateQuantity overwrites the quantity at the given position. Quantities
// below 1 and stale indices are silently ignored.
func (c *Cart) UpdateQuantity(index int, quantity int) {
	if quantity < 1 {
		return
	}
	if index < 0 || index >= len(c.lines) {
		return
	}
	c.lines[index].Quantity = quantity
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy so callers cannot mutate cart state behind the
// session lock.
func (c *Cart) Lines() []domain.CartLine {
	lines := make([]domain.CartLine, len(c.lines))
	copy(lines, c.lines)
	return lines
}

// Session is one operator's cart plus checkout state, local to a terminal.
// All mutations happen under the session mutex; there is no cross-session
// sharing and no server-side reservation of stock before recording.
type Session struct {
	mu            sync.Mutex
	id            string
	cart          Cart
	discountInput string
	state         string
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) AddItem(item domain.CartLine) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.AddItem(item)
}

func (s *Session) RemoveItem(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.RemoveItem(index)
}

func (s *Session) UpdateQuantity(index int, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.UpdateQuantity(index, quantity)
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
}

// SetDiscountInput stores the raw text even when it fails validation so the
// field remains editable; pricing treats unparsable input as zero.
func (s *Session) SetDiscountInput(input string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discountInput = input
}

// Snapshot returns the current lines, discount input and state for rendering
// or recording.
func (s *Session) Snapshot() ([]domain.CartLine, string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines(), s.discountInput, s.state
}

// Registry tracks live cart sessions by id. Sessions are never persisted;
// a server restart abandons them.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) Create() *Session {
	session := &Session{id: xid.New("cart"), state: StateIdle}
	r.mu.Lock()
	r.sessions[session.id] = session
	r.mu.Unlock()
	return session
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
