package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"restaurant-kds/internal/models"
)

var errInjected = errors.New("injected failure")

var fixedNow = time.Date(2026, 1, 2, 12, 30, 0, 0, time.UTC)

// menuFixture mirrors the seeded catalog
func menuFixture() map[int64]models.MenuItem {
	return map[int64]models.MenuItem{
		3: {ItemID: 3, Name: "Pad Thai", Price: decimal.RequireFromString("120.00"), IsAvailable: true},
		5: {ItemID: 5, Name: "Massaman Curry", Price: decimal.RequireFromString("150.00"), IsAvailable: false},
		7: {ItemID: 7, Name: "Thai Iced Tea", Price: decimal.RequireFromString("45.00"), IsAvailable: true},
	}
}

// fakeStore is an in-memory Store. Writes made inside InTx are staged and
// become visible only when the body returns nil.
type fakeStore struct {
	mu     sync.Mutex
	items  map[int64]models.MenuItem
	orders map[int64]*models.Order
	lines  []models.OrderLine

	nextOrderID int64
	nextLineID  int64

	// failAt names the step that should fail: lookup, insert_order,
	// insert_lines, get_lines, short_read or commit.
	failAt string

	transactions  int
	commits       int
	rollbacks     int
	lookups       int
	statusWrites  int
	statusQueries int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:  menuFixture(),
		orders: make(map[int64]*models.Order),
	}
}

func (s *fakeStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	s.transactions++
	s.mu.Unlock()

	tx := &fakeTx{store: s}
	if err := fn(ctx, tx); err != nil {
		s.mu.Lock()
		s.rollbacks++
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAt == "commit" {
		s.rollbacks++
		return &models.StorageError{Op: "commit", Err: errInjected}
	}

	for _, order := range tx.orders {
		s.orders[order.ID] = order
	}
	s.lines = append(s.lines, tx.lines...)
	s.commits++
	return nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, orderID int64, next models.OrderStatus, from []models.OrderStatus) (models.OrderStatus, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusQueries++

	order, ok := s.orders[orderID]
	if !ok {
		return "", time.Time{}, &models.NotFoundError{Resource: "order", ID: orderID}
	}

	for _, allowed := range from {
		if order.Status == allowed {
			previous := order.Status
			order.Status = next
			order.UpdatedAt = fixedNow.Add(time.Minute)
			s.statusWrites++
			return previous, order.UpdatedAt, nil
		}
	}

	return "", time.Time{}, &models.ValidationError{
		Kind:    models.KindInvalidTransition,
		Field:   "status",
		Message: fmt.Sprintf("order %d cannot move from %s to %s", orderID, order.Status, next),
	}
}

// seedOrder stores a committed order directly
func (s *fakeStore) seedOrder(status models.OrderStatus) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextOrderID++
	s.orders[s.nextOrderID] = &models.Order{
		ID:          s.nextOrderID,
		TableNumber: 1,
		Status:      status,
		TotalAmount: decimal.RequireFromString("45.00"),
		CreatedAt:   fixedNow,
		UpdatedAt:   fixedNow,
	}
	return s.nextOrderID
}

func (s *fakeStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *fakeStore) lineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

func (s *fakeStore) status(orderID int64) models.OrderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.orders[orderID]; ok {
		return order.Status
	}
	return ""
}

// committedLines returns the stored lines of orderID
func (s *fakeStore) committedLines(orderID int64) []models.OrderLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.OrderLine
	for _, line := range s.lines {
		if line.OrderID == orderID {
			out = append(out, line)
		}
	}
	return out
}

type fakeTx struct {
	store  *fakeStore
	orders []*models.Order
	lines  []models.OrderLine
}

func (t *fakeTx) GetItems(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.lookups++

	if t.store.failAt == "lookup" {
		return nil, &models.StorageError{Op: "get_items", Err: errInjected}
	}

	found := make(map[int64]models.MenuItem, len(ids))
	for _, id := range ids {
		if item, ok := t.store.items[id]; ok {
			found[id] = item
		}
	}
	return found, nil
}

func (t *fakeTx) InsertOrder(ctx context.Context, tableNumber int, status models.OrderStatus, total decimal.Decimal) (*models.Order, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if t.store.failAt == "insert_order" {
		return nil, &models.StorageError{Op: "insert_order", Err: errInjected}
	}

	// ids are drawn outside the transaction and never handed out twice
	t.store.nextOrderID++
	order := &models.Order{
		ID:          t.store.nextOrderID,
		TableNumber: tableNumber,
		Status:      status,
		TotalAmount: total,
		CreatedAt:   fixedNow,
		UpdatedAt:   fixedNow,
	}
	t.orders = append(t.orders, order)
	return order, nil
}

func (t *fakeTx) InsertLines(ctx context.Context, orderID int64, lines []models.PricedLine) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if t.store.failAt == "insert_lines" {
		return &models.StorageError{Op: "insert_order_line", Err: errInjected}
	}

	for _, line := range lines {
		t.store.nextLineID++
		t.lines = append(t.lines, models.OrderLine{
			ID:       t.store.nextLineID,
			OrderID:  orderID,
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Notes:    line.Notes,
			Subtotal: line.Subtotal,
		})
	}
	return nil
}

// GetLines joins staged lines with item names the way the SQL read does
func (t *fakeTx) GetLines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if t.store.failAt == "get_lines" {
		return nil, &models.StorageError{Op: "get_order_lines", Err: errInjected}
	}

	var out []models.OrderLine
	for _, line := range t.lines {
		if line.OrderID != orderID {
			continue
		}
		line.ItemName = t.store.items[line.ItemID].Name
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if t.store.failAt == "short_read" && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

// recordingBus captures broadcasts instead of delivering them
type recordingBus struct {
	mu     sync.Mutex
	events []models.Event
}

func (b *recordingBus) Broadcast(event models.Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return 1
}

func (b *recordingBus) received() []models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Event(nil), b.events...)
}

func scenarioRequest() *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		TableNumber: 5,
		Items: []models.CreateOrderItem{
			{ItemID: 3, Quantity: 2, Notes: "no peanuts"},
			{ItemID: 7, Quantity: 1},
		},
	}
}
