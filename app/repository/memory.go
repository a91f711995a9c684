package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/vibast-solutions/ms-go-orders/app/entity"
)

// MemoryOrderRepository is the in-process store backend. Records are copied
// on the way in and out so readers never observe a partially written order.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*entity.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: map[string]*entity.Order{}}
}

func (r *MemoryOrderRepository) Create(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; ok {
		return ErrOrderAlreadyExists
	}
	copyItem := *order
	r.orders[order.ID] = &copyItem
	return nil
}

func (r *MemoryOrderRepository) Update(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; !ok {
		return ErrOrderNotFound
	}
	copyItem := *order
	r.orders[order.ID] = &copyItem
	return nil
}

func (r *MemoryOrderRepository) FindByID(_ context.Context, id string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

func (r *MemoryOrderRepository) FindByGatewayOrderID(_ context.Context, gatewayOrderID string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.orders {
		if item.GatewayOrderID == gatewayOrderID {
			copyItem := *item
			return &copyItem, nil
		}
	}
	return nil, nil
}

// MemoryPaymentRepository keeps payments keyed by gateway payment id and
// remembers insertion order for history tie-breaks.
type MemoryPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*entity.Payment
	sequence []string
}

func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{payments: map[string]*entity.Payment{}}
}

func (r *MemoryPaymentRepository) Create(_ context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[payment.ID]; ok {
		return ErrPaymentAlreadyExists
	}
	copyItem := *payment
	r.payments[payment.ID] = &copyItem
	r.sequence = append(r.sequence, payment.ID)
	return nil
}

func (r *MemoryPaymentRepository) FindByID(_ context.Context, id string) (*entity.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

func (r *MemoryPaymentRepository) ListByUser(_ context.Context, userID string) ([]*entity.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*entity.Payment, 0)
	for _, id := range r.sequence {
		item := r.payments[id]
		if item.UserID != userID {
			continue
		}
		copyItem := *item
		items = append(items, &copyItem)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
