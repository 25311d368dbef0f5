package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/repository"
)

// OrderRepository is an in-memory append-only order log.
type OrderRepository struct {
	mu     sync.Mutex
	orders []domain.OrderRecord
	seq    int
	// Err, when set, is returned by ListOrders and InsertErr by every
	// insert. Tests use them to simulate an unavailable store.
	Err       error
	InsertErr error
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository(orders ...domain.OrderRecord) *OrderRepository {
	return &OrderRepository{orders: append([]domain.OrderRecord(nil), orders...)}
}

func (r *OrderRepository) ListOrders(ctx context.Context) ([]domain.OrderRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return append([]domain.OrderRecord(nil), r.orders...), nil
}

func (r *OrderRepository) InsertOrder(ctx context.Context, order domain.OrderRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.InsertErr != nil {
		return r.InsertErr
	}
	r.orders = append(r.orders, order)
	return nil
}

func (r *OrderRepository) NextOrderID(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextIDLocked(), nil
}

func (r *OrderRepository) nextIDLocked() string {
	r.seq++
	return fmt.Sprintf("ORD%03d", r.seq)
}
