package memory

import (
	"context"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// CustomerRepository keeps customers in process memory. IDs are assigned
// from a monotonically increasing sequence starting at 1 and are never reused.
type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[int64]customer.Customer
	lastID    int64
	logger    *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(logger *slog.Logger) *CustomerRepository {
	return &CustomerRepository{
		customers: make(map[int64]customer.Customer),
		logger:    logger.With("component", "MemoryCustomerRepository"),
	}
}

func (r *CustomerRepository) FindAll(ctx context.Context) ([]*customer.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	customers := make([]*customer.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		c := c
		customers = append(customers, &c)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	return customers, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[customerID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (r *CustomerRepository) ExistsByID(ctx context.Context, customerID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.customers[customerID]
	return ok, nil
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) (*customer.Customer, error) {
	if cust == nil {
		return nil, fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *cust
	if stored.IsNew() {
		r.lastID++
		stored.ID = r.lastID
		r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", stored.ID))
	} else if _, ok := r.customers[stored.ID]; !ok {
		return nil, apperrors.ErrNotFound
	}

	r.customers[stored.ID] = stored
	return &stored, nil
}

func (r *CustomerRepository) DeleteByID(ctx context.Context, customerID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.customers, customerID)
	return nil
}
