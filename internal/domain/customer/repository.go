package customer

import (
	"context"
	"customer-service/internal/pkg/apperrors"
	"fmt"
)

var (
	ErrNotFound = fmt.Errorf("customer %w", apperrors.ErrNotFound)

	ErrIDNotAllowed = fmt.Errorf("%w: id must be absent when creating a customer", apperrors.ErrInvalidArgument)

	ErrIDRequired = fmt.Errorf("%w: id is required when updating a customer", apperrors.ErrInvalidArgument)
)

// CustomerRepository is implemented once per store technology. FindByID
// reports absence with an error matching apperrors.ErrNotFound; DeleteByID
// does not.
type CustomerRepository interface {
	FindAll(ctx context.Context) ([]*Customer, error)

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	ExistsByID(ctx context.Context, customerID int64) (bool, error)

	Save(ctx context.Context, customer *Customer) (*Customer, error)

	DeleteByID(ctx context.Context, customerID int64) error
}
