package customer

import (
	"context"
	"customer-service/internal/event"
	"customer-service/internal/infrastructure/monitoring"
	"customer-service/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

type CustomerService interface {
	ListCustomers(ctx context.Context) ([]*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	CreateCustomer(ctx context.Context, customer *Customer) (*Customer, error)
	UpdateCustomer(ctx context.Context, customer *Customer) (*Customer, error)
	DeleteCustomer(ctx context.Context, customerID int64) error
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.EventPublisher
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, eventPublisher event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	if eventPublisher == nil {
		eventPublisher = event.NoopEventPublisher{}
	}

	return &customerService{
		repo:   repo,
		pub:    eventPublisher,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func newEventPayload(cust *Customer) event.CustomerEventPayload {
	return event.CustomerEventPayload{
		CustomerID: cust.ID,
		Name:       cust.Name,
	}
}

func (s *customerService) ListCustomers(ctx context.Context) ([]*Customer, error) {
	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to list customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	if customers == nil {
		customers = []*Customer{}
	}
	return customers, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if isNotFound(err) {
			logCtx.WarnContext(ctx, "Customer not found by repository")
			return nil, ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Repository failed to find customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}
	return cust, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, cust *Customer) (*Customer, error) {
	if cust == nil {
		return nil, fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	if !cust.IsNew() {
		s.logger.WarnContext(ctx, "Rejected create request carrying an id", slog.Int64("customerID", cust.ID))
		return nil, ErrIDNotAllowed
	}
	if err := cust.Validate().Err(); err != nil {
		s.logger.WarnContext(ctx, "Validation failed", slog.Any("error", err))
		return nil, err
	}

	saved, err := s.repo.Save(ctx, cust)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	logCtx := s.logger.With(slog.Int64("customerID", saved.ID))
	logCtx.InfoContext(ctx, "Successfully saved new customer, publishing creation event")
	monitoring.RecordCustomerCreated()

	if err := s.pub.PublishCustomerCreated(ctx, event.CustomerCreatedEvent{
		Timestamp: time.Now(),
		Payload:   newEventPayload(saved),
	}); err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish customer created event", slog.Any("error", err))
	}
	return saved, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, cust *Customer) (*Customer, error) {
	if cust == nil || cust.IsNew() {
		s.logger.WarnContext(ctx, "Rejected update request without an id")
		return nil, ErrIDRequired
	}
	logCtx := s.logger.With(slog.Int64("customerID", cust.ID))

	if err := cust.Validate().Err(); err != nil {
		logCtx.WarnContext(ctx, "Validation failed", slog.Any("error", err))
		return nil, err
	}

	exists, err := s.repo.ExistsByID(ctx, cust.ID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Repository failed to check customer existence", slog.Any("error", err))
		return nil, fmt.Errorf("failed to check customer %d: %w", cust.ID, err)
	}
	if !exists {
		logCtx.WarnContext(ctx, "Customer not found by repository")
		return nil, ErrNotFound
	}

	saved, err := s.repo.Save(ctx, cust)
	if err != nil {
		// Deleted between the existence check and the write.
		if isNotFound(err) {
			logCtx.WarnContext(ctx, "Customer disappeared before update")
			return nil, ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Repository failed to update customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update customer %d: %w", cust.ID, err)
	}

	logCtx.InfoContext(ctx, "Successfully updated customer, publishing update event")
	monitoring.RecordCustomerUpdated()

	if err := s.pub.PublishCustomerUpdated(ctx, event.CustomerUpdatedEvent{
		Timestamp: time.Now(),
		Payload:   newEventPayload(saved),
	}); err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish customer updated event", slog.Any("error", err))
	}
	return saved, nil
}

// DeleteCustomer is idempotent: deleting an unknown id succeeds.
func (s *customerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))

	if err := s.repo.DeleteByID(ctx, customerID); err != nil {
		logCtx.ErrorContext(ctx, "Repository failed to delete customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}

	logCtx.InfoContext(ctx, "Customer deleted")
	monitoring.RecordCustomerDeleted()

	if err := s.pub.PublishCustomerDeleted(ctx, event.CustomerDeletedEvent{
		Timestamp:  time.Now(),
		CustomerID: customerID,
	}); err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish customer deleted event", slog.Any("error", err))
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
