package postgres

import (
	"context"
	"customer-service/internal/domain/customer"
	"customer-service/internal/infrastructure/monitoring"
	"customer-service/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

const (
	queryFindAll    = `SELECT id, name FROM customers ORDER BY id ASC`
	queryFindByID   = `SELECT id, name FROM customers WHERE id = $1`
	queryExistsByID = `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`
	queryInsert     = `INSERT INTO customers (name) VALUES ($1) RETURNING id, name`
	queryUpdate     = `UPDATE customers SET name = $1 WHERE id = $2 RETURNING id, name`
	queryDeleteByID = `DELETE FROM customers WHERE id = $1`
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {

		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) FindAll(ctx context.Context) (customers []*customer.Customer, err error) {
	defer observe("find_all", time.Now(), &err)

	r.logger.DebugContext(ctx, "Attempting to find all customers")

	rows, err := r.db.Query(ctx, queryFindAll)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "failed to query customers")
	}
	defer rows.Close()

	customers = make([]*customer.Customer, 0)
	for rows.Next() {
		var cust customer.Customer
		if err := rows.Scan(&cust.ID, &cust.Name); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, apperrors.WrapDatabaseError(err, "failed to scan customer row")
		}
		customers = append(customers, &cust)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "error iterating customer rows")
	}

	r.logger.DebugContext(ctx, "Finished finding customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (cust *customer.Customer, err error) {
	defer observe("find_by_id", time.Now(), &err)

	logCtx := r.logger.With(slog.Int64("customerID", customerID))
	logCtx.DebugContext(ctx, "Attempting to find customer by ID")

	var found customer.Customer
	err = r.db.QueryRow(ctx, queryFindByID, customerID).Scan(&found.ID, &found.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logCtx.DebugContext(ctx, "Customer not found")
			return nil, apperrors.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "failed to get customer by ID")
	}

	return &found, nil
}

func (r *CustomerRepository) ExistsByID(ctx context.Context, customerID int64) (exists bool, err error) {
	defer observe("exists_by_id", time.Now(), &err)

	if err = r.db.QueryRow(ctx, queryExistsByID, customerID).Scan(&exists); err != nil {
		r.logger.ErrorContext(ctx, "Failed to check customer existence", slog.Int64("customerID", customerID), slog.Any("error", err))
		return false, apperrors.WrapDatabaseError(err, "failed to check customer existence")
	}
	return exists, nil
}

// Save inserts customers without an ID and overwrites the row of customers
// that carry one.
func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) (*customer.Customer, error) {
	if cust == nil {
		return nil, fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	if cust.IsNew() {
		return r.createCustomer(ctx, cust)
	}
	return r.updateCustomer(ctx, cust)
}

func (r *CustomerRepository) createCustomer(ctx context.Context, cust *customer.Customer) (saved *customer.Customer, err error) {
	defer observe("insert", time.Now(), &err)

	r.logger.DebugContext(ctx, "Attempting to insert new customer", slog.String("name", cust.Name))

	var created customer.Customer
	err = r.db.QueryRow(ctx, queryInsert, cust.Name).Scan(&created.ID, &created.Name)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return nil, translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", created.ID))
	return &created, nil
}

func (r *CustomerRepository) updateCustomer(ctx context.Context, cust *customer.Customer) (saved *customer.Customer, err error) {
	defer observe("update", time.Now(), &err)

	logCtx := r.logger.With(slog.Int64("customerID", cust.ID))
	logCtx.DebugContext(ctx, "Attempting to update customer")

	var updated customer.Customer
	err = r.db.QueryRow(ctx, queryUpdate, cust.Name, cust.ID).Scan(&updated.ID, &updated.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logCtx.WarnContext(ctx, "Update matched zero rows, customer likely not found")
			return nil, apperrors.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return nil, translateDBError(err, logCtx)
	}

	logCtx.InfoContext(ctx, "Customer updated successfully")
	return &updated, nil
}

// DeleteByID does not report missing rows.
func (r *CustomerRepository) DeleteByID(ctx context.Context, customerID int64) (err error) {
	defer observe("delete_by_id", time.Now(), &err)

	logCtx := r.logger.With(slog.Int64("customerID", customerID))

	cmdTag, err := r.db.Exec(ctx, queryDeleteByID, customerID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to execute delete customer", slog.Any("error", err))
		return apperrors.WrapDatabaseError(err, "failed to delete customer")
	}

	logCtx.InfoContext(ctx, "Delete executed", slog.Int64("rowsAffected", cmdTag.RowsAffected()))
	return nil
}

func observe(queryName string, start time.Time, err *error) {
	monitoring.RecordDBQuery(queryName, *err, time.Since(start))
}
