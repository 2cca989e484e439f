package postgres

import (
	"context"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pgxmockExpectationsNotMetMsg = "there were unfulfilled expectations"

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

func setupCustomerRepo(t *testing.T) (context.Context, *CustomerRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}

	ctx := context.Background()
	repo := NewCustomerRepository(mockPool, logger)

	return ctx, repo, mockPool
}

func TestNewCustomerRepositoryPanicsOnNilPool(t *testing.T) {
	assert.Panics(t, func() { NewCustomerRepository(nil, logger) })
}

func TestFindAllThenGetAllCustomers(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(queryFindAll)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "John Doe").
			AddRow(int64(2), "Jane Roe"))

	customers, err := repo.FindAll(ctx)
	assert.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, &customer.Customer{ID: 1, Name: "John Doe"}, customers[0])
	assert.Equal(t, &customer.Customer{ID: 2, Name: "Jane Roe"}, customers[1])
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindAllWhenTableIsEmpty(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(queryFindAll)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}))

	customers, err := repo.FindAll(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, customers)
	assert.Empty(t, customers)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindAllWhenQueryFails(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(queryFindAll)).WillReturnError(errors.New("connection reset"))

	customers, err := repo.FindAll(ctx)
	assert.Nil(t, customers)
	assert.ErrorIs(t, err, apperrors.ErrDatabase)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "DB_ERROR", appErr.Code)
	assert.Equal(t, "failed to query customers", appErr.Message)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindCustomerByIDReturnOne(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(queryFindByID)).WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "John Doe"))

	customerResult, err := repo.FindByID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), customerResult.ID)
	assert.Equal(t, "John Doe", customerResult.Name)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindCustomerByIDReturnNone(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(queryFindByID)).WithArgs(int64(999)).WillReturnError(pgx.ErrNoRows)

	customerResult, err := repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Nil(t, customerResult)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindCustomerByIDWhenQueryFails(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(queryFindByID)).WithArgs(int64(1)).WillReturnError(errors.New("timeout"))

	_, err := repo.FindByID(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestExistsByID(t *testing.T) {
	for _, want := range []bool{true, false} {
		ctx, repo, mockPool := setupCustomerRepo(t)

		mockPool.ExpectQuery(regexp.QuoteMeta(queryExistsByID)).WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(want))

		exists, err := repo.ExistsByID(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, want, exists)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
		mockPool.Close()
	}
}

func TestExistsByIDWhenQueryFails(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(queryExistsByID)).WithArgs(int64(1)).WillReturnError(errors.New("timeout"))

	exists, err := repo.ExistsByID(ctx, 1)
	assert.False(t, exists)
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
}

func TestSaveNewCustomerInserts(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(queryInsert)).WithArgs("John Doe").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "John Doe"))

	saved, err := repo.Save(ctx, customer.NewCustomer("John Doe"))
	assert.NoError(t, err)
	assert.Equal(t, &customer.Customer{ID: 1, Name: "John Doe"}, saved)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestSaveNewCustomerWhenInsertFails(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(queryInsert)).WithArgs("John Doe").WillReturnError(errors.New("disk full"))

	saved, err := repo.Save(ctx, customer.NewCustomer("John Doe"))
	assert.Nil(t, saved)
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestSaveExistingCustomerUpdates(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(queryUpdate)).WithArgs("Jane Doe", int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Jane Doe"))

	saved, err := repo.Save(ctx, &customer.Customer{ID: 1, Name: "Jane Doe"})
	assert.NoError(t, err)
	assert.Equal(t, &customer.Customer{ID: 1, Name: "Jane Doe"}, saved)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestSaveExistingCustomerWhenRowIsGone(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(queryUpdate)).WithArgs("Jane Doe", int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}))

	saved, err := repo.Save(ctx, &customer.Customer{ID: 1, Name: "Jane Doe"})
	assert.Nil(t, saved)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestSaveNilCustomer(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	_, err := repo.Save(ctx, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestDeleteByID(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectExec(regexp.QuoteMeta(queryDeleteByID)).WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.DeleteByID(ctx, 1)
	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestDeleteByIDIsIdempotent(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectExec(regexp.QuoteMeta(queryDeleteByID)).WithArgs(int64(999)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteByID(ctx, 999)
	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestDeleteByIDWhenExecFails(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectExec(regexp.QuoteMeta(queryDeleteByID)).WithArgs(int64(1)).WillReturnError(errors.New("lock timeout"))

	err := repo.DeleteByID(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}
