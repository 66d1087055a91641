package notice

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noticeRowColumns = []string{"id", "driver_id", "kind", "message", "details", "payment_for", "is_read", "created_at"}

func TestRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO driver_notices").
		WithArgs("drv-1", KindPartialFailure, "1 failed", sqlmock.AnyArg(), "SHIPMENT").
		WillReturnRows(sqlmock.NewRows(noticeRowColumns).
			AddRow(7, "drv-1", "PARTIAL_FAILURE", "1 failed", "{\"Y: already paid\"}", "SHIPMENT", false, created))

	paymentFor := "SHIPMENT"
	n, err := NewRepository(db).Create(context.Background(), NewNotice{
		DriverID:   "drv-1",
		Kind:       KindPartialFailure,
		Message:    "1 failed",
		Details:    []string{"Y: already paid"},
		PaymentFor: &paymentFor,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), n.ID)
	assert.Equal(t, KindPartialFailure, n.Kind)
	assert.Equal(t, []string{"Y: already paid"}, n.Details)
	assert.Equal(t, created, n.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByIDMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM driver_notices WHERE id").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(noticeRowColumns))

	n, err := NewRepository(db).GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestRepositoryListUnread(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM driver_notices WHERE driver_id = \\$1 AND is_read = false").
		WithArgs("drv-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs("drv-1", 20, 0).
		WillReturnRows(sqlmock.NewRows(noticeRowColumns).
			AddRow(1, "drv-1", "VALIDATION", "Payment not sent", nil, nil, false, time.Now()))

	notices, total, err := NewRepository(db).ListByDriverID(context.Background(), "drv-1", 20, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, notices, 1)
	assert.Nil(t, notices[0].PaymentFor)
	assert.Empty(t, notices[0].Details)
	assert.NoError(t, mock.ExpectationsWereMet())
}
