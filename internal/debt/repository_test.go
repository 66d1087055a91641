package debt

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryListShipments(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "tracking_number", "cod_amount", "currency", "payment_status", "customer_name"}).
		AddRow("1", "TRK-1", "50.00", "MYR", "COD_PENDING", "Aisyah").
		AddRow("2", "TRK-2", "30.10", "MYR", nil, nil)
	mock.ExpectQuery("FROM shipments").WithArgs("").WillReturnRows(rows)

	repo := NewRepository(db)
	debts, err := repo.List(context.Background(), CategoryShipment, Filter{})
	require.NoError(t, err)
	require.Len(t, debts, 2)

	assert.Equal(t, "TRK-1", debts[0].Reference)
	assert.Equal(t, "Aisyah", debts[0].CustomerName)
	assert.Equal(t, "30.1", debts[1].Amount.String())
	assert.Equal(t, PaymentStatus(""), debts[1].PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListBuy4MeWithStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "order_number", "total_amount", "currency", "payment_status", "customer_name"}).
		AddRow("9", "B4M-9", "12.00", "MYR", "PENDING", "Wei")
	mock.ExpectQuery("FROM buy4me_orders").WithArgs("PENDING").WillReturnRows(rows)

	repo := NewRepository(db)
	debts, err := repo.List(context.Background(), CategoryBuy4Me, Filter{Status: PaymentStatusPending})
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, CategoryBuy4Me, debts[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryRejectsBadAmount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "tracking_number", "cod_amount", "currency", "payment_status", "customer_name"}).
		AddRow("1", "TRK-1", "abc", "MYR", nil, nil)
	mock.ExpectQuery("FROM shipments").WillReturnRows(rows)

	_, err = NewRepository(db).List(context.Background(), CategoryShipment, Filter{})
	assert.Error(t, err)
}
