// internal/services/commission_service_test.go
package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/samoku/samoku-backend/internal/models"
)

// newMockDB opens GORM over a sqlmock connection so service queries can be
// asserted without a live database.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError:         true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gdb, mock
}

func TestComputeCommission(t *testing.T) {
	tests := []struct {
		name           string
		rate           string
		sale           string
		wantCommission string
		wantNet        string
	}{
		{"five percent", "5", "100.00", "5.00", "95.00"},
		{"ten percent", "10", "80.00", "8.00", "72.00"},
		{"zero rate", "0", "49.99", "0.00", "49.99"},
		{"full rate", "100", "25.00", "25.00", "0.00"},
		{"fractional rate", "7.5", "19.99", "1.50", "18.49"},
		{"rounding edge", "5", "0.10", "0.01", "0.09"},
		{"tiny sale", "5", "0.01", "0.00", "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commission, net := ComputeCommission(dec(tt.rate), dec(tt.sale))
			assert.True(t, dec(tt.wantCommission).Equal(commission), "commission: got %s", commission)
			assert.True(t, dec(tt.wantNet).Equal(net), "net: got %s", net)
		})
	}
}

// Commission and net must always reconstruct the sale amount exactly,
// whatever the rounding did.
func TestComputeCommissionConservation(t *testing.T) {
	rates := []string{"0", "2.5", "5", "7.5", "10", "12.34", "50", "100"}
	sales := []string{"0.01", "0.99", "1.00", "9.99", "19.99", "100.00", "1234.56"}

	for _, r := range rates {
		for _, s := range sales {
			commission, net := ComputeCommission(dec(r), dec(s))
			assert.True(t, dec(s).Equal(commission.Add(net)),
				"rate %s sale %s: %s + %s", r, s, commission, net)
			assert.False(t, commission.IsNegative())
			assert.False(t, net.IsNegative())
		}
	}
}

func TestSumNetAmounts(t *testing.T) {
	transactions := []models.CommissionTransaction{
		{NetAmount: dec("28.50")},
		{NetAmount: dec("72.00")},
		{NetAmount: dec("0.01")},
	}

	assert.True(t, dec("100.51").Equal(SumNetAmounts(transactions)))
}

func TestSumNetAmountsEmpty(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(SumNetAmounts(nil)))
	assert.True(t, decimal.Zero.Equal(SumNetAmounts([]models.CommissionTransaction{})))
}

// Whatever the caller asks for, the payout is the sum of the settled
// transactions' net amounts.
func TestDerivePayoutAmountIgnoresRequested(t *testing.T) {
	transactions := []models.CommissionTransaction{
		{NetAmount: dec("100.00")},
		{NetAmount: dec("23.45")},
	}

	assert.True(t, dec("123.45").Equal(derivePayoutAmount(transactions, dec("999999.99"), uuid.New())))
	assert.True(t, dec("123.45").Equal(derivePayoutAmount(transactions, decimal.Zero, uuid.New())))
	assert.True(t, dec("123.45").Equal(derivePayoutAmount(transactions, dec("123.45"), uuid.New())))
}

func TestRequestPayoutLocksPendingAndDerivesAmount(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewCommissionService(gdb, nil)

	storeID := uuid.New()
	payoutID := uuid.New()
	txn1 := uuid.New()
	txn2 := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "stores"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id"}).
			AddRow(storeID.String(), uuid.New().String()))
	mock.ExpectQuery(`SELECT \* FROM "commission_transactions" WHERE .* FOR UPDATE$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "store_id", "net_amount", "status"}).
			AddRow(txn1.String(), storeID.String(), "100.00", "pending").
			AddRow(txn2.String(), storeID.String(), "23.45", "pending"))
	mock.ExpectQuery(`INSERT INTO "payouts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(payoutID.String()))
	mock.ExpectExec(`UPDATE "commission_transactions" SET .*id IN .* AND status = `).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT \* FROM "payouts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "store_id", "amount", "status"}).
			AddRow(payoutID.String(), storeID.String(), "123.45", "pending"))
	mock.ExpectQuery(`SELECT \* FROM "commission_transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "payout_id", "net_amount"}).
			AddRow(txn1.String(), payoutID.String(), "100.00").
			AddRow(txn2.String(), payoutID.String(), "23.45"))

	payout, err := svc.RequestPayout(storeID, &RequestPayoutRequest{
		RequestedAmount: 999999.99,
		BankDetails:     map[string]interface{}{"iban": "DE02120300000000202051"},
	})
	require.NoError(t, err)
	assert.True(t, dec("123.45").Equal(payout.Amount), "amount: got %s", payout.Amount)
	assert.Len(t, payout.Transactions, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A concurrent payout claiming the same transactions between the locked fetch
// and the claim update must fail the whole request.
func TestRequestPayoutFailsOnLostClaim(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewCommissionService(gdb, nil)

	storeID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "stores"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id"}).
			AddRow(storeID.String(), uuid.New().String()))
	mock.ExpectQuery(`SELECT \* FROM "commission_transactions" WHERE .* FOR UPDATE$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "store_id", "net_amount", "status"}).
			AddRow(uuid.New().String(), storeID.String(), "100.00", "pending").
			AddRow(uuid.New().String(), storeID.String(), "23.45", "pending"))
	mock.ExpectQuery(`INSERT INTO "payouts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectExec(`UPDATE "commission_transactions" SET .*id IN .* AND status = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	_, err := svc.RequestPayout(storeID, &RequestPayoutRequest{
		BankDetails: map[string]interface{}{"iban": "DE02120300000000202051"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concurrent")
	assert.NoError(t, mock.ExpectationsWereMet())
}
