// internal/services/order_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samoku/samoku-backend/internal/config"
	"github.com/samoku/samoku-backend/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSplitByStore(t *testing.T) {
	storeA := uuid.New()
	storeB := uuid.New()

	lines := []checkoutLine{
		{ProductID: uuid.New(), StoreID: storeA, UnitPrice: dec("10.00"), Quantity: 1},
		{ProductID: uuid.New(), StoreID: storeB, UnitPrice: dec("20.00"), Quantity: 2},
		{ProductID: uuid.New(), StoreID: storeA, UnitPrice: dec("5.00"), Quantity: 3},
	}

	groups, err := splitByStore(lines)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// First-seen order across groups, input order within.
	assert.Equal(t, storeA, groups[0].StoreID)
	assert.Equal(t, storeB, groups[1].StoreID)
	assert.Len(t, groups[0].Lines, 2)
	assert.Len(t, groups[1].Lines, 1)
	assert.Equal(t, lines[0].ProductID, groups[0].Lines[0].ProductID)
	assert.Equal(t, lines[2].ProductID, groups[0].Lines[1].ProductID)

	// Every line lands in exactly one group.
	total := 0
	for _, g := range groups {
		total += len(g.Lines)
	}
	assert.Equal(t, len(lines), total)
}

func TestSplitByStoreSingleVendor(t *testing.T) {
	store := uuid.New()
	lines := []checkoutLine{
		{ProductID: uuid.New(), StoreID: store},
		{ProductID: uuid.New(), StoreID: store},
	}

	groups, err := splitByStore(lines)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Lines, 2)
}

func TestSplitByStoreUnresolvableStore(t *testing.T) {
	lines := []checkoutLine{
		{ProductID: uuid.New(), StoreID: uuid.New()},
		{ProductID: uuid.New(), StoreID: uuid.Nil},
	}

	groups, err := splitByStore(lines)
	assert.Nil(t, groups)
	assert.True(t, errors.Is(err, ErrStoreResolution))
}

func TestSplitByStoreEmpty(t *testing.T) {
	groups, err := splitByStore(nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestShippingForGroup(t *testing.T) {
	threshold := dec("50.00")
	flatFee := dec("9.99")

	tests := []struct {
		name     string
		subtotal string
		want     string
	}{
		{"under threshold", "49.99", "9.99"},
		{"at threshold", "50.00", "0"},
		{"over threshold", "50.01", "0"},
		{"zero subtotal", "0", "9.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shippingForGroup(dec(tt.subtotal), threshold, flatFee)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestGroupSubtotal(t *testing.T) {
	g := storeGroup{
		StoreID: uuid.New(),
		Lines: []checkoutLine{
			{UnitPrice: dec("10.00"), Quantity: 3},
			{UnitPrice: dec("19.99"), Quantity: 2},
		},
	}

	assert.True(t, dec("69.98").Equal(g.subtotal()))
}

func TestMoneyRounding(t *testing.T) {
	assert.True(t, dec("1.13").Equal(money(dec("1.125"))))
	assert.True(t, dec("1.12").Equal(money(dec("1.124"))))
	assert.True(t, dec("-1.13").Equal(money(dec("-1.125"))))
	assert.True(t, dec("10.00").Equal(money(dec("10"))))
}

// Full checkout math for a two-vendor cart: one group under the free
// shipping threshold, one over.
func TestCheckoutTotalsTwoVendors(t *testing.T) {
	storeA := uuid.New() // rate 5%, subtotal $30
	storeB := uuid.New() // rate 10%, subtotal $80

	lines := []checkoutLine{
		{ProductID: uuid.New(), StoreID: storeA, UnitPrice: dec("15.00"), Quantity: 2, Rate: dec("5")},
		{ProductID: uuid.New(), StoreID: storeB, UnitPrice: dec("40.00"), Quantity: 2, Rate: dec("10")},
	}

	groups, err := splitByStore(lines)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal = money(subtotal)
	assert.True(t, dec("110.00").Equal(subtotal))

	tax := money(subtotal.Mul(dec("0.08")))
	assert.True(t, dec("8.80").Equal(tax))

	threshold := dec("50.00")
	flatFee := dec("9.99")
	shipping := decimal.Zero
	for i := range groups {
		shipping = shipping.Add(shippingForGroup(groups[i].subtotal(), threshold, flatFee))
	}
	// Only store A's $30 group pays shipping.
	assert.True(t, dec("9.99").Equal(shipping))

	total := subtotal.Add(tax).Add(shipping)
	assert.True(t, dec("128.79").Equal(total))

	// Per-line commission snapshots.
	commissionA, netA := ComputeCommission(lines[0].Rate, money(lines[0].UnitPrice.Mul(decimal.NewFromInt(2))))
	assert.True(t, dec("1.50").Equal(commissionA))
	assert.True(t, dec("28.50").Equal(netA))

	commissionB, netB := ComputeCommission(lines[1].Rate, money(lines[1].UnitPrice.Mul(decimal.NewFromInt(2))))
	assert.True(t, dec("8.00").Equal(commissionB))
	assert.True(t, dec("72.00").Equal(netB))
}

// The inventory decrement is conditional on remaining stock: zero affected
// rows means a concurrent checkout took the last units.
func TestPersistLineInsufficientStock(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := &OrderService{db: gdb, commissionService: NewCommissionService(gdb, nil)}

	order := &models.Order{}
	order.ID = uuid.New()
	line := checkoutLine{
		ProductID:   uuid.New(),
		StoreID:     uuid.New(),
		ProductName: "Walnut Desk Organizer",
		UnitPrice:   dec("19.99"),
		Quantity:    3,
		Rate:        dec("5"),
	}

	mock.ExpectQuery(`INSERT INTO "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectQuery(`INSERT INTO "commission_transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectExec(`UPDATE "products" SET .*stock_quantity >= \$`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.persistLine(gdb, order, line)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersistLineDecrementsStock(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := &OrderService{db: gdb, commissionService: NewCommissionService(gdb, nil)}

	order := &models.Order{}
	order.ID = uuid.New()
	line := checkoutLine{
		ProductID:   uuid.New(),
		StoreID:     uuid.New(),
		ProductName: "Walnut Desk Organizer",
		UnitPrice:   dec("19.99"),
		Quantity:    1,
		Rate:        dec("5"),
	}

	mock.ExpectQuery(`INSERT INTO "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectQuery(`INSERT INTO "commission_transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectExec(`UPDATE "products" SET .*stock_quantity >= \$`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.persistLine(gdb, order, line))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A product with an open alert must not accumulate a second one on every
// qualifying checkout.
func TestRaiseStockAlertsSkipsOpenAlert(t *testing.T) {
	hook := logrustest.NewGlobal()
	defer hook.Reset()

	gdb, mock := newMockDB(t)
	cfg := &config.Config{}
	cfg.Platform.LowStockThreshold = 5
	svc := &OrderService{db: gdb, cfg: cfg}

	productID := uuid.New()
	groups := []storeGroup{{
		StoreID: uuid.New(),
		Lines:   []checkoutLine{{ProductID: productID, StoreOwnerID: uuid.New()}},
	}}

	mock.ExpectQuery(`SELECT \* FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "store_id", "stock_quantity"}).
			AddRow(productID.String(), uuid.New().String(), 2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "inventory_alerts"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	svc.raiseStockAlerts(groups)

	assert.NoError(t, mock.ExpectationsWereMet())
	for _, entry := range hook.AllEntries() {
		assert.NotEqual(t, "Failed to create inventory alert", entry.Message)
	}
}

func TestRaiseStockAlertsCreatesAlert(t *testing.T) {
	gdb, mock := newMockDB(t)
	cfg := &config.Config{}
	cfg.Platform.LowStockThreshold = 5
	svc := &OrderService{db: gdb, cfg: cfg}

	productID := uuid.New()
	groups := []storeGroup{{
		StoreID: uuid.New(),
		Lines:   []checkoutLine{{ProductID: productID, StoreOwnerID: uuid.New()}},
	}}

	mock.ExpectQuery(`SELECT \* FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "store_id", "stock_quantity"}).
			AddRow(productID.String(), uuid.New().String(), 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "inventory_alerts"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "inventory_alerts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))

	svc.raiseStockAlerts(groups)

	assert.NoError(t, mock.ExpectationsWereMet())
}
