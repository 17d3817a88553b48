package services

import (
	"context"
	"testing"
	"time"

	"campus-canteen-api/apperror"
	"campus-canteen-api/logging"
	"campus-canteen-api/metrics"
	"campus-canteen-api/models"
	"campus-canteen-api/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func f(v float64) *float64 { return &v }

func newLedger(t *testing.T) (*OrderLedger, *gorm.DB) {
	db := testkit.NewDB(t)
	l := NewOrderLedger(db, logging.Discard(), metrics.New()).
		WithClock(testkit.Clock(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)))
	return l, db
}

func createPatron(t *testing.T, db *gorm.DB, name, email string) *models.User {
	u := &models.User{Name: name, Email: email, PasswordHash: "h", Role: models.RolePatron}
	require.NoError(t, db.Create(u).Error)
	return u
}

func teaOrder(paid bool) PlaceOrderInput {
	return PlaceOrderInput{
		LineItems:     []models.OrderItem{{Name: "Tea", Quantity: 2, UnitPrice: 10}},
		PaymentMethod: models.PaymentCash,
		Paid:          paid,
		Totals:        models.Totals{Subtotal: f(20), Tax: f(1), Grand: f(21)},
	}
}

func TestPlaceOrderInitialStatus(t *testing.T) {
	l, db := newLedger(t)
	ctx := context.Background()
	p := createPatron(t, db, "A", "a@vit.edu")

	unpaid, err := l.PlaceOrder(ctx, p.ID, teaOrder(false))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, unpaid.Status)

	paid, err := l.PlaceOrder(ctx, p.ID, teaOrder(true))
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, paid.Status)
}

func TestPlaceOrderStoresClientTotalsVerbatim(t *testing.T) {
	l, db := newLedger(t)
	ctx := context.Background()
	p := createPatron(t, db, "A", "a@vit.edu")

	in := teaOrder(true)
	in.Totals = models.Totals{Subtotal: f(1), Tax: f(0), Grand: f(999)}
	placed, err := l.PlaceOrder(ctx, p.ID, in)
	require.NoError(t, err)

	got, err := l.GetOwnOrder(ctx, p.ID, placed.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Totals.Grand)
	assert.Equal(t, 999.0, *got.Totals.Grand)
	assert.Equal(t, p.ID, got.PatronID)
}

func TestPlaceOrderKeepsLineItemOrder(t *testing.T) {
	l, db := newLedger(t)
	ctx := context.Background()
	p := createPatron(t, db, "A", "a@vit.edu")

	in := teaOrder(false)
	in.LineItems = []models.OrderItem{
		{Name: "Tea", Quantity: 1, UnitPrice: 10},
		{Name: "Dosa", Quantity: 2, UnitPrice: 60},
		{Name: "Coffee", Quantity: 1, UnitPrice: 50},
	}
	placed, err := l.PlaceOrder(ctx, p.ID, in)
	require.NoError(t, err)

	got, err := l.GetOwnOrder(ctx, p.ID, placed.ID)
	require.NoError(t, err)
	require.Len(t, got.LineItems, 3)
	assert.Equal(t, "Tea", got.LineItems[0].Name)
	assert.Equal(t, "Dosa", got.LineItems[1].Name)
	assert.Equal(t, 2, got.LineItems[1].Quantity)
	assert.Equal(t, "Coffee", got.LineItems[2].Name)
}

func TestListOwnOrdersScopedAndNewestFirst(t *testing.T) {
	l, db := newLedger(t)
	ctx := context.Background()
	a := createPatron(t, db, "A", "a@vit.edu")
	b := createPatron(t, db, "B", "b@vit.edu")

	first, err := l.PlaceOrder(ctx, a.ID, teaOrder(false))
	require.NoError(t, err)
	_, err = l.PlaceOrder(ctx, b.ID, teaOrder(false))
	require.NoError(t, err)
	second, err := l.PlaceOrder(ctx, a.ID, teaOrder(true))
	require.NoError(t, err)

	orders, err := l.ListOwnOrders(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	for _, o := range orders {
		assert.Equal(t, a.ID, o.PatronID)
		assert.Nil(t, o.Patron)
	}
}

func TestGetOwnOrderHidesOtherPatrons(t *testing.T) {
	l, db := newLedger(t)
	ctx := context.Background()
	a := createPatron(t, db, "A", "a@vit.edu")
	b := createPatron(t, db, "B", "b@vit.edu")

	o, err := l.PlaceOrder(ctx, a.ID, teaOrder(false))
	require.NoError(t, err)

	_, err = l.GetOwnOrder(ctx, b.ID, o.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestListAllOrdersResolvesPatron(t *testing.T) {
	l, db := newLedger(t)
	ctx := context.Background()
	a := createPatron(t, db, "Asha", "a@vit.edu")
	b := createPatron(t, db, "Bala", "b@vit.edu")

	_, err := l.PlaceOrder(ctx, a.ID, teaOrder(false))
	require.NoError(t, err)
	last, err := l.PlaceOrder(ctx, b.ID, teaOrder(true))
	require.NoError(t, err)

	orders, err := l.ListAllOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, last.ID, orders[0].ID)
	require.NotNil(t, orders[0].Patron)
	assert.Equal(t, "Bala", orders[0].Patron.Name)
	assert.Equal(t, "b@vit.edu", orders[0].Patron.Email)
	require.NotNil(t, orders[1].Patron)
	assert.Equal(t, "Asha", orders[1].Patron.Name)
}

func TestListAllOrdersEmpty(t *testing.T) {
	l, _ := newLedger(t)
	orders, err := l.ListAllOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestAdvanceStatusIsPermissive(t *testing.T) {
	l, db := newLedger(t)
	ctx := context.Background()
	p := createPatron(t, db, "A", "a@vit.edu")
	o, err := l.PlaceOrder(ctx, p.ID, teaOrder(false))
	require.NoError(t, err)

	updated, err := l.AdvanceStatus(ctx, o.ID, models.StatusDelivered, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)

	// Out-of-flow moves are accepted.
	updated, err = l.AdvanceStatus(ctx, o.ID, models.StatusPending, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)

	all, err := l.ListAllOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, all[0].Status)
}

func TestAdvanceStatusErrors(t *testing.T) {
	l, db := newLedger(t)
	ctx := context.Background()
	p := createPatron(t, db, "A", "a@vit.edu")
	o, err := l.PlaceOrder(ctx, p.ID, teaOrder(false))
	require.NoError(t, err)

	_, err = l.AdvanceStatus(ctx, "5f0e8f0a-0000-4000-8000-000000000000", models.StatusReady, "s")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = l.AdvanceStatus(ctx, "not-a-uuid", models.StatusReady, "s")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = l.AdvanceStatus(ctx, o.ID, "Cancelled", "s")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestHistoryRecordsEveryWrite(t *testing.T) {
	l, db := newLedger(t)
	ctx := context.Background()
	p := createPatron(t, db, "A", "a@vit.edu")
	o, err := l.PlaceOrder(ctx, p.ID, teaOrder(false))
	require.NoError(t, err)
	_, err = l.AdvanceStatus(ctx, o.ID, models.StatusReady, "staff-1")
	require.NoError(t, err)
	_, err = l.AdvanceStatus(ctx, o.ID, models.StatusDelivered, "staff-2")
	require.NoError(t, err)

	h, err := l.History(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, h, 3)
	assert.Equal(t, models.OrderStatus(""), h[0].FromStatus)
	assert.Equal(t, models.StatusPending, h[0].ToStatus)
	assert.Equal(t, p.ID, h[0].ChangedBy)
	assert.Equal(t, models.StatusReady, h[1].ToStatus)
	assert.Equal(t, models.StatusReady, h[2].FromStatus)
	assert.Equal(t, models.StatusDelivered, h[2].ToStatus)
	assert.Equal(t, "staff-2", h[2].ChangedBy)

	_, err = l.History(ctx, "not-a-uuid")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
