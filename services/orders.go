package services

import (
	"context"
	"errors"
	"time"

	"campus-canteen-api/apperror"
	"campus-canteen-api/metrics"
	"campus-canteen-api/models"
	"campus-canteen-api/statemachine"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PlaceOrderInput is what a patron submits. Totals are taken as given and never
// recomputed from the line items.
type PlaceOrderInput struct {
	LineItems     []models.OrderItem
	PaymentMethod models.PaymentMethod
	Paid          bool
	Totals        models.Totals
}

// OrderLedger creates orders, lists them, and writes their status
type OrderLedger struct {
	db      *gorm.DB
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewOrderLedger(db *gorm.DB, log logrus.FieldLogger, m *metrics.Metrics) *OrderLedger {
	return &OrderLedger{db: db, log: log, metrics: m, now: time.Now}
}

// WithClock overrides the creation timestamp source
func (l *OrderLedger) WithClock(now func() time.Time) *OrderLedger {
	l.now = now
	return l
}

// PlaceOrder stores a new order for patronID. Paid orders start Ready, unpaid Pending.
func (l *OrderLedger) PlaceOrder(ctx context.Context, patronID string, in PlaceOrderInput) (*models.Order, error) {
	now := l.now()
	items := make([]models.OrderItem, len(in.LineItems))
	for i, it := range in.LineItems {
		items[i] = models.OrderItem{
			Position:  i,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}

	order := models.Order{
		PatronID:      patronID,
		LineItems:     items,
		PaymentMethod: in.PaymentMethod,
		Paid:          in.Paid,
		Totals:        in.Totals,
		Status:        statemachine.InitialStatus(in.Paid),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  order.Status,
			ChangedBy: patronID,
			CreatedAt: now,
		}).Error
	})
	if err != nil {
		l.log.WithError(err).WithField("patron_id", patronID).Error("failed to place order")
		return nil, apperror.Store("Failed to place order", err)
	}

	l.metrics.OrderPlaced(string(order.PaymentMethod), order.Paid)
	return &order, nil
}

// ListOwnOrders returns the patron's orders, newest first
func (l *OrderLedger) ListOwnOrders(ctx context.Context, patronID string) ([]models.Order, error) {
	var orders []models.Order
	err := l.db.WithContext(ctx).
		Preload("LineItems", orderItemsInPosition).
		Where("patron_id = ?", patronID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, apperror.Store("Failed to load orders", err)
	}
	return orders, nil
}

// GetOwnOrder returns one order if it belongs to patronID. Orders of other patrons are
// reported as not found.
func (l *OrderLedger) GetOwnOrder(ctx context.Context, patronID, orderID string) (*models.Order, error) {
	order, err := l.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PatronID != patronID {
		return nil, apperror.NotFound("Order not found")
	}
	return order, nil
}

// ListAllOrders returns every order, newest first, with the patron's name and email resolved
func (l *OrderLedger) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := l.db.WithContext(ctx).
		Preload("LineItems", orderItemsInPosition).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, apperror.Store("Failed to load orders", err)
	}

	ids := make([]string, 0, len(orders))
	seen := map[string]bool{}
	for _, o := range orders {
		if !seen[o.PatronID] {
			seen[o.PatronID] = true
			ids = append(ids, o.PatronID)
		}
	}
	if len(ids) == 0 {
		return orders, nil
	}

	var patrons []models.User
	if err := l.db.WithContext(ctx).Where("id IN ?", ids).Find(&patrons).Error; err != nil {
		return nil, apperror.Store("Failed to load patrons", err)
	}
	byID := make(map[string]models.PublicUser, len(patrons))
	for i := range patrons {
		byID[patrons[i].ID] = patrons[i].Public()
	}
	for i := range orders {
		if p, ok := byID[orders[i].PatronID]; ok {
			orders[i].Patron = &p
		}
	}
	return orders, nil
}

// AdvanceStatus overwrites the order's status. Any known status may replace any other.
func (l *OrderLedger) AdvanceStatus(ctx context.Context, orderID string, status models.OrderStatus, changedBy string) (*models.Order, error) {
	order, err := l.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !statemachine.CanTransition(order.Status, status) {
		return nil, apperror.Validation("Invalid status")
	}

	prev := order.Status
	now := l.now()
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Updates(map[string]interface{}{"status": status, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: prev,
			ToStatus:   status,
			ChangedBy:  changedBy,
			CreatedAt:  now,
		}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Order not found")
	}
	if err != nil {
		l.log.WithError(err).WithField("order_id", orderID).Error("failed to update order status")
		return nil, apperror.Store("Failed to update order", err)
	}

	conventional := statemachine.IsConventional(prev, status)
	l.metrics.StatusWritten(string(status), conventional)
	entry := l.log.WithFields(logrus.Fields{"order_id": order.ID, "from": prev, "to": status, "by": changedBy})
	if conventional {
		entry.Info("order status updated")
	} else {
		entry.Warn("order status moved outside the usual flow")
	}

	order.Status = status
	order.UpdatedAt = now
	return order, nil
}

// History returns the status audit trail of an order, oldest first
func (l *OrderLedger) History(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	if _, err := l.find(ctx, orderID); err != nil {
		return nil, err
	}
	var history []models.OrderStatusHistory
	err := l.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc").Order("id asc").
		Find(&history).Error
	if err != nil {
		return nil, apperror.Store("Failed to load order history", err)
	}
	return history, nil
}

func (l *OrderLedger) find(ctx context.Context, orderID string) (*models.Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, apperror.NotFound("Order not found")
	}
	var order models.Order
	err := l.db.WithContext(ctx).
		Preload("LineItems", orderItemsInPosition).
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Order not found")
		}
		return nil, apperror.Store("Failed to load order", err)
	}
	return &order, nil
}

func orderItemsInPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}
