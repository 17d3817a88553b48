package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus represents the states of a canteen order
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusReady     OrderStatus = "Ready"
	StatusDelivered OrderStatus = "Delivered"
)

// PaymentMethod is the payment method claimed by the patron. Nothing is charged.
type PaymentMethod string

const (
	PaymentUPI  PaymentMethod = "upi"
	PaymentCash PaymentMethod = "cash"
)

// Totals are supplied by the client and stored as-is. A nil field was not sent.
type Totals struct {
	Subtotal *float64 `json:"subtotal,omitempty"`
	Tax      *float64 `json:"tax,omitempty"`
	Grand    *float64 `json:"grand,omitempty"`
}

type Order struct {
	ID            string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PatronID      string        `json:"patronId" gorm:"type:varchar(36);not null;index"`
	Patron        *PublicUser   `json:"patron,omitempty" gorm:"-"`
	LineItems     []OrderItem   `json:"lineItems" gorm:"foreignKey:OrderID"`
	PaymentMethod PaymentMethod `json:"paymentMethod" gorm:"not null"`
	Paid          bool          `json:"paid" gorm:"not null;default:false;index"`
	Totals        Totals        `json:"totals" gorm:"embedded;embeddedPrefix:totals_"`
	Status        OrderStatus   `json:"status" gorm:"not null;default:'Pending'"`
	CreatedAt     time.Time     `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem is a line item snapshot; Position keeps the client's ordering
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey"`
	OrderID   string  `json:"-" gorm:"type:varchar(36);not null;index"`
	Position  int     `json:"-" gorm:"not null"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// OrderStatusHistory tracks every status write, including the initial one
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"orderId" gorm:"type:varchar(36);not null;index"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	ChangedBy  string      `json:"changedBy"`
	CreatedAt  time.Time   `json:"createdAt"`
}
