package models

import (
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"
)

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusPlaced         OrderStatus = "placed"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusShipped        OrderStatus = "shipped"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
	StatusReturned       OrderStatus = "returned"
)

// PaymentMethod values accepted at checkout
const (
	PaymentCard       = "card"
	PaymentUPI        = "upi"
	PaymentNetBanking = "net_banking"
	PaymentCOD        = "cod"
)

// ShippingAddress is an immutable snapshot captured at checkout. It is
// embedded into the orders table so the email and name columns stay
// queryable for guest lookup and admin search.
type ShippingAddress struct {
	FirstName string `json:"firstName" gorm:"not null"`
	LastName  string `json:"lastName" gorm:"not null"`
	Email     string `json:"email" gorm:"not null;index"`
	Address   string `json:"address" gorm:"not null"`
	City      string `json:"city" gorm:"not null"`
	ZipCode   string `json:"zipCode" gorm:"not null"`
}

// PaymentInfo holds only the masked card number and expiry, never full card
// data. A pointer so admin projections can drop it entirely.
type PaymentInfo struct {
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
}

type Order struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	OrderID string `json:"orderId" gorm:"uniqueIndex"` // human-readable token, generated on first save

	UserID *uint `json:"userId,omitempty"` // nil for guest orders
	User   *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`

	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderRef;references:ID"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentInfo     *PaymentInfo    `json:"paymentInfo,omitempty" gorm:"serializer:json"`
	TotalAmount     float64         `json:"totalAmount" gorm:"not null"`
	PaymentMethod   string          `json:"paymentMethod" gorm:"not null;default:'card'"`
	OrderNotes      string          `json:"orderNotes"`

	Status         OrderStatus          `json:"status" gorm:"not null;default:'placed';index"`
	StatusHistory  []OrderStatusHistory `json:"statusHistory" gorm:"foreignKey:OrderRef;references:ID"`
	TrackingNumber *string              `json:"trackingNumber"`

	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
	ActualDelivery    *time.Time `json:"actualDelivery"`

	CancellationReason *string    `json:"cancellationReason"`
	ReturnReason       *string    `json:"returnReason"`
	ReturnRequestedAt  *time.Time `json:"returnRequestedAt"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderItem is a snapshot of the product at order time, not a live reference
// to the catalog.
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey"`
	OrderRef  uint    `json:"-" gorm:"not null;index"`
	ProductID string  `json:"productId" gorm:"not null"`
	Name      string  `json:"name" gorm:"not null"`
	Price     float64 `json:"price" gorm:"not null"`
	Quantity  int     `json:"quantity" gorm:"not null"`
	Image     string  `json:"image" gorm:"not null"`
}

// OrderStatusHistory rows form the append-only audit trail. Insertion order
// is chronological order; rows are never updated or reordered.
type OrderStatusHistory struct {
	ID        uint        `json:"-" gorm:"primaryKey"`
	OrderRef  uint        `json:"-" gorm:"not null;index"`
	Status    OrderStatus `json:"status" gorm:"not null"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note"`
}

const orderTokenCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewOrderToken builds the externally visible order identifier:
// ORD-<unix millis>-<5 random alphanumerics>. Practically unique, not
// cryptographically unique.
func NewOrderToken() string {
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = orderTokenCharset[rand.Intn(len(orderTokenCharset))]
	}
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}

// setsEstimatedDelivery reports whether entering status locks in a delivery
// estimate.
func setsEstimatedDelivery(status OrderStatus) bool {
	switch status {
	case StatusConfirmed, StatusShipped, StatusOutForDelivery:
		return true
	}
	return false
}

// BeforeSave derives generated fields on every persist:
//   - the external order token, generated once
//   - estimatedDelivery = now + 5 days, set once the order is confirmed or
//     further along, never overwritten
//   - actualDelivery, set the first time the order is delivered
func (o *Order) BeforeSave(tx *gorm.DB) error {
	if o.OrderID == "" {
		o.OrderID = NewOrderToken()
	}

	if o.EstimatedDelivery == nil && setsEstimatedDelivery(o.Status) {
		eta := time.Now().UTC().AddDate(0, 0, 5)
		o.EstimatedDelivery = &eta
	}

	if o.Status == StatusDelivered && o.ActualDelivery == nil {
		now := time.Now().UTC()
		o.ActualDelivery = &now
	}

	return nil
}

// AddStatusToHistory is the sole sanctioned way to change an order's status:
// it appends a history entry, updates the current status and persists the
// order, which runs the BeforeSave derivation rules. The caller is expected
// to have validated the target status.
func (o *Order) AddStatusToHistory(tx *gorm.DB, status OrderStatus, note string) error {
	if note == "" {
		note = "Status updated to " + string(status)
	}

	o.StatusHistory = append(o.StatusHistory, OrderStatusHistory{
		OrderRef:  o.ID,
		Status:    status,
		Timestamp: time.Now().UTC(),
		Note:      note,
	})
	o.Status = status

	return tx.Save(o).Error
}

// LastStatus returns the most recent history entry, or nil when the history
// was not loaded.
func (o *Order) LastStatus() *OrderStatusHistory {
	if len(o.StatusHistory) == 0 {
		return nil
	}
	return &o.StatusHistory[len(o.StatusHistory)-1]
}
