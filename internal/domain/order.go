package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

// PaymentStatus tracks how much of an order has been paid
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// PaymentStatuses lists every accepted payment status
var PaymentStatuses = []PaymentStatus{PaymentUnpaid, PaymentPartial, PaymentPaid}

// Valid reports whether s is one of the enumerated payment statuses
func (s PaymentStatus) Valid() bool {
	for _, v := range PaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// DeliveryStatus tracks shipment of an order
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryShipping  DeliveryStatus = "shipping"
	DeliveryDelivered DeliveryStatus = "delivered"
)

// DeliveryStatuses lists every accepted delivery status
var DeliveryStatuses = []DeliveryStatus{DeliveryPending, DeliveryShipping, DeliveryDelivered}

// Valid reports whether s is one of the enumerated delivery statuses
func (s DeliveryStatus) Valid() bool {
	for _, v := range DeliveryStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Order is a single purchase tracked inside a project
type Order struct {
	ID             int64          `json:"id"`
	ProjectID      int64          `json:"projectId"`
	Title          string         `json:"title"`
	Description    *string        `json:"description"`
	ProductURL     *string        `json:"productUrl"`
	Quantity       int            `json:"quantity"`
	InvoiceNumber  *string        `json:"invoiceNumber"`
	PaymentStatus  PaymentStatus  `json:"paymentStatus"`
	DeliveryStatus DeliveryStatus `json:"deliveryStatus"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// OrderFilter holds the conjunctive predicates of an order listing.
// Empty fields are not applied.
type OrderFilter struct {
	ProjectID      int64
	PaymentStatus  PaymentStatus
	DeliveryStatus DeliveryStatus
	Search         string
}

// Page selects a window of an offset-paginated listing. Page is 1-based.
type Page struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped before the page starts
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pages returns the number of pages needed to hold total rows
func (p Page) Pages(total int) int {
	if p.Limit <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// NullableString is a patch field that tells an absent key apart from an
// explicit null. Set is true whenever the key was present in the JSON.
type NullableString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// OrderPatch is a partial order update. Nil pointers and unset nullable
// fields leave the stored column untouched.
type OrderPatch struct {
	ID             *int64          `json:"id,omitempty"`
	ProjectID      *int64          `json:"projectId,omitempty"`
	Title          *string         `json:"title,omitempty"`
	Description    NullableString  `json:"description"`
	ProductURL     NullableString  `json:"productUrl"`
	Quantity       *int            `json:"quantity,omitempty"`
	InvoiceNumber  NullableString  `json:"invoiceNumber"`
	PaymentStatus  *PaymentStatus  `json:"paymentStatus,omitempty"`
	DeliveryStatus *DeliveryStatus `json:"deliveryStatus,omitempty"`
}

// Empty reports whether the patch changes no stored column
func (p OrderPatch) Empty() bool {
	return p.Title == nil && !p.Description.Set && !p.ProductURL.Set &&
		p.Quantity == nil && !p.InvoiceNumber.Set &&
		p.PaymentStatus == nil && p.DeliveryStatus == nil
}

// Apply copies the supplied fields onto o
func (p OrderPatch) Apply(o *Order) {
	if p.Title != nil {
		o.Title = *p.Title
	}
	if p.Description.Set {
		o.Description = p.Description.Value
	}
	if p.ProductURL.Set {
		o.ProductURL = p.ProductURL.Value
	}
	if p.Quantity != nil {
		o.Quantity = *p.Quantity
	}
	if p.InvoiceNumber.Set {
		o.InvoiceNumber = p.InvoiceNumber.Value
	}
	if p.PaymentStatus != nil {
		o.PaymentStatus = *p.PaymentStatus
	}
	if p.DeliveryStatus != nil {
		o.DeliveryStatus = *p.DeliveryStatus
	}
}

// OrderRepository defines data access for orders
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, filter OrderFilter, page Page) ([]*Order, int, error)
	Update(ctx context.Context, id int64, patch OrderPatch) (*Order, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
