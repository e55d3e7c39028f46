package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Receipt delivery states.
const (
	DeliveryPending = "PENDING"
	DeliverySent    = "SENT"
)

// Receipt is a financial document derived from a completed order. The
// embedded order is a snapshot taken at issue time: monetary fields are
// always re-derived from it, never from a live order, so the numbers
// cannot drift if the order later changes. After issue only the
// delivery fields may change.
type Receipt struct {
	ID         string    `json:"receipt_id"`
	Order      Order     `json:"order"`
	TaxRate    float64   `json:"tax_rate"`
	TipPercent float64   `json:"tip_percent"`
	IssuedAt   time.Time `json:"issued_at"`

	// Digital delivery. Empty Email means a printed receipt.
	Email          string     `json:"email,omitempty"`
	DeliveryStatus string     `json:"delivery_status,omitempty"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
}

// NewReceiptID generates a receipt identifier of the form RCP-XXXXXXXX.
func NewReceiptID() string {
	u := uuid.New()
	return fmt.Sprintf("RCP-%X", u[:4])
}

// Subtotal is the order amount before tax and tip.
func (r *Receipt) Subtotal() float64 {
	return r.Order.Total()
}

// Tax is the tax amount on the snapshot subtotal.
func (r *Receipt) Tax() float64 {
	return r.Subtotal() * r.TaxRate
}

// Tip is the tip amount on the snapshot subtotal.
func (r *Receipt) Tip() float64 {
	return r.Subtotal() * r.TipPercent
}

// GrandTotal is subtotal + tax + tip.
func (r *Receipt) GrandTotal() float64 {
	return r.Subtotal() + r.Tax() + r.Tip()
}
