package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusDraft      OrderStatus = "DRAFT"
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// transitions is the full legality table. Anything not listed is
// rejected with a StateTransitionError.
var transitions = map[OrderStatus][]OrderStatus{
	StatusDraft:      {StatusPending, StatusCancelled},
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// Valid reports whether s is one of the five known statuses.
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether an order in status s can never change again.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether s -> next is a legal status change.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem is a single product line in an order. Subtotal is kept in
// step with Price and Quantity by every accepted mutation.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// NewOrderItem constructs a validated line item.
func NewOrderItem(productID, name string, price float64, quantity int) (OrderItem, error) {
	if productID == "" {
		return OrderItem{}, &ValidationError{Field: "product_id", Reason: "cannot be empty"}
	}
	if price < 0 {
		return OrderItem{}, &ValidationError{Field: "price", Reason: "cannot be negative"}
	}
	if quantity <= 0 {
		return OrderItem{}, &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	item := OrderItem{ProductID: productID, Name: name, Price: price, Quantity: quantity}
	item.recalc()
	return item, nil
}

// AddQuantity increases the line quantity by n.
func (i *OrderItem) AddQuantity(n int) error {
	if n <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	i.Quantity += n
	i.recalc()
	return nil
}

// ReduceQuantity decreases the line quantity by n. The caller is
// responsible for removing the line when n >= Quantity; a line is never
// left at zero or negative quantity.
func (i *OrderItem) ReduceQuantity(n int) error {
	if n <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if n >= i.Quantity {
		return &ValidationError{Field: "quantity", Reason: "reduction exceeds current quantity, remove the item instead"}
	}
	i.Quantity -= n
	i.recalc()
	return nil
}

func (i *OrderItem) recalc() {
	i.Subtotal = i.Price * float64(i.Quantity)
}

func (i OrderItem) String() string {
	return fmt.Sprintf("%s x%d @ $%.2f = $%.2f", i.Name, i.Quantity, i.Price, i.Subtotal)
}

// Order aggregates line items with a status state machine. Items hold
// at most one entry per product id and preserve insertion order.
type Order struct {
	ID         string      `json:"order_id"`
	CustomerID string      `json:"customer_id"`
	Items      []OrderItem `json:"items"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewOrder creates a draft order with a generated id.
func NewOrder(customerID string) (*Order, error) {
	if customerID == "" {
		return nil, &ValidationError{Field: "customer_id", Reason: "cannot be empty"}
	}
	now := time.Now()
	return &Order{
		ID:         NewOrderID(),
		CustomerID: customerID,
		Items:      []OrderItem{},
		Status:     StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// NewOrderID generates an order identifier of the form ORD-XXXXXXXX.
func NewOrderID() string {
	u := uuid.New()
	return fmt.Sprintf("ORD-%X", u[:4])
}

// AddItem merges quantity into an existing line with the same product
// id, or appends a new line. Nothing changes on a validation failure.
func (o *Order) AddItem(productID, name string, price float64, quantity int) error {
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			if err := o.Items[idx].AddQuantity(quantity); err != nil {
				return err
			}
			o.touch()
			return nil
		}
	}
	item, err := NewOrderItem(productID, name, price, quantity)
	if err != nil {
		return err
	}
	o.Items = append(o.Items, item)
	o.touch()
	return nil
}

// RemoveItem deletes the line for productID entirely.
func (o *Order) RemoveItem(productID string) error {
	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.touch()
			return nil
		}
	}
	return &NotFoundError{Resource: "order item", ID: productID}
}

// ReduceItem decrements the line for productID by quantity, deleting the
// line when quantity >= the current amount.
func (o *Order) ReduceItem(productID string, quantity int) error {
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	for idx := range o.Items {
		if o.Items[idx].ProductID != productID {
			continue
		}
		if quantity >= o.Items[idx].Quantity {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
		} else {
			if err := o.Items[idx].ReduceQuantity(quantity); err != nil {
				return err
			}
		}
		o.touch()
		return nil
	}
	return &NotFoundError{Resource: "order item", ID: productID}
}

// Item returns a copy of the line for productID.
func (o *Order) Item(productID string) (OrderItem, error) {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return item, nil
		}
	}
	return OrderItem{}, &NotFoundError{Resource: "order item", ID: productID}
}

// Total recomputes the order amount from its items. Never cached.
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// ItemCount is the sum of line quantities.
func (o *Order) ItemCount() int {
	var count int
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// UniqueItemCount is the number of distinct product lines.
func (o *Order) UniqueItemCount() int {
	return len(o.Items)
}

// Clear removes all items.
func (o *Order) Clear() {
	o.Items = o.Items[:0]
	o.touch()
}

// UpdateStatus advances the state machine. On any rejection the order
// is left exactly as it was.
func (o *Order) UpdateStatus(next OrderStatus) error {
	if !next.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", next)}
	}
	if next == StatusPending && len(o.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "cannot submit an empty order"}
	}
	if !o.Status.CanTransitionTo(next) {
		return &StateTransitionError{OrderID: o.ID, From: o.Status, To: next}
	}
	o.Status = next
	o.touch()
	return nil
}

// Clone returns a deep copy, used for snapshots that must not alias the
// live order.
func (o *Order) Clone() *Order {
	clone := *o
	clone.Items = make([]OrderItem, len(o.Items))
	copy(clone.Items, o.Items)
	return &clone
}

// touch advances UpdatedAt monotonically.
func (o *Order) touch() {
	now := time.Now()
	if !now.After(o.UpdatedAt) {
		now = o.UpdatedAt.Add(time.Nanosecond)
	}
	o.UpdatedAt = now
}

// orderRecord is the persisted shape. The total field is derived at
// marshal time and recomputed from items on load, never trusted from
// disk.
type orderRecord struct {
	ID         string      `json:"order_id"`
	CustomerID string      `json:"customer_id"`
	Status     OrderStatus `json:"status"`
	Items      []OrderItem `json:"items"`
	Total      float64     `json:"total"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (o Order) MarshalJSON() ([]byte, error) {
	items := o.Items
	if items == nil {
		items = []OrderItem{}
	}
	return json.Marshal(orderRecord{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Status:     o.Status,
		Items:      items,
		Total:      o.Total(),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	})
}

func (o *Order) UnmarshalJSON(data []byte) error {
	var rec orderRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	o.ID = rec.ID
	o.CustomerID = rec.CustomerID
	o.Status = rec.Status
	o.Items = rec.Items
	if o.Items == nil {
		o.Items = []OrderItem{}
	}
	for idx := range o.Items {
		o.Items[idx].recalc()
	}
	o.CreatedAt = rec.CreatedAt
	o.UpdatedAt = rec.UpdatedAt
	return nil
}
