package domain

import (
	"fmt"
	"time"
)

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "CASH"
	PaymentCard    PaymentMethod = "CARD"
	PaymentUPI     PaymentMethod = "UPI"
	PaymentLoyalty PaymentMethod = "LOYALTY"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentLoyalty:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

type Variant struct {
	ID         int     `json:"id"`
	MenuItemID int     `json:"menu_item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
}

// AddonOption is an addon as it applies to one menu item. The effective
// price resolves item-level override, then category-level override, then
// the addon's own base price.
type AddonOption struct {
	AddonID       int      `json:"addon_id"`
	Name          string   `json:"name"`
	BasePrice     float64  `json:"base_price"`
	CategoryPrice *float64 `json:"category_price,omitempty"`
	ItemPrice     *float64 `json:"item_price,omitempty"`
}

func (a AddonOption) EffectivePrice() float64 {
	if a.ItemPrice != nil {
		return *a.ItemPrice
	}
	if a.CategoryPrice != nil {
		return *a.CategoryPrice
	}
	return a.BasePrice
}

type MenuItem struct {
	ID          int           `json:"id"`
	CategoryID  int           `json:"category_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	BasePrice   *float64      `json:"base_price"` // nil when variants carry the price
	HasVariants bool          `json:"has_variants"`
	Available   bool          `json:"available"`
	Variants    []Variant     `json:"variants,omitempty"`
	Addons      []AddonOption `json:"addons,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (m *MenuItem) Variant(id int) *Variant {
	for i := range m.Variants {
		if m.Variants[i].ID == id {
			return &m.Variants[i]
		}
	}
	return nil
}

func (m *MenuItem) AddonOption(id int) *AddonOption {
	for i := range m.Addons {
		if m.Addons[i].AddonID == id {
			return &m.Addons[i]
		}
	}
	return nil
}

type LineVariant struct {
	VariantID int     `json:"variant_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

type LineAddon struct {
	AddonID  int     `json:"addon_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"` // effective unit price at order time
}

type OrderLine struct {
	ID            int           `json:"id"`
	MenuItemID    int           `json:"menu_item_id"`
	ItemName      string        `json:"item_name"`
	Quantity      int           `json:"quantity"`
	Variants      []LineVariant `json:"variants,omitempty"`
	Addons        []LineAddon   `json:"addons,omitempty"`
	Instructions  string        `json:"instructions,omitempty"`
	PriceOverride *float64      `json:"price_override,omitempty"`
	UnitPrice     float64       `json:"unit_price"`
	LineTotal     float64       `json:"line_total"`
}

type RefundInfo struct {
	PaymentMethod PaymentMethod `json:"payment_method"`
	Amount        float64       `json:"amount"`
	LoyaltyPoints int           `json:"loyalty_points"`
}

type Cancellation struct {
	Status      CancellationStatus `json:"status"`
	Reason      string             `json:"reason,omitempty"`
	RequestedBy int                `json:"requested_by,omitempty"`
	RequestedAt *time.Time         `json:"requested_at,omitempty"`
	DecidedBy   int                `json:"decided_by,omitempty"`
	DecidedAt   *time.Time         `json:"decided_at,omitempty"`
	AdminNotes  string             `json:"admin_notes,omitempty"`
	Refund      *RefundInfo        `json:"refund_info,omitempty"`
}

type Order struct {
	ID            int           `json:"id"`
	Number        string        `json:"order_number"`
	CustomerID    *int          `json:"customer_id,omitempty"`
	CustomerName  string        `json:"customer_name,omitempty"`
	CustomerPhone string        `json:"customer_phone,omitempty"`
	Lines         []OrderLine   `json:"lines"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"` // always zero, kept on the receipt
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Cancellation  Cancellation  `json:"cancellation"`
	Notes         string        `json:"notes,omitempty"`
	LocationID    string        `json:"location_id,omitempty"`
	CreatedBy     int           `json:"created_by"`
	CreatedAt     time.Time     `json:"created_at"`
}

type StatusHistoryEntry struct {
	ID             int                `json:"id"`
	OrderID        int                `json:"order_id"`
	PreviousStatus CancellationStatus `json:"previous_status"`
	NewStatus      CancellationStatus `json:"new_status"`
	Reason         string             `json:"reason,omitempty"`
	ActorID        int                `json:"actor_id"`
	CreatedAt      time.Time          `json:"created_at"`
}

type Customer struct {
	ID            int       `json:"id"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email,omitempty"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name,omitempty"`
	TotalOrders   int       `json:"total_orders"`
	TotalSpent    float64   `json:"total_spent"`
	LoyaltyPoints int       `json:"loyalty_points"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

func (c *Customer) DisplayName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// FormatOrderNumber renders the receipt-facing order number, e.g.
// ORD-20260115-0007. The sequence restarts at 1 each calendar day.
func FormatOrderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("ORD-%s-%04d", day.UTC().Format("20060102"), seq)
}

type AddonSelection struct {
	AddonID  int `json:"addon_id"`
	Quantity int `json:"quantity"`
}

type CreateOrderLine struct {
	MenuItemID    int              `json:"menu_item_id"`
	Quantity      int              `json:"quantity"`
	VariantIDs    []int            `json:"variant_ids,omitempty"`
	Addons        []AddonSelection `json:"addons,omitempty"`
	Instructions  string           `json:"instructions,omitempty"`
	PriceOverride *float64         `json:"price_override,omitempty"`
}

type CreateOrderRequest struct {
	CustomerPhone string            `json:"customer_phone,omitempty"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	CustomerName  string            `json:"customer_name,omitempty"`
	Lines         []CreateOrderLine `json:"lines"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	Notes         string            `json:"notes,omitempty"`
	LocationID    string            `json:"location_id,omitempty"`
	CreatedBy     int               `json:"created_by"`
}

type CreateOrderResult struct {
	Order         *Order    `json:"order"`
	Customer      *Customer `json:"customer,omitempty"`
	CustomerIsNew bool      `json:"customer_is_new"`
}

// OrderEvent is the message shape emitted to the order event stream.
type OrderEvent struct {
	Type          string        `json:"type"`
	OrderID       int           `json:"order_id"`
	OrderNumber   string        `json:"order_number"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Timestamp     time.Time     `json:"timestamp"`
}
