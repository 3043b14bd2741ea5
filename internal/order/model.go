package order

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID              uuid.UUID       `json:"id"`
	Reference       string          `json:"reference"`
	UserID          uint            `json:"userId"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	ShippingAddress string          `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentProofURL string          `json:"paymentProofUrl"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderItem snapshots the product as it was sold. Later catalog edits or
// deletions never reach it.
type OrderItem struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Spec        string          `json:"spec"`
	Color       string          `json:"color"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeTotal sums price x quantity over the items.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// LineRequest is one requested product. Price and ProductName are what the
// client displayed; they are never used to price the order.
type LineRequest struct {
	ProductID   uuid.UUID        `json:"productId"`
	Quantity    int              `json:"quantity"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ProductName string           `json:"productName,omitempty"`
}

type ProofUpload struct {
	Filename string
	Body     io.Reader
}

type CheckoutRequest struct {
	CustomerName    string
	CustomerPhone   string
	ShippingAddress string
	PaymentMethod   string
	Items           []LineRequest
	Proof           *ProofUpload
}

type StatusSummary struct {
	Status Status          `json:"status"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type Summary struct {
	From                  time.Time       `json:"from"`
	To                    time.Time       `json:"to"`
	ByStatus              []StatusSummary `json:"byStatus"`
	TotalOrders           int             `json:"totalOrders"`
	NetRevenue            decimal.Decimal `json:"netRevenue"`
	CompletedTransactions int             `json:"completedTransactions"`
	PendingOrders         int             `json:"pendingOrders"`
}
