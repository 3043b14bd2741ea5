package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is a client-side snapshot of a product at the time it was added.
// Name and Price are for display only.
type Line struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	Quantity  int             `json:"quantity"`
}

// Cart is an ordered list of lines with at most one line per product.
// Every operation returns a new Cart and leaves the receiver unchanged.
type Cart struct {
	Lines []Line `json:"lines"`
}

// CheckoutLine is what a cart contributes to a checkout request.
type CheckoutLine struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

func New() Cart {
	return Cart{Lines: []Line{}}
}

// Single builds the one-line cart used by direct buy.
func Single(l Line) (Cart, error) {
	return New().Add(l)
}

func (c Cart) index(id uuid.UUID) int {
	for i, l := range c.Lines {
		if l.ProductID == id {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

// Add appends l, or increments the existing line for the same product and
// refreshes its snapshot.
func (c Cart) Add(l Line) (Cart, error) {
	if l.ProductID == uuid.Nil {
		return c, ErrInvalidProduct
	}
	if l.Quantity < 1 {
		return c, ErrInvalidQuantity
	}

	out := c.clone()
	if i := out.index(l.ProductID); i >= 0 {
		l.Quantity += out.Lines[i].Quantity
		out.Lines[i] = l
		return out, nil
	}
	out.Lines = append(out.Lines, l)
	return out, nil
}

func (c Cart) Remove(id uuid.UUID) Cart {
	out := Cart{Lines: make([]Line, 0, len(c.Lines))}
	for _, l := range c.Lines {
		if l.ProductID != id {
			out.Lines = append(out.Lines, l)
		}
	}
	return out
}

func (c Cart) UpdateQuantity(id uuid.UUID, qty int) (Cart, error) {
	if qty < 1 {
		return c, ErrInvalidQuantity
	}
	i := c.index(id)
	if i < 0 {
		return c, ErrCartItemNotFound
	}

	out := c.clone()
	out.Lines[i].Quantity = qty
	return out, nil
}

func (c Cart) Clear() Cart {
	return New()
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) TotalItems() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// TotalAmount sums snapshot prices. It is a display figure; checkout
// reprices from the catalog.
func (c Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func (c Cart) CheckoutLines() []CheckoutLine {
	out := make([]CheckoutLine, len(c.Lines))
	for i, l := range c.Lines {
		out[i] = CheckoutLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return out
}
