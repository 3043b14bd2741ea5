package order

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type rawLine struct {
	ProductID   string           `json:"productId"`
	Quantity    json.Number      `json:"quantity"`
	Price       *decimal.Decimal `json:"price"`
	ProductName string           `json:"productName"`
}

// ParseLineRequests decodes the items JSON of a checkout form. Quantities
// that are not whole numbers are rejected here rather than truncated.
func ParseLineRequests(raw []byte) ([]LineRequest, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, invalid("items", ErrEmptyOrder)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var lines []rawLine
	if err := dec.Decode(&lines); err != nil {
		return nil, &ValidationError{Field: "items", Reason: "malformed items: " + err.Error()}
	}

	out := make([]LineRequest, 0, len(lines))
	for _, l := range lines {
		id, err := uuid.Parse(strings.TrimSpace(l.ProductID))
		if err != nil {
			return nil, &ValidationError{Field: "items.productId", Reason: "invalid product id " + l.ProductID}
		}

		qty, err := l.Quantity.Int64()
		if err != nil || qty > int64(maxLineQuantity) {
			return nil, invalid("items.quantity", ErrInvalidQuantity)
		}

		out = append(out, LineRequest{
			ProductID:   id,
			Quantity:    int(qty),
			Price:       l.Price,
			ProductName: l.ProductName,
		})
	}
	return out, nil
}

const maxLineQuantity = 10000

// mergeLines validates each line and folds duplicates of a product into one
// line, preserving first-seen order.
func mergeLines(lines []LineRequest) ([]LineRequest, error) {
	if len(lines) == 0 {
		return nil, invalid("items", ErrEmptyOrder)
	}

	index := make(map[uuid.UUID]int, len(lines))
	merged := make([]LineRequest, 0, len(lines))

	for _, l := range lines {
		if l.ProductID == uuid.Nil {
			return nil, &ValidationError{Field: "items.productId", Reason: "product id is required"}
		}
		if l.Quantity <= 0 || l.Quantity > maxLineQuantity {
			return nil, invalid("items.quantity", ErrInvalidQuantity)
		}

		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			if merged[i].Quantity > maxLineQuantity {
				return nil, invalid("items.quantity", ErrInvalidQuantity)
			}
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, LineRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return merged, nil
}
