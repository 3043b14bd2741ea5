package cart

import (
	"context"

	"zidoyvelg-be/internal/logger"
	"zidoyvelg-be/internal/product"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Catalog interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]product.Product, error)
}

type QuoteLine struct {
	ProductID    uuid.UUID       `json:"productId"`
	Name         string          `json:"name"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Stock        int             `json:"stock"`
	Available    bool            `json:"available"`
	Missing      bool            `json:"missing"`
	PriceChanged bool            `json:"priceChanged"`
}

// Quote is a server-priced preview of a cart. It reserves nothing.
type Quote struct {
	Lines       []QuoteLine     `json:"lines"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalItems  int             `json:"totalItems"`
	Purchasable bool            `json:"purchasable"`
}

type Service interface {
	Quote(ctx context.Context, c Cart) (*Quote, error)
}

type service struct {
	catalog Catalog
}

func NewService(catalog Catalog) Service {
	return &service{catalog: catalog}
}

func (s *service) Quote(ctx context.Context, c Cart) (*Quote, error) {
	log := logger.ForLayer(ctx, "service", "Quote")

	if c.IsEmpty() {
		return nil, ErrCartEmpty
	}

	ids := make([]uuid.UUID, len(c.Lines))
	for i, l := range c.Lines {
		ids[i] = l.ProductID
	}

	products, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		log.Error("catalog lookup failed", zap.Error(err))
		return nil, err
	}

	q := &Quote{Lines: make([]QuoteLine, 0, len(c.Lines)), TotalAmount: decimal.Zero, Purchasable: true}
	for _, l := range c.Lines {
		ql := QuoteLine{ProductID: l.ProductID, Quantity: l.Quantity, Name: l.Name}

		p, ok := products[l.ProductID]
		if !ok {
			ql.Missing = true
			q.Purchasable = false
			q.Lines = append(q.Lines, ql)
			continue
		}

		ql.Name = p.Name
		ql.ImageURL = p.ImageURL
		ql.UnitPrice = p.Price
		ql.Stock = p.Stock
		ql.Available = l.Quantity <= p.Stock
		ql.PriceChanged = !l.Price.IsZero() && !l.Price.Equal(p.Price)
		ql.Subtotal = p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))

		if !ql.Available {
			q.Purchasable = false
		}
		q.TotalAmount = q.TotalAmount.Add(ql.Subtotal)
		q.TotalItems += l.Quantity
		q.Lines = append(q.Lines, ql)
	}

	log.Debug("cart quoted",
		zap.Int("lines", len(q.Lines)),
		zap.String("total", q.TotalAmount.String()),
		zap.Bool("purchasable", q.Purchasable),
	)
	return q, nil
}
