package order

import (
	"context"
	"errors"
	"strings"

	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/logger"
	"zidoyvelg-be/internal/metrics"
	"zidoyvelg-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	proofFolder = "payments"
	defaultSpec = "Standard"
)

// Checkout turns a request into a Pending order. Prices come from the
// catalog, stock is reserved atomically with the insert, and any failing
// line rejects the whole request.
func (s *service) Checkout(ctx context.Context, caller auth.Identity, req CheckoutRequest) (*Order, error) {
	log := logger.ForLayer(ctx, "service", "Checkout").With(zap.Uint("user_id", caller.UserID))
	timer := metrics.StartTimer()

	o, err := s.checkout(ctx, caller, req)
	if err != nil {
		s.metrics.Counter(metrics.CheckoutsRejected + "." + rejectKind(err)).Inc()

		var stockErr *StockError
		var valErr *ValidationError
		switch {
		case errors.As(err, &stockErr), errors.As(err, &valErr), errors.Is(err, auth.ErrUnauthenticated):
			log.Warn("checkout rejected", zap.Error(err))
		default:
			log.Error("checkout failed", zap.Error(err))
		}
		return nil, err
	}

	s.metrics.Counter(metrics.OrdersCreated).Inc()
	log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("reference", o.Reference),
		zap.String("total", o.TotalAmount.String()),
		zap.Int("items", len(o.Items)),
		zap.Duration("duration", timer.Duration()),
	)
	return o, nil
}

func (s *service) checkout(ctx context.Context, caller auth.Identity, req CheckoutRequest) (*Order, error) {
	if caller.UserID == 0 {
		return nil, auth.ErrUnauthenticated
	}

	lines, err := mergeLines(req.Items)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.CustomerName)
	phone := strings.TrimSpace(req.CustomerPhone)
	address := strings.TrimSpace(req.ShippingAddress)
	switch {
	case name == "":
		return nil, invalid("customerName", ErrMissingCustomerInfo)
	case phone == "":
		return nil, invalid("customerPhone", ErrMissingCustomerInfo)
	case address == "":
		return nil, invalid("shippingAddress", ErrMissingCustomerInfo)
	}

	method, err := s.payments.Validate(req.PaymentMethod)
	if err != nil {
		return nil, invalid("paymentMethod", ErrInvalidPaymentMethod)
	}
	if s.payments.RequiresProof(method) && (req.Proof == nil || req.Proof.Body == nil) {
		return nil, invalid("paymentProof", ErrMissingPaymentProof)
	}

	items, err := s.priceLines(ctx, lines)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	o := &Order{
		ID:              uuid.New(),
		Reference:       utils.GenerateOrderReference(now),
		UserID:          caller.UserID,
		CustomerName:    name,
		CustomerPhone:   phone,
		ShippingAddress: address,
		PaymentMethod:   method,
		Items:           items,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	o.TotalAmount = o.ComputeTotal()

	if req.Proof != nil && req.Proof.Body != nil {
		url, err := s.proofs.Save(ctx, proofFolder, o.Reference, req.Proof.Body)
		if err != nil {
			return nil, err
		}
		o.PaymentProofURL = url
	}

	if err := s.repo.Create(ctx, o); err != nil {
		s.discardProof(ctx, o.PaymentProofURL)
		return nil, err
	}
	return o, nil
}

// priceLines snapshots each product and pre-checks stock so every failing
// product is reported at once. The repository re-checks at write time.
func (s *service) priceLines(ctx context.Context, lines []LineRequest) ([]OrderItem, error) {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}

	products, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	var missing, short []uuid.UUID
	items := make([]OrderItem, 0, len(lines))

	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			missing = append(missing, l.ProductID)
			continue
		}
		if l.Quantity > p.Stock {
			short = append(short, l.ProductID)
			continue
		}

		spec := p.Spec
		if spec == "" {
			spec = defaultSpec
		}
		items = append(items, OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Spec:        spec,
			Color:       p.Color,
			Price:       p.Price,
			Quantity:    l.Quantity,
		})
	}

	if len(missing) > 0 {
		return nil, &StockError{Kind: ErrProductNotFound, ProductIDs: missing}
	}
	if len(short) > 0 {
		return nil, &StockError{Kind: ErrOutOfStock, ProductIDs: short}
	}
	return items, nil
}

func (s *service) discardProof(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.proofs.Delete(ctx, url); err != nil {
		logger.FromCtx(ctx).Warn("failed to remove orphaned payment proof",
			zap.String("url", url), zap.Error(err))
	}
}

func rejectKind(err error) string {
	switch {
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrPriceChanged):
		return "price_changed"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrMissingPaymentProof):
		return "missing_payment_proof"
	case errors.Is(err, auth.ErrUnauthenticated):
		return "unauthenticated"
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return "validation"
	}
	return "internal"
}
