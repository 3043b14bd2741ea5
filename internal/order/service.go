package order

import (
	"context"
	"io"
	"time"

	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/metrics"
	"zidoyvelg-be/internal/product"

	"github.com/google/uuid"
)

// Catalog is the read side of the product store used to price a checkout.
type Catalog interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]product.Product, error)
}

// ProofStorage keeps payment-proof images and returns an opaque URL.
type ProofStorage interface {
	Save(ctx context.Context, folder, nameHint string, body io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// PaymentMethods validates the customer's chosen transfer method.
type PaymentMethods interface {
	Validate(method string) (string, error)
	RequiresProof(method string) bool
}

type Service interface {
	Checkout(ctx context.Context, caller auth.Identity, req CheckoutRequest) (*Order, error)
	UpdateStatus(ctx context.Context, caller auth.Identity, orderID uuid.UUID, target Status) (*Order, error)
	GetOrder(ctx context.Context, caller auth.Identity, orderID uuid.UUID) (*Order, error)
	MyOrders(ctx context.Context, caller auth.Identity) ([]Order, error)
	AllOrders(ctx context.Context, caller auth.Identity) ([]Order, error)
	Summary(ctx context.Context, caller auth.Identity, from, to time.Time) (*Summary, error)
}

type service struct {
	repo     Repository
	catalog  Catalog
	proofs   ProofStorage
	payments PaymentMethods
	metrics  *metrics.Registry
	now      func() time.Time
}

func NewService(repo Repository, catalog Catalog, proofs ProofStorage, payments PaymentMethods) Service {
	return &service{
		repo:     repo,
		catalog:  catalog,
		proofs:   proofs,
		payments: payments,
		metrics:  metrics.Default,
		now:      time.Now,
	}
}
