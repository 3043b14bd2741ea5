package api

import (
	"context"

	"zidoyvelg-be/internal/cart"
	"zidoyvelg-be/internal/category"
	"zidoyvelg-be/internal/idempotency"
	"zidoyvelg-be/internal/metrics"
	"zidoyvelg-be/internal/order"
	"zidoyvelg-be/internal/payment"
	"zidoyvelg-be/internal/product"
	"zidoyvelg-be/internal/user"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "zidoyvelg-api"

type PaymentMethods interface {
	Methods(q payment.Quote) []payment.Account
}

// IdempotencyStore guards checkout retries. A nil store disables the
// Idempotency-Key header.
type IdempotencyStore interface {
	Begin(ctx context.Context, key string) (idempotency.Outcome, error)
	Complete(ctx context.Context, key string, orderID uuid.UUID) error
	Release(ctx context.Context, key string) error
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Products     product.Service
	Facets       category.Service
	Orders       order.Service
	Carts        cart.Service
	Users        user.Service
	Payments     PaymentMethods
	Idempotency  IdempotencyStore
	Metrics      *metrics.Registry
	Tracer       trace.TracerProvider
	DB           Pinger
	MaxUpload    int64
	SecureCookie bool
}

type Handler struct {
	products     product.Service
	facets       category.Service
	orders       order.Service
	carts        cart.Service
	users        user.Service
	payments     PaymentMethods
	idem         IdempotencyStore
	metrics      *metrics.Registry
	db           Pinger
	maxUpload    int64
	secureCookie bool
	tracer       trace.Tracer
}

func NewHandler(d Deps) *Handler {
	reg := d.Metrics
	if reg == nil {
		reg = metrics.Default
	}
	tp := d.Tracer
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	maxUpload := d.MaxUpload
	if maxUpload <= 0 {
		maxUpload = 5 << 20
	}
	return &Handler{
		products:     d.Products,
		facets:       d.Facets,
		orders:       d.Orders,
		carts:        d.Carts,
		users:        d.Users,
		payments:     d.Payments,
		idem:         d.Idempotency,
		metrics:      reg,
		db:           d.DB,
		maxUpload:    maxUpload,
		secureCookie: d.SecureCookie,
		tracer:       tp.Tracer(tracerName),
	}
}
