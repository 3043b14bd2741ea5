package api

import (
	"context"
	"time"

	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/category"
	"zidoyvelg-be/internal/idempotency"
	"zidoyvelg-be/internal/order"
	"zidoyvelg-be/internal/product"
	"zidoyvelg-be/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, caller auth.Identity, req order.CheckoutRequest) (*order.Order, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, caller auth.Identity, id uuid.UUID, target order.Status) (*order.Order, error) {
	args := m.Called(ctx, caller, id, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, caller auth.Identity, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) MyOrders(ctx context.Context, caller auth.Identity) ([]order.Order, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) AllOrders(ctx context.Context, caller auth.Identity) ([]order.Order, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) Summary(ctx context.Context, caller auth.Identity, from, to time.Time) (*order.Summary, error) {
	args := m.Called(ctx, caller, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Summary), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, f product.ListFilter) (product.ListResult, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(product.ListResult), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, caller auth.Identity, in product.Input, img *product.Image) (*product.Product, error) {
	args := m.Called(ctx, caller, in, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, in product.Input, img *product.Image) (*product.Product, error) {
	args := m.Called(ctx, caller, id, in, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	return m.Called(ctx, caller, id).Error(0)
}

type MockFacetService struct {
	mock.Mock
}

func (m *MockFacetService) Facets(ctx context.Context, filter string, limit int) (*category.Facets, error) {
	args := m.Called(ctx, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Facets), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, in user.RegisterInput) (*user.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.AuthResult), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*user.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.AuthResult), args.Error(1)
}

func (m *MockUserService) Me(ctx context.Context, caller auth.Identity) (*user.User, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) Promote(ctx context.Context, email string, role auth.Role) (*user.User, error) {
	args := m.Called(ctx, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockIdempotency struct {
	mock.Mock
}

func (m *MockIdempotency) Begin(ctx context.Context, key string) (idempotency.Outcome, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(idempotency.Outcome), args.Error(1)
}

func (m *MockIdempotency) Complete(ctx context.Context, key string, id uuid.UUID) error {
	return m.Called(ctx, key, id).Error(0)
}

func (m *MockIdempotency) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
