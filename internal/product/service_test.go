package product

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"zidoyvelg-be/internal/auth"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, f ListFilter) (ListResult, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(ListResult), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uuid.UUID]Product), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, p *Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) Update(ctx context.Context, p *Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, folder, nameHint string, body io.Reader) (string, error) {
	args := m.Called(ctx, folder, nameHint, body)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

var (
	staff    = auth.Identity{UserID: 1, Role: auth.RoleStaff}
	customer = auth.Identity{UserID: 2, Role: auth.RoleCustomer}
)

func validInput() Input {
	return Input{Name: " HSR Wheel ", Brand: "HSR", Price: decimal.NewFromInt(1500000), Stock: 4}
}

func TestInput_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing name", func(in *Input) { in.Name = "  " }},
		{"negative price", func(in *Input) { in.Price = decimal.NewFromInt(-1) }},
		{"negative stock", func(in *Input) { in.Stock = -1 }},
		{"variant without spec", func(in *Input) { in.Variants = []Variant{{Spec: ""}} }},
		{"variant negative price", func(in *Input) { in.Variants = []Variant{{Spec: "R17", Price: decimal.NewFromInt(-5)}} }},
		{"variant negative stock", func(in *Input) { in.Variants = []Variant{{Spec: "R17", Stock: -2}} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			assert.ErrorIs(t, in.Validate(), ErrInvalidInput)
		})
	}

	in := validInput()
	require.NoError(t, in.Validate())
	assert.Equal(t, "HSR Wheel", in.Name)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("ForbiddenForCustomer", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockImageStore))
		_, err := svc.Create(ctx, customer, validInput(), nil)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("WithImage", func(t *testing.T) {
		repo, images := new(MockRepository), new(MockImageStore)
		body := strings.NewReader("png")
		images.On("Save", ctx, "products", "HSR Wheel", body).Return("/images/products/hsr.png", nil)
		repo.On("Create", ctx, mock.MatchedBy(func(p *Product) bool {
			return p.ImageURL == "/images/products/hsr.png" && p.Name == "HSR Wheel" && p.Variants != nil
		})).Return(nil)

		p, err := NewService(repo, images).Create(ctx, staff, validInput(), &Image{Filename: "hsr.png", Body: body})
		require.NoError(t, err)
		assert.Equal(t, "/images/products/hsr.png", p.ImageURL)
		repo.AssertExpectations(t)
	})

	t.Run("RepoFailureDiscardsImage", func(t *testing.T) {
		repo, images := new(MockRepository), new(MockImageStore)
		images.On("Save", ctx, "products", "HSR Wheel", mock.Anything).Return("/images/products/x.png", nil)
		images.On("Delete", ctx, "/images/products/x.png").Return(nil)
		repo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

		_, err := NewService(repo, images).Create(ctx, staff, validInput(), &Image{Body: strings.NewReader("x")})
		assert.Error(t, err)
		images.AssertExpectations(t)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("ReplacesImage", func(t *testing.T) {
		repo, images := new(MockRepository), new(MockImageStore)
		repo.On("GetByID", ctx, id).Return(&Product{ID: id, Name: "Old", ImageURL: "/images/products/old.png"}, nil)
		images.On("Save", ctx, "products", "HSR Wheel", mock.Anything).Return("/images/products/new.png", nil)
		repo.On("Update", ctx, mock.Anything).Return(nil)
		images.On("Delete", ctx, "/images/products/old.png").Return(nil)

		p, err := NewService(repo, images).Update(ctx, staff, id, validInput(), &Image{Body: strings.NewReader("x")})
		require.NoError(t, err)
		assert.Equal(t, "/images/products/new.png", p.ImageURL)
		assert.Equal(t, 4, p.Stock)
		images.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", ctx, id).Return(nil, ErrProductNotFound)

		_, err := NewService(repo, new(MockImageStore)).Update(ctx, staff, id, validInput(), nil)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	repo, images := new(MockRepository), new(MockImageStore)
	repo.On("GetByID", ctx, id).Return(&Product{ID: id, ImageURL: "/images/products/p.png"}, nil)
	repo.On("Delete", ctx, id).Return(nil)
	images.On("Delete", ctx, "/images/products/p.png").Return(errors.New("gone"))

	svc := NewService(repo, images)
	assert.NoError(t, svc.Delete(ctx, staff, id))
	assert.ErrorIs(t, svc.Delete(ctx, customer, id), ErrForbidden)
}

func TestService_ListNormalizes(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("List", ctx, ListFilter{Page: 1, Limit: MaxLimit}).Return(ListResult{}, nil)

	_, err := NewService(repo, new(MockImageStore)).List(ctx, ListFilter{Limit: 999})
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
