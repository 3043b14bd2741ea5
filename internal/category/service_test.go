package category

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct{ mock.Mock }

func (m *MockRepository) Counts(ctx context.Context, dim Dimension, filter string, limit int) ([]Facet, error) {
	args := m.Called(ctx, dim, filter, limit)
	f, _ := args.Get(0).([]Facet)
	return f, args.Error(1)
}

func TestService_Facets(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Counts", ctx, DimCategory, "velg", DefaultLimit).Return([]Facet{{Name: "Velg", Products: 2}}, nil)
		repo.On("Counts", ctx, DimBrand, "velg", DefaultLimit).Return([]Facet{}, nil)

		got, err := NewService(repo).Facets(ctx, "  velg ", 0)
		require.NoError(t, err)
		assert.Equal(t, []Facet{{Name: "Velg", Products: 2}}, got.Categories)
		assert.Empty(t, got.Brands)
		repo.AssertExpectations(t)
	})

	t.Run("ClampsLimit", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Counts", ctx, mock.Anything, "", MaxLimit).Return([]Facet{}, nil)

		_, err := NewService(repo).Facets(ctx, "", 10_000)
		require.NoError(t, err)
		repo.AssertNumberOfCalls(t, "Counts", 2)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Counts", ctx, DimCategory, "", DefaultLimit).Return(nil, errors.New("db down"))

		_, err := NewService(repo).Facets(ctx, "", 0)
		assert.EqualError(t, err, "db down")
		repo.AssertNotCalled(t, "Counts", ctx, DimBrand, "", DefaultLimit)
	})
}
