package product

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{
	"id", "name", "brand", "category", "description", "image_url",
	"price", "stock", "color", "spec", "variants", "created_at", "updated_at",
}

func newRepo(t *testing.T) (*repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &repository{db: db, now: func() time.Time { return fixed }}, mock
}

func TestRepository_List(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	now := time.Now()

	t.Run("FiltersAndPaging", func(t *testing.T) {
		repo, mock := newRepo(t)

		rows := sqlmock.NewRows(append(productCols, "total")).
			AddRow(id.String(), "HSR Boxter", "HSR", "Velg", "ring 17", "/images/products/a.png",
				"1500000.00", 4, "Black", "R17", []byte(`[{"spec":"R17x7","price":"1500000","stock":4}]`), now, now, 31)

		mock.ExpectQuery(`(?s)SELECT .* COUNT\(\*\) OVER\(\) AS total FROM products WHERE \(name ILIKE \$1 OR brand ILIKE \$1 OR description ILIKE \$1\) AND category = \$2 AND stock > 0 ORDER BY created_at DESC, id DESC LIMIT \$3 OFFSET \$4`).
			WithArgs("%hsr%", "Velg", 10, 10).
			WillReturnRows(rows)

		res, err := repo.List(ctx, ListFilter{Search: "hsr", Category: "Velg", InStock: true, Page: 2, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 31, res.Total)
		assert.Equal(t, 2, res.Page)
		require.Len(t, res.Items, 1)
		assert.True(t, decimal.NewFromInt(1500000).Equal(res.Items[0].Price))
		require.Len(t, res.Items[0].Variants, 1)
		assert.Equal(t, "R17x7", res.Items[0].Variants[0].Spec)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DefaultsWithoutFilters", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery(`(?s)FROM products\s+ORDER BY created_at DESC, id DESC LIMIT \$1 OFFSET \$2`).
			WithArgs(DefaultLimit, 0).
			WillReturnRows(sqlmock.NewRows(append(productCols, "total")))

		res, err := repo.List(ctx, ListFilter{})
		require.NoError(t, err)
		assert.Empty(t, res.Items)
		assert.NotNil(t, res.Items)
		assert.Equal(t, DefaultLimit, res.Limit)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LimitCappedAtMax", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery(`(?s)FROM products\s+ORDER BY created_at DESC, id DESC LIMIT \$1 OFFSET \$2`).
			WithArgs(MaxLimit, 0).
			WillReturnRows(sqlmock.NewRows(append(productCols, "total")))

		res, err := repo.List(ctx, ListFilter{Limit: 1000})
		require.NoError(t, err)
		assert.Equal(t, MaxLimit, res.Limit)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("QueryError", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("db error"))

		_, err := repo.List(ctx, ListFilter{})
		assert.Error(t, err)
	})
}

func TestListFilter_Normalize(t *testing.T) {
	f := ListFilter{Page: 0, Limit: 500}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxLimit, f.Limit)

	f = ListFilter{Page: 3, Limit: 0}.Normalize()
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, 40, f.Offset())
}

func TestRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("Found", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(`SELECT .* FROM products WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow(id.String(), "Enkei", "Enkei", "Velg", "", "", "900000", 2, "", "", nil, time.Now(), time.Now()))

		p, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Enkei", p.Name)
		assert.Empty(t, p.Variants)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(`SELECT .* FROM products WHERE id = \$1`).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_GetByIDs(t *testing.T) {
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	t.Run("Empty", func(t *testing.T) {
		repo, _ := newRepo(t)
		out, err := repo.GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("MissingIdsAreAbsent", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(`SELECT .* FROM products WHERE id = ANY\(\$1::uuid\[\]\)`).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow(a.String(), "A", "", "", "", "", "100", 1, "", "", []byte(`[]`), time.Now(), time.Now()))

		out, err := repo.GetByIDs(ctx, []uuid.UUID{a, b})
		require.NoError(t, err)
		assert.Contains(t, out, a)
		assert.NotContains(t, out, b)
	})
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newRepo(t)
	p := &Product{Name: "Velg", Price: decimal.NewFromInt(10), Variants: []Variant{}}

	mock.ExpectExec(`INSERT INTO products`).
		WithArgs(sqlmock.AnyArg(), "Velg", "", "", "", "", p.Price, 0, "", "", []byte(`[]`),
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, 2026, p.CreatedAt.Year())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("UpdateNotFound", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec(`UPDATE products`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, &Product{ID: id})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("UpdateOK", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec(`UPDATE products`).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(ctx, &Product{ID: id}))
	})

	t.Run("Delete", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Delete(ctx, id))
		assert.ErrorIs(t, repo.Delete(ctx, id), ErrProductNotFound)
	})
}
