package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"zidoyvelg-be/internal/logger"

	"go.uber.org/zap"
)

// Dimension names a products column facets can be computed over.
type Dimension string

const (
	DimCategory Dimension = "category"
	DimBrand    Dimension = "brand"
)

var ErrUnknownDimension = errors.New("unknown facet dimension")

type Repository interface {
	Counts(ctx context.Context, dim Dimension, filter string, limit int) ([]Facet, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Counts groups products by dim. Blank values are not a facet.
func (r *repository) Counts(ctx context.Context, dim Dimension, filter string, limit int) ([]Facet, error) {
	if dim != DimCategory && dim != DimBrand {
		return nil, ErrUnknownDimension
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	log := logger.ForLayer(ctx, "repository", "Counts").With(
		zap.String("dimension", string(dim)),
		zap.String("filter", filter),
		zap.Int("limit", limit),
	)

	col := string(dim)
	where := []string{col + " <> ''"}
	args := []any{}

	if filter != "" {
		args = append(args, "%"+filter+"%")
		where = append(where, fmt.Sprintf("%s ILIKE $%d", col, len(args)))
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT %[1]s, COUNT(*)
		FROM products
		WHERE %[2]s
		GROUP BY %[1]s
		ORDER BY %[1]s ASC
		LIMIT $%[3]d`, col, strings.Join(where, " AND "), len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("facet query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make([]Facet, 0)
	for rows.Next() {
		var f Facet
		if err := rows.Scan(&f.Name, &f.Products); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}
	return out, nil
}
