package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"zidoyvelg-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, filter ListFilter) (ListResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db, now: time.Now}
}

const productColumns = `id, name, brand, category, description, image_url,
	price, stock, color, spec, variants, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, extra ...any) (Product, error) {
	var (
		p        Product
		variants []byte
	)
	dest := []any{
		&p.ID, &p.Name, &p.Brand, &p.Category, &p.Description, &p.ImageURL,
		&p.Price, &p.Stock, &p.Color, &p.Spec, &variants, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return Product{}, err
	}

	p.Variants = []Variant{}
	if len(variants) > 0 {
		if err := json.Unmarshal(variants, &p.Variants); err != nil {
			return Product{}, fmt.Errorf("decode variants: %w", err)
		}
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	log := logger.ForLayer(ctx, "repository", "List")
	filter = filter.Normalize()

	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if s := strings.TrimSpace(filter.Search); s != "" {
		p := arg("%" + s + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR brand ILIKE %s OR description ILIKE %s)", p, p, p))
	}
	if filter.Category != "" {
		conds = append(conds, "category = "+arg(filter.Category))
	}
	if filter.Brand != "" {
		conds = append(conds, "brand = "+arg(filter.Brand))
	}
	if filter.InStock {
		conds = append(conds, "stock > 0")
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total
		FROM products
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT %s OFFSET %s
	`, productColumns, where, arg(filter.Limit), arg(filter.Offset()))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query products failed", zap.Error(err))
		return ListResult{}, err
	}
	defer rows.Close()

	res := ListResult{Items: []Product{}, Page: filter.Page, Limit: filter.Limit}
	for rows.Next() {
		p, err := scanProduct(rows, &res.Total)
		if err != nil {
			return ListResult{}, err
		}
		res.Items = append(res.Items, p)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, err
	}

	log.Debug("products listed", zap.Int("count", len(res.Items)), zap.Int("total", res.Total))
	return res, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		logger.ForLayer(ctx, "repository", "GetByID").Error("query product failed", zap.Error(err))
		return nil, err
	}
	return &p, nil
}

// GetByIDs returns the products that exist; absent ids are simply missing
// from the map.
func (r *repository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	out := make(map[uuid.UUID]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1::uuid[])`,
		pq.Array(keys),
	)
	if err != nil {
		logger.ForLayer(ctx, "repository", "GetByIDs").Error("query products failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	variants, err := json.Marshal(p.Variants)
	if err != nil {
		return err
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := r.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO products (
			id, name, brand, category, description, image_url,
			price, stock, color, spec, variants, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		p.ID, p.Name, p.Brand, p.Category, p.Description, p.ImageURL,
		p.Price, p.Stock, p.Color, p.Spec, variants, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		logger.ForLayer(ctx, "repository", "Create").Error("insert product failed", zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	variants, err := json.Marshal(p.Variants)
	if err != nil {
		return err
	}
	p.UpdatedAt = r.now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, brand = $2, category = $3, description = $4, image_url = $5,
			price = $6, stock = $7, color = $8, spec = $9, variants = $10, updated_at = $11
		WHERE id = $12
	`,
		p.Name, p.Brand, p.Category, p.Description, p.ImageURL,
		p.Price, p.Stock, p.Color, p.Spec, variants, p.UpdatedAt, p.ID,
	)
	if err != nil {
		logger.ForLayer(ctx, "repository", "Update").Error("update product failed", zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Delete removes the catalog row only. Order items keep their snapshots.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		logger.ForLayer(ctx, "repository", "Delete").Error("delete product failed", zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}
