package user

import (
	"context"
	"database/sql"
	"errors"

	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	UpdateRole(ctx context.Context, email string, role auth.Role) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = `id, username, name, email, password, address, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.Password, &u.Address, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)
	return &u, nil
}

func (r *repository) Create(ctx context.Context, u *User) error {
	log := logger.ForLayer(ctx, "repository", "Create").With(zap.String("email", u.Email))

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, name, email, password, address, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, u.Username, u.Name, u.Email, u.Password, u.Address, string(u.Role)).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if mapped := uniqueViolation(err); mapped != nil {
			log.Info("duplicate user", zap.Error(mapped))
			return mapped
		}
		log.Error("db: failed to insert user", zap.Error(err))
		return err
	}
	return nil
}

// uniqueViolation maps a Postgres 23505 on the users table to a domain error.
func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	if pqErr.Constraint == "users_username_key" {
		return ErrUsernameExists
	}
	return ErrEmailExists
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *repository) UpdateRole(ctx context.Context, email string, role auth.Role) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE users SET role = $1
		WHERE email = $2
		RETURNING `+userColumns, string(role), email)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		logger.ForLayer(ctx, "repository", "UpdateRole").Error("update role failed", zap.Error(err))
	}
	return u, err
}
