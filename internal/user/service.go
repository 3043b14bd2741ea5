package user

import (
	"context"
	"errors"
	"time"

	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/logger"

	"go.uber.org/zap"
)

// TokenIssuer signs access tokens for an identity.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, time.Time, error)
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, caller auth.Identity) (*User, error)
	Promote(ctx context.Context, email string, role auth.Role) (*User, error)
}

type service struct {
	repo   Repository
	tokens TokenIssuer
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{repo: repo, tokens: tokens}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	log := logger.ForLayer(ctx, "service", "Register")

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u := &User{
		Username: in.Username,
		Name:     in.Name,
		Email:    in.Email,
		Password: hashed,
		Address:  in.Address,
		Role:     auth.RoleCustomer,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	res, err := s.issue(u)
	if err != nil {
		log.Error("failed to generate jwt", zap.Uint("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	log.Info("user registered", zap.Uint("user_id", u.ID), zap.String("email", u.Email))
	return res, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.ForLayer(ctx, "service", "Login")

	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		log.Info("login with unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		log.Error("failed to load user", zap.Error(err))
		return nil, err
	}

	if !CheckPasswordHash(password, u.Password) {
		log.Info("password mismatch", zap.Uint("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}

	return s.issue(u)
}

func (s *service) Me(ctx context.Context, caller auth.Identity) (*User, error) {
	if caller.UserID == 0 {
		return nil, auth.ErrUnauthenticated
	}
	return s.repo.FindByID(ctx, caller.UserID)
}

// Promote changes a user's role. It has no HTTP route; the admin CLI is the
// only caller.
func (s *service) Promote(ctx context.Context, email string, role auth.Role) (*User, error) {
	if !role.Valid() {
		return nil, auth.ErrInvalidRole
	}

	u, err := s.repo.UpdateRole(ctx, normalizeEmail(email), role)
	if err != nil {
		return nil, err
	}

	logger.ForLayer(ctx, "service", "Promote").Info("role assigned",
		zap.Uint("user_id", u.ID), zap.String("role", string(role)))
	return u, nil
}

func (s *service) issue(u *User) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(u.Identity())
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u}, nil
}
