package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"zidoyvelg-be/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 42
	}
	return args.Error(0)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) UpdateRole(ctx context.Context, email string, role auth.Role) (*User, error) {
	args := m.Called(ctx, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func newTokens() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", time.Hour)
}

func validInput() RegisterInput {
	return RegisterInput{
		Username: " john ",
		Name:     "John Doe",
		Email:    " John@Example.com ",
		Password: "password123",
		Address:  "Jl. Asia Afrika, Bandung",
	}
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("AlwaysCustomer", func(t *testing.T) {
		repo := new(MockRepository)
		tokens := newTokens()
		svc := NewService(repo, tokens)

		repo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
			return u.Role == auth.RoleCustomer &&
				u.Email == "john@example.com" &&
				u.Username == "john" &&
				CheckPasswordHash("password123", u.Password)
		})).Return(nil)

		res, err := svc.Register(ctx, validInput())
		require.NoError(t, err)
		assert.Equal(t, uint(42), res.User.ID)

		claims, err := tokens.Parse(res.Token)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleCustomer, claims.Role)
		assert.Equal(t, uint(42), claims.UserID)
		repo.AssertExpectations(t)
	})

	t.Run("Validation", func(t *testing.T) {
		cases := map[string]func(*RegisterInput){
			"short password": func(in *RegisterInput) { in.Password = "short" },
			"bad email":      func(in *RegisterInput) { in.Email = "not-an-email" },
			"no username":    func(in *RegisterInput) { in.Username = " " },
			"no name":        func(in *RegisterInput) { in.Name = "" },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				repo := new(MockRepository)
				in := validInput()
				mutate(&in)

				_, err := NewService(repo, newTokens()).Register(ctx, in)
				assert.ErrorIs(t, err, ErrInvalidInput)
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("EmailExists", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", ctx, mock.Anything).Return(ErrEmailExists)

		_, err := NewService(repo, newTokens()).Register(ctx, validInput())
		assert.ErrorIs(t, err, ErrEmailExists)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	hashed, err := HashPassword("password123")
	require.NoError(t, err)
	stored := &User{ID: 5, Email: "john@example.com", Password: hashed, Role: auth.RoleStaff}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		tokens := newTokens()
		repo.On("FindByEmail", ctx, "john@example.com").Return(stored, nil)

		res, err := NewService(repo, tokens).Login(ctx, "JOHN@example.com", "password123")
		require.NoError(t, err)

		claims, err := tokens.Parse(res.Token)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleStaff, claims.Role)
		assert.Equal(t, "john@example.com", claims.Email)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", ctx, "john@example.com").Return(stored, nil)

		_, err := NewService(repo, newTokens()).Login(ctx, "john@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, ErrUserNotFound)

		_, err := NewService(repo, newTokens()).Login(ctx, "ghost@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("StoreDown", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", ctx, "john@example.com").Return(nil, errors.New("db down"))

		_, err := NewService(repo, newTokens()).Login(ctx, "john@example.com", "password123")
		assert.EqualError(t, err, "db down")
	})
}

func TestService_MeAndPromote(t *testing.T) {
	ctx := context.Background()

	t.Run("MeRequiresIdentity", func(t *testing.T) {
		_, err := NewService(new(MockRepository), newTokens()).Me(ctx, auth.Identity{})
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("Me", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByID", ctx, uint(5)).Return(&User{ID: 5}, nil)

		u, err := NewService(repo, newTokens()).Me(ctx, auth.Identity{UserID: 5, Role: auth.RoleCustomer})
		require.NoError(t, err)
		assert.Equal(t, uint(5), u.ID)
	})

	t.Run("Promote", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("UpdateRole", ctx, "ops@example.com", auth.RoleStaff).
			Return(&User{ID: 9, Email: "ops@example.com", Role: auth.RoleStaff}, nil)

		u, err := NewService(repo, newTokens()).Promote(ctx, " OPS@example.com", auth.RoleStaff)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleStaff, u.Role)
	})

	t.Run("PromoteUnknownRole", func(t *testing.T) {
		repo := new(MockRepository)
		_, err := NewService(repo, newTokens()).Promote(ctx, "ops@example.com", auth.Role("admin"))
		assert.ErrorIs(t, err, auth.ErrInvalidRole)
		repo.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
	})
}
