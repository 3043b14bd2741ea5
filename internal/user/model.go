package user

import (
	"net/mail"
	"strings"
	"time"

	"zidoyvelg-be/internal/auth"
)

const minPasswordLen = 8

type User struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Address   string    `json:"address"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Identity() auth.Identity {
	return auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// RegisterInput has no role field: registration always yields a customer.
type RegisterInput struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

func (in *RegisterInput) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Address = strings.TrimSpace(in.Address)
}

func (in RegisterInput) Validate() error {
	switch {
	case in.Username == "":
		return invalid("username is required")
	case in.Name == "":
		return invalid("name is required")
	case in.Email == "":
		return invalid("email is required")
	case len(in.Password) < minPasswordLen:
		return invalid("password must be at least 8 characters")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return invalid("email is not valid")
	}
	return nil
}

// AuthResult is what register and login hand back to the client.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
