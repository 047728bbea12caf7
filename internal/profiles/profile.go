// Package profiles stores shop accounts: the owner, employees and customers.
package profiles

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound        = errors.New("profile not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidProfile  = errors.New("invalid profile")
	ErrWrongPassword   = errors.New("wrong password")
	ErrPasswordTooWeak = errors.New("password must be at least 6 characters")
)

const minPasswordLen = 6

type Role string

const (
	RoleOwner    Role = "owner"
	RoleEmployee Role = "employee"
	RoleCustomer Role = "customer"
)

func ToRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleOwner, RoleEmployee, RoleCustomer:
		return r, nil
	default:
		return "", fmt.Errorf("%w: role %q", ErrInvalidProfile, s)
	}
}

// Staff are the roles that work the counter.
func (r Role) Staff() bool { return r == RoleOwner || r == RoleEmployee }

type Profile struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type NewProfile struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role"`
}

func (n *NewProfile) Normalize() error {
	n.Username = strings.ToLower(strings.TrimSpace(n.Username))
	n.Name = strings.TrimSpace(n.Name)
	n.Email = strings.TrimSpace(n.Email)
	n.Phone = strings.TrimSpace(n.Phone)

	if n.Username == "" || n.Name == "" {
		return fmt.Errorf("%w: username and name are required", ErrInvalidProfile)
	}
	if _, err := ToRole(string(n.Role)); err != nil {
		return err
	}
	if len(n.Password) < minPasswordLen {
		return ErrPasswordTooWeak
	}
	return nil
}

// Changes is a partial update; nil fields stay as they are.
type Changes struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
}

func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLen {
		return "", ErrPasswordTooWeak
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt.GenerateFromPassword: %w", err)
	}
	return string(b), nil
}

func (p Profile) CheckPassword(password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrWrongPassword
	}
	return err
}
