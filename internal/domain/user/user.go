package user

import (
	"context"
	"regexp"
	"strings"
	"time"

	"stayhub/internal/domain/shared/fault"
)

var (
	ErrIDRequired          = fault.New(fault.ErrInvalidInput, "invalid_input", "user: id is required")
	ErrEmailRequired       = fault.New(fault.ErrInvalidInput, "invalid_input", "user: email is required")
	ErrPasswordHashMissing = fault.New(fault.ErrInvalidInput, "invalid_input", "user: password hash is required")
	ErrFirstnameInvalid    = fault.New(fault.ErrInvalidInput, "invalid_input", "user: first name must contain only alphabetic characters")
	ErrLastnameInvalid     = fault.New(fault.ErrInvalidInput, "invalid_input", "user: last name must contain only alphabetic characters")
	ErrInvalidRole         = fault.New(fault.ErrInvalidInput, "invalid_role", "user: role must be admin or member")
	ErrInvalidID           = fault.New(fault.ErrInvalidInput, "invalid_id", "user: invalid id")
	ErrEmailAlreadyUsed    = fault.New(fault.ErrConflict, "email_taken", "user: email already used")
	ErrNotFound            = fault.New(fault.ErrNotFound, "user_not_found", "user: not found")
)

type ID string

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

var namePattern = regexp.MustCompile(`^[A-Za-z]+$`)

type User struct {
	ID           ID
	Firstname    string
	Lastname     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Save(ctx context.Context, user *User) error
	Delete(ctx context.Context, id ID) error
}

type CreateParams struct {
	ID           ID
	Firstname    string
	Lastname     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	first, err := normalizeName(params.Firstname, ErrFirstnameInvalid)
	if err != nil {
		return nil, err
	}
	last, err := normalizeName(params.Lastname, ErrLastnameInvalid)
	if err != nil {
		return nil, err
	}
	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	role := RoleMember
	if params.Role != "" {
		if role, err = ParseRole(string(params.Role)); err != nil {
			return nil, err
		}
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &User{
		ID:           ID(id),
		Firstname:    first,
		Lastname:     last,
		Email:        email,
		PasswordHash: params.PasswordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) ChangeRole(role Role, now time.Time) error {
	parsed, err := ParseRole(string(role))
	if err != nil {
		return err
	}
	u.Role = parsed
	u.touch(now)
	return nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}

func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleMember:
		return RoleMember, nil
	default:
		return "", ErrInvalidRole
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeName validates an alphabetic-only name and capitalizes it: "aNNa" -> "Anna".
func normalizeName(raw string, invalid error) (string, error) {
	name := strings.TrimSpace(raw)
	if !namePattern.MatchString(name) {
		return "", invalid
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:]), nil
}
