package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"stayhub/internal/app/policies"
	domainauth "stayhub/internal/domain/auth"
	"stayhub/internal/domain/shared/fault"
	domainuser "stayhub/internal/domain/user"
)

const minPasswordLength = 6

var (
	ErrInvalidCredentials = fault.New(fault.ErrUnauthenticated, "invalid_credentials", "auth: invalid credentials")
	ErrPasswordTooShort   = fault.New(fault.ErrInvalidInput, "invalid_input", "auth: password must be at least 6 characters")
	errMisconfigured      = errors.New("auth: service dependencies are not configured")
)

type Service struct {
	Users     domainuser.Repository
	Passwords policies.PasswordHasher
	Tokens    policies.TokenIssuer
	Logger    *slog.Logger
	Now       func() time.Time
}

type RegisterParams struct {
	Firstname string
	Lastname  string
	Email     string
	Password  string
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User  *domainuser.User
	Token string
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(params.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" {
		return nil, domainuser.ErrEmailRequired
	}
	if _, err := s.Users.ByEmail(ctx, email); err == nil {
		return nil, domainuser.ErrEmailAlreadyUsed
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Firstname:    params.Firstname,
		Lastname:     params.Lastname,
		Email:        email,
		PasswordHash: hash,
		Role:         domainuser.RoleMember,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "user registered", "user_id", user.ID, "email", user.Email)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" || params.Password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(user.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "user authenticated", "user_id", user.ID)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate turns a bearer token into the acting user.
func (s *Service) Authenticate(token string) (*domainauth.Actor, error) {
	if s.Tokens == nil {
		return nil, errMisconfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainauth.ErrTokenRequired
	}
	info, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, domainauth.ErrInvalidToken
	}
	if info.ID == "" {
		return nil, domainauth.ErrInvalidToken
	}
	role, err := domainuser.ParseRole(string(info.Role))
	if err != nil {
		return nil, domainauth.ErrInvalidToken
	}
	return &domainauth.Actor{ID: info.ID, Role: role}, nil
}

func (s *Service) issue(user *domainuser.User) (string, error) {
	return s.Tokens.Issue(policies.UserInfo{
		ID:        user.ID,
		Firstname: user.Firstname,
		Lastname:  user.Lastname,
		Email:     user.Email,
		Role:      user.Role,
	})
}

func (s *Service) ensureDependencies() error {
	if s.Users == nil || s.Passwords == nil || s.Tokens == nil {
		return errMisconfigured
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
