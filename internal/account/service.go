// Package account registers users, checks passwords and issues bearer tokens.
package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/middleware"
)

const minPasswordLen = 8

type Service struct {
	users  domain.UserRepository
	secret string
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

func NewService(users domain.UserRepository, jwtSecret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{users: users, secret: jwtSecret, ttl: ttl, cost: bcrypt.DefaultCost, now: time.Now}
}

// Session is returned by register and login.
type Session struct {
	Token     string      `json:"access_token"`
	TokenType string      `json:"token_type"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      domain.User `json:"user"`
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// Register creates a donor account and signs it in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, domain.Invalid("email", "a valid email is required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, domain.Invalid("password", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, domain.Invalid("full_name", "full_name is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.users.Create(ctx, domain.User{
		Email:        email,
		FullName:     name,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		Roles:        []domain.Role{domain.RoleDonor},
	})
	if err != nil {
		return nil, err
	}
	return s.issue(*user)
}

// Login checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", domain.ErrForbidden)
	}
	return s.issue(*user)
}

// Me reloads the caller so role changes show up without a new token.
func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// GrantRole adds role to the account with email.
func (s *Service) GrantRole(ctx context.Context, email string, role domain.Role) (*domain.User, error) {
	if len(domain.ParseRoles([]string{string(role)})) != 1 {
		return nil, domain.Invalid("role", "role must be admin, volunteer or donor")
	}
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user.HasRole(role) {
		return user, nil
	}
	return s.users.SetRoles(ctx, user.Email, append(user.Roles, role))
}

func (s *Service) issue(user domain.User) (*Session, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	token, err := middleware.SignJWT(s.secret, middleware.TokenClaims{
		Sub:      user.ID,
		Email:    user.Email,
		Roles:    domain.RoleStrings(user.Roles),
		Iat:      now.Unix(),
		Exp:      exp.Unix(),
		Issuer:   middleware.TokenIssuer,
		Audience: middleware.TokenAudience,
	})
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: token, TokenType: "bearer", ExpiresAt: exp, User: user}, nil
}
