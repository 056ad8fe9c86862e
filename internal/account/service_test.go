package account

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/middleware"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (m *memUsers) Create(_ context.Context, u domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
	}
	u.ID = fmt.Sprintf("user-%d", len(m.users)+1)
	u.IsActive = true
	m.users[u.ID] = u
	return &u, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) SetRoles(_ context.Context, email string, roles []domain.Role) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if u.Email == email {
			u.Roles = roles
			m.users[id] = u
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func newTestService() (*Service, *memUsers) {
	users := &memUsers{users: map[string]domain.User{}}
	svc := NewService(users, "secret", time.Hour)
	svc.cost = bcrypt.MinCost
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Email: " Asha@Example.org ", Password: "correct horse", FullName: "Asha"})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if session.User.Email != "asha@example.org" || !session.User.HasRole(domain.RoleDonor) {
		t.Fatalf("user = %+v", session.User)
	}
	claims, err := middleware.VerifyJWT("secret", session.Token, time.Now())
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if claims.Sub != session.User.ID || len(claims.Roles) != 1 || claims.Roles[0] != "donor" {
		t.Fatalf("claims = %+v", claims)
	}

	if _, err := svc.Register(ctx, RegisterInput{Email: "asha@example.org", Password: "another one", FullName: "A"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate register error = %v, want ErrConflict", err)
	}

	if _, err := svc.Login(ctx, "ASHA@example.org", "correct horse"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	for _, tc := range []struct{ email, password string }{
		{"asha@example.org", "wrong password"},
		{"nobody@example.org", "correct horse"},
	} {
		if _, err := svc.Login(ctx, tc.email, tc.password); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("Login(%s) error = %v, want ErrUnauthorized", tc.email, err)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"bad email", RegisterInput{Email: "not-an-email", Password: "longenough", FullName: "A"}, "email"},
		{"short password", RegisterInput{Email: "a@example.org", Password: "short", FullName: "A"}, "password"},
		{"no name", RegisterInput{Email: "a@example.org", Password: "longenough"}, "full_name"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("error = %v, want validation on %s", err, tc.field)
			}
		})
	}
}

func TestGrantRole(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Email: "vol@example.org", Password: "longenough", FullName: "V"}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	u, err := svc.GrantRole(ctx, "vol@example.org", domain.RoleVolunteer)
	if err != nil {
		t.Fatalf("GrantRole() error: %v", err)
	}
	if !u.HasRole(domain.RoleVolunteer) || !u.HasRole(domain.RoleDonor) {
		t.Fatalf("roles = %v", u.Roles)
	}
	if _, err := svc.GrantRole(ctx, "vol@example.org", "superuser"); !domain.IsValidation(err) {
		t.Fatalf("unknown role error = %v, want validation", err)
	}
}
