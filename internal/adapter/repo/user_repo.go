package repo

import (
	"context"
	"fmt"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/infra"
	"github.com/weforyou/ledger/internal/sqlinline"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// Create inserts an account. A duplicate email is reported as ErrConflict.
func (r *UserRepositoryPG) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	roles := user.Roles
	if len(roles) == 0 {
		roles = []domain.Role{domain.RoleDonor}
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertUser,
		user.Email,
		user.FullName,
		user.Phone,
		user.PasswordHash,
		domain.RoleStrings(roles),
	)
	created, err := scanUser(row)
	if infra.IsUniqueViolation(err) {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	}
	return created, err
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByID, id))
}

// GetByEmail matches case-insensitively; emails are stored lower-cased.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByEmail, email))
}

// SetRoles replaces the role set of the account with the given email.
func (r *UserRepositoryPG) SetRoles(ctx context.Context, email string, roles []domain.Role) (*domain.User, error) {
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QUpdateUserRoles, email, domain.RoleStrings(roles)))
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
