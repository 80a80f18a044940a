package repository

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ury-pos/pos-core/internal/database"
	"github.com/ury-pos/pos-core/internal/errors"
)

// UserRepository resolves users, their roles and their credentials.
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUser retrieves a user by name
func (r *UserRepository) GetUser(ctx context.Context, name string) (*User, error) {
	query := `
		SELECT name, full_name, password_hash, enabled
		FROM pos_users
		WHERE name = $1
	`

	user := &User{}
	err := r.db.QueryRow(ctx, query, name).Scan(
		&user.Name,
		&user.FullName,
		&user.PasswordHash,
		&user.Enabled,
	)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NotFound("user", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get user")
	}
	return user, nil
}

// GetUserRoles lists the role names assigned to a user.
func (r *UserRepository) GetUserRoles(ctx context.Context, name string) ([]string, error) {
	query := `
		SELECT role
		FROM pos_user_roles
		WHERE user_name = $1
		ORDER BY role
	`

	rows, err := r.db.Query(ctx, query, name)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get user roles")
	}
	defer rows.Close()

	roles := make([]string, 0)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan user role")
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read user roles")
	}
	return roles, nil
}

// VerifyPassword checks password against the stored bcrypt hash. Unknown,
// disabled and mismatching users all fail with ErrCodeUnauthenticated.
func (r *UserRepository) VerifyPassword(ctx context.Context, name, password string) error {
	query := `
		SELECT password_hash, enabled
		FROM pos_users
		WHERE name = $1
	`

	var hash string
	var enabled bool
	err := r.db.QueryRow(ctx, query, name).Scan(&hash, &enabled)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return errors.New(errors.ErrCodeUnauthenticated, "invalid username or password")
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to load credentials")
	}

	if !enabled {
		return errors.New(errors.ErrCodeUnauthenticated, "user is disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return errors.Wrap(err, errors.ErrCodeUnauthenticated, "invalid username or password")
	}
	return nil
}
