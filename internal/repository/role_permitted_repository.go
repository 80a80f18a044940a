package repository

import (
	"context"

	"github.com/ury-pos/pos-core/internal/database"
	"github.com/ury-pos/pos-core/internal/errors"
)

// RolePermittedRepository reads role bindings attached to parent documents,
// such as the void approval roles of a POS profile.
type RolePermittedRepository struct {
	db *database.DB
}

// NewRolePermittedRepository creates a new RolePermittedRepository.
func NewRolePermittedRepository(db *database.DB) *RolePermittedRepository {
	return &RolePermittedRepository{db: db}
}

// ListRoles returns the roles bound to parent under parentField of parentType.
// An unknown parent yields an empty list.
func (r *RolePermittedRepository) ListRoles(ctx context.Context, parent, parentField, parentType string) ([]string, error) {
	query := `
		SELECT role
		FROM pos_role_permitted
		WHERE parent = $1 AND parentfield = $2 AND parenttype = $3
		ORDER BY role ASC
	`

	rows, err := r.db.Query(ctx, query, parent, parentField, parentType)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list permitted roles")
	}
	defer rows.Close()

	roles := make([]string, 0)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan permitted role")
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read permitted roles")
	}
	return roles, nil
}

