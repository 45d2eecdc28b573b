package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lexiconhq/tenant-auth/internal/store/core"
)

func (s *Store) GetUserByKey(ctx context.Context, key string) (*core.User, error) {
	const query = `
		SELECT id, key, email, first_name, last_name, enabled, user_type, bio, created_at
		FROM users WHERE key = $1
	`
	var u core.User
	err := s.pool.QueryRow(ctx, query, key).Scan(
		&u.ID, &u.Key, &u.Email, &u.FirstName, &u.LastName, &u.Enabled, &u.UserType, &u.Bio, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UserExists(ctx context.Context, key string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE key = $1)`
	var exists bool
	err := s.pool.QueryRow(ctx, query, key).Scan(&exists)
	return exists, err
}

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	const query = `
		INSERT INTO users (id, key, email, first_name, last_name, enabled, user_type, bio, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := s.pool.Exec(ctx, query,
		u.ID, u.Key, u.Email, u.FirstName, u.LastName, u.Enabled, u.UserType, u.Bio,
	)
	if isUniqueViolation(err) {
		return core.ErrConflict
	}
	return err
}

func (s *Store) ListUserRoles(ctx context.Context, userKey string) ([]string, error) {
	exists, err := s.UserExists(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, core.ErrNotFound
	}

	const query = `SELECT role FROM user_role WHERE user_key = $1 ORDER BY position ASC`
	rows, err := s.pool.Query(ctx, query, userKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func (s *Store) AddUserRole(ctx context.Context, userKey, role string) error {
	const query = `
		INSERT INTO user_role (user_key, role)
		VALUES ($1, $2)
		ON CONFLICT (user_key, role) DO NOTHING
	`
	_, err := s.pool.Exec(ctx, query, userKey, role)
	return err
}

func (s *Store) GetRole(ctx context.Context, name string) (*core.Role, error) {
	const query = `SELECT name, desk_access, disabled FROM role WHERE name = $1`
	var r core.Role
	err := s.pool.QueryRow(ctx, query, name).Scan(&r.Name, &r.DeskAccess, &r.Disabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) CreateRole(ctx context.Context, r *core.Role) error {
	const query = `INSERT INTO role (name, desk_access, disabled) VALUES ($1, $2, $3)`
	_, err := s.pool.Exec(ctx, query, r.Name, r.DeskAccess, r.Disabled)
	if isUniqueViolation(err) {
		return core.ErrConflict
	}
	return err
}

func (s *Store) UpdateRole(ctx context.Context, r *core.Role) error {
	const query = `UPDATE role SET desk_access = $2, disabled = $3 WHERE name = $1`
	tag, err := s.pool.Exec(ctx, query, r.Name, r.DeskAccess, r.Disabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
