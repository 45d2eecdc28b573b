package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lexiconhq/tenant-auth/internal/store/core"
)

func (s *Store) DocTypeExists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM doctype WHERE name = $1)`
	var exists bool
	err := s.pool.QueryRow(ctx, query, name).Scan(&exists)
	return exists, err
}

func (s *Store) GetDocPerm(ctx context.Context, docType, role string) (*core.DocPerm, error) {
	const query = `
		SELECT doctype, role, can_read, can_write, can_create, can_delete, can_submit, can_cancel, can_amend
		FROM doc_perm WHERE doctype = $1 AND role = $2 AND custom
	`
	var p core.DocPerm
	err := s.pool.QueryRow(ctx, query, docType, role).Scan(
		&p.DocType, &p.Role,
		&p.Flags.Read, &p.Flags.Write, &p.Flags.Create, &p.Flags.Delete,
		&p.Flags.Submit, &p.Flags.Cancel, &p.Flags.Amend,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Custom = true
	return &p, nil
}

func (s *Store) CreateDocPerm(ctx context.Context, p *core.DocPerm) error {
	const query = `
		INSERT INTO doc_perm (doctype, role, can_read, can_write, can_create, can_delete, can_submit, can_cancel, can_amend, custom)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
	`
	_, err := s.pool.Exec(ctx, query,
		p.DocType, p.Role,
		p.Flags.Read, p.Flags.Write, p.Flags.Create, p.Flags.Delete,
		p.Flags.Submit, p.Flags.Cancel, p.Flags.Amend,
	)
	if isUniqueViolation(err) {
		return core.ErrConflict
	}
	return err
}

func (s *Store) UpdateDocPerm(ctx context.Context, p *core.DocPerm) error {
	const query = `
		UPDATE doc_perm
		SET can_read = $3, can_write = $4, can_create = $5, can_delete = $6,
		    can_submit = $7, can_cancel = $8, can_amend = $9
		WHERE doctype = $1 AND role = $2 AND custom
	`
	tag, err := s.pool.Exec(ctx, query,
		p.DocType, p.Role,
		p.Flags.Read, p.Flags.Write, p.Flags.Create, p.Flags.Delete,
		p.Flags.Submit, p.Flags.Cancel, p.Flags.Amend,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDocPerms(ctx context.Context, docType, role string) (int, error) {
	// Both perm stores live in doc_perm, distinguished by the custom flag.
	// Revocation clears the pair from both.
	const query = `DELETE FROM doc_perm WHERE doctype = $1 AND role = $2`
	tag, err := s.pool.Exec(ctx, query, docType, role)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) HasDocPermRead(ctx context.Context, docType string, roles []string) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM doc_perm
			WHERE doctype = $1 AND role = ANY($2) AND can_read
		)
	`
	var ok bool
	err := s.pool.QueryRow(ctx, query, docType, roles).Scan(&ok)
	return ok, err
}

func (s *Store) PageExists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM page WHERE name = $1)`
	var exists bool
	err := s.pool.QueryRow(ctx, query, name).Scan(&exists)
	return exists, err
}

func (s *Store) ListPageRoles(ctx context.Context, page string) ([]string, error) {
	exists, err := s.PageExists(ctx, page)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, core.ErrNotFound
	}

	const query = `SELECT role FROM page_role WHERE page = $1 ORDER BY position ASC`
	rows, err := s.pool.Query(ctx, query, page)
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

func (s *Store) AddPageRole(ctx context.Context, page, role string) error {
	const query = `INSERT INTO page_role (page, role) VALUES ($1, $2)`
	_, err := s.pool.Exec(ctx, query, page, role)
	return err
}

func (s *Store) ModuleExists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM module_def WHERE name = $1)`
	var exists bool
	err := s.pool.QueryRow(ctx, query, name).Scan(&exists)
	return exists, err
}

func (s *Store) SetModuleRoles(ctx context.Context, module string, roles []string) error {
	exists, err := s.ModuleExists(ctx, module)
	if err != nil {
		return err
	}
	if !exists {
		return core.ErrNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM module_role WHERE module = $1`, module); err != nil {
		return err
	}
	for _, role := range roles {
		if _, err := tx.Exec(ctx,
			`INSERT INTO module_role (module, role) VALUES ($1, $2)`, module, role); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
