package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lexiconhq/tenant-auth/internal/store/core"
)

func (s *Store) ListVendors(ctx context.Context) ([]core.Vendor, error) {
	const query = `
		SELECT name, type, email, phone, status, description
		FROM vendor ORDER BY name ASC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Vendor
	for rows.Next() {
		var v core.Vendor
		if err := rows.Scan(&v.Name, &v.Type, &v.Email, &v.Phone, &v.Status, &v.Description); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) ListSocialLoginProviders(ctx context.Context) ([]core.SocialLoginProvider, error) {
	const query = `
		SELECT name, provider_name, icon, client_id
		FROM social_login_key WHERE enabled ORDER BY name ASC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.SocialLoginProvider
	for rows.Next() {
		p := core.SocialLoginProvider{Enabled: true}
		if err := rows.Scan(&p.Name, &p.ProviderName, &p.Icon, &p.ClientID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetLDAPSettings(ctx context.Context) (*core.LDAPSettings, error) {
	const query = `SELECT enabled FROM ldap_settings WHERE id = 1`
	var l core.LDAPSettings
	err := s.pool.QueryRow(ctx, query).Scan(&l.Enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
