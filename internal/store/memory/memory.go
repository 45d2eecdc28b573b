// Package memory is an in-process Repository used for tests and local
// development. State is mutex-guarded; semantics mirror the postgres
// adapter, including ErrConflict on duplicate user keys.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lexiconhq/tenant-auth/internal/store/core"
)

type Store struct {
	mu sync.RWMutex

	users     map[string]*core.User
	userRoles map[string][]string
	roles     map[string]*core.Role

	docTypes map[string]bool
	docPerms []*core.DocPerm

	pages     map[string]bool
	pageRoles map[string][]string

	modules     map[string]bool
	moduleRoles map[string][]string

	vendors   []core.Vendor
	providers []core.SocialLoginProvider
	ldap      core.LDAPSettings
}

func New() *Store {
	return &Store{
		users:       map[string]*core.User{},
		userRoles:   map[string][]string{},
		roles:       map[string]*core.Role{},
		docTypes:    map[string]bool{},
		pages:       map[string]bool{},
		pageRoles:   map[string][]string{},
		modules:     map[string]bool{},
		moduleRoles: map[string][]string{},
	}
}

var _ core.Repository = (*Store)(nil)

func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close()                         {}

// ─── Users ───

func (s *Store) GetUserByKey(ctx context.Context, key string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) UserExists(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[key]
	return ok, nil
}

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Key]; ok {
		return core.ErrConflict
	}
	cp := *u
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.users[u.Key] = &cp
	return nil
}

func (s *Store) ListUserRoles(ctx context.Context, userKey string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[userKey]; !ok {
		return nil, core.ErrNotFound
	}
	out := make([]string, len(s.userRoles[userKey]))
	copy(out, s.userRoles[userKey])
	return out, nil
}

func (s *Store) AddUserRole(ctx context.Context, userKey, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userKey]; !ok {
		return core.ErrNotFound
	}
	for _, r := range s.userRoles[userKey] {
		if r == role {
			return nil
		}
	}
	s.userRoles[userKey] = append(s.userRoles[userKey], role)
	return nil
}

// ─── Roles ───

func (s *Store) GetRole(ctx context.Context, name string) (*core.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[name]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *Store) CreateRole(ctx context.Context, r *core.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[r.Name]; ok {
		return core.ErrConflict
	}
	cp := *r
	s.roles[r.Name] = &cp
	return nil
}

func (s *Store) UpdateRole(ctx context.Context, r *core.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[r.Name]; !ok {
		return core.ErrNotFound
	}
	cp := *r
	s.roles[r.Name] = &cp
	return nil
}

// ─── DocTypes and permissions ───

func (s *Store) DocTypeExists(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docTypes[name], nil
}

func (s *Store) GetDocPerm(ctx context.Context, docType, role string) (*core.DocPerm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.docPerms {
		if p.Custom && p.DocType == docType && p.Role == role {
			cp := *p
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) CreateDocPerm(ctx context.Context, p *core.DocPerm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	cp.Custom = true
	s.docPerms = append(s.docPerms, &cp)
	return nil
}

func (s *Store) UpdateDocPerm(ctx context.Context, p *core.DocPerm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.docPerms {
		if existing.Custom && existing.DocType == p.DocType && existing.Role == p.Role {
			existing.Flags = p.Flags
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) DeleteDocPerms(ctx context.Context, docType, role string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.docPerms[:0]
	removed := 0
	for _, p := range s.docPerms {
		if p.DocType == docType && p.Role == role {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	s.docPerms = kept
	return removed, nil
}

func (s *Store) HasDocPermRead(ctx context.Context, docType string, roles []string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.docPerms {
		if p.DocType != docType || !p.Flags.Read {
			continue
		}
		for _, r := range roles {
			if p.Role == r {
				return true, nil
			}
		}
	}
	return false, nil
}

// ─── Pages ───

func (s *Store) PageExists(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pages[name], nil
}

func (s *Store) ListPageRoles(ctx context.Context, page string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.pages[page] {
		return nil, core.ErrNotFound
	}
	out := make([]string, len(s.pageRoles[page]))
	copy(out, s.pageRoles[page])
	return out, nil
}

func (s *Store) AddPageRole(ctx context.Context, page, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pages[page] {
		return core.ErrNotFound
	}
	s.pageRoles[page] = append(s.pageRoles[page], role)
	return nil
}

// ─── Modules ───

func (s *Store) ModuleExists(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modules[name], nil
}

func (s *Store) SetModuleRoles(ctx context.Context, module string, roles []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.modules[module] {
		return core.ErrNotFound
	}
	out := make([]string, len(roles))
	copy(out, roles)
	s.moduleRoles[module] = out
	return nil
}

// ─── Queries ───

func (s *Store) ListVendors(ctx context.Context) ([]core.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Vendor, len(s.vendors))
	copy(out, s.vendors)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListSocialLoginProviders(ctx context.Context) ([]core.SocialLoginProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.SocialLoginProvider
	for _, p := range s.providers {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) GetLDAPSettings(ctx context.Context) (*core.LDAPSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := s.ldap
	return &cp, nil
}

// ─── Seed helpers (tests / local dev) ───

func (s *Store) SeedDocType(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docTypes[name] = true
}

func (s *Store) SeedPage(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[name] = true
}

func (s *Store) SeedModule(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[name] = true
}

func (s *Store) SeedVendor(v core.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendors = append(s.vendors, v)
}

func (s *Store) SeedSocialLoginProvider(p core.SocialLoginProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers = append(s.providers, p)
}

func (s *Store) SeedLDAP(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ldap = core.LDAPSettings{Enabled: enabled}
}

// SeedStandardDocPerm inserts a rule into the standard perm store. The
// provisioner only writes custom rules; revocation must clear both.
func (s *Store) SeedStandardDocPerm(p core.DocPerm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	cp.Custom = false
	s.docPerms = append(s.docPerms, &cp)
}

// ModuleRoles returns the restriction list for a module. Test helper.
func (s *Store) ModuleRoles(module string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.moduleRoles[module]))
	copy(out, s.moduleRoles[module])
	return out
}
