package core

import "context"

// Repository is the typed access layer over the backing store. All lookups
// by a missing key return ErrNotFound; unique-key violations on writes
// return ErrConflict so racing callers can converge instead of corrupting
// state.
type Repository interface {
	Ping(ctx context.Context) error
	Close()

	// Users
	GetUserByKey(ctx context.Context, key string) (*User, error)
	UserExists(ctx context.Context, key string) (bool, error)
	CreateUser(ctx context.Context, u *User) error
	ListUserRoles(ctx context.Context, userKey string) ([]string, error)
	// AddUserRole is idempotent: re-adding an assigned role is a no-op.
	AddUserRole(ctx context.Context, userKey, role string) error

	// Roles
	GetRole(ctx context.Context, name string) (*Role, error)
	CreateRole(ctx context.Context, r *Role) error
	UpdateRole(ctx context.Context, r *Role) error

	// DocTypes and permission rules
	DocTypeExists(ctx context.Context, name string) (bool, error)
	GetDocPerm(ctx context.Context, docType, role string) (*DocPerm, error)
	CreateDocPerm(ctx context.Context, p *DocPerm) error
	UpdateDocPerm(ctx context.Context, p *DocPerm) error
	// DeleteDocPerms removes every rule for the pair from both the custom
	// and the standard perm stores. Returns the number removed.
	DeleteDocPerms(ctx context.Context, docType, role string) (int, error)
	// HasDocPermRead reports whether any of roles holds a read-flagged rule
	// on the doctype.
	HasDocPermRead(ctx context.Context, docType string, roles []string) (bool, error)

	// Pages
	PageExists(ctx context.Context, name string) (bool, error)
	ListPageRoles(ctx context.Context, page string) ([]string, error)
	AddPageRole(ctx context.Context, page, role string) error

	// Modules
	ModuleExists(ctx context.Context, name string) (bool, error)
	SetModuleRoles(ctx context.Context, module string, roles []string) error

	// Queries
	ListVendors(ctx context.Context) ([]Vendor, error)
	ListSocialLoginProviders(ctx context.Context) ([]SocialLoginProvider, error)
	GetLDAPSettings(ctx context.Context) (*LDAPSettings, error)
}
