package core

import "time"

// User is a local account. Key is the identifier the account is stored
// under: the provider email, possibly namespaced by an app prefix
// (e.g. "vendor-a@x.com"). Email always carries the raw provider email.
type User struct {
	ID        string
	Key       string
	Email     string
	FirstName string
	LastName  string
	Enabled   bool
	UserType  string
	Bio       string
	CreatedAt time.Time
}

// Role is a named capability bucket.
type Role struct {
	Name       string
	DeskAccess bool
	Disabled   bool
}

// PermFlags are the seven boolean flags a doc permission rule carries.
type PermFlags struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Create bool `json:"create"`
	Delete bool `json:"delete"`
	Submit bool `json:"submit"`
	Cancel bool `json:"cancel"`
	Amend  bool `json:"amend"`
}

// DocPerm is the authoritative permission rule for a (doctype, role) pair.
// Custom marks the rule as living in the custom perm store rather than the
// standard one; revocation clears both.
type DocPerm struct {
	DocType string
	Role    string
	Flags   PermFlags
	Custom  bool
}

// PagePerm grants a role visibility of a named desk page.
type PagePerm struct {
	Page string
	Role string
}

// ModuleDef is a module record with its role restriction list.
type ModuleDef struct {
	Name         string
	RestrictedTo []string
}

// Vendor is the projection served by the vendor list endpoint.
type Vendor struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// SocialLoginProvider describes a configured social login key for the
// login page context.
type SocialLoginProvider struct {
	Name         string `json:"name"`
	ProviderName string `json:"provider_name"`
	Icon         string `json:"icon"`
	ClientID     string `json:"-"`
	Enabled      bool   `json:"-"`
}

// LDAPSettings is the minimal LDAP toggle exposed on the login page.
type LDAPSettings struct {
	Enabled bool `json:"enabled"`
}
