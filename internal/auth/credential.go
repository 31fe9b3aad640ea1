// Package auth gates reads, writes and ownership-restricted operations
// behind opaque credential tokens stored in PostgreSQL.
package auth

import "time"

// Credential is a provisioned API token and its privileges.
// Write access requires both flags.
type Credential struct {
	Token        string    `json:"token"`
	Contact      string    `json:"contact"`
	Enabled      bool      `json:"enabled"`
	WriteEnabled bool      `json:"write_enabled"`
	CreatedAt    time.Time `json:"created_at"`
}

// CanRead reports whether the credential grants read access to
// access-controlled resources.
func (c *Credential) CanRead() bool {
	return c != nil && c.Enabled
}

// CanWrite reports whether the credential grants write access.
func (c *Credential) CanWrite() bool {
	return c != nil && c.Enabled && c.WriteEnabled
}

// Resource is the access-control view of a protected record.
// Registrant is the token that created it, nil when unknown.
type Resource struct {
	Public     bool
	Registrant *string
}

// OwnedBy reports whether token registered the resource.
func (r Resource) OwnedBy(token string) bool {
	return r.Registrant != nil && token != "" && *r.Registrant == token
}

// CreateCommand provisions a new credential. An empty Token is generated.
type CreateCommand struct {
	Token        string
	Contact      string
	WriteEnabled bool
}
