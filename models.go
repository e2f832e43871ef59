package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleGuest is a guest role (ie. view)
	RoleGuest UserRole = "guest"
	// RoleMember is a member (i.e. view, edit)
	RoleMember UserRole = "member"
	// RoleAdmin is an admin role (i.e. view, edit, create)
	RoleAdmin UserRole = "admin"
	// RoleOwner is an admin role (i.e. view, edit, create, delete)
	RoleOwner UserRole = "owner"
)

// User is the identity record. Email is unique at the storage layer; the
// password hash never leaves the package through Public().
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role           UserRole       `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName      string         `bun:"first_name" json:"first_name,omitempty"`
	LastName       string         `bun:"last_name" json:"last_name,omitempty"`
	Email          string         `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string         `bun:"password_hash,notnull" json:"-"`
	EmailValidated bool           `bun:"is_email_verified" json:"is_email_verified"`
	Metadata       map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt      *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// Identity exposes the record as the token-facing identity view
func (u *User) Identity() Identity {
	return authIdentity{
		id:    u.ID.String(),
		email: u.Email,
		role:  u.Role,
	}
}

// PublicUser is the caller-facing shape of a User. It carries everything the
// request layer may return to clients; the password hash has no field here.
type PublicUser struct {
	ID             uuid.UUID      `json:"id"`
	Role           UserRole       `json:"user_role,omitempty"`
	FirstName      string         `json:"first_name,omitempty"`
	LastName       string         `json:"last_name,omitempty"`
	Email          string         `json:"email"`
	EmailValidated bool           `json:"is_email_verified"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      *time.Time     `json:"created_at,omitempty"`
}

// Public returns the redacted view of the record
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:             u.ID,
		Role:           u.Role,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		EmailValidated: u.EmailValidated,
		Metadata:       u.Metadata,
		CreatedAt:      u.CreatedAt,
	}
}

type authIdentity struct {
	id    string
	email string
	role  string
}

func (a authIdentity) ID() string    { return a.id }
func (a authIdentity) Email() string { return a.email }
func (a authIdentity) Role() string  { return a.role }

var _ Identity = authIdentity{}

// NormalizeEmail lower-cases and trims an address so lookups and the unique
// index agree on a single spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
