package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is a known access role. Roles are stored as a comma separated string.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleBeta  Role = "beta"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBeta, RoleUser:
		return true
	}
	return false
}

// RoleSet is an ordered, duplicate-free list of roles.
type RoleSet []Role

// ParseRoles converts the stored representation into a RoleSet, rejecting unknown roles.
func ParseRoles(raw string) (RoleSet, error) {
	var set RoleSet
	for _, part := range strings.Split(raw, ",") {
		role := Role(strings.ToLower(strings.TrimSpace(part)))
		if role == "" {
			continue
		}
		if !role.Valid() {
			return nil, fmt.Errorf("unknown role %q", role)
		}
		if !set.Has(role) {
			set = append(set, role)
		}
	}
	return set, nil
}

// Has reports membership.
func (s RoleSet) Has(role Role) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// String renders the stored representation.
func (s RoleSet) String() string {
	parts := make([]string, len(s))
	for i, r := range s {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

// Scan implements sql.Scanner.
func (s *RoleSet) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported roles column type %T", src)
	}
	parsed, err := ParseRoles(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements driver.Valuer.
func (s RoleSet) Value() (driver.Value, error) {
	return s.String(), nil
}

// User is the minimal account projection used by analytics.
type User struct {
	ID        string    `db:"id" json:"id"`
	Roles     RoleSet   `db:"roles" json:"roles"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// JWTClaims represents the payload of externally issued access tokens.
type JWTClaims struct {
	UserID string  `json:"user_id"`
	Roles  RoleSet `json:"roles"`
	jwt.RegisteredClaims
}
