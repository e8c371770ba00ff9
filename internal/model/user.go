package model

import (
    "fmt"
    "strings"
    "time"
)

// Role is the closed set of privilege levels a user can hold.  Only the
// three constants below are valid; anything else coming from storage or a
// request body is rejected by ParseRole.
type Role string

const (
    RoleAdmin     Role = "admin"
    RoleModerator Role = "moderator"
    RoleUser      Role = "user"
)

// Roles lists every valid role in a stable order.
var Roles = []Role{RoleAdmin, RoleModerator, RoleUser}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
    switch r {
    case RoleAdmin, RoleModerator, RoleUser:
        return true
    }
    return false
}

func (r Role) String() string { return string(r) }

// ParseRole converts a raw string into a Role.  Matching ignores case and
// surrounding whitespace.
func ParseRole(s string) (Role, error) {
    r := Role(strings.ToLower(strings.TrimSpace(s)))
    if !r.Valid() {
        return "", fmt.Errorf("unknown role %q", s)
    }
    return r, nil
}

// User represents an application user record as stored in the
// `users` table.  The JSON tags are used by the session cache; the
// password hash and the refresh token never leave the process through
// that path.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique display name.
//  Email        – unique email address, compared case-sensitively.
//  PasswordHash – bcrypt hashed password.
//  Avatar       – avatar URL, empty when none.
//  Role         – admin, moderator or user.
//  RefreshToken – the last refresh token handed out, empty after logout.
//  Confirmed    – whether the email address was verified.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    `json:"id"`
    Username     string    `json:"username"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"-"`
    Avatar       string    `json:"avatar,omitempty"`
    Role         Role      `json:"role"`
    RefreshToken string    `json:"-"`
    Confirmed    bool      `json:"confirmed"`
    IsActive     bool      `json:"is_active"`
    CreatedAt    time.Time `json:"created_at"`
    UpdatedAt    time.Time `json:"updated_at"`
}
