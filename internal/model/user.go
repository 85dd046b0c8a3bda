package model

import "time"

// Roles recognised by the service. Students, faculty and clubs submit
// booking requests; admins decide them. The role is carried in the
// JWT "role" claim and checked both by middleware and by the core
// approval state machine.
const (
    RoleStudent = "student"
    RoleFaculty = "faculty"
    RoleClub    = "club"
    RoleAdmin   = "admin"
)

// ValidRole reports whether r is one of the recognised role names.
func ValidRole(r string) bool {
    switch r {
    case RoleStudent, RoleFaculty, RoleClub, RoleAdmin:
        return true
    }
    return false
}

// User represents an account row in the `users` table. These structs
// are used internally by the repository layer; handlers define their
// own response types with JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – one of student, faculty, club, admin.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models a row in the `refresh_tokens` table. Only the
// SHA-256 hash of the token value is stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp.
//  RevokedAt – when the token was revoked (nil if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
