package model

import "time"

// Roles understood by the JWT middleware.  A user registered without a
// role is stored as RoleUser.
const (
    RoleUser  = "USER"
    RoleAdmin = "ADMIN"
)

// User represents an application user record as stored in the
// `users` table.  The password hash never leaves the repository and
// service layers; handlers expose UserSummary or UserDetail instead.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  Name         – display name.
//  PhoneNumber  – optional contact number.
//  PasswordHash – bcrypt hashed password.
//  Role         – USER or ADMIN.
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    Name         string    // users.name
    PhoneNumber  string    // users.phone_number
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    CreatedAt    time.Time // users.created_at
}

// UserSummary is the public projection of a user embedded in booking views.
type UserSummary struct {
    ID          uint64 `json:"id"`
    Name        string `json:"name"`
    Email       string `json:"email"`
    PhoneNumber string `json:"phone_number,omitempty"`
}

// UserDetail is returned by the account endpoints.  Bookings is only
// populated by the booking-history lookup.
type UserDetail struct {
    ID          uint64        `json:"id"`
    Email       string        `json:"email"`
    Name        string        `json:"name"`
    PhoneNumber string        `json:"phone_number"`
    Role        string        `json:"role"`
    Bookings    []BookingView `json:"bookings,omitempty"`
}

// Detail projects a user onto its public JSON shape.
func (u User) Detail() UserDetail {
    return UserDetail{ID: u.ID, Email: u.Email, Name: u.Name, PhoneNumber: u.PhoneNumber, Role: u.Role}
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is not stored; only its SHA‑256 hash.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
