package model

import "time"

// User represents an account in the `users` table.  Students carry the
// academic fields (course, year level, department) used by the floor
// access rules; faculty and staff accounts leave course and year level
// empty.  The IDNumber is the campus-issued identifier and is the natural
// key used to match participants across reservations.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – STUDENT, FACULTY, STAFF or ADMIN.
//  IDNumber     – unique campus ID (natural key for participant matching).
//  FullName     – display name, copied into participant snapshots.
//  Course       – academic program (empty for faculty/staff).
//  YearLevel    – year level text (empty for faculty/staff).
//  Department   – college or office the person belongs to.
//  Verified     – whether the account passed identity verification; only
//                 verified users may appear on a reservation.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IDNumber     string    // users.id_number
	FullName     string    // users.full_name
	Course       string    // users.course
	YearLevel    string    // users.year_level
	Department   string    // users.department
	Verified     bool      // users.verified
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Role values stored in users.role and carried in the JWT role claim.
const (
	RoleStudent = "STUDENT"
	RoleFaculty = "FACULTY"
	RoleStaff   = "STAFF"
	RoleAdmin   = "ADMIN"
)

// Staff reports whether the role may perform staff actions (approve,
// reject, start, resolve extensions, sweep).
func Staff(role string) bool {
	return role == RoleStaff || role == RoleAdmin
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user; only the SHA-256 hash of the raw
// token is stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
