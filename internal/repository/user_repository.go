package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/arjaysison/library-room-reservation/internal/model"
	"github.com/arjaysison/library-room-reservation/internal/utils"
)

// UserRepo provides account lookups for auth and for participant
// resolution by campus ID number.  The reservation engine treats users as
// read-mostly: besides registration, only the verification flag is
// writable here.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")
var ErrIDNumberExists = errors.New("id number already exists")

const userCols = `id, email, password_hash, role, id_number, full_name,
	course, year_level, department, verified, is_active, created_at, updated_at`

func scanUser(s rowScanner) (*model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IDNumber, &u.FullName,
		&u.Course, &u.YearLevel, &u.Department, &u.Verified, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and returns its ID.  New accounts start
// unverified; verification is a staff action.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role, id_number, full_name, course, year_level, department)
		 VALUES (?,?,?,?,?,?,?,?)`,
		u.Email, hash, u.Role, u.IDNumber, u.FullName, u.Course, u.YearLevel, u.Department)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "id_number") {
				return 0, ErrIDNumberExists
			}
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ByEmail fetches a user by normalized email.
func (r *UserRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE email = ? LIMIT 1`, email))
}

// ByID fetches a user by primary key.  Returns ErrNotFound when absent.
func (r *UserRepo) ByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE id = ? LIMIT 1`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

// ByIDNumber fetches a user by campus ID number, the natural key used
// when composing participant rosters.  Returns ErrNotFound when absent.
func (r *UserRepo) ByIDNumber(ctx context.Context, idNumber string) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE id_number = ? LIMIT 1`, strings.TrimSpace(idNumber)))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

// SetVerified flips the verification gate for an account.
func (r *UserRepo) SetVerified(ctx context.Context, id uint64, verified bool) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET verified = ? WHERE id = ?`, verified, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
