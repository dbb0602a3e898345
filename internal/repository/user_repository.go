package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/publicvoice/internal/model"
)

const userColumns = "id,full_name,email,password_hash,role,profile_image,reset_token_hash,reset_token_expires_at,created_at,updated_at"

// UserRepo mirrors the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u         model.User
		role      string
		image     sql.NullString
		resetHash sql.NullString
		resetExp  sql.NullTime
	)
	if err := s.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &role, &image, &resetHash, &resetExp, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	r, err := model.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", u.ID, err)
	}
	u.Role = r
	if image.Valid {
		u.ProfileImage = &image.String
	}
	if resetHash.Valid {
		u.ResetTokenHash = &resetHash.String
	}
	if resetExp.Valid {
		t := resetExp.Time
		u.ResetTokenExpiresAt = &t
	}
	return &u, nil
}

// Create inserts u with a normalized email and reloads the stored row so
// that ID and timestamps are populated.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (full_name, email, password_hash, role) VALUES (?,?,?,?)",
		u.FullName, u.Email, u.PasswordHash, string(u.Role))
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*u = *stored
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// UpdateProfile replaces full_name and profile_image.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, fullName string, profileImage *string) error {
	var image sql.NullString
	if profileImage != nil {
		image = sql.NullString{String: *profileImage, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET full_name=?, profile_image=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		fullName, image, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 affected rows when values are unchanged; confirm existence
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// List returns users newest first.
func (r *UserRepo) List(ctx context.Context, q UserQuery) ([]*model.User, error) {
	var (
		where []string
		args  []any
	)
	switch {
	case q.Role != "":
		where = append(where, "role=?")
		args = append(args, string(q.Role))
	case !q.IncludeAdmin:
		where = append(where, "role<>?")
		args = append(args, string(model.RoleAdmin))
	}
	query := "SELECT " + userColumns + " FROM users"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
