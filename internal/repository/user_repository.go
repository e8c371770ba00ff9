package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/photoshare-api/internal/model"
)

// UserRepo persists identities in the 'users' table.  The table carries a
// unique index on email and on username.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

const userColumns = "id,username,email,password_hash,avatar,role,refresh_token,confirmed,is_active,created_at,updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (model.User, error) {
	var (
		u       model.User
		avatar  sql.NullString
		refresh sql.NullString
		role    string
	)
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &avatar, &role, &refresh,
		&u.Confirmed, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Avatar = avatar.String
	u.RefreshToken = refresh.String
	u.Role = model.Role(role)
	return u, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// FindByEmail fetches a user by email.  The comparison is exact: the
// column uses a case-sensitive collation.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// FindByUsername fetches a user by display name.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", strings.TrimSpace(username))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// Create inserts u and fills its ID.  A duplicate email or username
// yields ErrUserExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (username,email,password_hash,avatar,role,refresh_token,confirmed,is_active)
		 VALUES (?,?,?,?,?,?,?,?)`,
		u.Username, u.Email, u.PasswordHash, nullable(u.Avatar), string(u.Role),
		nullable(u.RefreshToken), u.Confirmed, u.IsActive)
	if err != nil {
		if isDuplicate(err) {
			return ErrUserExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// CreateFirstAdmin inserts u with the admin role only while the users
// table is empty.  It reports false when another row got there first,
// including when InnoDB picks this insert as the victim of a concurrent
// bootstrap.  u is left untouched in that case.
func (r *UserRepo) CreateFirstAdmin(ctx context.Context, u *model.User) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (username,email,password_hash,avatar,role,refresh_token,confirmed,is_active)
		 SELECT ?,?,?,?,?,?,?,? FROM DUAL WHERE NOT EXISTS (SELECT 1 FROM users)`,
		u.Username, u.Email, u.PasswordHash, nullable(u.Avatar), string(model.RoleAdmin),
		nullable(u.RefreshToken), u.Confirmed, u.IsActive)
	if err != nil {
		if isDuplicate(err) {
			return false, ErrUserExists
		}
		if isDeadlock(err) {
			return false, nil
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, err
	}
	u.ID = uint64(id)
	u.Role = model.RoleAdmin
	return true, nil
}

// Save writes every mutable column of u back to its row.
func (r *UserRepo) Save(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET username=?, password_hash=?, avatar=?, role=?, refresh_token=?,
		        confirmed=?, is_active=?, updated_at=CURRENT_TIMESTAMP
		 WHERE id=?`,
		u.Username, u.PasswordHash, nullable(u.Avatar), string(u.Role), nullable(u.RefreshToken),
		u.Confirmed, u.IsActive, u.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports zero affected rows when nothing changed, so only
		// a missing row is an error.
		var exists int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=?", u.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
	}
	return nil
}

// ListAll returns every user ordered by id.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
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
