package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// UserRepo stores users in the users table. The username column uses a case
// insensitive collation, so the unique key also ignores case.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = "id, username, password_hash, age, role, created_at"

func (r *UserRepo) Save(ctx context.Context, u *model.User) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?)",
		u.ID, u.Username, u.PasswordHash, u.Age, u.Role.String(), u.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return model.NewConflict(model.ErrDuplicateUsername)
		}
		return err
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.one(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.one(ctx, "SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", strings.TrimSpace(username))
}

func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username=?", strings.TrimSpace(username)).Scan(&n)
	return n > 0, err
}

func (r *UserRepo) one(ctx context.Context, q string, arg any) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	err := r.db.QueryRowContext(ctx, q, arg).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Age, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}
