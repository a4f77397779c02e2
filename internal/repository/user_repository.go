package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jsbarre1/jwt-pizza/internal/auth"
	"github.com/jsbarre1/jwt-pizza/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a user with the diner role and returns the stored
// record. The password is hashed with bcrypt before it touches the
// database.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, cost int) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, storageErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash) VALUES (?,?,?)",
		name, email, hash)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, storageErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO user_roles (user_id, role, object_id) VALUES (?,?,0)",
		id, model.RoleDiner); err != nil {
		return model.User{}, storageErr(err)
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, storageErr(err)
	}

	return model.User{
		ID:           uint64(id),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Roles:        model.Roles{{Kind: model.RoleDiner}},
	}, nil
}

// GetByEmail fetches a user and their roles by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.get(ctx, "SELECT id,name,email,password_hash FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user and their roles by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.get(ctx, "SELECT id,name,email,password_hash FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) get(ctx context.Context, query string, arg any) (model.User, error) {
	return retryRead(ctx, func() (model.User, error) { return r.getOnce(ctx, query, arg) })
}

func (r *UserRepo) getOnce(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, storageErr(err)
	}
	roles, err := r.rolesFor(ctx, u.ID)
	if err != nil {
		return model.User{}, err
	}
	u.Roles = roles
	return u, nil
}

// List returns one page of users whose name contains the filter
// (case-insensitive; "*" or empty matches all) plus a flag telling
// whether more pages follow. Ordering is id ascending so repeated
// pagination over an unchanged set is deterministic.
func (r *UserRepo) List(ctx context.Context, page, pageSize int, filter string) ([]model.User, bool, error) {
	var more bool
	users, err := retryRead(ctx, func() ([]model.User, error) {
		var err error
		var u []model.User
		u, more, err = r.list(ctx, page, pageSize, filter)
		return u, err
	})
	return users, more, err
}

func (r *UserRepo) list(ctx context.Context, page, pageSize int, filter string) ([]model.User, bool, error) {
	page, pageSize = clampPage(page, pageSize, 10)
	cond := "1=1"
	args := []any{}
	if pattern, ok := nameLike(filter); ok {
		cond = "LOWER(name) LIKE ?"
		args = append(args, pattern)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, false, storageErr(err)
	}

	dataArgs := append(append([]any{}, args...), pageSize, page*pageSize)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,email FROM users WHERE "+cond+" ORDER BY id ASC LIMIT ? OFFSET ?",
		dataArgs...)
	if err != nil {
		return nil, false, storageErr(err)
	}
	defer rows.Close()

	users := make([]model.User, 0, pageSize)
	ids := make([]uint64, 0, pageSize)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, false, err
		}
		users = append(users, u)
		ids = append(ids, u.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, false, storageErr(err)
	}

	byUser, err := r.rolesForIDs(ctx, ids)
	if err != nil {
		return nil, false, err
	}
	for i := range users {
		users[i].Roles = byUser[users[i].ID]
	}
	return users, hasMore(page, pageSize, total), nil
}

// Update applies a partial update. Nil fields are left untouched.
// A non-nil password is re-hashed. Returns the updated record.
func (r *UserRepo) Update(ctx context.Context, id uint64, name, email, password *string, cost int) (model.User, error) {
	set := []string{}
	args := []any{}
	if name != nil {
		set = append(set, "name=?")
		args = append(args, *name)
	}
	if email != nil {
		set = append(set, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*email)))
	}
	if password != nil {
		hash, err := auth.HashPassword(*password, cost)
		if err != nil {
			return model.User{}, err
		}
		set = append(set, "password_hash=?")
		args = append(args, hash)
	}
	if len(set) > 0 {
		args = append(args, id)
		// RowsAffected is 0 both for missing rows and no-op updates,
		// so existence is settled by the read below.
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(set, ", ")+" WHERE id=?", args...); err != nil {
			if isDuplicate(err) {
				return model.User{}, ErrEmailExists
			}
			return model.User{}, storageErr(err)
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes the user and their roles. Historical orders keep
// the diner id as an immutable reference. Returns ErrNotFound when
// the user is already absent.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id=?", id); err != nil {
		return storageErr(err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return storageErr(tx.Commit())
}

// EnsureAdmin guarantees at least one global admin exists. When no
// admin role is present, a user with the given credentials is
// created (or promoted, if the email is already registered).
func (r *UserRepo) EnsureAdmin(ctx context.Context, name, email, password string, cost int) error {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_roles WHERE role=?", model.RoleAdmin).Scan(&n)
	if err != nil {
		return storageErr(err)
	}
	if n > 0 {
		return nil
	}
	u, err := r.Create(ctx, name, email, password, cost)
	if errors.Is(err, ErrEmailExists) {
		u, err = r.GetByEmail(ctx, email)
	}
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO user_roles (user_id, role, object_id) VALUES (?,?,0)",
		u.ID, model.RoleAdmin)
	return storageErr(err)
}

func (r *UserRepo) rolesFor(ctx context.Context, userID uint64) (model.Roles, error) {
	byUser, err := r.rolesForIDs(ctx, []uint64{userID})
	if err != nil {
		return nil, err
	}
	return byUser[userID], nil
}

func (r *UserRepo) rolesForIDs(ctx context.Context, ids []uint64) (map[uint64]model.Roles, error) {
	out := make(map[uint64]model.Roles, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := "SELECT user_id, role, object_id FROM user_roles WHERE user_id IN ("
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, id)
	}
	query += ") ORDER BY id ASC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			uid  uint64
			role model.Role
		)
		if err := rows.Scan(&uid, &role.Kind, &role.ObjectID); err != nil {
			return nil, err
		}
		out[uid] = append(out[uid], role)
	}
	return out, rows.Err()
}

// isDuplicate detects MySQL duplicate-key violations (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
