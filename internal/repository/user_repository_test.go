package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jsbarre1/jwt-pizza/internal/auth"
	"github.com/jsbarre1/jwt-pizza/internal/model"
)

func TestUserCreateGrantsDinerRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash) VALUES (?,?,?)")).
		WithArgs("Kai Chen", "d@jwt.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_roles (user_id, role, object_id) VALUES (?,?,0)")).
		WithArgs(int64(3), model.RoleDiner).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	u, err := repo.Create(context.Background(), "Kai Chen", "D@jwt.com ", "a", bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), u.ID)
	assert.Equal(t, "d@jwt.com", u.Email)
	assert.Equal(t, model.Roles{{Kind: model.RoleDiner}}, u.Roles)
	assert.True(t, auth.VerifyPassword(u.PasswordHash, "a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'd@jwt.com'"))
	mock.ExpectRollback()

	_, err = repo.Create(context.Background(), "Kai Chen", "d@jwt.com", "a", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmailWithRoles(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,name,email,password_hash FROM users WHERE email=? LIMIT 1")).
		WithArgs("a@jwt.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash"}).
			AddRow(1, "pizza admin", "a@jwt.com", "hash"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, role, object_id FROM user_roles WHERE user_id IN (?)")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "role", "object_id"}).
			AddRow(1, "admin", 0).
			AddRow(1, "franchisee", 2))

	u, err := repo.GetByEmail(context.Background(), "A@jwt.com")
	require.NoError(t, err)
	assert.True(t, u.Roles.IsAdmin())
	assert.True(t, u.Roles.IsFranchiseeOf(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT id,name,email,password_hash FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash"}))

	_, err = repo.GetByEmail(context.Background(), "nobody@jwt.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserListPagination(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,name,email FROM users WHERE 1=1 ORDER BY id ASC LIMIT ? OFFSET ?")).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(1, "pizza admin", "a@jwt.com").
			AddRow(3, "Kai Chen", "d@jwt.com"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, role, object_id FROM user_roles WHERE user_id IN (?,?)")).
		WithArgs(uint64(1), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "role", "object_id"}).
			AddRow(1, "admin", 0).
			AddRow(3, "diner", 0))

	users, more, err := repo.List(context.Background(), 0, 10, "")
	require.NoError(t, err)
	assert.False(t, more)
	require.Len(t, users, 2)
	assert.True(t, users[0].Roles.IsAdmin())
	assert.Equal(t, model.Roles{{Kind: model.RoleDiner}}, users[1].Roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDeleteMissingReportsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM user_roles").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = repo.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
