package users_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/go-scim-gateway/internal/errors"
	"github.com/jrsteele09/go-scim-gateway/internal/utils"
	"github.com/jrsteele09/go-scim-gateway/users"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := users.NewPGRepo(db)

	user := newUser("id-1", "jane@example.com", true, time.Now())
	mock.ExpectExec("INSERT INTO scim_users").
		WithArgs(user.ID, user.UserName, user.Active, user.Created, user.LastModified, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), user))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoCreateDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := users.NewPGRepo(db)

	user := newUser("id-1", "jane@example.com", true, time.Now())
	mock.ExpectExec("INSERT INTO scim_users").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	require.ErrorIs(t, repo.Create(context.Background(), user), apperrors.ErrDuplicateResource)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := users.NewPGRepo(db)

	user := newUser("id-1", "jane@example.com", true, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	document, err := json.Marshal(user)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT document FROM scim_users WHERE id").
		WithArgs("id-1").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(document))

	got, err := repo.Get(context.Background(), "id-1")
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", got.UserName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := users.NewPGRepo(db)

	mock.ExpectQuery("SELECT document FROM scim_users WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"document"}))

	_, err = repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoListWithFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := users.NewPGRepo(db)

	user := newUser("id-1", "jane@example.com", true, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	document, err := json.Marshal(user)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM scim_users").
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT document FROM scim_users").
		WithArgs(true, 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(document))

	records, total, err := repo.List(context.Background(), users.Filter{Active: utils.Ptr(true)}, 1, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, records, 1)
	require.Equal(t, "id-1", records[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoUpdateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := users.NewPGRepo(db)

	user := newUser("missing", "jane@example.com", true, time.Now())
	mock.ExpectExec("UPDATE scim_users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.Update(context.Background(), user), apperrors.ErrResourceNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := users.NewPGRepo(db)

	mock.ExpectExec("DELETE FROM scim_users WHERE id").
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM scim_users WHERE id").
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "id-1"))
	require.ErrorIs(t, repo.Delete(context.Background(), "id-1"), apperrors.ErrResourceNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
