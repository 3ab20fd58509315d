package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	apperrors "github.com/jrsteele09/go-scim-gateway/internal/errors"
	"github.com/jrsteele09/go-scim-gateway/scim"
)

const uniqueViolation = "23505"

// PGRepo implements Repo using PostgreSQL. Records are stored as a JSONB
// document with the filterable attributes denormalized into columns.
type PGRepo struct {
	db *sql.DB
}

var _ Repo = (*PGRepo)(nil)

func NewPGRepo(db *sql.DB) *PGRepo {
	return &PGRepo{db: db}
}

// EnsureSchema creates the backing table if it does not exist.
func (r *PGRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS scim_users (
			id            TEXT PRIMARY KEY,
			user_name     TEXT NOT NULL UNIQUE,
			active        BOOLEAN NOT NULL DEFAULT TRUE,
			created       TIMESTAMPTZ NOT NULL,
			last_modified TIMESTAMPTZ NOT NULL,
			document      JSONB NOT NULL
		)`)
	return errors.Wrap(err, "[PGRepo.EnsureSchema] create table")
}

func (r *PGRepo) Create(ctx context.Context, user *scim.User) error {
	document, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "[PGRepo.Create] marshal document")
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO scim_users (id, user_name, active, created, last_modified, document)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.UserName, user.Active, user.Created, user.LastModified, document)
	if isUniqueViolation(err) {
		return errors.Wrap(apperrors.ErrDuplicateResource, "[PGRepo.Create] username "+user.UserName)
	}
	return errors.Wrap(err, "[PGRepo.Create] insert")
}

func (r *PGRepo) Get(ctx context.Context, id string) (*scim.User, error) {
	return r.getWhere(ctx, "id = $1", id)
}

func (r *PGRepo) GetByUserName(ctx context.Context, userName string) (*scim.User, error) {
	return r.getWhere(ctx, "user_name = $1", userName)
}

func (r *PGRepo) getWhere(ctx context.Context, clause string, arg any) (*scim.User, error) {
	var document []byte
	err := r.db.QueryRowContext(ctx, "SELECT document FROM scim_users WHERE "+clause, arg).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(apperrors.ErrResourceNotFound, "[PGRepo.getWhere] no match")
	}
	if err != nil {
		return nil, errors.Wrap(err, "[PGRepo.getWhere] query")
	}

	var user scim.User
	if err := json.Unmarshal(document, &user); err != nil {
		return nil, errors.Wrap(err, "[PGRepo.getWhere] unmarshal document")
	}
	return &user, nil
}

func (r *PGRepo) List(ctx context.Context, filter Filter, startIndex, count int) ([]*scim.User, int, error) {
	startIndex, count = ClampPage(startIndex, count)

	where := "TRUE"
	args := []any{}
	if filter.UserName != nil {
		args = append(args, *filter.UserName)
		where += " AND user_name = $1"
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		if len(args) == 1 {
			where += " AND active = $1"
		} else {
			where += " AND active = $2"
		}
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scim_users WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "[PGRepo.List] count")
	}

	limitArgs := append(args, count, startIndex-1)
	query := "SELECT document FROM scim_users WHERE " + where +
		" ORDER BY created, id" +
		" LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, limitArgs...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "[PGRepo.List] query")
	}
	defer rows.Close()

	records := make([]*scim.User, 0, count)
	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, 0, errors.Wrap(err, "[PGRepo.List] scan")
		}
		var user scim.User
		if err := json.Unmarshal(document, &user); err != nil {
			return nil, 0, errors.Wrap(err, "[PGRepo.List] unmarshal document")
		}
		records = append(records, &user)
	}
	return records, total, errors.Wrap(rows.Err(), "[PGRepo.List] rows")
}

func (r *PGRepo) Update(ctx context.Context, user *scim.User) error {
	document, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "[PGRepo.Update] marshal document")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE scim_users
		 SET user_name = $2, active = $3, last_modified = $4, document = $5
		 WHERE id = $1`,
		user.ID, user.UserName, user.Active, user.LastModified, document)
	if isUniqueViolation(err) {
		return errors.Wrap(apperrors.ErrDuplicateResource, "[PGRepo.Update] username "+user.UserName)
	}
	if err != nil {
		return errors.Wrap(err, "[PGRepo.Update] update")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[PGRepo.Update] rows affected")
	}
	if affected == 0 {
		return errors.Wrap(apperrors.ErrResourceNotFound, "[PGRepo.Update] "+user.ID)
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM scim_users WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "[PGRepo.Delete] delete")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[PGRepo.Delete] rows affected")
	}
	if affected == 0 {
		return errors.Wrap(apperrors.ErrResourceNotFound, "[PGRepo.Delete] "+id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
