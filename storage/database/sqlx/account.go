package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/somalabs/soma/core/account"
)

type accountRow struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	Name         string     `db:"name"`
	PasswordHash null.Bytes `db:"password_hash"`
	IsActive     null.Bool  `db:"is_active"`
	CreatedAt    null.Time  `db:"created_at"`
	UpdatedAt    null.Time  `db:"updated_at"`
	LastLogin    null.Time  `db:"last_login"`
}

type accountRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *sqlx.DB) *accountRepository {
	return &accountRepository{db: db}
}

func (repo accountRepository) toRow(usr account.User) accountRow {
	return accountRow{
		ID:           usr.ID,
		Email:        usr.Email,
		Name:         usr.Name,
		PasswordHash: null.BytesFrom(usr.PasswordHash),
		IsActive:     null.BoolFromPtr(usr.IsActive),
		CreatedAt:    null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo accountRepository) fromRow(row accountRow) account.User {
	return account.User{
		ID:           row.ID,
		Email:        row.Email,
		Name:         row.Name,
		PasswordHash: row.PasswordHash.Bytes,
		IsActive:     row.IsActive.Ptr(),
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
		LastLogin:    row.LastLogin.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to account.ErrNotFound
func (repo accountRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return account.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo accountRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...account.User) error {
	query := `SELECT EXISTS (SELECT 1 FROM account WHERE email = ?)`
	args := []interface{}{email}
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, usr := range excluded {
			ids = append(ids, usr.ID)
		}
		var err error
		query, args, err = sqlx.In(`SELECT EXISTS (SELECT 1 FROM account WHERE email = ? AND id NOT IN (?))`, email, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
	}
	query = repo.db.Rebind(query)

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking account uniqueness")
	}
	if exists {
		return account.ErrEmailExists
	}
	return nil
}

func (repo accountRepository) CreateAccount(ctx context.Context, usr account.User) (account.User, error) {
	usr.ID = uuid.New().String()
	row := repo.toRow(usr)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO account (id, email, name, password_hash, is_active, created_at, updated_at, last_login)
		VALUES (:id, :email, :name, :password_hash, :is_active, :created_at, :updated_at, :last_login)`,
		row)
	if err != nil {
		return account.User{}, errors.Wrap(err, "inserting account")
	}
	return repo.fromRow(row), nil
}

func (repo accountRepository) GetAccount(ctx context.Context, filter account.GetFilter) (account.User, error) {
	var row accountRow
	var err error

	switch {
	case filter.ID != "":
		if _, err = uuid.Parse(filter.ID); err != nil {
			return account.User{}, account.ErrNotFound
		}
		err = repo.db.GetContext(ctx, &row, `SELECT * FROM account WHERE id = $1`, filter.ID)
	case filter.Email != "":
		err = repo.db.GetContext(ctx, &row, `SELECT * FROM account WHERE email = $1`, filter.Email)
	default:
		return account.User{}, account.ErrNotFound
	}
	if err != nil {
		return account.User{}, repo.trapNoRowsErr(err, "finding account")
	}
	return repo.fromRow(row), nil
}

func (repo accountRepository) UpdateAccount(ctx context.Context, usr account.User) (account.User, error) {
	row := repo.toRow(usr)
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE account
		SET email = :email, name = :name, password_hash = :password_hash, is_active = :is_active,
		    updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`,
		row)
	if err != nil {
		return account.User{}, errors.Wrap(err, "updating account")
	}
	return repo.fromRow(row), nil
}
