package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/somalabs/soma/core/account"
)

type accountRepository struct {
	db *accountTable
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db.account}
}

func (repo *accountRepository) query() []account.User {
	users := make([]account.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		users = append(users, *u)
	}
	return users
}

func (repo *accountRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...account.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exclIDs := make(map[string]struct{}, len(excluded))
	for _, usr := range excluded {
		exclIDs[usr.ID] = struct{}{}
	}

	for _, usr := range repo.query() {
		if _, ok := exclIDs[usr.ID]; ok {
			continue
		}
		if usr.Email == email {
			return account.ErrEmailExists
		}
	}
	return nil
}

func (repo *accountRepository) CreateAccount(ctx context.Context, usr account.User) (account.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr.ID = uuid.New().String()
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *accountRepository) GetAccount(ctx context.Context, filter account.GetFilter) (account.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.table[filter.ID]; ok {
			return *usr, nil
		}
		return account.User{}, account.ErrNotFound
	}
	for _, usr := range repo.query() {
		if usr.Email == filter.Email {
			return usr, nil
		}
	}
	return account.User{}, account.ErrNotFound
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, usr account.User) (account.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origUsr, ok := repo.db.table[usr.ID]
	if !ok {
		return account.User{}, account.ErrNotFound
	}
	// only save set fields
	if usr.PasswordHash != nil {
		origUsr.PasswordHash = usr.PasswordHash
	}
	if usr.IsActive != nil {
		origUsr.IsActive = usr.IsActive
	}
	if !usr.LastLogin.IsZero() {
		origUsr.LastLogin = usr.LastLogin
	}
	origUsr.Email = usr.Email
	origUsr.Name = usr.Name
	if !usr.UpdatedAt.IsZero() {
		origUsr.UpdatedAt = usr.UpdatedAt
	}

	repo.db.table[usr.ID] = origUsr
	return *origUsr, nil
}
