package account

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/somalabs/soma/core"
	"github.com/somalabs/soma/core/policy"
)

var (
	// errors
	ErrNotFound    = errors.New("account not found")
	ErrEmailExists = errors.New("an account with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excluded ...User) error
		CreateAccount(ctx context.Context, usr User) (User, error)
		GetAccount(ctx context.Context, filter GetFilter) (User, error)
		UpdateAccount(ctx context.Context, usr User) (User, error)
	}

	ServiceInterface interface {
		CheckUniqueness(email string, excluded ...User) error
		Register(ctx context.Context, na NewAccount) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		GetProfile(ctx context.Context, callerID, id string) (User, error)
		UpdateProfile(ctx context.Context, callerID, id string, up UpdateProfile) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo    Repository
		authz   policy.Authorizer
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, authz policy.Authorizer, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		authz:   authz,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *Service) CheckUniqueness(email string, excluded ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, excluded...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register provisions exactly one account for a new identity: profile fields
// are populated from the signup payload (display name defaults to "") and a
// welcome email is sent. If the insert fails the whole registration fails.
func (svc *Service) Register(ctx context.Context, na NewAccount) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Email:     na.Email,
		Name:      na.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	if err := usr.SetPassword(na.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}

	usr, err := svc.repo.CreateAccount(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating account")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome to " + svc.conf.AppName,
		TemplateName: "welcome",
		TemplateData: struct{ Name string }{usr.Name},
	})
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetAccount(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetAccount(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

// GetProfile returns the profile identified by id, provided the caller owns it.
func (svc *Service) GetProfile(ctx context.Context, callerID, id string) (User, error) {
	if err := svc.authz.Authorize(policy.Request{
		Entity:   policy.EntityAccount,
		Action:   policy.ActionRead,
		CallerID: callerID,
		OwnerID:  id,
	}); err != nil {
		return User{}, err
	}
	return svc.repo.GetAccount(ctx, GetFilter{ID: id})
}

// UpdateProfile mutates the caller's own profile fields.
func (svc *Service) UpdateProfile(ctx context.Context, callerID, id string, up UpdateProfile) (User, error) {
	if err := svc.authz.Authorize(policy.Request{
		Entity:   policy.EntityAccount,
		Action:   policy.ActionUpdate,
		CallerID: callerID,
		OwnerID:  id,
	}); err != nil {
		return User{}, err
	}

	usr, err := svc.repo.GetAccount(ctx, GetFilter{ID: id})
	if err != nil {
		return User{}, err
	}
	if up.Name != "" {
		usr.Name = up.Name
	}
	if up.Password != "" {
		if err := usr.SetPassword(up.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAccount(ctx, usr)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateAccount(ctx, usr)
}
