package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/farmlog-app/farmlog-backend/pkg/config"
	"github.com/farmlog-app/farmlog-backend/pkg/db"
	"github.com/farmlog-app/farmlog-backend/pkg/db/models"
	pkgerrors "github.com/farmlog-app/farmlog-backend/pkg/errors"
	"github.com/farmlog-app/farmlog-backend/pkg/security"
	"gorm.io/gorm"
)

// Service defines the account flows needed by the HTTP layer.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) error
	Login(ctx context.Context, req LoginRequest) (bool, error)
	IsAvailable(ctx context.Context, userID string) (bool, error)
}

type repository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByUserID(ctx context.Context, userID string) (*models.Account, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)
}

type service struct {
	repo     repository
	password config.PasswordConfig
	retry    config.DBConfig
}

// ServiceParams bundles the dependencies required to build an account service.
type ServiceParams struct {
	Repo           repository
	PasswordConfig config.PasswordConfig
	RetryConfig    config.DBConfig
}

// NewService constructs an account service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	return &service{
		repo:     params.Repo,
		password: params.PasswordConfig,
		retry:    params.RetryConfig,
	}, nil
}

// Register hashes the supplied password and inserts the account. A taken
// user_id surfaces as CONFLICT; raw secrets are never stored.
func (s *service) Register(ctx context.Context, req RegisterRequest) error {
	hash, err := security.HashPassword(req.Password, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	account := &models.Account{
		UserID:       req.UserID,
		PasswordHash: hash,
		Name:         req.Name,
		Email:        req.Email,
	}

	err = db.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		return s.repo.Create(ctx, account)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") || errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user_id already registered")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert account")
	}
	return nil
}

// Login reports whether the credential pair matches a stored account. An
// unknown user_id and a wrong password are indistinguishable to the caller.
func (s *service) Login(ctx context.Context, req LoginRequest) (bool, error) {
	var account *models.Account
	err := db.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		var inner error
		account, inner = s.repo.FindByUserID(ctx, req.UserID)
		return inner
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}

	ok, err := security.VerifyPassword(req.Password, account.PasswordHash)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	return ok, nil
}

// IsAvailable reports whether no account holds the given user_id yet.
func (s *service) IsAvailable(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := db.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		var inner error
		count, inner = s.repo.CountByUserID(ctx, userID)
		return inner
	})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count accounts")
	}
	return count == 0, nil
}
