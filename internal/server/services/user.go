// Package services contains server-side business logic. This file implements
// UserService, which handles signup, login and access-token reissue on top of
// the user store, the refresh-token store and the token issuer/verifier.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(password, hash string) bool
}

// UserService provides authentication-related operations:
// - Signup: validate and create users
// - Login: verify credentials and mint a token pair
// - Reissue: exchange a live refresh token for a new access token
type UserService struct {
	db            dbx.DBTX
	tx            dbx.Transactor
	repomanager   repomanager.RepositoryManager
	hasher        PasswordHasher
	issuer        *auth.Issuer
	verifier      *auth.Verifier
	refreshTokens refreshtokens.Store
	storeTimeout  time.Duration
	logger        logging.Logger
}

// NewUserService wires a UserService from its collaborators.
func NewUserService(
	db dbx.DBTX,
	tx dbx.Transactor,
	m repomanager.RepositoryManager,
	hasher PasswordHasher,
	issuer *auth.Issuer,
	verifier *auth.Verifier,
	refreshTokens refreshtokens.Store,
	storeTimeout time.Duration,
	logger logging.Logger,
) *UserService {
	return &UserService{
		db:            db,
		tx:            tx,
		repomanager:   m,
		hasher:        hasher,
		issuer:        issuer,
		verifier:      verifier,
		refreshTokens: refreshTokens,
		storeTimeout:  storeTimeout,
		logger:        logger.With("module", "users"),
	}
}

// Signup validates req, rejects taken usernames and nicknames, and creates
// the user with the default authority. Nothing is written when a check fails.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	var created *models.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		taken, err := repo.ExistsByUsername(ctx, req.Username)
		if err != nil {
			return storeError(err)
		}
		if taken {
			return common.ErrDuplicateUsername
		}

		taken, err = repo.ExistsByNickname(ctx, req.Nickname)
		if err != nil {
			return storeError(err)
		}
		if taken {
			return common.ErrDuplicateNickname
		}

		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrValidation, err)
		}

		created, err = repo.Create(ctx, &models.User{
			UserName:     req.Username,
			Nickname:     req.Nickname,
			PasswordHash: hash,
			Authority:    common.DefaultAuthority,
		})
		if err != nil {
			if errors.Is(err, common.ErrDuplicateUsername) || errors.Is(err, common.ErrDuplicateNickname) {
				return err
			}
			return storeError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", created.ID, "username", created.UserName)
	return created, nil
}

// Login checks the credentials and returns a fresh access/refresh pair. The
// refresh token is recorded in the refresh-token store before it is returned.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*TokenPair, *models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	user, err := s.findUser(ctx, func(ctx context.Context) (*models.User, error) {
		return s.repomanager.Users(s.db).FindByUsername(ctx, req.Username)
	})
	if err != nil {
		return nil, nil, err
	}

	if !s.hasher.Matches(req.Password, user.PasswordHash) {
		return nil, nil, common.ErrInvalidCredentials
	}

	access, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.issuer.IssueRefreshToken(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, user, nil
}

// Reissue returns a new access token for the owner of refreshToken. The
// refresh token must still have a valid record; it is not rotated.
func (s *UserService) Reissue(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", common.ErrInvalidRefreshToken
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	value, err := s.refreshTokens.Get(storeCtx, refreshToken)
	cancel()
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidRefreshToken
		}
		return "", storeError(err)
	}
	if value != common.RefreshTokenValidFlag {
		return "", common.ErrInvalidRefreshToken
	}

	userID, err := s.verifier.UserIDFromRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.findUser(ctx, func(ctx context.Context) (*models.User, error) {
		return s.repomanager.Users(s.db).FindByID(ctx, userID)
	})
	if err != nil {
		return "", err
	}

	return s.issuer.IssueAccessToken(user)
}

// RefreshTokenLifetime is the lifetime of refresh tokens minted by Login.
func (s *UserService) RefreshTokenLifetime() time.Duration {
	return s.issuer.RefreshTokenLifetime()
}

func (s *UserService) findUser(ctx context.Context, find func(context.Context) (*models.User, error)) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := find(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, storeError(err)
	}
	return user, nil
}

func storeError(err error) error {
	return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
}
