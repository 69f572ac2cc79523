// Package auth registers users and verifies their credentials.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/openfolio/brokerd/ledger"
)

var (
	// ErrValidation marks missing or mismatched registration fields.
	ErrValidation = errors.New("invalid input")
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords, so login failures don't leak which one it was.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrDuplicateUser indicates the username is already registered.
	ErrDuplicateUser = ledger.ErrDuplicateUser
)

// Users is the slice of the ledger the credential store needs.
type Users interface {
	CreateUser(ctx context.Context, username, passwordHash string, startingCash decimal.Decimal) (ledger.User, error)
	GetUserByName(ctx context.Context, username string) (ledger.User, error)
}

// Service creates accounts and authenticates logins.
type Service struct {
	users        Users
	startingCash decimal.Decimal
	bcryptCost   int
	log          *zap.Logger
}

// New returns a credential service. Accounts are seeded with
// startingCash. A non-positive bcryptCost falls back to the library
// default.
func New(users Users, startingCash decimal.Decimal, bcryptCost int, log *zap.Logger) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:        users,
		startingCash: startingCash,
		bcryptCost:   bcryptCost,
		log:          log,
	}
}

// Register creates a new user with a salted one-way password hash and
// the configured starting cash balance.
func (s *Service) Register(ctx context.Context, username, password, confirmation string) (ledger.User, error) {
	if username == "" {
		return ledger.User{}, fmt.Errorf("username is required: %w", ErrValidation)
	}
	if password == "" {
		return ledger.User{}, fmt.Errorf("password is required: %w", ErrValidation)
	}
	if password != confirmation {
		return ledger.User{}, fmt.Errorf("password and confirmation do not match: %w", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return ledger.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.CreateUser(ctx, username, string(hash), s.startingCash)
	if err != nil {
		return ledger.User{}, err
	}

	s.log.Info("user registered", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// Authenticate verifies username and password and returns the user.
func (s *Service) Authenticate(ctx context.Context, username, password string) (ledger.User, error) {
	if username == "" || password == "" {
		return ledger.User{}, ErrInvalidCredentials
	}

	u, err := s.users.GetUserByName(ctx, username)
	if err != nil {
		if errors.Is(err, ledger.ErrUserNotFound) {
			return ledger.User{}, ErrInvalidCredentials
		}
		return ledger.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return ledger.User{}, ErrInvalidCredentials
	}
	return u, nil
}
