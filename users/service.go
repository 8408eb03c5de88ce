// Package users implements account registration and the current-user lookup.
// The service holds the registration flow (validate, check the email, derive the
// avatar, hash, persist, issue a token); handlers only translate HTTP to and from it.
package users

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/user/devconnector-go/apperror"
	"github.com/user/devconnector-go/auth"
	"github.com/user/devconnector-go/metrics"
)

// MsgUserExists is the client message for a duplicate registration.
const MsgUserExists = "User already exists"

// AvatarGenerator derives an avatar URL from an email address.
type AvatarGenerator interface {
	URL(email string) string
}

// UserService provides account registration and lookup.
type UserService struct {
	store     Store
	validator *RequestValidator
	avatars   AvatarGenerator
	hasher    auth.PasswordHasher
	tokens    auth.TokenIssuer
	recorder  metrics.RegistrationRecorder
	logger    *zap.Logger
}

// Deps groups the collaborators of UserService.
type Deps struct {
	Store    Store
	Avatars  AvatarGenerator
	Hasher   auth.PasswordHasher
	Tokens   auth.TokenIssuer
	Recorder metrics.RegistrationRecorder // optional
	Logger   *zap.Logger                  // optional
}

// NewUserService creates a new UserService.
func NewUserService(deps Deps) *UserService {
	if deps.Recorder == nil {
		deps.Recorder = metrics.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &UserService{
		store:     deps.Store,
		validator: NewRequestValidator(),
		avatars:   deps.Avatars,
		hasher:    deps.Hasher,
		tokens:    deps.Tokens,
		recorder:  deps.Recorder,
		logger:    deps.Logger,
	}
}

func userExists() *apperror.AppError {
	return apperror.NewConflictError(MsgUserExists, nil).WithStatus(http.StatusBadRequest)
}

// Register creates an account and returns a session token for it.
// Validation and duplicate-email failures are client errors and leave the store
// untouched; anything else is a server error.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (string, error) {
	token, err := s.register(ctx, req)
	switch {
	case err == nil:
		s.recorder.ObserveRegistration(metrics.OutcomeCreated)
	case apperror.IsValidationError(err):
		s.recorder.ObserveRegistration(metrics.OutcomeInvalid)
	case apperror.IsConflictError(err):
		s.recorder.ObserveRegistration(metrics.OutcomeDuplicate)
	default:
		s.recorder.ObserveRegistration(metrics.OutcomeError)
	}
	return token, err
}

func (s *UserService) register(ctx context.Context, req RegisterRequest) (string, error) {
	if err := s.validator.ValidateRegister(&req); err != nil {
		return "", err
	}

	// Fast path for the common duplicate. The unique index still decides under a race.
	existing, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", apperror.NewDatabaseError("failed to look up user", err)
	}
	if existing != nil {
		return "", userExists()
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return "", apperror.NewInternalError("failed to hash password", err)
	}

	user := &User{
		Name:         req.Name,
		Email:        req.Email,
		Avatar:       s.avatars.URL(req.Email),
		PasswordHash: hash,
	}
	if err := s.store.Insert(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return "", userExists()
		}
		return "", apperror.NewDatabaseError("failed to create user", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", apperror.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return token, nil
}

// GetUser returns the account with the given id.
func (s *UserService) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperror.NewNotFoundError("User not found", err)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	return user, nil
}
