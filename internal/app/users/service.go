package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"favtunes/internal/apperror"
	"favtunes/internal/auth"
	"favtunes/internal/logging"
	"favtunes/internal/models"
	"favtunes/internal/store"
	"favtunes/internal/validation"
)

const (
	DuplicateEmailMessage = "User with this email already exists"
	RegisterError         = "Failed to register user"
	LoginError            = "Invalid email or password"
	SessionError          = "Failed to load session"
)

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id string) (models.User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// SessionIssuer mints session tokens for authenticated users.
type SessionIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

// Service exposes user-related workflows.
type Service interface {
	Register(ctx context.Context, input models.RegisterInput) (string, error)
	Login(ctx context.Context, input models.LoginInput) (Session, error)
	Current(ctx context.Context, id auth.Identity) (models.User, error)
}

type service struct {
	store    Store
	hasher   PasswordHasher
	sessions SessionIssuer
	newID    func() string
	logger   zerolog.Logger
}

// New wires a Service backed by the provided collaborators.
func New(st Store, hasher PasswordHasher, sessions SessionIssuer) Service {
	return &service{
		store:    st,
		hasher:   hasher,
		sessions: sessions,
		newID:    func() string { return uuid.NewString() },
		logger:   log.Logger.With().Str("component", "users").Logger(),
	}
}

// Register validates input, rejects known emails before hashing, and
// creates the user. The unique index catches registrations racing past the
// lookup.
func (s *service) Register(ctx context.Context, input models.RegisterInput) (string, error) {
	input, err := validation.Register(input)
	if err != nil {
		return "", err
	}

	_, err = s.store.UserByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return "", apperror.NewConflict(DuplicateEmailMessage)
	case !errors.Is(err, store.ErrUserNotFound):
		return "", s.unexpected(ctx, err, "register", RegisterError)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return "", s.unexpected(ctx, err, "register", RegisterError)
	}

	name := input.Name
	user, err := s.store.CreateUser(ctx, models.User{
		ID:           s.newID(),
		Name:         &name,
		Email:        input.Email,
		PasswordHash: &hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return "", apperror.NewConflict(DuplicateEmailMessage)
		}
		return "", s.unexpected(ctx, err, "register", RegisterError)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return user.ID, nil
}

func (s *service) Login(ctx context.Context, input models.LoginInput) (Session, error) {
	input, err := validation.Login(input)
	if err != nil {
		return Session{}, err
	}

	user, err := s.store.UserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			_ = s.hasher.Compare("", input.Password)
			return Session{}, apperror.New(apperror.Unauthorized, LoginError, nil)
		}
		return Session{}, s.unexpected(ctx, err, "login", LoginError)
	}

	hash := ""
	if user.PasswordHash != nil {
		hash = *user.PasswordHash
	}
	if err := s.hasher.Compare(hash, input.Password); err != nil {
		return Session{}, apperror.New(apperror.Unauthorized, LoginError, nil)
	}

	token, expiresAt, err := s.sessions.Issue(user.ID)
	if err != nil {
		return Session{}, s.unexpected(ctx, err, "login", LoginError)
	}

	return Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Current returns the user behind a resolved session. A session whose user
// no longer exists, or whose user id is not a UUID, is treated as no session.
func (s *service) Current(ctx context.Context, id auth.Identity) (models.User, error) {
	if id.Anonymous() {
		return models.User{}, apperror.NewUnauthorized()
	}
	if _, err := uuid.Parse(id.UserID); err != nil {
		return models.User{}, apperror.NewUnauthorized()
	}
	user, err := s.store.UserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return models.User{}, apperror.NewUnauthorized()
		}
		return models.User{}, s.unexpected(ctx, err, "current", SessionError)
	}
	return user, nil
}

func (s *service) unexpected(ctx context.Context, err error, op, message string) error {
	s.logger.Error().Err(err).
		Str("op", op).
		Str("request_id", logging.RequestID(ctx)).
		Msg(message)
	return apperror.NewUnexpected(message, err)
}
