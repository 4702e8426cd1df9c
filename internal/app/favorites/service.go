package favorites

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"favtunes/internal/apperror"
	"favtunes/internal/auth"
	"favtunes/internal/events"
	"favtunes/internal/logging"
	"favtunes/internal/models"
	"favtunes/internal/store"
	"favtunes/internal/validation"
)

const (
	NotFoundMessage = "Favorite not found"
	FetchError      = "Failed to fetch favorites"
	AddError        = "Failed to add favorite"
	DeleteError     = "Failed to delete favorite"
)

// Store defines persistence operations required for favorites workflows.
// FavoritesByOwner carries no ordering guarantee.
type Store interface {
	CreateFavorite(ctx context.Context, fav models.Favorite) (models.Favorite, error)
	FavoriteByID(ctx context.Context, id string) (models.Favorite, error)
	FavoritesByOwner(ctx context.Context, ownerID string) ([]models.Favorite, error)
	DeleteFavorite(ctx context.Context, id, ownerID string) error
}

// Service describes high level favorites operations used by HTTP handlers.
type Service interface {
	List(ctx context.Context, id auth.Identity) ([]models.Favorite, error)
	Add(ctx context.Context, id auth.Identity, input models.FavoriteInput) (models.Favorite, error)
	Delete(ctx context.Context, id auth.Identity, favoriteID string) error
}

// Option customises the service.
type Option func(*service)

// WithNotifier sets where change events are sent.
func WithNotifier(n events.Notifier) Option {
	return func(s *service) { s.notifier = n }
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithIDGenerator overrides how favorite IDs are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *service) { s.newID = newID }
}

// WithLogger sets the logger used for faults that are hidden from callers.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *service) { s.logger = logger }
}

type service struct {
	store    Store
	notifier events.Notifier
	now      func() time.Time
	newID    func() string
	logger   zerolog.Logger
}

// New constructs a favorites Service backed by the given store.
func New(st Store, opts ...Option) Service {
	s := &service{
		store:    st,
		notifier: events.Nop,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "favorites").Logger()
	return s
}

func (s *service) List(ctx context.Context, id auth.Identity) ([]models.Favorite, error) {
	if id.Anonymous() {
		return nil, apperror.NewUnauthorized()
	}
	if err := ctx.Err(); err != nil {
		return nil, s.unexpected(ctx, err, "list", FetchError)
	}

	favs, err := s.store.FavoritesByOwner(ctx, id.UserID)
	if err != nil {
		return nil, s.unexpected(ctx, err, "list", FetchError)
	}

	sortNewestFirst(favs)
	return favs, nil
}

func (s *service) Add(ctx context.Context, id auth.Identity, input models.FavoriteInput) (models.Favorite, error) {
	if id.Anonymous() {
		return models.Favorite{}, apperror.NewUnauthorized()
	}

	input, err := validation.Favorite(input)
	if err != nil {
		return models.Favorite{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.Favorite{}, s.unexpected(ctx, err, "add", AddError)
	}

	fav, err := s.store.CreateFavorite(ctx, models.Favorite{
		ID:        s.newID(),
		SongName:  input.SongName,
		Artist:    input.Artist,
		UserID:    id.UserID,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return models.Favorite{}, s.unexpected(ctx, err, "add", AddError)
	}

	s.notify(ctx, events.ActionAdded, fav)
	return fav, nil
}

// Delete checks existence first and ownership second, then removes the row
// with a delete conditioned on both id and owner.
func (s *service) Delete(ctx context.Context, id auth.Identity, favoriteID string) error {
	if id.Anonymous() {
		return apperror.NewUnauthorized()
	}

	favoriteID = strings.TrimSpace(favoriteID)
	if _, err := uuid.Parse(favoriteID); err != nil {
		return apperror.NewNotFound(NotFoundMessage)
	}
	if err := ctx.Err(); err != nil {
		return s.unexpected(ctx, err, "delete", DeleteError)
	}

	fav, err := s.store.FavoriteByID(ctx, favoriteID)
	if err != nil {
		if errors.Is(err, store.ErrFavoriteNotFound) {
			return apperror.NewNotFound(NotFoundMessage)
		}
		return s.unexpected(ctx, err, "delete", DeleteError)
	}

	if !id.Owns(fav.UserID) {
		return apperror.NewUnauthorized()
	}

	if err := s.store.DeleteFavorite(ctx, favoriteID, id.UserID); err != nil {
		if errors.Is(err, store.ErrFavoriteNotFound) {
			return apperror.NewNotFound(NotFoundMessage)
		}
		return s.unexpected(ctx, err, "delete", DeleteError)
	}

	s.notify(ctx, events.ActionDeleted, fav)
	return nil
}

func (s *service) notify(ctx context.Context, action events.Action, fav models.Favorite) {
	event := events.NewFavoritesChanged(action, fav.UserID, fav.ID, s.now())
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn().Err(err).
			Str("action", string(action)).
			Str("favorite_id", fav.ID).
			Msg("notify favorites change")
	}
}

func (s *service) unexpected(ctx context.Context, err error, op, message string) error {
	s.logger.Error().Err(err).
		Str("op", op).
		Str("request_id", logging.RequestID(ctx)).
		Msg(message)
	return apperror.NewUnexpected(message, err)
}

// sortNewestFirst orders by CreatedAt descending, breaking ties by ID
// descending so equal timestamps still give a stable order.
func sortNewestFirst(favs []models.Favorite) {
	slices.SortFunc(favs, func(a, b models.Favorite) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
}
