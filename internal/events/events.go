// Package events publishes change notifications so presentation layers can
// refresh views that show favorites.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// FavoritesChanged is the event type emitted after a favorites mutation.
const FavoritesChanged = "favorites.changed"

// FavoritesPath is the view invalidated by favorites mutations.
const FavoritesPath = "/favorites"

// Action describes the mutation behind an event.
type Action string

const (
	ActionAdded   Action = "added"
	ActionDeleted Action = "deleted"
)

// Event is a view invalidation signal.
type Event struct {
	Type       string    `json:"type"`
	Action     Action    `json:"action"`
	Path       string    `json:"path"`
	UserID     string    `json:"userId"`
	FavoriteID string    `json:"favoriteId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewFavoritesChanged builds the event for a favorites mutation.
func NewFavoritesChanged(action Action, userID, favoriteID string, at time.Time) Event {
	return Event{
		Type:       FavoritesChanged,
		Action:     action,
		Path:       FavoritesPath,
		UserID:     userID,
		FavoriteID: favoriteID,
		OccurredAt: at.UTC(),
	}
}

// Notifier delivers events to whoever renders the affected view.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, event Event) error

func (f NotifierFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Nop drops every event.
var Nop Notifier = NotifierFunc(func(context.Context, Event) error { return nil })

// LogNotifier writes events to a zerolog logger.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier returns a notifier that only logs.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "events").Logger()}
}

func (n *LogNotifier) Notify(_ context.Context, event Event) error {
	n.logger.Debug().
		Str("type", event.Type).
		Str("action", string(event.Action)).
		Str("path", event.Path).
		Str("user_id", event.UserID).
		Str("favorite_id", event.FavoriteID).
		Msg("view invalidated")
	return nil
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
