package main

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"favtunes/internal/app/favorites"
	"favtunes/internal/app/users"
	"favtunes/internal/auth"
	"favtunes/internal/config"
	"favtunes/internal/events"
	"favtunes/internal/http/middleware"
	"favtunes/internal/httpapi"
	"favtunes/internal/store"
)

func newHTTPHandler(cfg *config.Config, dataStore *store.Store, notifier events.Notifier) http.Handler {
	sessions := auth.NewSessions(cfg.Security.JWTSecret, cfg.Security.SessionTTL)

	userSvc := users.New(dataStore, auth.NewHasher(bcrypt.DefaultCost), sessions)
	favoritesSvc := favorites.New(dataStore, favorites.WithNotifier(notifier))

	api := httpapi.New(userSvc, favoritesSvc, sessions, httpapi.WithSecureCookies(cfg.Security.CookieSecure))

	return middleware.Chain(api.Routes(),
		middleware.RequestLogging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
}

// newNotifier always logs favorites changes and also publishes them to
// RabbitMQ when AMQP_URL is set.
func newNotifier(cfg *config.Config) (events.Notifier, func() error, error) {
	logNotifier := events.NewLogNotifier(log.Logger)
	if cfg.Events.AMQPURL == "" {
		return logNotifier, func() error { return nil }, nil
	}

	publisher, closeFn, err := events.DialAMQP(cfg.Events.AMQPURL, cfg.Events.Exchange)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("exchange", cfg.Events.Exchange).Msg("publishing favorites events to RabbitMQ")
	return events.Multi{logNotifier, publisher}, closeFn, nil
}
