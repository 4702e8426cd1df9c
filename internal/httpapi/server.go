package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"favtunes/internal/app/users"
	"favtunes/internal/apperror"
	"favtunes/internal/auth"
	"favtunes/internal/models"
)

// SessionCookie names the cookie carrying the session token set at login.
const SessionCookie = "favtunes_session"

const maxBodyBytes = 1 << 20

var errUnauthorized = apperror.NewUnauthorized()

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Register(ctx context.Context, input models.RegisterInput) (string, error)
	Login(ctx context.Context, input models.LoginInput) (users.Session, error)
	Current(ctx context.Context, id auth.Identity) (models.User, error)
}

// FavoritesService coordinates favorites workflows for the resolved caller.
type FavoritesService interface {
	List(ctx context.Context, id auth.Identity) ([]models.Favorite, error)
	Add(ctx context.Context, id auth.Identity, input models.FavoriteInput) (models.Favorite, error)
	Delete(ctx context.Context, id auth.Identity, favoriteID string) error
}

// IdentityResolver turns a session token into an identity. Unknown or
// expired tokens resolve to the anonymous identity.
type IdentityResolver interface {
	Resolve(token string) auth.Identity
}

// Option customises a Server.
type Option func(*Server)

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) { s.secureCookies = secure }
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users         UserService
	favorites     FavoritesService
	sessions      IdentityResolver
	secureCookies bool
}

// New configures a Server with the given services.
func New(users UserService, favorites FavoritesService, sessions IdentityResolver, opts ...Option) *Server {
	s := &Server{
		users:     users,
		favorites: favorites,
		sessions:  sessions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes exposes the HTTP handlers for accounts and favorites.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	})

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/auth/session", s.handleSession).Methods(http.MethodGet)

	api.HandleFunc("/favorites", s.handleListFavorites).Methods(http.MethodGet)
	api.HandleFunc("/favorites", s.handleAddFavorite).Methods(http.MethodPost)
	api.HandleFunc("/favorites/{id}", s.handleDeleteFavorite).Methods(http.MethodDelete)

	return r
}

// identity resolves the caller from the bearer token, falling back to the
// session cookie.
func (s *Server) identity(r *http.Request) auth.Identity {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		if c, err := r.Cookie(SessionCookie); err == nil {
			token = strings.TrimSpace(c.Value)
		}
	}
	if token == "" {
		return auth.Identity{}
	}
	return s.sessions.Resolve(token)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type okResponse struct {
	Success bool `json:"success"`
}

// writeError emits the user-facing message of err; raw faults never leave
// the process.
func writeError(w http.ResponseWriter, err error, fallback string) {
	appErr := apperror.From(err, fallback)
	writeJSON(w, appErr.StatusCode(), errorResponse{Error: appErr.Message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return false
	}
	return true
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
