package favview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"favtunes/internal/models"
)

const favoritesPath = "/api/v1/favorites"

// HTTPBackend talks to the favorites HTTP API with a bearer token.
type HTTPBackend struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHTTPBackend creates a backend for the API rooted at baseURL. A nil
// client gets a default with a 30s timeout.
func NewHTTPBackend(baseURL, token string, client *http.Client) *HTTPBackend {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPBackend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: client,
		logger:     log.Logger.With().Str("component", "favview").Logger(),
	}
}

func (b *HTTPBackend) List(ctx context.Context) Result {
	return b.do(ctx, http.MethodGet, favoritesPath, nil, FetchFailed)
}

func (b *HTTPBackend) Add(ctx context.Context, input models.FavoriteInput) Result {
	return b.do(ctx, http.MethodPost, favoritesPath, input, AddFailed)
}

func (b *HTTPBackend) Delete(ctx context.Context, id string) Result {
	return b.do(ctx, http.MethodDelete, favoritesPath+"/"+url.PathEscape(id), nil, DeleteFailed)
}

// do folds transport and decoding failures into an unsuccessful Result
// carrying fallback.
func (b *HTTPBackend) do(ctx context.Context, method, path string, payload any, fallback string) Result {
	res, err := b.request(ctx, method, path, payload)
	if err != nil {
		b.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("favorites request failed")
		return Result{Error: fallback}
	}
	return res
}

func (b *HTTPBackend) request(ctx context.Context, method, path string, payload any) (Result, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return Result{}, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("decode response (%s): %w", resp.Status, err)
	}
	return res, nil
}
