package favview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"favtunes/internal/models"
)

func TestHTTPBackendSendsBearerAndDecodes(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	var gotBody models.FavoriteInput

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.EscapedPath()
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"success":true,"favorite":{"id":"f1","songName":"Hey Jude","artist":"The Beatles"}}`))
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"success":true,"favorites":[{"id":"f2"},{"id":"f1"}]}`))
		case http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":"Favorite not found"}`))
		}
	}))
	defer srv.Close()

	b := NewHTTPBackend(srv.URL+"/", "tok", srv.Client())
	ctx := context.Background()

	res := b.Add(ctx, models.FavoriteInput{SongName: "Hey Jude", Artist: "The Beatles"})
	require.True(t, res.Success)
	assert.Equal(t, "f1", res.Favorite.ID)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "/api/v1/favorites", gotPath)
	assert.Equal(t, "Hey Jude", gotBody.SongName)

	res = b.List(ctx)
	require.True(t, res.Success)
	assert.Equal(t, []string{"f2", "f1"}, ids(res.Favorites))

	res = b.Delete(ctx, "a/b")
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/v1/favorites/a%2Fb", gotPath)
	assert.False(t, res.Success)
	assert.Equal(t, "Favorite not found", res.Error)
}

func TestHTTPBackendTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	b := NewHTTPBackend(url, "tok", nil)
	ctx := context.Background()

	assert.Equal(t, Result{Error: DeleteFailed}, b.Delete(ctx, "x"))
	assert.Equal(t, Result{Error: AddFailed}, b.Add(ctx, models.FavoriteInput{}))
	assert.Equal(t, Result{Error: FetchFailed}, b.List(ctx))
}

func TestHTTPBackendUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	res := NewHTTPBackend(srv.URL, "", srv.Client()).List(context.Background())
	assert.Equal(t, Result{Error: FetchFailed}, res)
}

func TestManagerRollsBackAgainstHTTPBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":"Unauthorized"}`))
	}))
	defer srv.Close()

	m := New(NewHTTPBackend(srv.URL, "tok", srv.Client()), []models.Favorite{{ID: "A"}, {ID: "B"}, {ID: "C"}})
	notice, err := m.Delete(context.Background(), "B")
	require.NoError(t, err)
	assert.Equal(t, "Unauthorized", notice.Message)
	assert.Equal(t, []string{"A", "B", "C"}, ids(m.Favorites()))
}
