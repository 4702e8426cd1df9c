package favview

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"favtunes/internal/models"
)

func fav(id string) models.Favorite {
	return models.Favorite{ID: id, SongName: "song " + id, Artist: "artist", UserID: "u1", CreatedAt: time.Unix(0, 0).UTC()}
}

func ids(list []models.Favorite) []string {
	out := make([]string, 0, len(list))
	for _, f := range list {
		out = append(out, f.ID)
	}
	return out
}

type fakeBackend struct {
	list   Result
	add    Result
	delete Result

	deleted []string
}

func (f *fakeBackend) List(context.Context) Result { return f.list }

func (f *fakeBackend) Add(_ context.Context, _ models.FavoriteInput) Result { return f.add }

func (f *fakeBackend) Delete(_ context.Context, id string) Result {
	f.deleted = append(f.deleted, id)
	return f.delete
}

func TestDeleteFailureRestoresOrder(t *testing.T) {
	backend := &fakeBackend{delete: Result{Success: false, Error: "Unauthorized"}}
	m := New(backend, []models.Favorite{fav("A"), fav("B"), fav("C")})

	notice, err := m.Delete(context.Background(), "B")
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, ids(m.Favorites()))
	assert.Equal(t, Notice{Kind: NoticeError, Message: "Unauthorized"}, notice)
	assert.Equal(t, "Unauthorized", m.LastError())
	assert.Equal(t, Idle, m.State().Phase)
	assert.Equal(t, []string{"B"}, backend.deleted)
}

func TestDeleteRemovesOptimistically(t *testing.T) {
	m := New(nil, []models.Favorite{fav("A"), fav("B"), fav("C")})

	op, err := m.BeginDelete("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, ids(m.Favorites()), "removed before the server answers")
	assert.Equal(t, State{Phase: Deleting, Op: op, DeletingID: "B"}, m.State())

	require.NoError(t, m.CompleteDelete(op, Result{Success: true}))
	assert.Equal(t, []string{"A", "C"}, ids(m.Favorites()))
	assert.Equal(t, Notice{Kind: NoticeSuccess, Message: DeletedMessage}, m.Notice())
	assert.Equal(t, State{Phase: Idle}, m.State())
}

func TestDeleteFailureWithoutMessageUsesFallback(t *testing.T) {
	m := New(&fakeBackend{}, []models.Favorite{fav("A")})

	notice, err := m.Delete(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, DeleteFailed, notice.Message)
	assert.Equal(t, "", m.LastError())
	assert.Equal(t, []string{"A"}, ids(m.Favorites()))
}

func TestAddPrependsOnSuccessOnly(t *testing.T) {
	m := New(nil, []models.Favorite{fav("A")})

	op, err := m.BeginAdd()
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids(m.Favorites()), "add is not optimistic")
	assert.Equal(t, Adding, m.State().Phase)

	require.NoError(t, m.CompleteAdd(op, Result{Success: true, Favorite: fav("N")}))
	assert.Equal(t, []string{"N", "A"}, ids(m.Favorites()))
	assert.Equal(t, AddedMessage, m.Notice().Message)

	op, err = m.BeginAdd()
	require.NoError(t, err)
	require.NoError(t, m.CompleteAdd(op, Result{Error: "Song name is required"}))
	assert.Equal(t, []string{"N", "A"}, ids(m.Favorites()))
	assert.Equal(t, Notice{Kind: NoticeError, Message: "Song name is required"}, m.Notice())
}

func TestAddThroughBackend(t *testing.T) {
	backend := &fakeBackend{add: Result{Success: true, Favorite: fav("N")}}
	m := New(backend, nil)

	notice, err := m.Add(context.Background(), models.FavoriteInput{SongName: "x", Artist: "y"})
	require.NoError(t, err)
	assert.Equal(t, NoticeSuccess, notice.Kind)
	assert.Equal(t, []string{"N"}, ids(m.Favorites()))
}

func TestSecondOperationIsBusy(t *testing.T) {
	m := New(nil, []models.Favorite{fav("A"), fav("B")})

	_, err := m.BeginDelete("A")
	require.NoError(t, err)

	_, err = m.BeginDelete("B")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = m.BeginAdd()
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, []string{"B"}, ids(m.Favorites()))
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	m := New(nil, []models.Favorite{fav("A"), fav("B"), fav("C")})

	stale, err := m.BeginDelete("B")
	require.NoError(t, err)

	m.Reset([]models.Favorite{fav("A"), fav("C")})
	assert.Equal(t, Idle, m.State().Phase)

	err = m.CompleteDelete(stale, Result{Error: "Failed to delete favorite"})
	assert.ErrorIs(t, err, ErrStale)
	assert.Equal(t, []string{"A", "C"}, ids(m.Favorites()), "stale failure must not restore the snapshot")

	op, err := m.BeginAdd()
	require.NoError(t, err)
	assert.Greater(t, op, stale, "op ids increase")

	assert.ErrorIs(t, m.CompleteAdd(stale, Result{Success: true, Favorite: fav("X")}), ErrStale)
	assert.ErrorIs(t, m.CompleteDelete(op, Result{Success: true}), ErrStale, "kind mismatch is stale")
	require.NoError(t, m.CompleteAdd(op, Result{Success: true, Favorite: fav("N")}))
	assert.Equal(t, []string{"N", "A", "C"}, ids(m.Favorites()))
}

func TestRefresh(t *testing.T) {
	backend := &fakeBackend{list: Result{Success: true, Favorites: []models.Favorite{fav("B"), fav("A")}}}
	m := New(backend, nil)

	require.NoError(t, m.Refresh(context.Background()))
	assert.Equal(t, []string{"B", "A"}, ids(m.Favorites()))

	backend.list = Result{Error: "Unauthorized"}
	assert.EqualError(t, m.Refresh(context.Background()), "Unauthorized")
	assert.Equal(t, []string{"B", "A"}, ids(m.Favorites()))
}

func TestFavoritesReturnsCopy(t *testing.T) {
	initial := []models.Favorite{fav("A")}
	m := New(nil, initial)
	initial[0].ID = "mutated"

	got := m.Favorites()
	got[0].ID = "changed"
	assert.Equal(t, []string{"A"}, ids(m.Favorites()))
}

func TestConcurrentBeginAllowsOne(t *testing.T) {
	m := New(nil, []models.Favorite{fav("A")})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		started int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.BeginAdd(); err == nil {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, started)
}
