// Package favview keeps a client-side mirror of the caller's favorites and
// applies deletes optimistically, rolling back when the server refuses.
//
// The Manager is a small state machine with at most one pending operation.
// Each started operation is stamped with an OpID; completions carrying any
// other OpID are stale and change nothing.
package favview

import (
	"context"
	"errors"
	"slices"
	"sync"

	"favtunes/internal/models"
)

const (
	AddedMessage   = "Favorite added successfully!"
	DeletedMessage = "Favorite deleted successfully!"

	AddFailed    = "Failed to add favorite"
	DeleteFailed = "Failed to delete favorite"
	FetchFailed  = "Failed to fetch favorites"
)

var (
	// ErrBusy is returned when an operation starts while another is pending.
	ErrBusy = errors.New("favview: operation already pending")
	// ErrStale is returned when a completion does not match the pending op.
	ErrStale = errors.New("favview: stale completion discarded")
)

// Phase is the manager's pending-operation state.
type Phase int

const (
	Idle Phase = iota
	Adding
	Deleting
)

func (p Phase) String() string {
	switch p {
	case Adding:
		return "adding"
	case Deleting:
		return "deleting"
	default:
		return "idle"
	}
}

// OpID identifies a started operation. IDs increase monotonically.
type OpID uint64

// State describes the pending operation, if any.
type State struct {
	Phase      Phase
	Op         OpID
	DeletingID string
}

// Result is the decoded boundary envelope for a favorites call.
type Result struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Favorite  models.Favorite   `json:"favorite"`
	Favorites []models.Favorite `json:"favorites"`
}

// Backend performs favorites calls against the server.
type Backend interface {
	List(ctx context.Context) Result
	Add(ctx context.Context, input models.FavoriteInput) Result
	Delete(ctx context.Context, id string) Result
}

// NoticeKind tells success notices from failures.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is the user-facing outcome of the last completed operation.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Manager holds the favorites list shown to the user.
type Manager struct {
	backend Backend

	mu         sync.Mutex
	list       []models.Favorite
	phase      Phase
	pending    OpID
	lastOp     OpID
	deletingID string
	snapshot   []models.Favorite
	lastErr    string
	notice     Notice
}

// New returns a Manager seeded with the list from the server's last read.
// backend may be nil when only the Begin/Complete API is used.
func New(backend Backend, initial []models.Favorite) *Manager {
	return &Manager{backend: backend, list: slices.Clone(initial)}
}

// Favorites returns a copy of the current list.
func (m *Manager) Favorites() []models.Favorite {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.list)
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{Phase: m.phase, Op: m.pending, DeletingID: m.deletingID}
}

// LastError returns the server's error string from the last failed
// operation, exactly as received.
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) Notice() Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notice
}

// Reset replaces the list with a fresh server read and abandons any pending
// operation. A completion for the abandoned op is reported stale.
func (m *Manager) Reset(list []models.Favorite) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = slices.Clone(list)
	m.toIdle()
}

// BeginAdd moves to Adding. The list is not touched until the server
// returns the stored favorite.
func (m *Manager) BeginAdd() (OpID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != Idle {
		return 0, ErrBusy
	}
	m.phase = Adding
	return m.nextOp(), nil
}

// CompleteAdd applies the result of the add started as op.
func (m *Manager) CompleteAdd(op OpID, res Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != Adding || op != m.pending {
		return ErrStale
	}

	if res.Success {
		m.list = append([]models.Favorite{res.Favorite}, m.list...)
		m.lastErr = ""
		m.notice = Notice{Kind: NoticeSuccess, Message: AddedMessage}
	} else {
		m.fail(res.Error, AddFailed)
	}
	m.toIdle()
	return nil
}

// BeginDelete snapshots the list, removes the favorite with the given id
// and moves to Deleting.
func (m *Manager) BeginDelete(id string) (OpID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != Idle {
		return 0, ErrBusy
	}
	m.snapshot = slices.Clone(m.list)
	m.list = slices.DeleteFunc(slices.Clone(m.list), func(f models.Favorite) bool {
		return f.ID == id
	})
	m.phase = Deleting
	m.deletingID = id
	return m.nextOp(), nil
}

// CompleteDelete applies the result of the delete started as op. On failure
// the pre-delete list is restored wholesale, so the original order returns.
func (m *Manager) CompleteDelete(op OpID, res Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != Deleting || op != m.pending {
		return ErrStale
	}

	if res.Success {
		m.lastErr = ""
		m.notice = Notice{Kind: NoticeSuccess, Message: DeletedMessage}
	} else {
		m.list = m.snapshot
		m.fail(res.Error, DeleteFailed)
	}
	m.toIdle()
	return nil
}

// Add runs a full add cycle against the backend. The returned error is
// ErrBusy or ErrStale; server failures are reported through the Notice.
func (m *Manager) Add(ctx context.Context, input models.FavoriteInput) (Notice, error) {
	op, err := m.BeginAdd()
	if err != nil {
		return Notice{}, err
	}
	res := m.backend.Add(ctx, input)
	if err := m.CompleteAdd(op, res); err != nil {
		return Notice{}, err
	}
	return m.Notice(), nil
}

// Delete runs a full optimistic delete cycle against the backend.
func (m *Manager) Delete(ctx context.Context, id string) (Notice, error) {
	op, err := m.BeginDelete(id)
	if err != nil {
		return Notice{}, err
	}
	res := m.backend.Delete(ctx, id)
	if err := m.CompleteDelete(op, res); err != nil {
		return Notice{}, err
	}
	return m.Notice(), nil
}

// Refresh re-reads the list from the backend and resets to it. On failure
// the current list is kept.
func (m *Manager) Refresh(ctx context.Context) error {
	res := m.backend.List(ctx)
	if !res.Success {
		m.mu.Lock()
		m.fail(res.Error, FetchFailed)
		m.mu.Unlock()
		return errors.New(m.Notice().Message)
	}
	m.Reset(res.Favorites)
	return nil
}

func (m *Manager) fail(serverErr, fallback string) {
	m.lastErr = serverErr
	msg := serverErr
	if msg == "" {
		msg = fallback
	}
	m.notice = Notice{Kind: NoticeError, Message: msg}
}

func (m *Manager) nextOp() OpID {
	m.lastOp++
	m.pending = m.lastOp
	return m.pending
}

func (m *Manager) toIdle() {
	m.phase = Idle
	m.pending = 0
	m.deletingID = ""
	m.snapshot = nil
}
