package show

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	showerr "github.com/duetcast/duetcast/internal/errors"
	"github.com/duetcast/duetcast/store"
)

// TranscriptStore is the slice of the store the manager needs to persist a
// finished show.
type TranscriptStore interface {
	CreateConversation(ctx context.Context, creatorID int32, topic string, turns []*store.Turn) (*store.Conversation, error)
}

// Manager owns at most one live show per user and bounds how many shows run
// at once across the instance.
type Manager struct {
	gen   Generator
	cfg   Config
	store TranscriptStore

	mu    sync.Mutex
	shows map[int32]*Show

	// runSem bounds concurrently running shows so a burst of starts cannot
	// fan out an unbounded number of generator calls.
	runSem *semaphore.Weighted
}

// NewManager creates a show manager.
func NewManager(gen Generator, store TranscriptStore, cfg Config, maxRunning int64) *Manager {
	if maxRunning <= 0 {
		maxRunning = 8
	}
	return &Manager{
		gen:    gen,
		cfg:    cfg,
		store:  store,
		shows:  make(map[int32]*Show),
		runSem: semaphore.NewWeighted(maxRunning),
	}
}

// StartShow begins a new show for the user. Any previous show of that user is
// cancelled and discarded, matching the original's full-restart semantics.
func (m *Manager) StartShow(ctx context.Context, userID int32, topic string) (*Show, error) {
	if !m.runSem.TryAcquire(1) {
		return nil, &showerr.ShowError{Code: showerr.ErrCodeShowBusy, Message: "too many shows running, try again shortly"}
	}

	start := time.Now()
	// Shows outlive the HTTP request that started them; they stop via
	// Cancel or by reaching the turn cap.
	s, err := Start(context.Background(), m.gen, m.cfg, topic, func() { m.runSem.Release(1) })
	if err != nil {
		m.runSem.Release(1)
		if err == ErrBlankTopic {
			return nil, showerr.InvalidArgument("topic must not be blank")
		}
		return nil, err
	}

	m.mu.Lock()
	if old := m.shows[userID]; old != nil {
		old.Cancel()
	}
	m.shows[userID] = s
	m.mu.Unlock()

	slog.Info("show started",
		"user_id", userID,
		"topic", s.Topic(),
		"max_turns", m.cfg.MaxTurns,
		"elapsed_ms", time.Since(start).Milliseconds())
	return s, nil
}

// GetShow returns the user's live show, if any.
func (m *Manager) GetShow(userID int32) (*Show, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shows[userID]
	return s, ok
}

// CancelShow cancels and discards the user's live show.
func (m *Manager) CancelShow(userID int32) error {
	m.mu.Lock()
	s, ok := m.shows[userID]
	if ok {
		delete(m.shows, userID)
	}
	m.mu.Unlock()

	if !ok {
		return showerr.ShowNotFound("no live show")
	}
	s.Cancel()
	return nil
}

// SaveShow persists the user's finished show exactly once. A failed save
// keeps the show in memory so the user can retry; a second successful save
// is rejected.
func (m *Manager) SaveShow(ctx context.Context, userID int32) (*store.Conversation, error) {
	m.mu.Lock()
	s, ok := m.shows[userID]
	m.mu.Unlock()
	if !ok {
		return nil, showerr.ShowNotFound("no live show")
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if s.State() != StateFinished {
		return nil, &showerr.ShowError{Code: showerr.ErrCodeShowNotFinished, Message: "show is not finished"}
	}
	if s.Saved() {
		return nil, &showerr.ShowError{Code: showerr.ErrCodeShowAlreadySaved, Message: "show is already saved"}
	}

	conversation, err := m.store.CreateConversation(ctx, userID, s.Topic(), s.Turns())
	if err != nil {
		slog.Error("failed to save show", "user_id", userID, "error", err)
		return nil, showerr.PersistenceFailed(err)
	}
	s.markSaved()

	slog.Info("show saved", "user_id", userID, "conversation_uid", conversation.UID, "turns", len(conversation.Turns))
	return conversation, nil
}

// Shutdown cancels every live show and waits for their run loops to exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	shows := make([]*Show, 0, len(m.shows))
	for _, s := range m.shows {
		shows = append(shows, s)
	}
	m.shows = make(map[int32]*Show)
	m.mu.Unlock()

	for _, s := range shows {
		s.Cancel()
	}
	for _, s := range shows {
		<-s.Done()
	}
}
