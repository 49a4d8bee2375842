package editorsession

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
)

// Manager keeps one session per open survey draft.
type Manager struct {
	store     DraftStore
	saveDelay time.Duration

	mu       sync.Mutex
	sessions map[SessionKey]*Session
}

func NewManager(store DraftStore, saveDelay time.Duration) *Manager {
	if saveDelay <= 0 {
		saveDelay = DEFAULT_SAVE_DELAY
	}
	return &Manager{
		store:     store,
		saveDelay: saveDelay,
		sessions:  map[SessionKey]*Session{},
	}
}

// Open returns the session of the draft, loading the draft from the store if it is not open yet.
// The draft is loaded without holding the manager lock; if another request opened the same survey
// meanwhile, its session wins.
func (m *Manager) Open(key SessionKey) (*Session, error) {
	if s, ok := m.lookup(key); ok {
		return s, nil
	}

	draft, err := m.store.GetSurveyDraft(key.InstanceID, key.StudyKey, key.SurveyKey)
	if err != nil {
		return nil, err
	}
	s, err := newSession(key, draft, m.store, m.saveDelay)
	if err != nil {
		slog.Error("stored survey draft is invalid", slog.String("instanceID", key.InstanceID), slog.String("studyKey", key.StudyKey), slog.String("surveyKey", key.SurveyKey), slog.String("error", err.Error()))
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[key]; ok {
		s.saver.Stop()
		return existing, nil
	}
	m.sessions[key] = s
	slog.Debug("editor session opened", slog.String("instanceID", key.InstanceID), slog.String("studyKey", key.StudyKey), slog.String("surveyKey", key.SurveyKey))
	return s, nil
}

// Create starts a session for a new draft, replacing an open session of the same survey, and saves the draft.
func (m *Manager) Create(key SessionKey, draft *studyTypes.SurveyDraft) (*Session, error) {
	s, err := newSession(key, draft, m.store, m.saveDelay)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	old := m.sessions[key]
	m.sessions[key] = s
	m.mu.Unlock()

	if old != nil {
		_ = old.close(false)
	}

	s.saver.Trigger()
	if err := s.Flush(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close writes pending changes and drops the session. Closing a survey that is not open is a no-op.
func (m *Manager) Close(key SessionKey) error {
	m.mu.Lock()
	s, ok := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return s.close(true)
}

// Discard drops the session without saving pending changes.
func (m *Manager) Discard(key SessionKey) {
	m.mu.Lock()
	s, ok := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()

	if ok {
		_ = s.close(false)
	}
}

// CloseAll closes every session, used on shutdown.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[SessionKey]*Session{}
	m.mu.Unlock()

	var errs []error
	for key, s := range sessions {
		if err := s.close(true); err != nil {
			slog.Error("failed to save survey draft on close", slog.String("instanceID", key.InstanceID), slog.String("studyKey", key.StudyKey), slog.String("surveyKey", key.SurveyKey), slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) lookup(key SessionKey) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	return s, ok
}

func (m *Manager) OpenSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
