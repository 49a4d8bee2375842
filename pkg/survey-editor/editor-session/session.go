package editorsession

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
	itemtree "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-tree"
)

var ErrSessionClosed = errors.New("editor session closed")

// DraftStore persists survey drafts.
type DraftStore interface {
	GetSurveyDraft(instanceID string, studyKey string, surveyKey string) (*studyTypes.SurveyDraft, error)
	SaveSurveyDraft(instanceID string, draft *studyTypes.SurveyDraft) error
}

type SessionKey struct {
	InstanceID string
	StudyKey   string
	SurveyKey  string
}

// Session holds the item tree of one open survey draft. The tree is only accessed while holding the
// session lock.
type Session struct {
	key   SessionKey
	store DraftStore
	saver *Debouncer

	mu     sync.Mutex
	tree   *itemtree.ItemTree
	draft  studyTypes.SurveyDraft
	closed bool

	saveMu      sync.Mutex
	lastSaveErr error
}

func newSession(key SessionKey, draft *studyTypes.SurveyDraft, store DraftStore, saveDelay time.Duration) (*Session, error) {
	tree, err := itemtree.NewItemTree(draft.SurveyDefinition)
	if err != nil {
		return nil, err
	}
	s := &Session{
		key:   key,
		store: store,
		tree:  tree,
		draft: *draft,
	}
	s.draft.StudyKey = key.StudyKey
	s.draft.SurveyKey = key.SurveyKey
	s.draft.SurveyDefinition = studyTypes.SurveyItem{}
	s.saver = NewDebouncer(saveDelay, s.save, func(err error) {
		slog.Error("failed to save survey draft", slog.String("instanceID", key.InstanceID), slog.String("studyKey", key.StudyKey), slog.String("surveyKey", key.SurveyKey), slog.String("error", err.Error()))
	})
	return s, nil
}

func (s *Session) Key() SessionKey {
	return s.key
}

// Apply runs one mutation on the tree. Successful mutations schedule a save of the draft.
func (s *Session) Apply(modifiedBy string, mutation func(tree *itemtree.ItemTree) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if err := mutation(s.tree); err != nil {
		return err
	}
	s.touch(modifiedBy)
	s.saver.Trigger()
	return nil
}

// Read gives access to the tree for queries. The tree must not be modified or kept after read returns.
func (s *Session) Read(read func(tree *itemtree.ItemTree) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	return read(s.tree)
}

// Replace loads a new survey definition into the session. An invalid definition leaves the session unchanged.
func (s *Session) Replace(modifiedBy string, root studyTypes.SurveyItem) error {
	tree, err := itemtree.NewItemTree(root)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.tree = tree
	s.touch(modifiedBy)
	s.saver.Trigger()
	return nil
}

// UpdateDraftInfos changes draft attributes besides the survey definition, e.g. props or the base version.
func (s *Session) UpdateDraftInfos(modifiedBy string, update func(draft *studyTypes.SurveyDraft)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	update(&s.draft)
	s.draft.SurveyDefinition = studyTypes.SurveyItem{}
	s.touch(modifiedBy)
	s.saver.Trigger()
	return nil
}

func (s *Session) touch(modifiedBy string) {
	s.draft.ModifiedAt = time.Now().Unix()
	if modifiedBy != "" {
		s.draft.ModifiedBy = modifiedBy
	}
}

// Draft returns a copy of the draft with the current survey definition.
func (s *Session) Draft() studyTypes.SurveyDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() studyTypes.SurveyDraft {
	d := s.draft
	d.SurveyDefinition = s.tree.Root()
	return d
}

// Flush writes pending changes now.
func (s *Session) Flush() error {
	if err := s.saver.Flush(); err != nil {
		return err
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.lastSaveErr
}

func (s *Session) HasUnsavedChanges() bool {
	return s.saver.Pending()
}

// save writes the current state. Saves are serialised and each one snapshots the tree only once it
// holds saveMu, so a later save never writes older state than an earlier one.
func (s *Session) save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	draft := s.snapshot()
	s.mu.Unlock()

	err := s.store.SaveSurveyDraft(s.key.InstanceID, &draft)
	s.lastSaveErr = err
	if err != nil {
		// keep the changes pending so the next flush retries
		s.saver.mu.Lock()
		s.saver.pending = true
		s.saver.mu.Unlock()
		return err
	}
	slog.Debug("survey draft saved", slog.String("instanceID", s.key.InstanceID), slog.String("studyKey", s.key.StudyKey), slog.String("surveyKey", s.key.SurveyKey))
	return nil
}

// close rejects further edits before the final flush, so every accepted edit is part of it.
func (s *Session) close(flush bool) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	var err error
	if flush {
		err = s.Flush()
	}
	s.saver.Stop()
	return err
}
