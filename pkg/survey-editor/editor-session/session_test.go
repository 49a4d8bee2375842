package editorsession

import (
	"errors"
	"sync"
	"testing"
	"time"

	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
	itemtree "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-tree"
)

var errNotFound = errors.New("not found")

type fakeDraftStore struct {
	mu      sync.Mutex
	drafts  map[string]studyTypes.SurveyDraft
	saves   int
	failing bool
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{drafts: map[string]studyTypes.SurveyDraft{}}
}

func (f *fakeDraftStore) GetSurveyDraft(instanceID string, studyKey string, surveyKey string) (*studyTypes.SurveyDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[instanceID+studyKey+surveyKey]
	if !ok {
		return nil, errNotFound
	}
	return &d, nil
}

func (f *fakeDraftStore) SaveSurveyDraft(instanceID string, draft *studyTypes.SurveyDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("db down")
	}
	f.saves++
	f.drafts[instanceID+draft.StudyKey+draft.SurveyKey] = *draft
	return nil
}

func (f *fakeDraftStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func (f *fakeDraftStore) stored(key SessionKey) studyTypes.SurveyDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drafts[key.InstanceID+key.StudyKey+key.SurveyKey]
}

func (f *fakeDraftStore) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

var testKey = SessionKey{InstanceID: "test", StudyKey: "study1", SurveyKey: "weekly"}

func mockDraft() *studyTypes.SurveyDraft {
	return &studyTypes.SurveyDraft{
		StudyKey:  "study1",
		SurveyKey: "weekly",
		SurveyDefinition: studyTypes.SurveyItem{Key: "weekly", Items: []studyTypes.SurveyItem{
			{Key: "weekly.G1", Items: []studyTypes.SurveyItem{}},
			{Key: "weekly.Q1"},
		}},
	}
}

func addPageBreak(tree *itemtree.ItemTree) error {
	_, err := tree.AddChild(studyTypes.SurveyItem{Key: "weekly.G1.PB", Type: studyTypes.SURVEY_ITEM_TYPE_PAGE_BREAK}, "weekly.G1")
	return err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestManagerOpen(t *testing.T) {
	t.Run("missing draft", func(t *testing.T) {
		m := NewManager(newFakeDraftStore(), time.Hour)
		if _, err := m.Open(testKey); !errors.Is(err, errNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})

	t.Run("invalid stored draft", func(t *testing.T) {
		store := newFakeDraftStore()
		d := mockDraft()
		d.SurveyDefinition.Items[1].Key = "other.Q1"
		store.drafts["teststudy1weekly"] = *d
		m := NewManager(store, time.Hour)
		if _, err := m.Open(testKey); !itemtree.IsStructureError(err) {
			t.Errorf("expected structure error, got %v", err)
		}
	})

	t.Run("same session for same survey", func(t *testing.T) {
		m := NewManager(newFakeDraftStore(), time.Hour)
		s1, err := m.Create(testKey, mockDraft())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s2, err := m.Open(testKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s1 != s2 || m.OpenSessions() != 1 {
			t.Error("expected one shared session")
		}
	})
}

func TestSessionApply(t *testing.T) {
	t.Run("successful mutation is saved after delay", func(t *testing.T) {
		store := newFakeDraftStore()
		m := NewManager(store, 20*time.Millisecond)
		s, err := m.Create(testKey, mockDraft())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		saves := store.saveCount()

		if err := s.Apply("user1", addPageBreak); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !s.HasUnsavedChanges() {
			t.Error("expected pending save")
		}
		waitFor(t, func() bool { return store.saveCount() == saves+1 })

		stored := store.stored(testKey)
		if stored.ModifiedBy != "user1" || len(stored.SurveyDefinition.Items[0].Items) != 1 {
			t.Errorf("unexpected stored draft: %+v", stored)
		}
	})

	t.Run("several edits are saved once", func(t *testing.T) {
		store := newFakeDraftStore()
		m := NewManager(store, 50*time.Millisecond)
		s, _ := m.Create(testKey, mockDraft())
		saves := store.saveCount()

		_ = s.Apply("user1", addPageBreak)
		_ = s.Apply("user1", func(tree *itemtree.ItemTree) error { return tree.ChangeKey("weekly.Q1", "weekly.Q2") })
		_ = s.Apply("user1", func(tree *itemtree.ItemTree) error { return tree.DeleteItem("weekly.Q2") })
		if err := s.Flush(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.saveCount() != saves+1 {
			t.Errorf("unexpected number of saves: %d", store.saveCount()-saves)
		}
		time.Sleep(80 * time.Millisecond)
		if store.saveCount() != saves+1 {
			t.Error("saved again after flush")
		}
	})

	t.Run("failed mutation does not schedule save", func(t *testing.T) {
		store := newFakeDraftStore()
		m := NewManager(store, time.Hour)
		s, _ := m.Create(testKey, mockDraft())

		err := s.Apply("user1", func(tree *itemtree.ItemTree) error { return tree.DeleteItem("weekly") })
		if !errors.Is(err, itemtree.ErrRootItem) {
			t.Errorf("expected root error, got %v", err)
		}
		if s.HasUnsavedChanges() {
			t.Error("unexpected pending save")
		}
	})

	t.Run("failed save is retried on flush", func(t *testing.T) {
		store := newFakeDraftStore()
		m := NewManager(store, time.Hour)
		s, _ := m.Create(testKey, mockDraft())

		store.setFailing(true)
		_ = s.Apply("user1", addPageBreak)
		if err := s.Flush(); err == nil {
			t.Error("expected save error")
		}
		store.setFailing(false)
		if err := s.Flush(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(store.stored(testKey).SurveyDefinition.Items[0].Items) != 1 {
			t.Error("change not saved")
		}
	})
}

func TestSessionReplace(t *testing.T) {
	store := newFakeDraftStore()
	m := NewManager(store, time.Hour)
	s, _ := m.Create(testKey, mockDraft())

	err := s.Replace("user1", studyTypes.SurveyItem{Key: "weekly", Items: []studyTypes.SurveyItem{{Key: "nope.Q"}}})
	if !itemtree.IsStructureError(err) {
		t.Errorf("expected structure error, got %v", err)
	}
	if len(s.Draft().SurveyDefinition.Items) != 2 {
		t.Error("session changed by invalid definition")
	}

	if err := s.Replace("user2", studyTypes.SurveyItem{Key: "weekly", Items: []studyTypes.SurveyItem{}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	draft := s.Draft()
	if len(draft.SurveyDefinition.Items) != 0 || draft.ModifiedBy != "user2" {
		t.Errorf("unexpected draft: %+v", draft)
	}
}

func TestManagerClose(t *testing.T) {
	t.Run("close flushes", func(t *testing.T) {
		store := newFakeDraftStore()
		m := NewManager(store, time.Hour)
		s, _ := m.Create(testKey, mockDraft())
		_ = s.Apply("user1", addPageBreak)

		if err := m.Close(testKey); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(store.stored(testKey).SurveyDefinition.Items[0].Items) != 1 {
			t.Error("pending change not saved on close")
		}
		if err := s.Apply("user1", addPageBreak); !errors.Is(err, ErrSessionClosed) {
			t.Errorf("expected closed session, got %v", err)
		}
		if m.OpenSessions() != 0 {
			t.Error("session still open")
		}
	})

	t.Run("discard drops changes", func(t *testing.T) {
		store := newFakeDraftStore()
		m := NewManager(store, time.Hour)
		s, _ := m.Create(testKey, mockDraft())
		_ = s.Apply("user1", addPageBreak)

		m.Discard(testKey)
		if len(store.stored(testKey).SurveyDefinition.Items[0].Items) != 0 {
			t.Error("discarded change was saved")
		}
	})

	t.Run("close all", func(t *testing.T) {
		store := newFakeDraftStore()
		m := NewManager(store, time.Hour)
		other := SessionKey{InstanceID: "test", StudyKey: "study1", SurveyKey: "intake"}
		s1, _ := m.Create(testKey, mockDraft())
		intake := mockDraft()
		intake.SurveyKey = "intake"
		intake.SurveyDefinition = studyTypes.SurveyItem{Key: "intake", Items: []studyTypes.SurveyItem{}}
		s2, _ := m.Create(other, intake)
		_ = s1.Apply("user1", addPageBreak)
		_ = s2.Apply("user1", func(tree *itemtree.ItemTree) error {
			_, err := tree.AddChild(studyTypes.SurveyItem{Key: "intake.Q1"}, "intake")
			return err
		})

		if err := m.CloseAll(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.OpenSessions() != 0 {
			t.Error("sessions still open")
		}
		if len(store.stored(other).SurveyDefinition.Items) != 1 {
			t.Error("change of second session not saved")
		}
	})
}

func TestDebouncer(t *testing.T) {
	t.Run("stop drops pending action", func(t *testing.T) {
		calls := 0
		d := NewDebouncer(10*time.Millisecond, func() error { calls++; return nil }, nil)
		d.Trigger()
		d.Stop()
		d.Trigger()
		time.Sleep(40 * time.Millisecond)
		if calls != 0 {
			t.Errorf("unexpected calls: %d", calls)
		}
		if err := d.Flush(); err != nil || calls != 0 {
			t.Error("flush after stop ran action")
		}
	})

	t.Run("errors from timer go to callback", func(t *testing.T) {
		errs := make(chan error, 1)
		d := NewDebouncer(5*time.Millisecond, func() error { return errors.New("failed") }, func(err error) { errs <- err })
		d.Trigger()
		select {
		case err := <-errs:
			if err.Error() != "failed" {
				t.Errorf("unexpected error: %v", err)
			}
		case <-time.After(time.Second):
			t.Error("error callback not called")
		}
	})
}

func TestSessionUpdateDraftInfos(t *testing.T) {
	store := newFakeDraftStore()
	m := NewManager(store, time.Hour)
	s, _ := m.Create(testKey, mockDraft())

	err := s.UpdateDraftInfos("user1", func(d *studyTypes.SurveyDraft) {
		d.BaseVersionID = "25-03-1"
		d.SurveyDefinition = studyTypes.SurveyItem{Key: "ignored"}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := store.stored(testKey)
	if stored.BaseVersionID != "25-03-1" || stored.SurveyDefinition.Key != "weekly" {
		t.Errorf("unexpected stored draft: %+v", stored)
	}
}

// blockingSaveStore holds the first save until release is closed.
type blockingSaveStore struct {
	*fakeDraftStore
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newBlockingSaveStore() *blockingSaveStore {
	store := newFakeDraftStore()
	store.drafts["teststudy1weekly"] = *mockDraft()
	return &blockingSaveStore{
		fakeDraftStore: store,
		started:        make(chan struct{}),
		release:        make(chan struct{}),
	}
}

func (b *blockingSaveStore) SaveSurveyDraft(instanceID string, draft *studyTypes.SurveyDraft) error {
	b.once.Do(func() {
		close(b.started)
		<-b.release
	})
	return b.fakeDraftStore.SaveSurveyDraft(instanceID, draft)
}

func addRootItem(localKey string) func(tree *itemtree.ItemTree) error {
	return func(tree *itemtree.ItemTree) error {
		_, err := tree.AddChild(studyTypes.SurveyItem{Key: "weekly." + localKey}, "weekly")
		return err
	}
}

func TestSessionCloseRejectsEditsDuringFinalSave(t *testing.T) {
	store := newBlockingSaveStore()
	m := NewManager(store, time.Hour)
	s, err := m.Open(testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Apply("u1", addPageBreak); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	closed := make(chan error, 1)
	go func() { closed <- m.Close(testKey) }()
	<-store.started

	if err := s.Apply("u2", addRootItem("Q2")); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("edit during close should be rejected, got %v", err)
	}

	close(store.release)
	if err := <-closed; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := store.stored(testKey)
	if len(stored.SurveyDefinition.Items) != 2 || len(stored.SurveyDefinition.Items[0].Items) != 1 {
		t.Errorf("unexpected stored definition: %+v", stored.SurveyDefinition)
	}
}

func TestSessionQueuedSaveWritesLatestState(t *testing.T) {
	store := newBlockingSaveStore()
	m := NewManager(store, time.Hour)
	s, err := m.Open(testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Apply("u1", addPageBreak); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = s.Flush()
	}()
	<-store.started

	if err := s.Apply("u1", addRootItem("Q2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	go func() {
		defer wg.Done()
		_ = s.Flush()
	}()
	// the second save waits for the first one; edits made meanwhile must be part of it
	time.Sleep(20 * time.Millisecond)
	if err := s.Apply("u1", addRootItem("Q3")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	close(store.release)
	wg.Wait()

	stored := store.stored(testKey)
	if len(stored.SurveyDefinition.Items) != 4 || stored.SurveyDefinition.Items[3].Key != "weekly.Q3" {
		t.Errorf("expected latest state to be stored, got %+v", stored.SurveyDefinition.Items)
	}
	if store.saveCount() != 2 {
		t.Errorf("expected 2 saves, got %d", store.saveCount())
	}
}

// slowLoadStore holds loading of one survey until release is closed.
type slowLoadStore struct {
	*fakeDraftStore
	slowSurveyKey string
	started       chan struct{}
	release       chan struct{}
}

func (s *slowLoadStore) GetSurveyDraft(instanceID string, studyKey string, surveyKey string) (*studyTypes.SurveyDraft, error) {
	if surveyKey == s.slowSurveyKey {
		close(s.started)
		<-s.release
	}
	return s.fakeDraftStore.GetSurveyDraft(instanceID, studyKey, surveyKey)
}

func TestManagerOpenDoesNotBlockOtherSurveys(t *testing.T) {
	store := &slowLoadStore{
		fakeDraftStore: newFakeDraftStore(),
		slowSurveyKey:  "weekly",
		started:        make(chan struct{}),
		release:        make(chan struct{}),
	}
	store.drafts["teststudy1weekly"] = *mockDraft()
	store.drafts["teststudy1intake"] = studyTypes.SurveyDraft{
		StudyKey:         "study1",
		SurveyKey:        "intake",
		SurveyDefinition: studyTypes.SurveyItem{Key: "intake", Items: []studyTypes.SurveyItem{}},
	}
	m := NewManager(store, time.Hour)

	slowOpened := make(chan *Session, 1)
	go func() {
		s, _ := m.Open(testKey)
		slowOpened <- s
	}()
	<-store.started

	otherOpened := make(chan error, 1)
	go func() {
		_, err := m.Open(SessionKey{InstanceID: "test", StudyKey: "study1", SurveyKey: "intake"})
		otherOpened <- err
	}()
	select {
	case err := <-otherOpened:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("opening another survey waited for a slow load")
	}

	close(store.release)
	s1 := <-slowOpened
	s2, err := m.Open(testKey)
	if err != nil || s1 != s2 {
		t.Errorf("expected the loaded session to be reused, err: %v", err)
	}
	if m.OpenSessions() != 2 {
		t.Errorf("expected 2 open sessions, got %d", m.OpenSessions())
	}
	_ = m.CloseAll()
}
