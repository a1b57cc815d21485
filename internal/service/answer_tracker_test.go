package service

import (
	"errors"
	"testing"
	"time"

	"placement_portal_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.current }
func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

type captureStore struct {
	records map[int]*model.AttemptAnswer
	calls   int
	failFor int // number of leading calls that fail
}

func newCaptureStore() *captureStore {
	return &captureStore{records: make(map[int]*model.AttemptAnswer)}
}

func (s *captureStore) persist(rec *model.AttemptAnswer) error {
	s.calls++
	if s.calls <= s.failFor {
		return errors.New("store unavailable")
	}
	s.records[rec.QuestionIndex] = rec
	return nil
}

func newTestTracker(clk *fakeClock, store *captureStore) *AnswerTracker {
	return NewAnswerTracker("attempt-1", store.persist, clk.Now, zap.NewNop())
}

func TestSetAnswerLastWriteWins(t *testing.T) {
	clk := newFakeClock()
	store := newCaptureStore()
	tracker := newTestTracker(clk, store)

	tracker.SetAnswer(0, model.AnswerValue{Type: model.QuestionMCQ, Option: "A"})
	tracker.SetAnswer(0, model.AnswerValue{Type: model.QuestionMCQ, Option: "C"})

	v, ok := tracker.Get(0)
	require.True(t, ok)
	assert.Equal(t, "C", v.Option)

	require.NoError(t, tracker.Persist(0))
	persisted, err := store.records[0].Value()
	require.NoError(t, err)
	assert.Equal(t, "C", persisted.Option)
	assert.Equal(t, 1, store.calls)
}

func TestTimeSpentBanksWallClockOnActivate(t *testing.T) {
	clk := newFakeClock()
	tracker := newTestTracker(clk, newCaptureStore())

	clk.Advance(5 * time.Second)
	tracker.Activate(1)

	assert.Equal(t, 5, tracker.TimeSpent(0))

	clk.Advance(3 * time.Second)
	// live stretch counts without another Activate
	assert.Equal(t, 3, tracker.TimeSpent(1))

	// returning to a question accumulates on top of the banked time
	tracker.Activate(0)
	clk.Advance(2 * time.Second)
	assert.Equal(t, 7, tracker.TimeSpent(0))
}

func TestPersistRetriesOnceThenSucceeds(t *testing.T) {
	clk := newFakeClock()
	store := newCaptureStore()
	store.failFor = 1
	tracker := newTestTracker(clk, store)

	tracker.SetAnswer(0, model.AnswerValue{Type: model.QuestionFillBlank, Text: "mutex"})

	require.NoError(t, tracker.Persist(0))
	assert.Equal(t, 2, store.calls)
	assert.Contains(t, store.records, 0)
}

func TestPersistFailureKeepsRecordDirty(t *testing.T) {
	clk := newFakeClock()
	store := newCaptureStore()
	store.failFor = 100
	tracker := newTestTracker(clk, store)

	tracker.SetAnswer(0, model.AnswerValue{Type: model.QuestionFillBlank, Text: "mutex"})

	assert.Error(t, tracker.Persist(0))
	assert.Error(t, tracker.FlushDirty())

	// the store recovers; the dirty record goes through on the next flush
	store.failFor = 0
	require.NoError(t, tracker.FlushDirty())
	assert.Contains(t, store.records, 0)

	// nothing left to flush
	calls := store.calls
	require.NoError(t, tracker.FlushDirty())
	assert.Equal(t, calls, store.calls)
}

func TestRestoreLoadsCleanRecords(t *testing.T) {
	clk := newFakeClock()
	store := newCaptureStore()
	tracker := newTestTracker(clk, store)

	rec := model.AttemptAnswer{AttemptID: "attempt-1", QuestionIndex: 2, TimeSpentSeconds: 40}
	require.NoError(t, rec.SetValue(model.AnswerValue{Type: model.QuestionMCQ, Option: "B"}))
	tracker.Restore([]model.AttemptAnswer{rec})

	v, ok := tracker.Get(2)
	require.True(t, ok)
	assert.Equal(t, "B", v.Option)
	assert.Equal(t, 40, tracker.TimeSpent(2))

	// restored answers are clean: nothing goes back over the wire
	require.NoError(t, tracker.FlushDirty())
	assert.Equal(t, 0, store.calls)
}

func TestSnapshotOrderedByQuestionIndex(t *testing.T) {
	clk := newFakeClock()
	tracker := newTestTracker(clk, newCaptureStore())

	tracker.SetAnswer(3, model.AnswerValue{Type: model.QuestionFillBlank, Text: "c"})
	tracker.SetAnswer(0, model.AnswerValue{Type: model.QuestionFillBlank, Text: "a"})
	tracker.SetAnswer(1, model.AnswerValue{Type: model.QuestionFillBlank, Text: "b"})

	snapshot := tracker.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, []int{0, 1, 3}, []int{
		snapshot[0].QuestionIndex,
		snapshot[1].QuestionIndex,
		snapshot[2].QuestionIndex,
	})
}
