package service

import (
	"sort"
	"time"

	"placement_portal_backend/internal/model"

	"go.uber.org/zap"
)

type persistFunc func(rec *model.AttemptAnswer) error

type trackedAnswer struct {
	value model.AnswerValue
	dirty bool
}

// AnswerTracker is the single source of truth for what the student currently
// has entered and how long they have spent per question. Writes go to the
// local map first; the repository is updated through Persist before every
// navigation and before submission. A failed remote save is retried once and
// then degrades to local-only: the exam session keeps going, the final
// submission flush is the binding write.
//
// One tracker exists per session and is owned by it; it is not safe for use
// outside the session's lock.
type AnswerTracker struct {
	attemptID string
	persist   persistFunc
	now       func() time.Time
	log       *zap.Logger

	answers     map[int]*trackedAnswer
	spent       map[int]time.Duration
	active      int
	activeSince time.Time
}

func NewAnswerTracker(attemptID string, persist persistFunc, now func() time.Time, log *zap.Logger) *AnswerTracker {
	return &AnswerTracker{
		attemptID:   attemptID,
		persist:     persist,
		now:         now,
		log:         log,
		answers:     make(map[int]*trackedAnswer),
		spent:       make(map[int]time.Duration),
		active:      0,
		activeSince: now(),
	}
}

// Restore loads previously persisted records on resume. Restored answers are
// clean: they only go back over the wire if the student changes them.
func (t *AnswerTracker) Restore(records []model.AttemptAnswer) {
	for _, rec := range records {
		v, err := rec.Value()
		if err != nil {
			t.log.Warn("skipping unreadable answer record",
				zap.String("attempt_id", t.attemptID),
				zap.Int("question_index", rec.QuestionIndex),
				zap.Error(err))
			continue
		}
		t.answers[rec.QuestionIndex] = &trackedAnswer{value: v}
		t.spent[rec.QuestionIndex] = time.Duration(rec.TimeSpentSeconds) * time.Second
	}
}

// Activate switches the question clock: the departing question banks its
// elapsed wall-clock time, the new one starts counting from now.
func (t *AnswerTracker) Activate(index int) {
	now := t.now()
	t.spent[t.active] += now.Sub(t.activeSince)
	t.active = index
	t.activeSince = now
}

// SetAnswer records the current value for a question. Last write wins.
func (t *AnswerTracker) SetAnswer(index int, v model.AnswerValue) {
	t.answers[index] = &trackedAnswer{value: v, dirty: true}
}

// Get returns the tracked value for a question, if any.
func (t *AnswerTracker) Get(index int) (model.AnswerValue, bool) {
	a, ok := t.answers[index]
	if !ok {
		return model.AnswerValue{}, false
	}
	return a.value, true
}

// TimeSpent is the accumulated wall-clock seconds on a question, including
// the live stretch when it is the active one. Wall-clock deltas, never timer
// ticks, so it stays accurate with timers disabled.
func (t *AnswerTracker) TimeSpent(index int) int {
	d := t.spent[index]
	if index == t.active {
		d += t.now().Sub(t.activeSince)
	}
	return int(d / time.Second)
}

// Persist upserts the record for one question index, retrying once. Failure
// is non-fatal: the local map stays authoritative and the record stays dirty
// for the pre-submit flush.
func (t *AnswerTracker) Persist(index int) error {
	a, ok := t.answers[index]
	if !ok {
		return nil
	}

	rec := &model.AttemptAnswer{
		AttemptID:        t.attemptID,
		QuestionIndex:    index,
		TimeSpentSeconds: t.TimeSpent(index),
	}
	if err := rec.SetValue(a.value); err != nil {
		return err
	}

	err := t.persist(rec)
	if err != nil {
		err = t.persist(rec)
	}
	if err != nil {
		t.log.Warn("answer save degraded to local-only",
			zap.String("attempt_id", t.attemptID),
			zap.Int("question_index", index),
			zap.Error(err))
		return err
	}
	a.dirty = false
	return nil
}

// FlushDirty persists every unsaved answer. Called before submission, where a
// lost write would be final; the first failure aborts so the caller can keep
// the session in Submitting and retry.
func (t *AnswerTracker) FlushDirty() error {
	for index, a := range t.answers {
		if !a.dirty {
			continue
		}
		if err := t.Persist(index); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot renders the tracked state for the session view, ordered by
// question index.
func (t *AnswerTracker) Snapshot() []model.AttemptAnswer {
	indexes := make([]int, 0, len(t.answers))
	for index := range t.answers {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)

	out := make([]model.AttemptAnswer, 0, len(indexes))
	for _, index := range indexes {
		rec := model.AttemptAnswer{
			AttemptID:        t.attemptID,
			QuestionIndex:    index,
			TimeSpentSeconds: t.TimeSpent(index),
		}
		if err := rec.SetValue(t.answers[index].value); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}
