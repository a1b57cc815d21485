package service

import (
	"testing"

	"placement_portal_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isPermutation(t *testing.T, order []int, n int) {
	t.Helper()
	require.Len(t, order, n)
	seen := make(map[int]bool, n)
	for _, v := range order {
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, n)
		require.False(t, seen[v], "duplicate index %d", v)
		seen[v] = true
	}
}

func TestQuestionOrderIsDeterministicPerAttempt(t *testing.T) {
	const attemptID = "6f1cbb6e-8f32-4f3e-9a59-4f9a1a3c1d10"

	first := QuestionOrder(attemptID, 10, true)
	second := QuestionOrder(attemptID, 10, true)

	assert.Equal(t, first, second)
	isPermutation(t, first, 10)
}

func TestQuestionOrderDiffersBetweenAttempts(t *testing.T) {
	a := QuestionOrder("attempt-a", 20, true)
	b := QuestionOrder("attempt-b", 20, true)

	isPermutation(t, a, 20)
	isPermutation(t, b, 20)
	assert.NotEqual(t, a, b)
}

func TestQuestionOrderIdentityWhenShuffleOff(t *testing.T) {
	order := QuestionOrder("any-attempt", 5, false)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestOptionOrderKeyedByCanonicalQuestion(t *testing.T) {
	const attemptID = "option-order-attempt"

	isPermutation(t, OptionOrder(attemptID, 0, 4, true), 4)
	isPermutation(t, OptionOrder(attemptID, 1, 4, true), 4)

	assert.Equal(t,
		OptionOrder(attemptID, 2, 4, true),
		OptionOrder(attemptID, 2, 4, true))
}

func TestCanonicalOptionMapsDisplayLabelBack(t *testing.T) {
	const attemptID = "canonical-option-attempt"

	order := OptionOrder(attemptID, 0, 4, true)
	for displayPos, canonicalPos := range order {
		submitted := model.OptionLabel(displayPos)
		got := CanonicalOption(attemptID, 0, 4, true, submitted)
		assert.Equal(t, model.OptionLabel(canonicalPos), got)
	}
}

func TestCanonicalOptionRejectsBadLabels(t *testing.T) {
	assert.Equal(t, "", CanonicalOption("a", 0, 4, true, "E"))
	assert.Equal(t, "", CanonicalOption("a", 0, 2, true, "D"))
	assert.Equal(t, "", CanonicalOption("a", 0, 4, true, ""))
}

func TestCanonicalOptionIdentityWhenShuffleOff(t *testing.T) {
	assert.Equal(t, "B", CanonicalOption("a", 0, 4, false, "B"))
}
