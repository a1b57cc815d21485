package service

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"placement_portal_backend/internal/model"
)

// Question and option orders are shuffled per attempt, never per request: the
// permutation is seeded from the attempt UUID so a reload reproduces exactly
// the same order, while two attempts at the same quiz may differ.

func shuffleSeed(attemptID, scope string) int64 {
	h := fnv.New64a()
	h.Write([]byte(attemptID))
	h.Write([]byte{0})
	h.Write([]byte(scope))
	return int64(h.Sum64())
}

func permutation(attemptID, scope string, n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if n < 2 {
		return order
	}
	r := rand.New(rand.NewSource(shuffleSeed(attemptID, scope)))
	r.Shuffle(n, func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

// QuestionOrder maps display index -> canonical question index for the
// attempt. Identity when shuffling is off.
func QuestionOrder(attemptID string, n int, shuffle bool) []int {
	if !shuffle {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		return order
	}
	return permutation(attemptID, "questions", n)
}

// OptionOrder maps display position -> canonical option position for one
// question, keyed by the question's canonical index so the order survives
// question shuffling.
func OptionOrder(attemptID string, canonicalIndex, optionCount int, shuffle bool) []int {
	if !shuffle {
		order := make([]int, optionCount)
		for i := range order {
			order[i] = i
		}
		return order
	}
	return permutation(attemptID, fmt.Sprintf("options:%d", canonicalIndex), optionCount)
}

// CanonicalOption maps a submitted display label (what the student saw) back
// to the canonical label stored on the question. Grading never compares
// shuffled labels directly.
func CanonicalOption(attemptID string, canonicalIndex, optionCount int, shuffle bool, submitted string) string {
	pos := model.OptionPosition(submitted)
	if pos < 0 || pos >= optionCount {
		return ""
	}
	order := OptionOrder(attemptID, canonicalIndex, optionCount, shuffle)
	return model.OptionLabel(order[pos])
}
