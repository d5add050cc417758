// internal/arena/grader.go
package arena

import (
	"context"
	"strings"

	"github.com/codebattle/arena/internal/models"
)

// HeuristicGrader is the placeholder scoring oracle: it never executes code.
// It awards one passed case per 30 characters of non-blank submission, capped
// at the challenge's test count, and scores as the passed percentage. Swap in
// a real sandbox-backed Grader without touching the engine.
type HeuristicGrader struct{}

func (HeuristicGrader) Grade(_ context.Context, code string, challenge models.Challenge) (int, int, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" || len(challenge.TestCases) == 0 {
		return 0, 0, nil
	}

	passed := len(trimmed) / 30
	if passed > len(challenge.TestCases) {
		passed = len(challenge.TestCases)
	}
	score := passed * 100 / len(challenge.TestCases)
	return score, passed, nil
}
