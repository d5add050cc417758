// internal/models/challenge.go
package models

import "github.com/google/uuid"

// Challenge is a single coding problem served by the catalog. The engine
// treats the test cases as opaque; only the grader inspects them.
type Challenge struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Difficulty  string     `json:"difficulty"` // 'easy', 'medium', or 'hard'
	Category    string     `json:"category"`
	Language    string     `json:"language"`
	TimeLimit   int        `json:"time_limit"` // seconds
	StarterCode string     `json:"starter_code"`
	TestCases   []TestCase `json:"test_cases"`
	BaseXP      int64      `json:"base_xp"`
}

type TestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
}

// ChallengeFilter narrows catalog selection. Zero values match everything.
type ChallengeFilter struct {
	Difficulty   string `json:"difficulty"`
	Category     string `json:"category"`
	MaxTimeLimit int    `json:"max_time_limit"`
}
