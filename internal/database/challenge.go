// internal/database/challenge.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/codebattle/arena/internal/models"
)

// Catalog implements arena.Catalog over the challenges table. Test cases are
// stored as an opaque JSON blob; only the grader ever looks inside.
type Catalog struct{}

const challengeColumns = `
	id, title, difficulty, category, language, time_limit,
	starter_code, test_cases, base_xp`

func (Catalog) ListChallenges(ctx context.Context, filter models.ChallengeFilter) ([]models.Challenge, error) {
	q := `SELECT ` + challengeColumns + `
	FROM challenges
	WHERE ($1 = '' OR difficulty = $1)
	  AND ($2 = '' OR category = $2)
	  AND ($3 = 0 OR time_limit <= $3)
	`
	rows, err := DB.Query(ctx, q, filter.Difficulty, filter.Category, filter.MaxTimeLimit)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	var out []models.Challenge
	for rows.Next() {
		ch, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (Catalog) GetChallenge(ctx context.Context, id uuid.UUID) (models.Challenge, error) {
	row := DB.QueryRow(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE id = $1`, id)
	return scanChallenge(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChallenge(row rowScanner) (models.Challenge, error) {
	var (
		ch    models.Challenge
		cases []byte
	)
	err := row.Scan(
		&ch.ID, &ch.Title, &ch.Difficulty, &ch.Category, &ch.Language,
		&ch.TimeLimit, &ch.StarterCode, &cases, &ch.BaseXP,
	)
	if err != nil {
		return models.Challenge{}, err
	}
	if len(cases) > 0 {
		if err := json.Unmarshal(cases, &ch.TestCases); err != nil {
			return models.Challenge{}, fmt.Errorf("decode test cases: %w", err)
		}
	}
	return ch, nil
}
