// internal/database/wallet.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/codebattle/arena/internal/arena"
)

// Wallet implements arena.Wallet over users.coins. Balance guards live in the
// UPDATE predicates, so a concurrent spend between check and debit surfaces
// as arena.ErrInsufficientFunds instead of a negative balance.
type Wallet struct{}

func (Wallet) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var coins int64
	err := DB.QueryRow(ctx, `SELECT coins FROM users WHERE id=$1`, userID).Scan(&coins)
	if err != nil {
		return 0, fmt.Errorf("balance lookup for %s: %w", userID, err)
	}
	return coins, nil
}

func (Wallet) ApplyDelta(ctx context.Context, userID uuid.UUID, delta int64) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return applyDeltaTx(ctx, tx, userID, delta)
	})
}

// SettleWager moves the wager from loser to winner in one transaction; a
// failed debit rolls the credit back.
func (Wallet) SettleWager(ctx context.Context, winnerID, loserID uuid.UUID, amount int64) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := applyDeltaTx(ctx, tx, loserID, -amount); err != nil {
			return err
		}
		return applyDeltaTx(ctx, tx, winnerID, amount)
	})
}

func applyDeltaTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta int64) error {
	tag, err := tx.Exec(ctx,
		`UPDATE users SET coins = coins + $1 WHERE id = $2 AND coins + $1 >= 0`,
		delta, userID,
	)
	if err != nil {
		return fmt.Errorf("coin delta for %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return arena.ErrInsufficientFunds
	}
	return nil
}
