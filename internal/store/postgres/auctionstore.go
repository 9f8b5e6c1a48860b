package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jensholdgaard/fantasy-auction/internal/auctionlog"
	"github.com/jensholdgaard/fantasy-auction/internal/clock"
	"github.com/jensholdgaard/fantasy-auction/internal/store"
)

// AuctionStore implements store.AuctionStore: the writes that must land
// atomically so budgets and ownership can never diverge.
type AuctionStore struct {
	db    *sqlx.DB
	clock clock.Clock
}

// NewAuctionStore returns a new AuctionStore.
func NewAuctionStore(db *sqlx.DB, clk clock.Clock) *AuctionStore {
	return &AuctionStore{db: db, clock: clk}
}

// CommitSale assigns the player, deducts the owner's budget and records the
// sold log entry in one transaction. It fails if the player is already sold
// or the owner's budget would go negative.
func (s *AuctionStore) CommitSale(ctx context.Context, sale store.Sale) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.clock.Now().UTC()

	result, err := tx.ExecContext(ctx,
		`UPDATE players SET owner_id = $1, auction_price = $2, updated_at = $3
		 WHERE id = $4 AND tournament_id = $5 AND owner_id IS NULL`,
		sale.OwnerID, sale.Amount, now, sale.PlayerID, sale.TournamentID,
	)
	if err != nil {
		return fmt.Errorf("assigning player: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("player %s not found or already sold", sale.PlayerID)
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE team_owners
		 SET budget_remaining = budget_remaining - $1, players_owned = players_owned + 1, updated_at = $2
		 WHERE id = $3 AND budget_remaining >= $1`,
		sale.Amount, now, sale.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("deducting budget: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("owner %s not found or has insufficient budget", sale.OwnerID)
	}

	entry := auctionlog.Entry{
		TournamentID: sale.TournamentID,
		PlayerID:     sale.PlayerID,
		BidderID:     &sale.OwnerID,
		Amount:       sale.Amount,
		Kind:         auctionlog.KindSold,
		CreatedAt:    now,
	}
	if err := recordTx(ctx, tx, s.clock, entry); err != nil {
		return err
	}

	return tx.Commit()
}

// ResetAuction clears ownership, restores budgets and revokes the log for
// the tournament in one transaction.
func (s *AuctionStore) ResetAuction(ctx context.Context, tournamentID string, initialBudget int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.clock.Now().UTC()

	if _, err := tx.ExecContext(ctx,
		`UPDATE players SET owner_id = NULL, auction_price = NULL, updated_at = $1
		 WHERE tournament_id = $2 AND owner_id IS NOT NULL`,
		now, tournamentID,
	); err != nil {
		return fmt.Errorf("clearing player ownership: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE team_owners SET budget_remaining = $1, players_owned = 0, updated_at = $2
		 WHERE tournament_id = $3`,
		initialBudget, now, tournamentID,
	); err != nil {
		return fmt.Errorf("restoring budgets: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE auction_log SET revoked = true WHERE tournament_id = $1 AND revoked = false`,
		tournamentID,
	); err != nil {
		return fmt.Errorf("revoking log entries: %w", err)
	}

	return tx.Commit()
}
