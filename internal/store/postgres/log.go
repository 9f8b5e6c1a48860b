package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jensholdgaard/fantasy-auction/internal/auctionlog"
	"github.com/jensholdgaard/fantasy-auction/internal/clock"
)

// LogStore implements auctionlog.Store backed by Postgres.
type LogStore struct {
	db    *sqlx.DB
	clock clock.Clock
}

// NewLogStore returns a new LogStore.
func NewLogStore(db *sqlx.DB, clk clock.Clock) *LogStore {
	return &LogStore{db: db, clock: clk}
}

func (s *LogStore) Record(ctx context.Context, entries ...auctionlog.Entry) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := recordTx(ctx, tx, s.clock, entries...); err != nil {
		return err
	}

	return tx.Commit()
}

// recordTx inserts entries inside an existing transaction. Shared with
// AuctionStore.CommitSale so the sold entry lands atomically with the sale.
func recordTx(ctx context.Context, tx *sqlx.Tx, clk clock.Clock, entries ...auctionlog.Entry) error {
	stmt, err := tx.PreparexContext(ctx,
		`INSERT INTO auction_log (tournament_id, player_id, bidder_id, amount, kind, revoked, created_at)
		 VALUES ($1, $2, $3, $4, $5, false, $6)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		created := e.CreatedAt
		if created.IsZero() {
			created = clk.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, e.TournamentID, e.PlayerID, e.BidderID, e.Amount, e.Kind, created); err != nil {
			return fmt.Errorf("inserting log entry (player=%s, kind=%s): %w", e.PlayerID, e.Kind, err)
		}
	}
	return nil
}

func (s *LogStore) ListByTournament(ctx context.Context, tournamentID string) ([]auctionlog.Entry, error) {
	var entries []auctionlog.Entry
	err := s.db.SelectContext(ctx, &entries,
		`SELECT id, tournament_id, player_id, bidder_id, amount, kind, revoked, created_at
		 FROM auction_log WHERE tournament_id = $1 ORDER BY created_at ASC, id ASC`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("listing log entries: %w", err)
	}
	return entries, nil
}

func (s *LogStore) RevokeAll(ctx context.Context, tournamentID string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE auction_log SET revoked = true WHERE tournament_id = $1 AND revoked = false`, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("revoking log entries: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
