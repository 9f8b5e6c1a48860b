package auctionlog

import "context"

// Store persists and retrieves auction log entries.
type Store interface {
	// Record appends one or more entries atomically.
	Record(ctx context.Context, entries ...Entry) error
	// ListByTournament returns all entries for a tournament, oldest first,
	// including revoked ones.
	ListByTournament(ctx context.Context, tournamentID string) ([]Entry, error)
	// RevokeAll marks every entry for the tournament revoked and returns
	// how many were affected. Entries are never physically deleted.
	RevokeAll(ctx context.Context, tournamentID string) (int64, error)
}
