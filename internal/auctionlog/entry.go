// Package auctionlog defines the append-only record of auction actions.
// Entries are never deleted; a full auction reset marks them revoked so the
// audit history survives.
package auctionlog

import "time"

// Kind identifies an auction action.
type Kind string

const (
	KindBid    Kind = "bid"
	KindSold   Kind = "sold"
	KindUnsold Kind = "unsold"
)

// Entry represents a single logged auction action. BidderID is nil for
// unsold entries.
type Entry struct {
	ID           string    `json:"id" db:"id"`
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	PlayerID     string    `json:"player_id" db:"player_id"`
	BidderID     *string   `json:"bidder_id,omitempty" db:"bidder_id"`
	Amount       int       `json:"amount" db:"amount"`
	Kind         Kind      `json:"kind" db:"kind"`
	Revoked      bool      `json:"revoked" db:"revoked"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
