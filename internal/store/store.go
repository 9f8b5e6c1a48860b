package store

import (
	"context"
	"time"
)

// Player represents a player available in a tournament's auction pool.
// AuctionPrice and OwnerID are nil until the player is sold; they are set
// together in one commit and cleared together on auction reset.
type Player struct {
	ID           string    `db:"id"`
	TournamentID string    `db:"tournament_id"`
	Name         string    `db:"name"`
	Role         string    `db:"role"`
	Category     string    `db:"category"`
	BasePrice    int       `db:"base_price"`
	AuctionPrice *int      `db:"auction_price"`
	OwnerID      *string   `db:"owner_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Sold reports whether the player has been bought.
func (p *Player) Sold() bool { return p.OwnerID != nil }

// TeamOwner represents a fantasy-team owner participating in the auction.
// TotalPoints is maintained by the standings subsystem; the auction engine
// only reads it.
type TeamOwner struct {
	ID              string    `db:"id"`
	TournamentID    string    `db:"tournament_id"`
	Name            string    `db:"name"`
	Color           string    `db:"color"`
	BudgetRemaining int       `db:"budget_remaining"`
	PlayersOwned    int       `db:"players_owned"`
	TotalPoints     int       `db:"total_points"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// Category is a named grouping of players auctioned together. Adder is the
// fixed increment applied by each raise within the category; it is a
// required configuration value, validated at auction start.
type Category struct {
	ID           string `db:"id"`
	TournamentID string `db:"tournament_id"`
	Name         string `db:"name"`
	Adder        int    `db:"adder"`
	Ordinal      int    `db:"ordinal"`
}

// Sale describes one finalized purchase.
type Sale struct {
	TournamentID string
	PlayerID     string
	OwnerID      string
	Amount       int
}

// PlayerRepository defines player persistence operations.
type PlayerRepository interface {
	Create(ctx context.Context, p *Player) error
	GetByID(ctx context.Context, id string) (*Player, error)
	List(ctx context.Context, tournamentID string) ([]Player, error)
	ListUnsold(ctx context.Context, tournamentID string) ([]Player, error)
}

// OwnerRepository defines team-owner persistence operations.
type OwnerRepository interface {
	Create(ctx context.Context, o *TeamOwner) error
	GetByID(ctx context.Context, id string) (*TeamOwner, error)
	List(ctx context.Context, tournamentID string) ([]TeamOwner, error)
	// Leaderboard returns owners ordered by total points, highest first.
	Leaderboard(ctx context.Context, tournamentID string) ([]TeamOwner, error)
	AddPoints(ctx context.Context, id string, delta int) error
}

// CategoryRepository defines category persistence operations.
type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	// List returns categories in their configured auction order.
	List(ctx context.Context, tournamentID string) ([]Category, error)
}

// AuctionStore groups the writes that must land atomically so a crash
// mid-operation cannot decrement a budget without the matching ownership
// update, or vice versa.
type AuctionStore interface {
	// CommitSale assigns the player to the owner at the sale price,
	// deducts the owner's budget and records the sold log entry in a
	// single transaction.
	CommitSale(ctx context.Context, sale Sale) error
	// ResetAuction clears every player's owner and auction price,
	// restores every owner's budget to initialBudget and marks all
	// existing auction log entries revoked, in a single transaction.
	ResetAuction(ctx context.Context, tournamentID string, initialBudget int) error
}
