package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jensholdgaard/fantasy-auction/internal/clock"
	"github.com/jensholdgaard/fantasy-auction/internal/store"
)

// OwnerRepo implements store.OwnerRepository with sqlx.
type OwnerRepo struct {
	db    *sqlx.DB
	clock clock.Clock
}

// NewOwnerRepo returns a new OwnerRepo.
func NewOwnerRepo(db *sqlx.DB, clk clock.Clock) *OwnerRepo {
	return &OwnerRepo{db: db, clock: clk}
}

func (r *OwnerRepo) Create(ctx context.Context, o *store.TeamOwner) error {
	query := `INSERT INTO team_owners (tournament_id, name, color, budget_remaining, players_owned, total_points, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	           RETURNING id`
	now := r.clock.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	return r.db.QueryRowContext(ctx, query,
		o.TournamentID, o.Name, o.Color, o.BudgetRemaining, o.PlayersOwned, o.TotalPoints, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
}

func (r *OwnerRepo) GetByID(ctx context.Context, id string) (*store.TeamOwner, error) {
	var o store.TeamOwner
	err := r.db.GetContext(ctx, &o, `SELECT * FROM team_owners WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("getting team owner: %w", err)
	}
	return &o, nil
}

func (r *OwnerRepo) List(ctx context.Context, tournamentID string) ([]store.TeamOwner, error) {
	var owners []store.TeamOwner
	err := r.db.SelectContext(ctx, &owners,
		`SELECT * FROM team_owners WHERE tournament_id = $1 ORDER BY created_at ASC`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("listing team owners: %w", err)
	}
	return owners, nil
}

func (r *OwnerRepo) Leaderboard(ctx context.Context, tournamentID string) ([]store.TeamOwner, error) {
	var owners []store.TeamOwner
	err := r.db.SelectContext(ctx, &owners,
		`SELECT * FROM team_owners WHERE tournament_id = $1 ORDER BY total_points DESC, name ASC`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("listing leaderboard: %w", err)
	}
	return owners, nil
}

func (r *OwnerRepo) AddPoints(ctx context.Context, id string, delta int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE team_owners SET total_points = total_points + $1, updated_at = $2 WHERE id = $3`,
		delta, r.clock.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating points: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("team owner %s not found", id)
	}
	return nil
}
