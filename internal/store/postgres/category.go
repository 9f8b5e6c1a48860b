package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jensholdgaard/fantasy-auction/internal/store"
)

// CategoryRepo implements store.CategoryRepository with sqlx.
type CategoryRepo struct {
	db *sqlx.DB
}

// NewCategoryRepo returns a new CategoryRepo.
func NewCategoryRepo(db *sqlx.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) Create(ctx context.Context, c *store.Category) error {
	query := `INSERT INTO categories (tournament_id, name, adder, ordinal)
	           VALUES ($1, $2, $3, $4)
	           RETURNING id`
	return r.db.QueryRowContext(ctx, query, c.TournamentID, c.Name, c.Adder, c.Ordinal).Scan(&c.ID)
}

func (r *CategoryRepo) List(ctx context.Context, tournamentID string) ([]store.Category, error) {
	var cats []store.Category
	err := r.db.SelectContext(ctx, &cats,
		`SELECT * FROM categories WHERE tournament_id = $1 ORDER BY ordinal ASC`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return cats, nil
}
