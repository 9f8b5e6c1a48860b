package postgres_test

import (
	"context"
	"testing"

	"github.com/jensholdgaard/fantasy-auction/internal/clock"
	"github.com/jensholdgaard/fantasy-auction/internal/store"
	"github.com/jensholdgaard/fantasy-auction/internal/store/postgres"
)

func TestPlayerRepo_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewPlayerRepo(db, clock.Real{})
	ctx := context.Background()

	p := &store.Player{
		TournamentID: "ipl-2026",
		Name:         "Alpha",
		Role:         "batsman",
		Category:     "Batsmen",
		BasePrice:    50000,
	}

	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if p.ID == "" {
		t.Fatal("expected ID to be set after Create")
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Alpha" {
		t.Errorf("Name = %q, want %q", got.Name, "Alpha")
	}
	if got.BasePrice != 50000 {
		t.Errorf("BasePrice = %d, want %d", got.BasePrice, 50000)
	}
	if got.Sold() {
		t.Error("freshly created player reports sold")
	}
}

func TestPlayerRepo_ListAndListUnsold(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewPlayerRepo(db, clock.Real{})
	owners := postgres.NewOwnerRepo(db, clock.Real{})
	ctx := context.Background()

	var players []*store.Player
	for _, name := range []string{"Alpha", "Bravo", "Charlie"} {
		p := &store.Player{TournamentID: "ipl-2026", Name: name, Category: "Batsmen", BasePrice: 20000}
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create(%s): %v", name, err)
		}
		players = append(players, p)
	}

	// Sell one player directly.
	o := &store.TeamOwner{TournamentID: "ipl-2026", Name: "Sharks", BudgetRemaining: 100000}
	if err := owners.Create(ctx, o); err != nil {
		t.Fatalf("creating owner: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`UPDATE players SET owner_id = $1, auction_price = 25000 WHERE id = $2`,
		o.ID, players[0].ID,
	); err != nil {
		t.Fatalf("selling player: %v", err)
	}

	all, err := repo.List(ctx, "ipl-2026")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List returned %d players, want 3", len(all))
	}

	unsold, err := repo.ListUnsold(ctx, "ipl-2026")
	if err != nil {
		t.Fatalf("ListUnsold: %v", err)
	}
	if len(unsold) != 2 {
		t.Fatalf("ListUnsold returned %d players, want 2", len(unsold))
	}
	for _, p := range unsold {
		if p.ID == players[0].ID {
			t.Error("sold player returned by ListUnsold")
		}
	}
}

func TestPlayerRepo_List_OtherTournamentExcluded(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewPlayerRepo(db, clock.Real{})
	ctx := context.Background()

	for _, tid := range []string{"ipl-2026", "ipl-2025"} {
		p := &store.Player{TournamentID: tid, Name: "Alpha " + tid, Category: "Batsmen", BasePrice: 10000}
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	players, err := repo.List(ctx, "ipl-2026")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(players) != 1 {
		t.Fatalf("List returned %d players, want 1", len(players))
	}
}
