package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jensholdgaard/fantasy-auction/internal/auctionlog"
	"github.com/jensholdgaard/fantasy-auction/internal/clock"
	"github.com/jensholdgaard/fantasy-auction/internal/store"
	"github.com/jensholdgaard/fantasy-auction/internal/store/postgres"
)

type saleFixture struct {
	db     *sqlx.DB
	sales  *postgres.AuctionStore
	player *store.Player
	owner  *store.TeamOwner
	logs   *postgres.LogStore
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	db := newTestDB(t)
	ctx := context.Background()
	clk := clock.Mock{T: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)}

	players := postgres.NewPlayerRepo(db, clk)
	owners := postgres.NewOwnerRepo(db, clk)

	o := &store.TeamOwner{TournamentID: "ipl-2026", Name: "Sharks", BudgetRemaining: 100000}
	if err := owners.Create(ctx, o); err != nil {
		t.Fatalf("creating owner: %v", err)
	}
	p := &store.Player{TournamentID: "ipl-2026", Name: "Alpha", Category: "Batsmen", BasePrice: 50000}
	if err := players.Create(ctx, p); err != nil {
		t.Fatalf("creating player: %v", err)
	}

	return &saleFixture{
		db:     db,
		sales:  postgres.NewAuctionStore(db, clk),
		player: p,
		owner:  o,
		logs:   postgres.NewLogStore(db, clk),
	}
}

func TestAuctionStore_CommitSale(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	sale := store.Sale{
		TournamentID: "ipl-2026",
		PlayerID:     f.player.ID,
		OwnerID:      f.owner.ID,
		Amount:       60000,
	}
	if err := f.sales.CommitSale(ctx, sale); err != nil {
		t.Fatalf("CommitSale: %v", err)
	}

	var p store.Player
	if err := f.db.Get(&p, `SELECT * FROM players WHERE id = $1`, f.player.ID); err != nil {
		t.Fatalf("reading player: %v", err)
	}
	if p.OwnerID == nil || *p.OwnerID != f.owner.ID {
		t.Errorf("OwnerID = %v, want %s", p.OwnerID, f.owner.ID)
	}
	if p.AuctionPrice == nil || *p.AuctionPrice != 60000 {
		t.Errorf("AuctionPrice = %v, want 60000", p.AuctionPrice)
	}

	var o store.TeamOwner
	if err := f.db.Get(&o, `SELECT * FROM team_owners WHERE id = $1`, f.owner.ID); err != nil {
		t.Fatalf("reading owner: %v", err)
	}
	if o.BudgetRemaining != 40000 {
		t.Errorf("BudgetRemaining = %d, want 40000", o.BudgetRemaining)
	}
	if o.PlayersOwned != 1 {
		t.Errorf("PlayersOwned = %d, want 1", o.PlayersOwned)
	}

	entries, err := f.logs.ListByTournament(ctx, "ipl-2026")
	if err != nil {
		t.Fatalf("ListByTournament: %v", err)
	}
	if len(entries) != 1 || entries[0].Kind != auctionlog.KindSold {
		t.Fatalf("log = %+v, want one sold entry", entries)
	}
}

func TestAuctionStore_CommitSale_AlreadySold(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	sale := store.Sale{
		TournamentID: "ipl-2026",
		PlayerID:     f.player.ID,
		OwnerID:      f.owner.ID,
		Amount:       30000,
	}
	if err := f.sales.CommitSale(ctx, sale); err != nil {
		t.Fatalf("first CommitSale: %v", err)
	}
	if err := f.sales.CommitSale(ctx, sale); err == nil {
		t.Fatal("expected error selling the same player twice")
	}

	// The failed second commit must not double-charge the owner.
	var o store.TeamOwner
	if err := f.db.Get(&o, `SELECT * FROM team_owners WHERE id = $1`, f.owner.ID); err != nil {
		t.Fatalf("reading owner: %v", err)
	}
	if o.BudgetRemaining != 70000 {
		t.Errorf("BudgetRemaining = %d, want 70000", o.BudgetRemaining)
	}
}

func TestAuctionStore_CommitSale_InsufficientBudget(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	sale := store.Sale{
		TournamentID: "ipl-2026",
		PlayerID:     f.player.ID,
		OwnerID:      f.owner.ID,
		Amount:       150000,
	}
	if err := f.sales.CommitSale(ctx, sale); err == nil {
		t.Fatal("expected error for over-budget sale")
	}

	// The whole transaction rolled back: player still unsold.
	var p store.Player
	if err := f.db.Get(&p, `SELECT * FROM players WHERE id = $1`, f.player.ID); err != nil {
		t.Fatalf("reading player: %v", err)
	}
	if p.Sold() {
		t.Error("player sold despite failed budget deduction")
	}
}

func TestAuctionStore_ResetAuction(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	sale := store.Sale{
		TournamentID: "ipl-2026",
		PlayerID:     f.player.ID,
		OwnerID:      f.owner.ID,
		Amount:       60000,
	}
	if err := f.sales.CommitSale(ctx, sale); err != nil {
		t.Fatalf("CommitSale: %v", err)
	}

	if err := f.sales.ResetAuction(ctx, "ipl-2026", 100000); err != nil {
		t.Fatalf("ResetAuction: %v", err)
	}

	var p store.Player
	if err := f.db.Get(&p, `SELECT * FROM players WHERE id = $1`, f.player.ID); err != nil {
		t.Fatalf("reading player: %v", err)
	}
	if p.Sold() {
		t.Error("player still sold after reset")
	}

	var o store.TeamOwner
	if err := f.db.Get(&o, `SELECT * FROM team_owners WHERE id = $1`, f.owner.ID); err != nil {
		t.Fatalf("reading owner: %v", err)
	}
	if o.BudgetRemaining != 100000 || o.PlayersOwned != 0 {
		t.Errorf("owner = budget %d, owned %d after reset, want 100000/0", o.BudgetRemaining, o.PlayersOwned)
	}

	// The sold entry is revoked, not deleted.
	entries, err := f.logs.ListByTournament(ctx, "ipl-2026")
	if err != nil {
		t.Fatalf("ListByTournament: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("log has %d entries after reset, want 1", len(entries))
	}
	if !entries[0].Revoked {
		t.Error("sold entry not revoked after reset")
	}
}
