package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/jensholdgaard/fantasy-auction/internal/clock"
	"github.com/jensholdgaard/fantasy-auction/internal/store"
	"github.com/jensholdgaard/fantasy-auction/internal/store/memstore"
)

func newRepos(t *testing.T) *store.Repositories {
	t.Helper()
	clk := clock.Mock{T: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)}
	return memstore.New(clk).Repositories()
}

func seedSale(t *testing.T, repos *store.Repositories) (player *store.Player, owner *store.TeamOwner) {
	t.Helper()
	ctx := context.Background()

	o := &store.TeamOwner{TournamentID: "ipl-2026", Name: "Sharks", BudgetRemaining: 100000}
	if err := repos.Owners.Create(ctx, o); err != nil {
		t.Fatalf("creating owner: %v", err)
	}
	p := &store.Player{TournamentID: "ipl-2026", Name: "Alpha", Category: "Batsmen", BasePrice: 50000}
	if err := repos.Players.Create(ctx, p); err != nil {
		t.Fatalf("creating player: %v", err)
	}
	return p, o
}

func TestAuctionStore_CommitSale_Guards(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	p, o := seedSale(t, repos)

	sale := store.Sale{TournamentID: "ipl-2026", PlayerID: p.ID, OwnerID: o.ID, Amount: 60000}
	if err := repos.Auction.CommitSale(ctx, sale); err != nil {
		t.Fatalf("CommitSale: %v", err)
	}

	// Selling the same player twice fails and does not double-charge.
	if err := repos.Auction.CommitSale(ctx, sale); err == nil {
		t.Fatal("expected error selling the same player twice")
	}
	got, _ := repos.Owners.GetByID(ctx, o.ID)
	if got.BudgetRemaining != 40000 {
		t.Errorf("BudgetRemaining = %d, want 40000", got.BudgetRemaining)
	}
}

func TestAuctionStore_CommitSale_InsufficientBudget(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	p, o := seedSale(t, repos)

	sale := store.Sale{TournamentID: "ipl-2026", PlayerID: p.ID, OwnerID: o.ID, Amount: 150000}
	if err := repos.Auction.CommitSale(ctx, sale); err == nil {
		t.Fatal("expected error for over-budget sale")
	}

	got, _ := repos.Players.GetByID(ctx, p.ID)
	if got.Sold() {
		t.Error("player sold despite failed budget check")
	}
}

func TestAuctionStore_ResetAuction(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	p, o := seedSale(t, repos)

	sale := store.Sale{TournamentID: "ipl-2026", PlayerID: p.ID, OwnerID: o.ID, Amount: 60000}
	if err := repos.Auction.CommitSale(ctx, sale); err != nil {
		t.Fatalf("CommitSale: %v", err)
	}
	if err := repos.Auction.ResetAuction(ctx, "ipl-2026", 100000); err != nil {
		t.Fatalf("ResetAuction: %v", err)
	}

	gotP, _ := repos.Players.GetByID(ctx, p.ID)
	if gotP.Sold() {
		t.Error("player still sold after reset")
	}
	gotO, _ := repos.Owners.GetByID(ctx, o.ID)
	if gotO.BudgetRemaining != 100000 || gotO.PlayersOwned != 0 {
		t.Errorf("owner = budget %d, owned %d, want 100000/0", gotO.BudgetRemaining, gotO.PlayersOwned)
	}

	entries, _ := repos.Log.ListByTournament(ctx, "ipl-2026")
	if len(entries) != 1 || !entries[0].Revoked {
		t.Errorf("log = %+v, want one revoked sold entry", entries)
	}
}

func TestOwnerRepo_Leaderboard(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	owners := []store.TeamOwner{
		{TournamentID: "ipl-2026", Name: "Sharks", TotalPoints: 40},
		{TournamentID: "ipl-2026", Name: "Vipers", TotalPoints: 80},
		{TournamentID: "ipl-2026", Name: "Titans", TotalPoints: 80},
		{TournamentID: "other", Name: "Drifters", TotalPoints: 500},
	}
	for i := range owners {
		if err := repos.Owners.Create(ctx, &owners[i]); err != nil {
			t.Fatalf("Create(%s): %v", owners[i].Name, err)
		}
	}

	got, err := repos.Owners.Leaderboard(ctx, "ipl-2026")
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	// Points descending, name ascending on ties; other tournaments excluded.
	want := []string{"Titans", "Vipers", "Sharks"}
	if len(got) != len(want) {
		t.Fatalf("Leaderboard returned %d owners, want %d", len(got), len(want))
	}
	for i, n := range want {
		if got[i].Name != n {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Name, n)
		}
	}
}

func TestRepositories_InsertionOrderStable(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	names := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot",
		"Golf", "Hotel", "India", "Juliett", "Kilo"}
	for _, n := range names {
		p := &store.Player{TournamentID: "ipl-2026", Name: n, Category: "Batsmen", BasePrice: 10000}
		if err := repos.Players.Create(ctx, p); err != nil {
			t.Fatalf("Create(%s): %v", n, err)
		}
	}

	players, err := repos.Players.List(ctx, "ipl-2026")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(players) != len(names) {
		t.Fatalf("List returned %d players, want %d", len(players), len(names))
	}
	// Eleven entries crosses the player-9/player-10 boundary, which catches
	// lexicographic ID ordering bugs.
	for i, n := range names {
		if players[i].Name != n {
			t.Errorf("players[%d] = %q, want %q", i, players[i].Name, n)
		}
	}
}
