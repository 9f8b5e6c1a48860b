package queue_test

import (
	"math/rand"
	"testing"

	"github.com/jensholdgaard/fantasy-auction/internal/queue"
	"github.com/jensholdgaard/fantasy-auction/internal/store"
)

func testCategories() []store.Category {
	return []store.Category{
		{ID: "cat-1", Name: "Batsmen", Adder: 5000, Ordinal: 1},
		{ID: "cat-2", Name: "Bowlers", Adder: 2000, Ordinal: 2},
	}
}

func testPlayers() []*store.Player {
	return []*store.Player{
		{ID: "p1", Name: "Alpha", Category: "Batsmen", BasePrice: 20000},
		{ID: "p2", Name: "Bravo", Category: "Batsmen", BasePrice: 10000},
		{ID: "p3", Name: "Charlie", Category: "Bowlers", BasePrice: 5000},
	}
}

func sell(p *store.Player) {
	owner := "owner-1"
	price := p.BasePrice
	p.OwnerID = &owner
	p.AuctionPrice = &price
}

func TestQueue_DeterministicShuffle(t *testing.T) {
	// The same seed produces the same traversal order.
	order := func(seed int64) []string {
		players := testPlayers()
		q := queue.New(testCategories(), players, rand.New(rand.NewSource(seed)))
		var ids []string
		for {
			p, ok := q.CurrentPlayer()
			if !ok {
				if !q.AdvanceCategory() {
					break
				}
				continue
			}
			ids = append(ids, p.ID)
			sell(p)
			if !q.AdvanceWithinCategory() && !q.RotateUnsold() {
				if !q.AdvanceCategory() {
					break
				}
			}
		}
		return ids
	}

	first := order(42)
	second := order(42)
	if len(first) != 3 {
		t.Fatalf("traversal visited %d players, want 3", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("position %d: %s vs %s, same seed must give same order", i, first[i], second[i])
		}
	}
}

func TestQueue_CategoryOrderIsFixed(t *testing.T) {
	q := queue.New(testCategories(), testPlayers(), rand.New(rand.NewSource(1)))

	cat, ok := q.CurrentCategory()
	if !ok || cat.Name != "Batsmen" {
		t.Fatalf("CurrentCategory() = %v, %v, want Batsmen", cat.Name, ok)
	}

	if !q.AdvanceCategory() {
		t.Fatal("AdvanceCategory() = false, want true")
	}
	cat, ok = q.CurrentCategory()
	if !ok || cat.Name != "Bowlers" {
		t.Fatalf("CurrentCategory() = %v, %v, want Bowlers", cat.Name, ok)
	}

	if q.AdvanceCategory() {
		t.Error("AdvanceCategory() past last category = true, want false")
	}
}

func TestQueue_RotateUnsold(t *testing.T) {
	// An unsold player re-enters the rotation once the category wraps.
	players := testPlayers()
	q := queue.New(testCategories(), players, rand.New(rand.NewSource(7)))

	first, ok := q.CurrentPlayer()
	if !ok {
		t.Fatal("no current player")
	}

	// Pass over the first player without selling, sell the second.
	if !q.AdvanceWithinCategory() {
		t.Fatal("AdvanceWithinCategory() = false, want true")
	}
	second, _ := q.CurrentPlayer()
	sell(second)

	if q.AdvanceWithinCategory() {
		t.Error("AdvanceWithinCategory() at end of category = true, want false")
	}
	if !q.RotateUnsold() {
		t.Fatal("RotateUnsold() = false, want true")
	}

	got, ok := q.CurrentPlayer()
	if !ok || got.ID != first.ID {
		t.Errorf("rotation landed on %v, want unsold player %s", got, first.ID)
	}
}

func TestQueue_RotateUnsold_AllSold(t *testing.T) {
	players := testPlayers()
	q := queue.New(testCategories(), players, rand.New(rand.NewSource(7)))

	for _, p := range players {
		if p.Category == "Batsmen" {
			sell(p)
		}
	}
	if q.RotateUnsold() {
		t.Error("RotateUnsold() with all sold = true, want false")
	}
}

func TestQueue_SkipsSoldOnEntry(t *testing.T) {
	// Players already sold never reappear.
	players := testPlayers()
	for _, p := range players {
		if p.Category == "Batsmen" {
			sell(p)
		}
	}
	q := queue.New(testCategories(), players, rand.New(rand.NewSource(3)))

	if _, ok := q.CurrentPlayer(); ok {
		t.Error("CurrentPlayer() in fully sold category should not return a player")
	}
	if got := q.RemainingInCategory(); got != 0 {
		t.Errorf("RemainingInCategory() = %d, want 0", got)
	}
}

func TestQueue_EmptyCategory(t *testing.T) {
	cats := append(testCategories(), store.Category{ID: "cat-3", Name: "Keepers", Adder: 1000, Ordinal: 3})
	q := queue.New(cats, testPlayers(), rand.New(rand.NewSource(3)))

	q.AdvanceCategory()
	if !q.AdvanceCategory() {
		t.Fatal("AdvanceCategory() into empty category = false, want true")
	}
	if _, ok := q.CurrentPlayer(); ok {
		t.Error("CurrentPlayer() in empty category should not return a player")
	}
}

func TestQueue_Complete(t *testing.T) {
	players := testPlayers()
	q := queue.New(testCategories(), players, rand.New(rand.NewSource(5)))

	if q.Complete() {
		t.Error("Complete() with unsold players = true, want false")
	}
	for _, p := range players {
		sell(p)
	}
	if !q.Complete() {
		t.Error("Complete() with all sold = false, want true")
	}
}

func TestQueue_Reshuffle(t *testing.T) {
	players := testPlayers()
	q := queue.New(testCategories(), players, rand.New(rand.NewSource(5)))

	q.AdvanceCategory()
	q.Reshuffle(rand.New(rand.NewSource(9)))

	cat, ok := q.CurrentCategory()
	if !ok || cat.Name != "Batsmen" {
		t.Errorf("CurrentCategory() after reshuffle = %v, want first category Batsmen", cat.Name)
	}
	if _, ok := q.CurrentPlayer(); !ok {
		t.Error("CurrentPlayer() after reshuffle should return a player")
	}
}
