// Package auction implements the live auction engine: one player up for
// bidding at a time, fed category by category from a shuffled queue, with
// every sale validated against owner budgets and squad slots.
package auction

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jensholdgaard/fantasy-auction/internal/auctionlog"
	"github.com/jensholdgaard/fantasy-auction/internal/budget"
	"github.com/jensholdgaard/fantasy-auction/internal/clock"
	"github.com/jensholdgaard/fantasy-auction/internal/queue"
	"github.com/jensholdgaard/fantasy-auction/internal/store"
)

// Phase is the engine-level state.
type Phase string

const (
	// PhaseAwaitingCategory means the current category is fully sold and
	// the auctioneer must advance to the next one.
	PhaseAwaitingCategory Phase = "awaiting_category"
	// PhaseLive means a player is up for bidding.
	PhaseLive Phase = "live"
	// PhaseComplete means every player in the tournament has an owner.
	PhaseComplete Phase = "complete"
)

// Rules carries the tournament-wide auction configuration, read once at
// engine construction and on reset.
type Rules struct {
	InitialBudget     int
	MaxPlayersPerTeam int
}

// Stores groups the persistence dependencies the engine writes through.
type Stores struct {
	Players    store.PlayerRepository
	Owners     store.OwnerRepository
	Categories store.CategoryRepository
	Auction    store.AuctionStore
	Log        auctionlog.Store
}

// Engine drives one tournament's auction. It owns the live BidState, the
// category queue and the budget ledger, and is the only writer: all
// mutating operations are serialized through its mutex. FinalizeSale and
// ResetAuction persist first and only mutate in-memory state once the
// write has succeeded.
type Engine struct {
	mu sync.Mutex

	tournamentID string
	rules        Rules

	players    []*store.Player
	owners     map[string]*store.TeamOwner
	categories []store.Category

	ledger   *budget.Ledger
	queue    *queue.CategoryQueue
	bid      *BidState
	selected string
	phase    Phase

	stores Stores
	logger *slog.Logger
	tracer trace.Tracer
	clock  clock.Clock
	rnd    *rand.Rand
}

// NewEngine loads the tournament's owners, players and categories and
// prepares the auction. A non-zero seed makes the per-category shuffle
// deterministic; with seed 0 the shuffle is seeded from the clock. Owners'
// persisted budgets and squad counts seed the ledger, so constructing an
// engine over a partially-run auction resumes it.
func NewEngine(ctx context.Context, tournamentID string, rules Rules, stores Stores,
	logger *slog.Logger, tp trace.TracerProvider, clk clock.Clock, seed int64) (*Engine, error) {

	if rules.InitialBudget <= 0 {
		return nil, fmt.Errorf("initial budget must be positive, got %d", rules.InitialBudget)
	}
	if rules.MaxPlayersPerTeam <= 0 {
		return nil, fmt.Errorf("max players per team must be positive, got %d", rules.MaxPlayersPerTeam)
	}

	cats, err := stores.Categories.List(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("tournament %s has no categories configured", tournamentID)
	}
	// A missing adder is a configuration error, not a runtime fallback.
	catNames := make(map[string]bool, len(cats))
	for _, c := range cats {
		if c.Adder <= 0 {
			return nil, fmt.Errorf("category %q has no bid increment configured", c.Name)
		}
		catNames[c.Name] = true
	}

	ownerList, err := stores.Owners.List(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("listing team owners: %w", err)
	}
	if len(ownerList) == 0 {
		return nil, fmt.Errorf("tournament %s has no team owners", tournamentID)
	}

	playerList, err := stores.Players.List(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	// A player outside every configured category would never come up for
	// auction, so the auction could never complete.
	for i := range playerList {
		if !catNames[playerList[i].Category] {
			return nil, fmt.Errorf("player %q is in unknown category %q", playerList[i].Name, playerList[i].Category)
		}
	}

	if seed == 0 {
		seed = clk.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))

	e := &Engine{
		tournamentID: tournamentID,
		rules:        rules,
		owners:       make(map[string]*store.TeamOwner, len(ownerList)),
		categories:   cats,
		ledger:       budget.NewLedger(rules.MaxPlayersPerTeam),
		stores:       stores,
		logger:       logger,
		tracer:       tp.Tracer("github.com/jensholdgaard/fantasy-auction/internal/auction"),
		clock:        clk,
		rnd:          rnd,
	}

	for i := range ownerList {
		o := &ownerList[i]
		e.owners[o.ID] = o
		e.ledger.Seed(o.ID, rules.InitialBudget, o.BudgetRemaining, o.PlayersOwned)
	}
	e.players = make([]*store.Player, len(playerList))
	for i := range playerList {
		e.players[i] = &playerList[i]
	}

	e.queue = queue.New(cats, e.players, rnd)
	e.position()

	logger.InfoContext(ctx, "auction engine ready",
		slog.String("tournament_id", tournamentID),
		slog.Int("players", len(e.players)),
		slog.Int("owners", len(ownerList)),
		slog.Int("categories", len(cats)),
		slog.String("phase", string(e.phase)),
	)
	return e, nil
}

// TournamentID returns the tournament this engine drives.
func (e *Engine) TournamentID() string { return e.tournamentID }

// SelectBidder pre-selects the owner subsequent bids apply to. Owners who
// cannot legally bid (squad full, or not enough budget left to fill every
// remaining slot at the cheapest available price) are rejected.
func (e *Engine) SelectBidder(ctx context.Context, ownerID string) error {
	ctx, span := e.tracer.Start(ctx, "Engine.SelectBidder",
		trace.WithAttributes(attribute.String("owner.id", ownerID)),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.owners[ownerID]; !ok {
		return ErrUnknownOwner
	}
	if e.ledger.SlotsRemaining(ownerID) <= 0 {
		return ErrSquadFull
	}
	if !e.ledger.CanBid(ownerID, e.minBasePrice()) {
		return ErrInsufficientBudget
	}
	e.selected = ownerID

	e.logger.InfoContext(ctx, "bidder selected",
		slog.String("tournament_id", e.tournamentID),
		slog.String("owner_id", ownerID),
	)
	return nil
}

// PlaceBid places a bid by ownerID at amount on the live player.
func (e *Engine) PlaceBid(ctx context.Context, ownerID string, amount int) error {
	ctx, span := e.tracer.Start(ctx, "Engine.PlaceBid",
		trace.WithAttributes(
			attribute.String("owner.id", ownerID),
			attribute.Int("bid.amount", amount),
		),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseLive || e.bid == nil {
		return ErrNoLivePlayer
	}
	if _, ok := e.owners[ownerID]; !ok {
		return ErrUnknownOwner
	}
	if e.ledger.SlotsRemaining(ownerID) <= 0 {
		return ErrSquadFull
	}
	if err := e.bid.Allows(ownerID, amount); err != nil {
		return err
	}
	if amount > e.ledger.Remaining(ownerID) {
		return ErrInsufficientBudget
	}
	min := e.minBasePrice()
	if amount > e.ledger.MaxBid(ownerID, min) || !e.ledger.CanBid(ownerID, min) {
		return ErrExceedsSquadReserve
	}

	if err := e.bid.Place(ownerID, amount); err != nil {
		return err
	}

	// Bids are visible in the log before the sale is finalized; a log
	// write failure here does not invalidate the bid.
	entry := auctionlog.Entry{
		TournamentID: e.tournamentID,
		PlayerID:     e.bid.Player.ID,
		BidderID:     &ownerID,
		Amount:       amount,
		Kind:         auctionlog.KindBid,
		CreatedAt:    e.clock.Now().UTC(),
	}
	if err := e.stores.Log.Record(ctx, entry); err != nil {
		e.logger.ErrorContext(ctx, "failed to record bid entry", slog.Any("error", err))
	}

	e.logger.InfoContext(ctx, "bid placed",
		slog.String("tournament_id", e.tournamentID),
		slog.String("player_id", e.bid.Player.ID),
		slog.String("owner_id", ownerID),
		slog.Int("amount", amount),
	)
	return nil
}

// BidSelected places a bid at the current asking price for the selected
// bidder. This is the confirm step after one or more raises.
func (e *Engine) BidSelected(ctx context.Context) error {
	e.mu.Lock()
	sel := e.selected
	var asking int
	if e.bid != nil {
		asking = e.bid.CurrentBid
	}
	e.mu.Unlock()

	if sel == "" {
		return ErrNoBidderSelected
	}
	return e.PlaceBid(ctx, sel, asking)
}

// IncrementBid raises the asking price by the current category's adder. It
// is a price proposal only: no bidder is attached and no budget is
// validated, so no owner is committed by a raise.
func (e *Engine) IncrementBid(ctx context.Context) (int, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.IncrementBid")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseLive || e.bid == nil {
		return 0, ErrNoLivePlayer
	}
	price, err := e.bid.Raise()
	if err != nil {
		return 0, err
	}

	e.logger.InfoContext(ctx, "asking price raised",
		slog.String("tournament_id", e.tournamentID),
		slog.String("player_id", e.bid.Player.ID),
		slog.Int("price", price),
	)
	return price, nil
}

// FinalizeSale sells the live player to the leading bidder at the current
// bid. The ownership update, budget deduction and sold log entry are
// persisted in one transaction before any in-memory state changes; a store
// failure surfaces as a *PersistenceError and leaves the engine untouched.
func (e *Engine) FinalizeSale(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.FinalizeSale")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseLive || e.bid == nil {
		return ErrNoLivePlayer
	}
	if e.bid.LeadingBidder == "" || e.bid.CurrentBid <= 0 {
		return ErrNoActiveBid
	}

	sale := store.Sale{
		TournamentID: e.tournamentID,
		PlayerID:     e.bid.Player.ID,
		OwnerID:      e.bid.LeadingBidder,
		Amount:       e.bid.CurrentBid,
	}
	if err := e.stores.Auction.CommitSale(ctx, sale); err != nil {
		return &PersistenceError{Op: "committing sale", Err: err}
	}

	if err := e.bid.MarkSold(); err != nil {
		return err
	}
	e.bid.Player.OwnerID = &sale.OwnerID
	price := sale.Amount
	e.bid.Player.AuctionPrice = &price
	if err := e.ledger.CommitSale(sale.OwnerID, sale.Amount); err != nil {
		return err
	}
	if o := e.owners[sale.OwnerID]; o != nil {
		o.BudgetRemaining -= sale.Amount
		o.PlayersOwned++
	}
	e.selected = ""

	e.logger.InfoContext(ctx, "player sold",
		slog.String("tournament_id", e.tournamentID),
		slog.String("player_id", sale.PlayerID),
		slog.String("owner_id", sale.OwnerID),
		slog.Int("amount", sale.Amount),
	)

	e.advance(ctx)
	return nil
}

// MarkUnsold closes bidding on the live player without a sale. The player
// stays ownerless and re-enters the rotation of its category.
func (e *Engine) MarkUnsold(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.MarkUnsold")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseLive || e.bid == nil {
		return ErrNoLivePlayer
	}
	playerID := e.bid.Player.ID
	amount := e.bid.CurrentBid
	if err := e.bid.MarkUnsold(); err != nil {
		return err
	}
	e.selected = ""

	entry := auctionlog.Entry{
		TournamentID: e.tournamentID,
		PlayerID:     playerID,
		Amount:       amount,
		Kind:         auctionlog.KindUnsold,
		CreatedAt:    e.clock.Now().UTC(),
	}
	if err := e.stores.Log.Record(ctx, entry); err != nil {
		e.logger.ErrorContext(ctx, "failed to record unsold entry", slog.Any("error", err))
	}

	e.logger.InfoContext(ctx, "player unsold",
		slog.String("tournament_id", e.tournamentID),
		slog.String("player_id", playerID),
	)

	e.advance(ctx)
	return nil
}

// AdvanceCategory moves to the next category in configured order,
// abandoning the current lot if one is live (the player stays unsold).
func (e *Engine) AdvanceCategory(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.AdvanceCategory")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase == PhaseComplete {
		return ErrCategoryExhausted
	}
	if !e.queue.AdvanceCategory() {
		return ErrCategoryExhausted
	}
	e.position()

	cat, _ := e.queue.CurrentCategory()
	e.logger.InfoContext(ctx, "advanced to category",
		slog.String("tournament_id", e.tournamentID),
		slog.String("category", cat.Name),
		slog.String("phase", string(e.phase)),
	)
	return nil
}

// ResetAuction returns the tournament to its pre-auction state: every
// player unsold, every budget restored, every existing log entry marked
// revoked (never deleted), and the queue re-shuffled. The store writes land
// in one transaction before in-memory state is touched.
func (e *Engine) ResetAuction(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.ResetAuction")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.stores.Auction.ResetAuction(ctx, e.tournamentID, e.rules.InitialBudget); err != nil {
		return &PersistenceError{Op: "resetting auction", Err: err}
	}

	for _, p := range e.players {
		p.OwnerID = nil
		p.AuctionPrice = nil
	}
	for _, o := range e.owners {
		o.BudgetRemaining = e.rules.InitialBudget
		o.PlayersOwned = 0
	}
	e.ledger.Reset()
	e.queue.Reshuffle(e.rnd)
	e.selected = ""
	e.position()

	e.logger.InfoContext(ctx, "auction reset",
		slog.String("tournament_id", e.tournamentID),
		slog.Int("players", len(e.players)),
	)
	return nil
}

// advance moves on after a sold/unsold terminal: next player in the
// category, else rotate back to the category's remaining unsold players,
// else wait for an explicit category advance, else complete.
func (e *Engine) advance(ctx context.Context) {
	if e.queue.Complete() {
		e.phase = PhaseComplete
		e.bid = nil
		e.logger.InfoContext(ctx, "auction complete",
			slog.String("tournament_id", e.tournamentID),
		)
		return
	}
	if e.queue.AdvanceWithinCategory() {
		e.openLot()
		return
	}
	if e.queue.RotateUnsold() {
		e.openLot()
		return
	}
	e.phase = PhaseAwaitingCategory
	e.bid = nil
}

// position opens the lot at the queue's current position, used on engine
// construction, category entry and reset.
func (e *Engine) position() {
	if e.queue.Complete() {
		e.phase = PhaseComplete
		e.bid = nil
		return
	}
	if _, ok := e.queue.CurrentPlayer(); ok {
		e.openLot()
		return
	}
	e.phase = PhaseAwaitingCategory
	e.bid = nil
}

func (e *Engine) openLot() {
	p, _ := e.queue.CurrentPlayer()
	cat, _ := e.queue.CurrentCategory()
	e.bid = NewBidState(p, cat)
	e.phase = PhaseLive
	e.selected = ""
}

// minBasePrice is the cheapest positive base price among currently unsold
// players, or 0 if none remain. It is a point-in-time value: it can shift
// as players in other categories are sold, which makes the squad-reserve
// cap an approximation rather than a guarantee.
func (e *Engine) minBasePrice() int {
	min := 0
	for _, p := range e.players {
		if p.Sold() || p.BasePrice <= 0 {
			continue
		}
		if min == 0 || p.BasePrice < min {
			min = p.BasePrice
		}
	}
	return min
}

// OwnerView is an owner's auction standing as rendered to the UI.
type OwnerView struct {
	ID              string
	Name            string
	Color           string
	BudgetRemaining int
	PlayersOwned    int
	SlotsRemaining  int
	MaxBid          int
	CanBid          bool
}

// Snapshot is a point-in-time view of the auction for the presentation
// layer. All fields are copies; mutating a snapshot has no effect.
type Snapshot struct {
	Phase               Phase
	Category            store.Category
	Player              *store.Player
	CurrentBid          int
	LeadingBidder       string
	SelectedBidder      string
	RemainingInCategory int
	Owners              []OwnerView
}

// Snapshot returns the current auction state for rendering.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	min := e.minBasePrice()
	snap := Snapshot{
		Phase:          e.phase,
		SelectedBidder: e.selected,
	}
	if cat, ok := e.queue.CurrentCategory(); ok {
		snap.Category = cat
		snap.RemainingInCategory = e.queue.RemainingInCategory()
	}
	if e.bid != nil {
		player := *e.bid.Player
		snap.Player = &player
		snap.CurrentBid = e.bid.CurrentBid
		snap.LeadingBidder = e.bid.LeadingBidder
	}
	for _, o := range e.owners {
		snap.Owners = append(snap.Owners, OwnerView{
			ID:              o.ID,
			Name:            o.Name,
			Color:           o.Color,
			BudgetRemaining: e.ledger.Remaining(o.ID),
			PlayersOwned:    e.ledger.Owned(o.ID),
			SlotsRemaining:  e.ledger.SlotsRemaining(o.ID),
			MaxBid:          e.ledger.MaxBid(o.ID, min),
			CanBid:          e.ledger.CanBid(o.ID, min),
		})
	}
	sort.Slice(snap.Owners, func(i, j int) bool { return snap.Owners[i].Name < snap.Owners[j].Name })
	return snap
}

// OwnerByName resolves an owner view by display name.
func (e *Engine) OwnerByName(name string) (OwnerView, bool) {
	for _, v := range e.Snapshot().Owners {
		if v.Name == name {
			return v, true
		}
	}
	return OwnerView{}, false
}
