// Package memstore provides a store.Driver backed by in-process maps. It is
// used for demo tournaments and by engine tests; it applies the same
// atomicity rules as the Postgres driver (CommitSale and ResetAuction
// either fully apply or leave nothing changed).
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jensholdgaard/fantasy-auction/internal/auctionlog"
	"github.com/jensholdgaard/fantasy-auction/internal/clock"
	"github.com/jensholdgaard/fantasy-auction/internal/config"
	"github.com/jensholdgaard/fantasy-auction/internal/store"
)

func init() {
	store.Register("memory", openMemory)
}

// openMemory is the store.Driver for the "memory" backend.
func openMemory(_ context.Context, _ config.DatabaseConfig, clk clock.Clock) (*store.Repositories, error) {
	m := New(clk)
	return m.Repositories(), nil
}

// Store holds all in-memory state behind one mutex.
type Store struct {
	mu      sync.RWMutex
	clock   clock.Clock
	nextID  int
	players map[string]*store.Player
	owners  map[string]*store.TeamOwner
	cats    []store.Category
	log     []auctionlog.Entry
}

// New returns an empty in-memory store.
func New(clk clock.Clock) *Store {
	return &Store{
		clock:   clk,
		players: make(map[string]*store.Player),
		owners:  make(map[string]*store.TeamOwner),
	}
}

// Repositories exposes the store through the driver interfaces.
func (m *Store) Repositories() *store.Repositories {
	return &store.Repositories{
		Players:    (*playerRepo)(m),
		Owners:     (*ownerRepo)(m),
		Categories: (*categoryRepo)(m),
		Log:        (*logStore)(m),
		Auction:    (*auctionStore)(m),
		Closer:     closerFunc(func() error { return nil }),
		Ping:       func(context.Context) error { return nil },
	}
}

// closerFunc adapts a func() error into an io.Closer.
type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func (m *Store) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

type playerRepo Store

func (r *playerRepo) Create(_ context.Context, p *store.Player) error {
	m := (*Store)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now().UTC()
	p.ID = m.id("player")
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	m.players[p.ID] = &cp
	return nil
}

func (r *playerRepo) GetByID(_ context.Context, id string) (*store.Player, error) {
	m := (*Store)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	if !ok {
		return nil, fmt.Errorf("player %s not found", id)
	}
	cp := *p
	return &cp, nil
}

func (r *playerRepo) List(_ context.Context, tournamentID string) ([]store.Player, error) {
	m := (*Store)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []store.Player
	for _, p := range m.players {
		if p.TournamentID == tournamentID {
			out = append(out, *p)
		}
	}
	sortByCreated(out, func(p store.Player) string { return p.ID })
	return out, nil
}

func (r *playerRepo) ListUnsold(_ context.Context, tournamentID string) ([]store.Player, error) {
	m := (*Store)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []store.Player
	for _, p := range m.players {
		if p.TournamentID == tournamentID && p.OwnerID == nil {
			out = append(out, *p)
		}
	}
	sortByCreated(out, func(p store.Player) string { return p.ID })
	return out, nil
}

type ownerRepo Store

func (r *ownerRepo) Create(_ context.Context, o *store.TeamOwner) error {
	m := (*Store)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now().UTC()
	o.ID = m.id("owner")
	o.CreatedAt = now
	o.UpdatedAt = now
	cp := *o
	m.owners[o.ID] = &cp
	return nil
}

func (r *ownerRepo) GetByID(_ context.Context, id string) (*store.TeamOwner, error) {
	m := (*Store)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.owners[id]
	if !ok {
		return nil, fmt.Errorf("team owner %s not found", id)
	}
	cp := *o
	return &cp, nil
}

func (r *ownerRepo) List(_ context.Context, tournamentID string) ([]store.TeamOwner, error) {
	m := (*Store)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []store.TeamOwner
	for _, o := range m.owners {
		if o.TournamentID == tournamentID {
			out = append(out, *o)
		}
	}
	sortByCreated(out, func(o store.TeamOwner) string { return o.ID })
	return out, nil
}

func (r *ownerRepo) Leaderboard(ctx context.Context, tournamentID string) ([]store.TeamOwner, error) {
	out, err := r.List(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *ownerRepo) AddPoints(_ context.Context, id string, delta int) error {
	m := (*Store)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.owners[id]
	if !ok {
		return fmt.Errorf("team owner %s not found", id)
	}
	o.TotalPoints += delta
	o.UpdatedAt = m.clock.Now().UTC()
	return nil
}

type categoryRepo Store

func (r *categoryRepo) Create(_ context.Context, c *store.Category) error {
	m := (*Store)(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id("category")
	m.cats = append(m.cats, *c)
	return nil
}

func (r *categoryRepo) List(_ context.Context, tournamentID string) ([]store.Category, error) {
	m := (*Store)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []store.Category
	for _, c := range m.cats {
		if c.TournamentID == tournamentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

type logStore Store

func (s *logStore) Record(_ context.Context, entries ...auctionlog.Entry) error {
	m := (*Store)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendEntries(entries...)
	return nil
}

// appendEntries assumes the lock is held.
func (m *Store) appendEntries(entries ...auctionlog.Entry) {
	for _, e := range entries {
		e.ID = m.id("entry")
		if e.CreatedAt.IsZero() {
			e.CreatedAt = m.clock.Now().UTC()
		}
		m.log = append(m.log, e)
	}
}

func (s *logStore) ListByTournament(_ context.Context, tournamentID string) ([]auctionlog.Entry, error) {
	m := (*Store)(s)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []auctionlog.Entry
	for _, e := range m.log {
		if e.TournamentID == tournamentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *logStore) RevokeAll(_ context.Context, tournamentID string) (int64, error) {
	m := (*Store)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revokeAll(tournamentID), nil
}

// revokeAll assumes the lock is held.
func (m *Store) revokeAll(tournamentID string) int64 {
	var n int64
	for i := range m.log {
		if m.log[i].TournamentID == tournamentID && !m.log[i].Revoked {
			m.log[i].Revoked = true
			n++
		}
	}
	return n
}

type auctionStore Store

func (s *auctionStore) CommitSale(_ context.Context, sale store.Sale) error {
	m := (*Store)(s)
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[sale.PlayerID]
	if !ok || p.OwnerID != nil {
		return fmt.Errorf("player %s not found or already sold", sale.PlayerID)
	}
	o, ok := m.owners[sale.OwnerID]
	if !ok || o.BudgetRemaining < sale.Amount {
		return fmt.Errorf("owner %s not found or has insufficient budget", sale.OwnerID)
	}

	now := m.clock.Now().UTC()
	ownerID := sale.OwnerID
	price := sale.Amount
	p.OwnerID = &ownerID
	p.AuctionPrice = &price
	p.UpdatedAt = now
	o.BudgetRemaining -= sale.Amount
	o.PlayersOwned++
	o.UpdatedAt = now

	m.appendEntries(auctionlog.Entry{
		TournamentID: sale.TournamentID,
		PlayerID:     sale.PlayerID,
		BidderID:     &ownerID,
		Amount:       sale.Amount,
		Kind:         auctionlog.KindSold,
		CreatedAt:    now,
	})
	return nil
}

func (s *auctionStore) ResetAuction(_ context.Context, tournamentID string, initialBudget int) error {
	m := (*Store)(s)
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now().UTC()
	for _, p := range m.players {
		if p.TournamentID == tournamentID && p.OwnerID != nil {
			p.OwnerID = nil
			p.AuctionPrice = nil
			p.UpdatedAt = now
		}
	}
	for _, o := range m.owners {
		if o.TournamentID == tournamentID {
			o.BudgetRemaining = initialBudget
			o.PlayersOwned = 0
			o.UpdatedAt = now
		}
	}
	m.revokeAll(tournamentID)
	return nil
}

// sortByCreated orders by the monotonic IDs handed out at creation, giving
// stable insertion order. IDs have the form prefix-N, so shorter sorts
// before longer and player-10 lands after player-9.
func sortByCreated[T any](items []T, key func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		a, b := key(items[i]), key(items[j])
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
}
