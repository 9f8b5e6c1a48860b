// Package queue orders a tournament's unsold players into categories and
// manages traversal through them, including rotation of players that went
// unsold within a category.
package queue

import (
	"math/rand"

	"github.com/jensholdgaard/fantasy-auction/internal/store"
)

// CategoryQueue walks players category by category. Category order is fixed
// by configuration; players within a category are shuffled once at
// initialization (and again on Reshuffle). Sold players stay in place and
// are skipped by all "remaining" computations.
//
// The queue is not safe for concurrent use; the auction engine serializes
// access.
type CategoryQueue struct {
	categories []store.Category
	players    map[string][]*store.Player // keyed by category name, shuffled

	catIdx    int
	playerIdx int
}

// New partitions players by category name and shuffles each category's list
// with rnd (Fisher-Yates via rand.Shuffle). The queue positions itself on
// the first unsold player of the first category.
func New(categories []store.Category, players []*store.Player, rnd *rand.Rand) *CategoryQueue {
	q := &CategoryQueue{
		categories: categories,
		players:    make(map[string][]*store.Player, len(categories)),
	}
	for _, p := range players {
		q.players[p.Category] = append(q.players[p.Category], p)
	}
	for name, list := range q.players {
		rnd.Shuffle(len(list), func(i, j int) {
			list[i], list[j] = list[j], list[i]
		})
		q.players[name] = list
	}
	q.playerIdx = q.firstUnsold(q.currentList())
	return q
}

// Reshuffle re-randomizes every category's player order and repositions the
// queue at the start of the first category. Used by full auction reset.
func (q *CategoryQueue) Reshuffle(rnd *rand.Rand) {
	for _, list := range q.players {
		rnd.Shuffle(len(list), func(i, j int) {
			list[i], list[j] = list[j], list[i]
		})
	}
	q.catIdx = 0
	q.playerIdx = q.firstUnsold(q.currentList())
}

// CurrentCategory returns the category currently being auctioned. ok is
// false once every category has been traversed.
func (q *CategoryQueue) CurrentCategory() (store.Category, bool) {
	if q.catIdx >= len(q.categories) {
		return store.Category{}, false
	}
	return q.categories[q.catIdx], true
}

// CurrentPlayer returns the player currently up for auction. ok is false
// when the position has run past the end of the category's list.
func (q *CategoryQueue) CurrentPlayer() (*store.Player, bool) {
	list := q.currentList()
	if q.playerIdx >= len(list) {
		return nil, false
	}
	return list[q.playerIdx], true
}

// AdvanceWithinCategory moves to the next unsold player in the current
// category. It returns false when the end of the list is reached without
// finding one; the position is then past the end and the caller decides
// whether to rotate or advance the category.
func (q *CategoryQueue) AdvanceWithinCategory() bool {
	list := q.currentList()
	for i := q.playerIdx + 1; i < len(list); i++ {
		if !list[i].Sold() {
			q.playerIdx = i
			return true
		}
	}
	q.playerIdx = len(list)
	return false
}

// RotateUnsold restarts the current category from its first remaining
// unsold player. It returns false if every player in the category is sold.
func (q *CategoryQueue) RotateUnsold() bool {
	list := q.currentList()
	idx := q.firstUnsold(list)
	if idx >= len(list) {
		return false
	}
	q.playerIdx = idx
	return true
}

// AdvanceCategory moves to the next category in configured order and
// positions on its first unsold player. It returns false when already on
// the last category.
func (q *CategoryQueue) AdvanceCategory() bool {
	if q.catIdx+1 >= len(q.categories) {
		return false
	}
	q.catIdx++
	q.playerIdx = q.firstUnsold(q.currentList())
	return true
}

// RemainingInCategory returns how many unsold players are left in the
// current category.
func (q *CategoryQueue) RemainingInCategory() int {
	n := 0
	for _, p := range q.currentList() {
		if !p.Sold() {
			n++
		}
	}
	return n
}

// Complete reports whether the auction has nothing left to sell: every
// player in every category has an owner.
func (q *CategoryQueue) Complete() bool {
	for _, list := range q.players {
		for _, p := range list {
			if !p.Sold() {
				return false
			}
		}
	}
	return true
}

func (q *CategoryQueue) currentList() []*store.Player {
	if q.catIdx >= len(q.categories) {
		return nil
	}
	return q.players[q.categories[q.catIdx].Name]
}

func (q *CategoryQueue) firstUnsold(list []*store.Player) int {
	for i, p := range list {
		if !p.Sold() {
			return i
		}
	}
	return len(list)
}
