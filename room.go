/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
	"sync"
	"time"
)

const (
	listSize    = 10
	placeholder = "***"
)

type GameStatus int

const (
	StatusLobby GameStatus = iota
	StatusPlaying
	StatusFinished
)

func (s GameStatus) String() string {
	switch s {
	case StatusLobby:
		return "lobby"
	case StatusPlaying:
		return "playing"
	case StatusFinished:
		return "finished"
	}
	return "unknown"
}

// Item is one ranked entry of a room's top-10 list.
type Item struct {
	rank      int
	name      string
	revealed  bool
	guessedBy string // player name, set only once revealed
}

// Player holds the data we store server-side for one connection's seat.
type Player struct {
	id      string
	name    string
	score   int
	isAdmin bool
	client  *Client
}

// Room is one isolated game session. All fields behind mu; methods with a
// Locked suffix assume mu is already held.
type Room struct {
	mu sync.Mutex

	id        string
	category  string
	items     []*Item // exactly listSize entries, index = rank-1
	players   []*Player
	turnIndex int
	status    GameStatus
	createdAt time.Time

	// Set when the room has been removed from the registry, so a join
	// racing the removal observes "Room not found" instead of reviving it.
	closed bool
}

func newRoom(id, category string, names []string, admin *Player) *Room {
	items := make([]*Item, 0, listSize)
	for i, name := range names {
		items = append(items, &Item{
			rank: i + 1,
			name: name,
		})
	}

	return &Room{
		id:        id,
		category:  category,
		items:     items,
		players:   []*Player{admin},
		status:    StatusLobby,
		createdAt: time.Now(),
	}
}

func (r *Room) findPlayerLocked(id string) *Player {
	for _, p := range r.players {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (r *Room) nameTakenLocked(name string) bool {
	for _, p := range r.players {
		if strings.EqualFold(p.name, name) {
			return true
		}
	}
	return false
}

// addPlayerLocked seats a joiner. The caller has already validated name
// uniqueness and lobby status.
func (r *Room) addPlayerLocked(p *Player) {
	r.players = append(r.players, p)
}

// removePlayerLocked takes a player out of the roster, re-anchors the turn
// pointer to a valid index, and promotes the earliest-joined remaining
// player to admin if none is left. Returns the removed player, or nil if
// the id held no seat.
func (r *Room) removePlayerLocked(id string) *Player {
	index := -1
	for i, p := range r.players {
		if p.id == id {
			index = i
			break
		}
	}
	if index == -1 {
		return nil
	}

	removed := r.players[index]
	r.players = append(r.players[:index], r.players[index+1:]...)

	if len(r.players) == 0 {
		r.turnIndex = 0
		return removed
	}

	// Clamp rather than preserve: whose turn it "should" be is not
	// carried across a disconnect.
	r.turnIndex %= len(r.players)

	hasAdmin := false
	for _, p := range r.players {
		if p.isAdmin {
			hasAdmin = true
			break
		}
	}
	if !hasAdmin {
		r.players[0].isAdmin = true
	}

	return removed
}

// startLocked transitions Lobby -> Playing. Only the admin may start, and
// a room never returns to an earlier status.
func (r *Room) startLocked(playerID string) error {
	p := r.findPlayerLocked(playerID)
	if p == nil || !p.isAdmin {
		return errNotAdminStart
	}
	if r.status != StatusLobby {
		return errInvalidState
	}
	if len(r.players) == 0 {
		return errEmptyRoom
	}

	r.status = StatusPlaying
	r.turnIndex = 0

	return nil
}

// endLocked transitions Playing -> Finished regardless of how many items
// have been revealed.
func (r *Room) endLocked(playerID string) error {
	p := r.findPlayerLocked(playerID)
	if p == nil || !p.isAdmin {
		return errNotAdminEnd
	}
	if r.status != StatusPlaying {
		return errInvalidState
	}

	r.status = StatusFinished

	return nil
}

func (r *Room) currentPlayerLocked() *Player {
	if len(r.players) == 0 || r.turnIndex >= len(r.players) {
		return nil
	}
	return r.players[r.turnIndex]
}

func (r *Room) revealedCountLocked() int {
	count := 0
	for _, item := range r.items {
		if item.revealed {
			count++
		}
	}
	return count
}

// guessResult captures everything one accepted guess changed.
type guessResult struct {
	correct  bool
	item     *Item   // revealed item, nil on a miss
	scorer   *Player // submitting player
	finished bool    // this guess revealed the final item
	next     *Player // new turn holder, nil when finished
}

// evaluateGuessLocked applies one guess. A guess is rejected before any
// mutation if the room is not playing or the submitter does not hold the
// turn. Matching scans unrevealed items in ascending rank order and treats
// a case-insensitive substring hit as correct, so a short guess can match
// an earlier rank than intended; this looseness is deliberate and kept.
// The turn advances after every accepted guess, correct or not, unless the
// guess just finished the game.
func (r *Room) evaluateGuessLocked(playerID, guess string) (guessResult, error) {
	if r.status != StatusPlaying {
		return guessResult{}, errInvalidState
	}

	current := r.currentPlayerLocked()
	if current == nil || current.id != playerID {
		return guessResult{}, errNotYourTurn
	}

	result := guessResult{scorer: current}

	lowered := strings.ToLower(guess)
	for _, item := range r.items {
		if item.revealed {
			continue
		}
		if strings.Contains(strings.ToLower(item.name), lowered) {
			item.revealed = true
			item.guessedBy = current.name
			current.score += 11 - item.rank

			result.correct = true
			result.item = item
			break
		}
	}

	if result.correct && r.revealedCountLocked() == listSize {
		r.status = StatusFinished
		result.finished = true
		return result, nil
	}

	r.turnIndex = (r.turnIndex + 1) % len(r.players)
	result.next = r.players[r.turnIndex]

	return result, nil
}

// Wire representations. Field names match the client protocol.

type itemView struct {
	Rank       int    `json:"rank"`
	Name       string `json:"name"`
	IsRevealed bool   `json:"isRevealed"`
	GuessedBy  string `json:"guessedBy,omitempty"`
}

type playerView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Score   int    `json:"score"`
	IsAdmin bool   `json:"isAdmin"`
}

type roomView struct {
	ID                 string       `json:"id"`
	Category           string       `json:"category"`
	TopItems           []itemView   `json:"topItems"`
	Players            []playerView `json:"players"`
	CurrentPlayerIndex int          `json:"currentPlayerIndex"`
	GameStatus         string       `json:"gameStatus"`
	CreatedAt          time.Time    `json:"createdAt"`
}

func (i *Item) view(revealName bool) itemView {
	v := itemView{
		Rank:       i.rank,
		Name:       placeholder,
		IsRevealed: i.revealed,
		GuessedBy:  i.guessedBy,
	}
	if revealName || i.revealed {
		v.Name = i.name
	}
	return v
}

func (p *Player) view() playerView {
	return playerView{
		ID:      p.id,
		Name:    p.name,
		Score:   p.score,
		IsAdmin: p.isAdmin,
	}
}

// snapshotLocked renders the room for clients. Unrevealed item names are
// redacted until the room is finished, at which point everything is
// visible no matter how it got there.
func (r *Room) snapshotLocked() roomView {
	full := r.status == StatusFinished

	items := make([]itemView, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item.view(full))
	}

	players := make([]playerView, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p.view())
	}

	return roomView{
		ID:                 r.id,
		Category:           r.category,
		TopItems:           items,
		Players:            players,
		CurrentPlayerIndex: r.turnIndex,
		GameStatus:         r.status.String(),
		CreatedAt:          r.createdAt,
	}
}

// itemViewsLocked returns the unredacted item list, used once a game
// finishes.
func (r *Room) itemViewsLocked() []itemView {
	items := make([]itemView, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item.view(true))
	}
	return items
}
