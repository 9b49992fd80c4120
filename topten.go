// Topten multiplayer game
//
// Players compete in real time to guess the members of a ranked top-10
// list for a chosen category, taking turns, with points awarded by rank.
//
// Features:
// - Single WebSocket endpoint carrying the whole game protocol: /ws
// - Rooms identified by short shareable 6-char codes, collision-checked
// - Room creator becomes admin; admin starts and ends the game
// - The ranked list is resolved (with fallback) before the room exists
// - Unrevealed item names are redacted to "***" in every snapshot until
//   the game finishes
// - Turn-based guessing; a guess is matched case-insensitively by
//   substring against unrevealed items in rank order
// - Correct guesses score 11-rank points; the tenth reveal ends the game
// - Wrong guesses and validation errors go only to the sender
// - Disconnects forfeit the seat; empty rooms are deleted immediately
// - In-browser QR sharing of room links, backed by go-qrcode
// - REST list endpoint for the single-player client: /api/top10

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Messages coming from clients
type ClientMessage struct {
	Type       string `json:"type"`                 // "createRoom", "joinRoom", "startGame", "submitGuess", "endGame"
	PlayerName string `json:"playerName,omitempty"` // createRoom / joinRoom
	Category   string `json:"category,omitempty"`   // createRoom
	RoomID     string `json:"roomId,omitempty"`     // joinRoom
	Guess      string `json:"guess,omitempty"`      // submitGuess
}

// Messages sent to clients

type RoomCreatedMessage struct {
	Type   string   `json:"type"` // "roomCreated"
	RoomID string   `json:"roomId"`
	Room   roomView `json:"room"`
}

type PlayerJoinedMessage struct {
	Type   string       `json:"type"` // "playerJoined"
	Player JoinedPlayer `json:"player"`
	Room   roomView     `json:"room"`
}

type JoinedPlayer struct {
	Name string `json:"name"`
}

type GameStartedMessage struct {
	Type          string     `json:"type"` // "gameStarted"
	Room          roomView   `json:"room"`
	CurrentPlayer playerView `json:"currentPlayer"`
}

type CorrectGuessMessage struct {
	Type       string     `json:"type"` // "correctGuess"
	Item       itemView   `json:"item"`
	Player     playerView `json:"player"`
	GameStatus string     `json:"gameStatus"`
	AllItems   []itemView `json:"allItems,omitempty"` // present once finished
}

type WrongGuessMessage struct {
	Type  string `json:"type"` // "wrongGuess"
	Guess string `json:"guess"`
}

type NextTurnMessage struct {
	Type               string     `json:"type"` // "nextTurn"
	CurrentPlayerIndex int        `json:"currentPlayerIndex"`
	CurrentPlayer      playerView `json:"currentPlayer"`
}

type GameEndedMessage struct {
	Type string   `json:"type"` // "gameEnded"
	Room roomView `json:"room"`
}

type PlayerLeftMessage struct {
	Type string   `json:"type"` // "playerLeft"
	Room roomView `json:"room"`
}

type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string

	// The room this connection is seated in, nil until a successful
	// createRoom/joinRoom and nil again after disconnect. Only touched
	// from the connection's own read goroutine.
	room *Room
}

// TopTenServer routes inbound events to rooms. All mutation of one room
// happens under that room's mutex, so two events targeting the same room
// are applied one at a time; rooms are otherwise fully independent.
type TopTenServer struct {
	cfg      *Config
	registry *RoomRegistry
	lists    *ListGenerator
}

func newTopTenServer(cfg *Config) *TopTenServer {
	return &TopTenServer{
		cfg:      cfg,
		registry: newRoomRegistry(),
		lists:    newListGenerator(cfg),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// sendTo delivers a message to one client without ever blocking the
// handler; a client that can't keep up loses the frame.
func sendTo(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
	}
}

func sendError(c *Client, err error) {
	sendTo(c, ErrorMessage{
		Type:    "error",
		Message: err.Error(),
	})
}

// broadcastLocked assumes the room's mutex is held by the caller.
func broadcastLocked(room *Room, msg any) {
	for _, p := range room.players {
		sendTo(p.client, msg)
	}
}

// dispatch applies one inbound event. Any panic inside a handler is
// converted into a generic error event for the triggering connection
// rather than propagated.
func (s *TopTenServer) dispatch(c *Client, msg ClientMessage) {
	defer func() {
		if r := recover(); r != nil {
			logf(s.cfg, "GAMES: Recovered handler panic: %v", r)
			sendError(c, errInternal)
		}
	}()

	switch msg.Type {
	case "createRoom":
		s.handleCreateRoom(c, msg)
	case "joinRoom":
		s.handleJoinRoom(c, msg)
	case "startGame":
		s.handleStartGame(c)
	case "submitGuess":
		s.handleSubmitGuess(c, msg)
	case "endGame":
		s.handleEndGame(c)
	default:
		// ignore unknown types
	}
}

// handleCreateRoom resolves the ranked list first, then constructs the
// room with its creator as admin. The room is not visible to anyone until
// the list is in place.
func (s *TopTenServer) handleCreateRoom(c *Client, msg ClientMessage) {
	if c.room != nil || msg.PlayerName == "" || msg.Category == "" {
		sendError(c, errCreateRoom)
		return
	}

	logf(s.cfg, "GAMES: Creating room for category %q", msg.Category)

	names := s.lists.generate(context.Background(), s.cfg, msg.Category)

	admin := &Player{
		id:      c.playerID,
		name:    msg.PlayerName,
		isAdmin: true,
		client:  c,
	}

	room := s.registry.create(msg.Category, names, admin)
	c.room = room

	room.mu.Lock()
	sendTo(c, RoomCreatedMessage{
		Type:   "roomCreated",
		RoomID: room.id,
		Room:   room.snapshotLocked(),
	})
	room.mu.Unlock()

	logf(s.cfg, "GAMES: Player %q created room %s", msg.PlayerName, room.id)
}

func (s *TopTenServer) handleJoinRoom(c *Client, msg ClientMessage) {
	if c.room != nil {
		sendError(c, errInvalidState)
		return
	}
	if msg.PlayerName == "" {
		return
	}

	room, ok := s.registry.get(msg.RoomID)
	if !ok {
		sendError(c, errRoomNotFound)
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	switch {
	case room.closed:
		sendError(c, errRoomNotFound)
		return
	case room.status != StatusLobby:
		sendError(c, errGameInProgress)
		return
	case room.nameTakenLocked(msg.PlayerName):
		sendError(c, errNameTaken)
		return
	}

	room.addPlayerLocked(&Player{
		id:     c.playerID,
		name:   msg.PlayerName,
		client: c,
	})
	c.room = room

	broadcastLocked(room, PlayerJoinedMessage{
		Type:   "playerJoined",
		Player: JoinedPlayer{Name: msg.PlayerName},
		Room:   room.snapshotLocked(),
	})

	logf(s.cfg, "GAMES: Player %q joined room %s", msg.PlayerName, room.id)
}

func (s *TopTenServer) handleStartGame(c *Client) {
	room := c.room
	if room == nil {
		sendError(c, errRoomNotFound)
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.startLocked(c.playerID); err != nil {
		sendError(c, err)
		return
	}

	current := room.currentPlayerLocked()

	broadcastLocked(room, GameStartedMessage{
		Type:          "gameStarted",
		Room:          room.snapshotLocked(),
		CurrentPlayer: current.view(),
	})

	logf(s.cfg, "GAMES: Game started in room %s, first turn %q", room.id, current.name)
}

// handleSubmitGuess applies one guess and emits the outcome before any
// turn-advance event, so clients never see the turn move without knowing
// why.
func (s *TopTenServer) handleSubmitGuess(c *Client, msg ClientMessage) {
	room := c.room
	if room == nil {
		sendError(c, errInvalidState)
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	result, err := room.evaluateGuessLocked(c.playerID, msg.Guess)
	if err != nil {
		sendError(c, err)
		return
	}

	if result.correct {
		guessesTotal.WithLabelValues("correct").Inc()

		reveal := CorrectGuessMessage{
			Type:       "correctGuess",
			Item:       result.item.view(true),
			Player:     result.scorer.view(),
			GameStatus: room.status.String(),
		}
		if result.finished {
			reveal.AllItems = room.itemViewsLocked()
		}
		broadcastLocked(room, reveal)

		logf(s.cfg, "GAMES: Correct guess %q by %q in room %s", msg.Guess, result.scorer.name, room.id)
	} else {
		guessesTotal.WithLabelValues("wrong").Inc()

		sendTo(c, WrongGuessMessage{
			Type:  "wrongGuess",
			Guess: msg.Guess,
		})

		logf(s.cfg, "GAMES: Wrong guess %q by %q in room %s", msg.Guess, result.scorer.name, room.id)
	}

	// No further turn event once the final reveal finished the game.
	if result.finished {
		return
	}

	broadcastLocked(room, NextTurnMessage{
		Type:               "nextTurn",
		CurrentPlayerIndex: room.turnIndex,
		CurrentPlayer:      result.next.view(),
	})
}

func (s *TopTenServer) handleEndGame(c *Client) {
	room := c.room
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.endLocked(c.playerID); err != nil {
		sendError(c, err)
		return
	}

	broadcastLocked(room, GameEndedMessage{
		Type: "gameEnded",
		Room: room.snapshotLocked(),
	})

	logf(s.cfg, "GAMES: Game ended in room %s", room.id)
}

// handleDisconnect forfeits the connection's seat. The last player out
// deletes the room; otherwise the earliest-joined survivor inherits admin
// and the remaining players get the new roster.
func (s *TopTenServer) handleDisconnect(c *Client) {
	room := c.room
	if room == nil {
		return
	}
	c.room = nil

	room.mu.Lock()

	removed := room.removePlayerLocked(c.playerID)
	if removed == nil {
		room.mu.Unlock()
		return
	}

	if len(room.players) == 0 {
		room.closed = true
		room.mu.Unlock()

		s.registry.delete(room.id)
		logf(s.cfg, "GAMES: Room %s deleted (empty)", room.id)
		return
	}

	broadcastLocked(room, PlayerLeftMessage{
		Type: "playerLeft",
		Room: room.snapshotLocked(),
	})
	room.mu.Unlock()

	logf(s.cfg, "GAMES: Player %q left room %s", removed.name, room.id)
}

func (c *Client) readPump(s *TopTenServer) {
	defer func() {
		// Once the seat is gone no broadcast can reach this client, so
		// closing send here ends the write pump without racing a sender.
		s.handleDisconnect(c)
		close(c.send)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		s.dispatch(c, msg)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// WebSocket handler: every connection gets a fresh ephemeral player id.
func serveWS(s *TopTenServer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(s.cfg, "GAMES: Upgrade error: %v", err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 8),
			playerID: uuid.NewString(),
		}

		go client.writePump()
		client.readPump(s)
	}
}

type topTenItem struct {
	Rank       int    `json:"rank"`
	Name       string `json:"name"`
	IsRevealed bool   `json:"isRevealed"`
}

type topTenResponse struct {
	Success  bool         `json:"success"`
	Category string       `json:"category"`
	Items    []topTenItem `json:"items"`
}

// serveTopTenList backs the single-player client, which holds all game
// state locally and only needs the ranked list.
func serveTopTenList(s *TopTenServer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		category := r.URL.Query().Get("category")
		if category == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Category is required"})
			return
		}

		logf(s.cfg, "LISTS: Generating top 10 list for category %q", category)

		names := s.lists.generate(r.Context(), s.cfg, category)

		items := make([]topTenItem, 0, len(names))
		for i, name := range names {
			items = append(items, topTenItem{
				Rank: i + 1,
				Name: name,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(topTenResponse{
			Success:  true,
			Category: category,
			Items:    items,
		})
	}
}

// QR handler: generates a PNG QR code for a room's join URL using
// go-qrcode. Unknown room ids 404 so stale codes aren't shared.
func serveRoomQR(s *TopTenServer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		roomID := ps.ByName("roomid")
		if _, ok := s.registry.get(roomID); !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + s.cfg.prefix + "/?room=" + roomID

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// statsLoop periodically logs how many rooms are live.
func (s *TopTenServer) statsLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.statsPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logf(s.cfg, "GAMES: Active rooms: %d", s.registry.count())
		case <-ctx.Done():
			return
		}
	}
}

// registerTopTenGame sets up routes so that:
//   - /ws                 → WebSocket game protocol
//   - /api/top10          → ranked list for single-player mode
//   - /rooms/:roomid/qr   → PNG QR code for a room's join URL
func registerTopTenGame(ctx context.Context, cfg *Config, mux *httprouter.Router) *TopTenServer {
	s := newTopTenServer(cfg)

	mux.GET(cfg.prefix+"/ws", serveWS(s))
	mux.GET(cfg.prefix+"/api/top10", serveTopTenList(s))
	mux.GET(cfg.prefix+"/rooms/:roomid/qr", serveRoomQR(s))

	if cfg.statsPeriod > 0 {
		go s.statsLoop(ctx)
	}

	return s
}
