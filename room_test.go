package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoom(t *testing.T, playerNames ...string) *Room {
	t.Helper()

	require.NotEmpty(t, playerNames)

	admin := &Player{
		id:      "p0",
		name:    playerNames[0],
		isAdmin: true,
		client:  newTestClient("p0"),
	}

	room := newRoom("ABC123", "popular fruits", fallbackLists["popular fruits"], admin)

	for i, name := range playerNames[1:] {
		id := fmt.Sprintf("p%d", i+1)
		room.addPlayerLocked(&Player{
			id:     id,
			name:   name,
			client: newTestClient(id),
		})
	}

	return room
}

func newTestClient(id string) *Client {
	return &Client{
		send:     make(chan any, 64),
		playerID: id,
	}
}

func TestRoom_ItemInvariants(t *testing.T) {
	t.Parallel()

	room := testRoom(t, "Alice")

	require.Len(t, room.items, listSize)

	seen := make(map[int]bool)
	for _, item := range room.items {
		assert.GreaterOrEqual(t, item.rank, 1)
		assert.LessOrEqual(t, item.rank, listSize)
		assert.False(t, seen[item.rank], "duplicate rank %d", item.rank)
		seen[item.rank] = true

		assert.False(t, item.revealed)
		assert.Empty(t, item.guessedBy)
	}

	assert.Equal(t, StatusLobby, room.status)
	assert.Equal(t, "popular fruits", room.category)
}

func TestRoom_Start(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc     string
		playerID string
		status   GameStatus
		expected error
	}{
		{
			desc:     "admin starts from lobby",
			playerID: "p0",
			status:   StatusLobby,
			expected: nil,
		},
		{
			desc:     "non-admin cannot start",
			playerID: "p1",
			status:   StatusLobby,
			expected: errNotAdminStart,
		},
		{
			desc:     "unknown player cannot start",
			playerID: "p9",
			status:   StatusLobby,
			expected: errNotAdminStart,
		},
		{
			desc:     "cannot start twice",
			playerID: "p0",
			status:   StatusPlaying,
			expected: errInvalidState,
		},
		{
			desc:     "cannot restart a finished game",
			playerID: "p0",
			status:   StatusFinished,
			expected: errInvalidState,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			room := testRoom(t, "Alice", "Bob")
			room.status = tc.status

			err := room.startLocked(tc.playerID)
			if tc.expected != nil {
				assert.ErrorIs(t, err, tc.expected)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, StatusPlaying, room.status)
			assert.Equal(t, 0, room.turnIndex)
			assert.Equal(t, "Alice", room.currentPlayerLocked().name)
		})
	}
}

func TestRoom_End(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc     string
		playerID string
		status   GameStatus
		expected error
	}{
		{"admin ends a running game", "p0", StatusPlaying, nil},
		{"non-admin cannot end", "p1", StatusPlaying, errNotAdminEnd},
		{"cannot end from lobby", "p0", StatusLobby, errInvalidState},
		{"cannot end twice", "p0", StatusFinished, errInvalidState},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			room := testRoom(t, "Alice", "Bob")
			room.status = tc.status

			err := room.endLocked(tc.playerID)
			if tc.expected != nil {
				assert.ErrorIs(t, err, tc.expected)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, StatusFinished, room.status)
		})
	}
}

func TestRoom_EvaluateGuess(t *testing.T) {
	t.Parallel()

	t.Run("correct guess scores by rank and advances the turn", func(t *testing.T) {
		t.Parallel()

		room := testRoom(t, "Alice", "Bob")
		require.NoError(t, room.startLocked("p0"))

		result, err := room.evaluateGuessLocked("p0", "Apple")
		require.NoError(t, err)

		assert.True(t, result.correct)
		require.NotNil(t, result.item)
		assert.Equal(t, 1, result.item.rank)
		assert.Equal(t, "Apple", result.item.name)
		assert.True(t, result.item.revealed)
		assert.Equal(t, "Alice", result.item.guessedBy)

		assert.Equal(t, 10, result.scorer.score)
		assert.False(t, result.finished)
		require.NotNil(t, result.next)
		assert.Equal(t, "Bob", result.next.name)
		assert.Equal(t, 1, room.turnIndex)
	})

	t.Run("wrong guess mutates nothing but still advances the turn", func(t *testing.T) {
		t.Parallel()

		room := testRoom(t, "Alice", "Bob")
		require.NoError(t, room.startLocked("p0"))

		result, err := room.evaluateGuessLocked("p0", "Durian")
		require.NoError(t, err)

		assert.False(t, result.correct)
		assert.Nil(t, result.item)
		assert.Equal(t, 0, result.scorer.score)
		assert.Equal(t, 0, room.revealedCountLocked())
		assert.Equal(t, 1, room.turnIndex)
		assert.Equal(t, "Bob", result.next.name)
	})

	t.Run("guess out of turn is rejected with no state change", func(t *testing.T) {
		t.Parallel()

		room := testRoom(t, "Alice", "Bob")
		require.NoError(t, room.startLocked("p0"))

		_, err := room.evaluateGuessLocked("p1", "Apple")
		assert.ErrorIs(t, err, errNotYourTurn)
		assert.Equal(t, 0, room.turnIndex)
		assert.Equal(t, 0, room.revealedCountLocked())
	})

	t.Run("guess outside a running game is rejected", func(t *testing.T) {
		t.Parallel()

		room := testRoom(t, "Alice")

		_, err := room.evaluateGuessLocked("p0", "Apple")
		assert.ErrorIs(t, err, errInvalidState)
	})

	t.Run("matching is case-insensitive substring against rank order", func(t *testing.T) {
		t.Parallel()

		room := testRoom(t, "Alice")
		require.NoError(t, room.startLocked("p0"))

		// "apple" hits rank 1 (Apple) even though Pineapple also contains it.
		result, err := room.evaluateGuessLocked("p0", "apple")
		require.NoError(t, err)
		require.True(t, result.correct)
		assert.Equal(t, 1, result.item.rank)

		// With Apple revealed, the same guess now lands on Pineapple.
		result, err = room.evaluateGuessLocked("p0", "APPLE")
		require.NoError(t, err)
		require.True(t, result.correct)
		assert.Equal(t, 7, result.item.rank)
		assert.Equal(t, "Pineapple", result.item.name)
	})

	t.Run("tenth reveal finishes the game with no further turn", func(t *testing.T) {
		t.Parallel()

		room := testRoom(t, "Alice", "Bob")
		require.NoError(t, room.startLocked("p0"))

		names := []string{"Apple", "Banana", "Orange", "Strawberry", "Grape", "Mango", "Pineapple", "Watermelon", "Cherry", "Peach"}
		players := []string{"p0", "p1"}

		for i, name := range names {
			result, err := room.evaluateGuessLocked(players[i%2], name)
			require.NoError(t, err)
			require.True(t, result.correct, "guess %q", name)

			if i < len(names)-1 {
				assert.False(t, result.finished)
				require.NotNil(t, result.next)
			}
		}

		assert.Equal(t, StatusFinished, room.status)
		assert.Equal(t, listSize, room.revealedCountLocked())

		// Scores always sum to 10+9+...+1.
		total := 0
		for _, p := range room.players {
			total += p.score
		}
		assert.Equal(t, 55, total)

		// Finished rooms accept no further guesses.
		_, err := room.evaluateGuessLocked("p0", "Apple")
		assert.ErrorIs(t, err, errInvalidState)
	})
}

func TestRoom_RemovePlayer(t *testing.T) {
	t.Parallel()

	t.Run("turn pointer is clamped when the holder disconnects", func(t *testing.T) {
		t.Parallel()

		room := testRoom(t, "Alice", "Bob")
		require.NoError(t, room.startLocked("p0"))

		// Advance the turn to Bob, then remove him.
		_, err := room.evaluateGuessLocked("p0", "nope")
		require.NoError(t, err)
		require.Equal(t, 1, room.turnIndex)

		removed := room.removePlayerLocked("p1")
		require.NotNil(t, removed)
		assert.Equal(t, "Bob", removed.name)

		require.Len(t, room.players, 1)
		assert.Equal(t, 0, room.turnIndex)
		assert.Equal(t, "Alice", room.currentPlayerLocked().name)
	})

	t.Run("earliest remaining player inherits admin", func(t *testing.T) {
		t.Parallel()

		room := testRoom(t, "Alice", "Bob", "Carol")

		removed := room.removePlayerLocked("p0")
		require.NotNil(t, removed)
		assert.True(t, removed.isAdmin)

		admins := 0
		for _, p := range room.players {
			if p.isAdmin {
				admins++
			}
		}
		assert.Equal(t, 1, admins)
		assert.True(t, room.players[0].isAdmin)
		assert.Equal(t, "Bob", room.players[0].name)
	})

	t.Run("removing an unknown id is a no-op", func(t *testing.T) {
		t.Parallel()

		room := testRoom(t, "Alice")
		assert.Nil(t, room.removePlayerLocked("p9"))
		assert.Len(t, room.players, 1)
	})
}

func TestRoom_NameTaken(t *testing.T) {
	t.Parallel()

	room := testRoom(t, "Alice")

	assert.True(t, room.nameTakenLocked("Alice"))
	assert.True(t, room.nameTakenLocked("alice"))
	assert.True(t, room.nameTakenLocked("ALICE"))
	assert.False(t, room.nameTakenLocked("Bob"))
}

func TestRoom_Snapshot(t *testing.T) {
	t.Parallel()

	t.Run("unrevealed names are redacted until finished", func(t *testing.T) {
		t.Parallel()

		room := testRoom(t, "Alice", "Bob")
		require.NoError(t, room.startLocked("p0"))

		_, err := room.evaluateGuessLocked("p0", "Apple")
		require.NoError(t, err)

		view := room.snapshotLocked()
		require.Len(t, view.TopItems, listSize)

		for _, item := range view.TopItems {
			if item.Rank == 1 {
				assert.Equal(t, "Apple", item.Name)
				assert.True(t, item.IsRevealed)
				assert.Equal(t, "Alice", item.GuessedBy)
				continue
			}
			assert.Equal(t, placeholder, item.Name)
			assert.False(t, item.IsRevealed)
		}

		assert.Equal(t, "playing", view.GameStatus)
		assert.Equal(t, 1, view.CurrentPlayerIndex)
		assert.Equal(t, "ABC123", view.ID)
	})

	t.Run("finished rooms show every name", func(t *testing.T) {
		t.Parallel()

		room := testRoom(t, "Alice")
		require.NoError(t, room.startLocked("p0"))
		require.NoError(t, room.endLocked("p0"))

		view := room.snapshotLocked()
		assert.Equal(t, "finished", view.GameStatus)
		for _, item := range view.TopItems {
			assert.NotEqual(t, placeholder, item.Name)
		}
	})
}

func TestGameStatus_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "lobby", StatusLobby.String())
	assert.Equal(t, "playing", StatusPlaying.String())
	assert.Equal(t, "finished", StatusFinished.String())
	assert.Equal(t, "unknown", GameStatus(42).String())
}
