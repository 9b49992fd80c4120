package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomRegistry_Create(t *testing.T) {
	t.Parallel()

	rr := newRoomRegistry()

	admin := &Player{id: "p0", name: "Alice", isAdmin: true, client: newTestClient("p0")}
	room := rr.create("popular fruits", fallbackLists["popular fruits"], admin)

	require.NotNil(t, room)
	assert.Len(t, room.id, roomIDLength)
	assert.Equal(t, StatusLobby, room.status)
	require.Len(t, room.players, 1)
	assert.True(t, room.players[0].isAdmin)

	got, ok := rr.get(room.id)
	require.True(t, ok)
	assert.Same(t, room, got)
	assert.Equal(t, 1, rr.count())
}

func TestRoomRegistry_IDFormat(t *testing.T) {
	t.Parallel()

	rr := newRoomRegistry()

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		admin := &Player{id: fmt.Sprintf("p%d", i), name: "Alice", isAdmin: true, client: newTestClient("c")}
		room := rr.create("largest countries", fallbackLists["largest countries"], admin)

		require.Len(t, room.id, roomIDLength)
		for _, r := range room.id {
			valid := (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
			require.True(t, valid, "unexpected character %q in room id %s", r, room.id)
		}

		require.False(t, seen[room.id], "duplicate room id %s", room.id)
		seen[room.id] = true
	}

	assert.Equal(t, 500, rr.count())
}

func TestRoomRegistry_Delete(t *testing.T) {
	t.Parallel()

	rr := newRoomRegistry()

	admin := &Player{id: "p0", name: "Alice", isAdmin: true, client: newTestClient("p0")}
	room := rr.create("popular fruits", fallbackLists["popular fruits"], admin)

	rr.delete(room.id)

	_, ok := rr.get(room.id)
	assert.False(t, ok)
	assert.Equal(t, 0, rr.count())

	// Deleting twice is harmless.
	rr.delete(room.id)
	assert.Equal(t, 0, rr.count())
}

func TestRoomRegistry_GetUnknown(t *testing.T) {
	t.Parallel()

	rr := newRoomRegistry()

	_, ok := rr.get("ZZZZZZ")
	assert.False(t, ok)
}
