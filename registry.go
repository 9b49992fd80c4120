/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"sync"
)

const roomIDLength = 6

// RoomRegistry holds the set of live rooms keyed by room ID, so each code
// is its own isolated session. It is the only process-wide mutable state
// and is passed explicitly to everything that needs it.
type RoomRegistry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func newRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[string]*Room),
	}
}

// newRoomIDLocked generates a crypto-random shareable room code. The caller must
// hold rr.mu; the loop retries until the code is unused among live rooms,
// since a fixed-length code has a real chance of colliding.
func (rr *RoomRegistry) newRoomIDLocked() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for {
		buf := make([]byte, roomIDLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, roomIDLength)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		if _, exists := rr.rooms[id]; !exists {
			return id
		}
	}
}

// create constructs a room in the lobby state with a single admin player
// and inserts it. The item list must already be resolved: no other
// connection can observe the room before this returns.
func (rr *RoomRegistry) create(category string, names []string, admin *Player) *Room {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	id := rr.newRoomIDLocked()
	room := newRoom(id, category, names, admin)
	rr.rooms[id] = room

	roomsCreated.Inc()
	roomsActive.Set(float64(len(rr.rooms)))

	return room
}

func (rr *RoomRegistry) get(id string) (*Room, bool) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	room, ok := rr.rooms[id]
	return room, ok
}

func (rr *RoomRegistry) delete(id string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.rooms, id)
	roomsActive.Set(float64(len(rr.rooms)))
}

func (rr *RoomRegistry) count() int {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	return len(rr.rooms)
}
