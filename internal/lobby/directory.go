package lobby

import (
	"log/slog"
	"sync"

	"github.com/ballroyale/server/internal/game"
	"github.com/ballroyale/server/internal/ws"
)

// Directory tracks all active rooms by code.
type Directory struct {
	rooms map[string]*Room
	mu    sync.RWMutex
}

// NewDirectory creates an empty room directory.
func NewDirectory() *Directory {
	return &Directory{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom creates a new room under a fresh code and returns it.
func (d *Directory) CreateRoom() *Room {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing := make(map[string]bool, len(d.rooms))
	for code := range d.rooms {
		existing[code] = true
	}

	code := GenerateCode(existing)
	room := NewRoom(code)
	d.rooms[code] = room

	slog.Info("room created", "code", code)
	return room
}

// GetRoom returns a room by its code, or nil.
func (d *Directory) GetRoom(code string) *Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rooms[code]
}

// Join seats a player in the room with the given code.
func (d *Directory) Join(code, name string, client *ws.Client) (*Room, *Member, error) {
	room := d.GetRoom(code)
	if room == nil {
		return nil, nil, ErrRoomNotFound
	}
	member, err := room.AddMember(client.ID, name, client)
	if err != nil {
		return nil, nil, err
	}
	return room, member, nil
}

// RemoveRoom removes a room by its code.
func (d *Directory) RemoveRoom(code string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.rooms, code)
	slog.Info("room removed", "code", code)
}

// RoomCount returns the number of active rooms.
func (d *Directory) RoomCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

// FindRoomByMember finds the room where a player is seated.
func (d *Directory) FindRoomByMember(id string) *Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, room := range d.rooms {
		room.mu.RLock()
		_, seated := room.clients[id]
		room.mu.RUnlock()
		if seated {
			return room
		}
	}
	return nil
}

// Code-keyed accessors used by the session controller. All tolerate a room
// vanishing between lookup and use.

// HostID returns the host of the room with the given code, or "".
func (d *Directory) HostID(code string) string {
	if room := d.GetRoom(code); room != nil {
		return room.HostID()
	}
	return ""
}

// Roster returns the game roster for the room with the given code.
func (d *Directory) Roster(code string) []game.RosterEntry {
	if room := d.GetRoom(code); room != nil {
		return room.Roster()
	}
	return nil
}

// Broadcast fans a message out to every member of the room with the given
// code.
func (d *Directory) Broadcast(code string, msg ws.Message) {
	if room := d.GetRoom(code); room != nil {
		room.Broadcast(msg)
	}
}

// GameStarted closes the room with the given code to joins.
func (d *Directory) GameStarted(code string) {
	if room := d.GetRoom(code); room != nil {
		room.GameStarted()
	}
}

// GameEnded reopens the room with the given code to joins.
func (d *Directory) GameEnded(code string) {
	if room := d.GetRoom(code); room != nil {
		room.GameEnded()
	}
}

// AddWin credits a win to a member of the room with the given code.
func (d *Directory) AddWin(code, playerID string) {
	if room := d.GetRoom(code); room != nil {
		room.AddWin(playerID)
	}
}
