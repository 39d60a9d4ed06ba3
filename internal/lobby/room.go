package lobby

import (
	"errors"
	"sync"

	"github.com/ballroyale/server/internal/game"
	"github.com/ballroyale/server/internal/ws"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrGameInProgress = errors.New("game in progress")
)

// Ball colors assigned in join order. The palette holds one entry per seat.
var colorPalette = [game.MaxPlayers]string{
	"#e74c3c", "#3498db", "#2ecc71", "#f1c40f",
	"#9b59b6", "#e67e22", "#1abc9c", "#fd79a8",
}

// Member is one player's seat in a room. Score counts accumulated wins and
// survives restarts.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Score int    `json:"score"`
}

// Room groups players under a join code. Membership keeps join order: it
// drives color assignment, host succession and the roster handed to a new
// game.
type Room struct {
	Code string

	mu      sync.RWMutex
	members []*Member
	hostID  string
	inGame  bool
	clients map[string]*ws.Client
}

// NewRoom creates an empty room with the given code.
func NewRoom(code string) *Room {
	return &Room{
		Code:    code,
		clients: make(map[string]*ws.Client),
	}
}

// AddMember seats a player in the room. Joining is rejected while a game is
// running because the round's membership is fixed at start.
func (r *Room) AddMember(id, name string, client *ws.Client) (*Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inGame {
		return nil, ErrGameInProgress
	}
	if len(r.members) >= game.MaxPlayers {
		return nil, ErrRoomFull
	}

	m := &Member{
		ID:    id,
		Name:  name,
		Color: r.unusedColor(),
	}
	r.members = append(r.members, m)
	r.clients[id] = client

	if len(r.members) == 1 {
		r.hostID = id
	}
	return m, nil
}

// unusedColor picks the first palette color no seated member holds.
// Caller must hold r.mu.
func (r *Room) unusedColor() string {
	for _, c := range colorPalette {
		taken := false
		for _, m := range r.members {
			if m.Color == c {
				taken = true
				break
			}
		}
		if !taken {
			return c
		}
	}
	return colorPalette[0]
}

// RemoveMember unseats a player. If the host leaves, the next member in join
// order takes over.
func (r *Room) RemoveMember(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, m := range r.members {
		if m.ID == id {
			r.members = append(r.members[:i], r.members[i+1:]...)
			break
		}
	}
	delete(r.clients, id)

	if r.hostID == id {
		if len(r.members) > 0 {
			r.hostID = r.members[0].ID
		} else {
			r.hostID = ""
		}
	}
}

// HostID returns the current host's player ID.
func (r *Room) HostID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hostID
}

// MemberCount returns the number of seated players.
func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// IsEmpty returns true if no players are seated.
func (r *Room) IsEmpty() bool {
	return r.MemberCount() == 0
}

// Members returns the seats in join order.
func (r *Room) Members() []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Member, len(r.members))
	for i, m := range r.members {
		out[i] = *m
	}
	return out
}

// Roster converts the current seating into the fixed roster a new game starts
// from.
func (r *Room) Roster() []game.RosterEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roster := make([]game.RosterEntry, len(r.members))
	for i, m := range r.members {
		roster[i] = game.RosterEntry{ID: m.ID, Name: m.Name, Color: m.Color}
	}
	return roster
}

// AddWin credits a match win to a seated player.
func (r *Room) AddWin(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.ID == id {
			m.Score++
			return
		}
	}
}

// GameStarted closes the room to new joins for the duration of the round.
func (r *Room) GameStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inGame = true
}

// GameEnded reopens the room to joins.
func (r *Room) GameEnded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inGame = false
}

// InGame reports whether a round is currently running.
func (r *Room) InGame() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inGame
}

// Broadcast sends a message to every seated player.
func (r *Room) Broadcast(msg ws.Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, client := range r.clients {
		client.SendMessage(msg)
	}
}

// SendTo sends a message to one seated player.
func (r *Room) SendTo(id string, msg ws.Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if client, ok := r.clients[id]; ok {
		client.SendMessage(msg)
	}
}
