package game

import (
	"encoding/json"
	"time"
)

type Status int

const (
	StatusCountdown Status = iota
	StatusPlaying
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusCountdown:
		return "countdown"
	case StatusPlaying:
		return "playing"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes Status as a string.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes Status from a string.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "playing":
		*s = StatusPlaying
	case "ended":
		*s = StatusEnded
	default:
		*s = StatusCountdown
	}
	return nil
}

type Mode int

const (
	ModeClassic Mode = iota
	ModeShrinking
	ModeTimed
)

func (m Mode) String() string {
	switch m {
	case ModeShrinking:
		return "shrinking"
	case ModeTimed:
		return "timed"
	default:
		return "classic"
	}
}

// MarshalJSON serializes Mode as a string.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON deserializes Mode from a string.
func (m *Mode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, ok := ParseMode(str)
	if !ok {
		*m = ModeClassic
		return nil
	}
	*m = parsed
	return nil
}

// ParseMode maps a wire string to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "classic":
		return ModeClassic, true
	case "shrinking":
		return ModeShrinking, true
	case "timed":
		return ModeTimed, true
	default:
		return ModeClassic, false
	}
}

// RosterEntry identifies one participant at session-create time. The lobby
// supplies the roster; membership is fixed for the session's lifetime.
type RosterEntry struct {
	ID    string
	Name  string
	Color string
}

// State is one room's complete mutable game payload. A restart builds a fresh
// State; nothing from the previous playthrough carries over.
type State struct {
	Status         Status
	CountdownValue int
	Mode           Mode

	Players          []*Player // ordered roster, fixed membership
	AliveIDs         []string  // ids of surviving players, roster order
	EliminationOrder []string  // ids in elimination order; index 0 fell first
	WinnerID         string

	StartedAt time.Time // when play began; zero until countdown completes
	LastTick  time.Time // previous tick timestamp, used to compute deltas
}

// NewState builds a countdown-phase payload with all players spawned evenly
// on the spawn ring.
func NewState(roster []RosterEntry, mode Mode) *State {
	s := &State{
		Status:         StatusCountdown,
		CountdownValue: CountdownStart,
		Mode:           mode,
		Players:        make([]*Player, 0, len(roster)),
		AliveIDs:       make([]string, 0, len(roster)),
	}
	positions := SpawnPositions(len(roster))
	for i, entry := range roster {
		p := NewPlayer(entry.ID, entry.Name, entry.Color)
		p.Position = positions[i]
		s.Players = append(s.Players, p)
		s.AliveIDs = append(s.AliveIDs, p.ID)
	}
	return s
}

// BeginPlay transitions countdown → playing and arms the tick clock.
func (s *State) BeginPlay(now time.Time) {
	s.Status = StatusPlaying
	s.CountdownValue = 0
	s.StartedAt = now
	s.LastTick = now
}

// Player returns the roster entry with the given id, or nil.
func (s *State) Player(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// AliveCount returns the number of surviving players.
func (s *State) AliveCount() int {
	return len(s.AliveIDs)
}

// removeAlive drops an id from the alive list, preserving roster order.
func (s *State) removeAlive(id string) {
	for i, alive := range s.AliveIDs {
		if alive == id {
			s.AliveIDs = append(s.AliveIDs[:i], s.AliveIDs[i+1:]...)
			return
		}
	}
}
