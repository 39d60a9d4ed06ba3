package game

// PlayerSnapshot is the broadcast view of one ball. Input, acceleration and
// hit attribution stay server-side.
type PlayerSnapshot struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Color        string  `json:"color"`
	Position     Vec3    `json:"position"`
	Velocity     Vec3    `json:"velocity"`
	Rotation     Vec3    `json:"rotation"`
	Stamina      float64 `json:"stamina"`
	IsSprinting  bool    `json:"isSprinting"`
	IsEliminated bool    `json:"isEliminated"`
	Eliminations int     `json:"eliminations"`
	EliminatedAt int64   `json:"eliminatedAt,omitempty"`
	SurvivalMS   int64   `json:"survivalTime"`
}

// Snapshot is the full per-tick state broadcast.
type Snapshot struct {
	Status         Status           `json:"status"`
	Mode           Mode             `json:"mode"`
	CountdownValue int              `json:"countdownValue,omitempty"`
	Players        []PlayerSnapshot `json:"players"`
	AliveCount     int              `json:"aliveCount"`
	WinnerID       string           `json:"winnerId,omitempty"`
}

// BuildSnapshot copies the mutable state into a broadcast payload. The copy is
// taken on the session goroutine, so encoding can happen off it.
func BuildSnapshot(s *State) Snapshot {
	snap := Snapshot{
		Status:         s.Status,
		Mode:           s.Mode,
		CountdownValue: s.CountdownValue,
		Players:        make([]PlayerSnapshot, len(s.Players)),
		AliveCount:     s.AliveCount(),
		WinnerID:       s.WinnerID,
	}
	for i, p := range s.Players {
		ps := PlayerSnapshot{
			ID:           p.ID,
			Name:         p.Name,
			Color:        p.Color,
			Position:     p.Position,
			Velocity:     p.Velocity,
			Rotation:     p.Rotation,
			Stamina:      p.Stamina,
			IsSprinting:  p.Sprinting,
			IsEliminated: p.Eliminated,
			Eliminations: p.Eliminations,
			SurvivalMS:   p.SurvivalTime.Milliseconds(),
		}
		if p.Eliminated {
			ps.EliminatedAt = p.EliminatedAt.UnixMilli()
		}
		snap.Players[i] = ps
	}
	return snap
}
