package game

import "time"

// Elimination records one player leaving the round, with the attacker credited
// for the knock-off when one qualifies.
type Elimination struct {
	PlayerID   string
	AttackerID string
	Order      int
}

// CheckEliminations scans surviving players for out-of-bounds positions and
// eliminates them in roster order. A player past the platform rim dies
// immediately; the fall limit is only a backstop for anyone already below the
// surface inside the rim.
func CheckEliminations(s *State, now time.Time) []Elimination {
	var events []Elimination
	for _, p := range s.Players {
		if p.Eliminated {
			continue
		}
		if p.DistanceFromCenter() <= PlatformRadius && p.Position.Y >= FallLimitY {
			continue
		}
		events = append(events, eliminate(s, p, now))
	}
	return events
}

func eliminate(s *State, p *Player, now time.Time) Elimination {
	p.Eliminated = true
	p.EliminatedAt = now
	s.removeAlive(p.ID)
	s.EliminationOrder = append(s.EliminationOrder, p.ID)

	ev := Elimination{
		PlayerID: p.ID,
		Order:    len(s.EliminationOrder),
	}

	// Credit the last hit only while it is fresh, and only to a player still
	// in the round.
	if p.LastHitBy != "" && now.Sub(p.LastHitTime) <= CreditWindow {
		if attacker := s.Player(p.LastHitBy); attacker != nil && !attacker.Eliminated {
			attacker.Eliminations++
			ev.AttackerID = attacker.ID
		}
	}
	return ev
}

// CheckVictory reports whether the round is over and who won. In classic mode
// the round ends when at most one player survives; a full wipe-out on one tick
// crowns the last player eliminated.
func CheckVictory(s *State) (winnerID string, over bool) {
	switch s.AliveCount() {
	case 0:
		if n := len(s.EliminationOrder); n > 0 {
			return s.EliminationOrder[n-1], true
		}
		return "", true
	case 1:
		return s.AliveIDs[0], true
	default:
		return "", false
	}
}

// CheckTimedVictory ends a timed round once the clock runs out, crowning the
// elimination leader.
func CheckTimedVictory(s *State, now time.Time) (winnerID string, over bool) {
	if winnerID, over = CheckVictory(s); over {
		return winnerID, true
	}
	if now.Sub(s.StartedAt) < TimedModeDuration {
		return "", false
	}
	return EliminationLeader(s), true
}

// EliminationLeader returns the player with the most eliminations, ranking
// the whole roster. A knocked-out player keeps the crown earned before
// falling. Ties break by roster order.
func EliminationLeader(s *State) string {
	best := -1
	leader := ""
	for _, p := range s.Players {
		if p.Eliminations > best {
			best = p.Eliminations
			leader = p.ID
		}
	}
	return leader
}
