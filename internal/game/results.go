package game

import "sort"

// Placement is one row of the final standings.
type Placement struct {
	PlayerID     string `json:"playerId"`
	Name         string `json:"name"`
	Rank         int    `json:"rank"`
	Points       int    `json:"points"`
	Eliminations int    `json:"eliminations"`
	SurvivalMS   int64  `json:"survivalTime"`
}

// BuildPlacements ranks the finished round: the winner first, remaining
// survivors by elimination count, then the fallen from last out to first out.
func BuildPlacements(s *State, winnerID string) []Placement {
	ordered := make([]*Player, 0, len(s.Players))

	if w := s.Player(winnerID); w != nil {
		ordered = append(ordered, w)
	}

	alive := make([]*Player, 0, len(s.AliveIDs))
	for _, p := range s.Players {
		if !p.Eliminated && p.ID != winnerID {
			alive = append(alive, p)
		}
	}
	sort.SliceStable(alive, func(i, j int) bool {
		return alive[i].Eliminations > alive[j].Eliminations
	})
	ordered = append(ordered, alive...)

	for i := len(s.EliminationOrder) - 1; i >= 0; i-- {
		p := s.Player(s.EliminationOrder[i])
		if p == nil || p.ID == winnerID {
			continue
		}
		ordered = append(ordered, p)
	}

	placements := make([]Placement, len(ordered))
	for i, p := range ordered {
		placements[i] = Placement{
			PlayerID:     p.ID,
			Name:         p.Name,
			Rank:         i + 1,
			Points:       PointsForRank(i + 1),
			Eliminations: p.Eliminations,
			SurvivalMS:   p.SurvivalTime.Milliseconds(),
		}
	}
	return placements
}

// PointsForRank awards match points for a final rank, 1-based.
func PointsForRank(rank int) int {
	if rank >= 1 && rank <= len(PlacementPoints) {
		return PlacementPoints[rank-1]
	}
	return DefaultPlacementPoints
}
