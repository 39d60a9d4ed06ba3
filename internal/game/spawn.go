package game

import "math"

// SpawnPositions distributes n spawn points evenly around the spawn ring,
// starting at the +X axis. Every player rests on the platform surface.
func SpawnPositions(n int) []Vec3 {
	positions := make([]Vec3, 0, n)
	if n <= 0 {
		return positions
	}
	step := 2 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		angle := step * float64(i)
		positions = append(positions, Vec3{
			X: math.Cos(angle) * SpawnRingRadius,
			Y: SpawnHeight,
			Z: math.Sin(angle) * SpawnRingRadius,
		})
	}
	return positions
}
