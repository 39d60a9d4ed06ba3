package game

import "time"

// ResolveCollisions runs a single pass over every unordered pair of surviving
// players and resolves the overlapping ones. One pass per tick is enough at
// this scale; residual overlap carries to the next tick.
func ResolveCollisions(s *State, now time.Time) {
	for i := 0; i < len(s.Players); i++ {
		a := s.Players[i]
		if a.Eliminated {
			continue
		}
		for j := i + 1; j < len(s.Players); j++ {
			b := s.Players[j]
			if b.Eliminated {
				continue
			}
			resolvePair(a, b, now)
		}
	}
}

// resolvePair separates two overlapping balls and applies the knockback
// exchange. The bounce is deliberately super-elastic, and each side's impulse
// scales with the opponent's effective mass and speed, so a fast sprinter
// sends a slow walker flying while barely slowing down.
func resolvePair(a, b *Player, now time.Time) {
	delta := b.Position.Sub(a.Position)
	dist := delta.Length()
	minDist := BallRadius * 2
	if dist >= minDist {
		return
	}

	// Coincident centers have no line of contact; pick a fixed axis so the
	// pair still separates deterministically.
	var normal Vec3
	if dist > 0 {
		normal = delta.Scale(1 / dist)
	} else {
		normal = Vec3{X: 1}
	}

	overlap := minDist - dist
	correction := normal.Scale(overlap / 2)
	a.Position = a.Position.Sub(correction)
	b.Position = b.Position.Add(correction)

	// A pair already drifting apart gets the positional correction only.
	relative := b.Velocity.Sub(a.Velocity)
	closing := relative.Dot(normal)
	if closing >= 0 {
		return
	}

	massA := BaseMass
	if a.Sprinting {
		massA = SprintMass
	}
	massB := BaseMass
	if b.Sprinting {
		massB = SprintMass
	}

	speedA := a.PlanarSpeed()
	speedB := b.PlanarSpeed()

	impulse := -(1 + Restitution) * closing / (massA + massB)

	// Each player's knockback grows with the opponent's mass and speed, up to
	// KnockbackSpeedBonus times over at full sprint speed, and never drops
	// under the floor.
	impulseA := impulse * massB * (1 + (speedB/MaxSprintSpeed)*KnockbackSpeedBonus)
	impulseB := impulse * massA * (1 + (speedA/MaxSprintSpeed)*KnockbackSpeedBonus)
	if impulseA < MinKnockback {
		impulseA = MinKnockback
	}
	if impulseB < MinKnockback {
		impulseB = MinKnockback
	}

	a.Velocity = a.Velocity.Sub(normal.Scale(impulseA))
	b.Velocity = b.Velocity.Add(normal.Scale(impulseB))

	// Elimination credit goes to the faster ball of the pair and overwrites
	// any earlier hit on the victim.
	if speedA > speedB {
		b.LastHitBy = a.ID
		b.LastHitTime = now
	} else {
		a.LastHitBy = b.ID
		a.LastHitTime = now
	}
}
