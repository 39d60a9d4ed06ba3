package game

import (
	"math"
	"time"
)

// Step advances every surviving player's kinematics by dt seconds. Eliminated
// players stay frozen where they fell.
func Step(s *State, dt float64) {
	for _, p := range s.Players {
		if p.Eliminated {
			continue
		}
		StepPlayer(p, dt)
	}
}

// StepPlayer runs one fixed-order kinematic update: input force, stamina,
// gravity, velocity integration, planar friction, speed clamp, position
// integration, platform support. The order is load-bearing: the sprint flag
// used for force was decided on the previous tick, so a sprint request takes
// effect one tick late.
func StepPlayer(p *Player, dt float64) {
	p.SurvivalTime += time.Duration(dt * float64(time.Second))

	force := MoveForce
	if p.Sprinting {
		force = SprintForce
	}
	p.Acceleration.X = p.Input.X * force
	p.Acceleration.Z = p.Input.Z * force

	// Stamina drains while sprint-moving and regenerates otherwise. Hitting
	// zero forces sprint off on this same tick regardless of input.
	if p.Sprinting && p.Input.Moving() {
		p.Stamina -= StaminaDrainRate * dt
		if p.Stamina <= 0 {
			p.Stamina = 0
			p.Sprinting = false
		}
	} else {
		p.Stamina = math.Min(StaminaMax, p.Stamina+StaminaRegenRate*dt)
	}

	// An active sprint holds as long as it is requested, down to empty; a new
	// sprint engages only with stamina back above the minimum. The flag set
	// here drives the next tick's force, so depletion cuts sprint with a
	// one-tick lag.
	if p.Sprinting {
		p.Sprinting = p.Input.Sprint
	} else {
		p.Sprinting = p.Input.Sprint && p.Stamina >= SprintMinStamina
	}

	// Gravity acts on the vertical axis only. The planar components are
	// zeroed at the end of the step; the vertical one is reapplied each tick.
	p.Acceleration.Y = -Gravity

	p.Velocity = p.Velocity.Add(p.Acceleration.Scale(dt))
	p.Velocity.X *= Friction
	p.Velocity.Z *= Friction

	limit := MaxSpeed
	if p.Sprinting {
		limit = MaxSprintSpeed
	}
	if speed := p.PlanarSpeed(); speed > limit {
		scale := limit / speed
		p.Velocity.X *= scale
		p.Velocity.Z *= scale
	}

	p.Position = p.Position.Add(p.Velocity.Scale(dt))

	// Roll the ball with its planar motion.
	p.Rotation.X += p.Velocity.Z * dt / BallRadius
	p.Rotation.Z -= p.Velocity.X * dt / BallRadius

	// Platform support: players over the disc cannot sink below the surface;
	// past the rim they fall freely.
	if p.DistanceFromCenter() <= PlatformRadius && p.Position.Y < SpawnHeight {
		p.Position.Y = SpawnHeight
		p.Velocity.Y = 0
	}

	p.Acceleration.X = 0
	p.Acceleration.Z = 0
}
