package game

import "time"

// Input is the most recent movement intent received from a player's
// connection. The network layer overwrites it at whatever rate inputs arrive;
// the physics stepper reads it once per tick. Last write wins.
type Input struct {
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Sprint bool    `json:"sprint"`
}

// Moving reports whether the input requests any planar movement.
func (in Input) Moving() bool {
	return in.X != 0 || in.Z != 0
}

// Player is one ball in the arena. Kinematic fields are owned by the physics
// stepper and mutated once per tick; Input is the only field written from
// outside the simulation loop.
type Player struct {
	ID    string
	Name  string
	Color string

	Position     Vec3
	Velocity     Vec3
	Rotation     Vec3
	Acceleration Vec3

	Eliminated   bool
	EliminatedAt time.Time
	Stamina      float64
	Sprinting    bool
	Eliminations int
	SurvivalTime time.Duration

	Input       Input
	LastHitBy   string
	LastHitTime time.Time
}

// NewPlayer creates a player at rest with full stamina. The position is
// assigned by the spawn ring when the state is built.
func NewPlayer(id, name, color string) *Player {
	return &Player{
		ID:      id,
		Name:    name,
		Color:   color,
		Stamina: StaminaMax,
	}
}

// PlanarSpeed is the player's current speed across the platform plane.
func (p *Player) PlanarSpeed() float64 {
	return p.Velocity.PlanarLength()
}

// DistanceFromCenter is the planar distance from the arena center.
func (p *Player) DistanceFromCenter() float64 {
	return p.Position.PlanarLength()
}
