package game

import "time"

// Arena geometry (world units; the platform is a disc centered at the origin)
const (
	PlatformRadius  = 10.0
	SpawnRingRadius = 8.0
	BallRadius      = 0.5
	SpawnHeight     = 0.5   // ball center resting on the platform surface
	FallLimitY      = -10.0 // vertical backstop for players falling past the rim
)

// Movement
const (
	MoveForce      = 35.0 // planar input force, walking
	SprintForce    = 60.0 // planar input force while sprinting
	Gravity        = 25.0 // constant downward acceleration
	Friction       = 0.95 // planar velocity multiplier applied every tick
	MaxSpeed       = 12.0 // planar speed cap, walking
	MaxSprintSpeed = 20.0 // planar speed cap while sprinting
)

// Stamina
const (
	StaminaMax       = 100.0
	StaminaDrainRate = 45.0 // per second while sprinting and moving
	StaminaRegenRate = 20.0 // per second otherwise
	SprintMinStamina = 10.0 // required to engage sprint
)

// Collision response. Restitution is deliberately super-elastic and knockback
// scales with the attacker's speed; these are arcade-feel numbers, not
// physical ones.
const (
	Restitution         = 2.5
	SprintMass          = 1.5 // effective mass while sprinting (knockback resistance)
	BaseMass            = 1.0
	KnockbackSpeedBonus = 8.0 // impulse multiplier grows to 1+bonus at MaxSprintSpeed
	MinKnockback        = 4.0 // impulse floor so near-stationary bumps still move you
)

// Elimination credit
const CreditWindow = 3 * time.Second

// Player limits
const (
	MinPlayers = 2
	MaxPlayers = 8
)

// Game timing
const (
	TickRate          = 60 // simulation ticks per second
	TickInterval      = time.Second / TickRate
	BroadcastRate     = 60 // snapshot broadcasts per second
	BroadcastInterval = time.Second / BroadcastRate
	CountdownStart    = 3 // seconds counted down before play begins
	TimedModeDuration = 3 * time.Minute
	TeardownDelay     = 10 * time.Second
	MaxTickDelta      = 0.1 // seconds; cap so a stalled scheduler cannot explode the physics
)

// Placement points awarded at game end, indexed by placement (1st, 2nd, ...).
// Placements past the table score DefaultPlacementPoints.
var PlacementPoints = []int{100, 75, 50, 25}

const DefaultPlacementPoints = 10
