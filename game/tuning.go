package game

import "swarm/rng"

type EnemyType string

const (
	Grunt  EnemyType = "grunt"
	Runner EnemyType = "runner"
	Tank   EnemyType = "tank"
)

// EnemyStats is the static per-type configuration.
type EnemyStats struct {
	Health           float64
	Speed            float64 // units per second
	Damage           float64 // per second while in range
	AttackRange      float64
	AttackCooldownMs float64 // damage events are batched per cooldown
	HitboxRadius     float64
	Score            int
}

type Weapon int

const (
	Blaster Weapon = 1
	Rocket  Weapon = 2
)

// ProjectileStats configures one weapon's projectile.
type ProjectileStats struct {
	Speed        float64
	Damage       float64
	LifetimeMs   float64
	HitboxRadius float64
	CooldownMs   float64
}

// Explosion configures an area effect. SelfDamage is the base damage applied
// to the owner when caught in the radius; zero disables it.
type Explosion struct {
	Radius     float64
	BaseDamage float64
	Falloff    float64
	Knockback  float64
	SelfDamage float64
}

const (
	PowerShield    = "shield"
	PowerHaste     = "haste"
	PowerRapidfire = "rapidfire"
)

type Config struct {
	TickRate int

	PlayerSpeed    float64
	PlayerRadius   float64
	PlayerHealth   float64
	PlayerAmmo     int
	ReloadMs       float64
	DashMultiplier float64
	DashMs         float64
	DashCooldownMs float64
	// DashInvulnerable makes continuous damage skip dashing players.
	DashInvulnerable      bool
	ThermobaricCooldownMs float64

	Blaster     ProjectileStats
	Rocket      ProjectileStats
	RocketBlast Explosion
	Thermobaric Explosion

	KnockbackForce float64 // direct hit impulse
	KnockbackDecay float64 // per tick multiplier

	Enemies     map[EnemyType]EnemyStats
	EnemyFadeMs float64

	PickupDropChance  float64
	PickupHealthValue float64
	PickupAmmoValue   int
	PickupRadius      float64

	PreWaveDelayMs float64

	PowerUpMs       float64
	ShieldFactor    float64
	HasteFactor     float64
	RapidfireFactor float64
	PowerUpWeights  []rng.Weighted[string]

	ComboWindowMs float64
	InteractRange float64
	AltarCooldown float64 // ms
	CellHorde     int
	CellScore     int
}

func DefaultConfig() Config {
	return Config{
		TickRate: 20,

		PlayerSpeed:           8,
		PlayerRadius:          0.4,
		PlayerHealth:          100,
		PlayerAmmo:            30,
		ReloadMs:              1500,
		DashMultiplier:        3,
		DashMs:                200,
		DashCooldownMs:        1500,
		DashInvulnerable:      true,
		ThermobaricCooldownMs: 8000,

		Blaster: ProjectileStats{Speed: 30, Damage: 25, LifetimeMs: 1500, HitboxRadius: 0.2, CooldownMs: 200},
		Rocket:  ProjectileStats{Speed: 18, Damage: 0, LifetimeMs: 2000, HitboxRadius: 0.3, CooldownMs: 900},
		RocketBlast: Explosion{
			Radius: 4, BaseDamage: 80, Falloff: 0.6, Knockback: 10, SelfDamage: 30,
		},
		Thermobaric: Explosion{
			Radius: 5, BaseDamage: 100, Falloff: 0.5, Knockback: 12,
		},

		KnockbackForce: 4,
		KnockbackDecay: 0.85,

		Enemies: map[EnemyType]EnemyStats{
			Grunt:  {Health: 100, Speed: 3.0, Damage: 10, AttackRange: 1.5, AttackCooldownMs: 1000, HitboxRadius: 0.5, Score: 10},
			Runner: {Health: 50, Speed: 5.5, Damage: 6, AttackRange: 1.2, AttackCooldownMs: 600, HitboxRadius: 0.4, Score: 15},
			Tank:   {Health: 300, Speed: 1.8, Damage: 25, AttackRange: 2.0, AttackCooldownMs: 1500, HitboxRadius: 0.8, Score: 40},
		},
		EnemyFadeMs: 200,

		PickupDropChance:  0.3,
		PickupHealthValue: 25,
		PickupAmmoValue:   15,
		PickupRadius:      1.0,

		PreWaveDelayMs: 3000,

		PowerUpMs:       10000,
		ShieldFactor:    0.5,
		HasteFactor:     1.5,
		RapidfireFactor: 0.5,
		PowerUpWeights: []rng.Weighted[string]{
			{Item: PowerShield, Weight: 1},
			{Item: PowerHaste, Weight: 1},
			{Item: PowerRapidfire, Weight: 1},
		},

		ComboWindowMs: 2000,
		InteractRange: 3.0, // 1.5 tiles
		AltarCooldown: 30000,
		CellHorde:     3,
		CellScore:     50,
	}
}

// TickMs is the length of one tick in milliseconds.
func (c Config) TickMs() float64 {
	if c.TickRate <= 0 {
		return 0
	}
	return 1000 / float64(c.TickRate)
}

// Weapon returns the projectile stats for a slot.
func (c Config) Weapon(w Weapon) (ProjectileStats, bool) {
	switch w {
	case Blaster:
		return c.Blaster, true
	case Rocket:
		return c.Rocket, true
	}
	return ProjectileStats{}, false
}
