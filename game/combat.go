package game

import "math"

// HitResult is the outcome of damage applied to an enemy.
type HitResult struct {
	Damage    float64
	Health    float64
	Knockback Vec3
	Killed    bool
}

// DirectHit resolves a projectile striking an enemy. Knockback points from the
// projectile to the enemy. A projectile sitting on or past the enemy center
// pushes along its own travel instead.
func DirectHit(health, damage float64, projPos, projVel, enemyPos Vec3, force float64) HitResult {
	dir := enemyPos.Sub(projPos).Normalize()
	if travel := projVel.Normalize(); dir == (Vec3{}) || dir.X*travel.X+dir.Z*travel.Z < 0 {
		dir = travel
	}
	h := health - damage
	res := HitResult{Damage: damage, Knockback: dir.Scale(force)}
	if h <= 0 {
		h = 0
		res.Killed = true
	}
	res.Health = h
	return res
}

// FalloffDamage is floor(base * (1 - (dist/radius) * falloff)) inside the
// radius and zero beyond it.
func FalloffDamage(base, dist, radius, falloff float64) float64 {
	if radius <= 0 || dist > radius {
		return 0
	}
	d := math.Floor(base * (1 - (dist/radius)*falloff))
	if d < 0 {
		return 0
	}
	return d
}

// AreaHit resolves an explosion against one target. Knockback is scaled by the
// same falloff as damage and points away from the center.
func AreaHit(health float64, center, target Vec3, e Explosion) HitResult {
	dist := Dist(center, target)
	dmg := FalloffDamage(e.BaseDamage, dist, e.Radius, e.Falloff)
	if dist > e.Radius {
		return HitResult{Health: health}
	}
	scale := 1 - (dist/e.Radius)*e.Falloff
	res := HitResult{
		Damage:    dmg,
		Knockback: target.Sub(center).Normalize().Scale(e.Knockback * scale),
	}
	h := health - dmg
	if h <= 0 {
		h = 0
		res.Killed = true
	}
	res.Health = h
	return res
}

// LastStandGate decides whether a lethal hit may leave the target at 1 hp.
type LastStandGate interface {
	CanTriggerLastStand() bool
	TriggerLastStand()
}

// DamageOutcome is the result of damage applied to a player.
type DamageOutcome struct {
	Health    float64
	Dealt     float64
	Killed    bool
	LastStand bool
}

// Mitigate applies the shield reduction when the shield is active.
func Mitigate(amount float64, shielded bool, factor float64) float64 {
	if shielded {
		return amount * factor
	}
	return amount
}

// ApplyDamage subtracts amount from health. A lethal hit consults gate (which
// may be nil) and clamps to 1 on last stand, otherwise to 0.
func ApplyDamage(health, amount float64, gate LastStandGate) DamageOutcome {
	if amount <= 0 {
		return DamageOutcome{Health: health}
	}
	h := health - amount
	if h > 0 {
		return DamageOutcome{Health: h, Dealt: amount}
	}
	if gate != nil && gate.CanTriggerLastStand() {
		gate.TriggerLastStand()
		return DamageOutcome{Health: 1, Dealt: health - 1, LastStand: true}
	}
	return DamageOutcome{Health: 0, Dealt: health, Killed: true}
}

// ContinuousDamage is the per-tick share of a damage-per-second source.
// Dashing targets take none when dash invulnerability is on.
func ContinuousDamage(dps, dtSeconds float64, dashing, dashInvulnerable bool) float64 {
	if dashing && dashInvulnerable {
		return 0
	}
	return dps * dtSeconds
}

// ComboMultiplier is 1 + 0.25 per chained kill, capped at 4 extra kills.
func ComboMultiplier(combo int) float64 {
	if combo < 1 {
		return 1
	}
	return 1 + 0.25*float64(min(combo-1, 4))
}
