package game

import "swarm/mapgen"

// Target is anything an enemy can chase.
type Target interface {
	EntityID() string
	Position() Vec3
	Dead() bool
}

const (
	separationRange  = 3.0 // multiple of hitbox radius
	separationWeight = 0.3
	knockbackEpsilon = 0.01
)

// Attack is continuous damage an enemy deals to its target this tick.
type Attack struct {
	EnemyID  string
	TargetID string
	DPS      float64
}

// NearestTarget returns the closest living target. Equal distances keep the
// earlier target in the slice.
func NearestTarget(pos Vec3, targets []Target) (Target, float64) {
	var best Target
	bestDist := 0.0
	for _, t := range targets {
		if t.Dead() {
			continue
		}
		d := Dist(pos, t.Position())
		if best == nil || d < bestDist {
			best, bestDist = t, d
		}
	}
	return best, bestDist
}

// SteerEnemies advances every living enemy one tick: knockback, target
// selection, separation and wall-sliding movement. Enemies within attack range
// stop and report an Attack instead of moving.
func SteerEnemies(enemies []*Enemy, targets []Target, m *mapgen.MapData, stats map[EnemyType]EnemyStats, dt, decay float64) []Attack {
	var attacks []Attack
	for _, e := range enemies {
		if e.Dead() {
			continue
		}
		st := stats[e.Type]

		if e.Knockback.Len() > knockbackEpsilon {
			e.Pos = slide(m, e.Pos, e.Knockback.Scale(dt), st.HitboxRadius)
			e.Knockback = e.Knockback.Scale(decay)
		} else {
			e.Knockback = Vec3{}
		}

		target, dist := NearestTarget(e.Pos, targets)
		if target == nil {
			e.State = EnemyIdle
			e.TargetID = ""
			e.Vel = Vec3{}
			continue
		}
		e.TargetID = target.EntityID()
		toTarget := target.Position().Sub(e.Pos)
		if dist > 0 {
			e.Rotation = Heading(toTarget)
		}

		if dist <= st.AttackRange {
			e.State = EnemyAttacking
			e.Vel = Vec3{}
			attacks = append(attacks, Attack{EnemyID: e.ID, TargetID: e.TargetID, DPS: st.Damage})
			continue
		}

		e.State = EnemyChasing
		heading := toTarget.Normalize()
		dir := heading.Add(separation(e, enemies, st.HitboxRadius*separationRange, heading)).Normalize()
		e.Vel = dir.Scale(st.Speed)
		e.Pos = slide(m, e.Pos, e.Vel.Scale(dt), st.HitboxRadius)
	}
	return attacks
}

// separation pushes e away from nearby enemies. Enemies on the exact same
// spot split to opposite sides of heading, decided by slice order.
func separation(e *Enemy, enemies []*Enemy, within float64, heading Vec3) Vec3 {
	var push Vec3
	seen := false
	for _, o := range enemies {
		if o == e {
			seen = true
			continue
		}
		if o.Dead() {
			continue
		}
		away := e.Pos.Sub(o.Pos)
		if away.Len() >= within {
			continue
		}
		if away.Len() == 0 {
			away = Vec3{X: -heading.Z, Z: heading.X}
			if seen {
				away = away.Scale(-1)
			}
		}
		push = push.Add(away.Normalize())
	}
	return push.Normalize().Scale(separationWeight)
}
