package game

import "testing"

func TestNearestTargetTieKeepsFirst(t *testing.T) {
	a := &Player{ID: "a", Pos: Vec3{Z: 5}}
	b := &Player{ID: "b", Pos: Vec3{Z: -5}}
	got, dist := NearestTarget(Vec3{}, []Target{a, b})
	if got.EntityID() != "a" || dist != 5 {
		t.Fatalf("nearest = %s at %f, want a at 5", got.EntityID(), dist)
	}
	got, _ = NearestTarget(Vec3{}, []Target{b, a})
	if got.EntityID() != "b" {
		t.Fatalf("nearest = %s, want b", got.EntityID())
	}
}

func TestNearestTargetSkipsDead(t *testing.T) {
	a := &Player{ID: "a", Pos: Vec3{X: 1}, IsDead: true}
	b := &Player{ID: "b", Pos: Vec3{X: 9}}
	got, _ := NearestTarget(Vec3{}, []Target{a, b})
	if got == nil || got.EntityID() != "b" {
		t.Fatalf("nearest = %v, want b", got)
	}
	if got, _ := NearestTarget(Vec3{}, []Target{a}); got != nil {
		t.Fatalf("nearest = %v, want none", got)
	}
}

func TestSteerEnemiesChaseAndAttack(t *testing.T) {
	cfg := DefaultConfig()
	m := openMap(20, 20)
	p := &Player{ID: "p1", Pos: Vec3{X: 21, Z: 21}}
	far := &Enemy{ID: "e1", Type: Grunt, Pos: Vec3{X: 5, Z: 21}, State: EnemyIdle}
	near := &Enemy{ID: "e2", Type: Grunt, Pos: Vec3{X: 21, Z: 22}, State: EnemyIdle}

	attacks := SteerEnemies([]*Enemy{far, near}, []Target{p}, m, cfg.Enemies, 0.05, cfg.KnockbackDecay)

	if far.State != EnemyChasing || far.Pos.X <= 5 {
		t.Fatalf("far enemy state=%s x=%f, want chasing toward +X", far.State, far.Pos.X)
	}
	if far.TargetID != "p1" {
		t.Fatalf("far target = %q", far.TargetID)
	}
	if near.State != EnemyAttacking {
		t.Fatalf("near enemy state = %s, want attacking", near.State)
	}
	if near.Pos != (Vec3{X: 21, Z: 22}) {
		t.Fatalf("attacking enemy moved to %+v", near.Pos)
	}
	if len(attacks) != 1 || attacks[0].EnemyID != "e2" || attacks[0].DPS != cfg.Enemies[Grunt].Damage {
		t.Fatalf("attacks = %+v", attacks)
	}
}

func TestSteerEnemiesSeparation(t *testing.T) {
	cfg := DefaultConfig()
	m := openMap(20, 20)
	p := &Player{ID: "p1", Pos: Vec3{X: 30, Z: 21}}
	a := &Enemy{ID: "a", Type: Grunt, Pos: Vec3{X: 10, Z: 21}}
	b := &Enemy{ID: "b", Type: Grunt, Pos: Vec3{X: 10, Z: 21.5}}

	SteerEnemies([]*Enemy{a, b}, []Target{p}, m, cfg.Enemies, 0.05, cfg.KnockbackDecay)

	if a.Pos.Z >= 21 {
		t.Fatalf("enemy a z = %f, want pushed below 21", a.Pos.Z)
	}
	if b.Pos.Z <= 21.5 {
		t.Fatalf("enemy b z = %f, want pushed above 21.5", b.Pos.Z)
	}
}

func TestSteerEnemiesIdleWithoutTargets(t *testing.T) {
	cfg := DefaultConfig()
	e := &Enemy{ID: "e", Type: Runner, Pos: Vec3{X: 10, Z: 10}, State: EnemyChasing, Vel: Vec3{X: 1}}
	dead := &Player{ID: "p", Pos: Vec3{X: 12, Z: 10}, IsDead: true}
	SteerEnemies([]*Enemy{e}, []Target{dead}, openMap(20, 20), cfg.Enemies, 0.05, cfg.KnockbackDecay)
	if e.State != EnemyIdle || e.Vel != (Vec3{}) {
		t.Fatalf("enemy state=%s vel=%+v, want idle and still", e.State, e.Vel)
	}
}

func TestSteerEnemiesKnockbackDecays(t *testing.T) {
	cfg := DefaultConfig()
	e := &Enemy{ID: "e", Type: Grunt, Pos: Vec3{X: 10, Z: 10}, Knockback: Vec3{X: 4}}
	SteerEnemies([]*Enemy{e}, nil, openMap(20, 20), cfg.Enemies, 0.05, cfg.KnockbackDecay)
	if e.Pos.X <= 10 {
		t.Fatalf("knockback did not move enemy: %+v", e.Pos)
	}
	if e.Knockback.X != 4*cfg.KnockbackDecay {
		t.Fatalf("knockback = %f, want %f", e.Knockback.X, 4*cfg.KnockbackDecay)
	}
}

func TestSlideAlongWall(t *testing.T) {
	m := openMap(20, 20)
	got := slide(m, Vec3{X: 3, Z: 2.5}, Vec3{X: 1, Z: -1}, 0.4)
	if got != (Vec3{X: 4, Z: 2.5}) {
		t.Fatalf("slide = %+v, want X to move and Z to stop at the wall", got)
	}
}

func TestSteerEnemiesSplitsStackedEnemies(t *testing.T) {
	cfg := DefaultConfig()
	m := openMap(20, 20)
	p := &Player{ID: "p1", Pos: Vec3{X: 30, Z: 21}}
	a := &Enemy{ID: "a", Type: Grunt, Pos: Vec3{X: 10, Z: 21}}
	b := &Enemy{ID: "b", Type: Grunt, Pos: Vec3{X: 10, Z: 21}}

	SteerEnemies([]*Enemy{a, b}, []Target{p}, m, cfg.Enemies, 0.05, cfg.KnockbackDecay)

	if a.Pos == b.Pos {
		t.Fatalf("stacked enemies moved in lockstep to %+v", a.Pos)
	}
	if a.Pos.Z >= 21 || b.Pos.Z <= a.Pos.Z {
		t.Fatalf("a=%+v b=%+v, want a pushed to -Z and b above it", a.Pos, b.Pos)
	}
}
