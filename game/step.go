package game

import (
	"math"

	"swarm/rng"
)

// Step advances the simulation by one tick using each player's latest input.
// Players without an entry act on the zero Input.
func Step(s *State, inputs map[string]Input) {
	s.Tick++
	dtMs := s.Config.TickMs()
	dt := dtMs / 1000
	s.Now += dtMs
	s.Events = nil

	s.reapEnemies()
	if s.GameOver {
		return
	}

	s.Players.Each(func(id string, p *Player) {
		if p.IsDead {
			return
		}
		s.applyInput(p, inputs[id], dt)
	})
	s.updateEnemies(dt)
	s.updateProjectiles(dt)
	s.collectPickups()

	for _, ev := range s.Wave.Update(dtMs, s, s.rng) {
		if ev.Kind == EventWaveStart {
			s.rearmLastStand()
		}
		s.emit(ev)
	}
	s.checkGameOver()
}

func (s *State) applyInput(p *Player, in Input, dt float64) {
	cfg := &s.Config
	p.LastInputSeq = in.Sequence

	if in.WeaponSlot != 0 {
		if _, ok := cfg.Weapon(Weapon(in.WeaponSlot)); ok {
			p.Weapon = Weapon(in.WeaponSlot)
		}
	}

	if p.Reloading() && s.Now >= p.ReloadUntil {
		p.Ammo = p.MaxAmmo
		p.ReloadUntil = 0
	}
	if in.Reload && !p.Reloading() && p.Ammo < p.MaxAmmo {
		p.ReloadUntil = s.Now + cfg.ReloadMs
	}

	if in.Dash && s.Now >= p.DashReadyAt {
		p.DashingUntil = s.Now + cfg.DashMs
		p.DashReadyAt = s.Now + cfg.DashCooldownMs
	}

	speed := cfg.PlayerSpeed
	if p.HasPower(PowerHaste, s.Now) {
		speed *= cfg.HasteFactor
	}
	if p.Dashing(s.Now) {
		speed *= cfg.DashMultiplier
	}
	p.Vel = Vec3{X: in.MoveX, Z: in.MoveY}.Normalize().Scale(speed)
	p.Pos = slide(s.Map, p.Pos, p.Vel.Scale(dt), cfg.PlayerRadius)

	aim := Vec3{X: in.AimX, Z: in.AimY}
	if aim.Len() > 0 {
		p.Rotation = Heading(aim)
	}

	if in.Interact && !p.PrevInteract {
		s.interact(p)
	}
	p.PrevInteract = in.Interact

	if in.Thermobaric && s.Now >= p.ThermoReadyAt {
		p.ThermoReadyAt = s.Now + cfg.ThermobaricCooldownMs
		s.explode(p.Pos, cfg.Thermobaric, p.ID)
	}

	if in.Shooting {
		s.fire(p, aim)
	}
}

func (s *State) fire(p *Player, aim Vec3) {
	if p.Reloading() || p.Ammo <= 0 {
		return
	}
	stats, ok := s.Config.Weapon(p.Weapon)
	if !ok {
		return
	}
	cooldown := stats.CooldownMs
	if p.HasPower(PowerRapidfire, s.Now) {
		cooldown *= s.Config.RapidfireFactor
	}
	if s.Now-p.LastShotAt < cooldown {
		return
	}

	dir := aim.Normalize()
	if dir == (Vec3{}) {
		dir = Vec3{X: math.Sin(p.Rotation), Z: math.Cos(p.Rotation)}
	}
	p.Ammo--
	p.LastShotAt = s.Now

	pr := &Projectile{
		ID:         s.newID("pr"),
		OwnerID:    p.ID,
		Weapon:     p.Weapon,
		Pos:        p.Pos,
		Vel:        dir.Scale(stats.Speed),
		Damage:     stats.Damage,
		LifetimeMs: stats.LifetimeMs,
		CreatedAt:  s.Now,
		Radius:     stats.HitboxRadius,
	}
	s.Projectiles.Add(pr.ID, pr)
}

func (s *State) updateEnemies(dt float64) {
	players := s.Players.Values()
	targets := make([]Target, 0, len(players))
	for _, p := range players {
		targets = append(targets, p)
	}
	attacks := SteerEnemies(s.Enemies.Values(), targets, s.Map, s.Config.Enemies, dt, s.Config.KnockbackDecay)

	for _, a := range attacks {
		p, ok := s.Players.Get(a.TargetID)
		if !ok || p.IsDead {
			continue
		}
		e, ok := s.Enemies.Get(a.EnemyID)
		if !ok {
			continue
		}
		amount := ContinuousDamage(a.DPS, dt, p.Dashing(s.Now), s.Config.DashInvulnerable)
		out := s.damagePlayer(p, amount, e.ID, false)
		e.pendingDamage += out.Dealt

		cooldown := s.Config.Enemies[e.Type].AttackCooldownMs
		if e.pendingDamage > 0 && (s.Now-e.lastAttackAt >= cooldown || p.IsDead) {
			s.emit(Event{Kind: EventDamage, EntityID: p.ID, SourceID: e.ID, Amount: e.pendingDamage})
			e.pendingDamage = 0
			e.lastAttackAt = s.Now
		}
	}
}

// updateProjectiles sweeps each projectile along this tick's path. The first
// enemy touched along the path takes the hit; projectiles never pierce.
func (s *State) updateProjectiles(dt float64) {
	s.Projectiles.Each(func(id string, pr *Projectile) {
		from := pr.Pos
		to := from.Add(pr.Vel.Scale(dt))
		hit, t := s.firstHit(pr, from, to)
		if hit != nil {
			to = from.Add(to.Sub(from).Scale(t))
		}
		pr.Pos = to

		if !s.Map.IsWalkableWorld(to.X, to.Z) || (hit == nil && s.Now-pr.CreatedAt >= pr.LifetimeMs) {
			s.detonate(pr)
			s.Projectiles.Remove(id)
			return
		}
		if hit == nil {
			return
		}
		if pr.Weapon == Rocket {
			s.detonate(pr)
		} else {
			s.applyHit(hit, DirectHit(hit.Health, pr.Damage, pr.Pos, pr.Vel, hit.Pos, s.Config.KnockbackForce), pr.OwnerID)
		}
		s.Projectiles.Remove(id)
	})
}

// firstHit returns the living enemy the segment from->to reaches first and
// the fraction of the segment travelled. Ties keep the earlier enemy.
func (s *State) firstHit(pr *Projectile, from, to Vec3) (*Enemy, float64) {
	var hit *Enemy
	best := 0.0
	for _, e := range s.Enemies.Values() {
		if e.Dead() {
			continue
		}
		t, ok := SweepCircle(from, to, e.Pos, pr.Radius+s.Config.Enemies[e.Type].HitboxRadius)
		if ok && (hit == nil || t < best) {
			hit, best = e, t
		}
	}
	return hit, best
}

func (s *State) detonate(pr *Projectile) {
	if pr.Weapon == Rocket {
		s.explode(pr.Pos, s.Config.RocketBlast, pr.OwnerID)
	}
}

// explode applies area damage around center. The owner takes SelfDamage with
// the same falloff when it is in range.
func (s *State) explode(center Vec3, ex Explosion, ownerID string) {
	for _, e := range s.Enemies.Values() {
		if e.Dead() || Dist(center, e.Pos) > ex.Radius {
			continue
		}
		s.applyHit(e, AreaHit(e.Health, center, e.Pos, ex), ownerID)
	}
	if ex.SelfDamage <= 0 {
		return
	}
	owner, ok := s.Players.Get(ownerID)
	if !ok || owner.IsDead {
		return
	}
	if d := FalloffDamage(ex.SelfDamage, Dist(center, owner.Pos), ex.Radius, ex.Falloff); d > 0 {
		s.damagePlayer(owner, d, ownerID, true)
	}
}

func (s *State) applyHit(e *Enemy, res HitResult, sourceID string) {
	e.Health = res.Health
	e.Knockback = e.Knockback.Add(res.Knockback)
	if res.Damage > 0 {
		s.emit(Event{Kind: EventDamage, EntityID: e.ID, SourceID: sourceID, Amount: res.Damage})
	}
	if res.Killed {
		s.killEnemy(e, sourceID)
	}
}

// DamageEnemy deals amount to an enemy without knockback. Unknown or dead
// enemies are ignored. It reports whether the enemy died.
func (s *State) DamageEnemy(id string, amount float64, sourceID string) bool {
	e, ok := s.Enemies.Get(id)
	if !ok || e.Dead() {
		return false
	}
	h := e.Health - amount
	res := HitResult{Damage: amount, Health: h}
	if h <= 0 {
		res.Health = 0
		res.Killed = true
	}
	s.applyHit(e, res, sourceID)
	return res.Killed
}

// DamagePlayer deals amount to a player, honoring shield and last stand.
// Unknown or dead players are ignored.
func (s *State) DamagePlayer(id string, amount float64, sourceID string) DamageOutcome {
	p, ok := s.Players.Get(id)
	if !ok || p.IsDead {
		return DamageOutcome{}
	}
	return s.damagePlayer(p, amount, sourceID, true)
}

func (s *State) damagePlayer(p *Player, amount float64, sourceID string, event bool) DamageOutcome {
	amount = Mitigate(amount, p.HasPower(PowerShield, s.Now), s.Config.ShieldFactor)
	out := ApplyDamage(p.Health, amount, p)
	p.Health = out.Health
	if event && out.Dealt > 0 {
		s.emit(Event{Kind: EventDamage, EntityID: p.ID, SourceID: sourceID, Amount: out.Dealt})
	}
	if out.Killed {
		p.IsDead = true
		p.Vel = Vec3{}
		s.emit(Event{Kind: EventDeath, EntityID: p.ID, SourceID: sourceID})
	}
	return out
}

func (s *State) killEnemy(e *Enemy, killerID string) {
	e.State = EnemyDead
	e.Health = 0
	e.Vel = Vec3{}
	e.Knockback = Vec3{}
	e.RemoveAtTick = s.Tick + int(math.Ceil(s.Config.EnemyFadeMs/s.Config.TickMs()))
	s.emit(Event{Kind: EventDeath, EntityID: e.ID, SourceID: killerID})

	if e.Tracked {
		s.Wave.EnemyKilled()
	}
	if p, ok := s.Players.Get(killerID); ok {
		s.creditKill(p, e)
	}
	s.dropPickup(e.Pos)
}

func (s *State) creditKill(p *Player, e *Enemy) {
	if s.Now-p.LastKillAt <= s.Config.ComboWindowMs {
		p.Combo++
	} else {
		p.Combo = 1
	}
	p.LastKillAt = s.Now
	p.Kills++
	base := s.Config.Enemies[e.Type].Score
	p.Score += int(math.Round(float64(base) * ComboMultiplier(p.Combo)))
}

func (s *State) dropPickup(pos Vec3) {
	if !s.rng.Chance(s.Config.PickupDropChance) {
		return
	}
	if !s.Map.IsWalkableWorld(pos.X, pos.Z) {
		return
	}
	pk := &Pickup{ID: s.newID("pk"), Pos: pos, Kind: PickupHealth, Value: s.Config.PickupHealthValue}
	if s.rng.Intn(2) == 1 {
		pk.Kind = PickupAmmo
		pk.Value = float64(s.Config.PickupAmmoValue)
	}
	s.Pickups.Add(pk.ID, pk)
}

// reapEnemies drops faded corpses and kills anything left at zero health.
func (s *State) reapEnemies() {
	s.Enemies.Each(func(id string, e *Enemy) {
		if !e.Dead() && e.Health <= 0 {
			s.killEnemy(e, "")
		}
		if e.Dead() && s.Tick >= e.RemoveAtTick {
			s.Enemies.Remove(id)
		}
	})
}

func (s *State) collectPickups() {
	s.Pickups.Each(func(id string, pk *Pickup) {
		for _, p := range s.Players.Values() {
			if p.IsDead || Dist(p.Pos, pk.Pos) > s.Config.PickupRadius {
				continue
			}
			switch pk.Kind {
			case PickupHealth:
				p.Health = min(p.MaxHealth, p.Health+pk.Value)
			case PickupAmmo:
				p.Ammo = min(p.MaxAmmo, p.Ammo+int(pk.Value))
			}
			s.Pickups.Remove(id)
			return
		}
	})
}

func (s *State) interact(p *Player) {
	cfg := &s.Config
	for _, a := range s.Altars {
		if Dist(p.Pos, a.Pos) > cfg.InteractRange || s.Now < a.ReadyAt {
			continue
		}
		if power, ok := rng.Pick(s.rng, cfg.PowerUpWeights); ok {
			p.PowerUps[power] = s.Now + cfg.PowerUpMs
		}
		a.ReadyAt = s.Now + cfg.AltarCooldown
		return
	}
	for _, c := range s.Cells {
		if c.Opened || Dist(p.Pos, c.Pos) > cfg.InteractRange {
			continue
		}
		c.Opened = true
		p.Score += cfg.CellScore
		s.SpawnBonus(c.Pos, Grunt, cfg.CellHorde)
		return
	}
}

// SpawnBonus releases n extra enemies in a ring around at. During an active
// wave they are added to the wave's counters; otherwise they roam untracked.
func (s *State) SpawnBonus(at Vec3, t EnemyType, n int) int {
	tracked := s.Wave.Active()
	radius := s.Config.Enemies[t].HitboxRadius
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pos := at.Add(Vec3{X: math.Sin(a), Z: math.Cos(a)})
		if !canOccupy(s.Map, pos.X, pos.Z, radius) {
			pos = at
		}
		s.addEnemy(t, pos, tracked)
	}
	if tracked {
		s.Wave.AddBonus(n)
	}
	return n
}

// SpawnBonusHorde releases n bonus enemies around a random enemy spawn point.
func (s *State) SpawnBonusHorde(t EnemyType, n int) int {
	spawns := s.Map.EnemySpawns
	if len(spawns) == 0 || n <= 0 {
		return 0
	}
	x, z := spawns[s.rng.Intn(len(spawns))].World()
	return s.SpawnBonus(Vec3{X: x, Z: z}, t, n)
}

// SpawnWaveEnemy places a wave enemy on a random enemy spawn point.
func (s *State) SpawnWaveEnemy(t EnemyType) bool {
	spawns := s.Map.EnemySpawns
	if len(spawns) == 0 {
		return false
	}
	x, z := spawns[s.rng.Intn(len(spawns))].World()
	s.addEnemy(t, Vec3{X: x, Z: z}, true)
	return true
}

func (s *State) addEnemy(t EnemyType, pos Vec3, tracked bool) *Enemy {
	st, ok := s.Config.Enemies[t]
	if !ok {
		t = Grunt
		st = s.Config.Enemies[Grunt]
	}
	e := &Enemy{
		ID:           s.newID("e"),
		Type:         t,
		Pos:          pos,
		Health:       st.Health,
		MaxHealth:    st.Health,
		State:        EnemyIdle,
		Tracked:      tracked,
		lastAttackAt: math.Inf(-1),
	}
	s.Enemies.Add(e.ID, e)
	return e
}

func (s *State) rearmLastStand() {
	for _, p := range s.Players.Values() {
		if !p.IsDead {
			p.LastStandAvailable = true
		}
	}
}

func (s *State) checkGameOver() {
	if !s.everJoined || s.Players.Len() == 0 {
		return
	}
	for _, p := range s.Players.Values() {
		if !p.IsDead {
			return
		}
	}
	s.GameOver = true
}
