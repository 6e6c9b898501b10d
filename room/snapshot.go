package room

import (
	"time"

	"swarm/game"
	"swarm/protocol"
)

func vec(v game.Vec3) protocol.Vec3 {
	return protocol.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

func (r *Room) buildSnapshot() protocol.State {
	s := r.state
	snapshot := protocol.State{
		Tick:          s.Tick,
		Timestamp:     time.Now().UnixMilli(),
		Players:       make(map[string]protocol.PlayerSnapshot, s.Players.Len()),
		Enemies:       make(map[string]protocol.EnemySnapshot, s.Enemies.Len()),
		Projectiles:   make(map[string]protocol.ProjectileSnapshot, s.Projectiles.Len()),
		Pickups:       make(map[string]protocol.PickupSnapshot, s.Pickups.Len()),
		Wave:          s.Wave.Number,
		WaveRemaining: s.Wave.Remaining,
		WaveActive:    s.Wave.Active(),
		GameOver:      s.GameOver,
	}
	for _, p := range s.Players.Values() {
		ps := protocol.PlayerSnapshot{
			ID:        p.ID,
			Name:      p.Name,
			Position:  vec(p.Pos),
			Velocity:  vec(p.Vel),
			Rotation:  p.Rotation,
			Health:    p.Health,
			MaxHealth: p.MaxHealth,
			Ammo:      p.Ammo,
			Score:     p.Score,
			IsDead:    p.IsDead,
			Weapon:    int(p.Weapon),
			Reloading: p.Reloading(),
			Dashing:   p.Dashing(s.Now),
			Combo:     p.Combo,
			LastSeq:   p.LastInputSeq,
		}
		for name, until := range p.PowerUps {
			if until > s.Now {
				if ps.PowerUps == nil {
					ps.PowerUps = make(map[string]float64)
				}
				ps.PowerUps[name] = until
			}
		}
		snapshot.Players[p.ID] = ps
	}
	for _, e := range s.Enemies.Values() {
		snapshot.Enemies[e.ID] = protocol.EnemySnapshot{
			ID:        e.ID,
			Type:      string(e.Type),
			Position:  vec(e.Pos),
			Velocity:  vec(e.Vel),
			Rotation:  e.Rotation,
			Health:    e.Health,
			MaxHealth: e.MaxHealth,
			State:     string(e.State),
		}
	}
	for _, pr := range s.Projectiles.Values() {
		snapshot.Projectiles[pr.ID] = protocol.ProjectileSnapshot{
			ID:       pr.ID,
			OwnerID:  pr.OwnerID,
			Position: vec(pr.Pos),
			Velocity: vec(pr.Vel),
			Weapon:   int(pr.Weapon),
			Radius:   pr.Radius,
		}
	}
	for _, pk := range s.Pickups.Values() {
		snapshot.Pickups[pk.ID] = protocol.PickupSnapshot{
			ID:       pk.ID,
			Position: vec(pk.Pos),
			Kind:     string(pk.Kind),
			Value:    pk.Value,
		}
	}
	return snapshot
}

// eventMessage maps a simulation event to its wire type and payload.
func eventMessage(ev game.Event) (string, any) {
	switch ev.Kind {
	case game.EventDamage:
		return protocol.MsgDamage, protocol.Damage{EntityID: ev.EntityID, Amount: ev.Amount, SourceID: ev.SourceID}
	case game.EventDeath:
		return protocol.MsgDeath, protocol.Death{EntityID: ev.EntityID, KillerID: ev.SourceID}
	case game.EventWaveStart:
		return protocol.MsgWaveStart, protocol.WaveStart{Wave: ev.Wave, EnemyCount: ev.EnemyCount}
	case game.EventWaveComplete:
		return protocol.MsgWaveComplete, protocol.WaveComplete{Wave: ev.Wave}
	}
	return "", nil
}
