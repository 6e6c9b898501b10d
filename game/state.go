package game

import (
	"fmt"

	"swarm/mapgen"
	"swarm/rng"
)

// Internal truth authoritative game state

type State struct {
	Tick int
	Now  float64 // game clock, ms since the room started

	Map    *mapgen.MapData
	Config Config

	Players     *Table[*Player]
	Enemies     *Table[*Enemy]
	Projectiles *Table[*Projectile]
	Pickups     *Table[*Pickup]
	Altars      []*Altar
	Cells       []*Cell

	Wave *WaveManager

	// Events raised during the last Step.
	Events []Event

	GameOver   bool
	everJoined bool

	rng         *rng.RNG
	nextID      int
	spawnCursor int
}

// NewState builds an empty simulation over m. seed drives every random draw
// made during play.
func NewState(m *mapgen.MapData, cfg Config, seed int64) *State {
	s := &State{
		Map:         m,
		Config:      cfg,
		Players:     NewTable[*Player](),
		Enemies:     NewTable[*Enemy](),
		Projectiles: NewTable[*Projectile](),
		Pickups:     NewTable[*Pickup](),
		Wave:        NewWaveManager(cfg.PreWaveDelayMs),
		rng:         rng.New(seed),
	}
	for i, p := range m.Altars {
		x, z := p.World()
		s.Altars = append(s.Altars, &Altar{ID: fmt.Sprintf("altar%d", i), Pos: Vec3{X: x, Z: z}})
	}
	for i, p := range m.Cells {
		x, z := p.World()
		s.Cells = append(s.Cells, &Cell{ID: fmt.Sprintf("cell%d", i), Pos: Vec3{X: x, Z: z}})
	}
	return s
}

// Start arms the first pre-wave delay.
func (s *State) Start() {
	s.Wave.Arm()
}

func (s *State) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s%d", prefix, s.nextID)
}

// AddPlayer places a new player on the next spawn point, round robin.
func (s *State) AddPlayer(id, name string) *Player {
	pos := s.nextPlayerSpawn()
	p := &Player{
		ID:                 id,
		Name:               name,
		Pos:                pos,
		Health:             s.Config.PlayerHealth,
		MaxHealth:          s.Config.PlayerHealth,
		Ammo:               s.Config.PlayerAmmo,
		MaxAmmo:            s.Config.PlayerAmmo,
		Weapon:             Blaster,
		PowerUps:           make(map[string]float64),
		LastStandAvailable: true,
		LastShotAt:         -1e9,
		LastKillAt:         -1e9,
	}
	s.Players.Add(id, p)
	s.everJoined = true
	return p
}

func (s *State) nextPlayerSpawn() Vec3 {
	spawns := s.Map.PlayerSpawns
	if len(spawns) == 0 {
		return Vec3{X: float64(s.Map.Width) * mapgen.TileSize / 2, Z: float64(s.Map.Height) * mapgen.TileSize / 2}
	}
	p := spawns[s.spawnCursor%len(spawns)]
	s.spawnCursor++
	x, z := p.World()
	return Vec3{X: x, Z: z}
}

// RemovePlayer drops a player. Projectiles already in flight keep flying.
func (s *State) RemovePlayer(id string) {
	s.Players.Remove(id)
}

// Input is one player's control state, latest wins.
type Input struct {
	MoveX, MoveY float64
	AimX, AimY   float64
	Shooting     bool
	Reload       bool
	Interact     bool
	Dash         bool
	Thermobaric  bool
	WeaponSlot   int // 0 keeps the current weapon
	Sequence     uint32
}

type Player struct {
	ID        string
	Name      string
	Pos, Vel  Vec3
	Rotation  float64
	Health    float64
	MaxHealth float64
	Ammo      int
	MaxAmmo   int
	Score     int
	Kills     int
	IsDead    bool
	Weapon    Weapon

	LastShotAt    float64
	ReloadUntil   float64 // zero when not reloading
	DashReadyAt   float64
	DashingUntil  float64
	ThermoReadyAt float64
	Combo         int
	LastKillAt    float64
	PowerUps      map[string]float64 // name -> expiry
	LastInputSeq  uint32
	PrevInteract  bool

	LastStandAvailable bool
}

func (p *Player) EntityID() string { return p.ID }
func (p *Player) Position() Vec3   { return p.Pos }
func (p *Player) Dead() bool       { return p.IsDead }

func (p *Player) CanTriggerLastStand() bool { return p.LastStandAvailable }
func (p *Player) TriggerLastStand()         { p.LastStandAvailable = false }

// HasPower reports whether the named power-up is active at now.
func (p *Player) HasPower(name string, now float64) bool {
	return p.PowerUps[name] > now
}

func (p *Player) Dashing(now float64) bool { return p.DashingUntil > now }

func (p *Player) Reloading() bool { return p.ReloadUntil > 0 }

type EnemyBehavior string

const (
	EnemyIdle      EnemyBehavior = "idle"
	EnemyChasing   EnemyBehavior = "chasing"
	EnemyAttacking EnemyBehavior = "attacking"
	EnemyDead      EnemyBehavior = "dead"
)

type Enemy struct {
	ID        string
	Type      EnemyType
	Pos, Vel  Vec3
	Rotation  float64
	Health    float64
	MaxHealth float64
	State     EnemyBehavior
	Knockback Vec3
	TargetID  string

	// RemoveAtTick is set on death; the enemy is dropped once Tick reaches it.
	RemoveAtTick int
	// Tracked enemies count toward the wave's remaining total.
	Tracked bool

	lastAttackAt  float64
	pendingDamage float64
}

func (e *Enemy) EntityID() string { return e.ID }
func (e *Enemy) Position() Vec3   { return e.Pos }
func (e *Enemy) Dead() bool       { return e.State == EnemyDead }

type Projectile struct {
	ID         string
	OwnerID    string
	Weapon     Weapon
	Pos, Vel   Vec3
	Damage     float64
	LifetimeMs float64
	CreatedAt  float64
	Radius     float64
}

type PickupKind string

const (
	PickupHealth PickupKind = "health"
	PickupAmmo   PickupKind = "ammo"
)

type Pickup struct {
	ID    string
	Pos   Vec3
	Kind  PickupKind
	Value float64
}

type Altar struct {
	ID      string
	Pos     Vec3
	ReadyAt float64
}

type Cell struct {
	ID     string
	Pos    Vec3
	Opened bool
}

type EventKind string

const (
	EventDamage       EventKind = "damage"
	EventDeath        EventKind = "death"
	EventWaveStart    EventKind = "waveStart"
	EventWaveComplete EventKind = "waveComplete"
)

// Event is a discrete occurrence sent to clients alongside snapshots.
type Event struct {
	Kind       EventKind
	EntityID   string
	SourceID   string
	Amount     float64
	Wave       int
	EnemyCount int
}

func (s *State) emit(e Event) {
	s.Events = append(s.Events, e)
}
