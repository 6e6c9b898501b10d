package protocol

type Welcome struct {
	PlayerID string  `json:"playerId"`
	TickHz   int     `json:"tickHz"`
	Room     string  `json:"room"`
	Map      MapInfo `json:"map"`
}

// MapInfo is enough for a client to regenerate the map locally.
type MapInfo struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Seed   int64 `json:"seed"`
}

type State struct {
	Tick          int                           `json:"tick"`
	Timestamp     int64                         `json:"timestamp"` // unix ms
	Players       map[string]PlayerSnapshot     `json:"players"`
	Enemies       map[string]EnemySnapshot      `json:"enemies"`
	Projectiles   map[string]ProjectileSnapshot `json:"projectiles"`
	Pickups       map[string]PickupSnapshot     `json:"pickups"`
	Wave          int                           `json:"wave"`
	WaveRemaining int                           `json:"waveRemaining"`
	WaveActive    bool                          `json:"waveActive"`
	GameOver      bool                          `json:"gameOver"`
}

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type PlayerSnapshot struct {
	ID        string             `json:"id"`
	Name      string             `json:"name,omitempty"`
	Position  Vec3               `json:"position"`
	Velocity  Vec3               `json:"velocity"`
	Rotation  float64            `json:"rotation"`
	Health    float64            `json:"health"`
	MaxHealth float64            `json:"maxHealth"`
	Ammo      int                `json:"ammo"`
	Score     int                `json:"score"`
	IsDead    bool               `json:"isDead"`
	Weapon    int                `json:"weapon"`
	Reloading bool               `json:"reloading,omitempty"`
	Dashing   bool               `json:"dashing,omitempty"`
	Combo     int                `json:"combo,omitempty"`
	PowerUps  map[string]float64 `json:"powerUps,omitempty"` // name -> expiry, game ms
	LastSeq   uint32             `json:"lastSeq"`
}

type EnemySnapshot struct {
	ID        string  `json:"id"`
	Type      string  `json:"enemyType"`
	Position  Vec3    `json:"position"`
	Velocity  Vec3    `json:"velocity"`
	Rotation  float64 `json:"rotation"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	State     string  `json:"state"`
}

type ProjectileSnapshot struct {
	ID       string  `json:"id"`
	OwnerID  string  `json:"ownerId"`
	Position Vec3    `json:"position"`
	Velocity Vec3    `json:"velocity"`
	Weapon   int     `json:"weapon"`
	Radius   float64 `json:"radius"`
}

type PickupSnapshot struct {
	ID       string  `json:"id"`
	Position Vec3    `json:"position"`
	Kind     string  `json:"kind"`
	Value    float64 `json:"value"`
}

type Damage struct {
	EntityID string  `json:"entityId"`
	Amount   float64 `json:"amount"`
	SourceID string  `json:"sourceId,omitempty"`
}

type Death struct {
	EntityID string `json:"entityId"`
	KillerID string `json:"killerId,omitempty"`
}

type WaveStart struct {
	Wave       int `json:"wave"`
	EnemyCount int `json:"enemyCount"`
}

type WaveComplete struct {
	Wave int `json:"wave"`
}

type Error struct {
	Message string `json:"message"`
}
