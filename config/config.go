package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"swarm/game"
)

// InitConfig loads .env into the environment. A missing file is not an
// error; variables may come from the real environment instead.
func InitConfig(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := os.Getenv(v)
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}

	return b, nil
}

// MaxTickRate is the fastest tick the room ticker is allowed to run.
const MaxTickRate = 1000

type Config struct {
	ServerAddr string
	LogLevel   string
	LogFormat  string

	RecordsBackend string // json, postgres or none
	RecordsFile    string
	DatabaseURL    string

	SnapshotFormat string // json or msgpack
	MapWidth       int
	MapHeight      int
	MapSeed        int64 // 0 picks a random seed per room
	MaxPlayers     int

	Game game.Config
}

// Load reads the environment on top of defaults. Malformed values are
// reported rather than silently ignored.
func Load() (Config, error) {
	c := Config{
		ServerAddr:     envString("SERVER_ADDR", ":8080"),
		LogLevel:       envString("LOG_LEVEL", "info"),
		LogFormat:      envString("LOG_FORMAT", "console"),
		RecordsBackend: envString("RECORDS_BACKEND", "json"),
		RecordsFile:    envString("RECORDS_FILE", "runs.json"),
		DatabaseURL:    envString("DATABASE_URL", ""),
		SnapshotFormat: envString("SNAPSHOT_FORMAT", "json"),
		Game:           game.DefaultConfig(),
	}

	p := parser{}
	c.MapWidth = p.intVar("MAP_WIDTH", 40)
	c.MapHeight = p.intVar("MAP_HEIGHT", 40)
	c.MapSeed = int64(p.intVar("MAP_SEED", 0))
	c.MaxPlayers = p.intVar("MAX_PLAYERS", 4)

	g := &c.Game
	g.TickRate = p.intVar("TICK_RATE", g.TickRate)
	g.PlayerSpeed = p.floatVar("PLAYER_SPEED", g.PlayerSpeed)
	g.PlayerHealth = p.floatVar("PLAYER_HEALTH", g.PlayerHealth)
	g.PlayerAmmo = p.intVar("PLAYER_AMMO", g.PlayerAmmo)
	g.Blaster.CooldownMs = p.floatVar("SHOOT_COOLDOWN_MS", g.Blaster.CooldownMs)
	g.Blaster.Speed = p.floatVar("PROJECTILE_SPEED", g.Blaster.Speed)
	g.Blaster.Damage = p.floatVar("PROJECTILE_DAMAGE", g.Blaster.Damage)
	g.Blaster.LifetimeMs = p.floatVar("PROJECTILE_LIFETIME_MS", g.Blaster.LifetimeMs)
	g.Blaster.HitboxRadius = p.floatVar("PROJECTILE_RADIUS", g.Blaster.HitboxRadius)
	g.PickupDropChance = p.floatVar("PICKUP_DROP_CHANCE", g.PickupDropChance)
	g.PickupHealthValue = p.floatVar("PICKUP_HEALTH_VALUE", g.PickupHealthValue)
	g.PickupAmmoValue = p.intVar("PICKUP_AMMO_VALUE", g.PickupAmmoValue)

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch {
	case c.Game.TickRate <= 0 || c.Game.TickRate > MaxTickRate:
		return fmt.Errorf("TICK_RATE must be in [1, %d], got %d", MaxTickRate, c.Game.TickRate)
	case c.MaxPlayers <= 0:
		return fmt.Errorf("MAX_PLAYERS must be positive, got %d", c.MaxPlayers)
	case c.MapWidth <= 0 || c.MapHeight <= 0:
		return fmt.Errorf("map dimensions must be positive, got %dx%d", c.MapWidth, c.MapHeight)
	}
	g := c.Game
	tuning := []struct {
		key string
		val float64
	}{
		{"PLAYER_SPEED", g.PlayerSpeed},
		{"PLAYER_HEALTH", g.PlayerHealth},
		{"SHOOT_COOLDOWN_MS", g.Blaster.CooldownMs},
		{"PROJECTILE_SPEED", g.Blaster.Speed},
		{"PROJECTILE_DAMAGE", g.Blaster.Damage},
		{"PROJECTILE_LIFETIME_MS", g.Blaster.LifetimeMs},
		{"PROJECTILE_RADIUS", g.Blaster.HitboxRadius},
		{"PICKUP_DROP_CHANCE", g.PickupDropChance},
		{"PICKUP_HEALTH_VALUE", g.PickupHealthValue},
	}
	for _, t := range tuning {
		if math.IsNaN(t.val) || math.IsInf(t.val, 0) || t.val < 0 {
			return fmt.Errorf("%s must be a finite non-negative number, got %v", t.key, t.val)
		}
	}
	if g.PickupDropChance > 1 {
		return fmt.Errorf("PICKUP_DROP_CHANCE must be at most 1, got %v", g.PickupDropChance)
	}
	switch c.RecordsBackend {
	case "json", "postgres", "none":
	default:
		return fmt.Errorf("unknown RECORDS_BACKEND %q", c.RecordsBackend)
	}
	switch c.SnapshotFormat {
	case "json", "msgpack":
	default:
		return fmt.Errorf("unknown SNAPSHOT_FORMAT %q", c.SnapshotFormat)
	}
	if c.RecordsBackend == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("RECORDS_BACKEND=postgres needs DATABASE_URL")
	}
	return nil
}

// TickInterval is the wall-clock period of one simulation tick.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Game.TickRate)
}

func envString(key, def string) string {
	if v, err := GetEnvVariable(key); err == nil {
		return v
	}
	return def
}

// parser collects conversion errors so every bad variable is reported at once.
type parser struct {
	errs []error
}

func (p *parser) intVar(key string, def int) int {
	v, err := GetEnvVariable(key)
	if err != nil {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *parser) floatVar(key string, def float64) float64 {
	v, err := GetEnvVariable(key)
	if err != nil {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}
