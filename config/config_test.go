package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Game.TickRate != 20 || c.MapWidth != 40 || c.MapHeight != 40 || c.MaxPlayers != 4 {
		t.Fatalf("defaults = %+v", c)
	}
	if c.TickInterval().Milliseconds() != 50 {
		t.Fatalf("tick interval = %v", c.TickInterval())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TICK_RATE", "30")
	t.Setenv("MAP_WIDTH", "60")
	t.Setenv("MAP_SEED", "42")
	t.Setenv("PLAYER_SPEED", "9.5")
	t.Setenv("PROJECTILE_DAMAGE", "60")
	t.Setenv("SHOOT_COOLDOWN_MS", "150")
	t.Setenv("SNAPSHOT_FORMAT", "msgpack")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Game.TickRate != 30 || c.MapWidth != 60 || c.MapSeed != 42 {
		t.Fatalf("overrides = %+v", c)
	}
	if c.Game.PlayerSpeed != 9.5 || c.Game.Blaster.Damage != 60 || c.Game.Blaster.CooldownMs != 150 {
		t.Fatalf("game overrides = %+v", c.Game)
	}
	if c.SnapshotFormat != "msgpack" {
		t.Fatalf("snapshot format = %q", c.SnapshotFormat)
	}
}

func TestLoadReportsEveryBadValue(t *testing.T) {
	t.Setenv("TICK_RATE", "fast")
	t.Setenv("PLAYER_SPEED", "quick")
	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "TICK_RATE") || !strings.Contains(err.Error(), "PLAYER_SPEED") {
		t.Fatalf("error %q does not name both variables", err)
	}
}

func TestLoadValidates(t *testing.T) {
	cases := []struct{ key, val string }{
		{"TICK_RATE", "0"},
		{"TICK_RATE", "2000000000"},
		{"RECORDS_BACKEND", "redis"},
		{"SNAPSHOT_FORMAT", "xml"},
		{"PLAYER_SPEED", "NaN"},
		{"PROJECTILE_SPEED", "+Inf"},
		{"PROJECTILE_DAMAGE", "-5"},
		{"PICKUP_DROP_CHANCE", "1.5"},
	}
	for _, tc := range cases {
		key, val := tc.key, tc.val
		t.Run(key+"="+val, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s accepted", key, val)
			}
		})
	}
	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("RECORDS_BACKEND", "postgres")
		t.Setenv("DATABASE_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("postgres backend accepted without DATABASE_URL")
		}
	})
}

func TestInitConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SWARM_TEST_VALUE=hello\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SWARM_TEST_VALUE", "")
	os.Unsetenv("SWARM_TEST_VALUE")
	if err := InitConfig(path); err != nil {
		t.Fatalf("init: %v", err)
	}
	v, err := GetEnvVariable("SWARM_TEST_VALUE")
	if err != nil || v != "hello" {
		t.Fatalf("value = %q, %v", v, err)
	}
}

func TestInitConfigMissingFile(t *testing.T) {
	if err := InitConfig(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing env file returned %v", err)
	}
}
