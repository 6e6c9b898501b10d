package mapgen

import (
	"reflect"
	"testing"
)

func TestGenerateIsDeterministic(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1234, -99} {
		a := Generate(40, 40, seed)
		b := Generate(40, 40, seed)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("seed %d: two generations differ", seed)
		}
	}
}

func TestGenerateSameRoomsForSeed42(t *testing.T) {
	a := Generate(40, 40, 42)
	b := Generate(40, 40, 42)
	if len(a.Rooms) != len(b.Rooms) {
		t.Fatalf("room count = %d and %d, want equal", len(a.Rooms), len(b.Rooms))
	}
	if len(a.Rooms) == 0 {
		t.Fatalf("expected rooms on a 40x40 map")
	}
	for i := range a.Rooms {
		ra, rb := a.Rooms[i], b.Rooms[i]
		if ra.X != rb.X || ra.Y != rb.Y || ra.Width != rb.Width || ra.Height != rb.Height {
			t.Fatalf("room %d differs: %+v vs %+v", i, ra, rb)
		}
	}
}

func TestGenerateSeedSensitivity(t *testing.T) {
	differ := 0
	for seed := int64(1); seed <= 20; seed++ {
		a := Generate(40, 40, seed)
		b := Generate(40, 40, seed+1000)
		if !reflect.DeepEqual(a.Rooms, b.Rooms) {
			differ++
		}
	}
	if differ < 18 {
		t.Fatalf("only %d/20 seed pairs produced different rooms", differ)
	}
}

func TestGenerateConnectivity(t *testing.T) {
	for seed := int64(0); seed < 100; seed++ {
		m := Generate(40, 40, seed)
		if r := m.ConnectedRatio(); r < 0.8 {
			t.Fatalf("seed %d: connected ratio %.2f, want >= 0.8", seed, r)
		}
	}
}

func TestGenerateRoomTypeRules(t *testing.T) {
	for seed := int64(0); seed < 100; seed++ {
		m := Generate(40, 40, seed)
		if len(m.Rooms) < 3 {
			t.Fatalf("seed %d: only %d rooms", seed, len(m.Rooms))
		}
		if m.Rooms[0].Type != RoomSpawn {
			t.Fatalf("seed %d: first room is %q, want spawn", seed, m.Rooms[0].Type)
		}
		counts := map[RoomType]int{}
		tardisIdx := -1
		for i, r := range m.Rooms {
			counts[r.Type]++
			if r.Type == RoomTardis {
				tardisIdx = i
			}
		}
		if counts[RoomSpawn] != 1 {
			t.Fatalf("seed %d: %d spawn rooms", seed, counts[RoomSpawn])
		}
		if counts[RoomTardis] != 1 || tardisIdx == 0 {
			t.Fatalf("seed %d: tardis count %d at index %d", seed, counts[RoomTardis], tardisIdx)
		}
		if c := counts[RoomCell]; c < 1 || c > 3 {
			t.Fatalf("seed %d: %d cell rooms, want 1..3", seed, c)
		}
		for i, r := range m.Rooms {
			if r.Type == "" {
				t.Fatalf("seed %d: room %d has no type", seed, i)
			}
		}
	}
}

func TestGeneratePointsAreWalkable(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		m := Generate(40, 40, seed)
		check := func(kind string, pts []Point) {
			for _, p := range pts {
				if !m.IsWalkable(p.X, p.Y) {
					t.Fatalf("seed %d: %s point %+v is not walkable", seed, kind, p)
				}
			}
		}
		if len(m.PlayerSpawns) == 0 || len(m.EnemySpawns) == 0 {
			t.Fatalf("seed %d: missing spawn points", seed)
		}
		check("player spawn", m.PlayerSpawns)
		check("enemy spawn", m.EnemySpawns)
		check("cell", m.Cells)
		check("altar", m.Altars)
		if m.Tardis == nil {
			t.Fatalf("seed %d: no tardis position", seed)
		}
		check("tardis", []Point{*m.Tardis})

		spawn := m.Rooms[0]
		for _, p := range m.PlayerSpawns {
			if !spawn.Contains(p) {
				t.Fatalf("seed %d: player spawn %+v outside spawn room", seed, p)
			}
		}
		if spawn.Contains(*m.Tardis) {
			t.Fatalf("seed %d: tardis inside spawn room", seed)
		}
		for _, p := range m.Altars {
			if spawn.Contains(p) {
				t.Fatalf("seed %d: altar %+v inside spawn room", seed, p)
			}
		}
	}
}

func TestGenerateBorderIsWall(t *testing.T) {
	m := Generate(30, 25, 5)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if x > 0 && y > 0 && x < m.Width-1 && y < m.Height-1 {
				continue
			}
			tile := m.Tiles[y][x]
			if tile.Type != TileWall || tile.Walkable {
				t.Fatalf("border tile (%d,%d) = %v walkable=%v", x, y, tile.Type, tile.Walkable)
			}
		}
	}
}

func TestGenerateTileGridShape(t *testing.T) {
	m := Generate(33, 21, 9)
	if len(m.Tiles) != 21 {
		t.Fatalf("rows = %d, want 21", len(m.Tiles))
	}
	for y, row := range m.Tiles {
		if len(row) != 33 {
			t.Fatalf("row %d has %d tiles, want 33", y, len(row))
		}
		for x, tile := range row {
			if tile.X != x || tile.Y != y {
				t.Fatalf("tile at (%d,%d) reports (%d,%d)", x, y, tile.X, tile.Y)
			}
			if tile.Walkable == (tile.Type == TileWall) {
				t.Fatalf("tile (%d,%d) type %v walkable=%v", x, y, tile.Type, tile.Walkable)
			}
		}
	}
}

func TestGenerateThemeBias(t *testing.T) {
	var large, largeHit, small, smallHit int
	for seed := int64(0); seed < 300; seed++ {
		for _, r := range Generate(40, 40, seed).Rooms {
			switch r.Type {
			case RoomSpawn, RoomTardis, RoomCell:
				continue
			}
			if r.Width >= 6 && r.Height >= 6 {
				large++
				if r.Type == RoomGrinder || r.Type == RoomStorage {
					largeHit++
				}
			} else if r.Width < 4 || r.Height < 4 {
				small++
				if r.Type == RoomNest || r.Type == RoomShrine {
					smallHit++
				}
			} else if r.Type != RoomNormal {
				t.Fatalf("seed %d: medium room got %q", seed, r.Type)
			}
		}
	}
	if large == 0 || small == 0 {
		t.Fatalf("no samples: large=%d small=%d", large, small)
	}
	if float64(largeHit)/float64(large) <= 0.7 {
		t.Fatalf("large rooms themed grinder/storage %d/%d", largeHit, large)
	}
	if float64(smallHit)/float64(small) <= 0.7 {
		t.Fatalf("small rooms themed nest/shrine %d/%d", smallHit, small)
	}
}

func TestGenerateDegenerateSizes(t *testing.T) {
	for _, dims := range [][2]int{{0, 0}, {1, 1}, {4, 4}, {-3, 10}} {
		m := Generate(dims[0], dims[1], 1)
		if len(m.Rooms) != 0 {
			t.Fatalf("%v: expected no rooms, got %d", dims, len(m.Rooms))
		}
		if m.Tardis != nil || len(m.PlayerSpawns) != 0 {
			t.Fatalf("%v: expected no points", dims)
		}
	}
}

func TestGenerateSmallMapDegradesGracefully(t *testing.T) {
	m := Generate(12, 12, 3)
	if len(m.Rooms) == 0 {
		t.Fatalf("expected at least one room on a 12x12 map")
	}
	if m.Rooms[0].Type != RoomSpawn {
		t.Fatalf("first room = %q, want spawn", m.Rooms[0].Type)
	}
}
