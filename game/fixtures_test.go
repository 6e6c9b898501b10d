package game

import "swarm/mapgen"

// openMap is a w x h arena of floor ringed by wall.
func openMap(w, h int) *mapgen.MapData {
	m := &mapgen.MapData{Width: w, Height: h, Tiles: make([][]mapgen.Tile, h)}
	for y := 0; y < h; y++ {
		m.Tiles[y] = make([]mapgen.Tile, w)
		for x := 0; x < w; x++ {
			walk := x > 0 && y > 0 && x < w-1 && y < h-1
			t := mapgen.Tile{Type: mapgen.TileWall, X: x, Y: y}
			if walk {
				t.Type = mapgen.TileFloor
				t.Walkable = true
			}
			m.Tiles[y][x] = t
		}
	}
	m.PlayerSpawns = []mapgen.Point{{X: w / 2, Y: h / 2}}
	m.EnemySpawns = []mapgen.Point{{X: 2, Y: 2}, {X: w - 3, Y: h - 3}}
	return m
}

func newTestState() (*State, *Player) {
	s := NewState(openMap(20, 20), DefaultConfig(), 1)
	p := s.AddPlayer("p1", "tester")
	return s, p
}

type gate struct{ available bool }

func (g *gate) CanTriggerLastStand() bool { return g.available }
func (g *gate) TriggerLastStand()         { g.available = false }
