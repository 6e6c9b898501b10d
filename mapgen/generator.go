// Package mapgen builds the seeded dungeon every room is played on.
package mapgen

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"swarm/rng"
)

// Options tunes room placement and decoration.
type Options struct {
	MinRoomSize     int
	MaxRoomSize     int
	TargetRooms     int
	MaxAttempts     int
	NoiseChance     float64
	MaxPlayerSpawns int
	EnemySpawnsPer  int
	MaxCells        int
	AdjacencyGap    int
	ExtraCorridors  int
}

func DefaultOptions() Options {
	return Options{
		MinRoomSize:     3,
		MaxRoomSize:     8,
		TargetRooms:     12,
		MaxAttempts:     300,
		NoiseChance:     0.06,
		MaxPlayerSpawns: 4,
		EnemySpawnsPer:  2,
		MaxCells:        3,
		AdjacencyGap:    3,
		ExtraCorridors:  2,
	}
}

// Generate builds a map with the default options. Identical inputs always
// produce an identical map.
func Generate(width, height int, seed int64) *MapData {
	return NewGenerator(width, height, seed, DefaultOptions()).Generate()
}

// Generator holds the scratch state of a single generation run.
type Generator struct {
	width, height int
	seed          int64
	opts          Options
	rng           *rng.RNG
	tiles         [][]Tile
	rooms         []Room
}

func NewGenerator(width, height int, seed int64, opts Options) *Generator {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Generator{
		width:  width,
		height: height,
		seed:   seed,
		opts:   opts,
		rng:    rng.New(seed),
	}
}

// Generate runs every stage in a fixed order; the order of random draws is
// part of the determinism contract.
func (g *Generator) Generate() *MapData {
	g.initGrid()
	g.placeRooms()
	g.assignKeyRooms()
	g.carveRooms()
	g.connectRooms()
	g.themeRooms()
	g.decorate()
	g.sealBorder()

	m := &MapData{
		Width:  g.width,
		Height: g.height,
		Seed:   g.seed,
		Tiles:  g.tiles,
		Rooms:  g.rooms,
	}
	g.markConnected(m)
	g.placePoints(m)
	return m
}

func (g *Generator) initGrid() {
	g.tiles = make([][]Tile, g.height)
	for y := 0; y < g.height; y++ {
		g.tiles[y] = make([]Tile, g.width)
		for x := 0; x < g.width; x++ {
			g.tiles[y][x] = Tile{Type: TileWall, X: x, Y: y}
		}
	}
	g.rooms = make([]Room, 0, g.opts.TargetRooms)
}

// placeRooms rejects and retries overlapping candidates until the target is
// reached or attempts run out. Running out is not an error.
func (g *Generator) placeRooms() {
	for attempt := 0; attempt < g.opts.MaxAttempts && len(g.rooms) < g.opts.TargetRooms; attempt++ {
		w := g.rng.IntRange(g.opts.MinRoomSize, g.opts.MaxRoomSize)
		h := g.rng.IntRange(g.opts.MinRoomSize, g.opts.MaxRoomSize)
		maxX := g.width - w - 1
		maxY := g.height - h - 1
		if maxX < 1 || maxY < 1 {
			continue
		}
		cand := Room{
			X:      g.rng.IntRange(1, maxX),
			Y:      g.rng.IntRange(1, maxY),
			Width:  w,
			Height: h,
		}
		if g.overlapsAny(cand) {
			continue
		}
		g.rooms = append(g.rooms, cand)
	}
}

func (g *Generator) overlapsAny(cand Room) bool {
	for _, r := range g.rooms {
		if cand.Overlaps(r, 1) {
			return true
		}
	}
	return false
}

// assignKeyRooms labels spawn (first placed), tardis (farthest from spawn)
// and one to MaxCells cell rooms, preferring rooms away from spawn.
func (g *Generator) assignKeyRooms() {
	if len(g.rooms) == 0 {
		return
	}
	g.rooms[0].Type = RoomSpawn
	if len(g.rooms) < 2 {
		return
	}

	spawn := g.rooms[0]
	tardis, best := -1, -1
	for i := 1; i < len(g.rooms); i++ {
		if d := distSq(spawn.Center(), g.rooms[i].Center()); d > best {
			tardis, best = i, d
		}
	}
	g.rooms[tardis].Type = RoomTardis

	want := g.rng.IntRange(1, g.opts.MaxCells)
	var far, near []int
	for i := 1; i < len(g.rooms); i++ {
		if i == tardis {
			continue
		}
		if g.rooms[i].Gap(spawn) > g.opts.AdjacencyGap {
			far = append(far, i)
		} else {
			near = append(near, i)
		}
	}
	g.rng.Shuffle(len(far), func(i, j int) { far[i], far[j] = far[j], far[i] })
	g.rng.Shuffle(len(near), func(i, j int) { near[i], near[j] = near[j], near[i] })
	for _, i := range append(far, near...) {
		if want == 0 {
			break
		}
		g.rooms[i].Type = RoomCell
		want--
	}
}

func (g *Generator) carveRooms() {
	for _, r := range g.rooms {
		for y := r.Y; y < r.Y+r.Height; y++ {
			for x := r.X; x < r.X+r.Width; x++ {
				g.setFloor(x, y)
			}
		}
	}
}

// connectRooms carves an L-shaped corridor between each pair of successive
// rooms in placement order, plus a few random loops.
func (g *Generator) connectRooms() {
	for i := 1; i < len(g.rooms); i++ {
		g.carveCorridor(g.rooms[i-1].Center(), g.rooms[i].Center())
	}
	if len(g.rooms) < 3 {
		return
	}
	for n := 0; n < g.opts.ExtraCorridors; n++ {
		a := g.rng.Intn(len(g.rooms))
		b := g.rng.Intn(len(g.rooms))
		if a != b {
			g.carveCorridor(g.rooms[a].Center(), g.rooms[b].Center())
		}
	}
}

func (g *Generator) carveCorridor(from, to Point) {
	if g.rng.Intn(2) == 0 {
		g.carveH(from.X, to.X, from.Y)
		g.carveV(from.Y, to.Y, to.X)
	} else {
		g.carveV(from.Y, to.Y, from.X)
		g.carveH(from.X, to.X, to.Y)
	}
}

func (g *Generator) carveH(x1, x2, y int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		g.setFloor(x, y)
	}
}

func (g *Generator) carveV(y1, y2, x int) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		g.setFloor(x, y)
	}
}

func (g *Generator) setFloor(x, y int) {
	if x < 1 || y < 1 || x >= g.width-1 || y >= g.height-1 {
		return
	}
	g.tiles[y][x].Type = TileFloor
	g.tiles[y][x].Walkable = true
}

var (
	largeRoomThemes = []rng.Weighted[RoomType]{
		{Item: RoomGrinder, Weight: 40},
		{Item: RoomStorage, Weight: 40},
		{Item: RoomNormal, Weight: 20},
	}
	smallRoomThemes = []rng.Weighted[RoomType]{
		{Item: RoomNest, Weight: 40},
		{Item: RoomShrine, Weight: 40},
		{Item: RoomNormal, Weight: 20},
	}
)

// themeRooms labels every room the key-room pass left untouched.
func (g *Generator) themeRooms() {
	for i := range g.rooms {
		r := &g.rooms[i]
		if r.Type != "" {
			continue
		}
		switch {
		case r.Width >= 6 && r.Height >= 6:
			r.Type, _ = rng.Pick(g.rng, largeRoomThemes)
		case r.Width < 4 || r.Height < 4:
			r.Type, _ = rng.Pick(g.rng, smallRoomThemes)
		default:
			r.Type = RoomNormal
		}
	}
}

// decorate assigns variants everywhere and scatters walkable puddles and
// debris over floor.
func (g *Generator) decorate() {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			t := &g.tiles[y][x]
			t.Variant = g.rng.Intn(4)
			if t.Type != TileFloor || !g.rng.Chance(g.opts.NoiseChance) {
				continue
			}
			if g.rng.Intn(2) == 0 {
				t.Type = TilePuddle
			} else {
				t.Type = TileDebris
			}
		}
	}
}

func (g *Generator) sealBorder() {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if x == 0 || y == 0 || x == g.width-1 || y == g.height-1 {
				g.tiles[y][x].Type = TileWall
				g.tiles[y][x].Walkable = false
			}
		}
	}
}

// markConnected flood fills walkable tiles from the spawn room and flags
// every room the fill touches.
func (g *Generator) markConnected(m *MapData) {
	if len(m.Rooms) == 0 {
		return
	}
	start := m.Rooms[0].Center()
	if !m.IsWalkable(start.X, start.Y) {
		return
	}
	visited := mapset.New[Point]()
	visited.Put(start)
	queue := []Point{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, n := range []Point{{p.X, p.Y - 1}, {p.X + 1, p.Y}, {p.X, p.Y + 1}, {p.X - 1, p.Y}} {
			if visited.Has(n) || !m.IsWalkable(n.X, n.Y) {
				continue
			}
			visited.Put(n)
			queue = append(queue, n)
		}
	}
	for i := range m.Rooms {
		m.Rooms[i].Connected = roomReached(m.Rooms[i], visited)
	}
}

func roomReached(r Room, visited mapset.Set[Point]) bool {
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			if visited.Has(Point{x, y}) {
				return true
			}
		}
	}
	return false
}

func (g *Generator) placePoints(m *MapData) {
	m.PlayerSpawns = []Point{}
	m.EnemySpawns = []Point{}
	m.Cells = []Point{}
	m.Altars = []Point{}
	if len(m.Rooms) == 0 {
		return
	}

	spawnTiles := walkableByDistance(m, m.Rooms[0])
	if len(spawnTiles) > g.opts.MaxPlayerSpawns {
		spawnTiles = spawnTiles[:g.opts.MaxPlayerSpawns]
	}
	m.PlayerSpawns = spawnTiles

	anyConnected := false
	for _, r := range m.Rooms[1:] {
		anyConnected = anyConnected || r.Connected
	}
	for _, r := range m.Rooms[1:] {
		if anyConnected && !r.Connected {
			continue
		}
		tiles := walkableTiles(m, r)
		g.rng.Shuffle(len(tiles), func(i, j int) { tiles[i], tiles[j] = tiles[j], tiles[i] })
		if len(tiles) > g.opts.EnemySpawnsPer {
			tiles = tiles[:g.opts.EnemySpawnsPer]
		}
		m.EnemySpawns = append(m.EnemySpawns, tiles...)
	}

	var altarCandidates []int
	for i, r := range m.Rooms {
		switch r.Type {
		case RoomTardis:
			if p, ok := nearestWalkable(m, r); ok {
				m.Tardis = &p
			}
		case RoomCell:
			if p, ok := nearestWalkable(m, r); ok {
				m.Cells = append(m.Cells, p)
			}
		case RoomShrine:
			if p, ok := nearestWalkable(m, r); ok {
				m.Altars = append(m.Altars, p)
			}
		case RoomSpawn:
		default:
			altarCandidates = append(altarCandidates, i)
		}
	}
	if len(m.Altars) == 0 && len(altarCandidates) > 0 {
		r := m.Rooms[altarCandidates[g.rng.Intn(len(altarCandidates))]]
		if p, ok := nearestWalkable(m, r); ok {
			m.Altars = append(m.Altars, p)
		}
	}
}

func walkableTiles(m *MapData, r Room) []Point {
	var out []Point
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			if m.IsWalkable(x, y) {
				out = append(out, Point{x, y})
			}
		}
	}
	return out
}

// walkableByDistance lists the room's walkable tiles nearest-to-center first;
// ties keep row-major order.
func walkableByDistance(m *MapData, r Room) []Point {
	tiles := walkableTiles(m, r)
	c := r.Center()
	sort.SliceStable(tiles, func(i, j int) bool {
		return distSq(tiles[i], c) < distSq(tiles[j], c)
	})
	return tiles
}

func nearestWalkable(m *MapData, r Room) (Point, bool) {
	tiles := walkableByDistance(m, r)
	if len(tiles) == 0 {
		return Point{}, false
	}
	return tiles[0], true
}

func distSq(a, b Point) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}
