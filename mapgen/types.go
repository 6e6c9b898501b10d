package mapgen

import (
	"fmt"
	"math"
)

// TileSize is the edge length of one tile in world units.
const TileSize = 2.0

type TileType uint8

const (
	TileWall TileType = iota
	TileFloor
	TilePuddle
	TileDebris
)

var tileTypeNames = [...]string{"wall", "floor", "puddle", "debris"}

func (t TileType) String() string {
	if int(t) < len(tileTypeNames) {
		return tileTypeNames[t]
	}
	return fmt.Sprintf("tile(%d)", uint8(t))
}

func (t TileType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TileType) UnmarshalText(b []byte) error {
	for i, name := range tileTypeNames {
		if name == string(b) {
			*t = TileType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown tile type %q", b)
}

// Tile is one grid cell. Tiles never change after generation.
type Tile struct {
	Type     TileType `json:"type"`
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Walkable bool     `json:"walkable"`
	Variant  int      `json:"variant"`
}

type RoomType string

const (
	RoomSpawn   RoomType = "spawn"
	RoomTardis  RoomType = "tardis"
	RoomCell    RoomType = "cell"
	RoomGrinder RoomType = "grinder"
	RoomStorage RoomType = "storage"
	RoomNest    RoomType = "nest"
	RoomShrine  RoomType = "shrine"
	RoomNormal  RoomType = "normal"
)

// Point is a tile coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// World returns the world-space center of the tile (x on the X axis, y on Z).
func (p Point) World() (x, z float64) {
	return (float64(p.X) + 0.5) * TileSize, (float64(p.Y) + 0.5) * TileSize
}

// TileAt converts a world-space position to the tile that contains it.
func TileAt(x, z float64) Point {
	return Point{X: int(math.Floor(x / TileSize)), Y: int(math.Floor(z / TileSize))}
}

// Room is an axis-aligned rectangle of floor tiles.
type Room struct {
	X         int      `json:"x"`
	Y         int      `json:"y"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	Type      RoomType `json:"roomType"`
	Connected bool     `json:"connected"`
}

// Center returns the room's center tile.
func (r Room) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains checks if a tile lies inside the room.
func (r Room) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Overlaps checks if the rooms intersect once both are grown by pad tiles.
func (r Room) Overlaps(o Room, pad int) bool {
	return r.X-pad < o.X+o.Width && r.X+r.Width+pad > o.X &&
		r.Y-pad < o.Y+o.Height && r.Y+r.Height+pad > o.Y
}

// Gap returns the number of tiles separating two rooms along the farther axis.
func (r Room) Gap(o Room) int {
	dx := max(o.X-(r.X+r.Width), r.X-(o.X+o.Width), 0)
	dy := max(o.Y-(r.Y+r.Height), r.Y-(o.Y+o.Height), 0)
	return max(dx, dy)
}

// MapData is the generated dungeon. It is immutable once returned.
type MapData struct {
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Seed         int64    `json:"seed"`
	Tiles        [][]Tile `json:"tiles"` // [y][x]
	Rooms        []Room   `json:"rooms"`
	PlayerSpawns []Point  `json:"playerSpawns"`
	EnemySpawns  []Point  `json:"enemySpawns"`
	Tardis       *Point   `json:"tardis,omitempty"`
	Cells        []Point  `json:"cells"`
	Altars       []Point  `json:"altars"`
}

// InBounds checks if a tile index lies within the grid.
func (m *MapData) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// IsWalkable reports whether (x, y) is a walkable tile. Out of range is a wall.
func (m *MapData) IsWalkable(x, y int) bool {
	if !m.InBounds(x, y) {
		return false
	}
	return m.Tiles[y][x].Walkable
}

// IsWalkableWorld reports whether the world-space position stands on a
// walkable tile.
func (m *MapData) IsWalkableWorld(x, z float64) bool {
	p := TileAt(x, z)
	return m.IsWalkable(p.X, p.Y)
}

// ConnectedRatio is the fraction of rooms flagged as connected.
func (m *MapData) ConnectedRatio() float64 {
	if len(m.Rooms) == 0 {
		return 0
	}
	n := 0
	for _, r := range m.Rooms {
		if r.Connected {
			n++
		}
	}
	return float64(n) / float64(len(m.Rooms))
}
