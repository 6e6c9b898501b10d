// Command mapgen prints a generated map for inspection.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"swarm/mapgen"
)

func main() {
	w := flag.Int("w", 40, "map width in tiles")
	h := flag.Int("h", 40, "map height in tiles")
	seed := flag.Int64("seed", 42, "generator seed")
	asJSON := flag.Bool("json", false, "print the full MapData as JSON")
	flag.Parse()

	m := mapgen.Generate(*w, *h, *seed)
	if err := write(os.Stdout, m, *asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "mapgen: %v\n", err)
		os.Exit(1)
	}
}

func write(out io.Writer, m *mapgen.MapData, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}
	_, err := io.WriteString(out, render(m))
	return err
}

var tileGlyphs = map[mapgen.TileType]byte{
	mapgen.TileWall:   '#',
	mapgen.TileFloor:  '.',
	mapgen.TilePuddle: '~',
	mapgen.TileDebris: ',',
}

// render draws the grid with spawn and feature markers, then a room legend.
func render(m *mapgen.MapData) string {
	grid := make([][]byte, m.Height)
	for y := range grid {
		grid[y] = make([]byte, m.Width)
		for x := range grid[y] {
			grid[y][x] = tileGlyphs[m.Tiles[y][x].Type]
		}
	}
	mark := func(pts []mapgen.Point, c byte) {
		for _, p := range pts {
			if m.InBounds(p.X, p.Y) {
				grid[p.Y][p.X] = c
			}
		}
	}
	mark(m.EnemySpawns, 'E')
	mark(m.PlayerSpawns, 'P')
	mark(m.Cells, 'C')
	mark(m.Altars, 'A')
	if m.Tardis != nil {
		mark([]mapgen.Point{*m.Tardis}, 'T')
	}

	var b strings.Builder
	for _, row := range grid {
		b.Write(row)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "seed %d, %dx%d, %d rooms, %.0f%% connected\n",
		m.Seed, m.Width, m.Height, len(m.Rooms), m.ConnectedRatio()*100)
	for i, r := range m.Rooms {
		conn := ""
		if !r.Connected {
			conn = " (unreachable)"
		}
		fmt.Fprintf(&b, "%2d %-8s at (%d,%d) %dx%d%s\n", i, r.Type, r.X, r.Y, r.Width, r.Height, conn)
	}
	return b.String()
}
