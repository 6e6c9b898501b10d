package game

import "swarm/mapgen"

// canOccupy checks the four corners of a circle's bounding box against the
// tile grid.
func canOccupy(m *mapgen.MapData, x, z, r float64) bool {
	return m.IsWalkableWorld(x-r, z-r) &&
		m.IsWalkableWorld(x+r, z-r) &&
		m.IsWalkableWorld(x-r, z+r) &&
		m.IsWalkableWorld(x+r, z+r)
}

// slide moves pos by delta one axis at a time, so a wall on one axis does not
// stop motion along the other.
func slide(m *mapgen.MapData, pos, delta Vec3, radius float64) Vec3 {
	if delta.X != 0 && canOccupy(m, pos.X+delta.X, pos.Z, radius) {
		pos.X += delta.X
	}
	if delta.Z != 0 && canOccupy(m, pos.X, pos.Z+delta.Z, radius) {
		pos.Z += delta.Z
	}
	return pos
}
