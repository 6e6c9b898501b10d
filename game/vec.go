package game

import "math"

// Vec3 is a world-space vector. Y is vertical; the simulation runs on the
// X/Z plane and leaves Y at zero.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(k float64) Vec3 { return Vec3{v.X * k, v.Y * k, v.Z * k} }

// Len is the planar length, ignoring Y.
func (v Vec3) Len() float64 { return math.Hypot(v.X, v.Z) }

// Normalize returns the planar unit vector, or the zero vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / l, Z: v.Z / l}
}

// Dist is the planar distance between two points.
func Dist(a, b Vec3) float64 { return a.Sub(b).Len() }

// Heading returns the facing angle for a planar direction.
func Heading(dir Vec3) float64 { return math.Atan2(dir.X, dir.Z) }

// SweepCircle returns the first fraction t in [0, 1] along the planar segment
// a->b at which the moving point comes within r of c.
func SweepCircle(a, b, c Vec3, r float64) (float64, bool) {
	f := a.Sub(c)
	cc := f.X*f.X + f.Z*f.Z - r*r
	if cc <= 0 {
		return 0, true
	}
	d := b.Sub(a)
	aa := d.X*d.X + d.Z*d.Z
	if aa == 0 {
		return 0, false
	}
	bb := 2 * (f.X*d.X + f.Z*d.Z)
	disc := bb*bb - 4*aa*cc
	if disc < 0 {
		return 0, false
	}
	t := (-bb - math.Sqrt(disc)) / (2 * aa)
	if t < 0 || t > 1 {
		return 0, false
	}
	return t, true
}
