package component

import "math"

// Vec3 is a simple 3D vector. The zero value is the origin.
type Vec3 struct {
	X, Y, Z float64
}

// V is shorthand for constructing a Vec3.
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// One is the unit scale vector.
var One = Vec3{X: 1, Y: 1, Z: 1}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Mul multiplies component-wise; used to compose hierarchical scales.
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Magnitude() float64 { return math.Sqrt(v.Dot(v)) }

// Normalized returns the unit vector in v's direction, or the zero vector
// when v has no magnitude.
func (v Vec3) Normalized() Vec3 {
	mag := v.Magnitude()
	if mag == 0 {
		return Vec3{}
	}
	return v.Scale(1 / mag)
}
