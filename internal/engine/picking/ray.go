// Package picking provides ray casting against indexed meshes.
package picking

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshkit/pkg/mesh"
)

// ErrNotTriangles is returned when a mesh has no triangle topology to pick.
var ErrNotTriangles = errors.New("mesh is not made of triangles")

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // normalized
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// ScreenToRay converts pixel coordinates to a world-space ray.
// invViewProj is the inverse of projection * view.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj mgl32.Mat4) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH // flip Y

	near := invViewProj.Mul4x1(mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := invViewProj.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})
	if near.W() != 0 {
		near = near.Mul(1 / near.W())
	}
	if far.W() != 0 {
		far = far.Mul(1 / far.W())
	}

	dir := far.Vec3().Sub(near.Vec3())
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	return Ray{Origin: near.Vec3(), Direction: dir}
}

// IntersectBounds tests the ray against an axis-aligned box with the slab
// method. It returns the entry distance, or the exit distance when the ray
// starts inside the box.
func (r Ray) IntersectBounds(box mesh.Bounds) (t float32, hit bool) {
	tmin := float32(-math.MaxFloat32)
	tmax := float32(math.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		o, d := r.Origin[axis], r.Direction[axis]
		if d == 0 {
			if o < box.Min[axis] || o > box.Max[axis] {
				return 0, false
			}
			continue
		}
		t1 := (box.Min[axis] - o) / d
		t2 := (box.Max[axis] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectTriangle is the Möller-Trumbore test. It reports the distance
// along the ray for hits in front of the origin.
func (r Ray) IntersectTriangle(a, b, c mgl32.Vec3) (float32, bool) {
	const eps = 1e-7

	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if det > -eps && det < eps {
		return 0, false // parallel
	}
	inv := 1 / det

	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := e2.Dot(q) * inv
	return t, t > eps
}

// Hit is the nearest triangle a ray hit.
type Hit struct {
	Triangle int     // triangle number in the triangle list
	Vertices [3]int  // vertex indices of the triangle
	Distance float32 // along the ray
	Point    mgl32.Vec3
}

// PickTriangle returns the nearest triangle of m hit by r. Restart-delimited
// fans are expanded to a triangle list first.
func PickTriangle[I mesh.Index](r Ray, m *mesh.IndexedMesh[I], positionAttr string) (Hit, bool, error) {
	if m.Restart.Enabled && m.Primitive == mesh.TriangleFan {
		var err error
		if m, err = mesh.ApplyTriangleFan(m); err != nil {
			return Hit{}, false, err
		}
	}
	if m.Primitive != mesh.Triangles || m.Restart.Enabled {
		return Hit{}, false, fmt.Errorf("%w: %s", ErrNotTriangles, m.Primitive)
	}

	positions, err := mesh.ReadVec3(m.Vertices, positionAttr)
	if err != nil {
		return Hit{}, false, err
	}

	best := Hit{Distance: float32(math.MaxFloat32)}
	found := false
	for tri := 0; tri+2 < len(m.Indices); tri += 3 {
		ia, ib, ic := int(m.Indices[tri]), int(m.Indices[tri+1]), int(m.Indices[tri+2])
		if ia >= len(positions) || ib >= len(positions) || ic >= len(positions) {
			return Hit{}, false, fmt.Errorf("triangle %d: %w", tri/3, mesh.ErrIndexOutOfRange)
		}
		t, ok := r.IntersectTriangle(positions[ia], positions[ib], positions[ic])
		if ok && t < best.Distance {
			best = Hit{Triangle: tri / 3, Vertices: [3]int{ia, ib, ic}, Distance: t}
			found = true
		}
	}
	if !found {
		return Hit{}, false, nil
	}
	best.Point = r.At(best.Distance)
	return best, true, nil
}
