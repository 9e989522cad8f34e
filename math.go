package gizmo

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Rect is a screen-space rectangle in viewport coordinates.
type Rect struct {
	Min mgl32.Vec2
	Max mgl32.Vec2
}

func NewRect(minX, minY, maxX, maxY float32) Rect {
	return Rect{Min: mgl32.Vec2{minX, minY}, Max: mgl32.Vec2{maxX, maxY}}
}

func (r Rect) Width() float32  { return r.Max.X() - r.Min.X() }
func (r Rect) Height() float32 { return r.Max.Y() - r.Min.Y() }

func (r Rect) Center() mgl32.Vec2 {
	return mgl32.Vec2{(r.Min.X() + r.Max.X()) / 2, (r.Min.Y() + r.Max.Y()) / 2}
}

// IsFinite reports whether the rectangle has finite coordinates and a
// positive area. A viewport that has not been laid out yet fails this check.
func (r Rect) IsFinite() bool {
	for _, v := range [4]float32{r.Min.X(), r.Min.Y(), r.Max.X(), r.Max.Y()} {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return r.Width() > 0 && r.Height() > 0
}

// rotationAlign returns the minimal rotation matrix that maps the unit
// vector from onto the unit vector to.
//
// Credit: https://www.iquilezles.org/www/articles/noacos/noacos.htm
func rotationAlign(from, to mgl64.Vec3) mgl64.Mat3 {
	v := from.Cross(to)
	c := from.Dot(to)
	k := 1.0 / (1.0 + c)

	return mgl64.Mat3{
		v.X()*v.X()*k + c,
		v.X()*v.Y()*k + v.Z(),
		v.X()*v.Z()*k - v.Y(),
		v.Y()*v.X()*k - v.Z(),
		v.Y()*v.Y()*k + c,
		v.Y()*v.Z()*k + v.X(),
		v.Z()*v.X()*k + v.Y(),
		v.Z()*v.Y()*k - v.X(),
		v.Z()*v.Z()*k + c,
	}
}

// rayToRay finds the parametric closest-approach points between two
// infinite lines. For near-parallel lines ta is zero.
//
// Credit: Practical Geometry Algorithms by Daniel Sunday: http://geomalgorithms.com/code.html
func rayToRay(a1, adir, b1, bdir mgl64.Vec3) (ta, tb float64) {
	b := adir.Dot(bdir)
	w := a1.Sub(b1)
	d := adir.Dot(w)
	e := bdir.Dot(w)
	dot := 1.0 - b*b

	if dot < 1e-8 {
		ta = 0
		tb = e
	} else {
		ta = (b*e - d) / dot
		tb = (e - b*d) / dot
	}
	return ta, tb
}

// segmentToSegment finds the closest points between two segments,
// as fractions of each segment clamped to [0, 1].
//
// Credit: Practical Geometry Algorithms by Daniel Sunday: http://geomalgorithms.com/code.html
func segmentToSegment(a1, a2, b1, b2 mgl64.Vec3) (ta, tb float64) {
	da := a2.Sub(a1)
	db := b2.Sub(b1)
	la := da.Dot(da)
	lb := db.Dot(db)
	dd := da.Dot(db)
	d1 := a1.Sub(b1)
	d := da.Dot(d1)
	e := db.Dot(d1)
	n := la*lb - dd*dd

	var sn, tn float64
	sd := n
	td := n

	if n < 1e-8 {
		sn = 0
		sd = 1
		tn = e
		td = lb
	} else {
		sn = dd*e - lb*d
		tn = la*e - dd*d
		if sn < 0 {
			sn = 0
			tn = e
			td = lb
		} else if sn > sd {
			sn = sd
			tn = e + dd
			td = lb
		}
	}

	if tn < 0 {
		tn = 0
		if -d < 0 {
			sn = 0
		} else if -d > la {
			sn = sd
		} else {
			sn = -d
			sd = la
		}
	} else if tn > td {
		tn = td
		if -d+dd < 0 {
			sn = 0
		} else if -d+dd > la {
			sn = sd
		} else {
			sn = -d + dd
			sd = la
		}
	}

	if math.Abs(sn) < 1e-8 {
		ta = 0
	} else {
		ta = sn / sd
	}
	if math.Abs(tn) < 1e-8 {
		tb = 0
	} else {
		tb = tn / td
	}
	return ta, tb
}

// intersectPlane writes the parametric intersection distance of a ray and a
// plane into t. It returns false when the ray is parallel to the plane or
// the intersection lies behind the ray origin.
func intersectPlane(planeNormal, planeOrigin, rayOrigin, rayDir mgl64.Vec3, t *float64) bool {
	denom := planeNormal.Dot(rayDir)
	if math.Abs(denom) < 1e-7 {
		return false
	}
	*t = planeOrigin.Sub(rayOrigin).Dot(planeNormal) / denom
	return *t >= 0
}

// rayToPlaneOrigin intersects a ray with a plane and additionally returns
// the distance from the hit point to the plane origin. On a parallel miss
// the distance is MaxFloat64.
func rayToPlaneOrigin(discNormal, discOrigin, rayOrigin, rayDir mgl64.Vec3) (t, dist float64) {
	if intersectPlane(discNormal, discOrigin, rayOrigin, rayDir, &t) {
		p := rayOrigin.Add(rayDir.Mul(t))
		v := p.Sub(discOrigin)
		return t, math.Sqrt(v.Dot(v))
	}
	return t, math.MaxFloat64
}

// roundToInterval rounds val to the nearest multiple of interval.
func roundToInterval(val, interval float64) float64 {
	return math.Round(val/interval) * interval
}

// worldToScreen projects a world-space position into viewport coordinates.
// ok is false when the position is on or behind the camera plane.
func worldToScreen(viewport Rect, mvp mgl64.Mat4, pos mgl64.Vec3) (screen mgl32.Vec2, ok bool) {
	p := mvp.Mul4x1(pos.Vec4(1))

	if p.W() < 1e-10 {
		return mgl32.Vec2{}, false
	}

	p = p.Mul(1 / p.W())
	center := viewport.Center()

	return mgl32.Vec2{
		float32(float64(center.X()) + p.X()*float64(viewport.Width())/2),
		float32(float64(center.Y()) - p.Y()*float64(viewport.Height())/2),
	}, true
}

// screenToWorld unprojects a viewport position at the given NDC depth using
// the inverse of a projection matrix.
func screenToWorld(viewport Rect, mat mgl64.Mat4, pos mgl32.Vec2, z float64) mgl64.Vec3 {
	x := float64(pos.X()-viewport.Min.X())/float64(viewport.Width())*2 - 1
	y := float64(pos.Y()-viewport.Min.Y())/float64(viewport.Height())*2 - 1

	world := mat.Mul4x1(mgl64.Vec4{x, -y, z, 1})

	// w is zero when the far plane is set to infinity
	w := world.W()
	if math.Abs(w) < 1e-7 {
		w = 1e-7
	}

	return world.Vec3().Mul(1 / w)
}
