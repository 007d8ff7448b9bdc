// Package geomops implements the planar geometry operations the
// frontage resolver needs on go-geom types: boundary extraction,
// within-tolerance intersection length, and line-to-polygon distance.
//
// All coordinates are assumed to share a planar CRS, so lengths,
// areas, and distances come out in that CRS's linear units.
package geomops

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Boundary returns every ring of the multipolygon as a closed
// linestring. Rings with fewer than two coordinates are skipped.
func Boundary(mp *geom.MultiPolygon) *geom.MultiLineString {
	mls := geom.NewMultiLineString(geom.XY)
	if mp == nil {
		return mls
	}
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for j := 0; j < poly.NumLinearRings(); j++ {
			ring := poly.LinearRing(j)
			if ring.NumCoords() < 2 {
				continue
			}
			flat := make([]float64, len(ring.FlatCoords()))
			copy(flat, ring.FlatCoords())
			if err := mls.Push(geom.NewLineStringFlat(geom.XY, flat)); err != nil {
				continue
			}
		}
	}
	return mls
}

// Area returns the planar area of the multipolygon: for each polygon,
// the shoelace area of its outer ring minus the areas of its holes.
func Area(mp *geom.MultiPolygon) float64 {
	if mp == nil {
		return 0
	}
	var total float64
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for j := 0; j < poly.NumLinearRings(); j++ {
			a := math.Abs(ringArea(poly.LinearRing(j).FlatCoords()))
			if j == 0 {
				total += a
			} else {
				total -= a
			}
		}
	}
	if total < 0 {
		return 0
	}
	return total
}

// Length returns the total planar length of the multilinestring.
func Length(mls *geom.MultiLineString) float64 {
	var total float64
	for _, s := range lineSegments(mls) {
		total += math.Hypot(s.bx-s.ax, s.by-s.ay)
	}
	return total
}

// IntersectionLength returns the length of the portion of line that
// intersects the boundary dilated by tol.
//
// The dilation of the boundary by tol is exactly the set of points
// within distance tol of it, so the intersection length equals the
// length of line lying within tol of the boundary polyline. For each
// line segment that portion is a union of per-boundary-segment capsule
// clips; a capsule is convex, so each clip is a single parameter
// interval.
//
// With tol == 0 the result is the exact collinear-overlap length:
// point crossings have zero length and contribute nothing.
func IntersectionLength(line, boundary *geom.MultiLineString, tol float64) float64 {
	lsegs := lineSegments(line)
	bsegs := lineSegments(boundary)
	if len(lsegs) == 0 || len(bsegs) == 0 {
		return 0
	}

	var total float64
	for _, s := range lsegs {
		segLen := math.Hypot(s.bx-s.ax, s.by-s.ay)
		if segLen == 0 {
			continue
		}
		var ivs []interval
		for _, b := range bsegs {
			var iv interval
			var ok bool
			if tol > 0 {
				iv, ok = capsuleClip(s, b, tol)
			} else {
				iv, ok = collinearOverlap(s, b)
			}
			if ok {
				ivs = append(ivs, iv)
			}
		}
		total += mergedLength(ivs) * segLen
	}
	return total
}

// LineToPolygonDistance returns the planar distance from the line to
// the polygon. Lines that cross the boundary or run inside the
// polygon are at distance zero. Returns +Inf for empty inputs.
func LineToPolygonDistance(line *geom.MultiLineString, mp *geom.MultiPolygon) float64 {
	lsegs := lineSegments(line)
	bsegs := lineSegments(Boundary(mp))
	if len(lsegs) == 0 || len(bsegs) == 0 {
		return math.Inf(1)
	}

	// A line entirely inside the polygon never meets the boundary.
	if pointInPolygon(lsegs[0].ax, lsegs[0].ay, mp) {
		return 0
	}

	min := math.Inf(1)
	for _, s := range lsegs {
		for _, b := range bsegs {
			d := segSegDistance(s, b)
			if d < min {
				min = d
			}
			if min == 0 {
				return 0
			}
		}
	}
	return min
}

// ringArea computes the signed shoelace area of a flat XY coordinate
// ring. The closing edge is implied when the ring is not closed.
func ringArea(flat []float64) float64 {
	n := len(flat) / 2
	if n < 3 {
		return 0
	}
	var sum float64
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		sum += flat[2*j]*flat[2*i+1] - flat[2*i]*flat[2*j+1]
	}
	return sum / 2
}

// pointInPolygon reports whether (x, y) is inside the multipolygon by
// even-odd ray casting over all rings, so holes are handled whether
// they arrive as inner rings or as separate polygons.
func pointInPolygon(x, y float64, mp *geom.MultiPolygon) bool {
	if mp == nil {
		return false
	}
	inside := false
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for j := 0; j < poly.NumLinearRings(); j++ {
			flat := poly.LinearRing(j).FlatCoords()
			n := len(flat) / 2
			for k, l := 0, n-1; k < n; l, k = k, k+1 {
				xi, yi := flat[2*k], flat[2*k+1]
				xj, yj := flat[2*l], flat[2*l+1]
				if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
					inside = !inside
				}
			}
		}
	}
	return inside
}
