package geomops

import (
	"math"
	"sort"

	"github.com/twpayne/go-geom"
)

// collinearEps is the perpendicular slack, in linear units, allowed
// when deciding that two segments are collinear for zero-tolerance
// overlap.
const collinearEps = 1e-9

// segment is a directed planar line segment.
type segment struct {
	ax, ay, bx, by float64
}

// interval is a closed parameter range on a segment, in [0, 1].
type interval struct {
	lo, hi float64
}

// lineSegments flattens a multilinestring into its segments.
func lineSegments(mls *geom.MultiLineString) []segment {
	if mls == nil {
		return nil
	}
	var segs []segment
	for i := 0; i < mls.NumLineStrings(); i++ {
		ls := mls.LineString(i)
		for j := 1; j < ls.NumCoords(); j++ {
			a := ls.Coord(j - 1)
			b := ls.Coord(j)
			segs = append(segs, segment{a[0], a[1], b[0], b[1]})
		}
	}
	return segs
}

// mergedLength returns the total length of the union of intervals.
func mergedLength(ivs []interval) float64 {
	if len(ivs) == 0 {
		return 0
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].lo < ivs[j].lo })
	total := 0.0
	curLo, curHi := ivs[0].lo, ivs[0].hi
	for _, iv := range ivs[1:] {
		if iv.lo > curHi {
			total += curHi - curLo
			curLo, curHi = iv.lo, iv.hi
			continue
		}
		if iv.hi > curHi {
			curHi = iv.hi
		}
	}
	return total + (curHi - curLo)
}

// capsuleClip returns the parameter interval of s lying within tol of
// the segment b, i.e. the intersection of s with the capsule b ⊕
// disk(tol). The capsule is convex, so the distance from a point
// moving linearly along s to b is a convex function of the parameter
// and the clip is a single interval, located by ternary search on the
// minimum and bisection on each flank.
func capsuleClip(s, b segment, tol float64) (interval, bool) {
	dist := func(t float64) float64 {
		return pointSegDistance(s.ax+t*(s.bx-s.ax), s.ay+t*(s.by-s.ay), b)
	}

	lo, hi := 0.0, 1.0
	for i := 0; i < 100; i++ {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if dist(m1) <= dist(m2) {
			hi = m2
		} else {
			lo = m1
		}
	}
	tMin := (lo + hi) / 2
	if dist(tMin) > tol {
		return interval{}, false
	}

	return interval{
		lo: bisectEntry(dist, tol, 0, tMin),
		hi: bisectExit(dist, tol, tMin, 1),
	}, true
}

// bisectEntry finds the smallest t in [lo, hi] with dist(t) <= tol,
// given dist is non-increasing toward hi.
func bisectEntry(dist func(float64) float64, tol, lo, hi float64) float64 {
	if dist(lo) <= tol {
		return lo
	}
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if dist(mid) <= tol {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}

// bisectExit finds the largest t in [lo, hi] with dist(t) <= tol,
// given dist is non-decreasing toward hi.
func bisectExit(dist func(float64) float64, tol, lo, hi float64) float64 {
	if dist(hi) <= tol {
		return hi
	}
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if dist(mid) <= tol {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// collinearOverlap returns the parameter interval of s that lies on b
// when the two segments are collinear. Crossing or merely touching
// segments produce no interval.
func collinearOverlap(s, b segment) (interval, bool) {
	sdx, sdy := s.bx-s.ax, s.by-s.ay
	l2 := sdx*sdx + sdy*sdy
	if l2 == 0 {
		return interval{}, false
	}
	scale := math.Sqrt(l2)

	// Both endpoints of b must sit on the line through s.
	if math.Abs(cross(sdx, sdy, b.ax-s.ax, b.ay-s.ay))/scale > collinearEps {
		return interval{}, false
	}
	if math.Abs(cross(sdx, sdy, b.bx-s.ax, b.by-s.ay))/scale > collinearEps {
		return interval{}, false
	}

	t0 := ((b.ax-s.ax)*sdx + (b.ay-s.ay)*sdy) / l2
	t1 := ((b.bx-s.ax)*sdx + (b.by-s.ay)*sdy) / l2
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	lo := math.Max(t0, 0)
	hi := math.Min(t1, 1)
	if hi <= lo {
		return interval{}, false
	}
	return interval{lo: lo, hi: hi}, true
}

// pointSegDistance returns the distance from (px, py) to the segment.
func pointSegDistance(px, py float64, s segment) float64 {
	dx, dy := s.bx-s.ax, s.by-s.ay
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(px-s.ax, py-s.ay)
	}
	t := ((px-s.ax)*dx + (py-s.ay)*dy) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(px-(s.ax+t*dx), py-(s.ay+t*dy))
}

// segSegDistance returns the distance between two segments, zero when
// they intersect.
func segSegDistance(a, b segment) float64 {
	if segmentsIntersect(a, b) {
		return 0
	}
	d := pointSegDistance(a.ax, a.ay, b)
	if v := pointSegDistance(a.bx, a.by, b); v < d {
		d = v
	}
	if v := pointSegDistance(b.ax, b.ay, a); v < d {
		d = v
	}
	if v := pointSegDistance(b.bx, b.by, a); v < d {
		d = v
	}
	return d
}

// segmentsIntersect reports whether two segments share any point,
// including collinear overlap and endpoint touches.
func segmentsIntersect(a, b segment) bool {
	d1 := cross(a.bx-a.ax, a.by-a.ay, b.ax-a.ax, b.ay-a.ay)
	d2 := cross(a.bx-a.ax, a.by-a.ay, b.bx-a.ax, b.by-a.ay)
	d3 := cross(b.bx-b.ax, b.by-b.ay, a.ax-b.ax, a.ay-b.ay)
	d4 := cross(b.bx-b.ax, b.by-b.ay, a.bx-b.ax, a.by-b.ay)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	if d1 == 0 && onSegment(a, b.ax, b.ay) {
		return true
	}
	if d2 == 0 && onSegment(a, b.bx, b.by) {
		return true
	}
	if d3 == 0 && onSegment(b, a.ax, a.ay) {
		return true
	}
	if d4 == 0 && onSegment(b, a.bx, a.by) {
		return true
	}
	return false
}

// onSegment reports whether (px, py), known collinear with s, lies
// within s's bounding box.
func onSegment(s segment, px, py float64) bool {
	return math.Min(s.ax, s.bx) <= px && px <= math.Max(s.ax, s.bx) &&
		math.Min(s.ay, s.by) <= py && py <= math.Max(s.ay, s.by)
}

func cross(ux, uy, vx, vy float64) float64 {
	return ux*vy - uy*vx
}
