package frontage

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/parcelworks/frontage-api/internal/dataset"
	"github.com/parcelworks/frontage-api/internal/geomops"
)

// DefaultTolerance is the boundary dilation, in linear units, that
// absorbs coordinate-snapping noise between the two independently
// digitized datasets. A zero tolerance under-counts real frontage
// because parcel and street geometries rarely align exactly.
const DefaultTolerance = 1.0

// Segment is one street row's frontage contribution to a parcel.
type Segment struct {
	Name      string
	Length    float64
	RoadClass string
	Code      string
}

// Resolve computes the frontage segments for a parcel against the
// street table. It is a pure function of its inputs.
//
// Streets are filtered to the public road classes unless
// includePrivate is set. The parcel boundary is dilated by tolerance
// before intersecting; with tolerance zero the intersection is exact,
// so only collinear overlap counts. Streets whose intersection has
// zero length (single-point touches) contribute nothing.
//
// Segments come back sorted by length descending; equal lengths keep
// street-table order. The returned total is the exact sum of segment
// lengths, with no rounding.
func Resolve(parcel *geom.MultiPolygon, streets []dataset.Street, tolerance float64, includePrivate bool) ([]Segment, float64, error) {
	if parcel == nil || parcel.NumPolygons() == 0 {
		return nil, 0, eris.New("frontage: parcel geometry is empty")
	}
	if tolerance < 0 {
		return nil, 0, eris.Errorf("frontage: tolerance must be non-negative, got %v", tolerance)
	}

	boundary := geomops.Boundary(parcel)

	segments := []Segment{}
	var total float64
	for _, st := range streets {
		if !includePrivate && !IsPublicCode(st.CFCC) {
			continue
		}
		if st.Geometry == nil {
			continue
		}
		length := geomops.IntersectionLength(st.Geometry, boundary, tolerance)
		if length <= 0 {
			continue
		}
		segments = append(segments, Segment{
			Name:      DisplayName(st),
			Length:    length,
			RoadClass: ClassifyRoad(st.CFCC, st.Name),
			Code:      st.CFCC,
		})
		total += length
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Length > segments[j].Length
	})

	return segments, total, nil
}

// DisplayName assembles the street's display name from its name
// parts, skipping empty fields.
func DisplayName(st dataset.Street) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{st.DirPrefix, st.Name, st.Type, st.DirSuffix} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	name := strings.TrimSpace(strings.Join(parts, " "))
	if name == "" {
		return LabelUnnamedRoad
	}
	return name
}
