package dataset

import (
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// Parcel shapefile attribute names.
const (
	fieldPropID      = "prop_id"
	fieldSitusNum    = "situs_num"
	fieldSitusStreet = "situs_stre"
	fieldSitusCity   = "situs_city"
	fieldSitusZip    = "situs_zip"
)

// Street shapefile attribute names.
const (
	fieldCFCC      = "cfcc"
	fieldDirPrefix = "fedirp"
	fieldName      = "fename"
	fieldType      = "fetype"
	fieldDirSuffix = "fedirs"
)

// loadParcels reads the parcel shapefile. Rows with an empty PROP_ID
// or no usable polygon geometry are skipped.
func loadParcels(path string) ([]Parcel, string, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, "", eris.Wrapf(err, "dataset: open parcel shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := fieldIndexes(reader)
	var parcels []Parcel
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		mp := multiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}

		id := attribute(reader, fields, fieldPropID)
		if id == "" {
			skipped++
			continue
		}

		parcels = append(parcels, Parcel{
			ID:          id,
			NormID:      NormalizeParcelID(id),
			SitusNum:    attribute(reader, fields, fieldSitusNum),
			SitusStreet: attribute(reader, fields, fieldSitusStreet),
			SitusCity:   attribute(reader, fields, fieldSitusCity),
			SitusZip:    attribute(reader, fields, fieldSitusZip),
			Geometry:    mp,
		})
	}

	if skipped > 0 {
		zap.L().Debug("dataset: skipped parcel records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return parcels, readCRS(path), nil
}

// loadStreets reads the street centerline shapefile. Rows without a
// usable polyline geometry are skipped; a missing CFCC is kept as an
// empty code so the resolver can still surface the row when private
// roads are requested.
func loadStreets(path string) ([]Street, string, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, "", eris.Wrapf(err, "dataset: open street shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := fieldIndexes(reader)
	var streets []Street
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()
		line, ok := shape.(*shp.PolyLine)
		if !ok {
			skipped++
			continue
		}
		mls := multiLineString(line)
		if mls == nil {
			skipped++
			continue
		}

		streets = append(streets, Street{
			CFCC:      strings.ToUpper(attribute(reader, fields, fieldCFCC)),
			DirPrefix: attribute(reader, fields, fieldDirPrefix),
			Name:      attribute(reader, fields, fieldName),
			Type:      attribute(reader, fields, fieldType),
			DirSuffix: attribute(reader, fields, fieldDirSuffix),
			Geometry:  mls,
		})
	}

	if skipped > 0 {
		zap.L().Debug("dataset: skipped street records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return streets, readCRS(path), nil
}

// fieldIndexes maps lowercased DBF field names to their index. Field
// names come back NUL-padded from go-shp.
func fieldIndexes(reader *shp.Reader) map[string]int {
	fields := reader.Fields()
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		idx[strings.ToLower(name)] = i
	}
	return idx
}

// attribute returns the named attribute of the current record,
// trimmed, or "" when the field is absent.
func attribute(reader *shp.Reader, fields map[string]int, name string) string {
	i, ok := fields[name]
	if !ok {
		return ""
	}
	val := strings.TrimRight(reader.Attribute(i), "\x00")
	return strings.TrimSpace(val)
}

// readCRS returns the contents of the .prj sidecar next to the .shp
// file, or "" when none exists.
func readCRS(shpPath string) string {
	prj := strings.TrimSuffix(shpPath, ".shp") + ".prj"
	data, err := os.ReadFile(prj)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// multiPolygon converts a shapefile polygon to a go-geom
// multipolygon, one polygon per part. Returns nil when no part yields
// a valid ring.
func multiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for i := int32(0); i < p.NumParts; i++ {
		flat := partFlatCoords(p.Parts, p.Points, i)
		if len(flat) < 6 {
			continue
		}
		flat = closeRing(flat)

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			continue
		}
		if err := mp.Push(poly); err != nil {
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// multiLineString converts a shapefile polyline to a go-geom
// multilinestring. Returns nil when no part yields a valid line.
func multiLineString(pl *shp.PolyLine) *geom.MultiLineString {
	if pl == nil || pl.NumParts == 0 || len(pl.Points) == 0 {
		return nil
	}

	mls := geom.NewMultiLineString(geom.XY)
	for i := int32(0); i < pl.NumParts; i++ {
		flat := partFlatCoords(pl.Parts, pl.Points, i)
		if len(flat) < 4 {
			continue
		}
		if err := mls.Push(geom.NewLineStringFlat(geom.XY, flat)); err != nil {
			continue
		}
	}

	if mls.NumLineStrings() == 0 {
		return nil
	}
	return mls
}

// partFlatCoords extracts part i of a multi-part shape as flat XY
// coordinates.
func partFlatCoords(parts []int32, points []shp.Point, i int32) []float64 {
	start := parts[i]
	end := int32(len(points))
	if int(i)+1 < len(parts) {
		end = parts[i+1]
	}
	flat := make([]float64, 0, (end-start)*2)
	for j := start; j < end; j++ {
		flat = append(flat, points[j].X, points[j].Y)
	}
	return flat
}

// closeRing appends the first coordinate when the ring is not closed.
func closeRing(flat []float64) []float64 {
	n := len(flat)
	if flat[0] == flat[n-2] && flat[1] == flat[n-1] {
		return flat
	}
	return append(flat, flat[0], flat[1])
}
