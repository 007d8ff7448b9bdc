// Package dataset loads the parcel and street shapefiles into typed,
// immutable in-memory tables and provides lookup by normalized parcel
// identifier. Both tables are read-only after Load returns, so
// concurrent request handlers need no locking.
package dataset

import (
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
)

// Parcel is one row of the parcel table.
type Parcel struct {
	// ID is the raw PROP_ID attribute as stored in the shapefile.
	ID string
	// NormID is the canonical lookup key, computed once at load time.
	NormID string

	SitusNum    string
	SitusStreet string
	SitusCity   string
	SitusZip    string

	Geometry *geom.MultiPolygon
}

// Street is one row of the street centerline table. A street split
// into multiple centerline rows appears as multiple Street values.
type Street struct {
	// CFCC is the Census road-class code (e.g. A41, A51, PR).
	// Empty when the source record carries no classification.
	CFCC string

	DirPrefix string
	Name      string
	Type      string
	DirSuffix string

	Geometry *geom.MultiLineString
}

// Address renders the situs address, skipping empty parts:
// "<num> <street>, <city> <zip>".
func (p *Parcel) Address() string {
	streetPart := joinNonEmpty(" ", p.SitusNum, p.SitusStreet)
	cityPart := joinNonEmpty(" ", p.SitusCity, p.SitusZip)
	return joinNonEmpty(", ", streetPart, cityPart)
}

// NormalizeParcelID canonicalizes a parcel identifier to the form the
// parcel table is keyed by: trimmed, uppercased, one leading "R"
// jurisdiction prefix dropped, leading zeros stripped by integer
// parsing. Identifiers with non-numeric residue pass through after
// trim and uppercase, deferring the not-found decision to the lookup.
func NormalizeParcelID(id string) string {
	id = strings.ToUpper(strings.TrimSpace(id))
	n, err := strconv.ParseInt(strings.TrimPrefix(id, "R"), 10, 64)
	if err != nil {
		return id
	}
	return strconv.FormatInt(n, 10)
}

// joinNonEmpty joins the non-empty parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
