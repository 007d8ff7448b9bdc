// Package frontage computes how much of a parcel's boundary runs
// along public (or, optionally, private) street centerlines. Every
// function is a pure computation over the loaded tables.
package frontage

import (
	"fmt"
	"strings"
)

// Road-class codes used by the street dataset (Census CFCC scheme).
const (
	CodeSecondaryHighway = "A41"
	CodeLocalRoad        = "A51"
	CodePrivate          = "PR"
)

// privateNameMarker flags streets whose privateness is encoded only
// in the name field, not the class code.
const privateNameMarker = "PVT"

// Display labels.
const (
	LabelSecondaryHighway = "Secondary Highway"
	LabelLocalRoad        = "Local Road"
	LabelPrivateRoad      = "Private Road"
	LabelUnnamedRoad      = "Unnamed Road"
)

// roadClassRules maps codes to labels, checked in order.
var roadClassRules = []struct {
	code  string
	label string
}{
	{CodeSecondaryHighway, LabelSecondaryHighway},
	{CodeLocalRoad, LabelLocalRoad},
	{CodePrivate, LabelPrivateRoad},
}

// IsPublicCode reports whether the road-class code belongs to the
// public set. Empty and unknown codes are not public.
func IsPublicCode(code string) bool {
	return code == CodeSecondaryHighway || code == CodeLocalRoad
}

// ClassifyRoad maps a road-class code to its display label, falling
// back to the name field for privately maintained roads that carry no
// class code.
func ClassifyRoad(code, name string) string {
	for _, r := range roadClassRules {
		if r.code == code {
			return r.label
		}
	}
	if strings.Contains(strings.ToUpper(name), privateNameMarker) {
		return LabelPrivateRoad
	}
	if code == "" {
		return "Other (unclassified)"
	}
	return fmt.Sprintf("Other (%s)", code)
}
