package frontage

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/parcelworks/frontage-api/internal/dataset"
	"github.com/parcelworks/frontage-api/internal/geomops"
)

// Confidence labels attached to tier results.
const (
	ConfidenceHigh    = "high"
	ConfidenceMedium  = "medium"
	ConfidenceLow     = "low"
	ConfidenceContext = "context"
)

// Nearby-roads inventory defaults.
const (
	DefaultNearbyRadius = 200.0
	DefaultNearbyLimit  = 20
)

// Tier is a named analysis policy: a boundary tolerance, a road-class
// filter, and the confidence attached to its result.
type Tier struct {
	Name           string
	Description    string
	Confidence     string
	Tolerance      float64
	IncludePrivate bool
}

// DefaultTiers are the four fixed policies evaluated per analysis,
// from strictest to loosest.
var DefaultTiers = []Tier{
	{
		Name:        "strict",
		Description: "1 ft boundary tolerance, public roads only",
		Confidence:  ConfidenceHigh,
		Tolerance:   1,
	},
	{
		Name:        "moderate",
		Description: "5 ft boundary tolerance, public roads only",
		Confidence:  ConfidenceMedium,
		Tolerance:   5,
	},
	{
		Name:        "permissive_public",
		Description: "25 ft boundary tolerance, public roads only",
		Confidence:  ConfidenceLow,
		Tolerance:   25,
	},
	{
		Name:           "permissive_all",
		Description:    "25 ft boundary tolerance, private and unclassified roads included",
		Confidence:     ConfidenceContext,
		Tolerance:      25,
		IncludePrivate: true,
	},
}

// TierResult is one tier's resolver output.
type TierResult struct {
	Tier     Tier
	Segments []Segment
	Total    float64
}

// NearbyRoad is one street within the nearby-roads search radius of
// the parcel polygon (not just its boundary).
type NearbyRoad struct {
	Name      string
	Distance  float64
	RoadClass string
	Code      string
	Public    bool
}

// Summary holds the boolean and minimum-distance digest consumed by
// downstream automated callers.
type Summary struct {
	HasHighConfidenceFrontage   bool
	HasMediumConfidenceFrontage bool
	HasLowConfidenceFrontage    bool
	HasAnyFrontage              bool

	// Nil when no candidate roads exist within the search radius.
	NearestPublicRoadFt *float64
	NearestRoadFt       *float64
}

// Analysis is the full multi-tier result for one parcel.
type Analysis struct {
	AreaSqFt float64
	// Bounds is [minx, miny, maxx, maxy].
	Bounds  [4]float64
	Tiers   []TierResult
	Nearby  []NearbyRoad
	Summary Summary
}

// AnalyzeOptions tunes Analyze. Zero values take the defaults.
type AnalyzeOptions struct {
	Tiers        []Tier
	NearbyRadius float64
	NearbyLimit  int
}

func (o AnalyzeOptions) withDefaults() AnalyzeOptions {
	if len(o.Tiers) == 0 {
		o.Tiers = DefaultTiers
	}
	if o.NearbyRadius <= 0 {
		o.NearbyRadius = DefaultNearbyRadius
	}
	if o.NearbyLimit <= 0 {
		o.NearbyLimit = DefaultNearbyLimit
	}
	return o
}

// Analyze runs the resolver once per tier and builds the nearby-roads
// inventory: every street within the search radius of the parcel,
// annotated with its true distance, sorted ascending, truncated to
// the configured count.
func Analyze(parcel *geom.MultiPolygon, streets []dataset.Street, opts AnalyzeOptions) (*Analysis, error) {
	if parcel == nil || parcel.NumPolygons() == 0 {
		return nil, eris.New("frontage: parcel geometry is empty")
	}
	opts = opts.withDefaults()

	bounds := parcel.Bounds()
	a := &Analysis{
		AreaSqFt: geomops.Area(parcel),
		Bounds:   [4]float64{bounds.Min(0), bounds.Min(1), bounds.Max(0), bounds.Max(1)},
	}

	for _, tier := range opts.Tiers {
		segments, total, err := Resolve(parcel, streets, tier.Tolerance, tier.IncludePrivate)
		if err != nil {
			return nil, err
		}
		a.Tiers = append(a.Tiers, TierResult{Tier: tier, Segments: segments, Total: total})
	}

	for _, st := range streets {
		if st.Geometry == nil {
			continue
		}
		d := geomops.LineToPolygonDistance(st.Geometry, parcel)
		if d > opts.NearbyRadius {
			continue
		}
		a.Nearby = append(a.Nearby, NearbyRoad{
			Name:      DisplayName(st),
			Distance:  d,
			RoadClass: ClassifyRoad(st.CFCC, st.Name),
			Code:      st.CFCC,
			Public:    IsPublicCode(st.CFCC),
		})
	}
	sort.SliceStable(a.Nearby, func(i, j int) bool {
		return a.Nearby[i].Distance < a.Nearby[j].Distance
	})
	if len(a.Nearby) > opts.NearbyLimit {
		a.Nearby = a.Nearby[:opts.NearbyLimit]
	}

	a.Summary = summarize(a)
	return a, nil
}

func summarize(a *Analysis) Summary {
	var s Summary
	for _, tr := range a.Tiers {
		if tr.Total <= 0 {
			continue
		}
		s.HasAnyFrontage = true
		switch tr.Tier.Confidence {
		case ConfidenceHigh:
			s.HasHighConfidenceFrontage = true
		case ConfidenceMedium:
			s.HasMediumConfidenceFrontage = true
		case ConfidenceLow:
			s.HasLowConfidenceFrontage = true
		}
	}

	for _, nr := range a.Nearby {
		d := nr.Distance
		if s.NearestRoadFt == nil || d < *s.NearestRoadFt {
			v := d
			s.NearestRoadFt = &v
		}
		if nr.Public && (s.NearestPublicRoadFt == nil || d < *s.NearestPublicRoadFt) {
			v := d
			s.NearestPublicRoadFt = &v
		}
	}
	return s
}
