package server

import (
	"math"

	"github.com/parcelworks/frontage-api/internal/dataset"
	"github.com/parcelworks/frontage-api/internal/frontage"
)

// Road is one frontage segment as it appears on the wire.
type Road struct {
	StreetName string  `json:"street_name"`
	FrontageFt float64 `json:"frontage_ft"`
	RoadType   string  `json:"road_type"`
	CFCC       string  `json:"cfcc,omitempty"`
}

// FrontageResult is the /calculate-frontage success payload, also
// emitted by the lookup CLI command.
type FrontageResult struct {
	ParcelID        string  `json:"parcel_id"`
	NormalizedID    string  `json:"normalized_id"`
	Address         string  `json:"address"`
	TotalFrontageFt float64 `json:"total_frontage_ft"`
	RoadCount       int     `json:"road_count"`
	Roads           []Road  `json:"roads"`
	ToleranceFt     float64 `json:"tolerance_ft"`
	IncludePrivate  bool    `json:"include_private"`
}

// TierResult is one confidence tier of an analysis payload.
type TierResult struct {
	Description     string  `json:"description"`
	Confidence      string  `json:"confidence"`
	TotalFrontageFt float64 `json:"total_frontage_ft"`
	RoadCount       int     `json:"road_count"`
	Roads           []Road  `json:"roads"`
}

// NearbyRoad is one entry of the nearby-roads inventory.
type NearbyRoad struct {
	StreetName string  `json:"street_name"`
	DistanceFt float64 `json:"distance_ft"`
	RoadType   string  `json:"road_type"`
	CFCC       string  `json:"cfcc,omitempty"`
	Public     bool    `json:"public"`
}

// LLMContext is the analysis digest for automated callers.
type LLMContext struct {
	HasHighConfidenceFrontage   bool     `json:"has_high_confidence_frontage"`
	HasMediumConfidenceFrontage bool     `json:"has_medium_confidence_frontage"`
	HasLowConfidenceFrontage    bool     `json:"has_low_confidence_frontage"`
	HasAnyFrontage              bool     `json:"has_any_frontage"`
	NearestPublicRoadFt         *float64 `json:"nearest_public_road_ft"`
	NearestRoadFt               *float64 `json:"nearest_road_ft"`
}

// AnalyzeResult is the /analyze-parcel payload, also emitted by the
// analyze CLI command.
type AnalyzeResult struct {
	ParcelID         string       `json:"parcel_id"`
	NormalizedID     string       `json:"normalized_id"`
	Address          string       `json:"address"`
	ParcelAreaSqFt   float64      `json:"parcel_area_sqft"`
	ParcelBounds     [4]float64   `json:"parcel_bounds"`
	Strict           TierResult   `json:"strict_analysis"`
	Moderate         TierResult   `json:"moderate_analysis"`
	PermissivePublic TierResult   `json:"permissive_public_analysis"`
	PermissiveAll    TierResult   `json:"permissive_all_analysis"`
	NearbyRoads      []NearbyRoad `json:"nearby_roads"`
	LLMContext       LLMContext   `json:"llm_context"`
}

// errorResponse is every non-200 body.
type errorResponse struct {
	Error        string `json:"error"`
	ParcelID     string `json:"parcel_id,omitempty"`
	NormalizedID string `json:"normalized_id,omitempty"`
}

// healthResponse is the /health body.
type healthResponse struct {
	Status        string `json:"status"`
	ParcelsLoaded int    `json:"parcels_loaded"`
	StreetsLoaded int    `json:"streets_loaded"`
	ParcelsCRS    string `json:"parcels_crs,omitempty"`
	StreetsCRS    string `json:"streets_crs,omitempty"`
}

// sampleParcel is one /sample-parcels entry.
type sampleParcel struct {
	ParcelID        string  `json:"parcel_id"`
	Address         string  `json:"address"`
	TotalFrontageFt float64 `json:"total_frontage_ft"`
	RoadCount       int     `json:"road_count"`
}

// sampleResponse is the /sample-parcels body.
type sampleResponse struct {
	Count   int            `json:"count"`
	Parcels []sampleParcel `json:"parcels"`
}

// BuildFrontage resolves a parcel's frontage and shapes it for the
// wire. Display rounding to 2 decimals happens here and nowhere
// deeper.
func BuildFrontage(rawID string, p *dataset.Parcel, streets []dataset.Street, tolerance float64, includePrivate bool) (*FrontageResult, error) {
	segments, total, err := frontage.Resolve(p.Geometry, streets, tolerance, includePrivate)
	if err != nil {
		return nil, err
	}
	return &FrontageResult{
		ParcelID:        rawID,
		NormalizedID:    p.NormID,
		Address:         p.Address(),
		TotalFrontageFt: round2(total),
		RoadCount:       len(segments),
		Roads:           roads(segments),
		ToleranceFt:     tolerance,
		IncludePrivate:  includePrivate,
	}, nil
}

// BuildAnalysis runs the multi-tier analysis and shapes it for the
// wire.
func BuildAnalysis(rawID string, p *dataset.Parcel, streets []dataset.Street, opts frontage.AnalyzeOptions) (*AnalyzeResult, error) {
	// The four named payload sections require the default tier set.
	opts.Tiers = frontage.DefaultTiers
	a, err := frontage.Analyze(p.Geometry, streets, opts)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]TierResult, len(a.Tiers))
	for _, tr := range a.Tiers {
		byName[tr.Tier.Name] = TierResult{
			Description:     tr.Tier.Description,
			Confidence:      tr.Tier.Confidence,
			TotalFrontageFt: round2(tr.Total),
			RoadCount:       len(tr.Segments),
			Roads:           roads(tr.Segments),
		}
	}

	nearby := make([]NearbyRoad, 0, len(a.Nearby))
	for _, nr := range a.Nearby {
		nearby = append(nearby, NearbyRoad{
			StreetName: nr.Name,
			DistanceFt: round2(nr.Distance),
			RoadType:   nr.RoadClass,
			CFCC:       nr.Code,
			Public:     nr.Public,
		})
	}

	return &AnalyzeResult{
		ParcelID:         rawID,
		NormalizedID:     p.NormID,
		Address:          p.Address(),
		ParcelAreaSqFt:   round2(a.AreaSqFt),
		ParcelBounds:     a.Bounds,
		Strict:           byName["strict"],
		Moderate:         byName["moderate"],
		PermissivePublic: byName["permissive_public"],
		PermissiveAll:    byName["permissive_all"],
		NearbyRoads:      nearby,
		LLMContext: LLMContext{
			HasHighConfidenceFrontage:   a.Summary.HasHighConfidenceFrontage,
			HasMediumConfidenceFrontage: a.Summary.HasMediumConfidenceFrontage,
			HasLowConfidenceFrontage:    a.Summary.HasLowConfidenceFrontage,
			HasAnyFrontage:              a.Summary.HasAnyFrontage,
			NearestPublicRoadFt:         roundPtr(a.Summary.NearestPublicRoadFt),
			NearestRoadFt:               roundPtr(a.Summary.NearestRoadFt),
		},
	}, nil
}

func roads(segments []frontage.Segment) []Road {
	out := make([]Road, 0, len(segments))
	for _, s := range segments {
		out = append(out, Road{
			StreetName: s.Name,
			FrontageFt: round2(s.Length),
			RoadType:   s.RoadClass,
			CFCC:       s.Code,
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v)
	return &r
}
