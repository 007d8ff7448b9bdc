package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/parcelworks/frontage-api/internal/dataset"
)

// Sample endpoint bounds: every sampled parcel costs a full street
// scan, so the count stays small.
const (
	defaultSampleLimit = 5
	maxSampleLimit     = 25
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		ParcelsLoaded: s.store.ParcelCount(),
		StreetsLoaded: s.store.StreetCount(),
		ParcelsCRS:    s.store.ParcelsCRS(),
		StreetsCRS:    s.store.StreetsCRS(),
	})
}

func (s *Server) handleCalculateFrontage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParcelID       string   `json:"parcel_id"`
		Tolerance      *float64 `json:"tolerance"`
		IncludePrivate bool     `json:"include_private"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.ParcelID) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "parcel_id required"})
		return
	}

	tolerance := s.cfg.DefaultToleranceFt
	if req.Tolerance != nil {
		tolerance = *req.Tolerance
	}
	if tolerance < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "tolerance must be non-negative"})
		return
	}

	parcel, ok := s.findParcel(w, req.ParcelID)
	if !ok {
		return
	}

	result, err := BuildFrontage(req.ParcelID, parcel, s.store.Streets(), tolerance, req.IncludePrivate)
	if err != nil {
		s.log.Error("frontage resolution failed",
			zap.String("parcel_id", req.ParcelID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "frontage computation failed"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalyzeParcel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParcelID string `json:"parcel_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.ParcelID) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "parcel_id required"})
		return
	}

	parcel, ok := s.findParcel(w, req.ParcelID)
	if !ok {
		return
	}

	result, err := BuildAnalysis(req.ParcelID, parcel, s.store.Streets(), s.analyzeOptions())
	if err != nil {
		s.log.Error("parcel analysis failed",
			zap.String("parcel_id", req.ParcelID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "parcel analysis failed"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSampleParcels returns the first parcels found to have any
// public frontage at the default tolerance. Debug aid for
// smoke-testing a freshly loaded dataset.
func (s *Server) handleSampleParcels(w http.ResponseWriter, r *http.Request) {
	limit := defaultSampleLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}
	if limit > maxSampleLimit {
		limit = maxSampleLimit
	}

	parcels := s.store.Parcels()
	samples := []sampleParcel{}
	for i := range parcels {
		p := &parcels[i]
		result, err := BuildFrontage(p.ID, p, s.store.Streets(), s.cfg.DefaultToleranceFt, false)
		if err != nil || result.TotalFrontageFt <= 0 {
			continue
		}
		samples = append(samples, sampleParcel{
			ParcelID:        p.ID,
			Address:         p.Address(),
			TotalFrontageFt: result.TotalFrontageFt,
			RoadCount:       result.RoadCount,
		})
		if len(samples) >= limit {
			break
		}
	}

	writeJSON(w, http.StatusOK, sampleResponse{Count: len(samples), Parcels: samples})
}

// findParcel resolves the raw identifier to a parcel row, writing the
// not-found response (with both identifiers, to surface normalization
// mismatches upstream) when the lookup misses.
func (s *Server) findParcel(w http.ResponseWriter, rawID string) (*dataset.Parcel, bool) {
	normID := dataset.NormalizeParcelID(rawID)
	parcel, ok := s.store.FindParcel(normID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:        "Parcel not found",
			ParcelID:     rawID,
			NormalizedID: normID,
		})
		return nil, false
	}
	return parcel, true
}
