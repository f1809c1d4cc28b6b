package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/foodiepro/api/internal/dataset"
	"github.com/foodiepro/api/internal/middleware"
	"github.com/foodiepro/api/internal/ranking"
	"github.com/foodiepro/api/internal/review"
	"github.com/foodiepro/api/internal/search"
	"github.com/foodiepro/api/internal/tracing"
)

// maxFilterLength bounds the query and location filters. Longer strings
// are almost certainly junk and substring matching cost grows with them.
const maxFilterLength = 200

// RecommendHandlers holds dependencies for the recommendation endpoint.
type RecommendHandlers struct {
	store   *dataset.Store
	cfg     ranking.Config
	metrics *ranking.Metrics
	logger  *slog.Logger
}

// NewRecommendHandlers creates a new RecommendHandlers instance.
// metrics may be nil, in which case no ranking metrics are recorded.
func NewRecommendHandlers(store *dataset.Store, cfg ranking.Config, metrics *ranking.Metrics, logger *slog.Logger) *RecommendHandlers {
	return &RecommendHandlers{
		store:   store,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// RecommendRequest is the request body for POST /recommend.
// Both filters are optional; an empty filter matches everything.
type RecommendRequest struct {
	Query    string `json:"query"`
	Location string `json:"location"`
	// Limit caps the number of results. 0 means no cap.
	Limit int `json:"limit"`
}

// RecommendResponse is the response body for POST /recommend.
type RecommendResponse struct {
	Results []RecommendResult `json:"results"`
	Count   int               `json:"count"`
}

// RecommendResult is a single ranked restaurant.
type RecommendResult struct {
	PlaceID      string             `json:"place_id"`
	Name         string             `json:"name"`
	OverallScore float64            `json:"overall_score"`
	AspectScores map[string]float64 `json:"aspect_scores"`
	RatingScore  float64            `json:"rating_score"`
	ReviewCount  int                `json:"review_count"`
	PhotoURL     string             `json:"photo_url"`
	Website      string             `json:"website"`
}

// Recommend handles POST /recommend. It filters the restaurant dataset by
// the request's query and location, ranks the matches by review sentiment
// and ratings, and returns them ordered best first.
//
// Returns 503 with data_unavailable when no dataset snapshot has been
// loaded yet.
func (h *RecommendHandlers) Recommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	req.Location = strings.TrimSpace(req.Location)

	if len(req.Query) > maxFilterLength || len(req.Location) > maxFilterLength {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "query and location must be at most 200 characters")
		return
	}
	if req.Limit < 0 {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "limit must be >= 0")
		return
	}

	snap := h.store.Current()
	if snap == nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeDataUnavailable)
		WriteError(w, ctx, http.StatusServiceUnavailable, ErrCodeDataUnavailable, "Restaurant data not loaded")
		return
	}

	start := time.Now()

	_, endSpan := tracing.StartSpan(r.Context(), "rank_places")
	candidates := search.MatchPlaces(snap.Places, req.Query, req.Location)
	ranked := ranking.Rank(snap.Places, snap.Reviews, candidates, h.cfg)
	endSpan(nil)

	if h.metrics != nil {
		h.metrics.ObserveRank(time.Since(start).Seconds(), len(candidates), len(ranked))
	}

	if req.Limit > 0 && len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}

	meta := make(map[string]struct {
		photoURL string
		website  string
	}, len(snap.Places))
	for _, p := range snap.Places {
		if _, exists := meta[p.PlaceID]; !exists {
			meta[p.PlaceID] = struct {
				photoURL string
				website  string
			}{p.PhotoURL, p.Website}
		}
	}

	results := make([]RecommendResult, 0, len(ranked))
	for _, rp := range ranked {
		m := meta[rp.PlaceID]
		aspects := make(map[string]float64, len(review.Aspects()))
		reviewCount := 0
		for i, a := range review.Aspects() {
			aspects[strings.ToLower(a.String())] = rp.Record.Aspects[i].Score
			reviewCount += rp.Record.Aspects[i].Count
		}
		results = append(results, RecommendResult{
			PlaceID:      rp.PlaceID,
			Name:         orNA(rp.Name),
			OverallScore: rp.Record.Overall,
			AspectScores: aspects,
			RatingScore:  rp.Record.Rating.Score,
			ReviewCount:  reviewCount,
			PhotoURL:     orNA(m.photoURL),
			Website:      orNA(m.website),
		})
	}

	h.logger.InfoContext(r.Context(), "recommendation served",
		"query", req.Query,
		"location", req.Location,
		"candidates", len(candidates),
		"results", len(results),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	writeJSON(w, r, http.StatusOK, RecommendResponse{
		Results: results,
		Count:   len(results),
	})
}

// orNA substitutes "N/A" for missing metadata values, the display name
// included, so clients always get a displayable string.
func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}
