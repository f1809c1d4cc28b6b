package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/foodiepro/api/internal/place"
	"github.com/foodiepro/api/internal/review"
)

// Required columns per table. Column matching is exact; the review
// aspect columns are capitalized in the extraction pipeline's output.
var (
	requiredPlaceColumns  = []string{"place_id", "restaurant_name", "place_name", "street", "ward", "district1", "district2"}
	requiredReviewColumns = []string{"place_id", "Food", "Place", "Price", "rating"}
)

// Optional place columns; absence logs a warning instead of failing
// since they only feed presentation.
var optionalPlaceColumns = []string{"photo_url", "website"}

// header maps column names to their index in a CSV record.
type header map[string]int

// get returns the trimmed value of the named column, or "" when the
// column is absent or the record is short.
func (h header) get(record []string, column string) string {
	idx, ok := h[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// readHeader parses the header row and verifies required columns.
func readHeader(r *csv.Reader, table string, required []string) (header, error) {
	row, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", table, err)
	}

	h := make(header, len(row))
	for i, name := range row {
		h[strings.TrimSpace(name)] = i
	}
	for _, column := range required {
		if _, ok := h[column]; !ok {
			return nil, &MissingColumnError{Table: table, Column: column}
		}
	}
	return h, nil
}

// LoadPlacesCSV loads the restaurant metadata table from a CSV file.
// Rows without a place id are skipped and counted in stats.
func LoadPlacesCSV(path string, stats *LoadStats) ([]place.Place, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open places file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	h, err := readHeader(r, "places", requiredPlaceColumns)
	if err != nil {
		return nil, err
	}
	for _, column := range optionalPlaceColumns {
		if _, ok := h[column]; !ok {
			slog.Warn("optional column missing from places table", "column", column, "path", path)
		}
	}

	var places []place.Place
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read places row: %w", err)
		}

		id := h.get(record, "place_id")
		if id == "" {
			if stats != nil {
				stats.RecordSkipped()
			}
			continue
		}

		places = append(places, place.Place{
			PlaceID:        id,
			RestaurantName: h.get(record, "restaurant_name"),
			PlaceName:      h.get(record, "place_name"),
			Street:         h.get(record, "street"),
			Ward:           h.get(record, "ward"),
			District1:      h.get(record, "district1"),
			District2:      h.get(record, "district2"),
			PhotoURL:       h.get(record, "photo_url"),
			Website:        h.get(record, "website"),
		})
		if stats != nil {
			stats.RecordLoaded()
		}
	}
	return places, nil
}

// LoadReviewsCSV loads the aspect-extracted reviews table from a CSV
// file. Rows without a place id are skipped and counted in stats;
// malformed aspect or rating content is kept as-is and excluded later by
// the scorer.
func LoadReviewsCSV(path string, stats *LoadStats) ([]review.Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reviews file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	h, err := readHeader(r, "reviews", requiredReviewColumns)
	if err != nil {
		return nil, err
	}

	var reviews []review.Review
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read reviews row: %w", err)
		}

		id := h.get(record, "place_id")
		if id == "" {
			if stats != nil {
				stats.RecordSkipped()
			}
			continue
		}

		reviews = append(reviews, review.Review{
			PlaceID: id,
			Food:    h.get(record, "Food"),
			Place:   h.get(record, "Place"),
			Price:   h.get(record, "Price"),
			Rating:  h.get(record, "rating"),
		})
		if stats != nil {
			stats.RecordLoaded()
		}
	}
	return reviews, nil
}
