package dataset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/foodiepro/api/internal/place"
	"github.com/foodiepro/api/internal/review"
	"github.com/foodiepro/api/internal/tracing"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Open opens a Postgres connection pool and verifies connectivity.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// PostgresLoader loads snapshots from Postgres tables written by the
// ingest command.
type PostgresLoader struct {
	db *sql.DB
}

// NewPostgresLoader creates a loader over an open connection pool.
func NewPostgresLoader(db *sql.DB) *PostgresLoader {
	return &PostgresLoader{db: db}
}

// Load reads both tables into a fresh snapshot.
func (l *PostgresLoader) Load(ctx context.Context) (*Snapshot, error) {
	places, err := l.loadPlaces(ctx)
	if err != nil {
		return nil, err
	}
	reviews, err := l.loadReviews(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(places, reviews), nil
}

func (l *PostgresLoader) loadPlaces(ctx context.Context) (_ []place.Place, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "places", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	rows, err := l.db.QueryContext(ctx, `
		SELECT place_id, restaurant_name, place_name, street, ward,
		       district1, district2, photo_url, website
		FROM places
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer rows.Close()

	var places []place.Place
	for rows.Next() {
		var p place.Place
		if err := rows.Scan(&p.PlaceID, &p.RestaurantName, &p.PlaceName, &p.Street,
			&p.Ward, &p.District1, &p.District2, &p.PhotoURL, &p.Website); err != nil {
			return nil, fmt.Errorf("failed to scan place row: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate places: %w", err)
	}
	return places, nil
}

func (l *PostgresLoader) loadReviews(ctx context.Context) (_ []review.Review, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "reviews", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	rows, err := l.db.QueryContext(ctx, `
		SELECT place_id, food, place, price, rating
		FROM reviews
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []review.Review
	for rows.Next() {
		var r review.Review
		if err := rows.Scan(&r.PlaceID, &r.Food, &r.Place, &r.Price, &r.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return reviews, nil
}

// EnsureSchema creates the dataset tables when they do not exist yet.
// Called by the ingest command before writing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS places (
		id              BIGSERIAL PRIMARY KEY,
		place_id        TEXT NOT NULL,
		restaurant_name TEXT NOT NULL DEFAULT '',
		place_name      TEXT NOT NULL DEFAULT '',
		street          TEXT NOT NULL DEFAULT '',
		ward            TEXT NOT NULL DEFAULT '',
		district1       TEXT NOT NULL DEFAULT '',
		district2       TEXT NOT NULL DEFAULT '',
		photo_url       TEXT NOT NULL DEFAULT '',
		website         TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_places_place_id ON places (place_id);

	CREATE TABLE IF NOT EXISTS reviews (
		id       BIGSERIAL PRIMARY KEY,
		place_id TEXT NOT NULL,
		food     TEXT NOT NULL DEFAULT '',
		place    TEXT NOT NULL DEFAULT '',
		price    TEXT NOT NULL DEFAULT '',
		rating   TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_reviews_place_id ON reviews (place_id);`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// InsertPlaces replaces the places table contents inside one
// transaction, so loaders never observe a half-written table.
func InsertPlaces(ctx context.Context, db *sql.DB, places []place.Place) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `TRUNCATE places`); err != nil {
		return fmt.Errorf("failed to truncate places: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO places (place_id, restaurant_name, place_name, street, ward,
		                    district1, district2, photo_url, website)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range places {
		p := &places[i]
		if _, err := stmt.ExecContext(ctx, p.PlaceID, p.RestaurantName, p.PlaceName,
			p.Street, p.Ward, p.District1, p.District2, p.PhotoURL, p.Website); err != nil {
			return fmt.Errorf("failed to insert place %s: %w", p.PlaceID, err)
		}
	}

	return tx.Commit()
}

// InsertReviews replaces the reviews table contents inside one
// transaction.
func InsertReviews(ctx context.Context, db *sql.DB, reviews []review.Review) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `TRUNCATE reviews`); err != nil {
		return fmt.Errorf("failed to truncate reviews: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reviews (place_id, food, place, price, rating)
		VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range reviews {
		r := &reviews[i]
		if _, err := stmt.ExecContext(ctx, r.PlaceID, r.Food, r.Place, r.Price, r.Rating); err != nil {
			return fmt.Errorf("failed to insert review for %s: %w", r.PlaceID, err)
		}
	}

	return tx.Commit()
}
