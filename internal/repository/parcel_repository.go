package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stwalsh4118/landledger/internal/database"
	"github.com/stwalsh4118/landledger/internal/models"
)

// ErrDuplicateLocation is returned when a write would give two parcels the
// same location.
var ErrDuplicateLocation = errors.New("a parcel with this location already exists")

const uniqueViolation = "23505"

// ParcelRow is a stored parcel record with its bookkeeping columns.
type ParcelRow struct {
	ID        int64
	Location  string
	Record    models.Record
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ParcelRepository defines the interface for parcel data access operations.
type ParcelRepository interface {
	// List returns every parcel in insertion order.
	List(ctx context.Context) ([]ParcelRow, error)

	// FindByLocation returns the parcel stored under location.
	// Returns nil, nil if no parcel is found (not an error).
	FindByLocation(ctx context.Context, location string) (*ParcelRow, error)

	// Create stores a new parcel. Returns ErrDuplicateLocation when the
	// location is taken.
	Create(ctx context.Context, location string, record models.Record) (*ParcelRow, error)

	// Update replaces the record stored under location and moves it to
	// newLocation. Returns nil, nil if no parcel is stored under location.
	Update(ctx context.Context, location, newLocation string, record models.Record) (*ParcelRow, error)

	// Delete removes the parcel stored under location and reports whether
	// one existed.
	Delete(ctx context.Context, location string) (bool, error)
}

// parcelRepository is the concrete implementation of ParcelRepository.
type parcelRepository struct {
	db *database.Database
}

// NewParcelRepository creates a new instance of ParcelRepository.
func NewParcelRepository(db *database.Database) ParcelRepository {
	return &parcelRepository{
		db: db,
	}
}

const selectColumns = `id, location, record, created_at, updated_at`

func scanRow(row pgx.Row) (*ParcelRow, error) {
	var p ParcelRow
	var raw []byte
	if err := row.Scan(&p.ID, &p.Location, &raw, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &p.Record); err != nil {
		return nil, fmt.Errorf("failed to decode record of parcel %q: %w", p.Location, err)
	}
	return &p, nil
}

func (r *parcelRepository) List(ctx context.Context) ([]ParcelRow, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+selectColumns+` FROM parcels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}
	defer rows.Close()

	parcels := []ParcelRow{}
	for rows.Next() {
		p, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan parcel row: %w", err)
		}
		parcels = append(parcels, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parcel rows: %w", err)
	}
	return parcels, nil
}

func (r *parcelRepository) FindByLocation(ctx context.Context, location string) (*ParcelRow, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM parcels WHERE location = $1`, location)
	p, err := scanRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query parcel %q: %w", location, err)
	}
	return p, nil
}

func (r *parcelRepository) Create(ctx context.Context, location string, record models.Record) (*ParcelRow, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode parcel %q: %w", location, err)
	}

	row := r.db.Pool.QueryRow(ctx,
		`INSERT INTO parcels (location, record) VALUES ($1, $2) RETURNING `+selectColumns,
		location, raw,
	)
	p, err := scanRow(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateLocation
		}
		return nil, fmt.Errorf("failed to insert parcel %q: %w", location, err)
	}
	return p, nil
}

func (r *parcelRepository) Update(ctx context.Context, location, newLocation string, record models.Record) (*ParcelRow, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode parcel %q: %w", newLocation, err)
	}

	row := r.db.Pool.QueryRow(ctx,
		`UPDATE parcels SET location = $2, record = $3, updated_at = now()
		 WHERE location = $1
		 RETURNING `+selectColumns,
		location, newLocation, raw,
	)
	p, err := scanRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateLocation
		}
		return nil, fmt.Errorf("failed to update parcel %q: %w", location, err)
	}
	return p, nil
}

func (r *parcelRepository) Delete(ctx context.Context, location string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM parcels WHERE location = $1`, location)
	if err != nil {
		return false, fmt.Errorf("failed to delete parcel %q: %w", location, err)
	}
	return tag.RowsAffected() > 0, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
