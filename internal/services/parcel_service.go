package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stwalsh4118/landledger/internal/logger"
	"github.com/stwalsh4118/landledger/internal/models"
	"github.com/stwalsh4118/landledger/internal/portfolio"
	"github.com/stwalsh4118/landledger/internal/repository"
)

// Stage step directions accepted by StepStage.
const (
	DirectionNext     = "next"
	DirectionPrevious = "previous"
)

// Service-level errors
var (
	ErrParcelNotFound    = errors.New("parcel not found")
	ErrDuplicateLocation = errors.New("a parcel with this location already exists")
	ErrInvalidParcel     = errors.New("invalid parcel")
	ErrStageBoundary     = errors.New("deal stage cannot move further in that direction")
	ErrInvalidParameters = errors.New("invalid parameters")
)

// ParcelEntry is a stored parcel in typed form together with its data-entry
// warnings and purchase assessment.
type ParcelEntry struct {
	ID         int64
	Parcel     models.Parcel
	Record     models.Record
	Warnings   []portfolio.Warning
	Assessment portfolio.Assessment
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ParcelService defines the interface for parcel business logic operations.
type ParcelService interface {
	// List returns every parcel in insertion order.
	List(ctx context.Context) ([]ParcelEntry, error)

	// Get returns the parcel stored under location.
	// Returns ErrParcelNotFound if there is none.
	Get(ctx context.Context, location string) (*ParcelEntry, error)

	// Create stores a new parcel from a raw record.
	// Returns ErrInvalidParcel for a blank location or a malformed boundary and
	// ErrDuplicateLocation when the location is taken.
	Create(ctx context.Context, record models.Record) (*ParcelEntry, error)

	// Update replaces the record stored under location. The record may rename the parcel.
	Update(ctx context.Context, location string, record models.Record) (*ParcelEntry, error)

	// Delete removes the parcel stored under location.
	Delete(ctx context.Context, location string) error

	// StepStage moves the parcel one deal stage forward ("next") or back ("previous").
	// Returns ErrStageBoundary when already at the end of the pipeline.
	StepStage(ctx context.Context, location, direction string) (*ParcelEntry, error)
}

// parcelService is the concrete implementation of ParcelService.
type parcelService struct {
	repo  repository.ParcelRepository
	rules portfolio.AssessmentRules
	log   *logger.Logger
}

// NewParcelService creates a new instance of ParcelService. Every returned
// entry is assessed with rules.
func NewParcelService(repo repository.ParcelRepository, rules portfolio.AssessmentRules, log *logger.Logger) ParcelService {
	return &parcelService{
		repo:  repo,
		rules: rules,
		log:   log.WithComponent("parcel_service"),
	}
}

func (s *parcelService) newEntry(row repository.ParcelRow) ParcelEntry {
	p := models.NormalizeParcel(row.Record)
	return ParcelEntry{
		ID:         row.ID,
		Parcel:     p,
		Record:     row.Record,
		Warnings:   portfolio.Warnings(p),
		Assessment: portfolio.Assess(p, s.rules),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

// prepare canonicalises an incoming record and checks what cannot be stored.
func prepare(record models.Record) (models.Record, string, error) {
	if record == nil {
		return nil, "", fmt.Errorf("%w: record is empty", ErrInvalidParcel)
	}
	canonical := record.Canonical()

	location := canonical.String("location")
	if location == "" {
		return nil, "", fmt.Errorf("%w: location is required", ErrInvalidParcel)
	}
	canonical["location"] = location

	if raw, ok := canonical.Get("boundary"); ok {
		b, err := models.ParseBoundary(raw)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidParcel, err)
		}
		if len(b.Points) > 0 && !b.Valid() {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidParcel, models.ErrInvalidBoundary)
		}
	}

	if label := canonical.String("deal_stage"); label != "" && models.ParseDealStage(label) == models.StageUnknown {
		return nil, "", fmt.Errorf("%w: unknown deal stage %q", ErrInvalidParcel, label)
	}
	return canonical, location, nil
}

func (s *parcelService) List(ctx context.Context) ([]ParcelEntry, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("Failed to list parcels", err, nil)
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}

	entries := make([]ParcelEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, s.newEntry(row))
	}

	s.log.Debug("Parcels listed", map[string]interface{}{
		"count": len(entries),
	})
	return entries, nil
}

func (s *parcelService) Get(ctx context.Context, location string) (*ParcelEntry, error) {
	row, err := s.find(ctx, location)
	if err != nil {
		return nil, err
	}
	entry := s.newEntry(*row)
	return &entry, nil
}

// find loads a row and turns the repository's nil, nil into ErrParcelNotFound.
func (s *parcelService) find(ctx context.Context, location string) (*repository.ParcelRow, error) {
	row, err := s.repo.FindByLocation(ctx, location)
	if err != nil {
		s.log.Error("Failed to load parcel", err, map[string]interface{}{
			"location": location,
		})
		return nil, fmt.Errorf("failed to load parcel: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("%w: %s", ErrParcelNotFound, location)
	}
	return row, nil
}

func (s *parcelService) Create(ctx context.Context, record models.Record) (*ParcelEntry, error) {
	canonical, location, err := prepare(record)
	if err != nil {
		s.log.Warn("Rejected parcel", map[string]interface{}{
			"reason": err.Error(),
		})
		return nil, err
	}

	row, err := s.repo.Create(ctx, location, canonical)
	if err != nil {
		return nil, s.writeError("create", location, err)
	}

	entry := s.newEntry(*row)
	s.log.Info("Parcel created", map[string]interface{}{
		"location":   location,
		"deal_stage": entry.Parcel.DealStage,
		"investors":  len(entry.Parcel.Investors),
	})
	s.logWarnings(entry.Warnings)
	return &entry, nil
}

func (s *parcelService) Update(ctx context.Context, location string, record models.Record) (*ParcelEntry, error) {
	canonical, newLocation, err := prepare(record)
	if err != nil {
		s.log.Warn("Rejected parcel update", map[string]interface{}{
			"location": location,
			"reason":   err.Error(),
		})
		return nil, err
	}

	row, err := s.repo.Update(ctx, location, newLocation, canonical)
	if err != nil {
		return nil, s.writeError("update", location, err)
	}
	if row == nil {
		return nil, fmt.Errorf("%w: %s", ErrParcelNotFound, location)
	}

	entry := s.newEntry(*row)
	s.log.Info("Parcel updated", map[string]interface{}{
		"location":     location,
		"new_location": newLocation,
	})
	s.logWarnings(entry.Warnings)
	return &entry, nil
}

func (s *parcelService) Delete(ctx context.Context, location string) error {
	deleted, err := s.repo.Delete(ctx, location)
	if err != nil {
		s.log.Error("Failed to delete parcel", err, map[string]interface{}{
			"location": location,
		})
		return fmt.Errorf("failed to delete parcel: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrParcelNotFound, location)
	}

	s.log.Info("Parcel deleted", map[string]interface{}{
		"location": location,
	})
	return nil
}

func (s *parcelService) StepStage(ctx context.Context, location, direction string) (*ParcelEntry, error) {
	step := models.DealStage.Next
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case DirectionNext:
	case DirectionPrevious:
		step = models.DealStage.Previous
	default:
		return nil, fmt.Errorf("%w: direction must be %q or %q, got %q", ErrInvalidParameters, DirectionNext, DirectionPrevious, direction)
	}

	row, err := s.find(ctx, location)
	if err != nil {
		return nil, err
	}

	current := models.NormalizeParcel(row.Record).DealStage
	target, ok := step(current)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %s", ErrStageBoundary, location, current.Label())
	}

	record := row.Record.Canonical()
	record["deal_stage"] = string(target)

	updated, err := s.repo.Update(ctx, location, location, record)
	if err != nil {
		return nil, s.writeError("update", location, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: %s", ErrParcelNotFound, location)
	}

	s.log.Info("Deal stage changed", map[string]interface{}{
		"location": location,
		"from":     current,
		"to":       target,
	})
	entry := s.newEntry(*updated)
	return &entry, nil
}

func (s *parcelService) writeError(op, location string, err error) error {
	if errors.Is(err, repository.ErrDuplicateLocation) {
		s.log.Warn("Duplicate parcel location", map[string]interface{}{
			"location":  location,
			"operation": op,
		})
		return fmt.Errorf("%w: %s", ErrDuplicateLocation, location)
	}
	s.log.Error("Failed to store parcel", err, map[string]interface{}{
		"location":  location,
		"operation": op,
	})
	return fmt.Errorf("failed to %s parcel: %w", op, err)
}

func (s *parcelService) logWarnings(warnings []portfolio.Warning) {
	for _, w := range warnings {
		s.log.Warn("Parcel data warning", map[string]interface{}{
			"location": w.Location,
			"code":     w.Code,
			"message":  w.Message,
		})
	}
}
