package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/stwalsh4118/landledger/internal/errors"
	"github.com/stwalsh4118/landledger/internal/middleware"
	"github.com/stwalsh4118/landledger/internal/models"
	"github.com/stwalsh4118/landledger/internal/portfolio"
	"github.com/stwalsh4118/landledger/internal/services"
)

// ParcelHandler handles parcel-related HTTP requests.
type ParcelHandler struct {
	service services.ParcelService
}

// NewParcelHandler creates a new ParcelHandler instance.
func NewParcelHandler(service services.ParcelService) *ParcelHandler {
	return &ParcelHandler{
		service: service,
	}
}

// StageRequest is the body of the stage endpoint.
type StageRequest struct {
	Direction string `json:"direction" binding:"required,oneof=next previous"`
}

// parcelInput holds the figures of an incoming record that must not be negative.
type parcelInput struct {
	PurchasePrice float64         `binding:"gte=0"`
	SalePrice     float64         `binding:"gte=0"`
	LengthM       float64         `binding:"gte=0"`
	WidthM        float64         `binding:"gte=0"`
	Investors     []investorInput `binding:"dive"`
}

type investorInput struct {
	Principal    float64 `binding:"gte=0"`
	InterestRate float64 `binding:"gte=0"`
	ProfitShare  float64 `binding:"gte=0"`
}

// ParcelData represents a parcel in the API response.
type ParcelData struct {
	ID         int64                `json:"id"`
	Location   string               `json:"location"`
	DealStage  string               `json:"deal_stage_label"`
	AreaM2     float64              `json:"area_m2"`
	Record     models.Parcel        `json:"record"`
	Warnings   []portfolio.Warning  `json:"warnings"`
	Assessment portfolio.Assessment `json:"assessment"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// ParcelResponse represents the response for single-parcel endpoints.
type ParcelResponse struct {
	Parcel ParcelData `json:"parcel"`
}

// ParcelListResponse represents the response for the list endpoint.
type ParcelListResponse struct {
	Parcels []ParcelData `json:"parcels"`
	Count   int          `json:"count"`
}

func mapEntryToDTO(entry services.ParcelEntry) ParcelData {
	warnings := entry.Warnings
	if warnings == nil {
		warnings = []portfolio.Warning{}
	}
	return ParcelData{
		ID:         entry.ID,
		Location:   entry.Parcel.Location,
		DealStage:  entry.Parcel.DealStage.Label(),
		AreaM2:     entry.Parcel.Area(),
		Record:     entry.Parcel,
		Warnings:   warnings,
		Assessment: entry.Assessment,
		CreatedAt:  entry.CreatedAt,
		UpdatedAt:  entry.UpdatedAt,
	}
}

// List handles GET /api/v1/parcels.
func (h *ParcelHandler) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list parcels", err)
		return
	}

	parcels := make([]ParcelData, 0, len(entries))
	for _, e := range entries {
		parcels = append(parcels, mapEntryToDTO(e))
	}

	c.JSON(http.StatusOK, ParcelListResponse{
		Parcels: parcels,
		Count:   len(parcels),
	})
}

// Get handles GET /api/v1/parcels/:location.
func (h *ParcelHandler) Get(c *gin.Context) {
	entry, err := h.service.Get(c.Request.Context(), c.Param("location"))
	if err != nil {
		respondServiceError(c, err, "Failed to load parcel")
		return
	}
	c.JSON(http.StatusOK, ParcelResponse{Parcel: mapEntryToDTO(*entry)})
}

// Create handles POST /api/v1/parcels.
func (h *ParcelHandler) Create(c *gin.Context) {
	record, ok := bindRecord(c)
	if !ok {
		return
	}

	entry, err := h.service.Create(c.Request.Context(), record)
	if err != nil {
		respondServiceError(c, err, "Failed to create parcel")
		return
	}
	c.JSON(http.StatusCreated, ParcelResponse{Parcel: mapEntryToDTO(*entry)})
}

// Update handles PUT /api/v1/parcels/:location.
func (h *ParcelHandler) Update(c *gin.Context) {
	record, ok := bindRecord(c)
	if !ok {
		return
	}

	entry, err := h.service.Update(c.Request.Context(), c.Param("location"), record)
	if err != nil {
		respondServiceError(c, err, "Failed to update parcel")
		return
	}
	c.JSON(http.StatusOK, ParcelResponse{Parcel: mapEntryToDTO(*entry)})
}

// Delete handles DELETE /api/v1/parcels/:location.
func (h *ParcelHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("location")); err != nil {
		respondServiceError(c, err, "Failed to delete parcel")
		return
	}
	c.Status(http.StatusNoContent)
}

// Stage handles POST /api/v1/parcels/:location/stage.
func (h *ParcelHandler) Stage(c *gin.Context) {
	var req StageRequest
	if !bindJSON(c, &req) {
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Processing stage request", map[string]interface{}{
			"location":  c.Param("location"),
			"direction": req.Direction,
		})
	}

	entry, err := h.service.StepStage(c.Request.Context(), c.Param("location"), req.Direction)
	if err != nil {
		respondServiceError(c, err, "Failed to change deal stage")
		return
	}
	c.JSON(http.StatusOK, ParcelResponse{Parcel: mapEntryToDTO(*entry)})
}

// bindRecord decodes a raw parcel record and rejects negative figures.
func bindRecord(c *gin.Context) (models.Record, bool) {
	var record models.Record
	if err := c.ShouldBindJSON(&record); err != nil {
		apierrors.BadRequest(c, "Request body must be a JSON object", nil)
		return nil, false
	}

	p := models.NormalizeParcel(record)
	input := parcelInput{
		PurchasePrice: p.PurchasePrice.Primary,
		SalePrice:     p.SalePrice.Primary,
		LengthM:       p.LengthM,
		WidthM:        p.WidthM,
	}
	for _, inv := range p.Investors {
		input.Investors = append(input.Investors, investorInput{
			Principal:    inv.Principal.Primary,
			InterestRate: inv.InterestRate,
			ProfitShare:  inv.ProfitShare,
		})
	}
	if err := binding.Validator.ValidateStruct(&input); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return nil, false
		}
		apierrors.BadRequest(c, err.Error(), nil)
		return nil, false
	}
	return record, true
}

// bindJSON binds and validates a request body, writing the error response on failure.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return false
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return false
	}
	return true
}

// respondServiceError maps service-level errors to HTTP responses.
func respondServiceError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, services.ErrParcelNotFound):
		apierrors.NotFound(c, "Parcel not found")
	case errors.Is(err, services.ErrDuplicateLocation):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidParcel),
		errors.Is(err, services.ErrInvalidParameters):
		apierrors.BadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrStageBoundary):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalServerError(c, message, err)
	}
}
