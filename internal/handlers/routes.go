package handlers

import "github.com/gin-gonic/gin"

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Health    *HealthHandler
	Parcel    *ParcelHandler
	Portfolio *PortfolioHandler
	Valuation *ValuationHandler
}

// RegisterRoutes mounts the health checks at the root and everything else under /api/v1.
func RegisterRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", h.Health.Health)
	router.GET("/health/ready", h.Health.Ready)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/info", h.Health.Info)
		v1.GET("/fx", h.Portfolio.ExchangeRate)

		parcels := v1.Group("/parcels")
		{
			parcels.GET("", h.Parcel.List)
			parcels.POST("", h.Parcel.Create)
			parcels.GET("/:location", h.Parcel.Get)
			parcels.PUT("/:location", h.Parcel.Update)
			parcels.DELETE("/:location", h.Parcel.Delete)
			parcels.POST("/:location/stage", h.Parcel.Stage)
		}

		p := v1.Group("/portfolio")
		{
			p.GET("/summary", h.Portfolio.Summary)
			p.GET("/payments", h.Portfolio.Payments)
			p.GET("/rollup", h.Portfolio.Rollup)
			p.GET("/strategies", h.Portfolio.Strategies)
			p.GET("/report", h.Portfolio.Report)
		}

		valuations := v1.Group("/valuations")
		{
			valuations.POST("/active", h.Valuation.Active)
			valuations.POST("/sold", h.Valuation.Sold)
			valuations.POST("/allocation", h.Valuation.Allocation)
			valuations.POST("/assessment", h.Valuation.Assessment)
		}
	}
}
