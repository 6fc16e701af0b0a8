package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/palemoky/philosophy-catalog-api/internal/api/middleware"
	"github.com/palemoky/philosophy-catalog-api/internal/api/rest/handler"
	"github.com/palemoky/philosophy-catalog-api/internal/config"
	"github.com/palemoky/philosophy-catalog-api/internal/database"
	apierrors "github.com/palemoky/philosophy-catalog-api/internal/errors"
)

// SetupRouter sets up the Gin router with all routes
func SetupRouter(cfg *config.Config, store database.Store) *gin.Engine {
	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())

	// Rate limiting middleware
	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		router.Use(rateLimiter.Middleware())
	}

	router.NoRoute(func(c *gin.Context) {
		err := apierrors.ErrNotFound
		c.JSON(err.HTTPStatus, gin.H{"error": err})
	})

	// Health check and statistics
	router.GET("/health", handler.HealthHandler(store))
	router.GET("/stats", handler.StatsHandler(store))

	// Person routes
	personHandler := handler.NewPersonHandler(store)
	people := router.Group("/people")
	{
		people.GET("", personHandler.ListPeople)
		people.POST("", personHandler.CreatePerson)
		people.GET("/:id", personHandler.GetPerson)
		people.PUT("/:id", personHandler.UpdatePerson)
		people.DELETE("/:id", personHandler.DeletePerson)
		people.GET("/:id/schools", personHandler.ListPersonSchools)
		people.POST("/:id/schools/:school_id", personHandler.LinkPersonSchool)
		people.DELETE("/:id/schools/:school_id", personHandler.UnlinkPersonSchool)
		people.GET("/:id/works", personHandler.ListPersonWorks)
		people.GET("/:id/quotations", personHandler.ListPersonQuotations)
	}

	// School routes
	schoolHandler := handler.NewSchoolHandler(store)
	schools := router.Group("/schools")
	{
		schools.GET("", schoolHandler.ListSchools)
		schools.POST("", schoolHandler.CreateSchool)
		schools.GET("/:id", schoolHandler.GetSchool)
		schools.PUT("/:id", schoolHandler.UpdateSchool)
		schools.DELETE("/:id", schoolHandler.DeleteSchool)
		schools.GET("/:id/people", schoolHandler.ListSchoolPeople)
	}

	// Work routes
	workHandler := handler.NewWorkHandler(store)
	works := router.Group("/works")
	{
		works.GET("", workHandler.ListWorks)
		works.POST("", workHandler.CreateWork)
		works.GET("/:id", workHandler.GetWork)
		works.PUT("/:id", workHandler.UpdateWork)
		works.DELETE("/:id", workHandler.DeleteWork)
	}

	// Quotation routes
	quotationHandler := handler.NewQuotationHandler(store)
	quotations := router.Group("/quotations")
	{
		quotations.GET("", quotationHandler.ListQuotations)
		quotations.POST("", quotationHandler.CreateQuotation)
		quotations.GET("/random", quotationHandler.RandomQuotations)
		quotations.GET("/:id", quotationHandler.GetQuotation)
		quotations.PUT("/:id", quotationHandler.UpdateQuotation)
		quotations.DELETE("/:id", quotationHandler.DeleteQuotation)
	}

	return router
}
