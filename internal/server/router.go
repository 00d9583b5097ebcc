package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/nelc/HCx-sub001/internal/handlers"
	"github.com/nelc/HCx-sub001/internal/middleware"
)

type RouterConfig struct {
	ServiceName           string
	AllowedOrigins        []string
	AuthMiddleware        *middleware.AuthMiddleware
	AssessmentHandler     *handlers.AssessmentHandler
	RecommendationHandler *handlers.RecommendationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "hcx"
	}
	router.Use(otelgin.Middleware(serviceName))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	// Assessment scoring
	api.POST("/assignments/:id/submit", cfg.AssessmentHandler.SubmitAssignment)
	api.GET("/assignments/:id/results", cfg.AssessmentHandler.GetResults)
	// Recommendations
	api.POST("/users/:id/recommendations", cfg.RecommendationHandler.GetRecommendations)
	api.PATCH("/users/:id/recommendations/:course_id", cfg.RecommendationHandler.UpdateStatus)

	return router
}
