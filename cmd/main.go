package main

import (
	"context"
	"os"
	"strings"
	"time"

	redisclient "github.com/nelc/HCx-sub001/internal/clients/redis"
	"github.com/nelc/HCx-sub001/internal/db"
	"github.com/nelc/HCx-sub001/internal/handlers"
	"github.com/nelc/HCx-sub001/internal/logger"
	"github.com/nelc/HCx-sub001/internal/middleware"
	"github.com/nelc/HCx-sub001/internal/observability"
	"github.com/nelc/HCx-sub001/internal/platform/neo4jdb"
	"github.com/nelc/HCx-sub001/internal/recommend"
	"github.com/nelc/HCx-sub001/internal/repos"
	"github.com/nelc/HCx-sub001/internal/server"
	"github.com/nelc/HCx-sub001/internal/services"
	"github.com/nelc/HCx-sub001/internal/utils"
)

func main() {
	mode := os.Getenv("MODE")
	log, err := logger.New(mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Auto migration failed, continuing with existing schema", "error", err)
	}
	gormDB := postgresService.DB()

	assignmentRepo := repos.NewExamAssignmentRepo(gormDB, log)
	questionRepo := repos.NewQuestionRepo(gormDB, log)
	responseRepo := repos.NewResponseRepo(gormDB, log)
	skillRepo := repos.NewSkillRepo(gormDB, log)
	skillResultRepo := repos.NewSkillResultRepo(gormDB, log)
	courseRepo := repos.NewCourseRepo(gormDB, log)
	recordRepo := repos.NewRecommendationRecordRepo(gormDB, log)

	var tokens redisclient.TokenCache
	tokens, err = redisclient.NewTokenCache(log)
	if err != nil {
		log.Warn("Redis unavailable, using in-process token cache", "error", err)
		tokens = redisclient.NewMemoryTokenCache()
	}
	defer tokens.Close()

	var llm services.LLMClient
	llm, err = services.NewLLMClient(log, tokens)
	if err != nil {
		// Enrichment is optional; the numeric pipeline runs without it.
		log.Warn("LLM client disabled", "error", err)
		llm = nil
	}

	graphClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Warn("Graph store unavailable, continuing without graph signal", "error", err)
		graphClient = nil
	}
	if graphClient != nil {
		defer graphClient.Close(ctx)
	}
	graphSvc := services.NewCourseGraphService(log, graphClient)

	scoringCfg, err := recommend.LoadConfig(os.Getenv("SCORING_CONFIG_PATH"))
	if err != nil {
		log.Fatal("Failed to load scoring configuration", "error", err)
	}
	log.Info("Scoring configuration loaded", "default_policy", scoringCfg.DefaultPolicy)

	assessmentSvc := services.NewAssessmentService(
		gormDB, log, assignmentRepo, questionRepo, responseRepo, skillResultRepo,
	)
	recommendationSvc := services.NewRecommendationService(
		gormDB, log, assignmentRepo, skillResultRepo, skillRepo, courseRepo, recordRepo,
		llm, graphSvc, scoringCfg,
	)

	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		log.Fatal("Missing JWT_SECRET_KEY")
	}
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecret)

	assessmentHandler := handlers.NewAssessmentHandler(log, assessmentSvc)
	recommendationHandler := handlers.NewRecommendationHandler(log, recommendationSvc)

	serviceName := utils.GetEnv("SERVICE_NAME", "hcx-recommendation-engine", log)
	shutdownTracing := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: mode,
		Version:     os.Getenv("SERVICE_VERSION"),
	})
	if shutdownTracing != nil {
		defer func() {
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(shCtx)
		}()
	}

	var origins []string
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	router := server.NewRouter(server.RouterConfig{
		ServiceName:           serviceName,
		AllowedOrigins:        origins,
		AuthMiddleware:        authMiddleware,
		AssessmentHandler:     assessmentHandler,
		RecommendationHandler: recommendationHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
