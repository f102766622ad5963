package api

import (
	"github.com/Conceptual-Machines/reelmate-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/reelmate-api/internal/api/middleware"
	"github.com/Conceptual-Machines/reelmate-api/internal/config"
	"github.com/Conceptual-Machines/reelmate-api/internal/llm"
	"github.com/Conceptual-Machines/reelmate-api/internal/metrics"
	"github.com/Conceptual-Machines/reelmate-api/internal/prompt"
	"github.com/Conceptual-Machines/reelmate-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the long-lived collaborators shared by every request
type Dependencies struct {
	Gateway    llm.Gateway
	Skills     *prompt.SkillBundle
	CloudWatch *metrics.Client // nil outside production
}

func SetupRouter(cfg *config.Config, deps Dependencies, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())
	router.Use(apimiddleware.SentryMiddleware())
	router.Use(apimiddleware.RequestTracking(deps.CloudWatch))
	router.Use(apimiddleware.CORS(cfg))

	builder := prompt.NewPromptBuilder(deps.Skills)
	reviewHandler := handlers.NewReviewHandler(
		services.NewReviewService(deps.Gateway, builder, deps.CloudWatch, cfg.GenerationTTL),
	)
	swipeHandler := handlers.NewSwipeHandler(
		services.NewSwipeService(deps.Gateway, builder, cfg.GenerationTTL),
	)

	agent := handlers.AgentInfo{
		Provider:  deps.Gateway.Name(),
		Model:     deps.Gateway.Model(),
		HasAPIKey: cfg.HasAgentCredentials(),
	}
	healthHandler := handlers.NewHealthHandler(agent, builder.Skills())

	var breakerState func() string
	if breaker, ok := deps.Gateway.(*llm.BreakerGateway); ok {
		breakerState = breaker.State
	}
	metricsHandler := handlers.NewMetricsHandler(version, agent, breakerState)

	// Prometheus exposition
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	limiter := apimiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// The browser client calls the /api paths; the bare paths serve direct callers
	for _, group := range []*gin.RouterGroup{router.Group(""), router.Group("/api")} {
		group.GET("/health", healthHandler.HealthCheck)
		group.GET("/skills", healthHandler.ListSkills)

		generation := group.Group("", apimiddleware.RateLimit(limiter))
		generation.POST("/review/generate", reviewHandler.Generate)
		generation.POST("/review/generate/stream", reviewHandler.Stream)
		generation.POST("/swipe/analyze", swipeHandler.Analyze)
	}

	return router
}
