package middleware

import (
	"time"

	"github.com/Conceptual-Machines/reelmate-api/internal/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const corsMaxAge = 12 * time.Hour

// ProfileSourceHeader reports whether a taste profile came from the agent or the local heuristic
const ProfileSourceHeader = "X-Profile-Source"

// CORS allows the configured frontend origins, or every origin when none is pinned
func CORS(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader, ProfileSourceHeader},
		MaxAge:        corsMaxAge,
	}
	if cfg.AllowsAnyOrigin() {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.FrontendOrigins
	}
	return cors.New(corsCfg)
}
