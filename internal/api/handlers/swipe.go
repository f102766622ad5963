package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/reelmate-api/internal/api/middleware"
	"github.com/Conceptual-Machines/reelmate-api/internal/logger"
	"github.com/Conceptual-Machines/reelmate-api/internal/models"
	"github.com/Conceptual-Machines/reelmate-api/internal/review"
	"github.com/Conceptual-Machines/reelmate-api/internal/services"
	"github.com/gin-gonic/gin"
)

type SwipeHandler struct {
	service *services.SwipeService
}

func NewSwipeHandler(service *services.SwipeService) *SwipeHandler {
	return &SwipeHandler{service: service}
}

// Analyze infers a taste profile from liked and disliked movies
func (h *SwipeHandler) Analyze(c *gin.Context) {
	var req models.SwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}

	profile, source, err := h.service.Analyze(c.Request.Context(), req)
	if err != nil {
		if review.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": review.UserMessage(err)})
			return
		}
		logger.Error("Swipe analysis failed", err, logger.Fields{
			"request_id": middleware.RequestID(c),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": review.UserMessage(err)})
		return
	}

	c.Header(middleware.ProfileSourceHeader, source)
	c.JSON(http.StatusOK, profile)
}
