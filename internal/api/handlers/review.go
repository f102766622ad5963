package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/reelmate-api/internal/api/middleware"
	"github.com/Conceptual-Machines/reelmate-api/internal/logger"
	"github.com/Conceptual-Machines/reelmate-api/internal/models"
	"github.com/Conceptual-Machines/reelmate-api/internal/review"
	"github.com/Conceptual-Machines/reelmate-api/internal/services"
	"github.com/Conceptual-Machines/reelmate-api/internal/sse"
	"github.com/gin-gonic/gin"
)

const msgInvalidBody = "Request body must be a JSON object."

type ReviewHandler struct {
	service *services.ReviewService
}

func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// Generate runs one blocking review generation
func (h *ReviewHandler) Generate(c *gin.Context) {
	req, ok := bindReviewRequest(c)
	if !ok {
		return
	}

	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		logger.Error("Review generation failed", err, logger.Fields{
			"request_id": middleware.RequestID(c),
			"title":      req.Title,
			"provider":   h.service.Provider(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": review.UserMessage(err)})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Stream relays a review generation as server-sent events. Input is
// validated before any header is written so bad requests still get a
// plain 400 body.
func (h *ReviewHandler) Stream(c *gin.Context) {
	req, ok := bindReviewRequest(c)
	if !ok {
		return
	}

	writer := sse.NewWriter(c.Request.Context(), c.Writer)
	writer.WriteHeaders()

	summary := h.service.Stream(c.Request.Context(), req, writer)
	logger.Info("Review stream closed", logger.Fields{
		"request_id":  middleware.RequestID(c),
		"run_id":      summary.RunID,
		"outcome":     summary.Outcome,
		"progress":    summary.ProgressCount,
		"dropped":     summary.Dropped,
		"duration_ms": summary.Duration.Milliseconds(),
	})
}

func bindReviewRequest(c *gin.Context) (models.GenerationRequest, bool) {
	var body models.ReviewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return models.GenerationRequest{}, false
	}

	req, err := services.ValidateReviewInput(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": review.UserMessage(err)})
		return models.GenerationRequest{}, false
	}
	return req, true
}
