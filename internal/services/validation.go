package services

import (
	"errors"
	"strings"
	"sync"

	"github.com/Conceptual-Machines/reelmate-api/internal/models"
	"github.com/Conceptual-Machines/reelmate-api/internal/review"
	"github.com/go-playground/validator/v10"
)

// Validation messages returned to callers
const (
	MsgTitleRequired   = "Movie title is required."
	MsgSignalsRequired = "Provide at least one liked or disliked movie."
	MsgSignalTitle     = "Every liked or disliked movie needs a title."
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

type reviewInput struct {
	Title string `validate:"required"`
}

// ValidateReviewInput checks a review request and returns the generation
// request it describes. Whitespace-only titles are rejected.
func ValidateReviewInput(req models.ReviewRequest) (models.GenerationRequest, error) {
	title := strings.TrimSpace(req.Title)
	if err := getValidator().Struct(reviewInput{Title: title}); err != nil {
		return models.GenerationRequest{}, review.NewValidationError("title", MsgTitleRequired)
	}
	return models.GenerationRequest{
		Title:          title,
		PriorSignal:    req.SwipeContext,
		PreferenceText: req.Settings.PreferenceText,
	}, nil
}

// ValidateSwipeInput checks that a swipe request carries at least one titled signal
func ValidateSwipeInput(req models.SwipeRequest) error {
	if len(req.Likes) == 0 && len(req.Dislikes) == 0 {
		return review.NewValidationError("likes", MsgSignalsRequired)
	}

	if err := getValidator().Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return review.NewValidationError(fieldErrs[0].Namespace(), MsgSignalTitle)
		}
		return review.NewValidationError("likes", err.Error())
	}

	for _, signal := range append(append([]models.MovieSignal{}, req.Likes...), req.Dislikes...) {
		if strings.TrimSpace(signal.Title) == "" {
			return review.NewValidationError("title", MsgSignalTitle)
		}
	}
	return nil
}
