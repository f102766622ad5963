package client

import (
	"context"
	"errors"
	"sync"

	"github.com/Conceptual-Machines/reelmate-api/internal/models"
)

// ErrSuperseded is returned for a generation replaced by a newer one
var ErrSuperseded = errors.New("review generation superseded by a newer request")

// Session runs review generations for a single viewer. Starting a generation
// supersedes the one before it: the older run's progress stops reaching its
// callback and its result is discarded.
type Session struct {
	client *Client
	epoch  Epoch

	mu  sync.Mutex
	log *ProgressLog
}

// NewSession creates a session backed by c
func (c *Client) NewSession() *Session {
	return &Session{client: c, log: NewProgressLog()}
}

// Generate streams a review for req. It returns ErrSuperseded when another
// Generate call began before this one finished.
func (s *Session) Generate(ctx context.Context, req models.ReviewRequest, onProgress ProgressFunc) (*models.ReviewResult, error) {
	s.mu.Lock()
	ticket := s.epoch.Begin()
	log := NewProgressLog()
	s.log = log
	s.mu.Unlock()

	result, err := s.client.GenerateReview(ctx, req, log, func(event models.ProgressEvent) {
		if onProgress != nil && ticket.Current() {
			onProgress(event)
		}
	})
	if !ticket.Current() {
		return nil, ErrSuperseded
	}
	return result, err
}

// Progress returns the progress history of the latest generation
func (s *Session) Progress() []models.ProgressEvent {
	s.mu.Lock()
	log := s.log
	s.mu.Unlock()
	return log.Events()
}
