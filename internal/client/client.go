package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Conceptual-Machines/reelmate-api/internal/models"
	"github.com/Conceptual-Machines/reelmate-api/internal/review"
	"github.com/Conceptual-Machines/reelmate-api/internal/sse"
	"github.com/tidwall/gjson"
)

const (
	reviewStreamPath = "/api/review/generate/stream"
	swipeAnalyzePath = "/api/swipe/analyze"
	readBufferSize   = 4096
)

// ProgressFunc receives each new progress event as it arrives
type ProgressFunc func(event models.ProgressEvent)

// Client talks to the review API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API at baseURL. A nil httpClient uses one
// without an overall timeout, since review streams run for minutes.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// GenerateReview streams a review generation. Progress is recorded in log
// (which may be nil) and passed to onProgress (which may be nil) as it
// arrives; the sanitized result is returned once the stream ends.
func (c *Client) GenerateReview(ctx context.Context, req models.ReviewRequest, log *ProgressLog, onProgress ProgressFunc) (*models.ReviewResult, error) {
	resp, err := c.post(ctx, reviewStreamPath, req, "text/event-stream")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}
	return Consume(resp.Body, log, onProgress)
}

// AnalyzeSwipes posts a swipe analysis request and returns the taste profile
func (c *Client) AnalyzeSwipes(ctx context.Context, req models.SwipeRequest) (*models.TasteProfile, error) {
	resp, err := c.post(ctx, swipeAnalyzePath, req, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &review.TransportError{Op: "read response", Err: err}
	}
	profile, err := review.ParseTasteProfile(string(body))
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) post(ctx context.Context, path string, body any, accept string) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &review.TransportError{Op: "send request", Err: err}
	}
	return resp, nil
}

// Consume reads frames from r until the stream ends. A failure frame ends
// the call at once; a result frame is held until the stream closes, and a
// stream that closes without one fails with a StreamIntegrityError.
func Consume(r io.Reader, log *ProgressLog, onProgress ProgressFunc) (*models.ReviewResult, error) {
	if log == nil {
		log = NewProgressLog()
	}
	decoder := sse.NewDecoder()
	var resultText string
	haveResult := false

	handle := func(frame sse.Frame) (done bool, err error) {
		switch frame.Kind {
		case models.OutcomeProgress:
			var event models.ProgressEvent
			if json.Unmarshal([]byte(frame.Data), &event) != nil || strings.TrimSpace(event.Message) == "" {
				return false, nil
			}
			if log.Append(event) && onProgress != nil {
				onProgress(event)
			}
		case models.OutcomeResult:
			resultText = frame.Data
			haveResult = true
		case models.OutcomeFailure:
			message := gjson.Get(frame.Data, "message").String()
			if message == "" {
				message = "Review stream failed."
			}
			return true, &review.GatewayError{Message: message}
		case models.OutcomeDone:
			return true, nil
		}
		return false, nil
	}

	buf := make([]byte, readBufferSize)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			for _, frame := range decoder.Feed(buf[:n]) {
				done, err := handle(frame)
				if err != nil {
					return nil, err
				}
				if done {
					return finishResult(resultText, haveResult)
				}
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, &review.TransportError{Op: "read stream", Err: readErr}
		}
	}

	for _, frame := range decoder.Flush() {
		if _, err := handle(frame); err != nil {
			return nil, err
		}
	}
	return finishResult(resultText, haveResult)
}

func finishResult(text string, ok bool) (*models.ReviewResult, error) {
	if !ok {
		return nil, &review.StreamIntegrityError{}
	}
	result, err := review.ParseReview(text)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	message := strings.TrimSpace(gjson.GetBytes(body, "error").String())
	if message == "" {
		message = fmt.Sprintf("Request failed with status %d", resp.StatusCode)
	}
	if resp.StatusCode == http.StatusBadRequest {
		return review.NewValidationError("request", message)
	}
	return &review.GatewayError{Message: message}
}
