// ABOUTME: Typed API errors; 503 and 429 match sentinel errors via errors.Is
// ABOUTME: The structured answer of an error body is kept for user-facing notices

package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mauromedda/seekdeck/internal/protocol"
)

var (
	// ErrNotReady is matched by a 503 response: the backend is not initialised.
	ErrNotReady = errors.New("backend not ready")
	// ErrRateLimited is matched by a 429 response: another task is running.
	ErrRateLimited = errors.New("backend busy")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
	// Answer is the structured answer carried by answer-shaped error bodies.
	Answer string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// Is lets errors.Is match the status sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotReady:
		return e.Status == http.StatusServiceUnavailable
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	}
	return false
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func readAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if len(data) == 0 {
		apiErr.Message = http.StatusText(resp.StatusCode)
		return apiErr
	}

	var body struct {
		protocol.ErrorBody
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Message = body.Error
		apiErr.Answer = strings.TrimSpace(body.Answer)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	apiErr.Message = msg
	return apiErr
}
