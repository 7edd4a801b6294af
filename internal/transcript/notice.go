// ABOUTME: Maps submit failures to the text shown in the transcript
// ABOUTME: Structured answer wins, then the not-ready and rate-limit texts, then a generic one

package transcript

import (
	"errors"

	"github.com/mauromedda/seekdeck/internal/backend"
)

const (
	NotReadyText    = "The agent backend is still starting up. Check its API key configuration and try again."
	RateLimitedText = "Another task is still running. Wait for it to finish or stop it first."
	GenericFailText = "Could not reach the agent backend. Please try again."
)

// FailureNotice returns the transcript text for a failed submit.
func FailureNotice(err error) string {
	if apiErr, ok := backend.AsAPIError(err); ok && apiErr.Answer != "" {
		return apiErr.Answer
	}
	switch {
	case errors.Is(err, backend.ErrNotReady):
		return NotReadyText
	case errors.Is(err, backend.ErrRateLimited):
		return RateLimitedText
	default:
		return GenericFailText
	}
}
