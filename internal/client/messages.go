package client

import (
	"errors"

	"github.com/franckalain/foodrescue/internal/models"
)

// Operation names the user action an error came from
type Operation int

const (
	OpSubmit Operation = iota
	OpPredict
	OpLoad
)

// User-facing notifications
const (
	MsgMissingFields    = "Please fill in all required fields"
	MsgSubmitted        = "Food submission recorded successfully!"
	MsgSubmitFailed     = "Failed to submit food data. Please try again."
	MsgPredicted        = "Prediction generated successfully!"
	MsgRateLimited      = "Rate limit exceeded. Please try again in a moment."
	MsgCreditsExhausted = "AI credits exhausted. Please add credits to continue."
	MsgPredictionFailed = "Failed to generate prediction. Please try again."
	MsgLoadFailed       = "Failed to load data. Please try again."
	MsgNoSubmissionsYet = "No food submissions yet. Be the first to contribute!"
)

// UserMessage maps the outcome of op to the notification shown to the user
func UserMessage(op Operation, err error) string {
	if err == nil {
		switch op {
		case OpSubmit:
			return MsgSubmitted
		case OpPredict:
			return MsgPredicted
		}
		return ""
	}

	if errors.Is(err, models.ErrMissingFields) {
		return MsgMissingFields
	}

	var apiErr *APIError
	switch op {
	case OpPredict:
		if errors.As(err, &apiErr) {
			if apiErr.IsRateLimited() {
				return MsgRateLimited
			}
			if apiErr.IsCreditsExhausted() {
				return MsgCreditsExhausted
			}
		}
		return MsgPredictionFailed
	case OpSubmit:
		return MsgSubmitFailed
	default:
		return MsgLoadFailed
	}
}
