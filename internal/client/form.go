package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/franckalain/foodrescue/internal/models"
)

// SubmissionForm holds the raw text of the surplus-food form
type SubmissionForm struct {
	FoodType  string
	Quantity  string
	Unit      string
	Location  string
	EventType string
	Notes     string
}

// NewSubmissionForm returns the form in its initial state
func NewSubmissionForm() SubmissionForm {
	return SubmissionForm{Unit: models.DefaultUnit}
}

// Reset puts the form back in its initial state
func (f *SubmissionForm) Reset() {
	*f = NewSubmissionForm()
}

// Submit validates presence of the required fields and sends the
// submission. Nothing is sent when a required field is empty. The form is
// reset only after the API accepted the submission.
func (f *SubmissionForm) Submit(ctx context.Context, c *Client) (*models.FoodSubmission, error) {
	if f.FoodType == "" || f.Quantity == "" || f.Location == "" {
		return nil, models.ErrMissingFields
	}

	quantity, err := strconv.ParseFloat(strings.TrimSpace(f.Quantity), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity %q: %w", f.Quantity, err)
	}

	unit := f.Unit
	if unit == "" {
		unit = models.DefaultUnit
	}

	sub, err := c.SubmitFood(ctx, SubmissionInput{
		FoodType:  f.FoodType,
		Quantity:  quantity,
		Unit:      unit,
		Location:  f.Location,
		EventType: optional(f.EventType),
		Notes:     optional(f.Notes),
		Status:    models.StatusAvailable,
	})
	if err != nil {
		return nil, err
	}

	f.Reset()
	return sub, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// PredictionForm holds the raw text of the demand-prediction form
type PredictionForm struct {
	EventType         string
	ExpectedAttendees string
	DayOfWeek         string
}

// Predict checks every field is present, then requests a forecast
func (f *PredictionForm) Predict(ctx context.Context, c *Client) (*models.PredictionResult, error) {
	if f.EventType == "" || f.ExpectedAttendees == "" || f.DayOfWeek == "" {
		return nil, models.ErrMissingFields
	}

	attendees, err := strconv.Atoi(strings.TrimSpace(f.ExpectedAttendees))
	if err != nil {
		return nil, fmt.Errorf("invalid expected attendees %q: %w", f.ExpectedAttendees, err)
	}

	return c.PredictDemand(ctx, models.PredictionRequest{
		EventType:         f.EventType,
		ExpectedAttendees: attendees,
		DayOfWeek:         f.DayOfWeek,
	})
}
