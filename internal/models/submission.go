package models

import (
	"errors"
	"time"
)

// ErrMissingFields is returned when a required field of a submission or
// prediction request is empty.
var ErrMissingFields = errors.New("please fill in all required fields")

// SubmissionStatus is the lifecycle state of a food submission
type SubmissionStatus string

const (
	StatusAvailable SubmissionStatus = "available"
	StatusClaimed   SubmissionStatus = "claimed"
	StatusCollected SubmissionStatus = "collected"
)

// Valid reports whether s is one of the known statuses
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusClaimed, StatusCollected:
		return true
	}
	return false
}

// DefaultUnit is used when a submission does not name a unit
const DefaultUnit = "kg"

// Units lists the quantity units offered to donors
var Units = []string{"kg", "portions", "liters", "items"}

// FoodTypes lists the food categories offered to donors
var FoodTypes = []string{
	"Cooked Meals",
	"Fresh Vegetables",
	"Fresh Fruits",
	"Bread & Bakery",
	"Dairy Products",
	"Beverages",
	"Packaged Foods",
	"Mixed Items",
	"Other",
}

// SubmissionEventTypes lists the event sources a donor can pick from
var SubmissionEventTypes = []string{
	"Hotel Buffet",
	"Wedding",
	"Corporate Event",
	"Conference",
	"Restaurant",
	"Catering Service",
	"Other",
}

// FoodSubmission represents a surplus-food record created by a donor
type FoodSubmission struct {
	ID        string           `json:"id"`
	FoodType  string           `json:"food_type"`
	Quantity  float64          `json:"quantity"`
	Unit      string           `json:"unit"`
	Location  string           `json:"location"` // pickup address
	EventType *string          `json:"event_type"`
	Notes     *string          `json:"notes"`
	Status    SubmissionStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Validate checks that the required fields are present. Quantity is only
// checked for presence, not range.
func (f *FoodSubmission) Validate() error {
	if f.FoodType == "" || f.Location == "" || f.Quantity == 0 {
		return ErrMissingFields
	}
	return nil
}

// ApplyDefaults fills the unit and status when they were left empty and turns
// empty optional strings into nulls.
func (f *FoodSubmission) ApplyDefaults() {
	if f.Unit == "" {
		f.Unit = DefaultUnit
	}
	if f.Status == "" {
		f.Status = StatusAvailable
	}
	if f.EventType != nil && *f.EventType == "" {
		f.EventType = nil
	}
	if f.Notes != nil && *f.Notes == "" {
		f.Notes = nil
	}
}
