package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestFoodSubmissionValidate(t *testing.T) {
	valid := FoodSubmission{FoodType: "Cooked Meals", Quantity: 12.5, Location: "12 Market St"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		edit func(f *FoodSubmission)
	}{
		{"missing food type", func(f *FoodSubmission) { f.FoodType = "" }},
		{"missing quantity", func(f *FoodSubmission) { f.Quantity = 0 }},
		{"missing location", func(f *FoodSubmission) { f.Location = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.edit(&f)
			assert.ErrorIs(t, f.Validate(), ErrMissingFields)
		})
	}
}

func TestFoodSubmissionApplyDefaults(t *testing.T) {
	f := FoodSubmission{EventType: strPtr(""), Notes: strPtr("keep chilled")}
	f.ApplyDefaults()

	assert.Equal(t, "kg", f.Unit)
	assert.Equal(t, StatusAvailable, f.Status)
	assert.Nil(t, f.EventType)
	assert.Equal(t, "keep chilled", *f.Notes)

	f = FoodSubmission{Unit: "portions", Status: StatusClaimed}
	f.ApplyDefaults()
	assert.Equal(t, "portions", f.Unit)
	assert.Equal(t, StatusClaimed, f.Status)
}

func TestSubmissionStatusValid(t *testing.T) {
	assert.True(t, StatusAvailable.Valid())
	assert.True(t, StatusClaimed.Valid())
	assert.True(t, StatusCollected.Valid())
	assert.False(t, SubmissionStatus("pending").Valid())
	assert.False(t, SubmissionStatus("").Valid())
}

func TestPredictionRequestValidate(t *testing.T) {
	req := PredictionRequest{EventType: "wedding", ExpectedAttendees: 200, DayOfWeek: "saturday"}
	assert.NoError(t, req.Validate())

	// no range or enum enforcement
	odd := PredictionRequest{EventType: "picnic", ExpectedAttendees: -5, DayOfWeek: "someday"}
	assert.NoError(t, odd.Validate())

	assert.ErrorIs(t, (&PredictionRequest{ExpectedAttendees: 10, DayOfWeek: "monday"}).Validate(), ErrMissingFields)
	assert.ErrorIs(t, (&PredictionRequest{EventType: "wedding", DayOfWeek: "monday"}).Validate(), ErrMissingFields)
	assert.ErrorIs(t, (&PredictionRequest{EventType: "wedding", ExpectedAttendees: 10}).Validate(), ErrMissingFields)
}
