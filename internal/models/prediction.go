package models

// PredictionEventType describes one event kind the demand predictor knows about
type PredictionEventType struct {
	Value        string `json:"value"`
	Label        string `json:"label"`
	AvgAttendees int    `json:"avg_attendees"`
}

// PredictionEventTypes are the event kinds offered for prediction
var PredictionEventTypes = []PredictionEventType{
	{Value: "wedding", Label: "Wedding", AvgAttendees: 200},
	{Value: "corporate", Label: "Corporate Event", AvgAttendees: 150},
	{Value: "conference", Label: "Conference", AvgAttendees: 300},
	{Value: "hotel_buffet", Label: "Hotel Buffet", AvgAttendees: 100},
	{Value: "catering", Label: "Catering Service", AvgAttendees: 80},
}

// DaysOfWeek are the accepted day_of_week values
var DaysOfWeek = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// PredictionRequest carries the inputs of a demand prediction
type PredictionRequest struct {
	EventType         string `json:"event_type"`
	ExpectedAttendees int    `json:"expected_attendees"`
	DayOfWeek         string `json:"day_of_week"`
}

// Validate only checks presence; ranges and enum membership are left to the model.
func (r *PredictionRequest) Validate() error {
	if r.EventType == "" || r.ExpectedAttendees == 0 || r.DayOfWeek == "" {
		return ErrMissingFields
	}
	return nil
}

// RecommendationCount is the number of recommendations a prediction carries
const RecommendationCount = 3

// PredictionResult is the demand forecast returned to the caller. It is never
// persisted.
type PredictionResult struct {
	PredictedDemand float64  `json:"predicted_demand"` // kg
	Confidence      float64  `json:"confidence"`       // 0-100
	Recommendations []string `json:"recommendations"`
}
