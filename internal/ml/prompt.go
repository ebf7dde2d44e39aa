package ml

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/franckalain/foodrescue/internal/models"
)

const (
	predictionFunctionName        = "food_demand_prediction"
	predictionFunctionDescription = "Return the food demand prediction with recommendations"
)

const systemPrompt = `You are an AI assistant specialized in food demand prediction for events.
Based on historical patterns and the provided parameters, predict the amount of food (in kg) that will be needed.

Consider these factors:
- Event type affects portion sizes and food variety
- Day of week affects attendance patterns (weekends typically have more attendance)
- Historical averages: Weddings ~0.8kg/person, Corporate ~0.5kg/person, Conferences ~0.4kg/person, Buffets ~0.6kg/person

Return a JSON object with:
- predicted_demand: number (total kg of food needed)
- confidence: number (0-100, your confidence in the prediction)
- recommendations: array of 3 actionable recommendations to reduce waste`

func userPrompt(req models.PredictionRequest) string {
	return fmt.Sprintf(`Predict food demand for:
- Event type: %s
- Expected attendees: %d
- Day of week: %s

Provide your prediction as JSON.`, req.EventType, req.ExpectedAttendees, req.DayOfWeek)
}

// predictionParameters is the JSON schema of the forced function call
func predictionParameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"predicted_demand": map[string]any{
				"type":        "number",
				"description": "Total predicted food demand in kg",
			},
			"confidence": map[string]any{
				"type":        "number",
				"description": "Confidence level 0-100",
			},
			"recommendations": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "List of 3 actionable recommendations",
			},
		},
		"required":             []string{"predicted_demand", "confidence", "recommendations"},
		"additionalProperties": false,
	}
}

// parsePrediction decodes function-call arguments into a result and
// normalizes it: confidence is clamped to [0,100] and recommendations are cut
// to three. Fewer than three recommendations is an error.
func parsePrediction(arguments []byte) (*models.PredictionResult, error) {
	var raw struct {
		PredictedDemand *float64 `json:"predicted_demand"`
		Confidence      *float64 `json:"confidence"`
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal(arguments, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPrediction, err)
	}
	if raw.PredictedDemand == nil || raw.Confidence == nil {
		return nil, fmt.Errorf("%w: missing predicted_demand or confidence", ErrMalformedPrediction)
	}
	if len(raw.Recommendations) < models.RecommendationCount {
		return nil, fmt.Errorf("%w: got %d recommendations", ErrMalformedPrediction, len(raw.Recommendations))
	}

	return &models.PredictionResult{
		PredictedDemand: *raw.PredictedDemand,
		Confidence:      math.Max(0, math.Min(100, *raw.Confidence)),
		Recommendations: raw.Recommendations[:models.RecommendationCount],
	}, nil
}
