package ml

import (
	"context"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/franckalain/foodrescue/internal/models"
	"go.uber.org/zap"
)

// kilograms of food per attendee, by event type
var perPersonKg = map[string]float64{
	"wedding":      0.8,
	"corporate":    0.5,
	"conference":   0.4,
	"hotel_buffet": 0.6,
	"buffet":       0.6,
	"catering":     0.6,
}

const (
	defaultPerPersonKg = 0.5
	knownConfidence    = 70
	unknownConfidence  = 45
)

// LocalConfig holds configuration for the local model
type LocalConfig struct {
	BaseConfig
	WeekendFactor float64 `json:"weekend_factor"`
}

// Load loads the local configuration
func (c *LocalConfig) Load(logger *zap.Logger) error {
	if err := c.LoadConfig(logger, "local", c); err != nil {
		return err
	}

	if c.WeekendFactor == 0 {
		if v, err := strconv.ParseFloat(os.Getenv("LOCAL_WEEKEND_FACTOR"), 64); err == nil {
			c.WeekendFactor = v
		}
	}
	if c.WeekendFactor == 0 {
		c.WeekendFactor = 1.1
	}
	return nil
}

// LocalModel estimates demand from historical per-person averages without
// calling any provider.
type LocalModel struct {
	config LocalConfig
}

// LocalModelFactory implements ModelFactory for local models
type LocalModelFactory struct {
	config LocalConfig
}

// NewLocalModelFactory creates a new local model factory
func NewLocalModelFactory(config LocalConfig) *LocalModelFactory {
	return &LocalModelFactory{config: config}
}

// CreateModel creates a new local model instance
func (f *LocalModelFactory) CreateModel() (Model, error) {
	return &LocalModel{
		config: f.config,
	}, nil
}

// Load is a no-op; the local model has nothing to initialize
func (m *LocalModel) Load(ctx context.Context) error {
	return nil
}

// PredictDemand returns attendees * per-person average, raised on weekends
func (m *LocalModel) PredictDemand(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error) {
	eventType := strings.ToLower(strings.TrimSpace(req.EventType))
	perPerson, known := perPersonKg[eventType]
	if !known {
		perPerson = defaultPerPersonKg
	}

	demand := float64(req.ExpectedAttendees) * perPerson
	switch strings.ToLower(req.DayOfWeek) {
	case "saturday", "sunday":
		demand *= m.config.WeekendFactor
	}

	confidence := float64(knownConfidence)
	if !known {
		confidence = unknownConfidence
	}

	return &models.PredictionResult{
		PredictedDemand: math.Round(demand*10) / 10,
		Confidence:      confidence,
		Recommendations: []string{
			"Confirm final headcount 48 hours ahead and adjust orders accordingly",
			"Serve smaller portions first and offer refills to limit plate waste",
			"Arrange a partner NGO pickup for surplus food before the event ends",
		},
	}, nil
}
