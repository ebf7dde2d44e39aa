package ml

import (
	"context"
	"fmt"

	"github.com/franckalain/foodrescue/internal/models"
	"go.uber.org/zap"
)

// Model forecasts food demand for an event
type Model interface {
	// Load initializes the model with its configuration
	Load(ctx context.Context) error
	// PredictDemand makes one prediction; it never retries
	PredictDemand(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error)
}

// ModelFactory creates a new model instance based on configuration
type ModelFactory interface {
	// CreateModel creates a new model instance
	CreateModel() (Model, error)
}

// NewModel creates a new model instance based on the model type. configPath
// may be empty, in which case config/<type>.json and then environment
// variables are used.
func NewModel(modelType, configPath string, logger *zap.Logger) (Model, error) {
	var factory ModelFactory

	switch modelType {
	case "gateway":
		config := GatewayConfig{BaseConfig: BaseConfig{ConfigPath: configPath}}
		if err := config.Load(logger); err != nil {
			return nil, fmt.Errorf("failed to load gateway config: %w", err)
		}
		factory = NewGatewayModelFactory(config, logger)
	case "google":
		config := GoogleConfig{BaseConfig: BaseConfig{ConfigPath: configPath}}
		if err := config.Load(logger); err != nil {
			return nil, fmt.Errorf("failed to load Google config: %w", err)
		}
		factory = NewGoogleModelFactory(config, logger)
	case "local":
		config := LocalConfig{BaseConfig: BaseConfig{ConfigPath: configPath}}
		if err := config.Load(logger); err != nil {
			return nil, fmt.Errorf("failed to load local config: %w", err)
		}
		factory = NewLocalModelFactory(config)
	default:
		return nil, fmt.Errorf("unsupported model type: %s", modelType)
	}
	return factory.CreateModel()
}
