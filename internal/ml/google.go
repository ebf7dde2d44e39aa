package ml

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
	"github.com/franckalain/foodrescue/internal/models"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultGoogleModel = "gemini-2.5-flash"

// GoogleConfig holds configuration for the Google model
type GoogleConfig struct {
	BaseConfig
	ProjectID       string `json:"project_id"`
	Location        string `json:"location"`
	CredentialsFile string `json:"credentials_file"`
	Model           string `json:"model"`
}

// Load loads the Google configuration
func (c *GoogleConfig) Load(logger *zap.Logger) error {
	if err := c.LoadConfig(logger, "google", c); err != nil {
		return err
	}

	c.ProjectID = envOr(c.ProjectID, "GOOGLE_PROJECT_ID", "")
	c.Location = envOr(c.Location, "GOOGLE_LOCATION", "us-central1")
	c.CredentialsFile = envOr(c.CredentialsFile, "GOOGLE_CREDENTIALS_FILE", "")
	c.Model = envOr(c.Model, "GOOGLE_MODEL", defaultGoogleModel)
	if c.ProjectID == "" {
		return fmt.Errorf("GOOGLE_PROJECT_ID is not configured")
	}
	return nil
}

// GoogleModel implements the Model interface for Google's Vertex AI
type GoogleModel struct {
	config GoogleConfig
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

// GoogleModelFactory implements ModelFactory for Google models
type GoogleModelFactory struct {
	config GoogleConfig
	logger *zap.Logger
}

// NewGoogleModelFactory creates a new Google model factory
func NewGoogleModelFactory(config GoogleConfig, logger *zap.Logger) *GoogleModelFactory {
	return &GoogleModelFactory{config: config, logger: logger}
}

// CreateModel creates a new Google model instance
func (f *GoogleModelFactory) CreateModel() (Model, error) {
	return &GoogleModel{
		config: f.config,
		logger: f.logger,
	}, nil
}

// predictionSchema mirrors predictionParameters for the Vertex AI SDK
func predictionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"predicted_demand": {
				Type:        genai.TypeNumber,
				Description: "Total predicted food demand in kg",
			},
			"confidence": {
				Type:        genai.TypeNumber,
				Description: "Confidence level 0-100",
			},
			"recommendations": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "List of 3 actionable recommendations",
			},
		},
		Required: []string{"predicted_demand", "confidence", "recommendations"},
	}
}

// Load initializes the Google model with the prediction function forced
func (m *GoogleModel) Load(ctx context.Context) error {
	opts := []option.ClientOption{}

	if m.config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(m.config.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, m.config.ProjectID, m.config.Location, opts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	model := client.GenerativeModel(m.config.Model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	model.Tools = []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        predictionFunctionName,
			Description: predictionFunctionDescription,
			Parameters:  predictionSchema(),
		}},
	}}
	model.ToolConfig = &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{
			Mode:                 genai.FunctionCallingAny,
			AllowedFunctionNames: []string{predictionFunctionName},
		},
	}

	m.client = client
	m.model = model
	return nil
}

// PredictDemand asks Vertex AI for the prediction function call
func (m *GoogleModel) PredictDemand(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error) {
	if m.model == nil {
		return nil, fmt.Errorf("model not loaded")
	}

	m.logger.Info("Prediction request",
		zap.String("event_type", req.EventType),
		zap.Int("expected_attendees", req.ExpectedAttendees),
		zap.String("day_of_week", req.DayOfWeek))

	resp, err := m.model.GenerateContent(ctx, genai.Text(userPrompt(req)))
	if err != nil {
		m.logger.Error("Vertex AI error", zap.Error(err))
		return nil, classifyVertexError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrNoToolCall
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		call, ok := part.(genai.FunctionCall)
		if !ok || call.Name != predictionFunctionName {
			continue
		}
		arguments, err := json.Marshal(call.Args)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPrediction, err)
		}
		return parsePrediction(arguments)
	}
	return nil, ErrNoToolCall
}

// Close releases the Vertex AI client
func (m *GoogleModel) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close()
}

func classifyVertexError(err error) error {
	switch status.Code(err) {
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	default:
		return fmt.Errorf("failed to call ai: %w", err)
	}
}
