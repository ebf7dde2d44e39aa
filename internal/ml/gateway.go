package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/franckalain/foodrescue/internal/models"
	"go.uber.org/zap"
)

const (
	defaultGatewayURL   = "https://ai.gateway.lovable.dev/v1/chat/completions"
	defaultGatewayModel = "google/gemini-2.5-flash"
)

// GatewayConfig holds configuration for an OpenAI-compatible chat-completions gateway
type GatewayConfig struct {
	BaseConfig
	URL    string `json:"url"`
	Model  string `json:"model"`
	APIKey string `json:"api_key"`
}

// Load loads the gateway configuration
func (c *GatewayConfig) Load(logger *zap.Logger) error {
	if err := c.LoadConfig(logger, "gateway", c); err != nil {
		return err
	}

	c.URL = envOr(c.URL, "AI_GATEWAY_URL", defaultGatewayURL)
	c.Model = envOr(c.Model, "AI_GATEWAY_MODEL", defaultGatewayModel)
	c.APIKey = envOr(c.APIKey, "AI_GATEWAY_API_KEY", "")
	if c.APIKey == "" {
		return fmt.Errorf("AI_GATEWAY_API_KEY is not configured")
	}
	return nil
}

// GatewayModel implements the Model interface over the AI gateway
type GatewayModel struct {
	config     GatewayConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// GatewayModelFactory implements ModelFactory for gateway models
type GatewayModelFactory struct {
	config GatewayConfig
	logger *zap.Logger
}

// NewGatewayModelFactory creates a new gateway model factory
func NewGatewayModelFactory(config GatewayConfig, logger *zap.Logger) *GatewayModelFactory {
	return &GatewayModelFactory{config: config, logger: logger}
}

// CreateModel creates a new gateway model instance
func (f *GatewayModelFactory) CreateModel() (Model, error) {
	return &GatewayModel{
		config: f.config,
		logger: f.logger,
	}, nil
}

// Load prepares the HTTP client. No client timeout is set: the caller's
// context bounds the call.
func (m *GatewayModel) Load(ctx context.Context) error {
	if m.httpClient == nil {
		m.httpClient = &http.Client{}
	}
	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatRequest struct {
	Model      string        `json:"model"`
	Messages   []chatMessage `json:"messages"`
	Tools      []chatTool    `json:"tools"`
	ToolChoice chatTool      `json:"tool_choice"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

func (m *GatewayModel) buildRequest(req models.PredictionRequest) chatRequest {
	return chatRequest{
		Model: m.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(req)},
		},
		Tools: []chatTool{{
			Type: "function",
			Function: chatFunction{
				Name:        predictionFunctionName,
				Description: predictionFunctionDescription,
				Parameters:  predictionParameters(),
			},
		}},
		ToolChoice: chatTool{
			Type:     "function",
			Function: chatFunction{Name: predictionFunctionName},
		},
	}
}

// PredictDemand sends one forced function-call request to the gateway and
// returns the parsed arguments.
func (m *GatewayModel) PredictDemand(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error) {
	if m.httpClient == nil {
		return nil, fmt.Errorf("model not loaded")
	}

	m.logger.Info("Prediction request",
		zap.String("event_type", req.EventType),
		zap.Int("expected_attendees", req.ExpectedAttendees),
		zap.String("day_of_week", req.DayOfWeek))

	jsonBody, err := json.Marshal(m.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.URL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+m.config.APIKey)

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		m.logger.Error("AI gateway error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(bodyBytes)))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 || len(chatResp.Choices[0].Message.ToolCalls) == 0 {
		return nil, ErrNoToolCall
	}

	arguments := chatResp.Choices[0].Message.ToolCalls[0].Function.Arguments
	m.logger.Debug("AI response", zap.String("arguments", arguments))

	return parsePrediction([]byte(arguments))
}
