package ml

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franckalain/foodrescue/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var weddingRequest = models.PredictionRequest{
	EventType:         "wedding",
	ExpectedAttendees: 200,
	DayOfWeek:         "saturday",
}

func newTestGateway(t *testing.T, handler http.HandlerFunc) *GatewayModel {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	factory := NewGatewayModelFactory(GatewayConfig{
		URL:    server.URL,
		Model:  "test-model",
		APIKey: "test-key",
	}, zap.NewNop())
	model, err := factory.CreateModel()
	require.NoError(t, err)
	require.NoError(t, model.Load(context.Background()))
	return model.(*GatewayModel)
}

func toolCallResponse(arguments string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{
			"message": map[string]any{
				"tool_calls": []any{map[string]any{
					"type": "function",
					"function": map[string]any{
						"name":      predictionFunctionName,
						"arguments": arguments,
					},
				}},
			},
		}},
	})
	return string(body)
}

func TestGatewayModel_PredictDemand_Success(t *testing.T) {
	model := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body chatRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		assert.Equal(t, "test-model", body.Model)
		if !assert.Len(t, body.Messages, 2) || !assert.Len(t, body.Tools, 1) {
			return
		}
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Contains(t, body.Messages[1].Content, "Event type: wedding")
		assert.Contains(t, body.Messages[1].Content, "Expected attendees: 200")
		assert.Contains(t, body.Messages[1].Content, "Day of week: saturday")
		assert.Equal(t, predictionFunctionName, body.Tools[0].Function.Name)
		assert.Equal(t, "function", body.ToolChoice.Type)
		assert.Equal(t, predictionFunctionName, body.ToolChoice.Function.Name)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(toolCallResponse(`{"predicted_demand": 176, "confidence": 82, "recommendations": ["a", "b", "c"]}`)))
	})

	result, err := model.PredictDemand(context.Background(), weddingRequest)
	require.NoError(t, err)
	assert.Equal(t, 176.0, result.PredictedDemand)
	assert.Equal(t, 82.0, result.Confidence)
	assert.Equal(t, []string{"a", "b", "c"}, result.Recommendations)
}

func TestGatewayModel_PredictDemand_UpstreamStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"credits exhausted", http.StatusPaymentRequired, ErrCreditsExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error": "nope"}`))
			})

			_, err := model.PredictDemand(context.Background(), weddingRequest)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var upstream *UpstreamError
			require.True(t, errors.As(err, &upstream))
			assert.Equal(t, tt.status, upstream.StatusCode)
		})
	}

	t.Run("server error is generic", func(t *testing.T) {
		model := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := model.PredictDemand(context.Background(), weddingRequest)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrRateLimited)
		assert.NotErrorIs(t, err, ErrCreditsExhausted)
		assert.EqualError(t, err, "AI gateway error: 502")
	})
}

func TestGatewayModel_PredictDemand_NoToolCall(t *testing.T) {
	model := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"content": "I think about 160kg."}}]}`))
	})

	_, err := model.PredictDemand(context.Background(), weddingRequest)
	assert.ErrorIs(t, err, ErrNoToolCall)
}

func TestGatewayModel_PredictDemand_MalformedArguments(t *testing.T) {
	model := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(toolCallResponse(`{"predicted_demand": "lots"`)))
	})

	_, err := model.PredictDemand(context.Background(), weddingRequest)
	assert.ErrorIs(t, err, ErrMalformedPrediction)
}

func TestGatewayModel_PredictDemand_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	model := &GatewayModel{
		config: GatewayConfig{URL: url, APIKey: "k"},
		logger: zap.NewNop(),
	}
	require.NoError(t, model.Load(context.Background()))

	_, err := model.PredictDemand(context.Background(), weddingRequest)
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to send request")
}

func TestGatewayModel_NotLoaded(t *testing.T) {
	model := &GatewayModel{logger: zap.NewNop()}
	_, err := model.PredictDemand(context.Background(), weddingRequest)
	assert.EqualError(t, err, "model not loaded")
}

func TestGatewayConfig_Load(t *testing.T) {
	t.Setenv("AI_GATEWAY_URL", "")
	t.Setenv("AI_GATEWAY_MODEL", "")

	t.Run("from environment", func(t *testing.T) {
		t.Setenv("AI_GATEWAY_API_KEY", "env-key")
		cfg := GatewayConfig{}
		require.NoError(t, cfg.Load(zap.NewNop()))
		assert.Equal(t, "env-key", cfg.APIKey)
		assert.Equal(t, defaultGatewayURL, cfg.URL)
		assert.Equal(t, defaultGatewayModel, cfg.Model)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Setenv("AI_GATEWAY_API_KEY", "")
		cfg := GatewayConfig{}
		assert.EqualError(t, cfg.Load(zap.NewNop()), "AI_GATEWAY_API_KEY is not configured")
	})
}
