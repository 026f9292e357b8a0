package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	classifyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lotscout",
		Subsystem: "ai",
		Name:      "classification_duration_seconds",
		Help:      "Duration of model classification requests",
	}, []string{"model"})

	classifyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lotscout",
		Subsystem: "ai",
		Name:      "classification_failures_total",
		Help:      "Number of model classification failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI classifier.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIClassifier implements Classifier against the OpenAI chat completion API.
type OpenAIClassifier struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClassifier builds a new classifier using the provided configuration.
func NewOpenAIClassifier(cfg OpenAIConfig) (*OpenAIClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	tracer := otel.Tracer("github.com/lotscout/lotscout-go-api/pkg/ai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIClassifier{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Classify sends the listing to OpenAI and parses the structured verdict.
// Callers still own the guardrail pass; nothing here is trusted as-is.
func (c *OpenAIClassifier) Classify(parent context.Context, input ClassificationInput) (Classification, error) {
	ctx, span := c.tracer.Start(parent, "openai.classify", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: classifierSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildListingPrompt(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	classifyDuration.WithLabelValues(c.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		classifyFailures.WithLabelValues(c.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Classification{}, fmt.Errorf("openai classify: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		classifyFailures.WithLabelValues(c.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Classification{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := parseClassificationResponse(content)
	if err != nil {
		classifyFailures.WithLabelValues(c.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Classification{}, err
	}

	return result, nil
}

func classifierSystemPrompt() string {
	return "You are an auction vehicle inspector for a used-car dealer. Run six checkpoints against the listing: " +
		"1) no major mechanical damage; 2) price within the dealer budget when one is given; 3) make matches the dealer " +
		"preference when one is given; 4) mileage is reasonable for the age; 5) projected profit margin exceeds £1000 " +
		"after repairs; 6) no hidden red flags in the condition notes. Respond with a JSON object containing verdict " +
		"(HEALTHY or AVOID), fault_type (None, Battery, Tyre, Keys, Mechanical, Electrical or Unknown), reason, " +
		"risk_score (0-100), confidence (0-100), repair_cost_gbp, profit_potential_gbp, checkpoint_passed (boolean), " +
		"preference_match_score (0-100) and quality_flags (array of strings)."
}

func buildListingPrompt(input ClassificationInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Listing\n")
	fmt.Fprintf(&builder, "Make: %s\nModel: %s\nYear: %d\nPrice: £%.0f\n", input.Make, input.Model, input.Year, input.PriceGBP)
	if input.Mileage != nil {
		fmt.Fprintf(&builder, "Mileage: %d\n", *input.Mileage)
	} else {
		builder.WriteString("Mileage: unknown\n")
	}
	builder.WriteString("\n## Condition Notes\n")
	builder.WriteString(input.Condition)

	if input.MaxBudgetGBP > 0 || input.MaxMileage > 0 || input.MinYear > 0 || len(input.PreferredMakes) > 0 {
		builder.WriteString("\n\n## Dealer Context\n")
		if input.MaxBudgetGBP > 0 {
			fmt.Fprintf(&builder, "Max budget: £%.0f\n", input.MaxBudgetGBP)
		}
		if input.MaxMileage > 0 {
			fmt.Fprintf(&builder, "Max mileage: %d\n", input.MaxMileage)
		}
		if input.MinYear > 0 {
			fmt.Fprintf(&builder, "Min year: %d\n", input.MinYear)
		}
		if len(input.PreferredMakes) > 0 {
			fmt.Fprintf(&builder, "Preferred makes: %s\n", strings.Join(input.PreferredMakes, ", "))
		}
	}

	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseClassificationResponse(content string) (Classification, error) {
	var data Classification
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return Classification{}, fmt.Errorf("parse classification json: %w", err)
	}
	return data, nil
}
