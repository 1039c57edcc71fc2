package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yanqian/surf-report/internal/infra/llm/chatgpt"
	"github.com/yanqian/surf-report/internal/infra/llm/gemini"
	apperrors "github.com/yanqian/surf-report/pkg/errors"
	"github.com/yanqian/surf-report/pkg/metrics"
)

// Service composes weekend surf reports.
type Service interface {
	Compose(ctx context.Context, in Input) (Output, error)
}

// OpenAIClient is the subset of the OpenAI API the composer calls.
type OpenAIClient interface {
	CreateResponse(ctx context.Context, req chatgpt.ResponseRequest) (chatgpt.Response, error)
}

// GoogleClient is the subset of the Gemini API the composer calls.
type GoogleClient interface {
	GenerateContent(ctx context.Context, model string, req gemini.GenerateContentRequest) (gemini.GenerateContentResponse, error)
}

// TokenCounter measures prompt size before dispatch.
type TokenCounter interface {
	Count(text string) int
}

type service struct {
	cfg     Config
	openai  OpenAIClient
	google  GoogleClient
	counter TokenCounter
	logger  *slog.Logger
}

// NewService wires the composer. counter may be nil.
func NewService(cfg Config, openai OpenAIClient, google GoogleClient, counter TokenCounter, logger *slog.Logger) Service {
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 1500
	}
	if cfg.PreviewChars <= 0 {
		cfg.PreviewChars = 200
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gpt-4o"
	}
	return &service{
		cfg:     cfg,
		openai:  openai,
		google:  google,
		counter: counter,
		logger:  logger.With("component", "report.service"),
	}
}

type generation struct {
	text  string
	found bool
	usage metrics.TokenUsage
}

func (s *service) Compose(ctx context.Context, in Input) (Output, error) {
	ctx, span := otel.Tracer("surf-report/report").Start(ctx, "report.Compose")
	defer span.End()

	model := strings.TrimSpace(in.Model)
	if model == "" {
		model = s.cfg.DefaultModel
	}
	profile, err := LookupProfile(model)
	if err != nil {
		return Output{}, err
	}
	temperature := s.cfg.DefaultTemperature
	if in.Temperature != nil {
		temperature = *in.Temperature
	}
	if temperature < 0 || temperature > 1 {
		return Output{}, apperrors.Wrap(apperrors.CodeInvalidInput, "temperature must be between 0 and 1", nil)
	}

	prompt := BuildPrompt(in.Spots, in.Forecast, in.Query, s.cfg.PreviewChars)
	promptTokens := 0
	if s.counter != nil {
		promptTokens = s.counter.Count(prompt)
	}
	span.SetAttributes(
		attribute.String("report.model", profile.ID),
		attribute.Int("report.prompt_tokens", promptTokens),
	)

	genCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	var gen generation
	switch profile.Provider {
	case ProviderOpenAI:
		gen, err = s.generateOpenAI(genCtx, profile, prompt, in.Query, temperature)
	case ProviderGoogle:
		gen, err = s.generateGoogle(genCtx, profile, prompt, in.Query, temperature)
	default:
		err = fmt.Errorf("no client for provider %q", profile.Provider)
	}
	if err != nil {
		return Output{}, apperrors.WrapUpstream(apperrors.CodeLLM, fmt.Sprintf("%s generation failed", profile.ID), err)
	}

	usage := gen.usage
	if usage.IsZero() && promptTokens > 0 {
		usage = metrics.Estimate(promptTokens)
	}
	out := Output{
		Text:         gen.text,
		Empty:        strings.TrimSpace(gen.text) == "",
		Model:        profile.ID,
		PromptTokens: promptTokens,
		TokenUsage:   usage,
	}
	if out.Empty {
		s.logger.Warn("generation returned no text", "model", profile.ID, "message_found", gen.found)
	}
	s.logger.Info("report composed",
		"model", profile.ID,
		"spots", len(in.Spots),
		"days", in.Forecast.Len(),
		"prompt_tokens", promptTokens,
		"total_tokens", usage.TotalTokens,
	)
	return out, nil
}

func (s *service) generateOpenAI(ctx context.Context, p ModelProfile, prompt, query string, temperature float64) (generation, error) {
	if s.openai == nil {
		return generation{}, errors.New("openai client not configured")
	}
	req := chatgpt.ResponseRequest{
		Model: p.ID,
		Input: []chatgpt.InputItem{
			chatgpt.TextInput(p.InstructionRole, prompt),
			chatgpt.TextInput("user", query),
		},
		Text:  &chatgpt.TextConfig{Format: chatgpt.TextFormat{Type: "text"}},
		Store: false,
	}
	if p.ReasoningEffort != "" {
		req.Reasoning = &chatgpt.Reasoning{Effort: p.ReasoningEffort}
	}
	if p.SupportsTemperature {
		req.Temperature = &temperature
	}
	if p.SupportsTopP {
		topP := 1.0
		req.TopP = &topP
	}
	if p.SupportsMaxOutputTokens {
		maxTokens := s.cfg.MaxOutputTokens
		req.MaxOutputTokens = &maxTokens
	}

	resp, err := s.openai.CreateResponse(ctx, req)
	if err != nil {
		return generation{}, err
	}
	text, found := resp.MessageText()
	gen := generation{text: text, found: found}
	if resp.Usage != nil {
		gen.usage = metrics.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return gen, nil
}

func (s *service) generateGoogle(ctx context.Context, p ModelProfile, prompt, query string, temperature float64) (generation, error) {
	if s.google == nil {
		return generation{}, errors.New("gemini client not configured")
	}
	req := gemini.GenerateContentRequest{SafetySettings: gemini.RelaxedSafety}
	if p.InstructionRole != "" {
		instruction := gemini.TextContent("", prompt)
		req.SystemInstruction = &instruction
		req.Contents = []gemini.Content{gemini.TextContent("user", query)}
	} else {
		req.Contents = []gemini.Content{gemini.TextContent("user", prompt)}
	}

	cfg := gemini.GenerationConfig{}
	if p.SupportsTemperature {
		cfg.Temperature = &temperature
	}
	if p.SupportsTopP {
		topP := 1.0
		cfg.TopP = &topP
	}
	if p.SupportsMaxOutputTokens {
		maxTokens := s.cfg.MaxOutputTokens
		cfg.MaxOutputTokens = &maxTokens
	}
	if cfg.Temperature != nil || cfg.TopP != nil || cfg.MaxOutputTokens != nil {
		req.GenerationConfig = &cfg
	}

	resp, err := s.google.GenerateContent(ctx, p.ID, req)
	if err != nil {
		return generation{}, err
	}
	text, found := resp.Text()
	gen := generation{text: text, found: found}
	if resp.UsageMetadata != nil {
		gen.usage = metrics.TokenUsage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}
	return gen, nil
}
