package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/saurabhmj11/excel-mock-interviewer/internal/logger"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel      = "gemini-2.5-flash"
	defaultMaxRetries = 3
	defaultBackoff    = 2 * time.Second

	// Quota errors may suggest a retry delay. Anything above this cap is not
	// worth waiting for within an interactive session.
	maxQuotaDelay = 30 * time.Second
)

var wait = utils.WaitFor

var quotaDelayRe = regexp.MustCompile(`retry after (\d+)`)

// chatSession is the part of genai.Chat the generator uses.
type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// chatCreator is the part of genai.Chats the generator uses.
type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type genaiChats struct {
	chats *genai.Chats
}

func (g genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	return g.chats.Create(ctx, model, config, history)
}

// Generator wraps the Google GenAI client to provide prompt-based interactions
// with bounded retries. When a response schema is configured, the model is
// asked for an application/json response conforming to it.
type Generator struct {
	chats       chatCreator
	model       string
	maxRetries  int
	backoff     time.Duration
	temperature *float32
	schema      *genai.Schema
	logger      *zap.Logger
}

// Config controls the behaviour of a Generator.
type Config struct {
	Model       string
	MaxRetries  int
	Backoff     time.Duration
	Temperature *float32
	// ResponseSchema switches the generator into structured JSON output mode.
	ResponseSchema *genai.Schema
}

// NewClient creates the underlying genai client for the Gemini API backend.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return client, nil
}

// NewGenerator creates a Generator on top of an existing genai client. Several
// generators may share one client with different models or output modes. The
// provider and model are attached to every log entry the generator emits.
func NewGenerator(client *genai.Client, cfg Config, log *zap.Logger) (*Generator, error) {
	if client == nil {
		return nil, errors.New("genai client is required")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	return &Generator{
		chats:       genaiChats{chats: client.Chats},
		model:       model,
		maxRetries:  maxRetries,
		backoff:     backoff,
		temperature: cfg.Temperature,
		schema:      cfg.ResponseSchema,
		logger:      logger.WithCommonFields(log, "gemini", model),
	}, nil
}

// GenerateContent sends the message to Gemini and returns the first textual
// response. The system instruction may be empty.
func (g *Generator) GenerateContent(ctx context.Context, system, message string) (string, error) {
	if g == nil || g.chats == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("message must not be empty")
	}

	config := g.generateConfig(system)

	attempts := g.maxRetries
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		chat, err := g.chats.Create(ctx, g.model, config, nil)
		if err != nil {
			lastErr = fmt.Errorf("create chat: %w", err)
		} else {
			resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
			if err == nil {
				output := collectText(resp)
				if output == "" {
					return "", errors.New("gemini api returned empty response")
				}
				return output, nil
			}
			lastErr = err
		}

		delay, retryable := retryDelay(lastErr, g.backoff)
		if !retryable || attempt == attempts {
			break
		}

		g.logger.Debug("retrying gemini request",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)

		if err := wait(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("generate content: %w", lastErr)
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func (g *Generator) generateConfig(system string) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	if system = strings.TrimSpace(system); system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	if g.temperature != nil {
		config.Temperature = g.temperature
	}

	if g.schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = g.schema
	}

	return config
}

// retryDelay decides whether the error is worth retrying and how long to wait
// before the next attempt.
func retryDelay(err error, backoff time.Duration) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		// Transport-level errors (timeouts, resets) are worth one more try.
		return backoff, true
	}

	switch apiErr.Code {
	case http.StatusTooManyRequests:
		if delay, ok := suggestedDelay(apiErr.Message); ok {
			if delay > maxQuotaDelay {
				return 0, false
			}
			return delay, true
		}
		return backoff, true
	case http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return backoff, true
	default:
		return 0, false
	}
}

func suggestedDelay(message string) (time.Duration, bool) {
	match := quotaDelayRe.FindStringSubmatch(strings.ToLower(message))
	if len(match) != 2 {
		return 0, false
	}
	seconds, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}
