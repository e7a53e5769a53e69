package genai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tbu-portal/tbu-chatbot-go/internal/logger"
	"github.com/tbu-portal/tbu-chatbot-go/internal/metrics"
)

// ErrDisabled is returned when no provider is configured.
var ErrDisabled = errors.New("generative fallback is disabled")

// Config holds provider credentials and the fallback order.
type Config struct {
	// Providers is the ordered list of providers to try.
	Providers []Provider

	GeminiAPIKey string
	GeminiModel  string

	GroqAPIKey string
	GroqModel  string

	// RequestTimeout bounds each provider attempt. Zero means
	// DefaultRequestTimeout.
	RequestTimeout time.Duration
}

// DefaultRequestTimeout bounds a single provider call.
const DefaultRequestTimeout = 20 * time.Second

// Responder tries configured providers in order until one answers.
type Responder struct {
	clients []ChatClient
	metrics *metrics.Metrics
	logger  *logger.Logger
	timeout time.Duration
}

// NewResponder builds the provider chain from the configuration.
// Providers without an API key are skipped. Returns a disabled
// responder (IsEnabled() == false) when no provider is configured.
func NewResponder(ctx context.Context, cfg Config, m *metrics.Metrics, log *logger.Logger) (*Responder, error) {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r := &Responder{
		metrics: m,
		logger:  log,
		timeout: timeout,
	}

	for _, p := range cfg.Providers {
		switch p {
		case ProviderGemini:
			client, err := newGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				return nil, fmt.Errorf("gemini client: %w", err)
			}
			if client != nil {
				r.clients = append(r.clients, client)
			}
		case ProviderGroq:
			client, err := newOpenAIClient(p, cfg.GroqAPIKey, cfg.GroqModel)
			if err != nil {
				return nil, fmt.Errorf("groq client: %w", err)
			}
			if client != nil {
				r.clients = append(r.clients, client)
			}
		default:
			return nil, fmt.Errorf("unknown provider: %s", p)
		}
	}

	if log != nil {
		log.WithField("providers", len(r.clients)).Info("generative fallback configured")
	}
	return r, nil
}

// newResponderWithClients is used by tests to inject fake providers.
func newResponderWithClients(clients []ChatClient, m *metrics.Metrics, timeout time.Duration) *Responder {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Responder{clients: clients, metrics: m, timeout: timeout}
}

// IsEnabled returns true when at least one provider is configured.
func (r *Responder) IsEnabled() bool {
	return r != nil && len(r.clients) > 0
}

// Respond generates an answer, falling through the provider chain on
// errors. Returns ErrDisabled when no provider is configured and the
// last provider's error when all attempts fail.
func (r *Responder) Respond(ctx context.Context, req Request) (string, error) {
	if !r.IsEnabled() {
		return "", ErrDisabled
	}

	var lastErr error
	for _, client := range r.clients {
		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		start := time.Now()
		answer, err := client.Generate(attemptCtx, req)
		cancel()
		duration := time.Since(start).Seconds()

		if err != nil {
			if r.metrics != nil {
				r.metrics.RecordLLMRequest(client.Provider().String(), "error", duration)
			}
			if r.logger != nil {
				r.logger.WithError(err).
					WithField("provider", client.Provider().String()).
					Warn("provider failed, trying next")
			}
			lastErr = err
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}

		if r.metrics != nil {
			r.metrics.RecordLLMRequest(client.Provider().String(), "success", duration)
		}
		return answer, nil
	}

	return "", fmt.Errorf("all providers failed: %w", lastErr)
}

// Close releases all provider clients.
func (r *Responder) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, client := range r.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
