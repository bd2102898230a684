package transcription

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/c50bossio/6fb-workbook-api/internal/observability"
)

// Config defines configuration options for the Whisper transcriber.
type Config struct {
	APIKey string
	Model  string
	Logger zerolog.Logger
}

// WhisperTranscriber implements Transcriber against the OpenAI audio API.
type WhisperTranscriber struct {
	client *openai.Client
	cfg    Config
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewWhisperTranscriber builds a transcriber using the provided configuration.
func NewWhisperTranscriber(cfg Config) (*WhisperTranscriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}

	tracer := otel.Tracer("github.com/c50bossio/6fb-workbook-api/pkg/transcription")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &WhisperTranscriber{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger.With().Str("component", "transcription").Logger(),
	}, nil
}

// Transcribe submits the audio stream to the Whisper API and returns the transcript text.
func (t *WhisperTranscriber) Transcribe(parent context.Context, name string, reader io.Reader) (string, error) {
	ctx, span := t.tracer.Start(parent, "transcription.transcribe", trace.WithAttributes(
		attribute.String("model", t.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.AudioRequest{
		Model:    t.cfg.Model,
		FilePath: name,
		Reader:   reader,
	}

	resp, err := t.client.CreateTranscription(ctx, request)
	observability.TranscriptionLatency().Observe(time.Since(start).Seconds())
	if err != nil {
		observability.TranscriptionFailures().Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	t.logger.Info().Str("file", name).Int("chars", len(text)).Msg("audio transcribed")

	return text, nil
}
