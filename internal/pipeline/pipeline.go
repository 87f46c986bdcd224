// Package pipeline wires the stages together: fetch, aggregate, build
// prompt, generate, parse, render. control flow is strictly sequential
// per run and every stage hands an immutable value forward.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"personagen/internal/genai"
	"personagen/internal/persona"
	"personagen/internal/prompt"
	"personagen/internal/render"
	"personagen/internal/signals"
	"personagen/lib/scrapers/reddit"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("personagen.pipeline")

// ProfileSource is the scraping side of the pipeline. satisfied by
// *reddit.Client.
type ProfileSource interface {
	GetProfile(ctx context.Context, username string) (reddit.ProfileRecord, error)
	GetActivity(ctx context.Context, username string, limit int) ([]reddit.ActivityItem, error)
}

// Generator is the generation side. satisfied by *genai.Client.
type Generator interface {
	Generate(ctx context.Context, payload prompt.Payload) (string, error)
}

type Options struct {
	Source    ProfileSource
	Generator Generator

	// profile URL or bare handle
	ProfileRef string
	// max posts/comments to analyze
	Limit int
	// output format
	Format render.Format

	// the reference time for age bucketing, defaults to time.Now
	Now time.Time
}

type Result struct {
	Persona persona.Persona
	Output  []byte
}

func Run(ctx context.Context, opts Options) (Result, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	fail := func(stage string, err error) (Result, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, stage)
		return Result{}, fmt.Errorf("%s: %w", stage, err)
	}

	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	username, err := reddit.ExtractUsername(opts.ProfileRef)
	if err != nil {
		return fail("resolve profile reference", err)
	}
	slog.InfoContext(ctx, "analyzing user", "username", username)

	profile, err := opts.Source.GetProfile(ctx, username)
	if err != nil {
		return fail("fetch profile", err)
	}

	items, err := opts.Source.GetActivity(ctx, username, opts.Limit)
	if err != nil {
		return fail("fetch activity", err)
	}
	slog.InfoContext(ctx, "fetched activity", "items", len(items))

	behavior, err := signals.Aggregate(profile, items, opts.Now)
	if err != nil {
		return fail("aggregate signals", err)
	}

	payload, err := prompt.Build(behavior)
	if err != nil {
		return fail("build prompt", err)
	}
	slog.DebugContext(ctx, "built prompt", "bytes", len(payload.Text))

	raw, err := generateWithRetry(ctx, opts.Generator, payload)
	if err != nil {
		return fail("generate persona", err)
	}

	p := persona.Parse(raw, behavior)
	for _, warning := range p.Warnings {
		slog.WarnContext(ctx, "persona field defaulted", "warning", warning)
	}

	output, err := render.Render(p, opts.Format)
	if err != nil {
		return fail("render persona", err)
	}

	return Result{Persona: p, Output: output}, nil
}

// generateWithRetry retries the generation call exactly once with the
// same payload when the failure is transient.
func generateWithRetry(ctx context.Context, gen Generator, payload prompt.Payload) (string, error) {
	raw, err := gen.Generate(ctx, payload)
	if err == nil {
		return raw, nil
	}

	var genErr *genai.GenerationError
	if !errors.As(err, &genErr) || !genErr.Retryable() {
		return "", err
	}

	slog.WarnContext(ctx, "generation failed, retrying once", "err", err)
	return gen.Generate(ctx, payload)
}
