// Package genai is the thin adapter around the hosted generation
// service. it is the only place in the pipeline where the external
// model is invoked.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"personagen/internal/prompt"
	"personagen/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

type ErrorKind int

const (
	Timeout ErrorKind = iota
	QuotaExceeded
	ServiceError
)

func (k ErrorKind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case QuotaExceeded:
		return "quota_exceeded"
	case ServiceError:
		return "service_error"
	}
	return "unknown"
}

type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %s: %s", e.Kind, e.Err.Error())
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the pipeline driver may retry the request
// once with the same payload.
func (e *GenerationError) Retryable() bool {
	return e.Kind == Timeout || e.Kind == ServiceError
}

type Client struct {
	Http   *resty.Client
	models []string
}

type ClientOptions struct {
	// opaque API token, passed through as-is
	ApiKey string
	// defaults to the public Gemini endpoint
	BaseUrl string
	// tried in order until one produces a response
	Models []string
	// defaults to 60 seconds
	Timeout time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.ApiKey == "" {
		return nil, fmt.Errorf("generation service api key is required")
	}
	if opts.BaseUrl == "" {
		opts.BaseUrl = "https://generativelanguage.googleapis.com/v1beta"
	}
	if len(opts.Models) == 0 {
		opts.Models = []string{"gemini-1.5-pro", "gemini-1.5-flash"}
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 60
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetTimeout(opts.Timeout)
	client.SetHeader("x-goog-api-key", opts.ApiKey)
	client.SetHeader("content-type", "application/json")

	telemetry.InstrumentResty(client, "genai/http")

	return &Client{
		Http:   client,
		models: opts.Models,
	}, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the payload to the generation service and returns its
// raw text response. each configured model is tried in order before
// the error surfaces.
func (c *Client) Generate(ctx context.Context, payload prompt.Payload) (string, error) {
	var lastErr error
	for _, model := range c.models {
		text, err := c.generateWithModel(ctx, model, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var genErr *GenerationError
		if errors.As(err, &genErr) && genErr.Kind == QuotaExceeded {
			// quota applies to the key, not the model, so trying the
			// next model would just burn more of it
			break
		}
		slog.WarnContext(ctx, "model failed, trying next", "model", model, "err", err)
	}
	return "", lastErr
}

func (c *Client) generateWithModel(ctx context.Context, model string, payload prompt.Payload) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: payload.Text}}}},
	})
	if err != nil {
		return "", &GenerationError{Kind: ServiceError, Err: err}
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("/models/%s:generateContent", model))
	if err != nil {
		kind := ServiceError
		if isTimeout(err) {
			kind = Timeout
		}
		return "", &GenerationError{Kind: kind, Err: err}
	}

	switch {
	case res.StatusCode() == 429:
		return "", &GenerationError{Kind: QuotaExceeded, Err: fmt.Errorf("%s: %s", model, res.Status())}
	case res.IsError():
		return "", &GenerationError{Kind: ServiceError, Err: fmt.Errorf("%s: %s", model, res.Status())}
	}

	var decoded generateResponse
	if err := json.Unmarshal(res.Body(), &decoded); err != nil {
		return "", &GenerationError{Kind: ServiceError, Err: fmt.Errorf("parse %s response: %w", model, err)}
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", &GenerationError{Kind: ServiceError, Err: fmt.Errorf("%s returned no candidates", model)}
	}

	text := ""
	for _, p := range decoded.Candidates[0].Content.Parts {
		text += p.Text
	}
	slog.DebugContext(ctx, "generation succeeded", "model", model, "response_bytes", len(text))
	return text, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
