// Package render projects a Persona into its output formats. all three
// formats are produced from the same value; the visual encodings in the
// html view are pure functions of the underlying scores, so rendering
// is fully deterministic.
package render

import (
	"encoding/json"
	"fmt"

	"personagen/internal/persona"
)

type Format string

const (
	FormatText Format = "text"
	FormatJson Format = "json"
	FormatHtml Format = "html"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJson, FormatHtml:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown output format: %q (expected text, json or html)", s)
}

func Render(p persona.Persona, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return renderText(p)
	case FormatJson:
		return renderJson(p)
	case FormatHtml:
		return renderHtml(p)
	}
	return nil, fmt.Errorf("unknown output format: %q", format)
}

// json is the canonical machine-consumable representation. field order
// comes from the struct declaration and stays stable across runs.
func renderJson(p persona.Persona) ([]byte, error) {
	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
