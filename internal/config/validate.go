package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks that the settings a command mode needs are present and in
// range. Modes: "serve" (HTTP API), "cli" (one-shot commands), "suggest"
// (pattern suggestion via Anthropic).
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required")
	}

	switch c.OCR.Provider {
	case "", "native", "local":
	case "mistral":
		if c.OCR.MistralKey == "" {
			problems = append(problems, "ocr.mistral_api_key is required for the mistral provider")
		}
	default:
		problems = append(problems, "ocr.provider must be native, local, or mistral")
	}

	if c.Extract.MinConfidence < 0 || c.Extract.MinConfidence > 1 {
		problems = append(problems, "extract.min_confidence must be between 0 and 1")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
	case "cli":
	case "suggest":
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}
