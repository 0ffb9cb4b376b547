package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "server.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Server.Port),
		})
	}

	validDrivers := []string{"sqlite", "memory"}
	if cfg.Store.Driver != "" && !slices.Contains(validDrivers, cfg.Store.Driver) {
		issues = append(issues, ValidationIssue{
			Path:    "store.driver",
			Message: fmt.Sprintf("must be one of %v, got %q", validDrivers, cfg.Store.Driver),
		})
	}

	if u := cfg.WhatsApp.BridgeURL; u != "" &&
		!strings.HasPrefix(u, "ws://") && !strings.HasPrefix(u, "wss://") {
		issues = append(issues, ValidationIssue{
			Path:    "whatsapp.bridgeUrl",
			Message: fmt.Sprintf("must be a ws:// or wss:// URL, got %q", u),
		})
	}

	if cfg.WhatsApp.BulkDelayMS < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "whatsapp.bulkDelayMs",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.WhatsApp.BulkDelayMS),
		})
	}

	if cfg.WhatsApp.SendTimeoutMS < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "whatsapp.sendTimeoutMs",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.WhatsApp.SendTimeoutMS),
		})
	}

	validEngines := []string{"keywords", "openai"}
	if cfg.Responder.Engine != "" && !slices.Contains(validEngines, cfg.Responder.Engine) {
		issues = append(issues, ValidationIssue{
			Path:    "responder.engine",
			Message: fmt.Sprintf("must be one of %v, got %q", validEngines, cfg.Responder.Engine),
		})
	}

	if cfg.Responder.Engine == "openai" && cfg.Responder.OpenAIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "responder.openaiKey",
			Message: "required when responder.engine is \"openai\"",
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	return issues
}
