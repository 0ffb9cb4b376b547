package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_Defaults(t *testing.T) {
	cfg := Defaults()
	assert.Nil(t, Validate(&cfg))
}

func TestValidate_Issues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad driver", func(c *Config) { c.Store.Driver = "mongo" }, "store.driver"},
		{"bad bridge url", func(c *Config) { c.WhatsApp.BridgeURL = "http://x" }, "whatsapp.bridgeUrl"},
		{"negative delay", func(c *Config) { c.WhatsApp.BulkDelayMS = -1 }, "whatsapp.bulkDelayMs"},
		{"negative timeout", func(c *Config) { c.WhatsApp.SendTimeoutMS = -5 }, "whatsapp.sendTimeoutMs"},
		{"bad engine", func(c *Config) { c.Responder.Engine = "dialogflow" }, "responder.engine"},
		{"openai without key", func(c *Config) { c.Responder.Engine = "openai" }, "responder.openaiKey"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			issues := Validate(&cfg)
			if assert.Len(t, issues, 1) {
				assert.Equal(t, tt.path, issues[0].Path)
			}
		})
	}
}

func TestValidate_OpenAIWithKey(t *testing.T) {
	cfg := Defaults()
	cfg.Responder.Engine = "openai"
	cfg.Responder.OpenAIKey = "sk-abc"
	assert.Nil(t, Validate(&cfg))
}
