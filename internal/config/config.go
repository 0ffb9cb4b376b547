// Package config loads, validates, and locates juniorbot configuration.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:           5000,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Store: StoreConfig{
			Driver: "sqlite",
		},
		WhatsApp: WhatsAppConfig{
			BridgeURL:     "ws://127.0.0.1:3001/ws",
			BulkDelayMS:   5000,
			SendTimeoutMS: 30000,
		},
		Responder: ResponderConfig{
			Engine: "keywords",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
