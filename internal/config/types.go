package config

// Config is the root configuration for juniorbot.
type Config struct {
	Server    ServerConfig    `yaml:"server,omitempty"`
	Store     StoreConfig     `yaml:"store,omitempty"`
	WhatsApp  WhatsAppConfig  `yaml:"whatsapp,omitempty"`
	Responder ResponderConfig `yaml:"responder,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// ServerConfig controls the dashboard-facing HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// StoreConfig selects and locates the persistence backend.
type StoreConfig struct {
	Driver string `yaml:"driver,omitempty"` // "sqlite" | "memory"
	Path   string `yaml:"path,omitempty"`   // sqlite file; empty means <data>/juniorbot.db
}

// WhatsAppConfig controls the connection to the WhatsApp bridge and the
// outbound throttling knobs.
type WhatsAppConfig struct {
	BridgeURL     string `yaml:"bridgeUrl,omitempty"`     // ws:// or wss:// endpoint of the bridge sidecar
	BulkDelayMS   int    `yaml:"bulkDelayMs,omitempty"`   // pause between consecutive bulk sends
	SendTimeoutMS int    `yaml:"sendTimeoutMs,omitempty"` // per-send deadline; a timeout counts as failed
}

// ResponderConfig selects the automated-reply engine.
type ResponderConfig struct {
	Engine      string `yaml:"engine,omitempty"` // "keywords" | "openai"
	OpenAIKey   string `yaml:"openaiKey,omitempty"`
	OpenAIModel string `yaml:"openaiModel,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
}
