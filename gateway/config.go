package gateway

import (
	"github.com/effective-security/x/configloader"
	"github.com/effective-security/x/values"
)

// Config is the gateway service configuration.
type Config struct {
	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	// RootURL is the base URL of the OpenAI-compatible backend.
	RootURL string `json:"root_url,omitempty" yaml:"root_url,omitempty"`
	// Model is the model requested from the backend and advertised
	// on the models endpoint.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// APIKey is the bearer token for the backend. Local backends
	// usually accept any value.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// ModelOwner is reported as the owner on the models endpoint.
	ModelOwner string `json:"model_owner,omitempty" yaml:"model_owner,omitempty"`
	// SystemPrompt is inserted at position 0 of every conversation.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	// FailOnToolError makes tool failures terminal for the call.
	FailOnToolError bool `json:"fail_on_tool_error,omitempty" yaml:"fail_on_tool_error,omitempty"`
	// FanoutFailFast fails a whole n>1 completion when any branch errors.
	FanoutFailFast bool `json:"fanout_fail_fast,omitempty" yaml:"fanout_fail_fast,omitempty"`
	// MaxTurns bounds backend round trips per completion call.
	MaxTurns int `json:"max_turns,omitempty" yaml:"max_turns,omitempty"`
}

const (
	// DefaultListenAddr is used when no listen address is configured.
	DefaultListenAddr = ":8000"
	// DefaultAPIKey is sent to backends that do not check credentials.
	DefaultAPIKey = "no-key-needed"
)

// LoadConfig loads the configuration from a YAML or JSON file,
// expanding environment variables. An empty file name yields defaults.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file != "" {
		if err := configloader.UnmarshalAndExpand(file, cfg); err != nil {
			return nil, err
		}
	}
	cfg.ListenAddr = values.StringsCoalesce(cfg.ListenAddr, DefaultListenAddr)
	cfg.APIKey = values.StringsCoalesce(cfg.APIKey, DefaultAPIKey)
	cfg.ModelOwner = values.StringsCoalesce(cfg.ModelOwner, "unknown")
	return cfg, nil
}
