package toolbox

import (
	"time"

	"github.com/parleyhq/parley/tools"
)

const (
	// DefaultMaxTurns bounds the completion/tool-execution loop; the model
	// alone does not guarantee termination.
	DefaultMaxTurns = 10
	// DefaultMaxContentSize bounds the total conversation content sent
	// to the backend.
	DefaultMaxContentSize = uint64(512 * 1024)
)

// Config holds the engine settings.
type Config struct {
	// SystemPrompt is inserted at position 0 of every conversation.
	SystemPrompt string

	// FailOnToolError makes a failed tool call terminal for the whole
	// get-response call instead of being surfaced to the model.
	FailOnToolError bool

	// FanoutFailFast fails a whole fan-out call when any branch errors;
	// otherwise failed branches are represented as error choices.
	FanoutFailFast bool

	// MaxTurns is the maximum number of backend round trips per call.
	MaxTurns int

	// MaxContentSize is the conversation content size limit in bytes.
	MaxContentSize uint64

	// ToolTimeout bounds a single tool execution.
	ToolTimeout time.Duration

	// Callback receives tool execution events.
	Callback tools.Callback
}

// Option is a function that modifies the engine Config.
type Option func(*Config)

// NewConfig creates a Config from the options.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		MaxTurns:       DefaultMaxTurns,
		MaxContentSize: DefaultMaxContentSize,
		ToolTimeout:    tools.DefaultToolTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithSystemPrompt sets the system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *Config) {
		c.SystemPrompt = prompt
	}
}

// WithFailOnToolError makes tool failures terminal.
func WithFailOnToolError(fail bool) Option {
	return func(c *Config) {
		c.FailOnToolError = fail
	}
}

// WithFanoutFailFast sets the fan-out aggregation policy.
func WithFanoutFailFast(failFast bool) Option {
	return func(c *Config) {
		c.FanoutFailFast = failFast
	}
}

// WithMaxTurns sets the backend round-trip limit.
func WithMaxTurns(maxTurns int) Option {
	return func(c *Config) {
		c.MaxTurns = maxTurns
	}
}

// WithMaxContentSize sets the conversation content size limit.
func WithMaxContentSize(size uint64) Option {
	return func(c *Config) {
		c.MaxContentSize = size
	}
}

// WithToolTimeout sets the per-tool execution timeout.
func WithToolTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.ToolTimeout = timeout
	}
}

// WithCallback sets a custom tool execution callback.
func WithCallback(callback tools.Callback) Option {
	return func(c *Config) {
		c.Callback = callback
	}
}
