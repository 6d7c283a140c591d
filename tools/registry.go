package tools

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/parleyhq/parley/pkg/llmutils"
	"github.com/parleyhq/parley/pkg/metricskey"
)

var logger = xlog.NewPackageLogger("github.com/parleyhq/parley", "tools")

// DefaultToolTimeout bounds a single tool execution.
const DefaultToolTimeout = 30 * time.Second

// Registry maps tool names to callables. It is built once at construction
// and immutable afterwards, so concurrent reads need no locking.
type Registry struct {
	toolsByName map[string]ITool
	names       []string
	timeout     time.Duration
}

// RegistryOption is an option for the Registry.
type RegistryOption func(*Registry)

// WithToolTimeout sets the per-call execution timeout.
// Zero disables the timeout.
func WithToolTimeout(timeout time.Duration) RegistryOption {
	return func(r *Registry) {
		r.timeout = timeout
	}
}

// NewRegistry builds a registry from the given tools.
// Names are matched case-insensitively; duplicates are rejected.
func NewRegistry(list []ITool, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		toolsByName: make(map[string]ITool, len(list)),
		timeout:     DefaultToolTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, tool := range list {
		name := tool.Name()
		key := strings.ToLower(name)
		if r.toolsByName[key] != nil {
			return nil, errors.Newf("duplicate tool name: %s", name)
		}
		r.toolsByName[key] = tool
		r.names = append(r.names, name)
	}
	return r, nil
}

// Get returns the tool with the given name, or nil.
func (r *Registry) Get(name string) ITool {
	return r.toolsByName[strings.ToLower(name)]
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	return r.names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.toolsByName)
}

// Invoke looks up the named tool, parses the raw argument payload and
// dispatches the call. All failures are returned as *InvocationError;
// tool errors, panics and timeouts never propagate raw.
func (r *Registry) Invoke(ctx context.Context, name, argsJSON string) (string, error) {
	tool := r.Get(name)
	if tool == nil {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_not_found",
			"tool", name,
			"available_tools", strings.Join(r.names, ", "),
		)
		return "", &InvocationError{
			Kind:    KindNotFound,
			Tool:    name,
			Message: "tool not found, available tools: " + strings.Join(r.names, ", "),
		}
	}

	var args map[string]any
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(argsJSON)), &args); err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		return "", &InvocationError{
			Kind:    KindBadArguments,
			Tool:    name,
			Message: "arguments are not a JSON object: " + err.Error(),
		}
	}

	started := time.Now()
	res, err := r.call(ctx, tool, argsJSON)
	metricskey.PerfToolCall.MeasureSince(started, name)
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_call_failed",
			"tool", name,
			"err", err.Error(),
		)
		return "", &InvocationError{
			Kind:    KindExecutionFailed,
			Tool:    name,
			Message: err.Error(),
		}
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)
	return res, nil
}

// call runs the tool on its own goroutine so a blocking tool cannot stall
// the engine past the configured timeout.
func (r *Registry) call(ctx context.Context, tool ITool, argsJSON string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var res string
	var err error
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if rec := recover(); rec != nil {
				err = errors.Newf("tool panicked: %v", rec)
			}
		}()
		res, err = tool.Call(ctx, argsJSON)
	}()

	select {
	case <-done:
		return res, err
	case <-ctx.Done():
		return "", errors.Wrap(ctx.Err(), "tool execution aborted")
	}
}
