// Package toolbox implements the conversation engine: a completion loop
// that dispatches model-requested tool calls and feeds the results back
// until the model produces a plain answer.
package toolbox

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/parleyhq/parley/pkg/backend"
	"github.com/parleyhq/parley/pkg/chat"
	"github.com/parleyhq/parley/pkg/llmutils"
	"github.com/parleyhq/parley/pkg/metricskey"
	"github.com/parleyhq/parley/schema"
	"github.com/parleyhq/parley/tools"
)

var logger = xlog.NewPackageLogger("github.com/parleyhq/parley", "toolbox")

// Toolbox drives conversations against a chat completion backend,
// executing tool calls requested by the model.
type Toolbox struct {
	client   *backend.Client
	registry *tools.Registry
	catalog  []chat.Tool
	cfg      *Config
}

// New creates a Toolbox over the given backend client and tools.
// Descriptor generation is fail-fast: a tool with an invalid descriptor
// fails construction rather than a later call.
func New(client *backend.Client, list []tools.ITool, opts ...Option) (*Toolbox, error) {
	cfg := NewConfig(opts...)
	if cfg.SystemPrompt == "" {
		logger.KV(xlog.WARNING,
			"status", "no_system_prompt",
			"msg", "no system prompt configured, was this deliberate?",
		)
	}

	registry, err := tools.NewRegistry(list, tools.WithToolTimeout(cfg.ToolTimeout))
	if err != nil {
		return nil, err
	}

	catalog, err := buildCatalog(list)
	if err != nil {
		return nil, err
	}

	return &Toolbox{
		client:   client,
		registry: registry,
		catalog:  catalog,
		cfg:      cfg,
	}, nil
}

func buildCatalog(list []tools.ITool) ([]chat.Tool, error) {
	catalog := make([]chat.Tool, 0, len(list))
	for _, tool := range list {
		name := tool.Name()
		if name == "" {
			return nil, errors.WithMessage(schema.ErrSchemaGeneration, "tool has no name")
		}
		params := tool.Parameters()
		if params == nil {
			return nil, errors.WithMessagef(schema.ErrSchemaGeneration, "tool %s has no parameters schema", name)
		}
		catalog = append(catalog, chat.Tool{
			Type: "function",
			Function: &chat.FunctionDefinition{
				Name:        name,
				Description: tool.Description(),
				Parameters:  params,
			},
		})
	}
	return catalog, nil
}

// Catalog returns the tool descriptors attached to backend requests.
func (t *Toolbox) Catalog() []chat.Tool {
	return t.catalog
}

// Registry returns the tool registry.
func (t *Toolbox) Registry() *tools.Registry {
	return t.registry
}

// GetResponse runs the completion loop on conv until the model returns a
// message without tool calls, then returns that final backend response.
// conv is mutated in place: assistant and tool messages are appended as
// the loop progresses, so the caller sees the full transcript afterwards.
func (t *Toolbox) GetResponse(ctx context.Context, conv *chat.Conversation) (*chat.Response, error) {
	model := t.client.Model
	started := time.Now()
	defer metricskey.PerfChatCall.MeasureSince(started, model)

	resp, err := t.run(ctx, conv)
	if err != nil {
		metricskey.StatsChatCallsFailed.IncrCounter(1, model)
		return nil, err
	}
	metricskey.StatsChatCallsSucceeded.IncrCounter(1, model)
	return resp, nil
}

func (t *Toolbox) run(ctx context.Context, conv *chat.Conversation) (*chat.Response, error) {
	conv.Normalize(t.cfg.SystemPrompt)
	model := t.client.Model

	for turn := 0; ; turn++ {
		if turn >= t.cfg.MaxTurns {
			return nil, errors.Newf("conversation exceeded %d turns without a final answer", t.cfg.MaxTurns)
		}
		if size := llmutils.CountMessagesContentSize(conv.Messages()); size > t.cfg.MaxContentSize {
			return nil, errors.Newf("conversation content size %d exceeds limit %d", size, t.cfg.MaxContentSize)
		}

		req := &chat.Request{
			Messages: conv.Messages(),
			N:        1,
		}
		// After tool results the model must answer from them; offering the
		// catalog again invites an infinite call chain.
		if last := conv.Last(); len(t.catalog) > 0 && (last == nil || last.Role != chat.RoleTool) {
			req.Tools = t.catalog
			req.ToolChoice = "auto"
		}

		metricskey.StatsChatMessagesSent.IncrCounter(float64(conv.Len()), model)
		metricskey.StatsChatBytesSent.IncrCounter(float64(llmutils.CountMessagesContentSize(conv.Messages())), model)

		resp, err := t.client.CreateChat(ctx, req)
		if err != nil {
			return nil, err
		}

		msg := resp.Choices[0].Message
		conv.Append(msg)
		if len(msg.ToolCalls) == 0 {
			return resp, nil
		}

		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "tool_calls_requested",
			"turn", turn,
			"count", len(msg.ToolCalls),
		)
		if err := t.executeToolCalls(ctx, conv, msg.ToolCalls); err != nil {
			return nil, err
		}
	}
}

// executeToolCalls runs the requested calls strictly in request order.
// Execution is sequential: the transcript is linear and every tool message
// must land in a deterministic position.
func (t *Toolbox) executeToolCalls(ctx context.Context, conv *chat.Conversation, toolCalls []chat.ToolCall) error {
	for idx, tc := range toolCalls {
		if tc.Function == nil {
			return errors.Newf("tool call %d has no function", idx)
		}
		name := tc.Function.Name
		args := tc.Function.Arguments

		if t.cfg.Callback != nil {
			if tool := t.registry.Get(name); tool != nil {
				t.cfg.Callback.OnToolStart(ctx, tool, args)
			}
		}

		res, err := t.registry.Invoke(ctx, name, args)
		if err != nil {
			if t.cfg.Callback != nil {
				if tool := t.registry.Get(name); tool != nil {
					t.cfg.Callback.OnToolError(ctx, tool, args, err)
				}
			}
			// The model sees the structured failure either way; on fail-fast
			// it lands in the transcript but the call chain stops here.
			payload := err.Error()
			var invErr *tools.InvocationError
			if errors.As(err, &invErr) {
				payload = invErr.Payload()
			}
			conv.Append(chat.ToolMessage(tc.ID, name, payload))
			if t.cfg.FailOnToolError {
				return errors.WithMessagef(err, "tool call %s failed", tc.ID)
			}
			continue
		}

		if t.cfg.Callback != nil {
			if tool := t.registry.Get(name); tool != nil {
				t.cfg.Callback.OnToolEnd(ctx, tool, args, res)
			}
		}
		conv.Append(chat.ToolMessage(tc.ID, name, res))
	}
	return nil
}
