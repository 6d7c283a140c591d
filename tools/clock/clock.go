// Package clock provides a current-time tool with an enumerated
// format parameter, built with the declarative descriptor API.
package clock

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/parleyhq/parley/pkg/llmutils"
	"github.com/parleyhq/parley/schema"
	"github.com/parleyhq/parley/tools"
)

const ToolName = "current_time"

// Request represents the tool input.
type Request struct {
	Format   string `json:"format,omitempty"`
	Timezone string `json:"timezone"`
}

// Result represents the formatted current time.
type Result struct {
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
}

// Tool reports the current time in a given timezone.
type Tool struct {
	definition *schema.Definition
	now        func() time.Time
}

var _ tools.Tool[Request, Result] = (*Tool)(nil)

// New returns a current-time tool.
func New() (*Tool, error) {
	def := schema.NewDefinition(ToolName, "Report the current time in a given timezone.").
		Param("timezone", "str", "IANA timezone name, e.g. Europe/Paris.").
		Optional("format", "{'rfc3339', 'kitchen'}", "Output format, rfc3339 by default.")
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &Tool{
		definition: def,
		now:        time.Now,
	}, nil
}

// WithNow overrides the time source.
func (t *Tool) WithNow(now func() time.Time) *Tool {
	t.now = now
	return t
}

func (t *Tool) Name() string {
	return t.definition.Name
}

func (t *Tool) Description() string {
	return t.definition.Description
}

func (t *Tool) Parameters() any {
	return t.definition.Parameters
}

func (t *Tool) Run(ctx context.Context, req *Request) (*Result, error) {
	loc, err := time.LoadLocation(req.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown timezone %q", req.Timezone)
	}

	now := t.now().In(loc)
	var formatted string
	switch req.Format {
	case "", "rfc3339":
		formatted = now.Format(time.RFC3339)
	case "kitchen":
		formatted = now.Format(time.Kitchen)
	default:
		return nil, errors.Newf("unsupported format %q", req.Format)
	}

	return &Result{
		Time:     formatted,
		Timezone: req.Timezone,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req Request
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal input")
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}
