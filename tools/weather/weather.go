// Package weather provides a weather lookup tool backed by a static
// conditions table, useful for demos and tests.
package weather

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/parleyhq/parley/pkg/llmutils"
	"github.com/parleyhq/parley/schema"
	"github.com/parleyhq/parley/tools"
)

const ToolName = "lookup"

// LookupRequest represents the tool input.
type LookupRequest struct {
	City string `json:"city" jsonschema:"description=The city to look up the weather for."`
}

// LookupResult represents the weather conditions for a city.
type LookupResult struct {
	City       string `json:"city"`
	Conditions string `json:"conditions"`
}

// Tool is a tool that reports current weather conditions for a city.
type Tool struct {
	name        string
	description string
	funcParams  any

	conditions map[string]string
}

var _ tools.Tool[LookupRequest, LookupResult] = (*Tool)(nil)

var defaultConditions = map[string]string{
	"lyon":   "Sunny, 24C",
	"paris":  "Overcast, 18C",
	"berlin": "Light rain, 15C",
	"oslo":   "Clear, 9C",
}

// New returns a weather lookup tool.
func New() (*Tool, error) {
	params, err := schema.FromType(reflect.TypeOf(LookupRequest{}))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create weather tool schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Look up the current weather conditions for a city.",
		funcParams:  params,
		conditions:  defaultConditions,
	}, nil
}

// WithConditions replaces the conditions table.
func (t *Tool) WithConditions(conditions map[string]string) *Tool {
	t.conditions = conditions
	return t
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() any {
	return t.funcParams
}

func (t *Tool) Run(ctx context.Context, req *LookupRequest) (*LookupResult, error) {
	if req.City == "" {
		return nil, errors.New("invalid request: empty city")
	}
	conditions, ok := t.conditions[strings.ToLower(req.City)]
	if !ok {
		return nil, errors.Newf("no weather data for %q", req.City)
	}
	return &LookupResult{
		City:       req.City,
		Conditions: conditions,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req LookupRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal input")
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}
