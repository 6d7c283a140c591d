package toolbox

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/parleyhq/parley/pkg/chat"
	"github.com/parleyhq/parley/pkg/llmutils"
	"github.com/parleyhq/parley/pkg/metricskey"
	"golang.org/x/sync/errgroup"
)

// GetNResponses runs n independent completion call chains over clones of
// conv and merges them into a single response: the choice at index i comes
// from branch i, the envelope metadata from the first completed branch.
//
// By default a failed branch becomes an error choice so the other branches
// still return; with FanoutFailFast any branch failure fails the call.
// All branches run to completion either way, there is no cross-branch
// cancellation.
func (t *Toolbox) GetNResponses(ctx context.Context, conv *chat.Conversation, n int) (*chat.Response, error) {
	if n < 1 {
		return nil, errors.Newf("invalid n: %d", n)
	}
	if n == 1 {
		return t.GetResponse(ctx, conv)
	}

	results := make([]*chat.Response, n)
	branchErrs := make([]error, n)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		branch := conv.Clone()
		g.Go(func() error {
			resp, err := t.GetResponse(ctx, branch)
			results[i], branchErrs[i] = resp, err
			return err
		})
	}
	err := g.Wait()

	if err != nil {
		failed := 0
		for _, berr := range branchErrs {
			if berr != nil {
				failed++
			}
		}
		metricskey.StatsFanoutBranchesFailed.IncrCounter(float64(failed), t.client.Model)
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "fanout_branches_failed",
			"failed", failed,
			"n", n,
		)
		if t.cfg.FanoutFailFast {
			return nil, errors.WithMessage(err, "fan-out failed")
		}
	}

	return t.mergeBranches(results, branchErrs), nil
}

func (t *Toolbox) mergeBranches(results []*chat.Response, branchErrs []error) *chat.Response {
	merged := &chat.Response{
		Object: "chat.completion",
		Model:  t.client.Model,
	}
	for _, res := range results {
		if res != nil {
			merged.ID = res.ID
			merged.Object = res.Object
			merged.Created = res.Created
			merged.Model = res.Model
			break
		}
	}
	// Every branch failed under the default policy; synthesize the envelope.
	if merged.ID == "" {
		merged.ID = "chatcmpl-" + uuid.NewString()
		merged.Created = time.Now().Unix()
	}

	merged.Choices = make([]chat.Choice, len(results))
	for i, res := range results {
		if branchErrs[i] != nil {
			merged.Choices[i] = chat.Choice{
				Index:        i,
				Message:      chat.AssistantMessage(llmutils.ToJSON(map[string]string{"error": branchErrs[i].Error()})),
				FinishReason: "error",
			}
			continue
		}
		choice := res.Choices[0]
		choice.Index = i
		merged.Choices[i] = choice

		if res.Usage != nil {
			if merged.Usage == nil {
				merged.Usage = &chat.Usage{}
			}
			merged.Usage.PromptTokens += res.Usage.PromptTokens
			merged.Usage.CompletionTokens += res.Usage.CompletionTokens
			merged.Usage.TotalTokens += res.Usage.TotalTokens
		}
	}
	return merged
}
