// Package metricskey defines the metrics emitted by the conversation engine.
package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsChatCallsSucceeded provides total completed get-response calls.
	StatsChatCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_chat_calls_succeeded",
		Help:         "stats_chat_calls_succeeded provides total chat calls succeeded",
		RequiredTags: []string{"model"},
	}

	StatsChatCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_chat_calls_failed",
		Help:         "stats_chat_calls_failed provides total chat calls failed",
		RequiredTags: []string{"model"},
	}

	StatsChatMessagesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_chat_messages_sent",
		Help:         "stats_chat_messages_sent provides total messages sent to the backend",
		RequiredTags: []string{"model"},
	}

	StatsChatBytesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_chat_bytes_sent",
		Help:         "stats_chat_bytes_sent provides total content bytes sent to the backend",
		RequiredTags: []string{"model"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls to unknown tools",
		RequiredTags: []string{"tool"},
	}

	StatsFanoutBranchesFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_fanout_branches_failed",
		Help:         "stats_fanout_branches_failed provides total failed fan-out branches",
		RequiredTags: []string{"model"},
	}
)

// Perf
var (
	PerfChatCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_chat_call",
		Help:         "perf_chat_call provides the duration of a get-response call",
		RequiredTags: []string{"model"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides the duration of a tool call",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns all metrics defined by this package.
var Metrics = []*metrics.Describe{
	&PerfChatCall,
	&PerfToolCall,
	&StatsChatBytesSent,
	&StatsChatCallsFailed,
	&StatsChatCallsSucceeded,
	&StatsChatMessagesSent,
	&StatsFanoutBranchesFailed,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
}
