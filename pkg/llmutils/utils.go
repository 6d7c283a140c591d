// Package llmutils provides helpers for handling LLM inputs and outputs.
package llmutils

import (
	"bytes"
	"encoding/json"

	"github.com/parleyhq/parley/pkg/chat"
)

// CleanJSON returns JSON by trimming prefixes and postfixes,
// as models can reply like `Here you go: {json}`.
func CleanJSON(bs []byte) []byte {
	return trimPostfixAfterJSON(trimPrefixBeforeJSON(bs))
}

// Removes any prefixes before the JSON (like "Sure, here you go:")
func trimPrefixBeforeJSON(bs []byte) []byte {
	startObject := bytes.IndexByte(bs, '{')
	startArray := bytes.IndexByte(bs, '[')

	var start int
	switch {
	case startObject == -1 && startArray == -1:
		return bs
	case startObject == -1:
		start = startArray
	case startArray == -1:
		start = startObject
	default:
		start = min(startObject, startArray)
	}
	return bs[start:]
}

// Removes any postfixes after the JSON
func trimPostfixAfterJSON(bs []byte) []byte {
	endObject := bytes.LastIndexByte(bs, '}')
	endArray := bytes.LastIndexByte(bs, ']')

	var end int
	switch {
	case endObject == -1 && endArray == -1:
		return bs
	case endObject == -1:
		end = endArray
	case endArray == -1:
		end = endObject
	default:
		end = max(endObject, endArray)
	}
	return bs[:end+1]
}

// ToJSON returns the JSON representation of the value.
func ToJSON(val any) string {
	bs, _ := json.Marshal(val)
	return string(bs)
}

// ToJSONIndent returns the indented JSON representation of the value.
func ToJSONIndent(val any) string {
	bs, _ := json.MarshalIndent(val, "", "  ")
	return string(bs)
}

// CountMessagesContentSize returns the total content size of the messages,
// including tool call arguments.
func CountMessagesContentSize(msgs []chat.Message) uint64 {
	var size uint64
	for _, m := range msgs {
		size += uint64(len(m.Content))
		for _, tc := range m.ToolCalls {
			if tc.Function != nil {
				size += uint64(len(tc.Function.Arguments))
			}
		}
	}
	return size
}
