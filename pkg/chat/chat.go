// Package chat defines the OpenAI-compatible chat completion wire types
// exchanged between the gateway, the conversation engine and the backend.
package chat

import (
	"fmt"
)

// Role is the type of chat message.
type Role string

const (
	// RoleSystem is a message carrying the system prompt.
	RoleSystem Role = "system"
	// RoleDeveloper is the o1-style replacement for the system role.
	RoleDeveloper Role = "developer"
	// RoleUser is a message sent by the end user.
	RoleUser Role = "user"
	// RoleAssistant is a message produced by the model.
	RoleAssistant Role = "assistant"
	// RoleTool is a tool execution result.
	RoleTool Role = "tool"
)

// IsSystem reports whether the role carries instructions rather than
// conversation content.
func (r Role) IsSystem() bool {
	return r == RoleSystem || r == RoleDeveloper
}

// FunctionCall is the name and raw JSON arguments of a requested call.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall is a call to a tool, as requested by the model.
type ToolCall struct {
	ID       string        `json:"id"`
	Type     string        `json:"type"`
	Function *FunctionCall `json:"function,omitempty"`
}

func (tc ToolCall) String() string {
	return fmt.Sprintf("ToolCall: %s (%s), input: %s", tc.ID, tc.Function.Name, tc.Function.Arguments)
}

// Message is one turn in a conversation.
// ToolCallID and Name are set only when Role is RoleTool, in which case
// ToolCallID must match the ID of a ToolCall from the preceding assistant
// message.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// SystemMessage creates a system prompt message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolMessage creates a tool result message for the given tool call.
func ToolMessage(toolCallID, name, content string) Message {
	return Message{
		Role:       RoleTool,
		Content:    content,
		ToolCallID: toolCallID,
		Name:       name,
	}
}

// FunctionDefinition describes a callable exposed to the model.
type FunctionDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Parameters is a JSON schema object describing the arguments.
	Parameters any `json:"parameters,omitempty"`
}

// Tool is a tool descriptor entry in the request catalog.
type Tool struct {
	Type     string              `json:"type"`
	Function *FunctionDefinition `json:"function,omitempty"`
}

// Request is the chat completion request sent to the backend.
type Request struct {
	Model      string    `json:"model"`
	Messages   []Message `json:"messages"`
	Tools      []Tool    `json:"tools,omitempty"`
	ToolChoice any       `json:"tool_choice,omitempty"`
	N          int       `json:"n,omitempty"`
}

// Choice is one of the completion choices returned by the backend.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the chat completion response envelope.
type Response struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}
