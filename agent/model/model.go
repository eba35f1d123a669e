// Package model defines the provider-agnostic chat/tool-call contract
// planners speak against. Provider adapters (anthropic, openai, bedrock)
// translate Request/Response into their own SDK types so the planner layer
// never imports a vendor SDK directly.
package model

import (
	"context"
	"encoding/json"
	"errors"
)

// Role identifies the speaker of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in the transcript passed to a model invocation.
//
// ToolCallID/ToolName are set on assistant messages that requested a tool
// and on the following user-role message that reports the tool's result
// (IsToolResult true), mirroring how the providers correlate calls and
// results.
type Message struct {
	Role    Role
	Content string

	ToolCallID   string
	ToolName     string
	IsToolResult bool
	IsError      bool
}

// ToolDefinition describes one tool exposed to the model.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema any
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// TokenUsage reports token consumption for a single call.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// ToolChoice values accepted on a Request. An empty ToolChoice leaves the
// provider's default behavior in place.
const (
	// ToolChoiceAuto lets the model decide whether to call a tool.
	ToolChoiceAuto = "auto"
	// ToolChoiceRequired forces the model to call some tool.
	ToolChoiceRequired = "required"
)

// Request captures the inputs for one model invocation.
type Request struct {
	Model       string
	Messages    []Message
	Tools       []ToolDefinition
	Temperature float64
	MaxTokens   int

	// ToolChoice is ToolChoiceAuto or ToolChoiceRequired; it is ignored when
	// Tools is empty.
	ToolChoice string
}

// Response is the result of a Complete call.
type Response struct {
	Text       string
	ToolCalls  []ToolCall
	Usage      TokenUsage
	StopReason string
}

// Client is the provider-agnostic model client planners invoke.
type Client interface {
	// Complete performs a non-streaming model invocation.
	Complete(ctx context.Context, req Request) (Response, error)
}

// ErrRateLimited indicates the provider rejected the request due to rate
// limiting. Callers should treat this as a transient infrastructure failure
// and not retry in a tight loop.
var ErrRateLimited = errors.New("model: rate limited")
