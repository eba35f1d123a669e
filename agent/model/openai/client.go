// Package openai adapts model.Client to the OpenAI Chat Completions API
// using github.com/openai/openai-go.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared/constant"

	"github.com/raviakasapu/auto-ai-agent-framework/agent/model"
)

// ChatClient is the subset of the OpenAI SDK used by the adapter, satisfied
// by openai.Client.Chat.Completions so tests can substitute a stub.
type ChatClient interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Client implements model.Client against Chat Completions.
type Client struct {
	chat         ChatClient
	defaultModel string
	maxTokens    int
	temperature  float64
}

// New builds an adapter from a ChatClient, a default model identifier, and
// fallback max tokens / temperature used when a Request doesn't set them.
func New(chat ChatClient, defaultModel string, maxTokens int, temperature float64) (*Client, error) {
	if chat == nil {
		return nil, errors.New("openai: chat client is required")
	}
	if defaultModel == "" {
		return nil, errors.New("openai: default model is required")
	}
	return &Client{chat: chat, defaultModel: defaultModel, maxTokens: maxTokens, temperature: temperature}, nil
}

// NewFromAPIKey constructs a client using the SDK's default HTTP transport.
func NewFromAPIKey(apiKey, defaultModel string, maxTokens int, temperature float64) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	oc := openai.NewClient(option.WithAPIKey(apiKey))
	return New(&oc.Chat.Completions, defaultModel, maxTokens, temperature)
}

// Complete issues a non-streaming chat completion request.
func (c *Client) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	params, err := c.prepareRequest(req)
	if err != nil {
		return model.Response{}, err
	}
	resp, err := c.chat.New(ctx, params)
	if err != nil {
		return model.Response{}, fmt.Errorf("openai chat completions: %w", err)
	}
	return translateResponse(resp)
}

func (c *Client) prepareRequest(req model.Request) (openai.ChatCompletionNewParams, error) {
	if len(req.Messages) == 0 {
		return openai.ChatCompletionNewParams{}, errors.New("openai: messages are required")
	}
	modelID := req.Model
	if modelID == "" {
		modelID = c.defaultModel
	}

	messages, err := encodeMessages(req.Messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	tools, err := encodeTools(req.Tools)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}

	params := openai.ChatCompletionNewParams{
		Model:    modelID,
		Messages: messages,
	}
	if len(tools) > 0 {
		params.Tools = tools
		switch req.ToolChoice {
		case model.ToolChoiceAuto, model.ToolChoiceRequired:
			params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
				OfAuto: openai.String(req.ToolChoice),
			}
		}
	}
	if maxTokens := firstPositive(req.MaxTokens, c.maxTokens); maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}
	temp := req.Temperature
	if temp <= 0 {
		temp = c.temperature
	}
	if temp > 0 {
		params.Temperature = openai.Float(temp)
	}
	return params, nil
}

func firstPositive(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}

func encodeMessages(msgs []model.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch {
		case m.IsToolResult:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		case m.Role == model.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case m.Role == model.RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case m.Role == model.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			return nil, fmt.Errorf("openai: unsupported message role %q", m.Role)
		}
	}
	return out, nil
}

func encodeTools(defs []model.ToolDefinition) ([]openai.ChatCompletionToolParam, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	out := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		params, err := schemaToParameters(def.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("openai: tool %s schema: %w", def.Name, err)
		}
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  params,
			},
		})
	}
	return out, nil
}

func schemaToParameters(schema any) (openai.FunctionParameters, error) {
	if schema == nil {
		return nil, nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var params openai.FunctionParameters
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, err
	}
	return params, nil
}

func translateResponse(resp *openai.ChatCompletion) (model.Response, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return model.Response{}, errors.New("openai: empty response")
	}
	choice := resp.Choices[0]
	out := model.Response{
		Text:       choice.Message.Content,
		StopReason: string(choice.FinishReason),
	}
	for _, call := range choice.Message.ToolCalls {
		if call.Type != constant.ValueOf[constant.Function]() {
			continue
		}
		out.ToolCalls = append(out.ToolCalls, model.ToolCall{
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: json.RawMessage(call.Function.Arguments),
		})
	}
	out.Usage = model.TokenUsage{
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:  int(resp.Usage.TotalTokens),
	}
	return out, nil
}
