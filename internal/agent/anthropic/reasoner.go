// Package anthropic implements agent.Reasoner on the Anthropic Messages API.
// Visible functions become tools, the call history becomes tool_use and
// tool_result pairs, and the reply is read back as a call or an answer.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"fnrelay/gateway/internal/agent"
	"fnrelay/gateway/internal/registry"
	"fnrelay/gateway/internal/schema"
)

const (
	DefaultModel     = "claude-sonnet-4-5"
	DefaultMaxTokens = 1024
)

const systemPrompt = "You complete the user's instruction by calling the provided functions. " +
	"Call one function at a time. When you have enough information, reply with the final answer as plain text."

// MessagesClient is the subset of the SDK used here. *sdk.MessageService
// satisfies it.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

type Options struct {
	Model     string
	MaxTokens int64
	System    string
}

type Reasoner struct {
	msg       MessagesClient
	model     string
	maxTokens int64
	system    string
}

var _ agent.Reasoner = (*Reasoner)(nil)

func New(msg MessagesClient, opts Options) (*Reasoner, error) {
	if msg == nil {
		return nil, errors.New("anthropic: messages client is required")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.System == "" {
		opts.System = systemPrompt
	}
	return &Reasoner{msg: msg, model: opts.Model, maxTokens: opts.MaxTokens, system: opts.System}, nil
}

func NewFromAPIKey(apiKey string, opts Options) (*Reasoner, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	client := sdk.NewClient(option.WithAPIKey(apiKey))
	return New(&client.Messages, opts)
}

func (r *Reasoner) ChooseAction(ctx context.Context, instruction string, catalog registry.Catalog, history []agent.Step) (agent.Action, error) {
	tools, err := encodeTools(catalog)
	if err != nil {
		return agent.Action{}, err
	}
	params := sdk.MessageNewParams{
		MaxTokens: r.maxTokens,
		Messages:  encodeMessages(instruction, history),
		Model:     sdk.Model(r.model),
		System:    []sdk.TextBlockParam{{Text: r.system}},
		Tools:     tools,
	}
	msg, err := r.msg.New(ctx, params)
	if err != nil {
		return agent.Action{}, fmt.Errorf("anthropic: messages.new: %w", err)
	}
	return translateResponse(msg)
}

func encodeTools(catalog registry.Catalog) ([]sdk.ToolUnionParam, error) {
	objects := make([]schema.ObjectSchema, 0, len(catalog.Objects))
	for _, obj := range catalog.Objects {
		objects = append(objects, obj)
	}
	arena, err := schema.NewArena(objects...)
	if err != nil {
		return nil, fmt.Errorf("anthropic: catalog objects: %w", err)
	}
	tools := make([]sdk.ToolUnionParam, 0, len(catalog.Functions))
	for _, fn := range catalog.Functions {
		input := arena.InputSchema(fn)
		// The SDK sets "type" itself.
		delete(input, "type")
		u := sdk.ToolUnionParamOfTool(sdk.ToolInputSchemaParam{ExtraFields: input}, fn.Name)
		if u.OfTool != nil && fn.Description != "" {
			u.OfTool.Description = sdk.String(fn.Description)
		}
		tools = append(tools, u)
	}
	return tools, nil
}

// encodeMessages replays the history as assistant tool_use turns, each
// answered by a user tool_result turn.
func encodeMessages(instruction string, history []agent.Step) []sdk.MessageParam {
	messages := make([]sdk.MessageParam, 0, 1+2*len(history))
	messages = append(messages, sdk.NewUserMessage(sdk.NewTextBlock(instruction)))
	for _, step := range history {
		args := step.Args
		if args == nil {
			args = map[string]any{}
		}
		messages = append(messages,
			sdk.NewAssistantMessage(sdk.NewToolUseBlock(step.ID, args, step.FunctionName)),
			sdk.NewUserMessage(encodeToolResult(step)),
		)
	}
	return messages
}

func encodeToolResult(step agent.Step) sdk.ContentBlockParamUnion {
	if step.Failed() {
		return sdk.NewToolResultBlock(step.ID, step.ErrorKind+": "+step.ErrorMessage, true)
	}
	content := "null"
	if data, err := json.Marshal(step.Result); err == nil {
		content = string(data)
	}
	return sdk.NewToolResultBlock(step.ID, content, false)
}

// translateResponse prefers the first tool_use block; otherwise the text
// blocks form the answer.
func translateResponse(msg *sdk.Message) (agent.Action, error) {
	if msg == nil {
		return agent.Action{}, errors.New("anthropic: response message is nil")
	}
	var text []string
	for _, block := range msg.Content {
		switch block.Type {
		case "tool_use":
			args := map[string]any{}
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &args); err != nil {
					return agent.Action{}, fmt.Errorf("anthropic: tool %q input: %w", block.Name, err)
				}
			}
			return agent.Action{ID: block.ID, FunctionName: block.Name, Args: args}, nil
		case "text":
			if block.Text != "" {
				text = append(text, block.Text)
			}
		}
	}
	answer := strings.TrimSpace(strings.Join(text, "\n"))
	if answer == "" {
		return agent.Action{}, agent.ErrEmptyAction
	}
	return agent.Action{FinalAnswer: answer}, nil
}
