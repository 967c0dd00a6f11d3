package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fnrelay/gateway/internal/agent"
	"fnrelay/gateway/internal/registry"
	"fnrelay/gateway/internal/schema"
)

type stubMessagesClient struct {
	lastParams sdk.MessageNewParams
	resp       *sdk.Message
	err        error
}

func (s *stubMessagesClient) New(_ context.Context, body sdk.MessageNewParams, _ ...option.RequestOption) (*sdk.Message, error) {
	s.lastParams = body
	return s.resp, s.err
}

func testCatalog() registry.Catalog {
	user := schema.NewObject("User").
		Field("id", schema.Of(schema.String), "").
		OptionalField("manager", schema.Ref("User"), "").
		MustBuild()
	return registry.Catalog{
		Functions: []schema.FunctionSchema{
			schema.NewFunction("lookup_user").Describe("Find a user").
				Arg("id", schema.Of(schema.String), "user id").
				Returns(schema.Ref("User")).
				MustBuild(),
		},
		Objects: map[string]schema.ObjectSchema{"User": user},
	}
}

func TestChooseActionToolUse(t *testing.T) {
	stub := &stubMessagesClient{resp: &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "Let me look that up."},
			{Type: "tool_use", ID: "toolu_1", Name: "lookup_user", Input: json.RawMessage(`{"id":"u1"}`)},
		},
	}}
	r, err := New(stub, Options{Model: "claude-test", MaxTokens: 64})
	require.NoError(t, err)

	action, err := r.ChooseAction(context.Background(), "who is u1?", testCatalog(), nil)
	require.NoError(t, err)
	assert.Equal(t, agent.Action{ID: "toolu_1", FunctionName: "lookup_user", Args: map[string]any{"id": "u1"}}, action)

	assert.Equal(t, sdk.Model("claude-test"), stub.lastParams.Model)
	assert.EqualValues(t, 64, stub.lastParams.MaxTokens)
	require.Len(t, stub.lastParams.Tools, 1)
	tool := stub.lastParams.Tools[0].OfTool
	require.NotNil(t, tool)
	assert.Equal(t, "lookup_user", tool.Name)
	props, ok := tool.InputSchema.ExtraFields["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "id")
	require.Len(t, stub.lastParams.Messages, 1)
}

func TestChooseActionFinalAnswer(t *testing.T) {
	stub := &stubMessagesClient{resp: &sdk.Message{
		Content: []sdk.ContentBlockUnion{{Type: "text", Text: " u1 reports to u0. "}},
	}}
	r, err := New(stub, Options{})
	require.NoError(t, err)

	history := []agent.Step{
		{ID: "toolu_1", FunctionName: "lookup_user", Args: map[string]any{"id": "u1"}, Result: map[string]any{"id": "u1"}},
		{ID: "toolu_2", FunctionName: "lookup_user", ErrorKind: "invalid_argument", ErrorMessage: "bad id"},
	}
	action, err := r.ChooseAction(context.Background(), "who is u1?", testCatalog(), history)
	require.NoError(t, err)
	assert.True(t, action.IsFinal())
	assert.Equal(t, "u1 reports to u0.", action.FinalAnswer)

	require.Len(t, stub.lastParams.Messages, 5)
	assert.Equal(t, sdk.MessageParamRoleAssistant, stub.lastParams.Messages[1].Role)
	assert.Equal(t, sdk.MessageParamRoleUser, stub.lastParams.Messages[4].Role)
	result := stub.lastParams.Messages[4].Content[0].OfToolResult
	require.NotNil(t, result)
	assert.Equal(t, "toolu_2", result.ToolUseID)
	assert.True(t, result.IsError.Value)
}

func TestChooseActionErrors(t *testing.T) {
	_, err := New(nil, Options{})
	require.Error(t, err)

	cause := errors.New("overloaded")
	r, err := New(&stubMessagesClient{err: cause}, Options{})
	require.NoError(t, err)
	_, err = r.ChooseAction(context.Background(), "hi", testCatalog(), nil)
	require.ErrorIs(t, err, cause)

	r, err = New(&stubMessagesClient{resp: &sdk.Message{}}, Options{})
	require.NoError(t, err)
	_, err = r.ChooseAction(context.Background(), "hi", testCatalog(), nil)
	require.ErrorIs(t, err, agent.ErrEmptyAction)
}

func TestNewFromAPIKeyRequiresKey(t *testing.T) {
	_, err := NewFromAPIKey(" ", Options{})
	require.Error(t, err)
}
