package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userObject() ObjectSchema {
	return NewObject("User").
		Describe("A person in the directory").
		Field("id", Of(String), "Stable id").
		Field("name", Of(String), "Display name").
		OptionalField("manager", Ref("User"), "The user's manager").
		Persistable().
		MustBuild()
}

func TestBuildRejectsDuplicateArgument(t *testing.T) {
	_, err := NewFunction("add_numbers").
		Arg("numbers", Of(Array), "values").
		Arg("numbers", Of(Number), "again").
		Build()

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "numbers", schemaErr.Field)
	assert.True(t, errors.Is(err, ErrInvalidSchema))
}

func TestBuildRejectsRefOnPrimitive(t *testing.T) {
	_, err := NewFunction("f").Arg("x", Type{Kind: String, Ref: "User"}, "").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only allowed on object types")
}

func TestBuildRejectsUnknownType(t *testing.T) {
	_, err := NewFunction("f").Arg("x", Of("date"), "").Build()
	require.ErrorIs(t, err, ErrInvalidSchema)
}

func TestBuildRejectsBadName(t *testing.T) {
	_, err := NewFunction("bad name").Build()
	require.ErrorIs(t, err, ErrInvalidSchema)
}

func TestBuilderResultIsImmutable(t *testing.T) {
	b := NewFunction("f").Arg("a", Of(String), "")
	first, err := b.Build()
	require.NoError(t, err)

	b.Arg("b", Of(Number), "")
	assert.Len(t, first.Arguments, 1)
}

func TestFunctionSchemaJSONRoundTrip(t *testing.T) {
	fn := NewFunction("lookup_user").
		Describe("Find a user").
		Arg("id", Of(String), "user id").
		OptionalArg("verbose", Of(Boolean), "").
		Returns(Ref("User")).
		MustBuild()

	raw, err := json.Marshal(fn)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "lookup_user",
		"description": "Find a user",
		"arguments": [
			{"name": "id", "description": "user id", "type": "string", "required": true},
			{"name": "verbose", "type": "boolean", "required": false}
		],
		"returns": {"type": "object", "ref": "User"}
	}`, string(raw))

	var decoded FunctionSchema
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, fn, decoded)
}

func TestCheckRefsResolvesTransitively(t *testing.T) {
	team := NewObject("Team").Field("lead", Ref("User"), "").MustBuild()
	arena, err := NewArena(team)
	require.NoError(t, err)

	fn := NewFunction("get_team").Returns(Ref("Team")).MustBuild()
	err = arena.CheckRefs(fn)
	require.ErrorIs(t, err, ErrInvalidSchema)
	assert.Contains(t, err.Error(), "unknown object User")

	require.NoError(t, arena.Add(userObject()))
	require.NoError(t, arena.CheckRefs(fn))
}

func TestClosureFollowsCycles(t *testing.T) {
	arena, err := NewArena(userObject())
	require.NoError(t, err)

	fn := NewFunction("lookup_user").Returns(Ref("User")).MustBuild()
	closure := arena.Closure(fn)
	require.Len(t, closure, 1)
	assert.Equal(t, "User", closure["User"].Name)
}

func TestInputSchemaBreaksSelfReference(t *testing.T) {
	arena, err := NewArena(userObject())
	require.NoError(t, err)

	fn := NewFunction("update_user").Arg("user", Ref("User"), "the user").MustBuild()
	doc := arena.InputSchema(fn)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(raw), `"$defs"`))
	assert.Contains(t, string(raw), `"$ref":"#/$defs/User"`)

	sch := compile(t, raw)
	valid := map[string]any{"user": map[string]any{
		"id": "u1", "name": "Ada",
		"manager": map[string]any{"id": "u0", "name": "Grace"},
	}}
	require.NoError(t, sch.Validate(valid))

	invalid := map[string]any{"user": map[string]any{
		"id": "u1", "name": "Ada",
		"manager": map[string]any{"id": 7, "name": "Grace"},
	}}
	require.Error(t, sch.Validate(invalid))
}

func TestInputSchemaMutualReference(t *testing.T) {
	a := NewObject("A").OptionalField("b", Ref("B"), "").MustBuild()
	b := NewObject("B").OptionalField("a", Ref("A"), "").OptionalField("self", Ref("B"), "").MustBuild()
	arena, err := NewArena(a, b)
	require.NoError(t, err)

	doc := arena.InputSchema(NewFunction("f").Arg("a", Ref("A"), "").MustBuild())
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	compile(t, raw)

	defs, ok := doc["$defs"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, defs, "A")
	assert.Contains(t, defs, "B")
}

func TestObjectDocument(t *testing.T) {
	arena, err := NewArena(userObject())
	require.NoError(t, err)

	doc, ok := arena.ObjectDocument("User")
	require.True(t, ok)
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	sch := compile(t, raw)
	require.Error(t, sch.Validate(map[string]any{"id": "u1"}))

	_, ok = arena.ObjectDocument("Missing")
	assert.False(t, ok)
}

func compile(t *testing.T, raw []byte) *jsonschema.Schema {
	t.Helper()
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	require.NoError(t, err)
	c := jsonschema.NewCompiler()
	require.NoError(t, c.AddResource("schema.json", doc))
	sch, err := c.Compile("schema.json")
	require.NoError(t, err)
	return sch
}
