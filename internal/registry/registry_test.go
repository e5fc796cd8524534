package registry

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoTool struct {
	loadCount *int
}

func (t *echoTool) Name() string     { return "echo" }
func (t *echoTool) Category() Category { return CategoryPipeline }
func (t *echoTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:     "echo",
		Category: CategoryPipeline,
		Schema: InputSchema{Properties: map[string]ParamDef{
			"text": {Type: ParamTypeString, Required: true},
		}},
	}
}
func (t *echoTool) Execute(_ context.Context, args map[string]any) (ToolResult, error) {
	return TextResult(StringArg(args, "text", "")), nil
}

func TestDispatch_UnknownToolReportsError(t *testing.T) {
	r := NewRegistry()
	result := r.Dispatch(context.Background(), "nope", nil)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Text(), "Unknown tool: nope")
}

func TestDispatch_MissingRequiredArgIsInvalidInput(t *testing.T) {
	r := NewRegistry()
	r.Register(&echoTool{})
	result := r.Dispatch(context.Background(), "echo", map[string]any{})
	assert.True(t, result.IsError)
	assert.Contains(t, result.Text(), "missing required parameter")
}

func TestDispatch_SuccessAccountsTokens(t *testing.T) {
	r := NewRegistry()
	r.Register(&echoTool{})
	result := r.Dispatch(context.Background(), "echo", map[string]any{"text": "hello world"})
	require.False(t, result.IsError)
	assert.Equal(t, "hello world", result.Text())
	assert.GreaterOrEqual(t, result.TokensSaved, uint32(0))
}

func TestDispatch_MiddlewareCanFilter(t *testing.T) {
	r := NewRegistry()
	r.Register(&echoTool{})
	r.Use(&DenylistMiddleware{Denied: map[string]bool{"echo": true}})
	result := r.Dispatch(context.Background(), "echo", map[string]any{"text": "hi"})
	assert.True(t, result.WasFiltered)
	assert.Equal(t, uint32(0), result.TokensOut)
	assert.Equal(t, uint32(0), result.TokensSaved)
}

func TestDispatch_AuditMiddlewareObservesOutcome(t *testing.T) {
	r := NewRegistry()
	r.Register(&echoTool{})
	var records []AuditRecord
	r.Use(&AuditMiddleware{Sink: func(rec AuditRecord) { records = append(records, rec) }})
	r.Dispatch(context.Background(), "echo", map[string]any{"text": "hi"})
	require.Len(t, records, 1)
	assert.Equal(t, "echo", records[0].Tool)
	assert.False(t, records[0].IsError)
}

func TestRegisterLazy_DispatchLoadsOnDemand(t *testing.T) {
	r := NewRegistry()
	loads := 0
	r.RegisterLazy(ToolDefinition{Name: "lazy", Category: CategoryPipeline}, func() Tool {
		loads++
		return &echoTool{}
	})
	assert.False(t, r.IsLoaded("lazy"))
	result := r.Dispatch(context.Background(), "lazy", map[string]any{"text": "a"})
	assert.False(t, result.IsError)
	assert.True(t, r.IsLoaded("lazy"))
	assert.Equal(t, 1, loads)

	r.Dispatch(context.Background(), "lazy", map[string]any{"text": "b"})
	assert.Equal(t, 1, loads, "second dispatch must not re-invoke the factory")
}

func TestDiscover_FiltersByQueryAndCategory(t *testing.T) {
	r := NewRegistry()
	r.Register(&echoTool{})
	result := r.Discover(DiscoverOptions{Category: CategoryPipeline})
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "echo", result.Tools[0].Name)

	empty := r.Discover(DiscoverOptions{Category: CategoryCode})
	assert.Empty(t, empty.Tools)

	empty = r.Discover(DiscoverOptions{Query: "nonexistent"})
	assert.Empty(t, empty.Tools)
}

func TestDiscover_TOONIsDeterministic(t *testing.T) {
	r := NewRegistry()
	r.Register(&echoTool{})
	first := r.Discover(DiscoverOptions{Format: FormatTOON})
	second := r.Discover(DiscoverOptions{Format: FormatTOON})
	assert.Equal(t, first.TOON, second.TOON)
	assert.Contains(t, first.TOON, "name")
}

func TestDiscover_TOONTabularPadsColumns(t *testing.T) {
	r := NewRegistry()
	r.Register(&echoTool{})
	result := r.Discover(DiscoverOptions{Format: FormatTOONTabular})
	assert.NotEmpty(t, result.TOON)

	lines := strings.Split(result.TOON, "\n")
	require.Len(t, lines, 2)
	header := strings.Split(lines[0], "\t")
	row := strings.Split(lines[1], "\t")
	require.Len(t, row, len(header))
	for i := range header {
		assert.Equal(t, len(header[i]), len(row[i]), "column %d", i)
	}
}

func TestTOON_EscapesTabsAndNonASCIIRoundTrip(t *testing.T) {
	rows := []map[string]string{{"a": "has\ttab", "b": "héllo"}}
	out := encodeTOON(rows, false)
	assert.Contains(t, out, "b64:")

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	header := strings.Split(lines[0], "\t")
	values := strings.Split(lines[1], "\t")
	decoded := map[string]string{}
	for i, k := range header {
		decoded[k] = decodeTOONField(values[i])
	}
	assert.Equal(t, "has\ttab", decoded["a"])
	assert.Equal(t, "héllo", decoded["b"])
}

func TestUnregister_RemovesFromAvailable(t *testing.T) {
	r := NewRegistry()
	r.Register(&echoTool{})
	r.Unregister("echo")
	assert.Empty(t, r.Available())
}
