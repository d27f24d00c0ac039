package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/askframe"
	"github.com/ZanzyTHEbar/askframe/pkg/llm"
)

const sumProgram = "```go\nimport \"github.com/ZanzyTHEbar/askframe/pkg/frame\"\n\nfunc process(data *frame.Series) float64 { return data.Sum() }\n```"

func newTestServer(t *testing.T, reply string) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales.csv"), []byte("region,units\nnorth,3\nsouth,5\n"), 0o644))

	backend := llm.BackendFunc(func(ctx context.Context, req llm.Request) (*llm.Completion, error) {
		return &llm.Completion{Message: llm.Message{Role: llm.RoleAssistant, Content: reply}}, nil
	})
	asker, err := askframe.New(backend)
	require.NoError(t, err)
	t.Cleanup(func() { _ = asker.Close() })

	return New(asker, dir, "test", nil), dir
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleAsk(t *testing.T) {
	s, _ := newTestServer(t, sumProgram)

	res, err := s.handleAsk(context.Background(), callRequest(ToolAsk, map[string]any{
		"csv":    "sales.csv",
		"goal":   "sum the units",
		"column": "units",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "8", resultText(t, res))
}

func TestHandleAsk_Errors(t *testing.T) {
	s, _ := newTestServer(t, sumProgram)
	ctx := context.Background()

	res, err := s.handleAsk(ctx, callRequest(ToolAsk, map[string]any{"csv": "sales.csv"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleAsk(ctx, callRequest(ToolAsk, map[string]any{
		"csv": "sales.csv", "goal": "sum", "column": "price",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "no column named 'price'")

	res, err = s.handleAsk(ctx, callRequest(ToolAsk, map[string]any{"csv": "nope.csv", "goal": "sum"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleCodeAndPrompt(t *testing.T) {
	s, _ := newTestServer(t, sumProgram)
	ctx := context.Background()
	args := map[string]any{"csv": "sales.csv", "goal": "sum the units", "column": "units"}

	res, err := s.handleCode(ctx, callRequest(ToolCode, args))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "func process(data *frame.Series) float64")

	res, err = s.handlePrompt(ctx, callRequest(ToolPrompt, args))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "`process(data)`")
	assert.Contains(t, text, "sum the units")

	plotArgs := map[string]any{"csv": "sales.csv", "goal": "draw", "plot": true}
	res, err = s.handlePrompt(ctx, callRequest(ToolPrompt, plotArgs))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "Save the plot as an image file named 'output'")
}

func TestHandleBatch(t *testing.T) {
	s, dir := newTestServer(t, sumProgram)
	jobs := "name: t\njobs:\n  - id: total\n    kind: ask\n    goal: sum\n    data: sales.csv\n    column: units\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jobs.yaml"), []byte(jobs), 0o644))

	res, err := s.handleBatch(context.Background(), callRequest(ToolBatch, map[string]any{"file": "jobs.yaml"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "total: 8\n", resultText(t, res))
}

func TestFormatResult(t *testing.T) {
	assert.Equal(t, "<nil>", FormatResult(nil))
	assert.Equal(t, "42", FormatResult(42))
	assert.Equal(t, "[1 2]", FormatResult([]int{1, 2}))
}
