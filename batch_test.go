package askframe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/askframe/pkg/llm"
)

// routedBackend answers with the program registered for the first goal that
// appears in the prompt.
func routedBackend(programs map[string]string) llm.Backend {
	return llm.BackendFunc(func(ctx context.Context, req llm.Request) (*llm.Completion, error) {
		user := req.Messages[len(req.Messages)-1].Content
		for goal, program := range programs {
			if strings.Contains(user, goal) {
				return &llm.Completion{Message: llm.Message{Role: llm.RoleAssistant, Content: program}}, nil
			}
		}
		return &llm.Completion{Message: llm.Message{Role: llm.RoleAssistant, Content: "no program"}}, nil
	})
}

func writeBatchFiles(t *testing.T, jobs string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales.csv"), []byte("region,units\nnorth,3\nsouth,5\neast,4\n"), 0o644))
	path := filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(jobs), 0o644))
	return path
}

func TestRunBatchFile_ChainsResults(t *testing.T) {
	path := writeBatchFiles(t, `
name: sales
jobs:
  - id: total
    kind: ask
    goal: sum the units
    data: sales.csv
    column: units
  - id: doubled
    kind: ask
    goal: double the number
    data: $total
  - id: rows
    kind: ask
    goal: count the rows
    data: sales.csv
`)
	a := newTestAsker(t, routedBackend(map[string]string{
		"sum the units":     "```go\nimport \"github.com/ZanzyTHEbar/askframe/pkg/frame\"\n\nfunc process(data *frame.Series) float64 { return data.Sum() }\n```",
		"double the number": "func process(data float64) float64 { return data * 2 }",
		"count the rows":    "```go\nimport \"github.com/ZanzyTHEbar/askframe/pkg/frame\"\n\nfunc process(df *frame.Table) int { return df.Len() }\n```",
	}))

	report, err := a.RunBatchFile(context.Background(), path, WithMaxWorkers(2))
	require.NoError(t, err)
	assert.Equal(t, "sales", report.Name)
	require.Len(t, report.Results, 3)
	assert.Empty(t, report.Failed())

	assert.Equal(t, 12.0, report.Result("total").Value)
	assert.Equal(t, 24.0, report.Result("doubled").Value)
	assert.Equal(t, 3, report.Result("rows").Value)
	assert.Equal(t, "doubled", report.Results[1].ID)
}

func TestRunBatchFile_FailurePropagates(t *testing.T) {
	path := writeBatchFiles(t, `
name: broken
jobs:
  - id: first
    kind: ask
    goal: fail loudly
    data: sales.csv
  - id: second
    kind: ask
    goal: never runs
    data: $first
  - id: missing
    kind: ask
    goal: fail loudly
    data: sales.csv
    column: price
`)
	a := newTestAsker(t, routedBackend(map[string]string{
		"fail loudly": "func process(df any) any { panic(\"boom\") }",
	}))

	report, err := a.RunBatchFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, report.Failed(), 3)

	assert.True(t, IsExecutionError(report.Result("first").Err))
	assert.Contains(t, report.Result("second").Err.Error(), "dependency 'first' did not succeed")
	assert.True(t, HasCode(report.Result("missing").Err, ErrCodeConfiguration))
}

func TestRunBatchFile_InvalidFile(t *testing.T) {
	path := writeBatchFiles(t, `
jobs:
  - id: a
    kind: ask
    goal: loop
    data: $b
  - id: b
    kind: ask
    goal: loop
    data: $a
`)
	a := newTestAsker(t, routedBackend(nil))

	_, err := a.RunBatchFile(context.Background(), path)
	require.Error(t, err)
	var askErr *AskError
	require.ErrorAs(t, err, &askErr)
	assert.Equal(t, StageBatch, askErr.Stage)
}
