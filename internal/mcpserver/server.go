// Package mcpserver exposes the askframe calls as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/askframe"
	"github.com/ZanzyTHEbar/askframe/pkg/frame"
)

// Tool names.
const (
	ToolAsk    = "askframe_ask"
	ToolPlot   = "askframe_plot"
	ToolCode   = "askframe_code"
	ToolPrompt = "askframe_prompt"
	ToolBatch  = "askframe_batch"
)

// Server wraps an Asker and serves it over MCP.
type Server struct {
	asker   *askframe.Asker
	baseDir string
	logger  *zap.SugaredLogger
	server  *server.MCPServer
}

// New creates the MCP server. Relative CSV and job file paths are resolved
// against baseDir.
func New(asker *askframe.Asker, baseDir, version string, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		asker:   asker,
		baseDir: baseDir,
		logger:  logger,
	}
	s.server = server.NewMCPServer(
		"askframe",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying server, for transports other than stdio.
func (s *Server) MCPServer() *server.MCPServer {
	return s.server
}

// ServeStdio serves requests on stdin and stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.server)
}

func dataOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("csv",
			mcp.Required(),
			mcp.Description("Path of the CSV file holding the table"),
		),
		mcp.WithString("goal",
			mcp.Required(),
			mcp.Description("What the generated program should do, in plain language"),
		),
		mcp.WithString("column",
			mcp.Description("Work on this single column instead of the whole table"),
		),
	}
}

func (s *Server) registerTools() {
	askTool := mcp.NewTool(ToolAsk, append([]mcp.ToolOption{
		mcp.WithDescription("Compute a value from a CSV table by having a model write and run a Go program"),
	}, dataOptions()...)...)
	s.server.AddTool(askTool, s.handleAsk)

	plotTool := mcp.NewTool(ToolPlot, append([]mcp.ToolOption{
		mcp.WithDescription("Draw a chart of a CSV table and return the path of the saved image"),
	}, dataOptions()...)...)
	s.server.AddTool(plotTool, s.handlePlot)

	codeTool := mcp.NewTool(ToolCode, append([]mcp.ToolOption{
		mcp.WithDescription("Show the Go program that would be run for a goal, without running it"),
		mcp.WithBoolean("plot", mcp.Description("Generate the plotting program instead")),
	}, dataOptions()...)...)
	s.server.AddTool(codeTool, s.handleCode)

	promptTool := mcp.NewTool(ToolPrompt, append([]mcp.ToolOption{
		mcp.WithDescription("Show the prompt that would be sent to the model for a goal"),
		mcp.WithBoolean("plot", mcp.Description("Render the plotting prompt instead")),
	}, dataOptions()...)...)
	s.server.AddTool(promptTool, s.handlePrompt)

	batchTool := mcp.NewTool(ToolBatch,
		mcp.WithDescription("Run a YAML job file of ask and plot jobs"),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Path of the job file"),
		),
	)
	s.server.AddTool(batchTool, s.handleBatch)
}

// accessor loads the CSV named by the request and returns the entry point
// for the table or the requested column.
func (s *Server) accessor(request mcp.CallToolRequest) (*askframe.Accessor, string, error) {
	csvPath, err := request.RequireString("csv")
	if err != nil {
		return nil, "", err
	}
	goal, err := request.RequireString("goal")
	if err != nil {
		return nil, "", err
	}

	table, err := frame.ReadCSVFile(s.resolve(csvPath))
	if err != nil {
		return nil, "", err
	}
	if column := request.GetString("column", ""); column != "" {
		col := table.Column(column)
		if col == nil {
			return nil, "", fmt.Errorf("no column named '%s'", column)
		}
		return s.asker.Series(col), goal, nil
	}
	return s.asker.Table(table), goal, nil
}

func (s *Server) resolve(path string) string {
	if filepath.IsAbs(path) || s.baseDir == "" {
		return path
	}
	return filepath.Join(s.baseDir, path)
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	acc, goal, err := s.accessor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := acc.Ask(ctx, goal)
	if err != nil {
		s.logger.Warnw("ask tool failed", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(FormatResult(result)), nil
}

func (s *Server) handlePlot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	acc, goal, err := s.accessor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := acc.Plot(ctx, goal)
	if err != nil {
		s.logger.Warnw("plot tool failed", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(path), nil
}

func (s *Server) handleCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	acc, goal, err := s.accessor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var source string
	if request.GetBool("plot", false) {
		source, err = acc.PlotCode(ctx, goal)
	} else {
		source, err = acc.Code(ctx, goal)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(source), nil
}

func (s *Server) handlePrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	acc, goal, err := s.accessor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var text string
	if request.GetBool("plot", false) {
		text, err = acc.PlotPrompt(goal)
	} else {
		text, err = acc.Prompt(goal)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := request.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := s.asker.RunBatchFile(ctx, s.resolve(file))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	for _, res := range report.Results {
		switch {
		case res.Err != nil:
			fmt.Fprintf(&b, "%s: failed: %v\n", res.ID, res.Err)
		case res.Path != "":
			fmt.Fprintf(&b, "%s: %s\n", res.ID, res.Path)
		default:
			fmt.Fprintf(&b, "%s: %s\n", res.ID, FormatResult(res.Value))
		}
	}
	if len(report.Failed()) > 0 {
		return mcp.NewToolResultError(b.String()), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

// FormatResult renders a call result as text. Tables and series use their
// tabular form.
func FormatResult(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}
