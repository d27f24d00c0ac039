package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/askframe"
	"github.com/ZanzyTHEbar/askframe/internal/config"
	"github.com/ZanzyTHEbar/askframe/internal/executor"
	"github.com/ZanzyTHEbar/askframe/internal/mcpserver"
	"github.com/ZanzyTHEbar/askframe/pkg/frame"
	"github.com/ZanzyTHEbar/askframe/pkg/llm"
)

const version = "0.1.0"

var (
	configPath string
	provider   string
	modelType  string
	modelName  string
	verbosity  int

	csvPath   string
	column    string
	mutable   bool
	showReply bool
	plotFlag  bool
	workers   int

	current *app
)

var rootCmd = &cobra.Command{
	Use:   "askframe",
	Short: "Ask questions about tabular data in plain language",
	Long: `askframe sends a goal and a summary of a CSV table to a language model,
which writes a small Go program. The program is run against the table and its
result is printed.

Examples:
  askframe ask --csv sales.csv "total units per region"
  askframe plot --csv sales.csv "bar chart of units by region"
  askframe code --csv sales.csv --column units "mean of the column"
  askframe batch jobs.yaml
  askframe mcp`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			current.Close()
		}
	},
}

// initApp loads the configuration, applies flag overrides and builds the
// Asker.
func initApp(cmd *cobra.Command) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Backend.Provider = strings.ToLower(provider)
	}
	if flags.Changed("type") {
		cfg.Backend.APIType = llm.NewModelType(modelType)
		cfg.Backend.APIKey = config.LookupAPIKey(cfg.Backend.Provider, cfg.Backend.APIType)
	}
	if flags.Changed("model") {
		cfg.Ask.Model = modelName
		cfg.Backend.ModelName = modelName
	}
	if flags.Changed("mutable") {
		cfg.Ask.Mutable = mutable
	}
	if flags.Changed("show-reply") {
		cfg.Ask.Verbose = showReply
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var extra []askframe.Option
	if cmd == mcpCmd {
		// stdout carries the protocol stream
		extra = append(extra, askframe.WithRunner(&executor.Interpreter{Stdout: os.Stderr, Stderr: os.Stderr}))
	}
	current, err = newApp(cmd.Context(), cfg, verbosity, extra...)
	return err
}

var askCmd = &cobra.Command{
	Use:   "ask [goal]",
	Short: "Compute a value from the table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		acc, err := loadAccessor()
		if err != nil {
			return err
		}
		result, err := acc.Ask(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), mcpserver.FormatResult(result))
		return nil
	},
}

var plotCmd = &cobra.Command{
	Use:   "plot [goal]",
	Short: "Draw the table and print the path of the saved image",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		acc, err := loadAccessor()
		if err != nil {
			return err
		}
		path, err := acc.Plot(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var codeCmd = &cobra.Command{
	Use:   "code [goal]",
	Short: "Print the program that ask or plot would run",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		acc, err := loadAccessor()
		if err != nil {
			return err
		}
		goal := strings.Join(args, " ")
		var source string
		if plotFlag {
			source, err = acc.PlotCode(cmd.Context(), goal)
		} else {
			source, err = acc.Code(cmd.Context(), goal)
		}
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), source)
		return nil
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt [goal]",
	Short: "Print the prompt that ask or plot would send",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		acc, err := loadAccessor()
		if err != nil {
			return err
		}
		goal := strings.Join(args, " ")
		var text string
		if plotFlag {
			text, err = acc.PlotPrompt(goal)
		} else {
			text, err = acc.Prompt(goal)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch [job file]",
	Short: "Run the ask and plot jobs of a YAML job file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := current.asker.RunBatchFile(cmd.Context(), args[0], askframe.WithMaxWorkers(workers))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, res := range report.Results {
			switch {
			case res.Err != nil:
				fmt.Fprintf(out, "%s\tFAILED\t%v\n", res.ID, res.Err)
			case res.Path != "":
				fmt.Fprintf(out, "%s\t%s\t%s\n", res.ID, res.Duration.Round(time.Millisecond), res.Path)
			default:
				fmt.Fprintf(out, "%s\t%s\t%s\n", res.ID, res.Duration.Round(time.Millisecond), mcpserver.FormatResult(res.Value))
			}
		}
		if failed := report.Failed(); len(failed) > 0 {
			return fmt.Errorf("%d of %d jobs failed", len(failed), len(report.Results))
		}
		return nil
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve askframe as MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		current.logger.Infow("serving MCP over stdio", "base_dir", wd)
		return mcpserver.New(current.asker, wd, version, current.logger).ServeStdio()
	},
}

// loadAccessor reads --csv and returns the entry point for the table or the
// --column series.
func loadAccessor() (*askframe.Accessor, error) {
	if csvPath == "" {
		return nil, fmt.Errorf("--csv is required")
	}
	table, err := frame.ReadCSVFile(filepath.Clean(csvPath))
	if err != nil {
		return nil, err
	}
	if column == "" {
		return current.asker.Table(table), nil
	}
	col := table.Column(column)
	if col == nil {
		return nil, fmt.Errorf("no column named '%s' (have %s)", column, strings.Join(table.Columns(), ", "))
	}
	return current.asker.Series(col), nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Path of the YAML configuration file")
	pf.StringVar(&provider, "provider", "", "Backend provider: eino or genkit")
	pf.StringVar(&modelType, "type", "", "Eino model type: openai, deepseek, qwen, ark, ollama or claude")
	pf.StringVarP(&modelName, "model", "m", "", "Model identifier sent with every request")
	pf.CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v, -vv)")
	pf.BoolVar(&mutable, "mutable", false, "Let generated programs modify the loaded table in place")
	pf.BoolVar(&showReply, "show-reply", false, "Print the raw model reply before running it")

	for _, cmd := range []*cobra.Command{askCmd, plotCmd, codeCmd, promptCmd} {
		cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file holding the table")
		cmd.Flags().StringVar(&column, "column", "", "Work on this single column")
	}
	codeCmd.Flags().BoolVar(&plotFlag, "plot", false, "Generate the plotting program")
	promptCmd.Flags().BoolVar(&plotFlag, "plot", false, "Render the plotting prompt")
	batchCmd.Flags().IntVar(&workers, "workers", askframe.DefaultBatchWorkers, "Jobs run at once")

	rootCmd.AddCommand(askCmd, plotCmd, codeCmd, promptCmd, batchCmd, mcpCmd)
}
