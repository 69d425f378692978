// cmd/roscope/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nveloso/roscope/internal/config"
	"github.com/nveloso/roscope/internal/engine"
	"github.com/nveloso/roscope/internal/report"
	"github.com/nveloso/roscope/internal/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath string
	outputFlag string
	saveFlag   bool
	loadIDFlag string
	verbose    bool
)

func versionString() string {
	return fmt.Sprintf("roscope %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "roscope",
		Short:         "Static communication-topology analyzer for ROS projects",
		Long:          "roscope — analyzes an extracted ROS project directory and reports its nodes, topics, services, parameters, and communication graph.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&outputFlag, "output", "", "output format: json, markdown")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [project-dir]",
		Short: "Analyze a project and print metrics, behavior summary, and warnings",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().BoolVar(&saveFlag, "save", false, "persist the analysis to the result store")
	analyzeCmd.Flags().StringVar(&loadIDFlag, "id", "", "load a stored analysis by id instead of re-parsing")

	treeCmd := &cobra.Command{
		Use:   "tree [project-dir]",
		Short: "Print the project's file tree as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTree,
	}

	graphCmd := &cobra.Command{
		Use:   "graph [project-dir]",
		Short: "Print the communication graph as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGraph,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(versionString())
		},
	}

	rootCmd.AddCommand(analyzeCmd, treeCmd, graphCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the config path and loads the config, applying flag
// overrides on top.
func loadConfig() (*config.Config, error) {
	cfgPath := configPath
	if cfgPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgPath = filepath.Join(home, ".config", "roscope", "config.toml")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if outputFlag != "" {
		cfg.Output.Format = outputFlag
	}
	return cfg, nil
}

// newEngine builds an engine from config, wiring the SQLite result store
// when the store is enabled or the command asked for persistence.
func newEngine(cfg *config.Config, needStore bool) (*engine.Engine, func(), error) {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	opts := []engine.Option{engine.WithLogger(logger)}
	cleanup := func() {}

	if cfg.Store.Enabled || needStore {
		dbPath := cfg.Store.Path
		if dbPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, nil, fmt.Errorf("cannot determine home directory: %w", err)
			}
			dir := filepath.Join(home, ".config", "roscope")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("creating config directory: %w", err)
			}
			dbPath = filepath.Join(dir, "results.db")
		}
		s, err := store.NewStore(dbPath, cfg.Store.TTL())
		if err != nil {
			return nil, nil, fmt.Errorf("opening result store: %w", err)
		}
		opts = append(opts, engine.WithStore(s))
		cleanup = func() { s.Close() }
	}

	return engine.New(cfg, opts...), cleanup, nil
}

func projectDirArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return dir, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, cleanup, err := newEngine(cfg, saveFlag || loadIDFlag != "")
	if err != nil {
		return err
	}
	defer cleanup()

	var doc *report.Document
	if loadIDFlag != "" {
		stored, ok, err := eng.Load(loadIDFlag)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no stored analysis with id %s", loadIDFlag)
		}
		doc = stored
	} else {
		dir, err := projectDirArg(args)
		if err != nil {
			return err
		}
		doc, err = eng.Analyze(context.Background(), dir)
		if err != nil {
			return err
		}
	}

	var formatter report.Formatter
	switch cfg.Output.Format {
	case "json":
		formatter = report.NewJSONFormatter()
	default:
		formatter = report.NewMarkdownFormatter()
	}

	out, err := formatter.Format(doc)
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runTree(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, cleanup, err := newEngine(cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	dir, err := projectDirArg(args)
	if err != nil {
		return err
	}
	tree, err := eng.Tree(dir)
	if err != nil {
		return fmt.Errorf("building file tree: %w", err)
	}
	return printJSON(cmd, tree)
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, cleanup, err := newEngine(cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	dir, err := projectDirArg(args)
	if err != nil {
		return err
	}
	doc, err := eng.Analyze(context.Background(), dir)
	if err != nil {
		return err
	}
	return printJSON(cmd, eng.Graph(doc))
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
