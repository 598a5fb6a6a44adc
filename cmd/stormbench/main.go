// Package main is the entry point for the stormbench debug workbench CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/stormbench/internal/app"
	"github.com/dshills/stormbench/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	workspace  string
	editor     string

	cfg config.Config
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:           "stormbench",
		Short:         "Debug workbench actions and clipboard bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.loadConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", config.DefaultFileName, "Path to configuration file")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error, off)")
	flags.StringVarP(&g.workspace, "workspace", "w", "", "Workspace folder")
	flags.StringVar(&g.editor, "editor", os.Getenv("EDITOR"), "Command used to open launch files")

	root.AddCommand(
		newClipboardCommand(g),
		newActionsCommand(g),
		newScriptCommand(g),
		newVersionCommand(),
	)
	return root
}

// loadConfig resolves settings from the file, the environment and flags.
func (g *globalOptions) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	g.cfg = cfg
	return nil
}

// newApp starts the application for one command invocation.
func (g *globalOptions) newApp() (*app.Application, error) {
	return app.New(app.Options{
		Config:        g.cfg,
		LogOutput:     os.Stderr,
		Editor:        g.editor,
		WorkspacePath: g.workspace,
	})
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stormbench %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
