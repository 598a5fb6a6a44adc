package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/stormbench/internal/clipboard"
	"github.com/dshills/stormbench/internal/logging"
)

func newClipboardCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clipboard",
		Short: "Read, write or serve the system clipboard",
	}
	cmd.AddCommand(
		newClipboardReadCommand(g),
		newClipboardWriteCommand(g),
		newClipboardServeCommand(g),
		newClipboardRemoteCommand(g),
	)
	return cmd
}

func (g *globalOptions) clipboardContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d := g.cfg.ClipboardTimeout(); d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

func newClipboardReadCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read",
		Short: "Print the clipboard text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := g.clipboardContext(cmd.Context())
			defer cancel()

			text, err := a.Clipboard().ReadText(ctx)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func newClipboardWriteCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "write [text...]",
		Short: "Replace the clipboard text; reads stdin when no text is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := textFromArgs(cmd, args)
			if err != nil {
				return err
			}

			a, err := g.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := g.clipboardContext(cmd.Context())
			defer cancel()
			return a.Clipboard().WriteText(ctx, text)
		},
	}
}

func textFromArgs(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func newClipboardServeCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve clipboard requests framed on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			logger := logging.Component(a.Logger(), "clipboard-server")
			logger.Info().Msg("serving clipboard on stdio")

			server := clipboard.NewServer(a.Clipboard(), logger)
			return server.Serve(cmd.Context(), clipboard.NewStreamTransport(os.Stdin, os.Stdout))
		},
	}
}

func newClipboardRemoteCommand(g *globalOptions) *cobra.Command {
	var hostCommand string

	cmd := &cobra.Command{
		Use:   "remote (read | write [text...])",
		Short: "Use a clipboard served by another process",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := strings.Fields(hostCommand)
			if len(fields) == 0 {
				self, err := os.Executable()
				if err != nil {
					return fmt.Errorf("locate executable: %w", err)
				}
				fields = []string{self, "--config", g.configPath, "clipboard", "serve"}
			}

			host := exec.Command(fields[0], fields[1:]...)
			host.Stderr = os.Stderr
			transport, err := clipboard.NewProcessTransport(host)
			if err != nil {
				return err
			}

			logger := logging.New(g.cfg.Logging(os.Stderr))
			client := clipboard.NewClient(transport, logging.Component(logger, "clipboard-client"))
			defer client.Close()

			switch args[0] {
			case "read":
				ctx, cancel := g.clipboardContext(cmd.Context())
				defer cancel()
				text, err := client.ReadText(ctx)
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), text)
				return err
			case "write":
				text, err := textFromArgs(cmd, args[1:])
				if err != nil {
					return err
				}
				ctx, cancel := g.clipboardContext(cmd.Context())
				defer cancel()
				return client.WriteText(ctx, text)
			default:
				return fmt.Errorf("unknown remote operation %q", args[0])
			}
		},
	}
	cmd.Flags().StringVar(&hostCommand, "exec", "", "Clipboard host command (default: this binary's clipboard serve)")
	return cmd
}
