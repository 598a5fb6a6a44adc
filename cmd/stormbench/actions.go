package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/dshills/stormbench/internal/actions"
	"github.com/dshills/stormbench/internal/app"
)

// seedOptions put the debug model into a state before listing or running
// actions.
type seedOptions struct {
	breakpoints []string
	functions   []string
	watches     []string
	start       string
	deactivate  bool
}

func (s *seedOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVar(&s.breakpoints, "breakpoint", nil, "Add a source breakpoint (file:line)")
	f.StringArrayVar(&s.functions, "function", nil, "Add a function breakpoint")
	f.StringArrayVar(&s.watches, "watch", nil, "Add a watch expression")
	f.StringVar(&s.start, "start", "", "Start a session with the named configuration")
	f.BoolVar(&s.deactivate, "deactivate", false, "Deactivate breakpoints")
}

func (s *seedOptions) apply(ctx context.Context, a *app.Application) error {
	svc := a.Debug()
	for _, spec := range s.breakpoints {
		// The line follows the last colon so Windows drive letters survive.
		i := strings.LastIndex(spec, ":")
		if i <= 0 {
			return fmt.Errorf("breakpoint %q: want file:line", spec)
		}
		path, lineText := spec[:i], spec[i+1:]
		line, err := strconv.Atoi(lineText)
		if err != nil {
			return fmt.Errorf("breakpoint %q: %w", spec, err)
		}
		if _, err := svc.AddBreakpoint(path, line); err != nil {
			return err
		}
	}
	for _, name := range s.functions {
		svc.AddFunctionBreakpoint(name)
	}
	for _, expr := range s.watches {
		svc.AddWatchExpression(expr)
	}
	if s.deactivate {
		svc.SetBreakpointsActivated(false)
	}
	if s.start != "" {
		if _, err := svc.StartDebugging(ctx, s.start, false); err != nil {
			return err
		}
	}
	return nil
}

func newActionsCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List and run debug actions",
	}
	cmd.AddCommand(newActionsListCommand(g), newActionsRunCommand(g))
	return cmd
}

func newActionsListCommand(g *globalOptions) *cobra.Command {
	var (
		seed   seedOptions
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show every debug action and whether it is enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := seed.apply(cmd.Context(), a); err != nil {
				return err
			}

			list := a.Actions().List()
			if asJSON {
				return writeActionsJSON(cmd.OutOrStdout(), list)
			}
			return writeActionsTable(cmd.OutOrStdout(), list)
		},
	}
	seed.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func writeActionsTable(w io.Writer, list []*actions.Action) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENABLED\tID\tLABEL")
	for _, a := range list {
		mark := "-"
		if a.Enabled() {
			mark = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", mark, a.ID(), a.Label())
	}
	return tw.Flush()
}

func writeActionsJSON(w io.Writer, list []*actions.Action) error {
	out := []byte(`[]`)
	var err error
	for i, a := range list {
		prefix := strconv.Itoa(i)
		if out, err = sjson.SetBytes(out, prefix+".id", a.ID()); err != nil {
			return err
		}
		if out, err = sjson.SetBytes(out, prefix+".label", a.Label()); err != nil {
			return err
		}
		if out, err = sjson.SetBytes(out, prefix+".tooltip", a.Tooltip()); err != nil {
			return err
		}
		if out, err = sjson.SetBytes(out, prefix+".enabled", a.Enabled()); err != nil {
			return err
		}
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

func newActionsRunCommand(g *globalOptions) *cobra.Command {
	var (
		seed         seedOptions
		value        string
		evaluateName string
	)

	cmd := &cobra.Command{
		Use:   "run <action-id> [argument]",
		Short: "Run a debug action",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := seed.apply(cmd.Context(), a); err != nil {
				return err
			}

			var arg any
			if len(args) == 2 {
				arg = args[1]
			}
			if args[0] == actions.ActionCopyValue {
				name := ""
				if len(args) == 2 {
					name = args[1]
				}
				arg = actions.Variable{Name: name, Value: value, EvaluateName: evaluateName}
			}

			if err := a.Actions().Run(cmd.Context(), args[0], arg); err != nil {
				return err
			}

			if act, ok := a.Actions().Get(args[0]); ok {
				logger := a.Logger()
				logger.Info().Str("action", act.ID()).Str("label", act.Label()).Msg("action ran")
			}
			return nil
		},
	}
	seed.register(cmd)
	cmd.Flags().StringVar(&value, "value", "", "Displayed value for the copy value action")
	cmd.Flags().StringVar(&evaluateName, "evaluate-name", "", "Expression that re-evaluates the value")
	return cmd
}
