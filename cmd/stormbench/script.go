package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dshills/stormbench/internal/plugin"
)

func newScriptCommand(g *globalOptions) *cobra.Command {
	var (
		file  string
		grant []string
	)

	cmd := &cobra.Command{
		Use:   "script [name]",
		Short: "Run a Lua script against the workbench",
		Long: `Run a configured script by name, or an ad hoc file with --file.

Scripts reach the workbench through require("ks"). Only the modules whose
capability is granted are visible: clipboard, debug.read, debug.run or debug.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if file == "" {
				if len(args) == 0 {
					return errors.New("script name or --file required")
				}
				return a.RunScript(cmd.Context(), args[0])
			}

			caps := make([]plugin.Capability, 0, len(grant))
			for _, raw := range grant {
				c, err := plugin.ParseCapability(raw)
				if err != nil {
					return err
				}
				caps = append(caps, c)
			}
			name := file
			if len(args) == 1 {
				name = args[0]
			}
			return a.RunScriptFile(cmd.Context(), name, file, caps...)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Lua file to run")
	cmd.Flags().StringSliceVar(&grant, "grant", nil, "Capabilities granted to --file")
	return cmd
}
