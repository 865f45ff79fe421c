package main

import (
	"github.com/spf13/cobra"

	"fabric-desk/internal/app"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and manage fabric sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions (fabric --listsessions)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		names, err := a.Orch.ListSessions(cmd.Context())
		if err != nil {
			return err
		}
		return newPrinter(cmd, a).lines("SESSION", names)
	},
}

var sessionSetCmd = &cobra.Command{
	Use:   "set NAME",
	Short: "Run fabric --session=NAME",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toolOutput(cmd, func(a *app.App) (string, error) { return a.Orch.SetSession(cmd.Context(), args[0]) })
	},
}

var sessionWipeCmd = &cobra.Command{
	Use:   "wipe NAME",
	Short: "Run fabric --wipesession=NAME",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toolOutput(cmd, func(a *app.App) (string, error) { return a.Orch.WipeSession(cmd.Context(), args[0]) })
	},
}

var sessionPrintCmd = &cobra.Command{
	Use:   "print NAME",
	Short: "Run fabric --printsession=NAME",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toolOutput(cmd, func(a *app.App) (string, error) { return a.Orch.PrintSession(cmd.Context(), args[0]) })
	},
}

var sessionOutputCmd = &cobra.Command{
	Use:   "output",
	Short: "Run fabric --output-session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return toolOutput(cmd, func(a *app.App) (string, error) { return a.Orch.OutputSession(cmd.Context()) })
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionListCmd, sessionSetCmd, sessionWipeCmd, sessionPrintCmd, sessionOutputCmd)
}
