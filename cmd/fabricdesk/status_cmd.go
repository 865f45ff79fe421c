package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fabric-desk/internal/app"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where fabric lives and what is configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		st, err := a.Status(cmd.Context())
		if err != nil {
			return err
		}

		tool := st.Tool.Path
		if !st.Tool.Found {
			tool += " (not found, relying on PATH at run time)"
		}
		rows := [][]string{
			{"Config directory", app.ContractPath(st.ToolDir)},
			{"Settings file", app.ContractPath(st.StoreFile)},
			{"fabric", fmt.Sprintf("%s [%s]", tool, st.Tool.Step)},
			{"Default pattern", st.DefaultPattern},
			{"Default model", st.DefaultModel},
			{"Default vendor", st.DefaultVendor},
			{"Current context", st.CurrentContext},
			{"Contexts", strings.Join(st.Contexts, ", ")},
			{"Patterns installed", strconv.Itoa(st.Patterns)},
			{"Cached models", strconv.Itoa(st.CachedModels)},
			{"API keys set", strings.Join(st.APIKeys, ", ")},
		}
		return newPrinter(cmd, a).print(st, []string{"SETTING", "VALUE"}, rows)
	},
}

var toolCmd = &cobra.Command{
	Use:   "tool",
	Short: "Inspect the fabric executable",
}

var toolPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the resolved fabric executable and how it was found",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		res, err := a.Resolver.Resolve()
		if err != nil {
			return err
		}
		rows := [][]string{{res.Path, res.Step, strconv.FormatBool(res.Found)}}
		return newPrinter(cmd, a).print(res, []string{"PATH", "STEP", "FOUND"}, rows)
	},
}

var clipboardCmd = &cobra.Command{
	Use:   "clipboard",
	Short: "Print the current clipboard text",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		content, err := a.Output.ReadClipboard()
		if err != nil {
			return err
		}
		return a.Output.WriteToStdout(content)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, toolCmd, clipboardCmd)
	toolCmd.AddCommand(toolPathCmd)
}
