package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fabric-desk/internal/app"
	"fabric-desk/internal/apperr"
	"fabric-desk/internal/store"
)

var patternCmd = &cobra.Command{
	Use:   "pattern",
	Short: "List, select and update patterns",
}

type patternRow struct {
	Name    string `json:"name" yaml:"name"`
	Default bool   `json:"default" yaml:"default"`
}

var patternListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		names, err := a.RefreshPatterns()
		if err != nil {
			return err
		}

		current := a.Mirror.DefaultPattern()
		data := make([]patternRow, len(names))
		rows := make([][]string, len(names))
		for i, name := range names {
			data[i] = patternRow{Name: name, Default: name == current}
			mark := ""
			if data[i].Default {
				mark = "*"
			}
			rows[i] = []string{name, mark}
		}
		return newPrinter(cmd, a).print(data, []string{"PATTERN", "DEFAULT"}, rows)
	},
}

var patternSelectCmd = &cobra.Command{
	Use:   "select [NAME]",
	Short: "Select the default pattern",
	Long: `Select NAME as the default pattern (DEFAULT_PATTERN). Without NAME, pick one
from the installed patterns.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}

		name := ""
		if len(args) == 1 {
			name = args[0]
		} else {
			installed, err := a.RefreshPatterns()
			if err != nil {
				return err
			}
			if len(installed) == 0 {
				return apperr.Precondition("no patterns installed", "Fetch them with: fabricdesk pattern update")
			}
			if name, err = a.Prompter.SelectPattern(installed, a.Mirror.DefaultPattern()); err != nil {
				return err
			}
		}

		if err := a.SelectPattern(name, true); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Default pattern: %s\n", name)
		return err
	},
}

var patternUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download the latest patterns (fabric -U)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		stop := startSpinner("Updating patterns...")
		out, err := a.Orch.UpdatePatterns(cmd.Context())
		stop()
		if err != nil {
			return err
		}
		if out != "" {
			fmt.Fprint(cmd.OutOrStdout(), out)
		}
		names, err := a.RefreshPatterns()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d patterns installed\n", len(names))
		return err
	},
}

var patternRepoCmd = &cobra.Command{
	Use:   "repo [URL]",
	Short: "Show or set the git repository patterns are loaded from",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showOrSet(cmd, args, store.KeyPatternsRepoURL)
	},
}

var patternFolderCmd = &cobra.Command{
	Use:   "folder [FOLDER]",
	Short: "Show or set the folder inside the repository that holds the patterns",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showOrSet(cmd, args, store.KeyPatternsRepoFolder)
	},
}

var patternLoaderCmd = &cobra.Command{
	Use:   "loader",
	Short: "List every pattern loader setting",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listEntries(cmd, func(a *app.App) ([]store.Entry, error) { return a.Store.PatternLoaderSettings() })
	},
}

func init() {
	rootCmd.AddCommand(patternCmd)
	patternCmd.AddCommand(patternListCmd, patternSelectCmd, patternUpdateCmd, patternRepoCmd, patternFolderCmd,
		patternLoaderCmd)
}

// showOrSet prints key when args is empty and stores args[0] otherwise.
func showOrSet(cmd *cobra.Command, args []string, key string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		return a.Store.Set(key, args[0])
	}
	value, err := a.Store.Get(key)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
	return err
}
