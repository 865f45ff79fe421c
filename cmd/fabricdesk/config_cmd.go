package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fabric-desk/internal/app"
	"fabric-desk/internal/interactive"
	"fabric-desk/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write fabric's .env settings",
	Long: `Read and write the KEY=VALUE settings fabric keeps in <config dir>/.env:
API keys, vendor base URLs, defaults and pattern loader settings.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print the value of a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		value, err := a.Store.Get(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
		return err
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY [VALUE]",
	Short: "Set a key, prompting for the value when it is omitted",
	Long: `Set KEY to VALUE. Without VALUE the value is read from a hidden prompt, which
keeps API keys out of the shell history.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}

		key := strings.TrimSpace(args[0])
		var value string
		if len(args) == 2 {
			value = args[1]
		} else {
			value, err = a.Prompter.Secret(key)
			if errors.Is(err, interactive.ErrNotInteractive) {
				return fmt.Errorf("no value given for %s and no terminal to prompt on", key)
			}
			if err != nil {
				return err
			}
		}

		if err := a.Store.Set(key, value); err != nil {
			return err
		}
		a.Logger.Info("key updated", zap.String("key", key), zap.String("path", a.Store.Path()))
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset KEY",
	Short: "Blank the value of a key, keeping the key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		return a.Store.Reset(args[0])
	},
}

var configListCmd = &cobra.Command{
	Use:   "list [FILTER]",
	Short: "List keys containing FILTER",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ""
		if len(args) > 0 {
			filter = args[0]
		}
		return listEntries(cmd, func(a *app.App) ([]store.Entry, error) { return a.Store.List(filter) })
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List vendor API keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listEntries(cmd, func(a *app.App) ([]store.Entry, error) { return a.Store.APIKeys() })
	},
}

var configURLsCmd = &cobra.Command{
	Use:   "urls",
	Short: "List vendor base URLs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listEntries(cmd, func(a *app.App) ([]store.Entry, error) { return a.Store.BaseURLs() })
	},
}

var configWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the settings every time the .env file changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		p := newPrinter(cmd, a)
		show, _ := cmd.Flags().GetBool("show-secrets")

		fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", app.ContractPath(a.Store.Path()))
		return a.Store.Watch(cmd.Context(), func(entries []store.Entry) {
			if err := p.print(entries, []string{"KEY", "VALUE"}, entryRows(a, entries, show)); err != nil {
				a.Logger.Warn("could not print change", zap.Error(err))
			}
		})
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the location of the .env file",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), a.Store.Path())
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd, configSetCmd, configResetCmd, configListCmd,
		configKeysCmd, configURLsCmd, configWatchCmd, configPathCmd)

	for _, c := range []*cobra.Command{configListCmd, configKeysCmd, configURLsCmd, configWatchCmd} {
		c.Flags().Bool("show-secrets", false, "print API key values unmasked")
	}
}

func listEntries(cmd *cobra.Command, fetch func(*app.App) ([]store.Entry, error)) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	entries, err := fetch(a)
	if err != nil {
		return err
	}
	show, _ := cmd.Flags().GetBool("show-secrets")
	return newPrinter(cmd, a).print(maskEntries(a, entries, show), []string{"KEY", "VALUE"}, entryRows(a, entries, show))
}

// maskEntries hides API key values unless show is set.
func maskEntries(a *app.App, entries []store.Entry, show bool) []store.Entry {
	out := make([]store.Entry, len(entries))
	for i, e := range entries {
		out[i] = e
		if !show && isSecret(e.Name) && e.Value != "" {
			out[i].Value, _ = a.Renderer.Render(`{{ mask . }}`, e.Value)
		}
	}
	return out
}

func entryRows(a *app.App, entries []store.Entry, show bool) [][]string {
	masked := maskEntries(a, entries, show)
	rows := make([][]string, len(masked))
	for i, e := range masked {
		rows[i] = []string{e.Name, e.Value}
	}
	return rows
}

func isSecret(key string) bool {
	return strings.Contains(key, "API_KEY") || strings.Contains(key, "TOKEN")
}
