package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fabric-desk/internal/app"
	"fabric-desk/internal/apperr"
	"fabric-desk/internal/orchestrator"
	"fabric-desk/internal/store"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models and pick the default one",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the models fabric knows about",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		cached, _ := cmd.Flags().GetBool("cached")
		list, err := loadModels(cmd, a, cached)
		if err != nil {
			return err
		}

		rows := make([][]string, len(list))
		for i, m := range list {
			rows[i] = []string{strconv.Itoa(m.ID), m.Name, m.Vendor}
		}
		return newPrinter(cmd, a).print(list, []string{"ID", "NAME", "VENDOR"}, rows)
	},
}

var modelsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the model cache from fabric --listmodels",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		stop := startSpinner("Listing models...")
		lines, err := a.Orch.RefreshModels(cmd.Context(), a.ToolDir)
		stop()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cached %d models in %s\n",
			len(orchestrator.ParseModels(lines)), app.ContractPath(a.ToolDir))
		return err
	},
}

var modelsDefaultCmd = &cobra.Command{
	Use:   "default [MODEL]",
	Short: "Show or set the default model",
	Long: `With MODEL, store it as DEFAULT_MODEL. With --pick, choose it from the model
list. Otherwise print the current default.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}

		pick, _ := cmd.Flags().GetBool("pick")
		switch {
		case len(args) == 1:
			return a.SetDefaultModel(args[0])
		case pick:
			list, err := loadModels(cmd, a, true)
			if err != nil {
				return err
			}
			names := make([]string, len(list))
			for i, m := range list {
				names[i] = m.Name
			}
			choice, err := a.Prompter.Select("Select the default model:", "", names, a.Mirror.Model())
			if err != nil {
				return err
			}
			return a.SetDefaultModel(choice)
		default:
			_, err := fmt.Fprintln(cmd.OutOrStdout(), a.Mirror.Model())
			return err
		}
	},
}

var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "List vendors and pick the default one",
}

var vendorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the vendors reported by fabric --listmodels",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		stop := startSpinner("Listing vendors...")
		vendors, err := a.Orch.ListVendors(cmd.Context())
		stop()
		if err != nil {
			return err
		}
		return newPrinter(cmd, a).lines("VENDOR", vendors)
	},
}

var vendorsDefaultCmd = &cobra.Command{
	Use:   "default [VENDOR]",
	Short: "Show or set the default vendor",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return a.SetDefaultVendor(args[0])
		}
		vendor, _, err := a.Store.Lookup(store.KeyDefaultVendor)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), vendor)
		return err
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd, vendorsCmd)
	modelsCmd.AddCommand(modelsListCmd, modelsRefreshCmd, modelsDefaultCmd)
	vendorsCmd.AddCommand(vendorsListCmd, vendorsDefaultCmd)

	modelsListCmd.Flags().Bool("cached", false, "read the model cache instead of running fabric")
	modelsDefaultCmd.Flags().Bool("pick", false, "choose the model interactively")
}

// loadModels returns the parsed model list, from the cache when asked. A
// missing cache falls back to a live listing that also refreshes it.
func loadModels(cmd *cobra.Command, a *app.App, cached bool) ([]orchestrator.Model, error) {
	if cached {
		list, err := orchestrator.CachedModels(a.ToolDir)
		if !errors.Is(err, apperr.ErrNotFound) {
			return list, err
		}
	}

	stop := startSpinner("Listing models...")
	lines, err := a.Orch.RefreshModels(cmd.Context(), a.ToolDir)
	stop()
	if err != nil {
		return nil, err
	}
	return orchestrator.ParseModels(lines), nil
}
