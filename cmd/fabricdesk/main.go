package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"

	"github.com/spf13/cobra"

	"fabric-desk/internal/app"
)

// Build-time variables injected via ldflags
var (
	version   = "dev"
	commit    = "unknown"
	date      = "unknown"
	goVersion = runtime.Version()
)

var rootCmd = &cobra.Command{
	Use:   "fabricdesk",
	Short: "A desktop companion for the fabric CLI",
	Long: `fabricdesk drives a locally installed fabric binary: it runs patterns over URLs,
questions, text or the clipboard, and manages the settings fabric keeps in its
configuration directory (API keys, base URLs, default model, contexts and sessions).

The fabric binary is located through FABRIC_BIN_PATH, the configured tool_path, the
usual install locations, PATH and ~/go/bin, in that order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionFlag, _ := cmd.Flags().GetBool("version"); versionFlag {
			versionCmd.Run(cmd, args)
			return nil
		}
		return cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print detailed version information including build version, commit, date, and platform details.",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "fabricdesk version %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built: %s\n", date)
		fmt.Fprintf(out, "  go version: %s\n", goVersion)
		fmt.Fprintf(out, "  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

// buildApp is replaced in tests.
var buildApp = newApp

// newApp loads the configuration named by the global flags and builds the
// application around it.
func newApp(cmd *cobra.Command) (*app.App, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")

	overrides := map[string]interface{}{}
	for flag, key := range map[string]string{
		"config-dir": "config_dir",
		"tool-path":  "tool_path",
		"log-level":  "log_level",
		"output":     "output",
	} {
		if flags.Changed(flag) {
			overrides[key], _ = flags.GetString(flag)
		}
	}
	if flags.Changed("timeout") {
		overrides["tool_timeout"], _ = flags.GetDuration("timeout")
	}

	cfg, err := app.LoadConfig(configPath, overrides)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, app.WithStdout(cmd.OutOrStdout()), app.WithStderr(cmd.ErrOrStderr()))
}

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path (default ~/.config/fabricdesk/config.toml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format: table, yaml or json")
	rootCmd.PersistentFlags().String("template", "", "render output through a Go template (prefix with @ to read a file)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("config-dir", "", "fabric configuration directory (default ~/.config/fabric)")
	rootCmd.PersistentFlags().String("tool-path", "", "path to the fabric executable")
	rootCmd.PersistentFlags().Duration("timeout", 0, "kill fabric after this long (0 waits forever)")
	rootCmd.Flags().BoolP("version", "v", false, "print version information")
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
}

func main() {
	// Disable usage on error to show only our custom error messages
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
