package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"fabric-desk/internal/app"
	"fabric-desk/internal/orchestrator"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage fabric context files",
	Long: `Manage the Markdown context files in <config dir>/contexts. The current context
(CURRENT_CONTEXT) is applied to every run that does not pass --context.`,
}

var contextCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create an empty context file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		path, err := a.Contexts.Create(args[0])
		if err != nil {
			return err
		}
		if edit, _ := cmd.Flags().GetBool("edit"); edit {
			return openEditor(cmd, a, path)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", app.ContractPath(path))
		return err
	},
}

var contextReadCmd = &cobra.Command{
	Use:   "read NAME",
	Short: "Print a context file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		content, err := a.Contexts.Read(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	},
}

var contextSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Replace a context file with --file or standard input",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}

		var content []byte
		if path, _ := cmd.Flags().GetString("file"); path != "" {
			content, err = os.ReadFile(path)
		} else {
			content, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("failed to read context content: %w", err)
		}
		return a.Contexts.Save(args[0], string(content))
	},
}

var contextDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a context file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		if yes, _ := cmd.Flags().GetBool("yes"); !yes && a.Prompter.IsInteractive() {
			ok, err := a.Prompter.Confirm(fmt.Sprintf("Delete context %s?", args[0]), false)
			if err != nil || !ok {
				return err
			}
		}
		return a.Contexts.Delete(args[0])
	},
}

var contextListCmd = &cobra.Command{
	Use:   "list",
	Short: "List context files",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}

		var names []string
		if fromTool, _ := cmd.Flags().GetBool("tool"); fromTool {
			names, err = a.Orch.ListContexts(cmd.Context())
		} else {
			names, err = a.Contexts.List()
		}
		if err != nil {
			return err
		}
		return newPrinter(cmd, a).lines("CONTEXT", names)
	},
}

var contextUseCmd = &cobra.Command{
	Use:   "use NAME",
	Short: "Make NAME the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		return a.Contexts.SetCurrent(args[0])
	},
}

var contextEditCmd = &cobra.Command{
	Use:   "edit NAME",
	Short: "Open a context file in your editor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		if _, err := a.Contexts.Read(args[0]); err != nil {
			return err
		}
		path, err := a.Contexts.Path(args[0])
		if err != nil {
			return err
		}
		return openEditor(cmd, a, path)
	},
}

var contextApplyCmd = &cobra.Command{
	Use:   "apply NAME",
	Short: "Run fabric --context=NAME",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toolOutput(cmd, func(a *app.App) (string, error) { return a.Orch.SetContext(cmd.Context(), args[0]) })
	},
}

var contextWipeCmd = &cobra.Command{
	Use:   "wipe NAME",
	Short: "Run fabric --wipecontext=NAME",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toolOutput(cmd, func(a *app.App) (string, error) { return a.Orch.WipeContext(cmd.Context(), args[0]) })
	},
}

var contextPrintCmd = &cobra.Command{
	Use:   "print NAME",
	Short: "Run fabric --printcontext=NAME",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toolOutput(cmd, func(a *app.App) (string, error) { return a.Orch.PrintContext(cmd.Context(), args[0]) })
	},
}

func init() {
	rootCmd.AddCommand(contextCmd)
	contextCmd.AddCommand(contextCreateCmd, contextReadCmd, contextSaveCmd, contextDeleteCmd, contextListCmd,
		contextUseCmd, contextEditCmd, contextApplyCmd, contextWipeCmd, contextPrintCmd)

	contextCreateCmd.Flags().Bool("edit", false, "open the new file in your editor")
	contextSaveCmd.Flags().StringP("file", "f", "", "read the content from this file")
	contextDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	contextListCmd.Flags().Bool("tool", false, "ask fabric (--listcontexts) instead of reading the directory")
	for _, c := range []*cobra.Command{contextCreateCmd, contextEditCmd} {
		c.Flags().StringP("editor", "e", "", "editor to open the file in")
	}
}

func openEditor(cmd *cobra.Command, a *app.App, path string) error {
	requested, _ := cmd.Flags().GetString("editor")
	editor := orchestrator.ResolveEditor(requested, a.Config.Editor)
	return a.Output.OpenInEditor(path, editor)
}

// toolOutput runs a plain fabric sub-command and prints what it wrote.
func toolOutput(cmd *cobra.Command, run func(*app.App) (string, error)) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	out, err := run(a)
	if err != nil {
		return err
	}
	if out == "" {
		return nil
	}
	return a.Output.WriteToStdout(out)
}
