package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fabric-desk/internal/app"
	"fabric-desk/pkg/models"
)

var runCmd = &cobra.Command{
	Use:   "run [text]",
	Short: "Run a pattern over a URL, question, text or the clipboard",
	Long: `Run the selected pattern (or --pattern) through fabric.

Exactly one input source is used: --url, --question, --clipboard or --text. A
positional argument is treated as --text. Text input is passed to fabric on stdin.

The model parameters come from the stored defaults unless overridden with the
flags below; overrides apply to this run only.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		request, err := buildRunRequest(cmd, args)
		if err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}

		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		if err := applyParameterFlags(cmd, a); err != nil {
			return err
		}
		if request.Context == "" {
			if request.Context, err = a.Contexts.Current(); err != nil {
				return err
			}
		}

		stop := startSpinner("Running " + patternLabel(request, a) + "...")
		output, err := a.Run(cmd.Context(), request)
		stop()
		if err != nil {
			return err
		}

		return deliverOutput(cmd, a, output)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("url", "u", "", "URL to fetch and process")
	runCmd.Flags().StringP("question", "q", "", "question to ask")
	runCmd.Flags().BoolP("clipboard", "b", false, "process the clipboard contents")
	runCmd.Flags().StringP("text", "t", "", "text to process")
	runCmd.Flags().StringP("pattern", "p", "", "pattern to use for this run (default: the selected pattern)")
	runCmd.Flags().String("context", "", "fabric context to apply")
	runCmd.Flags().String("session", "", "fabric session to continue")

	runCmd.Flags().StringP("model", "m", "", "model override for this run")
	runCmd.Flags().Float64("temperature", 0, "temperature override")
	runCmd.Flags().Float64("topp", 0, "top-p override")
	runCmd.Flags().Float64("presencepenalty", 0, "presence penalty override")
	runCmd.Flags().Float64("frequencypenalty", 0, "frequency penalty override")

	runCmd.Flags().Bool("copy", false, "also copy the output to the clipboard")
	runCmd.Flags().String("output-file", "", "also write the output to this file")
}

// buildRunRequest constructs a RunRequest from command flags and arguments
func buildRunRequest(cmd *cobra.Command, args []string) (models.RunRequest, error) {
	flags := cmd.Flags()

	type source struct {
		kind  models.InputSource
		value string
	}
	var sources []source

	if url, _ := flags.GetString("url"); url != "" {
		sources = append(sources, source{models.SourceURL, url})
	}
	if question, _ := flags.GetString("question"); question != "" {
		sources = append(sources, source{models.SourceQuestion, question})
	}
	if fromClipboard, _ := flags.GetBool("clipboard"); fromClipboard {
		sources = append(sources, source{models.SourceClipboard, ""})
	}
	if text, _ := flags.GetString("text"); text != "" {
		sources = append(sources, source{models.SourceText, text})
	}
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		sources = append(sources, source{models.SourceText, args[0]})
	}

	switch len(sources) {
	case 0:
		return models.RunRequest{}, fmt.Errorf("no input given: use one of --url, --question, --clipboard or --text")
	case 1:
	default:
		return models.RunRequest{}, fmt.Errorf("only one input source can be used per run")
	}

	request, err := models.NewRunRequest(sources[0].kind, sources[0].value)
	if err != nil {
		return models.RunRequest{}, err
	}

	request.Pattern, _ = flags.GetString("pattern")
	request.Context, _ = flags.GetString("context")
	request.Session, _ = flags.GetString("session")
	return request, nil
}

// applyParameterFlags copies explicitly set model parameters into the mirror.
func applyParameterFlags(cmd *cobra.Command, a *app.App) error {
	flags := cmd.Flags()
	if flags.Changed("model") {
		model, _ := flags.GetString("model")
		a.Mirror.SetModel(model)
	}

	setters := map[string]func(float64){
		"temperature":      a.Mirror.SetTemperature,
		"topp":             a.Mirror.SetTopP,
		"presencepenalty":  a.Mirror.SetPresencePenalty,
		"frequencypenalty": a.Mirror.SetFrequencyPenalty,
	}
	for name, set := range setters {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetFloat64(name)
		if err != nil {
			return fmt.Errorf("invalid %s flag: %w", name, err)
		}
		set(v)
	}
	return nil
}

func patternLabel(request models.RunRequest, a *app.App) string {
	if request.Pattern != "" {
		return request.Pattern
	}
	if p := a.Mirror.SelectedPattern(); p != "" {
		return p
	}
	return "pattern"
}

// deliverOutput prints the run output and copies it to the extra targets.
func deliverOutput(cmd *cobra.Command, a *app.App, output string) error {
	if err := a.Output.WriteToStdout(output); err != nil {
		return err
	}

	if copyOut, _ := cmd.Flags().GetBool("copy"); copyOut {
		if err := a.Output.WriteToClipboard(output); err != nil {
			return err
		}
	}
	if path, _ := cmd.Flags().GetString("output-file"); path != "" {
		if err := a.Output.WriteToFile(output, path); err != nil {
			return err
		}
	}
	return nil
}
