package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/loom/internal/harness"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute a scenario file",
		Long: `Execute a YAML scenario through the conformance harness.

The scenario declares a workflow graph, a script of steps, and
expectations over the final state. Execution uses a fresh in-memory
graph and receipt chain with deterministic transaction ids.

Exit codes:
  0  scenario passed
  1  an expectation failed
  2  the scenario could not be loaded or executed

Examples:
  loom run scenarios/sequence.yaml
  loom run scenarios/sequence.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, cmd, args[0])
		},
	}
	return cmd
}

func runScenario(opts *RunOptions, cmd *cobra.Command, path string) error {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	result, err := harness.Run(scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to execute scenario", err)
	}

	if opts.Format == "json" {
		if err := outputJSON(cmd, result); err != nil {
			return err
		}
	} else {
		outputRunText(cmd, scenario, result, opts.Verbose)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %q failed", scenario.Name))
	}
	return nil
}

func outputRunText(cmd *cobra.Command, scenario *harness.Scenario, result *harness.Result, verbose bool) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Scenario: %s\n", scenario.Name)
	fmt.Fprintf(w, "Status: %s\n", passStatus(result.Pass))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Trace ===")
	if len(result.Trace) == 0 {
		fmt.Fprintln(w, "  (no transactions)")
	} else {
		for _, event := range result.Trace {
			fmt.Fprintf(w, "  [%d] %s +%d/-%d", event.Seq, event.Verb, event.Adds, event.Removes)
			if event.Reason != "" {
				fmt.Fprintf(w, " (%s)", event.Reason)
			}
			fmt.Fprintln(w)
		}
	}

	if len(result.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Failures ===")
		for _, msg := range result.Errors {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}
}

func passStatus(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}
