package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/loom/internal/compiler"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Mappings string
}

// CompileResult holds the compile output.
type CompileResult struct {
	Directory string                     `json:"directory"`
	Files     int                        `json:"files"`
	Entries   int                        `json:"entries"`
	Valid     bool                       `json:"valid"`
	Errors    []compiler.ValidationError `json:"errors,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile and validate a CUE mapping dataset",
		Long: `Load a CUE pattern-mapping directory, parse its entries, and run
full validation: unknown verbs, malformed or duplicate shape keys,
missing or meaningless parameters, and out-of-range mode values.

All validation errors are reported together.

Exit codes:
  0  mapping is valid
  1  validation errors found
  2  the directory could not be loaded

Examples:
  loom compile --mappings ./mappings
  loom compile --mappings ./mappings --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mappings, "mappings", "", "CUE mapping directory (required)")
	_ = cmd.MarkFlagRequired("mappings")

	return cmd
}

func runCompile(opts *CompileOptions, cmd *cobra.Command) error {
	loaded, err := LoadMappingDir(opts.Mappings)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load mappings", err)
	}

	result := CompileResult{
		Directory: opts.Mappings,
		Files:     loaded.FileCount,
		Entries:   len(loaded.Entries),
		Errors:    compiler.Validate(loaded.Entries),
	}
	result.Valid = len(result.Errors) == 0

	if opts.Format == "json" {
		if err := outputJSON(cmd, result); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Compiled %d entries from %d files in %s\n", result.Entries, result.Files, result.Directory)
		if result.Valid {
			fmt.Fprintln(w, "Validation: OK")
		} else {
			fmt.Fprintf(w, "Validation: %d errors\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Fprintf(w, "  %s\n", e.Error())
			}
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "mapping validation failed")
	}
	return nil
}
