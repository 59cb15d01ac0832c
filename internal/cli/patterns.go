package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/loom/internal/compiler"
	"github.com/roach88/loom/internal/ir"
	"github.com/roach88/loom/internal/pattern"
)

// PatternsOptions holds flags for the patterns command.
type PatternsOptions struct {
	*RootOptions
	Mappings string // optional - CUE mapping dir; default catalogue otherwise
}

// PatternEntry is one mapping entry projected for display.
type PatternEntry struct {
	ShapeKey string `json:"shape_key"`
	Verb     string `json:"verb"`
	Params   ir.Map `json:"params"`
}

// NewPatternsCommand creates the patterns command.
func NewPatternsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PatternsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List the pattern-mapping catalogue",
		Long: `List every shape key in the mapping with its bound verb and
parameters. Without --mappings the built-in control-flow catalogue is
listed; with --mappings a CUE dataset is compiled and listed instead.

Examples:
  loom patterns
  loom patterns --mappings ./mappings
  loom patterns --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatterns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mappings, "mappings", "", "CUE mapping directory (defaults to the built-in catalogue)")

	return cmd
}

func runPatterns(opts *PatternsOptions, cmd *cobra.Command) error {
	mapping := pattern.DefaultMapping()
	if opts.Mappings != "" {
		loaded, err := LoadMappingDir(opts.Mappings)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load mappings", err)
		}
		mapping, err = compiler.Bind(loaded.Entries)
		if err != nil {
			return WrapExitError(ExitFailure, "invalid mapping", err)
		}
	}

	entries := make([]PatternEntry, 0, mapping.Len())
	for _, key := range mapping.Keys() {
		b, _ := mapping.Get(key)
		entries = append(entries, PatternEntry{
			ShapeKey: key,
			Verb:     b.Verb.String(),
			Params:   b.Params.CanonicalMap(),
		})
	}

	if opts.Format == "json" {
		return outputJSON(cmd, entries)
	}

	w := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintf(w, "  %-42s -> %s\n", e.ShapeKey, e.Verb)
		if opts.Verbose {
			for _, k := range e.Params.SortedKeys() {
				if k == "verb" {
					continue
				}
				fmt.Fprintf(w, "      %s: %v\n", k, e.Params[k])
			}
		}
	}
	fmt.Fprintf(w, "Total: %d entries\n", len(entries))
	return nil
}
