package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/loom/internal/lockchain"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Database string
}

// VerifyResult holds the verification output.
type VerifyResult struct {
	Database string `json:"database"`
	Receipts int64  `json:"receipts"`
	Valid    bool   `json:"valid"`
	Failure  string `json:"failure,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the integrity of a receipt chain",
		Long: `Verify a persisted receipt chain end to end.

Checks, for every receipt: prev-hash linkage to its predecessor,
recomputed content hash against the stored hash, and state-hash
composition (each receipt's before-state must equal its predecessor's
after-state).

Exit codes:
  0  chain is intact
  1  an integrity violation was found
  2  the database could not be opened

Examples:
  loom verify --db ./loom.db
  loom verify --db ./loom.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite receipt database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	ledger, err := lockchain.OpenSQLite(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer ledger.Close()

	chain := lockchain.NewChain(ledger)
	n, err := chain.Len(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read chain", err)
	}

	result := VerifyResult{
		Database: opts.Database,
		Receipts: n,
		Valid:    true,
	}
	if err := chain.VerifyChain(ctx); err != nil {
		result.Valid = false
		result.Failure = err.Error()
	}

	if opts.Format == "json" {
		if err := outputJSON(cmd, result); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Chain: %s\n", opts.Database)
		fmt.Fprintf(w, "Receipts: %d\n", result.Receipts)
		if result.Valid {
			fmt.Fprintln(w, "Integrity: OK")
		} else {
			fmt.Fprintf(w, "Integrity: VIOLATED\n  %s\n", result.Failure)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "chain integrity violated")
	}
	return nil
}
