package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/loom/internal/ir"
	"github.com/roach88/loom/internal/lockchain"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Actor    string // optional - filter to a specific actor
}

// TraceReceipt is one receipt projected for display.
type TraceReceipt struct {
	Seq     int64  `json:"seq"`
	TxID    string `json:"tx_id"`
	Actor   string `json:"actor"`
	Verb    string `json:"verb"`
	Adds    int    `json:"adds"`
	Removes int    `json:"removes"`
	Reason  string `json:"reason,omitempty"`
	Hash    string `json:"hash"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Database string         `json:"database"`
	Receipts []TraceReceipt `json:"receipts"`
	Total    int            `json:"total"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Dump the receipt stream of a chain",
		Long: `Dump every receipt in a persisted chain, in chain order.

Each line shows the sequence number, transaction id, actor, verb,
delta summary, and termination reason where present. Use --actor to
restrict the stream, e.g. to guard-initiated transactions.

Examples:
  loom trace --db ./loom.db
  loom trace --db ./loom.db --actor chronology
  loom trace --db ./loom.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite receipt database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Actor, "actor", "", "filter to a specific actor")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	ledger, err := lockchain.OpenSQLite(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer ledger.Close()

	receipts, err := ledger.All(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read receipts", err)
	}

	result := TraceResult{Database: opts.Database}
	for _, r := range receipts {
		if opts.Actor != "" && r.Actor != opts.Actor {
			continue
		}
		result.Receipts = append(result.Receipts, projectReceipt(r))
	}
	result.Total = len(result.Receipts)

	if opts.Format == "json" {
		return outputJSON(cmd, result)
	}
	return outputTraceText(cmd, result, opts.Verbose)
}

func projectReceipt(r ir.Receipt) TraceReceipt {
	return TraceReceipt{
		Seq:     r.Seq,
		TxID:    r.TxID,
		Actor:   r.Actor,
		Verb:    r.VerbName,
		Adds:    r.Additions(),
		Removes: r.Removals(),
		Reason:  r.Reason,
		Hash:    r.Hash,
	}
}

func outputTraceText(cmd *cobra.Command, result TraceResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Receipts in %s\n", result.Database)
	if len(result.Receipts) == 0 {
		fmt.Fprintln(w, "  (empty chain)")
		return nil
	}
	for _, r := range result.Receipts {
		fmt.Fprintf(w, "  [%d] %s by %s +%d/-%d", r.Seq, r.Verb, r.Actor, r.Adds, r.Removes)
		if r.Reason != "" {
			fmt.Fprintf(w, " (%s)", r.Reason)
		}
		fmt.Fprintln(w)
		if verbose {
			fmt.Fprintf(w, "       tx: %s\n", r.TxID)
			fmt.Fprintf(w, "       hash: %s\n", truncateHash(r.Hash))
		}
	}
	fmt.Fprintf(w, "Total: %d\n", result.Total)
	return nil
}

// truncateHash truncates a long hash for display.
func truncateHash(h string) string {
	if len(h) <= 16 {
		return h
	}
	return h[:8] + "..." + h[len(h)-8:]
}
