package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/redline/internal/engine"
	"github.com/danieljhkim/redline/internal/fsops"
)

var (
	historyDoc   string
	historyLimit int
	historyForce bool

	exportDoc    string
	exportOutput string
)

// historyCmd is the parent command for the operation history.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the operation history",
	Long:  `List, inspect and clear recorded operations.`,
}

var historyLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recorded operations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			result, err := eng.History(ctx, &engine.HistoryRequest{DocumentID: historyDoc, Limit: historyLimit})
			if err != nil {
				return err
			}

			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), result)
			}

			PrintSection(fmt.Sprintf("History (limit %d)", result.Limit))
			if len(result.Operations) == 0 {
				PrintEmptyState("No operations recorded")
				return nil
			}

			rows := make([][]string, 0, len(result.Operations))
			for _, op := range result.Operations {
				state := string(op.Result.Status)
				if op.Reverted() {
					state += " (reverted)"
				}
				rows = append(rows, []string{
					op.ID,
					op.DocumentID,
					op.AppliedAt.Local().Format(time.DateTime),
					state,
					op.Command.Text,
				})
			}
			PrintTable([]string{"ID", "Document", "Applied", "Status", "Command"}, rows)
			return nil
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <operation-id>",
	Short: "Show one recorded operation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			op, err := eng.GetOperation(ctx, args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), op)
			}

			PrintSection("Operation")
			PrintLabelValue("ID", op.ID)
			PrintLabelValue("Document", op.DocumentID)
			PrintLabelValue("Command", op.Command.Text)
			PrintLabelValueWithColor("Status", string(op.Result.Status), statusColor(op.Result.Status))
			PrintLabelValue("Reversible", fmt.Sprintf("%t", op.Reversible))
			PrintLabelValue("Applied", op.AppliedAt.Local().Format(time.DateTime))
			if op.Reverted() {
				PrintLabelValue("Reverted", op.RevertedAt.Local().Format(time.DateTime))
			}
			if len(op.Result.Diffs) > 0 {
				PrintSection("Changes")
				for _, item := range op.Result.Diffs {
					PrintDiff(item)
				}
			}
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop all recorded operations and pending plans",
	Long: `Drop every recorded operation and pending plan.

Cleared operations can no longer be undone. You'll be prompted to confirm
unless --force is used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !historyForce && !jsonOutput {
			if !promptConfirm("Clear the whole history?") {
				return fmt.Errorf("clear cancelled by user")
			}
		}

		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			if err := eng.ClearHistory(ctx); err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), map[string]any{"success": true})
			}
			PrintSuccess("History cleared")
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the audit log as JSON",
	Long: `Export the recorded operations as a JSON audit report.

The report is written to stdout unless --output is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			data, err := eng.Export(ctx, &engine.ExportRequest{DocumentID: exportDoc})
			if err != nil {
				return err
			}

			if exportOutput == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := fsops.NewRealFS().AtomicWrite(exportOutput, data, 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			if !jsonOutput {
				PrintSuccess("Exported audit log to " + exportOutput)
			}
			return nil
		})
	},
}

func init() {
	historyLsCmd.Flags().StringVar(&historyDoc, "doc", "", "Only show operations on this document")
	historyLsCmd.Flags().IntVar(&historyLimit, "limit", 0, "Show at most this many operations")
	historyClearCmd.Flags().BoolVarP(&historyForce, "force", "f", false, "Skip the confirmation prompt")

	historyCmd.AddCommand(historyLsCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)

	exportCmd.Flags().StringVar(&exportDoc, "doc", "", "Only export operations on this document")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write the report to a file")
}
