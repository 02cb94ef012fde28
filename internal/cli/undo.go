package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/redline/internal/engine"
)

var undoCmd = &cobra.Command{
	Use:   "undo <operation-id>",
	Short: "Revert a recorded operation",
	Long: `Revert an applied operation by inverting its diffs.

An operation can be undone once. Undo fails without changes if the document
has since been edited in a way that conflicts with the inversion.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			result, err := eng.Undo(ctx, &engine.UndoRequest{OperationID: args[0]})
			if err != nil {
				return err
			}

			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), result)
			}

			PrintSection("Undo")
			PrintSuccess("Reverted operation " + result.OperationID)
			PrintLabelValue("Snapshot", result.SnapshotID)
			if len(result.Reverted) > 0 {
				PrintSection("Changes")
				for _, item := range result.Reverted {
					PrintDiff(item)
				}
			}
			return nil
		})
	},
}
