package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/redline/internal/engine"
)

var (
	applySteps []string
	applyAll   bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <plan-id>",
	Short: "Apply accepted steps of a plan",
	Long: `Apply the accepted steps of a stored plan to its document.

Each step is re-checked against the current document. Failed steps are
reported individually; steps that depend on a failed step are skipped. The
operation is recorded in the history and can be undone if all of its step
kinds are reversible.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !applyAll && len(applySteps) == 0 {
			return fmt.Errorf("select steps with --step or accept all with --all")
		}

		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			result, err := eng.Apply(ctx, &engine.ApplyRequest{
				PlanID:  args[0],
				StepIDs: applySteps,
				All:     applyAll,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), result)
			}

			res := result.Result
			PrintSection("Apply")
			PrintLabelValueWithColor("Status", string(res.Status), statusColor(res.Status))
			PrintLabelValue("Operation", result.OperationID)
			PrintLabelValue("Completed", PrintCount(len(res.CompletedSteps), "step", "steps"))
			PrintLabelValue("Duration", res.Duration.Round(time.Millisecond).String())

			if len(res.FailedSteps) > 0 {
				PrintSection("Failed Steps")
				rows := make([][]string, 0, len(res.FailedSteps))
				for _, f := range res.FailedSteps {
					retry := "no"
					if f.Retryable {
						retry = "yes"
					}
					rows = append(rows, []string{f.StepID, retry, f.Reason})
				}
				PrintTable([]string{"Step", "Retryable", "Reason"}, rows)
			}

			if len(res.Diffs) > 0 {
				PrintSection("Changes")
				for _, item := range res.Diffs {
					PrintDiff(item)
				}
			}

			fmt.Println()
			if result.Reversible {
				PrintInfo("Undo with: redline undo " + result.OperationID)
			} else {
				PrintWarning("This operation is not reversible")
			}
			return nil
		})
	},
}

func init() {
	applyCmd.Flags().StringSliceVar(&applySteps, "step", nil, "Accept a step by ID (repeatable)")
	applyCmd.Flags().BoolVar(&applyAll, "all", false, "Accept every step of the plan")
}
