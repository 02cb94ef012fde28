package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/redline/internal/engine"
)

var (
	planSection string
	planStart   int
	planEnd     int
)

var planCmd = &cobra.Command{
	Use:   "plan <doc-id> <command...>",
	Short: "Plan an editing command",
	Long: `Interpret an editing command against a document and show the proposed steps
with preview diffs. Nothing is changed until the plan is applied.

Examples:
  redline plan thesis split chapter 2 into related-work and methodology --section chapter-2
  redline plan thesis "unify citations to APA"
  redline plan thesis "rewrite this as A tighter opening." --section introduction --start 0 --end 42`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := scopeFromFlags(planSection, planStart, planEnd)
		if err != nil {
			return err
		}

		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			result, err := eng.Plan(ctx, &engine.PlanRequest{
				DocumentID: args[0],
				Text:       strings.Join(args[1:], " "),
				Scope:      scope,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), result)
			}
			PrintPlan(result.Plan)
			if len(result.Plan.Steps) > 0 {
				PrintInfo("\nApply with: redline apply " + result.Plan.ID + " --all")
			}
			return nil
		})
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show <plan-id>",
	Short: "Show a stored plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			result, err := eng.GetPlan(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), result)
			}
			PrintPlan(result.Plan)
			return nil
		})
	},
}

func init() {
	planCmd.Flags().StringVar(&planSection, "section", "", "Limit the command to a section")
	planCmd.Flags().IntVar(&planStart, "start", 0, "Selection start byte offset within --section")
	planCmd.Flags().IntVar(&planEnd, "end", 0, "Selection end byte offset within --section")
	planCmd.AddCommand(planShowCmd)
}
