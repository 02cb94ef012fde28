package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/redline/internal/engine"
)

var (
	recipeName     string
	recipeTemplate string

	recipeSection string
	recipeStart   int
	recipeEnd     int
)

// recipeCmd is the parent command for saved command templates.
var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Manage saved command templates",
	Long:  `Save, list, update, delete and run reusable editing commands.`,
}

var recipeSaveCmd = &cobra.Command{
	Use:   "save <template...>",
	Short: "Save a command template",
	Long: `Save a command template. The name defaults to the first line of the
template.

Example:
  redline recipe save --name apa "unify citations to APA"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			r, err := eng.SaveRecipe(ctx, &engine.SaveRecipeRequest{
				Name:     recipeName,
				Template: strings.Join(args, " "),
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), r)
			}
			PrintSuccess(fmt.Sprintf("Saved recipe %q (%s)", r.Name, r.ID))
			return nil
		})
	},
}

var recipeLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List saved recipes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			result, err := eng.ListRecipes(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), result)
			}

			PrintSection("Recipes")
			if len(result.Recipes) == 0 {
				PrintEmptyState("No recipes saved")
				return nil
			}
			rows := make([][]string, 0, len(result.Recipes))
			for _, r := range result.Recipes {
				rows = append(rows, []string{r.Name, r.UpdatedAt.Local().Format(time.DateTime), r.Template})
			}
			PrintTable([]string{"Name", "Updated", "Template"}, rows)
			return nil
		})
	},
}

var recipeUpdateCmd = &cobra.Command{
	Use:   "update <recipe>",
	Short: "Rename a recipe or change its template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if recipeName == "" && recipeTemplate == "" {
			return fmt.Errorf("nothing to update: pass --name or --template")
		}
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			r, err := eng.UpdateRecipe(ctx, &engine.UpdateRecipeRequest{
				Ref:      args[0],
				Name:     recipeName,
				Template: recipeTemplate,
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), r)
			}
			PrintSuccess(fmt.Sprintf("Updated recipe %q", r.Name))
			return nil
		})
	},
}

var recipeRmCmd = &cobra.Command{
	Use:   "rm <recipe>",
	Short: "Delete a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			removed, err := eng.DeleteRecipe(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), map[string]any{"removed": removed})
			}
			if !removed {
				PrintWarning(fmt.Sprintf("No recipe %q", args[0]))
				return nil
			}
			PrintSuccess(fmt.Sprintf("Deleted recipe %q", args[0]))
			return nil
		})
	},
}

var recipeRunCmd = &cobra.Command{
	Use:   "run <recipe> <doc-id>",
	Short: "Plan a recipe against a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := scopeFromFlags(recipeSection, recipeStart, recipeEnd)
		if err != nil {
			return err
		}
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			result, err := eng.RunRecipe(ctx, &engine.RunRecipeRequest{
				Ref:        args[0],
				DocumentID: args[1],
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

func init() {
	recipeSaveCmd.Flags().StringVar(&recipeName, "name", "", "Recipe name")
	recipeUpdateCmd.Flags().StringVar(&recipeName, "name", "", "New recipe name")
	recipeUpdateCmd.Flags().StringVar(&recipeTemplate, "template", "", "New command template")
	recipeRunCmd.Flags().StringVar(&recipeSection, "section", "", "Limit the command to a section")
	recipeRunCmd.Flags().IntVar(&recipeStart, "start", 0, "Selection start byte offset within --section")
	recipeRunCmd.Flags().IntVar(&recipeEnd, "end", 0, "Selection end byte offset within --section")

	recipeCmd.AddCommand(recipeSaveCmd)
	recipeCmd.AddCommand(recipeLsCmd)
	recipeCmd.AddCommand(recipeUpdateCmd)
	recipeCmd.AddCommand(recipeRmCmd)
	recipeCmd.AddCommand(recipeRunCmd)
}
