package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/redline/internal/document"
	"github.com/danieljhkim/redline/internal/engine"
	"github.com/danieljhkim/redline/internal/steps"
)

var (
	docTitle    string
	docImportID string
	docForce    bool
)

// docCmd is the parent command for document management.
var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage documents",
	Long: `Create, import and inspect the documents redline edits.

Imported markdown uses "## Heading" for sections, "@source <name>" to declare
a data source and "@citation-style <style>" to set the citation style.`,
}

var docInitCmd = &cobra.Command{
	Use:   "init <doc-id>",
	Short: "Create an empty document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			result, err := eng.InitDocument(&engine.InitDocumentRequest{ID: args[0], Title: docTitle})
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), result)
			}
			PrintSuccess("Created document " + result.Document.ID)
			return nil
		})
	},
}

var docImportCmd = &cobra.Command{
	Use:   "import <file.md>",
	Short: "Import a markdown file as a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			result, err := eng.ImportDocument(&engine.ImportDocumentRequest{
				Path:  args[0],
				ID:    docImportID,
				Force: docForce,
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), result)
			}
			doc := result.Document
			PrintSuccess(fmt.Sprintf("Imported %s as %s (%s)", args[0], doc.ID, PrintCount(len(doc.Nodes()), "node", "nodes")))
			return nil
		})
	},
}

var docShowCmd = &cobra.Command{
	Use:   "show <doc-id>",
	Short: "Show a document outline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			result, err := eng.ShowDocument(args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), result)
			}

			doc := result.Document
			PrintSection(doc.Title)
			PrintLabelValue("ID", doc.ID)
			if style := doc.Setting(document.SettingCitationStyle); style != "" {
				PrintLabelValue("Citation style", style)
			}
			if len(doc.Sources()) > 0 {
				PrintLabelValue("Data sources", strings.Join(doc.Sources(), ", "))
			}

			rows := [][]string{}
			for _, n := range doc.Nodes() {
				if n.Kind() == document.NodeSetting {
					continue
				}
				rows = append(rows, []string{
					n.Path,
					string(n.Kind()),
					fmt.Sprintf("%d", len(n.Text)),
					fmt.Sprintf("%d", steps.CountCitations(n.Text)),
				})
			}
			fmt.Println()
			if len(rows) == 0 {
				PrintEmptyState("No sections")
				return nil
			}
			PrintTable([]string{"Path", "Kind", "Chars", "Citations"}, rows)
			return nil
		})
	},
}

var docLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, eng *engine.Engine) error {
			result, err := eng.ListDocuments()
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), result)
			}
			PrintSection("Documents")
			if len(result.IDs) == 0 {
				PrintEmptyState("No documents found")
				return nil
			}
			PrintList(result.IDs, 1)
			return nil
		})
	},
}

func init() {
	docInitCmd.Flags().StringVar(&docTitle, "title", "", "Document title (defaults to the ID)")
	docImportCmd.Flags().StringVar(&docImportID, "id", "", "Document ID (defaults to the file name)")
	docImportCmd.Flags().BoolVarP(&docForce, "force", "f", false, "Replace an existing document")

	docCmd.AddCommand(docInitCmd)
	docCmd.AddCommand(docImportCmd)
	docCmd.AddCommand(docShowCmd)
	docCmd.AddCommand(docLsCmd)
}
