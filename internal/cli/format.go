package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/danieljhkim/redline/internal/diff"
	"github.com/danieljhkim/redline/internal/oplog"
	"github.com/danieljhkim/redline/internal/planner"
)

var (
	// fatih/color disables these automatically when output is not a TTY
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	valueColor   = color.New(color.FgHiBlack)
	dimColor     = color.New(color.FgHiBlack)
	insertColor  = color.New(color.FgGreen)
	deleteColor  = color.New(color.FgRed)
)

// PrintSection prints a section header
func PrintSection(title string) {
	fmt.Println()
	_, _ = headerColor.Printf("▸ %s\n", title)
	fmt.Println()
}

// PrintSuccess prints a success message with a checkmark
func PrintSuccess(msg string) {
	_, _ = successColor.Printf("✓ %s\n", msg)
}

// PrintWarning prints a warning message with a warning symbol
func PrintWarning(msg string) {
	_, _ = warningColor.Printf("⚠ %s\n", msg)
}

// PrintError prints an error message to stderr
func PrintError(msg string) {
	_, _ = errorColor.Fprintf(os.Stderr, "✗ %s\n", msg)
}

// PrintInfo prints an informational message
func PrintInfo(msg string) {
	fmt.Println(msg)
}

// PrintLabelValue prints a label-value pair with proper formatting
func PrintLabelValue(label, value string) {
	_, _ = labelColor.Printf("  %s: ", label)
	_, _ = valueColor.Println(value)
}

// PrintLabelValueWithColor prints a label-value pair with a custom value color
func PrintLabelValueWithColor(label, value string, valueClr *color.Color) {
	_, _ = labelColor.Printf("  %s: ", label)
	_, _ = valueClr.Println(value)
}

// PrintList prints a list of items with bullet points
func PrintList(items []string, indent int) {
	indentStr := strings.Repeat("  ", indent)
	for _, item := range items {
		_, _ = infoColor.Printf("%s• %s\n", indentStr, item)
	}
}

// PrintTable prints a simple multi-column table
func PrintTable(headers []string, rows [][]string) {
	if len(headers) == 0 || len(rows) == 0 {
		return
	}

	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) && len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	fmt.Print("  ")
	for i, header := range headers {
		if i > 0 {
			fmt.Print("  ")
		}
		_, _ = headerColor.Printf("%-*s", colWidths[i], header)
	}
	fmt.Println()

	fmt.Print("  ")
	for i, width := range colWidths {
		if i > 0 {
			fmt.Print("  ")
		}
		fmt.Print(strings.Repeat("-", width))
	}
	fmt.Println()

	for _, row := range rows {
		fmt.Print("  ")
		for i, cell := range row {
			if i >= len(colWidths) {
				break
			}
			if i > 0 {
				fmt.Print("  ")
			}
			_, _ = valueColor.Printf("%-*s", colWidths[i], cell)
		}
		fmt.Println()
	}
}

// PrintEmptyState prints a message when there's no data to show
func PrintEmptyState(msg string) {
	_, _ = dimColor.Printf("  %s\n", msg)
}

// PrintCount prints a count with proper formatting
func PrintCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// PrintDiff prints one diff item as a unified-style hunk.
func PrintDiff(item diff.Item) {
	_, _ = labelColor.Printf("  %s %s", item.Kind, item.Path)
	_, _ = dimColor.Printf("  (%s)\n", item.Category)
	for _, line := range nonEmptyLines(item.Before) {
		_, _ = deleteColor.Printf("    - %s\n", line)
	}
	for _, line := range nonEmptyLines(item.After) {
		_, _ = insertColor.Printf("    + %s\n", line)
	}
}

// PrintPlan prints a plan's steps, preview, warnings and requirements.
func PrintPlan(plan *planner.Plan) {
	PrintSection("Plan")
	PrintLabelValue("Plan ID", plan.ID)
	PrintLabelValue("Document", plan.DocumentID)
	PrintLabelValue("Command", plan.Command.Text)
	PrintLabelValue("Scope", plan.Scope.String())
	PrintLabelValue("Estimate", fmt.Sprintf("%d-%ds", plan.Estimate.MinSeconds, plan.Estimate.MaxSeconds))

	if len(plan.Steps) > 0 {
		PrintSection(PrintCount(len(plan.Steps), "Step", "Steps"))
		rows := make([][]string, 0, len(plan.Steps))
		for _, s := range plan.Steps {
			rows = append(rows, []string{s.ID, string(s.Kind), s.Description, strings.Join(shortIDs(s.DependsOn), ",")})
		}
		PrintTable([]string{"ID", "Kind", "Description", "Depends On"}, rows)
	}

	if len(plan.Preview) > 0 {
		PrintSection("Preview")
		for _, item := range plan.Preview {
			PrintDiff(item)
		}
	}

	if len(plan.Warnings) > 0 || len(plan.Requirements) > 0 {
		fmt.Println()
		for _, w := range plan.Warnings {
			PrintWarning(w)
		}
		if len(plan.Requirements) > 0 {
			PrintLabelValueWithColor("Requirements", strings.Join(plan.Requirements, ", "), warningColor)
		}
	}
}

// statusColor picks the color for an execution status.
func statusColor(s oplog.Status) *color.Color {
	switch s {
	case oplog.StatusSuccess:
		return successColor
	case oplog.StatusPartial:
		return warningColor
	default:
		return errorColor
	}
}

func shortIDs(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if len(id) > 8 {
			id = id[:8]
		}
		out[i] = id
	}
	return out
}

func nonEmptyLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
