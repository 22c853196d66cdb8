package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"sopforge/internal/core"
)

// Markdown renders a batch report as the human-readable summary written to
// the reports directory and attached to notifications.
func Markdown(report *core.BatchRunReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Batch Generation Report\n\n")
	fmt.Fprintf(&b, "- **Batch ID**: %s\n", report.BatchID)
	fmt.Fprintf(&b, "- **State**: %s\n", report.State)
	fmt.Fprintf(&b, "- **Started**: %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- **Finished**: %s\n", report.FinishedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- **Duration**: %.1fs\n\n", report.Summary.TotalSeconds)

	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "| Total | Successful | Failed |\n")
	fmt.Fprintf(&b, "|-------|------------|--------|\n")
	fmt.Fprintf(&b, "| %d | %d | %d |\n\n", report.Summary.Total, report.Summary.Successful, report.Summary.Failed)

	types := make([]string, 0, len(report.Units))
	for t := range report.Units {
		types = append(types, t)
	}
	sort.Strings(types)

	fmt.Fprintf(&b, "## Templates\n\n")
	for _, t := range types {
		unit := report.Units[t]
		if unit.Status == core.UnitSuccess {
			fmt.Fprintf(&b, "### %s - success\n\n", t)
			fmt.Fprintf(&b, "- Sections: %d successful, %d failed, %d cached\n",
				unit.Stats.SuccessfulSections, unit.Stats.FailedSections, unit.Stats.CachedSections)
			fmt.Fprintf(&b, "- Generation time: %.1fs\n", unit.ElapsedSeconds)
			if unit.DocumentPath != "" {
				fmt.Fprintf(&b, "- Document: %s\n", unit.DocumentPath)
			}
			if unit.PDFPath != "" {
				fmt.Fprintf(&b, "- PDF: %s\n", unit.PDFPath)
			}
		} else {
			fmt.Fprintf(&b, "### %s - error\n\n", t)
			fmt.Fprintf(&b, "- Error: %s\n", unit.Error)
		}
		b.WriteString("\n")
	}

	if report.Error != "" {
		fmt.Fprintf(&b, "## Run Error\n\n%s\n", report.Error)
	}

	return b.String()
}
