package display

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/alexanderbrown/snomed-squasher/snomed"
)

// ConceptTable prints description rows in aligned columns.
func ConceptTable(rows []snomed.Concept) {
	if len(rows) == 0 {
		pterm.Info.Println("No matching concepts")
		return
	}

	pterm.Println(pterm.Gray(fmt.Sprintf("%-12s %-60s %-6s %-22s %s",
		"cui", "name", "status", "release", "tag")))
	for _, row := range rows {
		pterm.Printf("%s %-60s %s %-22s %s\n",
			pterm.LightMagenta(fmt.Sprintf("%-12d", row.CUI)),
			row.Name,
			statusBadge(row.NameStatus),
			row.Release,
			pterm.Gray(row.DescriptionTypeIDs))
	}
}

// RankedTable prints graph-derived rows with their hierarchy level first.
func RankedTable(rows []snomed.RankedConcept) {
	if len(rows) == 0 {
		pterm.Info.Println("No concepts")
		return
	}

	pterm.Println(pterm.Gray(fmt.Sprintf("%-6s %-12s %-60s %-22s %s",
		"level", "cui", "name", "release", "tag")))
	for _, row := range rows {
		pterm.Printf("%s %s %-60s %-22s %s\n",
			pterm.Yellow(fmt.Sprintf("%-6d", row.Level)),
			pterm.LightMagenta(fmt.Sprintf("%-12d", row.CUI)),
			row.Name,
			row.Release,
			pterm.Gray(row.DescriptionTypeIDs))
	}
}

// Releases prints discovered release names, most recent last.
func Releases(names []string) {
	if len(names) == 0 {
		pterm.Warning.Println("No releases found")
		return
	}
	for _, name := range names {
		pterm.Printf("  %s %s\n", pterm.Gray("→"), pterm.LightGreen(name))
	}
}

func statusBadge(status snomed.NameStatus) string {
	padded := fmt.Sprintf("%-6s", string(status))
	if status == snomed.StatusPrimary {
		return pterm.LightCyan(padded)
	}
	return padded
}
