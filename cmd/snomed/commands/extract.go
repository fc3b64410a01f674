package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/alexanderbrown/snomed-squasher/display"
	"github.com/alexanderbrown/snomed-squasher/extract"
)

var extractListOnly bool

// ExtractCmd represents the extract command
var ExtractCmd = &cobra.Command{
	Use:   "extract SOURCE [DEST]",
	Short: "Extract the ontology subset from a release archive",
	Long: `Extract the Snapshot Concept, Description and Relationship tables from
a SNOMED CT release archive into a definitions directory. The source may be
a local archive or a URL. When DEST is omitted the configured definitions
path is used; --list shows the relevant files without copying anything.

Examples:
  snomed extract uk_sct2cl_39.2.0_20241120000001Z.zip
  snomed extract https://example.org/uk_sct2cl_40.0.0_20250514000001Z.zip ./definitions
  snomed extract release.zip --list`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExtractCommand,
}

func init() {
	ExtractCmd.Flags().BoolVar(&extractListOnly, "list", false, "List relevant files without copying")
}

func runExtractCommand(cmd *cobra.Command, args []string) error {
	source := args[0]

	destination := ""
	if !extractListOnly {
		if len(args) == 2 {
			destination = args[1]
		} else {
			path, err := definitionsPath(cmd)
			if err != nil {
				return err
			}
			destination = path
		}
	}

	result, err := extract.Run(cmd.Context(), source, destination)
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(result)
	}

	pterm.Printf("Release %s:\n", pterm.LightGreen(result.Release))
	for _, file := range result.Files {
		pterm.Printf("  %s %s\n", pterm.Gray("→"), file)
	}
	if result.Destination != "" {
		pterm.Success.Printf("Copied %d files to %s\n", len(result.Files), result.Destination)
	}
	return nil
}
