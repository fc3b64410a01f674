package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/alexanderbrown/snomed-squasher/display"
	"github.com/alexanderbrown/snomed-squasher/errors"
	"github.com/alexanderbrown/snomed-squasher/snomed"
)

// FindCmd represents the find command
var FindCmd = &cobra.Command{
	Use:   "find NAME",
	Short: "Resolve a freetext name to a SNOMED concept",
	Long: `Resolve a freetext name to a SNOMED concept.

An exact, case-insensitive match against exactly one concept resolves to
that concept. When the name is ambiguous or has no exact match, every
partial match is listed instead.

Examples:
  snomed find asthma
  snomed find "chest infection"
  snomed find Asth              # partial matches only`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFindCommand,
}

func runFindCommand(cmd *cobra.Command, args []string) error {
	name := joinArgs(args)

	snapshot, err := loadSnapshot(cmd)
	if err != nil {
		return errors.Wrap(err, "failed to load snapshot")
	}

	if cui, ok := snapshot.FindCUI(name); ok {
		concept, err := snapshot.PrimaryConcept(cui)
		if err != nil {
			return err
		}
		if display.ShouldOutputJSON(cmd) {
			return display.OutputJSON(concept)
		}
		display.ConceptTable([]snomed.Concept{concept})
		return nil
	}

	matches := snapshot.FindConcepts(name)
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(matches)
	}
	if len(matches) > 0 {
		pterm.Info.Printf("No unique match for %q; %d partial matches:\n", name, len(matches))
	}
	display.ConceptTable(matches)
	return nil
}
