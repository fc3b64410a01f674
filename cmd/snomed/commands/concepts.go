package commands

import (
	"github.com/spf13/cobra"

	"github.com/alexanderbrown/snomed-squasher/display"
	"github.com/alexanderbrown/snomed-squasher/errors"
)

// ConceptsCmd represents the concepts command
var ConceptsCmd = &cobra.Command{
	Use:   "concepts CUI",
	Short: "List every description of a concept",
	Long: `List every description row of a concept, including synonyms and,
when the snapshot was loaded with inactive rows, retired descriptions.

Example:
  snomed concepts 195967001`,
	Args: cobra.ExactArgs(1),
	RunE: runConceptsCommand,
}

func runConceptsCommand(cmd *cobra.Command, args []string) error {
	snapshot, err := loadSnapshot(cmd)
	if err != nil {
		return errors.Wrap(err, "failed to load snapshot")
	}

	cui, err := resolveConcept(snapshot, args[0])
	if err != nil {
		return err
	}

	rows, err := snapshot.Concepts(cui)
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(rows)
	}
	display.ConceptTable(rows)
	return nil
}
