package commands

import (
	"github.com/spf13/cobra"

	"github.com/alexanderbrown/snomed-squasher/display"
	"github.com/alexanderbrown/snomed-squasher/errors"
	"github.com/alexanderbrown/snomed-squasher/snomed"
)

// ParentsCmd represents the parents command
var ParentsCmd = &cobra.Command{
	Use:   "parents CUI|NAME",
	Short: "Show the direct parents of a concept",
	Long: `Show the direct is-a parents of a concept.

The argument may be a concept identifier or a name; names resolve the same
way 'snomed find' does.

Examples:
  snomed parents 195967001
  snomed parents asthma`,
	Args: cobra.MinimumNArgs(1),
	RunE: hierarchyRunner(func(s *snomed.Snapshot, cui snomed.CUI) ([]snomed.RankedConcept, error) {
		return s.Parents(cui)
	}),
}

// ChildrenCmd represents the children command
var ChildrenCmd = &cobra.Command{
	Use:   "children CUI|NAME",
	Short: "Show the direct children of a concept",
	Long: `Show the direct is-a children of a concept.

Examples:
  snomed children 50043002
  snomed children "disorder of respiratory system"`,
	Args: cobra.MinimumNArgs(1),
	RunE: hierarchyRunner(func(s *snomed.Snapshot, cui snomed.CUI) ([]snomed.RankedConcept, error) {
		return s.Children(cui)
	}),
}

// AncestorsCmd represents the ancestors command
var AncestorsCmd = &cobra.Command{
	Use:   "ancestors CUI|NAME",
	Short: "Show the full ancestor expansion of a concept",
	Long: `Show every ancestor of a concept, ordered by hierarchy distance.
The concept itself appears at level 0; each parent hop adds one level, and a
concept reachable along several paths keeps its shortest distance.

Examples:
  snomed ancestors 4120002
  snomed ancestors bronchiolitis`,
	Args: cobra.MinimumNArgs(1),
	RunE: hierarchyRunner(func(s *snomed.Snapshot, cui snomed.CUI) ([]snomed.RankedConcept, error) {
		return s.Ancestors(cui)
	}),
}

// hierarchyRunner builds a RunE that resolves the argument to a concept and
// renders the graph expansion it selects.
func hierarchyRunner(expand func(*snomed.Snapshot, snomed.CUI) ([]snomed.RankedConcept, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		snapshot, err := loadSnapshot(cmd)
		if err != nil {
			return errors.Wrap(err, "failed to load snapshot")
		}

		cui, err := resolveConcept(snapshot, joinArgs(args))
		if err != nil {
			return err
		}

		rows, err := expand(snapshot, cui)
		if err != nil {
			return err
		}

		if display.ShouldOutputJSON(cmd) {
			return display.OutputJSON(rows)
		}
		display.RankedTable(rows)
		return nil
	}
}
