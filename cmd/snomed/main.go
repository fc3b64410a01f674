package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexanderbrown/snomed-squasher/cmd/snomed/commands"
	"github.com/alexanderbrown/snomed-squasher/logger"
)

var rootCmd = &cobra.Command{
	Use:   "snomed",
	Short: "SNOMED CT ontology engine",
	Long: `snomed - Query and manage SNOMED CT clinical terminology snapshots.

Loads a SNOMED CT snapshot release into an in-memory concept graph and
answers name-resolution and hierarchy queries over it.

Available commands:
  find      - Resolve a freetext name to a concept
  concepts  - List every description of a concept
  parents   - Direct is-a parents of a concept
  children  - Direct is-a children of a concept
  ancestors - Full ancestor expansion, closest first
  releases  - List releases under the definitions path
  extract   - Extract the ontology subset from a release archive

Examples:
  snomed find asthma                  # Resolve a name
  snomed ancestors bronchiolitis      # Walk the hierarchy
  snomed releases                     # Show discovered releases
  snomed extract uk_release.zip       # Unpack a release archive`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize global logger before any command runs
		if err := logger.Initialize(false); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().String("definitions", "", "Path to the SNOMED definitions directory")

	// Add commands
	rootCmd.AddCommand(commands.FindCmd)
	rootCmd.AddCommand(commands.ConceptsCmd)
	rootCmd.AddCommand(commands.ParentsCmd)
	rootCmd.AddCommand(commands.ChildrenCmd)
	rootCmd.AddCommand(commands.AncestorsCmd)
	rootCmd.AddCommand(commands.ReleasesCmd)
	rootCmd.AddCommand(commands.ExtractCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
