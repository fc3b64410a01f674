package commands

import (
	"github.com/spf13/cobra"

	"github.com/alexanderbrown/snomed-squasher/display"
	"github.com/alexanderbrown/snomed-squasher/errors"
	"github.com/alexanderbrown/snomed-squasher/snomed"
)

// ReleasesCmd represents the releases command
var ReleasesCmd = &cobra.Command{
	Use:   "releases",
	Short: "List the releases under the definitions path",
	Long: `List the release directories discovered under the definitions path,
oldest first. Later releases win description conflicts when a snapshot spans
several releases.`,
	Args: cobra.NoArgs,
	RunE: runReleasesCommand,
}

func runReleasesCommand(cmd *cobra.Command, args []string) error {
	path, err := definitionsPath(cmd)
	if err != nil {
		return err
	}

	releases, err := snomed.DiscoverReleases(path)
	if err != nil {
		return errors.Wrap(err, "failed to discover releases")
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(releases)
	}
	display.Releases(releases)
	return nil
}
