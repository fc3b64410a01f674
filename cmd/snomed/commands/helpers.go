package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderbrown/snomed-squasher/config"
	"github.com/alexanderbrown/snomed-squasher/errors"
	"github.com/alexanderbrown/snomed-squasher/snomed"
)

// definitionsPath resolves the snapshot root: the --definitions flag wins,
// then SNOMED_DEFINITIONS, then file configuration.
func definitionsPath(cmd *cobra.Command) (string, error) {
	if flag, _ := cmd.Root().PersistentFlags().GetString("definitions"); flag != "" {
		return flag, nil
	}
	return config.DefinitionsPath()
}

// loadSnapshot builds a snapshot from the resolved definitions path using
// the configured loader settings.
func loadSnapshot(cmd *cobra.Command) (*snomed.Snapshot, error) {
	path, err := definitionsPath(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	opts := []snomed.Option{
		snomed.WithCorruptThreshold(cfg.CorruptThreshold()),
		snomed.WithAncestorCacheSize(cfg.AncestorCacheSize()),
	}
	if cfg.Loader.IncludeInactive {
		opts = append(opts, snomed.WithInactive())
	}
	if cfg.Definitions.Release != "" {
		opts = append(opts, snomed.WithRelease(cfg.Definitions.Release))
	}

	return snomed.Load(path, opts...)
}

// resolveConcept turns a CLI argument into a concept identifier: a numeric
// argument is taken as a CUI directly, anything else goes through name
// resolution.
func resolveConcept(snapshot *snomed.Snapshot, arg string) (snomed.CUI, error) {
	if cui, err := snomed.ParseCUI(arg); err == nil {
		return cui, nil
	}
	cui, ok := snapshot.FindCUI(arg)
	if !ok {
		return 0, errors.WithHint(
			errors.NewUnresolvedName(arg),
			"try 'snomed find' to inspect partial matches")
	}
	return cui, nil
}

// joinArgs rejoins a multi-word name so quoting is optional on the shell.
func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
