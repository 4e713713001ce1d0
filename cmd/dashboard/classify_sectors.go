package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"impactdash/adapters/filestore"
	"impactdash/domain/startup"
	"impactdash/internal/config"
	"impactdash/internal/errors"
)

// reclassify sets every startup's sector from its SDGs and reports how
// many changed and how many landed in each sector
func reclassify(startups []startup.Startup, mapping *startup.SectorMapping) (int, map[string]int) {
	changed := 0
	counts := make(map[string]int)
	for i := range startups {
		sector := mapping.Classify(startups[i].SDGs)
		if startups[i].Sector != sector {
			startups[i].Sector = sector
			changed++
		}
		counts[sector]++
	}
	return changed, counts
}

func newClassifySectorsCmd() *cobra.Command {
	var (
		mappingFile string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "classify-sectors",
		Short: "Derive each startup's sector from its SDGs and rewrite startups.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if mappingFile == "" {
				mappingFile = cfg.Data.SectorsFile
			}
			mapping, err := startup.LoadSectorMapping(mappingFile)
			if err != nil {
				return errors.Wrapf(err, "failed to load sector mapping %q", mappingFile)
			}

			store := filestore.New(cfg.Data.Dir, nil, logger)
			snap, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}

			changed, counts := reclassify(snap.Startups, mapping)

			out := cmd.OutOrStdout()
			sectors := make([]string, 0, len(counts))
			for sector := range counts {
				sectors = append(sectors, sector)
			}
			sort.Slice(sectors, func(i, j int) bool {
				if counts[sectors[i]] != counts[sectors[j]] {
					return counts[sectors[i]] > counts[sectors[j]]
				}
				return sectors[i] < sectors[j]
			})
			for _, sector := range sectors {
				fmt.Fprintf(out, "%4d  %s\n", counts[sector], sector)
			}
			fmt.Fprintf(out, "\n%d von %d Startups neu klassifiziert\n", changed, len(snap.Startups))

			if dryRun || changed == 0 {
				return nil
			}
			sectors = make([]string, len(snap.Startups))
			for i, s := range snap.Startups {
				sectors[i] = s.Sector
			}
			if err := store.SetSectors(cmd.Context(), sectors); err != nil {
				return errors.Wrapf(err, "failed to update %s", filestore.StartupsFile)
			}
			logger.Info("wrote %s", filestore.StartupsFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&mappingFile, "mapping", "", "YAML mapping file (default: SECTORS_FILE or built-in)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only print the result")
	return cmd
}
