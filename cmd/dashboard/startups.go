package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"impactdash/adapters/export"
	"impactdash/adapters/filestore"
	"impactdash/app"
	"impactdash/domain/filter"
	"impactdash/domain/startup"
	"impactdash/internal/config"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func renderStartupTable(startups []startup.Startup) string {
	rows := make([][]string, 0, len(startups))
	for _, s := range startups {
		sdgs := make([]string, 0, len(s.SDGs))
		for _, id := range s.SDGs {
			sdgs = append(sdgs, strconv.Itoa(id))
		}
		rows = append(rows, []string{
			s.Name, s.Sector, s.City, strings.Join(sdgs, ","), s.Batch, s.ProgramPhase, s.Status,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Name", "Sektor", "Stadt", "SDGs", "Batch", "Phase", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

func newStartupsCmd() *cobra.Command {
	var (
		criteria filter.Criteria
		asCSV    bool
	)

	cmd := &cobra.Command{
		Use:   "startups",
		Short: "List startups with the dashboard filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			dashboard := app.NewDashboardService(filestore.New(cfg.Data.Dir, nil, logger))

			list, err := dashboard.Startups(cmd.Context(), criteria)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asCSV {
				sdgs, err := dashboard.SDGs(cmd.Context())
				if err != nil {
					return err
				}
				return export.WriteCSV(out, list.Startups, sdgs)
			}
			fmt.Fprintln(out, renderStartupTable(list.Startups))
			fmt.Fprintf(out, "%d von %d Startups\n", list.Filtered, list.Total)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&criteria.Batches, "batch", nil, "Filter by batch")
	f.StringSliceVar(&criteria.Sectors, "sector", nil, "Filter by sector")
	f.IntSliceVar(&criteria.SDGs, "sdg", nil, "Filter by SDG number")
	f.StringSliceVar(&criteria.Phases, "phase", nil, "Filter by program phase")
	f.StringSliceVar(&criteria.Cities, "city", nil, "Filter by city")
	f.StringSliceVar(&criteria.States, "state", nil, "Filter by federal state")
	f.StringSliceVar(&criteria.Organizations, "organization", nil, "Filter by organization")
	f.StringVarP(&criteria.Query, "query", "q", "", "Free-text search")
	f.BoolVar(&asCSV, "csv", false, "Write the export CSV instead of a table")
	return cmd
}
