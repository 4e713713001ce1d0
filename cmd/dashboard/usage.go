package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"impactdash/adapters/sqlstore"
	"impactdash/domain/core"
	"impactdash/internal/config"
	"impactdash/internal/errors"
)

func openDatabase(ctx context.Context) (*sqlstore.QuotaRepository, *sqlstore.UsageRepository, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if !cfg.Database.Enabled() {
		return nil, nil, nil, errors.ConfigInvalid("DATABASE_URL is required for this command")
	}
	db, err := sqlstore.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, err
	}
	return sqlstore.NewQuotaRepository(db), sqlstore.NewUsageRepository(db), db.Close, nil
}

func newUsageCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Summarize recorded LLM token usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return errors.InvalidInput("--days must be positive")
			}
			_, repo, closeDB, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			end := time.Now().UTC()
			summary, err := repo.Summary(cmd.Context(), end.AddDate(0, 0, -days), end)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Zeitraum: %s bis %s\n", summary.PeriodStart.Format("2006-01-02"), summary.PeriodEnd.Format("2006-01-02"))
			fmt.Fprintf(out, "Anfragen: %d\nTokens:   %d\n", summary.RequestCount, summary.TotalTokens)
			providers := make([]string, 0, len(summary.ByProvider))
			for p := range summary.ByProvider {
				providers = append(providers, p)
			}
			sort.Strings(providers)
			for _, p := range providers {
				fmt.Fprintf(out, "  %-10s %d\n", p, summary.ByProvider[p])
				for _, m := range summary.ByModel {
					if m.Provider == p {
						fmt.Fprintf(out, "    %-24s %4d Anfragen %8d Tokens\n", m.Model, m.RequestCount, m.TotalTokens)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Number of days to summarize")
	return cmd
}

func newPruneQuotaCmd() *cobra.Command {
	var keepDays int

	cmd := &cobra.Command{
		Use:   "prune-quota",
		Short: "Delete chat quota counters older than --keep-days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keepDays < 1 {
				return errors.InvalidInput("--keep-days must be at least 1")
			}
			quotas, _, closeDB, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			cutoff := core.DayKey(time.Now().AddDate(0, 0, -keepDays))
			n, err := quotas.DeleteBefore(cmd.Context(), cutoff)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d Zähler vor %s gelöscht\n", n, cutoff)
			return nil
		},
	}

	cmd.Flags().IntVar(&keepDays, "keep-days", 7, "Days of counters to keep")
	return cmd
}
