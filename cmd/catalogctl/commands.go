package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
	"github.com/palemoky/philosophy-catalog-api/internal/enrich"
	"github.com/palemoky/philosophy-catalog-api/internal/loader"
	"github.com/palemoky/philosophy-catalog-api/internal/logger"
	"github.com/palemoky/philosophy-catalog-api/internal/processor"
)

// withStore opens the configured store for the duration of fn.
func withStore(ctx context.Context, fn func(database.Store) error) error {
	store, err := processor.OpenStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(store)
}

func loadCatalog() (*loader.Catalog, error) {
	path := seedPath
	if path == "" {
		path = cfg.Seed.Path
	}
	catalog, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed catalog: %w", err)
	}
	return catalog, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	return withStore(ctx, func(store database.Store) error {
		result, err := loader.Seed(ctx, store, catalog)
		if err != nil {
			return err
		}
		return renderTable(cmd.OutOrStdout(), []string{"Schools", "People", "Links"}, [][]string{{
			strconv.Itoa(result.Schools),
			strconv.Itoa(result.People),
			strconv.Itoa(result.Links),
		}})
	})
}

func runEnrich(cmd *cobra.Command, args []string) error {
	if fillPolicy != "" {
		cfg.Enrichment.FillPolicy = fillPolicy
	}
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	resolvers, err := processor.BuildResolvers(ctx, cfg, catalog)
	if err != nil {
		return err
	}

	return withStore(ctx, func(store database.Store) error {
		report, err := processor.NewPipeline(store, resolvers, processor.WithProgress(os.Stderr)).Run(ctx)
		if err != nil {
			return err
		}
		return renderTable(cmd.OutOrStdout(),
			[]string{"People", "Updated", "Unchanged", "Failed", "Schools", "Schools Updated"},
			[][]string{{
				strconv.Itoa(report.People),
				strconv.Itoa(report.Updated),
				strconv.Itoa(report.Unchanged),
				strconv.Itoa(report.Failed),
				strconv.Itoa(report.Schools),
				strconv.Itoa(report.SchoolsUpdated),
			}})
	})
}

func runRepairWorks(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	resolvers, err := processor.BuildResolvers(ctx, cfg, catalog)
	if err != nil {
		return err
	}

	return withStore(ctx, func(store database.Store) error {
		report, err := processor.NewPipeline(store, resolvers, processor.WithProgress(os.Stderr)).RepairWorks(ctx)
		if err != nil {
			return err
		}
		return renderTable(cmd.OutOrStdout(), []string{"Checked", "Repaired", "Failed"}, [][]string{{
			strconv.Itoa(report.Checked),
			strconv.Itoa(report.Repaired),
			strconv.Itoa(report.Failed),
		}})
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withStore(ctx, func(store database.Store) error {
		logger.Info("Importing from philosophers API", zap.String("url", cfg.Enrichment.PhilosophersURL))

		result, err := enrich.NewImporter(processor.NewPhilosophersAPI(cfg), store).Import(ctx)
		if err != nil {
			return err
		}
		return renderTable(cmd.OutOrStdout(),
			[]string{"People", "Links", "Quotations", "Unattributed", "Skipped"},
			[][]string{{
				strconv.Itoa(result.People),
				strconv.Itoa(result.Links),
				strconv.Itoa(result.Quotations),
				strconv.Itoa(result.Unattributed),
				strconv.Itoa(result.Skipped),
			}})
	})
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withStore(ctx, func(store database.Store) error {
		counts, err := store.Counts(ctx)
		if err != nil {
			return err
		}
		return renderTable(cmd.OutOrStdout(), []string{"Entity", "Count"}, [][]string{
			{"People", strconv.FormatInt(counts.People, 10)},
			{"Schools", strconv.FormatInt(counts.Schools, 10)},
			{"Works", strconv.FormatInt(counts.Works, 10)},
			{"Quotations", strconv.FormatInt(counts.Quotations, 10)},
		})
	})
}

func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(header)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
