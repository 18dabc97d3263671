package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/platenest/internal/engine"
	"github.com/piwi3910/platenest/internal/extract"
	"github.com/piwi3910/platenest/internal/fastener"
	"github.com/piwi3910/platenest/internal/importer"
	"github.com/piwi3910/platenest/internal/model"
	"github.com/piwi3910/platenest/internal/project"
)

// runOptions are the flags shared by the extraction and nesting commands.
type runOptions struct {
	input       string
	stock       string
	mode        string
	spacing     float64
	margin      float64
	concurrency int
	timeout     time.Duration
}

func (o *runOptions) addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.input, "input", "i", "", "element export (JSON)")
	cmd.Flags().IntVar(&o.concurrency, "concurrency", 0, "parallel workers (0 = config default)")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "abort after this long and report partial results (0 = no limit)")
	_ = cmd.MarkFlagRequired("input")
}

func (o *runOptions) addNestFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.stock, "stock", "", "stock catalog (CSV, XLSX or JSON); defaults to the input stocks or the saved catalog")
	cmd.Flags().StringVar(&o.mode, "mode", "", "overlap test: exact or bbox")
	cmd.Flags().Float64Var(&o.spacing, "spacing", 0, "minimum gap between plates in mm")
	cmd.Flags().Float64Var(&o.margin, "edge-margin", 0, "unusable border on each sheet edge in mm")
}

// settings layers config defaults and explicitly set flags over DefaultSettings.
func (o *runOptions) settings(cmd *cobra.Command, cfg model.AppConfig) (model.Settings, error) {
	s := model.DefaultSettings()
	cfg.ApplyToSettings(&s)

	flags := cmd.Flags()
	if flags.Changed("mode") {
		m, err := model.ParseMode(o.mode)
		if err != nil {
			return s, err
		}
		s.Mode = m
	}
	if flags.Changed("spacing") {
		s.Spacing = o.spacing
	}
	if flags.Changed("edge-margin") {
		s.EdgeMargin = o.margin
	}
	if o.concurrency > 0 {
		s.Concurrency = o.concurrency
	}
	return s, s.Validate()
}

func (o *runOptions) context(parent context.Context) (context.Context, context.CancelFunc) {
	if o.timeout > 0 {
		return context.WithTimeout(parent, o.timeout)
	}
	return context.WithCancel(parent)
}

// extractPlates runs the geometry builder over every element of in.
func extractPlates(ctx context.Context, in extract.Input, s model.Settings) ([]*model.PlateGeometry, error) {
	b := extract.NewBuilder(extract.Request{
		Settings:  s,
		Fasteners: fastener.NewIndex(in.Fasteners),
		Logger:    logger,
		Cache:     extract.NewCache(),
	})
	return b.ExtractAll(ctx, in.Elements)
}

// nestInput extracts every element and nests the plates. When ctx ends
// during extraction the finished plates are still nested, and the elements
// never extracted are reported as unplaced with the result marked
// Incomplete.
func nestInput(ctx context.Context, in extract.Input, s model.Settings, catalog model.StockCatalog) (model.NestingResult, error) {
	plates, extractErr := extractPlates(ctx, in, s)
	done := extract.Finished(plates)
	if extractErr != nil {
		logger.Warn().
			Err(extractErr).
			Int("extracted", len(done)).
			Int("elements", len(in.Elements)).
			Msg("extraction stopped early, nesting finished plates")
	}

	result, err := engine.NewNester(s, logger).Nest(ctx, done, catalog)
	if err != nil {
		return result, err
	}
	if pending := extract.Pending(in.Elements, plates, extractErr); len(pending) > 0 {
		result.Unplaced = append(result.Unplaced, pending...)
		result.Incomplete = true
		result.Stats = model.ComputeStats(result, len(in.Elements), s.SteelDensity)
	}
	return result, nil
}

// loadCatalog resolves the stock catalog: the --stock file, then the stocks
// embedded in the input, then the saved catalog.
func loadCatalog(stockPath string, in extract.Input) (model.StockCatalog, error) {
	switch {
	case stockPath != "":
		return importCatalog(stockPath)
	case len(in.Stocks) > 0:
		c := model.StockCatalog{Stocks: in.Stocks}
		return c, c.Validate()
	default:
		c, path, err := project.LoadOrCreateCatalog()
		if err != nil {
			return c, fmt.Errorf("catalog %s: %w", path, err)
		}
		logger.Debug().Str("catalog", path).Int("stocks", len(c.Stocks)).Msg("using saved catalog")
		return c, nil
	}
}

// importCatalog reads a stock catalog from a CSV, XLSX or JSON file.
func importCatalog(path string) (model.StockCatalog, error) {
	if isJSON(path) {
		return project.LoadCatalog(path)
	}
	res := importer.ImportStock(path)
	for _, w := range res.Warnings {
		logger.Warn().Str("file", path).Msg(w)
	}
	for _, e := range res.Errors {
		logger.Error().Str("file", path).Msg(e)
	}
	if len(res.Stocks) == 0 {
		return model.StockCatalog{}, fmt.Errorf("no stock sizes imported from %s", path)
	}
	c := res.Catalog()
	return c, c.Validate()
}
