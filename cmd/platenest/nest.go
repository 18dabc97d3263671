package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/platenest/internal/engine"
	"github.com/piwi3910/platenest/internal/export"
	"github.com/piwi3910/platenest/internal/extract"
	"github.com/piwi3910/platenest/internal/model"
	"github.com/piwi3910/platenest/internal/project"
)

var (
	nestOpts   runOptions
	nestPDF    string
	nestLabels string
	nestJSON   string

	nestSaveRemnants bool
)

var nestCmd = &cobra.Command{
	Use:   "nest",
	Short: "Nest extracted plates onto stock sheets",
	Long: `Extract every plate, group the plates by thickness, and pack each group
onto sheets from the stock catalog. Plates that cannot be placed are listed
with their reason.`,
	Args: cobra.NoArgs,
	RunE: runNest,
}

func init() {
	nestOpts.addInputFlags(nestCmd)
	nestOpts.addNestFlags(nestCmd)
	nestCmd.Flags().StringVar(&nestPDF, "pdf", "", "write the cutting plan PDF to this file")
	nestCmd.Flags().StringVar(&nestLabels, "labels", "", "write QR plate labels to this PDF file")
	nestCmd.Flags().StringVar(&nestJSON, "json", "", "write the nesting result to this file (- for stdout)")
	nestCmd.Flags().BoolVar(&nestSaveRemnants, "save-remnants", false, "add usable sheet remnants to the saved stock catalog")
	rootCmd.AddCommand(nestCmd)
}

func runNest(cmd *cobra.Command, args []string) error {
	s, err := nestOpts.settings(cmd, appConfig)
	if err != nil {
		return err
	}
	in, err := extract.LoadInput(nestOpts.input)
	if err != nil {
		return err
	}
	rememberInput(nestOpts.input)

	catalog, err := loadCatalog(nestOpts.stock, in)
	if err != nil {
		return err
	}

	ctx, cancel := nestOpts.context(cmd.Context())
	defer cancel()

	result, err := nestInput(ctx, in, s, catalog)
	if err != nil {
		return err
	}

	warnings := engine.FormatConflictWarnings(engine.CheckLayout(result, s))
	for _, w := range warnings {
		logger.Warn().Msg(w)
	}

	if nestPDF != "" {
		if err := export.ExportPDF(nestPDF, result, s); err != nil {
			return fmt.Errorf("export PDF: %w", err)
		}
		logger.Info().Str("file", nestPDF).Msg("cutting plan written")
	}
	if nestLabels != "" {
		if err := export.ExportLabels(nestLabels, result); err != nil {
			return fmt.Errorf("export labels: %w", err)
		}
		logger.Info().Str("file", nestLabels).Msg("labels written")
	}

	if nestSaveRemnants {
		if err := saveRemnants(result, s); err != nil {
			return err
		}
	}

	if nestJSON != "" {
		return writeJSONOutput(cmd, nestJSON, buildPlanReport(result, s, warnings))
	}
	fmt.Fprint(cmd.OutOrStdout(), formatResult(result))
	return nil
}

// saveRemnants adds the usable offcuts of result to the saved catalog so the
// next run can nest onto them.
func saveRemnants(result model.NestingResult, s model.Settings) error {
	remnants := model.DetectAllRemnants(result, s)
	if len(remnants) == 0 {
		return nil
	}
	c, path, err := project.LoadOrCreateCatalog()
	if err != nil {
		return err
	}
	stocks := make([]model.StockSize, len(remnants))
	for i, r := range remnants {
		stocks[i] = r.ToStockSize()
	}
	if err := project.SaveCatalog(path, project.MergeCatalog(c, stocks)); err != nil {
		return err
	}
	logger.Info().
		Int("remnants", len(remnants)).
		Float64("area", model.TotalRemnantArea(remnants)).
		Str("catalog", path).
		Msg("remnants added to catalog")
	return nil
}
