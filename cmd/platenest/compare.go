package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/platenest/internal/engine"
	"github.com/piwi3910/platenest/internal/extract"
)

var compareOpts runOptions

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare nesting results across packing settings",
	Long:  "Nest the same plates with the current settings, the other overlap mode, half the spacing and no edge margin.",
	Args:  cobra.NoArgs,
	RunE:  runCompare,
}

func init() {
	compareOpts.addInputFlags(compareCmd)
	compareOpts.addNestFlags(compareCmd)
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	s, err := compareOpts.settings(cmd, appConfig)
	if err != nil {
		return err
	}
	in, err := extract.LoadInput(compareOpts.input)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(compareOpts.stock, in)
	if err != nil {
		return err
	}

	ctx, cancel := compareOpts.context(cmd.Context())
	defer cancel()

	plates, err := extractPlates(ctx, in, s)
	if err != nil {
		return err
	}
	results := engine.CompareScenarios(ctx, engine.BuildDefaultScenarios(s), plates, catalog, logger)
	fmt.Fprint(cmd.OutOrStdout(), formatComparison(results))
	return nil
}

func formatComparison(results []engine.ComparisonResult) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Scenario\tSheets\tPlaced\tUnplaced\tUtilization\tWaste")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t%v\n", r.Scenario.Name, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f%%\t%.1f%%\n",
			r.Scenario.Name, r.SheetsUsed, r.PlacedCount, r.UnplacedCount,
			100*r.Utilization, r.WastePercent)
	}
	w.Flush()
	return b.String()
}
