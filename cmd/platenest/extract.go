package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/platenest/internal/extract"
)

var (
	extractOpts runOptions
	extractJSON string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract plate outlines with bolt holes",
	Long:  "Fit a plane to every element, project its outline, and add a hole for every fastener passing through it.",
	Args:  cobra.NoArgs,
	RunE:  runExtract,
}

func init() {
	extractOpts.addInputFlags(extractCmd)
	extractCmd.Flags().StringVar(&extractJSON, "json", "", "write the plate geometries to this file (- for stdout)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	s, err := extractOpts.settings(cmd, appConfig)
	if err != nil {
		return err
	}
	in, err := extract.LoadInput(extractOpts.input)
	if err != nil {
		return err
	}
	rememberInput(extractOpts.input)

	ctx, cancel := extractOpts.context(cmd.Context())
	defer cancel()

	plates, err := extractPlates(ctx, in, s)
	if err != nil {
		return err
	}

	if extractJSON != "" {
		return writeJSONOutput(cmd, extractJSON, plates)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Extracted %d plates\n\n", len(plates))
	fmt.Fprint(out, formatPlateTable(plates))
	return nil
}
