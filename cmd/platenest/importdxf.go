package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/platenest/internal/engine"
	"github.com/piwi3910/platenest/internal/export"
	"github.com/piwi3910/platenest/internal/extract"
	"github.com/piwi3910/platenest/internal/importer"
)

var (
	dxfOpts      runOptions
	dxfThickness float64
	dxfNest      bool
	dxfPDF       string
)

var importDXFCmd = &cobra.Command{
	Use:   "import-dxf <file>",
	Short: "Read plates from 2D DXF profiles",
	Long: `Read closed polylines, circles, arcs and lines from a DXF file.
Closed loops inside another loop become holes. With --nest the plates are
nested onto the stock catalog like extracted plates.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportDXF,
}

func init() {
	dxfOpts.addNestFlags(importDXFCmd)
	importDXFCmd.Flags().Float64VarP(&dxfThickness, "thickness", "t", 0, "plate thickness in mm")
	importDXFCmd.Flags().BoolVar(&dxfNest, "nest", false, "nest the imported plates")
	importDXFCmd.Flags().StringVar(&dxfPDF, "pdf", "", "write the cutting plan PDF to this file (implies --nest)")
	_ = importDXFCmd.MarkFlagRequired("thickness")
	rootCmd.AddCommand(importDXFCmd)
}

func runImportDXF(cmd *cobra.Command, args []string) error {
	res := importer.ImportDXF(args[0], dxfThickness)
	for _, w := range res.Warnings {
		logger.Warn().Str("file", args[0]).Msg(w)
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("import %s: %s", args[0], res.Errors[0])
	}
	rememberInput(args[0])

	out := cmd.OutOrStdout()
	if !dxfNest && dxfPDF == "" {
		fmt.Fprintf(out, "Imported %d plates\n\n", len(res.Plates))
		fmt.Fprint(out, formatPlateTable(res.Plates))
		return nil
	}

	s, err := dxfOpts.settings(cmd, appConfig)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(dxfOpts.stock, extract.Input{})
	if err != nil {
		return err
	}
	result, err := engine.NewNester(s, logger).Nest(cmd.Context(), res.Plates, catalog)
	if err != nil {
		return err
	}
	if dxfPDF != "" {
		if err := export.ExportPDF(dxfPDF, result, s); err != nil {
			return fmt.Errorf("export PDF: %w", err)
		}
	}
	fmt.Fprint(out, formatResult(result))
	return nil
}
