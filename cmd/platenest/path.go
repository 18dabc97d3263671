package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/platenest/internal/extract"
	"github.com/piwi3910/platenest/internal/model"
	"github.com/piwi3910/platenest/internal/pathser"
)

var (
	pathOpts    runOptions
	pathID      string
	pathElement bool
	pathFill    string
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the SVG path data of one plate",
	Long:  "Extract the plate with the given source id and print its outline and holes as SVG path data for an even-odd fill.",
	Args:  cobra.NoArgs,
	RunE:  runPath,
}

func init() {
	pathOpts.addInputFlags(pathCmd)
	pathCmd.Flags().StringVar(&pathID, "id", "", "source id of the plate")
	pathCmd.Flags().BoolVar(&pathElement, "element", false, "print a complete <path> element")
	pathCmd.Flags().StringVar(&pathFill, "fill", "black", "fill colour of the <path> element")
	_ = pathCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(pathCmd)
}

func runPath(cmd *cobra.Command, args []string) error {
	s, err := pathOpts.settings(cmd, appConfig)
	if err != nil {
		return err
	}
	in, err := extract.LoadInput(pathOpts.input)
	if err != nil {
		return err
	}

	el, ok := findElement(in.Elements, pathID)
	if !ok {
		return fmt.Errorf("no element with id %q in %s", pathID, pathOpts.input)
	}
	in.Elements = []extract.Element{el}

	ctx, cancel := pathOpts.context(cmd.Context())
	defer cancel()

	plates, err := extractPlates(ctx, in, s)
	if err != nil {
		return err
	}
	cmds := pathser.Serialize(plates[0])
	if pathElement {
		fmt.Fprintln(cmd.OutOrStdout(), pathser.PathElement(cmds, pathFill))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), pathser.SVG(cmds))
	return nil
}

func findElement(elements []extract.Element, id string) (extract.Element, bool) {
	for _, el := range elements {
		if el.SourceID == id {
			return el, true
		}
	}
	return extract.Element{}, false
}

var inspectPathCmd = &cobra.Command{
	Use:   "inspect-path <path-data>",
	Short: "Report the rings and area of SVG path data",
	Long:  "Parse absolute M/L/Z path data as written by the path command and report the plate it describes.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmds, err := pathser.ParseSVG(args[0])
		if err != nil {
			return err
		}
		pg, err := pathser.Plate(cmds, model.PlateGeometry{SourceID: "path"})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Exterior: %d points\n", len(pg.Exterior))
		fmt.Fprintf(out, "Holes: %d\n", len(pg.Holes))
		fmt.Fprintf(out, "Size: %g x %g\n", pg.BoundingBox.Width(), pg.BoundingBox.Height())
		fmt.Fprintf(out, "Area: %g\n", pg.Area)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectPathCmd)
}
