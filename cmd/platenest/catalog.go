package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/platenest/internal/model"
	"github.com/piwi3910/platenest/internal/project"
)

var catalogPath string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the saved stock catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stock sizes in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := project.LoadCatalog(catalogPath)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), formatCatalog(c))
		return nil
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add stock sizes from a CSV, XLSX or JSON catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := project.LoadCatalog(catalogPath)
		if err != nil {
			return err
		}
		before := len(c.Stocks)
		if isJSON(args[0]) {
			c, err = project.ImportCatalog(args[0], c)
		} else {
			var imported model.StockCatalog
			imported, err = importCatalog(args[0])
			c = project.MergeCatalog(c, imported.Stocks)
		}
		if err != nil {
			return err
		}
		if err := project.SaveCatalog(catalogPath, c); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d stock sizes (%d total)\n", len(c.Stocks)-before, len(c.Stocks))
		return nil
	},
}

var catalogRemoveCmd = &cobra.Command{
	Use:   "remove <label>",
	Short: "Remove a stock size by label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := project.LoadCatalog(catalogPath)
		if err != nil {
			return err
		}
		c, err = project.RemoveStock(c, args[0])
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("cannot remove the last stock size: %w", err)
		}
		return project.SaveCatalog(catalogPath, c)
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup <file>",
	Short: "Write the config and catalog to one backup file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := project.LoadCatalog(catalogPath)
		if err != nil {
			return err
		}
		return project.ExportAllData(args[0], appConfig, c)
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace the config and catalog with a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backup, err := project.ImportAllData(args[0])
		if err != nil {
			return err
		}
		if err := backup.Catalog.Validate(); err != nil {
			return fmt.Errorf("backup catalog: %w", err)
		}
		if err := project.SaveAppConfig(configPath, backup.Config); err != nil {
			return err
		}
		if err := project.SaveCatalog(catalogPath, backup.Catalog); err != nil {
			return err
		}
		logger.Info().Str("created_at", backup.CreatedAt).Msg("backup restored")
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{catalogCmd, backupCmd, restoreCmd} {
		c.PersistentFlags().StringVar(&catalogPath, "catalog", project.DefaultCatalogPath(), "stock catalog file")
	}
	catalogCmd.AddCommand(catalogListCmd, catalogImportCmd, catalogRemoveCmd)
	rootCmd.AddCommand(catalogCmd, backupCmd, restoreCmd)
}

func formatCatalog(c model.StockCatalog) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Label\tWidth\tHeight\tThickness")
	for _, s := range c.Stocks {
		thickness := "any"
		if s.Thickness > 0 {
			thickness = fmt.Sprintf("%g", s.Thickness)
		}
		fmt.Fprintf(w, "%s\t%g\t%g\t%s\n", s.Label, s.Width, s.Height, thickness)
	}
	w.Flush()
	return b.String()
}
