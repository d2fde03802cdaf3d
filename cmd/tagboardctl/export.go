package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/tagboard/internal/config"
	"github.com/keyxmakerx/tagboard/internal/database"
	"github.com/keyxmakerx/tagboard/internal/plugins/products"
)

func newExportCmd() *cobra.Command {
	var (
		output string
		filter products.ListFilter
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog from the database as XLSX",
		Long: `Writes the catalog in the spreadsheet layout that "tagboardctl preview
--catalog" reads back. Filters match the products API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			db, err := database.NewMariaDB(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			// Export reads only; no tag lookups are needed.
			svc := products.NewProductService(products.NewProductRepository(db), nil)
			if output == "-" {
				return svc.ExportXLSX(ctx, filter, cmd.OutOrStdout())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := svc.ExportXLSX(ctx, filter, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "catalog.xlsx", `output file, "-" for stdout`)
	cmd.Flags().StringVar(&filter.Search, "search", "", "name or article substring")
	cmd.Flags().StringVar(&filter.Category, "category", "", "category name")
	cmd.Flags().StringVar(&filter.Seller, "seller", "", "seller name")
	cmd.Flags().StringVar(&filter.PriceMin, "price-min", "", "minimum price")
	cmd.Flags().StringVar(&filter.PriceMax, "price-max", "", "maximum price")
	return cmd
}
