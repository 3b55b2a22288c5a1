package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/catalog"
)

// CatalogOptions holds flags for the catalog command.
type CatalogOptions struct {
	*RootOptions
	Catalog string // catalog file; empty means STOREFRONT_CATALOG or the embedded default
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the product catalog",
		Long: `List the products offered by the storefront.

The catalog comes from --catalog, then STOREFRONT_CATALOG, and falls back
to the embedded default.

Example:
  storefront catalog
  storefront catalog --catalog ./products.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCatalog(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "path to a catalog YAML file")

	return cmd
}

func listCatalog(opts *CatalogOptions, cmd *cobra.Command) error {
	cat, err := resolveCatalog(opts.RootOptions, opts.Catalog)
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		return formatter(opts.RootOptions, cmd).Success(cat.Products())
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, p := range cat.Products() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, p.Price.Fixed())
	}
	return tw.Flush()
}

// resolveCatalog loads the catalog from path, then STOREFRONT_CATALOG, then
// the embedded default.
func resolveCatalog(opts *RootOptions, path string) (*catalog.Catalog, error) {
	if path == "" {
		cfg, err := loadConfig(opts)
		if err != nil {
			return nil, err
		}
		path = cfg.CatalogPath
	}
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
	}
	return cat, nil
}
