package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/73ai/storefront/internal/app"
	"github.com/73ai/storefront/internal/catalog"
	"github.com/73ai/storefront/internal/output"
	"github.com/73ai/storefront/internal/query"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Show a page of the catalog",
	Long: `Filter, sort and paginate the catalog. A shared link can be restored with
--url; explicit flags are applied on top of it.

EXAMPLES:
    storefront browse --category indoor --in-stock
    storefront browse --q palm --sort rating
    storefront browse --min 200 --max 600 --page 2
    storefront browse --url "https://shop.example/?category=outdoor&product=p7"`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show best sellers, new arrivals and recently viewed products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			return renderHighlights(a, out)
		})
	},
}

var productCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Show a product with its recommendations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			if _, err := a.OpenProduct(ctx, args[0]); err != nil {
				return err
			}
			return renderProduct(a, out)
		})
	},
}

// Browse command-specific flags
var (
	browseCategory string
	browseSearch   string
	browseSort     string
	browsePage     int
	browseMin      float64
	browseMax      float64
	browseInStock  bool
	browseOnSale   bool
	browseURL      string
)

func init() {
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(homeCmd)
	rootCmd.AddCommand(productCmd)

	browseCmd.Flags().StringVarP(&browseCategory, "category", "c", query.CategoryAll, "Category to show")
	browseCmd.Flags().StringVarP(&browseSearch, "q", "q", "", "Text to search names, descriptions and categories for")
	browseCmd.Flags().StringVarP(&browseSort, "sort", "s", string(query.SortDefault), fmt.Sprintf("Sort mode %v", query.SortModes()))
	browseCmd.Flags().IntVarP(&browsePage, "page", "p", 1, "Page number")
	browseCmd.Flags().Float64Var(&browseMin, "min", 0, "Minimum price")
	browseCmd.Flags().Float64Var(&browseMax, "max", 0, "Maximum price")
	browseCmd.Flags().BoolVar(&browseInStock, "in-stock", false, "Only products in stock")
	browseCmd.Flags().BoolVar(&browseOnSale, "on-sale", false, "Only products on sale")
	browseCmd.Flags().StringVar(&browseURL, "url", "", "Restore the view from a shared link")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
		if browseURL != "" {
			a.LoadURL(ctx, browseURL)
		}

		if flags.Changed("category") {
			if err := a.SetCategory(browseCategory); err != nil {
				return err
			}
		}
		if flags.Changed("q") {
			a.SetSearch(browseSearch)
		}
		if flags.Changed("sort") {
			a.SetSort(query.ParseSortMode(browseSort))
		}
		if f, ok := browseFilters(cmd); ok {
			a.SetFilters(f)
		}
		if flags.Changed("page") {
			a.SetPage(browsePage)
		}

		if err := renderPage(a, out); err != nil {
			return err
		}
		if a.OpenProductID() != "" {
			return renderProduct(a, out)
		}
		return nil
	})
}

// browseFilters reports the constraints given on the command line, if any.
func browseFilters(cmd *cobra.Command) (query.Filters, bool) {
	flags := cmd.Flags()
	if !flags.Changed("min") && !flags.Changed("max") && !flags.Changed("in-stock") && !flags.Changed("on-sale") {
		return query.Filters{}, false
	}

	f := query.Filters{
		InStockOnly: browseInStock,
		OnSaleOnly:  browseOnSale,
	}
	if flags.Changed("min") {
		f.MinPrice = catalog.Float(browseMin)
	}
	if flags.Changed("max") {
		f.MaxPrice = catalog.Float(browseMax)
	}
	return f, true
}
