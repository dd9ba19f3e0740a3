package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/73ai/storefront/internal/app"
	"github.com/73ai/storefront/internal/output"
)

func newFormatter(currency string) output.Formatter {
	format := output.FormatText
	if config.JSON {
		format = output.FormatJSON
	}

	factory := output.NewFormatterFactory(os.Stdout, output.FormatterConfig{
		Format:     format,
		ShowColors: shouldUseColor(),
		Currency:   currency,
	})
	return factory.CreateFormatter()
}

func shouldUseColor() bool {
	switch config.Color {
	case "always":
		return true
	case "never":
		return false
	default:
		return isatty.IsTerminal(os.Stdout.Fd()) && os.Getenv("NO_COLOR") == ""
	}
}

// renderPage writes the current catalog page along with the shopper's cart
// and wishlist membership for the products on it.
func renderPage(a *app.App, out output.Formatter) error {
	view := a.View()

	inCart := make(map[string]int)
	wishlisted := make(map[string]bool)
	for _, p := range view.Items {
		if n := a.Cart().Quantity(p.ID); n > 0 {
			inCart[p.ID] = n
		}
		if a.Wishlist().Contains(p.ID) {
			wishlisted[p.ID] = true
		}
	}

	return out.FormatPage(output.Page{
		View:       view,
		State:      a.Query(),
		URL:        a.URL(),
		Categories: a.Catalog().Categories(),
		InCart:     inCart,
		Wishlisted: wishlisted,
	})
}

func renderHighlights(a *app.App, out output.Formatter) error {
	return out.FormatHighlights(output.Highlights{
		BestSellers:    a.BestSellers(app.BestSellerCount),
		NewArrivals:    a.NewArrivals(app.NewArrivalCount),
		RecentlyViewed: a.RecentlyViewed(),
	})
}

// renderProduct writes the open product's detail view.
func renderProduct(a *app.App, out output.Formatter) error {
	id := a.OpenProductID()
	p, ok := a.Catalog().Get(id)
	if !ok {
		return fmt.Errorf("no product is open")
	}

	return out.FormatProduct(output.ProductDetail{
		Product:         p,
		InCart:          a.Cart().Quantity(id),
		Wishlisted:      a.Wishlist().Contains(id),
		Recommendations: a.Recommendations(id),
		URL:             a.URL(),
	})
}

func renderCart(a *app.App, out output.Formatter) error {
	return out.FormatCart(output.CartView{
		Items:  a.Cart().Items(),
		Totals: a.Cart().Totals(),
	})
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func outputJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
