package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/73ai/storefront/internal/cart"
	"github.com/73ai/storefront/internal/catalog"
	"github.com/73ai/storefront/internal/currency"
	"github.com/73ai/storefront/internal/orders"
	"github.com/73ai/storefront/internal/settings"
)

// ANSI color codes for output highlighting
const (
	Reset = "\033[0m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"

	Bold = "\033[1m"
)

const dateLayout = "2006-01-02 15:04"

// TextFormatter renders human-readable output
type TextFormatter struct {
	writer io.Writer
	config FormatterConfig
}

func NewTextFormatter(writer io.Writer, config FormatterConfig) *TextFormatter {
	return &TextFormatter{
		writer: writer,
		config: config,
	}
}

func (f *TextFormatter) FormatPage(page Page) error {
	var b strings.Builder

	view := page.View
	fmt.Fprintf(&b, "%s · page %d/%d · category: %s · sort: %s\n",
		f.colorize(fmt.Sprintf("%d products", view.Total), Bold),
		view.Page, max(view.TotalPages, 1), page.State.Category, page.State.Sort)

	if page.State.Search != "" {
		fmt.Fprintf(&b, "search: %q\n", page.State.Search)
	}
	if filters := describeFilters(page); filters != "" {
		fmt.Fprintf(&b, "filters: %s\n", filters)
	}

	if len(view.Items) == 0 {
		b.WriteString("  no products match\n")
	}
	for _, p := range view.Items {
		b.WriteString("  ")
		b.WriteString(f.productLine(p))
		if qty := page.InCart[p.ID]; qty > 0 {
			fmt.Fprintf(&b, "  🛒%d", qty)
		}
		if page.Wishlisted[p.ID] {
			b.WriteString("  ♥")
		}
		b.WriteString("\n")
	}

	if len(page.Categories) > 0 {
		fmt.Fprintf(&b, "categories: all, %s\n", strings.Join(page.Categories, ", "))
	}
	if page.URL != "" {
		fmt.Fprintf(&b, "url: ?%s\n", page.URL)
	}

	return f.write(b.String())
}

func (f *TextFormatter) FormatHighlights(h Highlights) error {
	var b strings.Builder

	section := func(title string, products []catalog.Product) {
		if len(products) == 0 {
			return
		}
		b.WriteString(f.colorize(title, Bold))
		b.WriteString("\n")
		for _, p := range products {
			b.WriteString("  ")
			b.WriteString(f.productLine(p))
			b.WriteString("\n")
		}
	}

	section("Best sellers", h.BestSellers)
	section("New arrivals", h.NewArrivals)
	section("Recently viewed", h.RecentlyViewed)

	return f.write(b.String())
}

func (f *TextFormatter) FormatProduct(d ProductDetail) error {
	var b strings.Builder
	p := d.Product

	fmt.Fprintf(&b, "%s (%s)\n", f.colorize(p.Name, Bold), f.colorize(p.ID, Magenta))
	if p.Description != "" {
		fmt.Fprintf(&b, "  %s\n", p.Description)
	}
	fmt.Fprintf(&b, "  category: %s\n", p.Category)
	fmt.Fprintf(&b, "  price:    %s\n", f.priceText(p))
	fmt.Fprintf(&b, "  stock:    %s\n", f.stockText(p))
	if p.Rating != nil {
		fmt.Fprintf(&b, "  rating:   ★%.1f\n", *p.Rating)
	}
	if !p.DateAdded.IsZero() {
		fmt.Fprintf(&b, "  added:    %s\n", p.DateAdded.Format("2006-01-02"))
	}
	if d.InCart > 0 {
		fmt.Fprintf(&b, "  in cart:  %d\n", d.InCart)
	}
	if d.Wishlisted {
		b.WriteString("  ♥ on your wishlist\n")
	}

	if len(d.Recommendations) > 0 {
		b.WriteString(f.colorize("You may also like", Bold))
		b.WriteString("\n")
		for _, r := range d.Recommendations {
			b.WriteString("  ")
			b.WriteString(f.productLine(r))
			b.WriteString("\n")
		}
	}
	if d.URL != "" {
		fmt.Fprintf(&b, "url: ?%s\n", d.URL)
	}

	return f.write(b.String())
}

func (f *TextFormatter) FormatCart(c CartView) error {
	var b strings.Builder

	if len(c.Items) == 0 {
		b.WriteString("🛒 Your cart is empty\n")
		return f.write(b.String())
	}

	for _, item := range c.Items {
		fmt.Fprintf(&b, "  %-4s %-28s %3d x %-10s %s\n",
			item.ProductID, item.Name, item.Quantity,
			f.money(item.UnitPrice), f.money(item.Subtotal))
	}
	b.WriteString(f.totalsLine(c.Totals))

	return f.write(b.String())
}

func (f *TextFormatter) totalsLine(t cart.Totals) string {
	unit := "items"
	if t.ItemCount == 1 {
		unit = "item"
	}
	return fmt.Sprintf("Total: %s (%d %s)\n", f.colorize(f.money(t.Amount), Bold), t.ItemCount, unit)
}

func (f *TextFormatter) FormatWishlist(products []catalog.Product) error {
	if len(products) == 0 {
		return f.write("♥ Your wishlist is empty\n")
	}

	var b strings.Builder
	for _, p := range products {
		b.WriteString("  ")
		b.WriteString(f.productLine(p))
		b.WriteString("\n")
	}
	return f.write(b.String())
}

func (f *TextFormatter) FormatOrders(list []orders.Order) error {
	if len(list) == 0 {
		return f.write("📦 You have no recent orders\n")
	}

	var b strings.Builder
	for _, o := range list {
		fmt.Fprintf(&b, "Order #%s  %s  %s  %s\n",
			f.colorize(o.ShortID(), Magenta),
			o.CreatedAt.Local().Format(dateLayout),
			f.statusText(o.Status),
			f.money(o.Total))
		for _, item := range o.Items {
			fmt.Fprintf(&b, "    %d x %s\n", item.Quantity, item.Name)
		}
		if o.Status == orders.StatusProcessing {
			fmt.Fprintf(&b, "    cancel with: orders cancel %s\n", o.ShortID())
		}
	}
	return f.write(b.String())
}

func (f *TextFormatter) FormatSettings(s settings.UserSettings) error {
	var b strings.Builder

	onOff := func(v bool) string {
		if v {
			return "on"
		}
		return "off"
	}

	fmt.Fprintf(&b, "currency:       %s (%s)\n", s.Currency, currency.Lookup(s.Currency).Symbol)
	fmt.Fprintf(&b, "reduce motion:  %s\n", onOff(s.ReduceMotion))
	fmt.Fprintf(&b, "email promos:   %s\n", onOff(s.Notifications.EmailPromo))
	fmt.Fprintf(&b, "order updates:  %s\n", onOff(s.Notifications.OrderUpdates))
	if s.Address.Complete() {
		fmt.Fprintf(&b, "delivery:       %s, %s\n", s.Address.Address, s.Address.Phone)
	} else {
		b.WriteString("delivery:       not set\n")
	}

	return f.write(b.String())
}

func (f *TextFormatter) FormatNotice(n Notice) error {
	icon := "🔔"
	switch orders.Status(n.Status) {
	case orders.StatusShipped:
		icon = "🚚"
	case orders.StatusDelivered:
		icon = "📦"
	case orders.StatusCancelled:
		icon = "🚫"
	}
	return f.write(fmt.Sprintf("%s %s\n", icon, n.Text))
}

func (f *TextFormatter) FormatMessage(level, text string) error {
	var prefix string
	switch level {
	case LevelSuccess:
		prefix = "✅ "
	case LevelWarn:
		prefix = f.colorize("⚠️  ", Yellow)
	case LevelError:
		prefix = f.colorize("❌ ", Red)
	}
	return f.write(prefix + text + "\n")
}

func (f *TextFormatter) Flush() error {
	return flush(f.writer)
}

func (f *TextFormatter) productLine(p catalog.Product) string {
	line := fmt.Sprintf("%-4s %-26s %s  %s", p.ID, p.Name, f.priceText(p), f.stockText(p))
	if p.Rating != nil {
		line += fmt.Sprintf("  ★%.1f", *p.Rating)
	}
	return line
}

func (f *TextFormatter) priceText(p catalog.Product) string {
	if !p.OnSale() {
		return f.money(p.EffectivePrice)
	}
	return fmt.Sprintf("%s %s", f.colorize(f.money(p.EffectivePrice), Yellow), "(was "+f.money(p.Price)+")")
}

func (f *TextFormatter) stockText(p catalog.Product) string {
	switch p.StockLevel() {
	case catalog.StockOut:
		return f.colorize("out of stock", Red)
	case catalog.StockLow:
		return f.colorize(fmt.Sprintf("only %d left", p.Stock), Yellow)
	default:
		return f.colorize("in stock", Green)
	}
}

func (f *TextFormatter) statusText(s orders.Status) string {
	switch s {
	case orders.StatusProcessing:
		return f.colorize(string(s), Blue)
	case orders.StatusShipped:
		return f.colorize(string(s), Cyan)
	case orders.StatusDelivered:
		return f.colorize(string(s), Green)
	case orders.StatusCancelled:
		return f.colorize(string(s), Red)
	}
	return string(s)
}

func (f *TextFormatter) money(amount float64) string {
	code := f.config.Currency
	if code == "" {
		code = currency.Base
	}
	return currency.Format(amount, code)
}

// colorize applies ANSI color codes to text
func (f *TextFormatter) colorize(text, color string) string {
	if !f.config.ShowColors {
		return text
	}
	return color + text + Reset
}

func (f *TextFormatter) write(s string) error {
	_, err := io.WriteString(f.writer, s)
	return err
}

func describeFilters(page Page) string {
	var parts []string
	filters := page.State.Filters

	if filters.MinPrice != nil && *filters.MinPrice > 0 {
		parts = append(parts, fmt.Sprintf("min %.2f", *filters.MinPrice))
	}
	if filters.MaxPrice != nil && *filters.MaxPrice > 0 {
		parts = append(parts, fmt.Sprintf("max %.2f", *filters.MaxPrice))
	}
	if filters.InStockOnly {
		parts = append(parts, "in stock")
	}
	if filters.OnSaleOnly {
		parts = append(parts, "on sale")
	}
	return strings.Join(parts, ", ")
}
