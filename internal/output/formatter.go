package output

import (
	"io"

	"github.com/73ai/storefront/internal/cart"
	"github.com/73ai/storefront/internal/catalog"
	"github.com/73ai/storefront/internal/orders"
	"github.com/73ai/storefront/internal/query"
	"github.com/73ai/storefront/internal/settings"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Message levels
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarn    = "warn"
	LevelError   = "error"
)

// FormatterConfig contains configuration for output formatting
type FormatterConfig struct {
	Format     OutputFormat
	ShowColors bool

	// Currency prices are displayed in. Amounts passed to the formatter are
	// always in the base currency.
	Currency string
}

// Page is one rendered catalog page
type Page struct {
	View       query.View      `json:"view"`
	State      query.State     `json:"state"`
	URL        string          `json:"url"`
	Categories []string        `json:"categories"`
	InCart     map[string]int  `json:"inCart,omitempty"`
	Wishlisted map[string]bool `json:"wishlisted,omitempty"`
}

// Highlights are the storefront's curated rows
type Highlights struct {
	BestSellers    []catalog.Product `json:"bestSellers"`
	NewArrivals    []catalog.Product `json:"newArrivals"`
	RecentlyViewed []catalog.Product `json:"recentlyViewed"`
}

// ProductDetail is the open product view
type ProductDetail struct {
	Product         catalog.Product   `json:"product"`
	InCart          int               `json:"inCart"`
	Wishlisted      bool              `json:"wishlisted"`
	Recommendations []catalog.Product `json:"recommendations"`
	URL             string            `json:"url"`
}

// CartView is the cart with its totals
type CartView struct {
	Items  []cart.Item `json:"items"`
	Totals cart.Totals `json:"totals"`
}

// Notice reports an event that happened outside a command, such as an
// order changing status.
type Notice struct {
	Kind    string `json:"kind"`
	OrderID string `json:"orderId,omitempty"`
	Status  string `json:"status,omitempty"`
	Text    string `json:"text"`
}

// Formatter defines the interface for output formatting
type Formatter interface {
	FormatPage(page Page) error
	FormatHighlights(h Highlights) error
	FormatProduct(detail ProductDetail) error
	FormatCart(c CartView) error
	FormatWishlist(products []catalog.Product) error
	FormatOrders(list []orders.Order) error
	FormatSettings(s settings.UserSettings) error
	FormatNotice(n Notice) error
	FormatMessage(level, text string) error

	// Flush any buffered output
	Flush() error
}

// FormatterFactory creates formatters based on configuration
type FormatterFactory struct {
	writer io.Writer
	config FormatterConfig
}

func NewFormatterFactory(writer io.Writer, config FormatterConfig) *FormatterFactory {
	return &FormatterFactory{
		writer: writer,
		config: config,
	}
}

// CreateFormatter creates a formatter based on the configuration
func (f *FormatterFactory) CreateFormatter() Formatter {
	switch f.config.Format {
	case FormatJSON:
		return NewJSONFormatter(f.writer, f.config)
	default:
		return NewTextFormatter(f.writer, f.config)
	}
}

// ParseFormat maps a flag value to an OutputFormat, defaulting to text.
func ParseFormat(s string) OutputFormat {
	if OutputFormat(s) == FormatJSON {
		return FormatJSON
	}
	return FormatText
}

func flush(w io.Writer) error {
	if flusher, ok := w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}
