package output

import (
	"encoding/json"
	"io"

	"github.com/73ai/storefront/internal/catalog"
	"github.com/73ai/storefront/internal/currency"
	"github.com/73ai/storefront/internal/orders"
	"github.com/73ai/storefront/internal/settings"
)

// JSONFormatter writes one JSON message per line. Amounts stay in the base
// currency; Display carries the formatted total where one applies.
type JSONFormatter struct {
	writer  io.Writer
	config  FormatterConfig
	encoder *json.Encoder
}

func NewJSONFormatter(writer io.Writer, config FormatterConfig) *JSONFormatter {
	encoder := json.NewEncoder(writer)
	encoder.SetEscapeHTML(false)

	return &JSONFormatter{
		writer:  writer,
		config:  config,
		encoder: encoder,
	}
}

// JSONMessage is the envelope of every JSON line
type JSONMessage struct {
	Type     string      `json:"type"`
	Currency string      `json:"currency,omitempty"`
	Display  string      `json:"display,omitempty"`
	Data     interface{} `json:"data"`
}

// JSONText is the payload of a "message" line
type JSONText struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

func (f *JSONFormatter) FormatPage(page Page) error {
	return f.emit("page", "", page)
}

func (f *JSONFormatter) FormatHighlights(h Highlights) error {
	return f.emit("highlights", "", h)
}

func (f *JSONFormatter) FormatProduct(d ProductDetail) error {
	return f.emit("product", f.money(d.Product.EffectivePrice), d)
}

func (f *JSONFormatter) FormatCart(c CartView) error {
	return f.emit("cart", f.money(c.Totals.Amount), c)
}

func (f *JSONFormatter) FormatWishlist(products []catalog.Product) error {
	if products == nil {
		products = []catalog.Product{}
	}
	return f.emit("wishlist", "", products)
}

func (f *JSONFormatter) FormatOrders(list []orders.Order) error {
	if list == nil {
		list = []orders.Order{}
	}
	return f.emit("orders", "", list)
}

func (f *JSONFormatter) FormatSettings(s settings.UserSettings) error {
	return f.emit("settings", "", s)
}

func (f *JSONFormatter) FormatNotice(n Notice) error {
	return f.emit("notice", "", n)
}

func (f *JSONFormatter) FormatMessage(level, text string) error {
	return f.emit("message", "", JSONText{Level: level, Text: text})
}

func (f *JSONFormatter) Flush() error {
	return flush(f.writer)
}

func (f *JSONFormatter) emit(kind, display string, data interface{}) error {
	return f.encoder.Encode(JSONMessage{
		Type:     kind,
		Currency: f.currency(),
		Display:  display,
		Data:     data,
	})
}

func (f *JSONFormatter) currency() string {
	if f.config.Currency == "" {
		return currency.Base
	}
	return f.config.Currency
}

func (f *JSONFormatter) money(amount float64) string {
	return currency.Format(amount, f.currency())
}
