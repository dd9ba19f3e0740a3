package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/73ai/storefront/internal/cart"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var messages []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var msg map[string]interface{}
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		messages = append(messages, msg)
	}
	return messages
}

func TestJSONFormatterCart(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(&buf, FormatterConfig{Format: FormatJSON, Currency: "USD"})

	err := f.FormatCart(CartView{
		Items:  []cart.Item{{ProductID: "p1", Name: "Monstera", Quantity: 2, UnitPrice: 749, Subtotal: 1498}},
		Totals: cart.Totals{ItemCount: 2, Amount: 1498},
	})
	if err != nil {
		t.Fatalf("FormatCart: %v", err)
	}

	messages := decodeLines(t, &buf)
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	msg := messages[0]
	if msg["type"] != "cart" || msg["currency"] != "USD" || msg["display"] != "$17.98" {
		t.Errorf("unexpected envelope: %v", msg)
	}

	data := msg["data"].(map[string]interface{})
	totals := data["totals"].(map[string]interface{})
	if totals["amount"] != 1498.0 {
		t.Errorf("amounts must stay in the base currency, got %v", totals["amount"])
	}
}

func TestJSONFormatterEmptyListsAreArrays(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(&buf, FormatterConfig{})

	_ = f.FormatWishlist(nil)
	_ = f.FormatOrders(nil)
	_ = f.FormatMessage(LevelSuccess, "Added <Monstera> & co")

	messages := decodeLines(t, &buf)
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for _, msg := range messages[:2] {
		if _, ok := msg["data"].([]interface{}); !ok {
			t.Errorf("expected array data for %v", msg["type"])
		}
	}
	if !strings.Contains(buf.String(), "<Monstera> & co") {
		t.Error("HTML characters must not be escaped")
	}
	if messages[0]["currency"] != "INR" {
		t.Errorf("expected base currency, got %v", messages[0]["currency"])
	}
}
