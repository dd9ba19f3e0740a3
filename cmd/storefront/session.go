package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/73ai/storefront/internal/app"
	"github.com/73ai/storefront/internal/catalog"
	"github.com/73ai/storefront/internal/orders"
	"github.com/73ai/storefront/internal/output"
	"github.com/73ai/storefront/internal/query"
	"github.com/73ai/storefront/internal/storage"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Interactive shopping session with live order updates",
	Long: `Start a line-oriented shopping session. Commands are read from stdin, one per
line; order status changes are printed as they happen. Type "help" for the
list of commands.

With --metrics-addr the session serves prometheus metrics on /metrics. With
--watch the catalog file is reloaded whenever it changes.

EXAMPLES:
    storefront session
    storefront session --watch --metrics-addr :9090
    printf 'add p1 2\ncheckout\n' | storefront session`,
	Args: cobra.NoArgs,
	RunE: runSession,
}

var sessionWatch bool

// errSessionEnded stops the session's goroutines after quit or end of input.
var errSessionEnded = errors.New("session ended")

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.Flags().BoolVarP(&sessionWatch, "watch", "w", false, "Reload the catalog when the file changes")
}

func runSession(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close(context.Background())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return rt.loop.Run(gctx)
	})

	g.Go(func() error {
		return readSession(gctx, rt, os.Stdin)
	})

	if config.MetricsAddr != "" {
		serveMetrics(gctx, g, rt)
	}

	if badgerStore, ok := rt.storage.(*storage.BadgerStorage); ok {
		g.Go(func() error {
			badgerStore.WaitForGC(gctx, 10*time.Minute)
			return nil
		})
	}

	if sessionWatch {
		if err := startWatcher(gctx, g, rt, func(out output.Formatter) error {
			return renderPage(rt.app, out)
		}); err != nil {
			return err
		}
	}

	err = g.Wait()
	if errors.Is(err, errSessionEnded) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// readSession boots the App and runs each input line on the loop.
func readSession(ctx context.Context, rt *runtime, in io.Reader) error {
	err := rt.loop.Do(ctx, func() error {
		if err := rt.boot(ctx); err != nil {
			return err
		}
		out := rt.formatter()
		defer out.Flush()
		out.FormatMessage(output.LevelInfo, fmt.Sprintf("🪴 %s. Type \"help\" for commands.", rt.app.Describe()))
		return renderHighlights(rt.app, out)
	})
	if err != nil {
		return err
	}

	// The scanner may stay blocked on stdin after ctx ends, so it feeds a
	// channel instead of being waited for.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return errSessionEnded
			}

			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			if fields[0] == "quit" || fields[0] == "exit" {
				return errSessionEnded
			}

			err := rt.loop.Do(ctx, func() error {
				out := rt.formatter()
				defer out.Flush()
				if err := runSessionCommand(ctx, rt.app, out, fields[0], fields[1:]); err != nil {
					out.FormatMessage(output.LevelError, err.Error())
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
	}
}

type sessionHandler func(ctx context.Context, a *app.App, out output.Formatter, args []string) error

type sessionCommand struct {
	usage string
	help  string
	run   sessionHandler
}

var sessionCommands map[string]sessionCommand

func init() {
	sessionCommands = map[string]sessionCommand{
		"home":     {"home", "best sellers, new arrivals, recently viewed", sessionHome},
		"browse":   {"browse", "show the current catalog page", sessionBrowse},
		"cat":      {"cat <category>", "filter by category (all for every category)", sessionCategory},
		"search":   {"search [text]", "search names and descriptions; no text clears", sessionSearch},
		"sort":     {"sort <mode>", "sort the catalog", sessionSort},
		"page":     {"page <n>", "go to a page", sessionPage},
		"next":     {"next", "next page", sessionStep(1)},
		"prev":     {"prev", "previous page", sessionStep(-1)},
		"filter":   {"filter [min=N] [max=N] [stock] [sale]", "set price and availability constraints", sessionFilter},
		"reset":    {"reset", "clear the constraints", sessionReset},
		"open":     {"open <id>", "show a product", sessionOpen},
		"close":    {"close", "close the product view", sessionClose},
		"url":      {"url", "print a link to the current view", sessionURL},
		"goto":     {"goto <url>", "restore a view from a link", sessionGoto},
		"add":      {"add <id> [qty]", "add to the cart", sessionAdd},
		"inc":      {"inc <id>", "one more of a cart line", sessionDelta(1)},
		"dec":      {"dec <id>", "one less of a cart line", sessionDelta(-1)},
		"rm":       {"rm <id>", "remove a cart line", sessionRemove},
		"cart":     {"cart", "show the cart", sessionCart},
		"clear":    {"clear", "empty the cart", sessionClear},
		"wish":     {"wish <id>", "toggle a product on the wishlist", sessionWish},
		"wishlist": {"wishlist", "show the wishlist", sessionWishlist},
		"checkout": {"checkout [phone address...]", "place an order", sessionCheckout},
		"orders":   {"orders", "list orders", sessionOrders},
		"cancel":   {"cancel <order>", "cancel a processing order", sessionCancel},
		"currency": {"currency <code>", "choose the display currency", sessionCurrency},
	}
}

func runSessionCommand(ctx context.Context, a *app.App, out output.Formatter, name string, args []string) error {
	if name == "help" {
		return sessionHelp(out)
	}

	c, ok := sessionCommands[name]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", name)
	}
	return c.run(ctx, a, out, args)
}

func sessionHelp(out output.Formatter) error {
	names := make([]string, 0, len(sessionCommands))
	for name := range sessionCommands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, name := range names {
		c := sessionCommands[name]
		fmt.Fprintf(&b, "  %-38s %s\n", c.usage, c.help)
	}
	b.WriteString("  quit                                   end the session")
	return out.FormatMessage(output.LevelInfo, b.String())
}

func needArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}

func sessionHome(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	return renderHighlights(a, out)
}

func sessionBrowse(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	return renderPage(a, out)
}

func sessionCategory(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	if err := needArgs(args, 1, "cat <category>"); err != nil {
		return err
	}
	if err := a.SetCategory(args[0]); err != nil {
		return err
	}
	return renderPage(a, out)
}

func sessionSearch(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	a.SetSearch(strings.Join(args, " "))
	return renderPage(a, out)
}

func sessionSort(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	if err := needArgs(args, 1, fmt.Sprintf("sort <mode> (%v)", query.SortModes())); err != nil {
		return err
	}
	a.SetSort(query.ParseSortMode(args[0]))
	return renderPage(a, out)
}

func sessionPage(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	if err := needArgs(args, 1, "page <n>"); err != nil {
		return err
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid page %q", args[0])
	}
	a.SetPage(n)
	return renderPage(a, out)
}

func sessionStep(step int) sessionHandler {
	return func(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
		a.SetPage(a.Query().Page + step)
		return renderPage(a, out)
	}
}

// sessionFilter parses "min=200 max=600 stock sale".
func sessionFilter(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	var f query.Filters
	for _, arg := range args {
		key, value, _ := strings.Cut(arg, "=")
		switch key {
		case "stock":
			f.InStockOnly = true
		case "sale":
			f.OnSaleOnly = true
		case "min", "max":
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid %s price %q", key, value)
			}
			if key == "min" {
				f.MinPrice = catalog.Float(v)
			} else {
				f.MaxPrice = catalog.Float(v)
			}
		default:
			return fmt.Errorf("unknown constraint %q", arg)
		}
	}
	a.SetFilters(f)
	return renderPage(a, out)
}

func sessionReset(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	a.ResetFilters()
	return renderPage(a, out)
}

func sessionOpen(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	if err := needArgs(args, 1, "open <id>"); err != nil {
		return err
	}
	if _, err := a.OpenProduct(ctx, args[0]); err != nil {
		return err
	}
	return renderProduct(a, out)
}

func sessionClose(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	a.CloseProduct()
	return renderPage(a, out)
}

func sessionURL(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	return out.FormatMessage(output.LevelInfo, "?"+a.URL())
}

func sessionGoto(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	if err := needArgs(args, 1, "goto <url>"); err != nil {
		return err
	}
	a.LoadURL(ctx, args[0])
	if a.OpenProductID() != "" {
		return renderProduct(a, out)
	}
	return renderPage(a, out)
}

func sessionAdd(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	if err := needArgs(args, 1, "add <id> [qty]"); err != nil {
		return err
	}
	qty := 1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		qty = n
	}

	n, err := a.AddToCart(ctx, args[0], qty)
	if err != nil {
		return err
	}
	p, _ := a.Catalog().Get(args[0])
	return out.FormatMessage(output.LevelSuccess, fmt.Sprintf("Added %d × %s (%d in cart)", qty, p.Name, n))
}

func sessionDelta(delta int) sessionHandler {
	return func(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
		if err := needArgs(args, 1, "inc|dec <id>"); err != nil {
			return err
		}
		if _, err := a.UpdateCartQuantity(ctx, args[0], delta); err != nil {
			return err
		}
		return renderCart(a, out)
	}
}

func sessionRemove(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	if err := needArgs(args, 1, "rm <id>"); err != nil {
		return err
	}
	if err := a.RemoveFromCart(ctx, args[0]); err != nil {
		return err
	}
	return renderCart(a, out)
}

func sessionCart(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	return renderCart(a, out)
}

func sessionClear(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	if err := a.ClearCart(ctx); err != nil {
		return err
	}
	return out.FormatMessage(output.LevelSuccess, "Cart cleared")
}

func sessionWish(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	if err := needArgs(args, 1, "wish <id>"); err != nil {
		return err
	}
	in, err := a.ToggleWishlist(ctx, args[0])
	if err != nil {
		return err
	}
	if in {
		return out.FormatMessage(output.LevelSuccess, fmt.Sprintf("Added %s to the wishlist", args[0]))
	}
	return out.FormatMessage(output.LevelInfo, fmt.Sprintf("Removed %s from the wishlist", args[0]))
}

func sessionWishlist(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	return out.FormatWishlist(a.WishlistProducts())
}

func sessionCheckout(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	var delivery orders.Delivery
	if len(args) > 0 {
		delivery.Phone = args[0]
		delivery.Address = strings.Join(args[1:], " ")
	}
	return checkout(ctx, a, out, delivery)
}

func sessionOrders(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	return out.FormatOrders(a.Orders().List())
}

func sessionCancel(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	if err := needArgs(args, 1, "cancel <order>"); err != nil {
		return err
	}
	o, err := a.CancelOrder(ctx, args[0])
	if err != nil {
		return err
	}
	return out.FormatMessage(output.LevelSuccess, fmt.Sprintf("Order #%s cancelled", o.ShortID()))
}

func sessionCurrency(ctx context.Context, a *app.App, out output.Formatter, args []string) error {
	if err := needArgs(args, 1, "currency <code>"); err != nil {
		return err
	}
	if err := a.Settings().SetCurrency(ctx, args[0]); err != nil {
		return err
	}
	return renderCart(a, newFormatter(a.Currency()))
}

// serveMetrics exposes the runtime's registry until ctx ends.
func serveMetrics(ctx context.Context, g *errgroup.Group, rt *runtime) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.metrics.Handler())

	srv := &http.Server{
		Addr:              config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		rt.log.Info().Str("addr", config.MetricsAddr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
