package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/73ai/storefront/internal/app"
	"github.com/73ai/storefront/internal/catalog"
	"github.com/73ai/storefront/internal/clock"
	"github.com/73ai/storefront/internal/errs"
	"github.com/73ai/storefront/internal/logging"
	"github.com/73ai/storefront/internal/metrics"
	"github.com/73ai/storefront/internal/orders"
	"github.com/73ai/storefront/internal/output"
	"github.com/73ai/storefront/internal/storage"
)

// runtime is one process's view of the storefront: the state store, the
// event loop every handler runs on, and the App built on that loop.
type runtime struct {
	storage storage.Storage
	loop    *clock.Loop
	metrics *metrics.Metrics
	log     zerolog.Logger

	// Set on the loop
	app     *app.App
	catalog *catalog.Catalog
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cat, err := catalog.LoadFile(config.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	store, err := initializeStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return &runtime{
		storage: store,
		loop:    clock.NewLoop(clock.Real{}, 0),
		metrics: metrics.New(),
		log:     logging.Logger,
		catalog: cat,
	}, nil
}

// boot builds the App against the current catalog snapshot. It must run on
// the loop.
func (rt *runtime) boot(ctx context.Context) error {
	cfg := app.DefaultConfig()
	cfg.Orders.ShipDelay = config.ShipDelay
	cfg.Orders.DeliverDelay = config.DeliverDelay

	a, err := app.New(ctx, cfg, app.Deps{
		Catalog:           rt.catalog,
		Storage:           rt.storage,
		Clock:             rt.loop,
		Metrics:           rt.metrics,
		Logger:            rt.log,
		OnOrderTransition: rt.orderTransition,
	})
	if err != nil {
		return err
	}

	rt.app = a
	rt.log.Debug().Str("state", a.Describe()).Msg("storefront ready")
	return nil
}

// reload swaps in a new catalog snapshot and rebuilds the App from the
// persisted state. It must run on the loop.
func (rt *runtime) reload(ctx context.Context, cat *catalog.Catalog) error {
	query, open := rt.app.Query(), rt.app.OpenProductID()
	rt.app.Close()
	rt.catalog = cat

	if err := rt.boot(ctx); err != nil {
		return err
	}

	rt.app.Restore(query, open)
	return nil
}

func (rt *runtime) formatter() output.Formatter {
	currency := ""
	if rt.app != nil {
		currency = rt.app.Currency()
	}
	return newFormatter(currency)
}

func (rt *runtime) orderTransition(o orders.Order, from orders.Status) {
	if from == "" || rt.app == nil {
		return
	}
	if !rt.app.Settings().Get().Notifications.OrderUpdates {
		return
	}

	rt.formatter().FormatNotice(output.Notice{
		Kind:    "order",
		OrderID: o.ShortID(),
		Status:  string(o.Status),
		Text:    fmt.Sprintf("Order #%s is now %s", o.ShortID(), o.Status),
	})
}

// close stops the App's timers on the loop and releases the store.
func (rt *runtime) close(ctx context.Context) {
	if rt.app != nil {
		err := rt.loop.Do(ctx, func() error {
			rt.app.Close()
			return nil
		})
		if err != nil {
			rt.app.Close()
		}
	}
	if err := rt.storage.Close(); err != nil {
		rt.log.Warn().Err(err).Msg("failed to close storage")
	}
}

// action is a command body run on the event loop
type action func(ctx context.Context, a *app.App, out output.Formatter) error

// withApp runs fn for a single command: it starts the loop, builds the App on
// it and runs fn there.
func withApp(cmd *cobra.Command, fn action) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go rt.loop.Run(loopCtx)

	defer rt.close(ctx)

	return rt.loop.Do(ctx, func() error {
		if err := rt.boot(ctx); err != nil {
			return err
		}
		out := rt.formatter()
		defer out.Flush()
		return report(out, fn(ctx, rt.app, out))
	})
}

// report renders shopper-facing errors as messages. They are still returned
// so the process exits non-zero.
func report(out output.Formatter, err error) error {
	if err == nil {
		return nil
	}
	if errs.IsUserError(err) {
		out.FormatMessage(output.LevelError, err.Error())
		return errReported
	}
	return err
}

var errReported = errors.New("command failed")

func initializeStorage(ctx context.Context) (storage.Storage, error) {
	switch config.Backend {
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "redis":
		return storage.NewRedisStorage(ctx, storage.RedisOptions{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
	}

	if err := os.MkdirAll(config.StateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	opts := storage.DefaultBadgerOptions(config.StateDir)
	return storage.NewBadgerStorage(opts)
}
