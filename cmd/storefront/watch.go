package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/73ai/storefront/internal/catalog"
	"github.com/73ai/storefront/internal/output"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a catalog page and re-render it whenever the catalog file changes",
	Long: `Show the catalog page for a view and keep it up to date while the catalog
file is edited. Runs until interrupted.

EXAMPLES:
    storefront watch
    storefront watch --url "?category=indoor&sort=price-asc"`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var watchURL string

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchURL, "url", "", "View to show, as a shared link")
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	err = rt.loop.Do(gctx, func() error {
		if err := rt.boot(gctx); err != nil {
			return err
		}
		if watchURL != "" {
			rt.app.LoadURL(gctx, watchURL)
		}
		out := rt.formatter()
		defer out.Flush()
		return renderPage(rt.app, out)
	})
	if err != nil {
		return err
	}

	if err := startWatcher(gctx, g, rt, func(out output.Formatter) error {
		return renderPage(rt.app, out)
	}); err != nil {
		return err
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// startWatcher reloads the runtime's catalog on every change to the catalog
// file and calls render on the loop afterwards.
func startWatcher(ctx context.Context, g *errgroup.Group, rt *runtime, render func(out output.Formatter) error) error {
	cfg := catalog.DefaultWatcherConfig()
	cfg.Logger = rt.log
	cfg.OnError = func(err error) {
		rt.log.Warn().Err(err).Str("catalog", config.Catalog).Msg("catalog not reloaded")
	}
	cfg.OnReload = func(cat *catalog.Catalog) {
		rt.loop.Post(func() {
			if rt.app == nil {
				return
			}
			if err := rt.reload(ctx, cat); err != nil {
				rt.log.Error().Err(err).Msg("failed to rebuild storefront on new catalog")
				return
			}

			out := rt.formatter()
			defer out.Flush()
			out.FormatMessage(output.LevelInfo, "🔄 Catalog reloaded")
			if err := render(out); err != nil {
				rt.log.Warn().Err(err).Msg("failed to render after reload")
			}
		})
	}

	w, err := catalog.NewWatcher(config.Catalog, cfg)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}

	g.Go(func() error {
		return w.Wait(ctx)
	})
	return nil
}
