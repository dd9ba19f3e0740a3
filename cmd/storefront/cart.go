package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/73ai/storefront/internal/app"
	"github.com/73ai/storefront/internal/output"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the shopping cart",
	Long: `Add, change and remove cart lines. Quantities are checked against the
catalog's stock; totals are shown in the currency chosen in settings.`,
}

var cartAddCmd = &cobra.Command{
	Use:   "add <id> [qty]",
	Short: "Add units of a product to the cart",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		qty := 1
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			qty = n
		}

		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			n, err := a.AddToCart(ctx, args[0], qty)
			if err != nil {
				return err
			}
			p, _ := a.Catalog().Get(args[0])
			return out.FormatMessage(output.LevelSuccess, fmt.Sprintf("Added %d × %s (%d in cart)", qty, p.Name, n))
		})
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <id> <delta>",
	Short: "Change a line's quantity by delta; lines reaching zero are removed",
	Long: `Change a cart line's quantity by delta. Increases are checked against
stock; a line that drops to zero or below is removed.

EXAMPLES:
    storefront cart update p1 2
    storefront cart update p1 -- -1`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid delta %q", args[1])
		}

		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			if _, err := a.UpdateCartQuantity(ctx, args[0], delta); err != nil {
				return err
			}
			return renderCart(a, out)
		})
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			if err := a.RemoveFromCart(ctx, args[0]); err != nil {
				return err
			}
			return renderCart(a, out)
		})
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			if err := a.ClearCart(ctx); err != nil {
				return err
			}
			return out.FormatMessage(output.LevelSuccess, "Cart cleared")
		})
	},
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart and its totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			return renderCart(a, out)
		})
	},
}

var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Manage the wishlist",
}

var wishlistToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Add a product to the wishlist, or remove it if already there",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			in, err := a.ToggleWishlist(ctx, args[0])
			if err != nil {
				return err
			}
			if in {
				return out.FormatMessage(output.LevelSuccess, fmt.Sprintf("Added %s to the wishlist", args[0]))
			}
			return out.FormatMessage(output.LevelInfo, fmt.Sprintf("Removed %s from the wishlist", args[0]))
		})
	},
}

var wishlistClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the wishlist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			if err := a.Wishlist().Clear(ctx); err != nil {
				return err
			}
			return out.FormatMessage(output.LevelSuccess, "Wishlist cleared")
		})
	},
}

var wishlistShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List wishlisted products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			return out.FormatWishlist(a.WishlistProducts())
		})
	},
}

func init() {
	rootCmd.AddCommand(cartCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartUpdateCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)
	cartCmd.AddCommand(cartShowCmd)

	rootCmd.AddCommand(wishlistCmd)
	wishlistCmd.AddCommand(wishlistToggleCmd)
	wishlistCmd.AddCommand(wishlistClearCmd)
	wishlistCmd.AddCommand(wishlistShowCmd)
}
