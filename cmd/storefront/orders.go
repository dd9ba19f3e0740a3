package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/73ai/storefront/internal/app"
	"github.com/73ai/storefront/internal/orders"
	"github.com/73ai/storefront/internal/output"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for the cart",
	Long: `Place an order for everything in the cart and empty it. Delivery details
not given as flags are taken from the address saved in settings.

Orders ship and are delivered on a timer (see --ship-delay and
--deliver-delay). Orders can be cancelled while they are still Processing.

EXAMPLES:
    storefront checkout --phone 9000000000 --address "4 Leaf St, Pune"
    storefront settings address --phone 9000000000 --address "4 Leaf St"
    storefront checkout`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			return checkout(ctx, a, out, orders.Delivery{Phone: checkoutPhone, Address: checkoutAddress})
		})
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List and cancel orders",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			return out.FormatOrders(a.Orders().List())
		})
	},
}

var ordersShowCmd = &cobra.Command{
	Use:   "show <order>",
	Short: "Show one order by id or short id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			o, err := a.Orders().Get(args[0])
			if err != nil {
				return err
			}
			return out.FormatOrders([]orders.Order{o})
		})
	},
}

var ordersCancelCmd = &cobra.Command{
	Use:   "cancel <order>",
	Short: "Cancel an order that has not shipped",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			o, err := a.CancelOrder(ctx, args[0])
			if err != nil {
				return err
			}
			return out.FormatMessage(output.LevelSuccess, fmt.Sprintf("Order #%s cancelled", o.ShortID()))
		})
	},
}

// Checkout command-specific flags
var (
	checkoutPhone   string
	checkoutAddress string
)

func init() {
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersShowCmd)
	ordersCmd.AddCommand(ordersCancelCmd)

	checkoutCmd.Flags().StringVar(&checkoutPhone, "phone", "", "Delivery phone number")
	checkoutCmd.Flags().StringVar(&checkoutAddress, "address", "", "Delivery address")
}

// checkout places the order and reports it. An order whose cart could not be
// emptied afterwards is still reported as placed.
func checkout(ctx context.Context, a *app.App, out output.Formatter, delivery orders.Delivery) error {
	o, err := a.Checkout(ctx, delivery)
	switch {
	case errors.Is(err, orders.ErrCartNotCleared):
		out.FormatMessage(output.LevelWarn, "The order was placed but the cart could not be emptied")
	case err != nil:
		return err
	}

	msg := fmt.Sprintf("Order #%s placed: %d items, %s", o.ShortID(), o.ItemCount(), a.Format(o.Total))
	if err := out.FormatMessage(output.LevelSuccess, msg); err != nil {
		return err
	}
	return out.FormatOrders([]orders.Order{o})
}
