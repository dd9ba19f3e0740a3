package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/73ai/storefront/internal/app"
	"github.com/73ai/storefront/internal/currency"
	"github.com/73ai/storefront/internal/output"
	"github.com/73ai/storefront/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change shopper settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			return out.FormatSettings(a.Settings().Get())
		})
	},
}

var settingsCurrencyCmd = &cobra.Command{
	Use:   "currency <code>",
	Short: "Choose the display currency",
	Long: fmt.Sprintf(`Choose the currency prices are displayed in. Prices, carts and orders
are always kept in %s; only the display changes.

Supported: %s`, currency.Base, strings.Join(currency.Codes(), ", ")),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			if err := a.Settings().SetCurrency(ctx, args[0]); err != nil {
				return err
			}
			return out.FormatMessage(output.LevelSuccess, "Prices are now shown in "+a.Currency())
		})
	},
}

var settingsReduceMotionCmd = &cobra.Command{
	Use:   "reduce-motion <on|off>",
	Short: "Turn reduced motion on or off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := parseToggle(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			if err := a.Settings().SetReduceMotion(ctx, on); err != nil {
				return err
			}
			return out.FormatSettings(a.Settings().Get())
		})
	},
}

var settingsNotifyCmd = &cobra.Command{
	Use:   "notify <emailPromo|orderUpdates> <on|off>",
	Short: "Turn a notification on or off",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := parseToggle(args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			if err := a.Settings().SetNotification(ctx, args[0], on); err != nil {
				return err
			}
			return out.FormatSettings(a.Settings().Get())
		})
	},
}

var settingsAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Save the default delivery address used at checkout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out output.Formatter) error {
			addr := settings.Address{Phone: addressPhone, Address: addressText}
			if err := a.Settings().SetAddress(ctx, addr); err != nil {
				return err
			}
			return out.FormatSettings(a.Settings().Get())
		})
	},
}

// Address command-specific flags
var (
	addressPhone string
	addressText  string
)

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsCurrencyCmd)
	settingsCmd.AddCommand(settingsReduceMotionCmd)
	settingsCmd.AddCommand(settingsNotifyCmd)
	settingsCmd.AddCommand(settingsAddressCmd)

	settingsAddressCmd.Flags().StringVar(&addressPhone, "phone", "", "Delivery phone number")
	settingsAddressCmd.Flags().StringVar(&addressText, "address", "", "Delivery address")
}

// parseToggle accepts on/off as well as the strconv boolean spellings.
func parseToggle(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	on, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
	return on, nil
}
