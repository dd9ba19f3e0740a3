package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/73ai/storefront/internal/logging"
	"github.com/73ai/storefront/internal/orders"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Config holds the options shared by every command
type Config struct {
	Catalog  string `json:"catalog"`   // --catalog
	StateDir string `json:"state_dir"` // --state-dir

	// Persistence backend: badger, redis or memory
	Backend       string `json:"backend"`
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`

	// Output control
	JSON  bool   `json:"json"`  // --json
	Color string `json:"color"` // --color

	LogLevel  string `json:"log_level"`
	LogPretty bool   `json:"log_pretty"`

	MetricsAddr string `json:"metrics_addr"`

	// Order lifecycle delays
	ShipDelay    time.Duration `json:"ship_delay"`
	DeliverDelay time.Duration `json:"deliver_delay"`
}

var config Config

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "A terminal storefront backed by a local state store",
	Long: `storefront browses a product catalog and keeps a shopper's cart, wishlist,
orders and settings in a local state store.

EXAMPLES:
    # Browse the catalog
    storefront browse --category indoor --sort price-asc
    storefront browse --url "?category=succulents&page=2"

    # Shop
    storefront cart add p1 2
    storefront checkout --phone 9000000000 --address "4 Leaf St"
    storefront orders list

    # Interactive session with live order updates
    storefront session --metrics-addr :9090`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("catalog", "products.json", "Path to the product catalog JSON file")
	flags.String("state-dir", "", "Directory of the badger state store")
	flags.String("backend", "badger", "State backend (badger, redis, memory)")
	flags.String("redis-addr", "localhost:6379", "Redis address for the redis backend")
	flags.String("redis-password", "", "Redis password")
	flags.Int("redis-db", 0, "Redis database number")
	flags.Bool("json", false, "Output in JSON format")
	flags.String("color", "auto", "When to use colors (never, auto, always)")
	flags.String("log-level", "warn", "Log level (trace, debug, info, warn, error, off)")
	flags.Bool("log-pretty", true, "Human-readable log output")
	flags.String("metrics-addr", "", "Serve prometheus metrics on this address during a session")
	flags.Duration("ship-delay", orders.DefaultConfig().ShipDelay, "Time from order placement to shipping")
	flags.Duration("deliver-delay", orders.DefaultConfig().DeliverDelay, "Time from order placement to delivery")

	viper.BindPFlags(flags)
}

func initConfig() {
	// A missing .env is fine; variables already set win.
	_ = godotenv.Load()

	viper.SetConfigName(".storefront")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")

	viper.SetEnvPrefix("STOREFRONT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig resolves flags, environment and config file into config.
func loadConfig() error {
	config = Config{
		Catalog:       viper.GetString("catalog"),
		StateDir:      viper.GetString("state-dir"),
		Backend:       strings.ToLower(viper.GetString("backend")),
		RedisAddr:     viper.GetString("redis-addr"),
		RedisPassword: viper.GetString("redis-password"),
		RedisDB:       viper.GetInt("redis-db"),
		JSON:          viper.GetBool("json"),
		Color:         viper.GetString("color"),
		LogLevel:      viper.GetString("log-level"),
		LogPretty:     viper.GetBool("log-pretty"),
		MetricsAddr:   viper.GetString("metrics-addr"),
		ShipDelay:     viper.GetDuration("ship-delay"),
		DeliverDelay:  viper.GetDuration("deliver-delay"),
	}

	if config.StateDir == "" {
		config.StateDir = getDefaultStateDir()
	}

	switch config.Backend {
	case "badger", "redis", "memory":
	default:
		return fmt.Errorf("unknown backend %q (expected badger, redis or memory)", config.Backend)
	}

	logging.Init("storefront", config.LogPretty, config.LogLevel)
	return nil
}

func getDefaultStateDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".storefront-state"
	}
	return filepath.Join(homeDir, ".cache", "storefront", "state")
}

// Execute runs the root command until it finishes or the process is interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
