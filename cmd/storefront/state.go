package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/73ai/storefront/internal/storage"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Manage the local state store",
	Long: `Inspect, back up and restore the badger state store holding the cart,
wishlist, orders and settings.`,
}

var backupCmd = &cobra.Command{
	Use:   "backup <file>",
	Short: "Write a full backup of the state store",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Load a backup into the state store",
	Long: `Load a backup written by "state backup". Existing slices are replaced by
the backed-up ones.

EXAMPLES:
    storefront state backup shopper.bak
    storefront state restore --force shopper.bak`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

var stateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored slices and store statistics",
	Args:  cobra.NoArgs,
	RunE:  runStateStatus,
}

var stateForce bool

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(backupCmd)
	stateCmd.AddCommand(restoreCmd)
	stateCmd.AddCommand(stateStatusCmd)

	restoreCmd.Flags().BoolVarP(&stateForce, "force", "f", false, "Restore without confirmation")
}

// openBadger opens the state store, which must be the badger backend.
func openBadger() (*storage.BadgerStorage, error) {
	if config.Backend != "badger" {
		return nil, fmt.Errorf("backup and restore need the badger backend, not %s", config.Backend)
	}
	if err := os.MkdirAll(config.StateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return storage.NewBadgerStorage(storage.DefaultBadgerOptions(config.StateDir))
}

func runBackup(cmd *cobra.Command, args []string) error {
	store, err := openBadger()
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}

	if err := store.Backup(cmd.Context(), f); err != nil {
		f.Close()
		return fmt.Errorf("backup failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	info, err := os.Stat(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("💾 Backed up %s to %s (%s)\n", store.Path(), args[0], formatBytes(info.Size()))
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	if !stateForce {
		fmt.Print("⚠️  This replaces the stored cart, wishlist, orders and settings. Continue? (y/N): ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Operation cancelled.")
			return nil
		}
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	store, err := openBadger()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Restore(cmd.Context(), f); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	fmt.Printf("✅ Restored %s into %s\n", args[0], store.Path())
	return nil
}

func runStateStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initializeStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	keys, err := store.Keys(ctx, storage.Prefix)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	sizes := make(map[string]int, len(keys))
	for _, key := range keys {
		value, err := store.Get(ctx, key)
		if err != nil {
			continue
		}
		sizes[key] = len(value)
	}

	badgerStore, isBadger := store.(*storage.BadgerStorage)

	if config.JSON {
		status := map[string]interface{}{
			"backend": config.Backend,
			"slices":  sizes,
		}
		if isBadger {
			status["path"] = badgerStore.Path()
			status["stats"] = badgerStore.Stats()
		}
		return outputJSON(status)
	}

	fmt.Printf("📂 State Store\n")
	fmt.Printf("Backend: %s\n", config.Backend)
	if isBadger {
		stats := badgerStore.Stats()
		fmt.Printf("Location: %s\n", badgerStore.Path())
		fmt.Printf("Size: %s (LSM %s, value log %s)\n",
			formatBytes(stats.LSMSize+stats.VlogSize), formatBytes(stats.LSMSize), formatBytes(stats.VlogSize))
	}
	fmt.Println()

	fmt.Printf("📊 Slices\n")
	for _, key := range storage.AllKeys() {
		size, ok := sizes[key]
		if !ok {
			fmt.Printf("  %-28s not stored\n", key)
			continue
		}
		fmt.Printf("  %-28s %s\n", key, formatBytes(int64(size)))
	}
	return nil
}
