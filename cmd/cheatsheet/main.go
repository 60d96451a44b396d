package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"cheatsheets/pkg/config"
	"cheatsheets/pkg/logging"
)

var (
	debug bool
	mode  string
	cfg   *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Debug().Err(err).Msg("command failed")
		fmt.Fprintln(os.Stderr, "Error:", userMessage(err))
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cheatsheet",
		Short:         "Manage a personal catalog of cheat sheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			if mode != "" {
				loaded.Mode = mode
				if err := loaded.ResolveDefaults(); err != nil {
					return err
				}
			}
			if debug {
				loaded.Debug = true
			}
			cfg = loaded

			log.Logger = logging.New(logging.Options{
				Service: "cheatsheet",
				Level:   cfg.LogLevel,
				File:    cfg.LogFile,
				Debug:   cfg.Debug,
			})
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "Catalog mode: local or remote (default from CHEATSHEETS_MODE)")

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newCategoriesCmd())
	rootCmd.AddCommand(newCategoryCmd())
	rootCmd.AddCommand(newColorCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())

	return rootCmd
}
