package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/treadline/treadline/internal/version"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:     "treadline",
		Short:   "Track your running shoes from the terminal",
		Version: version.Get(),
	}

	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(warmCmd())
	rootCmd.AddCommand(shoesCmd())
	rootCmd.AddCommand(runsCmd())
	rootCmd.AddCommand(statsCmd())

	if err := fang.Execute(context.Background(), rootCmd, fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM)); err != nil {
		os.Exit(1)
	}
}
