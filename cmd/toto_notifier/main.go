// Package main provides the entry point for the Toto jackpot notifier CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "toto_notifier",
	Short: "Toto jackpot notifier",
	Long:  "Fetches the current Toto jackpot from the lottery site, normalizes it and delivers it as a Telegram notification. One invocation is one pipeline run; scheduling is left to cron or a systemd timer.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
