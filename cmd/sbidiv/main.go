package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "sbidiv",
		Short: "Extract dividend records from SBI Securities notices",
		Long: `sbidiv turns SBI Securities dividend notices (PDF) into CSV.

Domestic notices (株式等利益剰余金配当金のお知らせ) and foreign notices
(外国株式等配当金等のご案内, both layouts) are detected automatically.
Documents that fail to parse are skipped and their raw text is saved
next to the PDF, so they can be fixed by hand and extracted again.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format (text, json)")

	rootCmd.AddCommand(a.extractCmd())
	rootCmd.AddCommand(a.classifyCmd())
	rootCmd.AddCommand(a.scheduleCmd())
	rootCmd.AddCommand(a.migrateCmd())

	return rootCmd
}
