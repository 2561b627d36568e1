package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag   string
	tokenFlag string
	rootCmd   = &cobra.Command{
		Use:           "bookingctl",
		Short:         "CLI client for the NoVendor booking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Booking service base URL")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", os.Getenv("BOOKING_ADMIN_TOKEN"), "Admin token for resend (defaults to $BOOKING_ADMIN_TOKEN)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
