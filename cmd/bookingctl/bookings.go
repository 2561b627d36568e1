package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

type createFlags struct {
	name, email, company, agenda, start, timezone string
	duration                                      int
}

func runCreate(c *resty.Client, f createFlags, out io.Writer) error {
	payload := map[string]interface{}{
		"attendeeName":  f.name,
		"attendeeEmail": f.email,
		"agenda":        f.agenda,
		"startUtc":      f.start,
	}
	if f.duration > 0 {
		payload["durationMinutes"] = f.duration
	}
	if f.timezone != "" {
		payload["timezone"] = f.timezone
	}
	if f.company != "" {
		payload["attendeeCompany"] = f.company
	}
	resp, err := c.R().SetHeader("Content-Type", "application/json").SetBody(payload).Post("/api/bookings")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return printJSON(out, resp.Body())
}

func runResend(c *resty.Client, id string, out io.Writer) error {
	resp, err := c.R().SetPathParam("id", id).Post("/api/bookings/{id}/resend")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return printJSON(out, resp.Body())
}

// runDownloadICS writes the invite to outPath, or to out when outPath is empty.
func runDownloadICS(c *resty.Client, id, outPath string, out io.Writer) error {
	resp, err := c.R().SetHeader("Accept", "text/calendar").SetPathParam("id", id).Get("/api/bookings/{id}/ics")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp)
	}
	if outPath == "" {
		_, err = out.Write(resp.Body())
		return err
	}
	if err := os.WriteFile(outPath, resp.Body(), 0o644); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "wrote %s (%d bytes)\n", outPath, len(resp.Body()))
	return nil
}

func init() {
	bookingsCmd := &cobra.Command{Use: "bookings", Short: "Booking operations"}

	var f createFlags
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a booking",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(newClient(apiFlag, ""), f, cmd.OutOrStdout())
		},
	}
	createCmd.Flags().StringVarP(&f.name, "name", "n", "", "Attendee name (required)")
	createCmd.Flags().StringVarP(&f.email, "email", "e", "", "Attendee email (required)")
	createCmd.Flags().StringVar(&f.agenda, "agenda", "", "Meeting agenda (required)")
	createCmd.Flags().StringVarP(&f.start, "start", "s", "", "Start instant, e.g. 2025-06-01T15:00:00Z (required)")
	createCmd.Flags().IntVarP(&f.duration, "duration", "d", 0, "Duration in minutes (15-180, default 30)")
	createCmd.Flags().StringVarP(&f.timezone, "timezone", "t", "", "Timezone label shown to the attendee")
	createCmd.Flags().StringVarP(&f.company, "company", "c", "", "Attendee company")
	for _, name := range []string{"name", "email", "agenda", "start"} {
		_ = createCmd.MarkFlagRequired(name)
	}
	bookingsCmd.AddCommand(createCmd)

	resendCmd := &cobra.Command{
		Use:   "resend BOOKING_ID",
		Short: "Re-send a booking invite with the next sequence (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokenFlag == "" {
				return fmt.Errorf("--token or BOOKING_ADMIN_TOKEN required")
			}
			return runResend(newClient(apiFlag, tokenFlag), args[0], cmd.OutOrStdout())
		},
	}
	bookingsCmd.AddCommand(resendCmd)

	var outPath string
	icsCmd := &cobra.Command{
		Use:   "ics BOOKING_ID",
		Short: "Download the current invite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownloadICS(newClient(apiFlag, ""), args[0], outPath, cmd.OutOrStdout())
		},
	}
	icsCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to file instead of stdout")
	bookingsCmd.AddCommand(icsCmd)

	rootCmd.AddCommand(bookingsCmd)
}
