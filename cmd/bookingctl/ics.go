package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/spf13/cobra"
)

// runInspect parses an invite and prints the fields calendar clients key on.
func runInspect(r io.Reader, out io.Writer) error {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return fmt.Errorf("parse calendar: %w", err)
	}
	events := cal.Events()
	if len(events) == 0 {
		return fmt.Errorf("calendar has no VEVENT")
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, ev := range events {
		fmt.Fprintf(tw, "UID\t%s\n", ev.Id())
		fmt.Fprintf(tw, "SEQUENCE\t%s\n", propValue(ev, ics.ComponentPropertySequence))
		if start, err := ev.GetStartAt(); err == nil {
			fmt.Fprintf(tw, "START\t%s\n", start.UTC().Format(time.RFC3339))
		}
		if end, err := ev.GetEndAt(); err == nil {
			fmt.Fprintf(tw, "END\t%s\n", end.UTC().Format(time.RFC3339))
		}
		fmt.Fprintf(tw, "SUMMARY\t%s\n", propValue(ev, ics.ComponentPropertySummary))
		fmt.Fprintf(tw, "ORGANIZER\t%s\n", stripMailto(propValue(ev, ics.ComponentPropertyOrganizer)))
		for _, a := range ev.Attendees() {
			fmt.Fprintf(tw, "ATTENDEE\t%s\n", stripMailto(a.Value))
		}
		fmt.Fprintf(tw, "STATUS\t%s\n", propValue(ev, ics.ComponentPropertyStatus))
	}
	return tw.Flush()
}

func stripMailto(v string) string {
	if len(v) >= 7 && strings.EqualFold(v[:7], "mailto:") {
		return v[7:]
	}
	return v
}

func propValue(ev *ics.VEvent, p ics.ComponentProperty) string {
	if prop := ev.GetProperty(p); prop != nil {
		return prop.Value
	}
	return ""
}

func init() {
	icsCmd := &cobra.Command{Use: "ics", Short: "Local invite tools"}
	inspectCmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Parse an .ics file and print its event fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			return runInspect(f, cmd.OutOrStdout())
		},
	}
	icsCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(icsCmd)
}
