package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/novendor/novendor-site/server/internal/localstate"
	"github.com/novendor/novendor-site/server/internal/mail"
)

func runOutboxList(dir string, out io.Writer) error {
	files, err := mail.ListOutbox(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		_, _ = fmt.Fprintf(out, "outbox %s is empty\n", dir)
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tQUEUED\tTO\tSUBJECT")
	for _, f := range files {
		rec, err := mail.ReadOutboxFile(f)
		if err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t(unreadable: %v)\n", filepath.Base(f), err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", filepath.Base(f), rec.QueuedAt.UTC().Format(time.RFC3339), strings.Join(rec.To, ","), rec.Subject)
	}
	return tw.Flush()
}

// defaultOutboxDir mirrors the service's OUTBOX_DIR / DATA_DIR resolution.
func defaultOutboxDir() string {
	if d := os.Getenv("OUTBOX_DIR"); d != "" {
		return d
	}
	if d := os.Getenv("DATA_DIR"); d != "" {
		return filepath.Join(d, localstate.OutboxDirName)
	}
	if d, err := localstate.DataDir(); err == nil {
		return filepath.Join(d, localstate.OutboxDirName)
	}
	return localstate.OutboxDirName
}

func init() {
	outboxCmd := &cobra.Command{Use: "outbox", Short: "Inspect locally queued emails"}
	var dir string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List queued outbox messages, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = defaultOutboxDir()
			}
			return runOutboxList(dir, cmd.OutOrStdout())
		},
	}
	listCmd.Flags().StringVar(&dir, "dir", "", "Outbox directory (defaults to $OUTBOX_DIR or the data dir)")
	outboxCmd.AddCommand(listCmd)
	rootCmd.AddCommand(outboxCmd)
}
